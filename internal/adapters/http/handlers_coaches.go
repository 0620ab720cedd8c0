package web

import (
	"fmt"
	"net/http"

	"github.com/HazemIbrahim256/sports-academy/internal/application/listutil"
	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
	"github.com/HazemIbrahim256/sports-academy/internal/application/projections"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
)

func coachPath(id int) string {
	return fmt.Sprintf("/coaches/%d", id)
}

func assignDeps() orchestrators.AssignGroupDeps {
	return orchestrators.AssignGroupDeps{Groups: api, Coaches: api}
}

// handleCoaches handles GET /coaches (staff)
func handleCoaches(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetCoachList(r.Context(), projections.GetCoachListQuery{
		Token:  tokenOf(r),
		Origin: api.Origin(),
		List:   listutil.ParseListParams(r.URL.Query(), projections.CoachSortColumns, nil),
	}, projections.GetCoachListDeps{CoachReader: api})
	if err != nil {
		pageError(w, r, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "coaches.html", map[string]any{
		"Title":   "Coaches",
		"Coaches": result,
	})
}

// handleCreateCoach handles POST /coaches (staff): a coach profile and its login in one call.
func handleCreateCoach(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	form := coach.CreateForm{
		Username:  r.FormValue("username"),
		Password:  r.FormValue("password"),
		Email:     r.FormValue("email"),
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Phone:     r.FormValue("phone"),
		Bio:       r.FormValue("bio"),
	}
	c, err := orchestrators.ExecuteCreateCoach(r.Context(), tokenOf(r), form, orchestrators.CreateCoachDeps{Coaches: api})
	if err != nil {
		actionError(w, r, "/coaches", err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, c)
		return
	}
	actionDone(w, r, "/coaches", fmt.Sprintf("Coach %s created.", c.User.DisplayName()), c)
}

// handleCoachDetail handles GET /coaches/{id} (staff)
func handleCoachDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}

	result, err := projections.QueryGetCoachDetail(r.Context(), projections.GetCoachDetailQuery{
		Token:   tokenOf(r),
		CoachID: id,
		Origin:  api.Origin(),
	}, projections.GetCoachDetailDeps{CoachReader: api, GroupReader: api})
	if err != nil {
		pageError(w, r, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "coach_detail.html", map[string]any{
		"Title":  "Coach Details",
		"Detail": result,
	})
}

// assignment runs one of the group assignment orchestrators for POST /coaches/{id}/...
func assignment(
	execute func(r *http.Request, input orchestrators.AssignGroupInput) (coach.Coach, error),
	done string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			notFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			badRequest(w, r, "Invalid form submission")
			return
		}

		c, err := execute(r, orchestrators.AssignGroupInput{
			Token:       tokenOf(r),
			CoachID:     id,
			GroupID:     formInt(r, "group_id"),
			FromGroupID: formInt(r, "from_group_id"),
		})
		if err != nil {
			actionError(w, r, coachPath(id), err)
			return
		}
		actionDone(w, r, coachPath(id), done, c)
	}
}

// handleAssignGroup handles POST /coaches/{id}/assign
var handleAssignGroup = assignment(func(r *http.Request, in orchestrators.AssignGroupInput) (coach.Coach, error) {
	return orchestrators.ExecuteAssignGroup(r.Context(), in, assignDeps())
}, "Group assigned.")

// handleUnassignGroup handles POST /coaches/{id}/unassign. The group and its players stay.
var handleUnassignGroup = assignment(func(r *http.Request, in orchestrators.AssignGroupInput) (coach.Coach, error) {
	return orchestrators.ExecuteUnassignGroup(r.Context(), in, assignDeps())
}, "Coach removed from the group.")

// handleMoveGroup handles POST /coaches/{id}/move: release from_group_id, then take group_id.
var handleMoveGroup = assignment(func(r *http.Request, in orchestrators.AssignGroupInput) (coach.Coach, error) {
	return orchestrators.ExecuteMoveGroup(r.Context(), in, assignDeps())
}, "Coach moved.")

// handleDeleteCoach handles POST /coaches/{id}/delete
func handleDeleteCoach(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	if err := orchestrators.ExecuteDeleteCoach(r.Context(), tokenOf(r), id, confirmed(r), orchestrators.DeleteCoachDeps{Coaches: api}); err != nil {
		actionError(w, r, "/coaches", err)
		return
	}
	actionDone(w, r, "/coaches", "Coach deleted.", nil)
}
