package web

import (
	"fmt"
	"net/http"

	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
	"github.com/HazemIbrahim256/sports-academy/internal/application/projections"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
)

func groupDeps() orchestrators.GroupDeps {
	return orchestrators.GroupDeps{Groups: api, Players: api}
}

func groupPath(id int) string {
	return fmt.Sprintf("/groups/%d", id)
}

// handleGroups handles GET /groups
func handleGroups(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetGroupList(r.Context(), projections.GetGroupListQuery{
		Token:  tokenOf(r),
		Viewer: viewerOf(r),
	}, projections.GetGroupListDeps{GroupReader: api, CoachReader: api})
	if err != nil {
		pageError(w, r, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "groups.html", map[string]any{
		"Title":  "Groups",
		"Groups": result,
	})
}

// handleCreateGroup handles POST /groups (staff)
func handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	form := group.CreateForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		CoachID:     formInt(r, "coach_id"),
	}
	g, err := orchestrators.ExecuteCreateGroup(r.Context(), tokenOf(r), form, groupDeps())
	if err != nil {
		actionError(w, r, "/groups", err)
		return
	}
	actionDone(w, r, "/groups", fmt.Sprintf("Group %q created.", g.Name), g)
}

// handleGroupDetail handles GET /groups/{id}
func handleGroupDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}

	result, err := projections.QueryGetGroupDetail(r.Context(), projections.GetGroupDetailQuery{
		Token:   tokenOf(r),
		GroupID: id,
		Origin:  api.Origin(),
	}, projections.GetGroupDetailDeps{GroupReader: api, PlayerReader: api})
	if err != nil {
		pageError(w, r, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "group_detail.html", map[string]any{
		"Title":  result.Group.Name,
		"Detail": result,
	})
}

// handleAddPlayerToGroup handles POST /groups/{id}/players
func handleAddPlayerToGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	p, err := orchestrators.ExecuteAddPlayerToGroup(r.Context(), tokenOf(r), id, formInt(r, "player_id"), groupDeps())
	if err != nil {
		actionError(w, r, groupPath(id), err)
		return
	}
	actionDone(w, r, groupPath(id), fmt.Sprintf("%s added to the group.", p.Name), p)
}

// handleDeleteGroup handles POST /groups/{id}/delete (staff)
func handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	back := backTo(r, "/groups")
	if err := orchestrators.ExecuteDeleteGroup(r.Context(), tokenOf(r), id, confirmed(r), groupDeps()); err != nil {
		actionError(w, r, back, err)
		return
	}
	// The detail page no longer exists
	if back == groupPath(id) {
		back = "/groups"
	}
	actionDone(w, r, back, "Group deleted.", nil)
}

// handleResetEvaluations handles POST /groups/{id}/reset-evaluations (staff)
func handleResetEvaluations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	back := backTo(r, "/groups")
	detail, err := orchestrators.ExecuteResetEvaluations(r.Context(), tokenOf(r), id, confirmed(r), groupDeps())
	if err != nil {
		actionError(w, r, back, err)
		return
	}
	if !isHTMLRequest(r) {
		writeDetail(w, http.StatusOK, detail)
		return
	}
	actionDone(w, r, back, detail, nil)
}
