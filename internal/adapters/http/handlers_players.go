package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/HazemIbrahim256/sports-academy/internal/application/listutil"
	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
	"github.com/HazemIbrahim256/sports-academy/internal/application/projections"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

func playerDeps() orchestrators.PlayerDeps {
	return orchestrators.PlayerDeps{Players: api}
}

func evaluationDeps() orchestrators.EvaluationDeps {
	return orchestrators.EvaluationDeps{Evaluations: api}
}

func playerPath(id int) string {
	return fmt.Sprintf("/players/%d", id)
}

func playersOfGroup(groupID int) string {
	if groupID <= 0 {
		return "/players"
	}
	return "/players?group=" + strconv.Itoa(groupID)
}

// playerFormFrom reads the shared create/edit fields.
func playerFormFrom(r *http.Request) player.Form {
	return player.Form{
		Name:      r.FormValue("name"),
		BirthDate: r.FormValue("birth_date"),
		Phone:     r.FormValue("phone"),
		Group:     formInt(r, "group"),
	}
}

// scoresFrom reads one select per catalogue skill; missing skills keep the default.
func scoresFrom(r *http.Request) evaluation.Scores {
	scores := evaluation.NewScores()
	for _, k := range evaluation.Keys() {
		if v, err := strconv.Atoi(r.FormValue(k)); err == nil {
			scores[k] = v
		}
	}
	return scores
}

// handlePlayers handles GET /players?group=<id>
func handlePlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groupID, _ := strconv.Atoi(q.Get("group"))

	result, err := projections.QueryGetPlayerList(r.Context(), projections.GetPlayerListQuery{
		Token:   tokenOf(r),
		GroupID: groupID,
		Origin:  api.Origin(),
		List:    listutil.ParseListParams(q, projections.PlayerSortColumns, nil),
	}, projections.GetPlayerListDeps{GroupReader: api, PlayerReader: api})
	if err != nil {
		pageError(w, r, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "players.html", map[string]any{
		"Title":   "Players",
		"Players": result,
	})
}

// handleCreatePlayer handles POST /players (staff). The photo travels in the same multipart request.
func handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}
	photo, closePhoto, err := formUpload(r, "photo")
	if err != nil {
		badRequest(w, r, "Could not read the uploaded photo")
		return
	}
	defer closePhoto()

	form := playerFormFrom(r)
	back := playersOfGroup(form.Group)
	p, err := orchestrators.ExecuteCreatePlayer(r.Context(), orchestrators.SavePlayerInput{
		Token: tokenOf(r),
		Form:  form,
		Photo: photo,
	}, playerDeps())
	if err != nil {
		actionError(w, r, back, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, p)
		return
	}
	actionDone(w, r, back, fmt.Sprintf("%s added.", p.Name), p)
}

// handlePlayerProfile handles GET /players/{id}
func handlePlayerProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}

	result, err := projections.QueryGetPlayerProfile(r.Context(), projections.GetPlayerProfileQuery{
		Token:    tokenOf(r),
		PlayerID: id,
		Origin:   api.Origin(),
	}, projections.GetPlayerProfileDeps{PlayerReader: api, EvaluationReader: api})
	if err != nil {
		pageError(w, r, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	// The edit form falls back to the current group when the list is unavailable.
	groups, err := api.ListGroups(r.Context(), tokenOf(r), "")
	if err != nil {
		if gone(r, err) {
			return
		}
		slog.Warn("player_groups_unavailable", "player_id", id, "error", err)
		groups = nil
	}
	renderTemplate(w, r, "player.html", map[string]any{
		"Title":      result.Player.Name,
		"Profile":    result,
		"Groups":     groups,
		"Categories": evaluation.Categories(),
	})
}

// handleUpdatePlayer handles POST /players/{id}/edit
func handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := parseForm(r); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}
	photo, closePhoto, err := formUpload(r, "photo")
	if err != nil {
		badRequest(w, r, "Could not read the uploaded photo")
		return
	}
	defer closePhoto()

	back := backTo(r, playerPath(id))
	p, err := orchestrators.ExecuteUpdatePlayer(r.Context(), orchestrators.SavePlayerInput{
		Token:    tokenOf(r),
		PlayerID: id,
		Form:     playerFormFrom(r),
		Photo:    photo,
	}, playerDeps())
	if err != nil {
		actionError(w, r, back, err)
		return
	}
	actionDone(w, r, back, "Player saved.", p)
}

// handleDeletePlayer handles POST /players/{id}/delete
func handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	back := backTo(r, "/players")
	if err := orchestrators.ExecuteDeletePlayer(r.Context(), tokenOf(r), id, confirmed(r), playerDeps()); err != nil {
		actionError(w, r, back, err)
		return
	}
	if back == playerPath(id) {
		back = "/players"
	}
	actionDone(w, r, back, "Player deleted.", nil)
}

// handleUploadPlayerPhoto handles POST /players/{id}/photo
func handleUploadPlayerPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := parseForm(r); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}
	photo, closePhoto, err := formUpload(r, "photo")
	if err != nil {
		badRequest(w, r, "Could not read the uploaded photo")
		return
	}
	defer closePhoto()

	p, err := orchestrators.ExecuteUploadPlayerPhoto(r.Context(), tokenOf(r), id, photo, playerDeps())
	if err != nil {
		actionError(w, r, playerPath(id), err)
		return
	}
	actionDone(w, r, playerPath(id), "Photo updated.", p)
}

// handleCreateEvaluation handles POST /players/{id}/evaluation
func handleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	ev, err := orchestrators.ExecuteCreateEvaluation(r.Context(), orchestrators.EvaluationInput{
		Token:    tokenOf(r),
		PlayerID: id,
		Scores:   scoresFrom(r),
		Notes:    r.FormValue("notes"),
	}, evaluationDeps())
	if err != nil {
		actionError(w, r, playerPath(id), err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, ev)
		return
	}
	actionDone(w, r, playerPath(id), "Evaluation saved.", ev)
}

// handleEditSkills handles POST /players/{id}/evaluation/skills
func handleEditSkills(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	ev, err := orchestrators.ExecuteEditSkills(r.Context(), orchestrators.EvaluationInput{
		Token:        tokenOf(r),
		PlayerID:     id,
		EvaluationID: formInt(r, "evaluation_id"),
		Scores:       scoresFrom(r),
	}, evaluationDeps())
	if err != nil {
		actionError(w, r, playerPath(id), err)
		return
	}
	actionDone(w, r, playerPath(id), "Skills updated.", ev)
}

// handleEditNotes handles POST /players/{id}/evaluation/notes
func handleEditNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	ev, err := orchestrators.ExecuteEditNotes(r.Context(), orchestrators.EvaluationInput{
		Token:        tokenOf(r),
		PlayerID:     id,
		EvaluationID: formInt(r, "evaluation_id"),
		Notes:        r.FormValue("notes"),
	}, evaluationDeps())
	if err != nil {
		actionError(w, r, playerPath(id), err)
		return
	}
	actionDone(w, r, playerPath(id), "Notes updated.", ev)
}
