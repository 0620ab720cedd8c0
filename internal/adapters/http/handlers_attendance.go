package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/middleware"
	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
	"github.com/HazemIbrahim256/sports-academy/internal/application/projections"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/attendance"
)

// handleAttendance handles GET /attendance?month=YYYY-MM (staff)
func handleAttendance(w http.ResponseWriter, r *http.Request) {
	month := attendance.ParseMonthOr(r.URL.Query().Get("month"), attendance.CurrentMonth(timeNow()))

	result, err := projections.QueryGetAttendance(r.Context(), projections.GetAttendanceQuery{
		Token: tokenOf(r),
		Month: month,
	}, projections.GetAttendanceDeps{GroupReader: api})
	if err != nil {
		pageError(w, r, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "attendance.html", map[string]any{
		"Title":      "Attendance",
		"Attendance": result,
		"MaxDays":    attendance.MaxDays,
	})
}

// handleSaveAttendance handles POST /attendance (staff). The sheet saves each
// cell as it changes; a save overtaken by a newer one for the same cell is
// discarded without touching the page.
func handleSaveAttendance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	month, err := attendance.ParseMonth(r.FormValue("month"))
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	days, err := strconv.Atoi(r.FormValue("days"))
	if err != nil {
		badRequest(w, r, "Days must be a whole number")
		return
	}
	back := "/attendance?month=" + month.String()

	rec, err := orchestrators.ExecuteSaveAttendance(r.Context(), orchestrators.SaveAttendanceInput{
		Token:     tokenOf(r),
		SessionID: middleware.SessionIDFrom(r.Context()),
		PlayerID:  formInt(r, "player_id"),
		Month:     month,
		Days:      days,
	}, orchestrators.SaveAttendanceDeps{Attendance: api, Tracker: attendanceTracker})
	switch {
	case err == nil:
	case gone(r, err):
		slog.Debug("attendance_event", "event", "save_abandoned")
		return
	case isSuperseded(err):
		// A newer value is already on its way; this answer must not be applied.
		if isHTMLRequest(r) {
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		actionError(w, r, back, err)
		return
	}

	actionDone(w, r, back, "", rec)
}
