package web

import (
	"net/http"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/middleware"
	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
)

// registerRoutes binds every page and action to the mux.
// Anonymous visitors only reach the landing page, login, signup and the probes.
func registerRoutes(mux *http.ServeMux) {
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /metrics", handleMetrics)

	mux.HandleFunc("GET /{$}", handleDashboard)
	mux.HandleFunc("GET /login", handleLoginForm)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.HandleFunc("GET /signup", handleSignupForm)
	mux.HandleFunc("POST /signup", handleSignup)

	signedIn := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.RequireAuth(h))
	}
	staffOnly := middleware.RequireStaff(http.HandlerFunc(handleForbidden))
	staff := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, staffOnly(h))
	}

	signedIn("GET /profile", handleProfile)
	signedIn("POST /profile", handleUpdateProfile)
	signedIn("POST /profile/password", handleChangePassword)

	signedIn("GET /groups", handleGroups)
	staff("POST /groups", handleCreateGroup)
	signedIn("GET /groups/{id}", handleGroupDetail)
	signedIn("POST /groups/{id}/players", handleAddPlayerToGroup)
	staff("POST /groups/{id}/delete", handleDeleteGroup)
	staff("POST /groups/{id}/reset-evaluations", handleResetEvaluations)
	signedIn("GET /groups/{id}/report.pdf", handleDownloadReport(orchestrators.GroupReport))
	signedIn("POST /groups/{id}/report/email", handleEmailReport(orchestrators.GroupReport))

	signedIn("GET /players", handlePlayers)
	staff("POST /players", handleCreatePlayer)
	signedIn("GET /players/{id}", handlePlayerProfile)
	signedIn("POST /players/{id}/edit", handleUpdatePlayer)
	signedIn("POST /players/{id}/delete", handleDeletePlayer)
	signedIn("POST /players/{id}/photo", handleUploadPlayerPhoto)
	signedIn("POST /players/{id}/evaluation", handleCreateEvaluation)
	signedIn("POST /players/{id}/evaluation/skills", handleEditSkills)
	signedIn("POST /players/{id}/evaluation/notes", handleEditNotes)
	signedIn("GET /players/{id}/report.pdf", handleDownloadReport(orchestrators.PlayerReport))
	signedIn("POST /players/{id}/report/email", handleEmailReport(orchestrators.PlayerReport))

	staff("GET /coaches", handleCoaches)
	staff("POST /coaches", handleCreateCoach)
	staff("GET /coaches/{id}", handleCoachDetail)
	staff("POST /coaches/{id}/assign", handleAssignGroup)
	staff("POST /coaches/{id}/unassign", handleUnassignGroup)
	staff("POST /coaches/{id}/move", handleMoveGroup)
	staff("POST /coaches/{id}/delete", handleDeleteCoach)

	staff("GET /attendance", handleAttendance)
	staff("POST /attendance", handleSaveAttendance)

	staff("GET /admin/perf", handleAdminPerf)
}
