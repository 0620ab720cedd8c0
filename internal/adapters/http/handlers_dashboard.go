package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/perf"
	"github.com/HazemIbrahim256/sports-academy/internal/application/projections"
)

// perfWindows are the look-back choices offered on the perf page.
var perfWindows = []int{5, 15, 60, 240}

// handleDashboard handles GET /: the public landing for anonymous visitors,
// the academy overview for everyone else.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	query := projections.GetDashboardQuery{
		Token:  tokenOf(r),
		Viewer: viewerOf(r),
		Origin: api.Origin(),
	}
	deps := projections.GetDashboardDeps{
		GroupReader:      api,
		CoachReader:      api,
		EvaluationReader: api,
		Leaderboard:      appMetrics,
	}

	result, err := projections.QueryGetDashboard(r.Context(), query, deps)
	if err != nil {
		pageError(w, r, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	if result.Anonymous {
		renderTemplate(w, r, "landing.html", map[string]any{"Title": "Welcome"})
		return
	}
	renderTemplate(w, r, "dashboard.html", map[string]any{
		"Title":     "Academy Dashboard",
		"Dashboard": result,
	})
}

// handleAdminPerf handles GET /admin/perf: latency percentiles of requests and API calls.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	minutes, err := strconv.Atoi(r.URL.Query().Get("minutes"))
	if err != nil || minutes <= 0 || minutes > 24*60 {
		minutes = 15
	}

	var snap perf.Snapshot
	if perfCollector != nil {
		snap = perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 10)
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	renderTemplate(w, r, "perf.html", map[string]any{
		"Title":   "Performance",
		"Minutes": minutes,
		"Windows": perfWindows,
		"Enabled": perfCollector != nil,
		"Perf":    snap,
	})
}
