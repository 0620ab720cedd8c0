package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/middleware"
	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
	"github.com/HazemIbrahim256/sports-academy/internal/application/projections"
	"github.com/HazemIbrahim256/sports-academy/internal/application/supersede"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/validation"
)

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func asBrowser(req *http.Request) *http.Request {
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	return req
}

func asJSONClient(req *http.Request) *http.Request {
	req.Header.Set("Accept", "application/json")
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// serve routes req through the registered routes without the outer middleware.
func serve(req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	registerRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestDashboard_AnonymousShowsLanding(t *testing.T) {
	env := setupTestEnv(t)

	req := asBrowser(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := serve(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Welcome to the Sports Academy") {
		t.Error("landing page not rendered")
	}
	if calls := env.api.called(); len(calls) != 0 {
		t.Errorf("anonymous dashboard called the API: %v", calls)
	}
}

func TestDashboard_StaffJSON(t *testing.T) {
	env := setupTestEnv(t)
	env.api.addGroup(9, "U10")
	env.api.addPlayer(5, "Omar", intPtr(9))

	req := asJSONClient(asViewer(httptest.NewRequest(http.MethodGet, "/", nil), staffViewer))
	rec := serve(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got projections.DashboardResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Anonymous || !got.IsStaff {
		t.Errorf("anonymous=%v staff=%v", got.Anonymous, got.IsStaff)
	}
	if got.GroupCount != 1 || got.TotalPlayers != 1 {
		t.Errorf("groups=%d players=%d, want 1/1", got.GroupCount, got.TotalPlayers)
	}
}

func TestAddPlayerToGroup(t *testing.T) {
	env := setupTestEnv(t)
	env.api.addGroup(9, "U10")
	env.api.addGroup(3, "U12")
	env.api.addPlayer(5, "Omar", intPtr(3))
	env.api.addPlayer(6, "Ali", nil)

	req := asBrowser(asViewer(formRequest(http.MethodPost, "/groups/9/players", url.Values{"player_id": {"5"}}), coachViewer))
	rec := serve(req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/groups/9" {
		t.Errorf("Location = %q, want /groups/9", loc)
	}
	if c := findCookie(rec, "academy_flash"); c == nil {
		t.Error("expected a success flash")
	}
	patch := env.api.patches[5]
	if g, _ := patch["group"].(float64); int(g) != 9 || len(patch) != 1 {
		t.Errorf("PATCH body = %v, want {group: 9}", patch)
	}

	detail := serve(asJSONClient(asViewer(httptest.NewRequest(http.MethodGet, "/groups/9", nil), coachViewer)))
	if detail.Code != http.StatusOK {
		t.Fatalf("detail status = %d", detail.Code)
	}
	var got projections.GroupDetailResult
	if err := json.NewDecoder(detail.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Players) != 1 || got.Players[0].ID != 5 {
		t.Errorf("roster = %+v, want only player 5", got.Players)
	}
	for _, p := range got.Available {
		if p.ID == 5 {
			t.Error("player 5 still offered as available")
		}
	}
	if len(got.Available) != 1 || got.Available[0].ID != 6 {
		t.Errorf("available = %+v, want only player 6", got.Available)
	}
}

func TestAddPlayerToGroup_MissingPlayer(t *testing.T) {
	env := setupTestEnv(t)
	env.api.addGroup(9, "U10")

	rec := serve(asJSONClient(asViewer(formRequest(http.MethodPost, "/groups/9/players", url.Values{}), coachViewer)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	for _, c := range env.api.called() {
		if strings.HasPrefix(c, "PATCH") {
			t.Errorf("unexpected API call %q", c)
		}
	}
}

func TestDeleteGroup_RequiresConfirmation(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantDelete bool
		wantStatus int
	}{
		{name: "unconfirmed", form: url.Values{}, wantDelete: false, wantStatus: http.StatusBadRequest},
		{name: "confirmed", form: url.Values{"confirm": {"on"}}, wantDelete: true, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			env.api.addGroup(4, "U8")

			rec := serve(asJSONClient(asViewer(formRequest(http.MethodPost, "/groups/4/delete", tt.form), staffViewer)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			deleted := false
			for _, c := range env.api.called() {
				if c == "DELETE /api/groups/4/" {
					deleted = true
				}
			}
			if deleted != tt.wantDelete {
				t.Errorf("deleted = %v, want %v", deleted, tt.wantDelete)
			}
		})
	}
}

func TestDeleteGroup_DetailPageFallsBackToList(t *testing.T) {
	env := setupTestEnv(t)
	env.api.addGroup(4, "U8")

	form := url.Values{"confirm": {"on"}, "next": {"/groups/4"}}
	rec := serve(asBrowser(asViewer(formRequest(http.MethodPost, "/groups/4/delete", form), staffViewer)))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/groups" {
		t.Errorf("Location = %q, want /groups", loc)
	}
}

func TestStaffOnlyRoutes(t *testing.T) {
	tests := []struct {
		name       string
		viewer     *http.Request
		wantStatus int
	}{
		{name: "coach", viewer: asViewer(httptest.NewRequest(http.MethodGet, "/coaches", nil), coachViewer), wantStatus: http.StatusForbidden},
		{name: "staff", viewer: asViewer(httptest.NewRequest(http.MethodGet, "/coaches", nil), staffViewer), wantStatus: http.StatusOK},
		{name: "anonymous", viewer: httptest.NewRequest(http.MethodGet, "/coaches", nil), wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestEnv(t)
			rec := serve(asJSONClient(tt.viewer))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSaveAttendance(t *testing.T) {
	setupTestEnv(t)
	attendanceTracker = supersede.NewTracker()

	form := url.Values{"player_id": {"5"}, "month": {"2025-03"}, "days": {"12"}}
	rec := serve(asJSONClient(asViewer(formRequest(http.MethodPost, "/attendance", form), staffViewer)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["days"] != float64(12) || got["month"] != "2025-03" {
		t.Errorf("record = %v", got)
	}
}

func TestSaveAttendance_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{name: "bad month", form: url.Values{"player_id": {"5"}, "month": {"March"}, "days": {"3"}}},
		{name: "not a number", form: url.Values{"player_id": {"5"}, "month": {"2025-03"}, "days": {"x"}}},
		{name: "out of range", form: url.Values{"player_id": {"5"}, "month": {"2025-03"}, "days": {"400"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			rec := serve(asJSONClient(asViewer(formRequest(http.MethodPost, "/attendance", tt.form), staffViewer)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if calls := env.api.called(); len(calls) != 0 {
				t.Errorf("API called: %v", calls)
			}
		})
	}
}

// TestSaveAttendance_SupersededIsDiscarded overtakes a slow save with a newer
// one for the same cell; only the newer answer is reported.
func TestSaveAttendance_SupersededIsDiscarded(t *testing.T) {
	env := setupTestEnv(t)
	attendanceTracker = supersede.NewTracker()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	env.api.attendanceHook = func(playerID, days int) {
		if days == 1 {
			once.Do(func() { close(entered) })
			<-release
		}
	}

	send := func(days string) *httptest.ResponseRecorder {
		form := url.Values{"player_id": {"5"}, "month": {"2025-03"}, "days": {days}}
		return serve(asJSONClient(asViewer(formRequest(http.MethodPost, "/attendance", form), staffViewer)))
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- send("1") }()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first save never reached the API")
	}

	second := send("2")
	close(release)

	if second.Code != http.StatusOK {
		t.Fatalf("newer save status = %d, want 200", second.Code)
	}

	var stale *httptest.ResponseRecorder
	select {
	case stale = <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("first save never returned")
	}
	if stale.Code != http.StatusNoContent {
		t.Errorf("overtaken save status = %d, want 204", stale.Code)
	}
	if stale.Body.Len() != 0 {
		t.Errorf("overtaken save wrote a body: %q", stale.Body.String())
	}
}

func TestDownloadReport(t *testing.T) {
	setupTestEnv(t)

	rec := serve(asViewer(httptest.NewRequest(http.MethodGet, "/players/5/report.pdf", nil), coachViewer))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="player-5-report.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestEmailReport_NoAddress(t *testing.T) {
	setupTestEnv(t)
	viewer := coachViewer
	viewer.User.Email = ""

	rec := serve(asJSONClient(asViewer(formRequest(http.MethodPost, "/groups/9/report/email", url.Values{}), viewer)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if !strings.Contains(body["detail"], "email address") {
		t.Errorf("detail = %q", body["detail"])
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		wantStatus int
		wantCookie bool
	}{
		{name: "valid", password: "secret", wantStatus: http.StatusSeeOther, wantCookie: true},
		{name: "wrong password", password: "nope", wantStatus: http.StatusUnauthorized, wantCookie: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			form := url.Values{"username": {"sara"}, "password": {tt.password}}
			rec := serve(asBrowser(formRequest(http.MethodPost, "/login", form)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			c := findCookie(rec, middleware.SessionCookieName)
			if (c != nil && c.Value != "") != tt.wantCookie {
				t.Errorf("session cookie = %v, want present=%v", c, tt.wantCookie)
			}
			if tt.wantCookie {
				if loc := rec.Header().Get("Location"); loc != "/groups" {
					t.Errorf("Location = %q, want /groups", loc)
				}
				sess, err := env.sessions.Get(t.Context(), c.Value)
				if err != nil {
					t.Fatalf("session not stored: %v", err)
				}
				if sess.Access != "access-sara" {
					t.Errorf("access = %q", sess.Access)
				}
			}
		})
	}
}

func TestLogout_ForgetsSession(t *testing.T) {
	env := setupTestEnv(t)
	_ = env.sessions.Create(t.Context(), sessionFixture("sess-1"))

	rec := serve(asBrowser(asViewer(formRequest(http.MethodPost, "/logout", url.Values{}), coachViewer)))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if _, err := env.sessions.Get(t.Context(), "sess-1"); err == nil {
		t.Error("session still stored after logout")
	}
	if c := findCookie(rec, middleware.SessionCookieName); c == nil || c.MaxAge >= 0 {
		t.Errorf("session cookie not cleared: %v", c)
	}
}

// TestRejectedToken_DropsStoredSession verifies a 401 from the API during a page
// load or an action deletes the stored token pair, not just the cookie.
func TestRejectedToken_DropsStoredSession(t *testing.T) {
	tests := []struct {
		name         string
		req          func() *http.Request
		wantStatus   int
		wantLocation string
	}{
		{
			name:         "page as browser",
			req:          func() *http.Request { return asBrowser(httptest.NewRequest(http.MethodGet, "/groups", nil)) },
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login",
		},
		{
			name:       "page as json client",
			req:        func() *http.Request { return asJSONClient(httptest.NewRequest(http.MethodGet, "/groups", nil)) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "action as browser",
			req: func() *http.Request {
				return asBrowser(formRequest(http.MethodPost, "/groups/9/players", url.Values{"player_id": {"5"}}))
			},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
			}))
			t.Cleanup(rejecting.Close)
			api = academyapi.New(academyapi.Options{BaseURL: rejecting.URL})
			_ = env.sessions.Create(t.Context(), sessionFixture("sess-1"))

			rec := serve(asViewer(tt.req(), coachViewer))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantLocation != "" {
				if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
					t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
				}
			}
			if _, err := env.sessions.Get(t.Context(), "sess-1"); err == nil {
				t.Error("rejected token pair is still stored")
			}
			if c := findCookie(rec, middleware.SessionCookieName); c == nil || c.MaxAge >= 0 {
				t.Errorf("session cookie not cleared: %v", c)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantMsg    string
		wantStatus int
		wantOK     bool
	}{
		{
			name:       "api detail",
			err:        fmt.Errorf("get group: %w", &academyapi.Error{Status: 404, Body: `{"detail":"Not found."}`, Kind: academyapi.KindNotFound}),
			wantMsg:    "Not found.",
			wantStatus: http.StatusNotFound,
			wantOK:     true,
		},
		{
			name:       "api server error",
			err:        &academyapi.Error{Status: 500, StatusText: "Internal Server Error", Kind: academyapi.KindGeneric},
			wantStatus: http.StatusBadGateway,
			wantOK:     true,
		},
		{
			name:       "validation",
			err:        validation.Errorf("Name is required"),
			wantMsg:    "Name is required",
			wantStatus: http.StatusBadRequest,
			wantOK:     true,
		},
		{
			name:       "known sentinel",
			err:        fmt.Errorf("delete: %w", orchestrators.ErrNotConfirmed),
			wantStatus: http.StatusBadRequest,
			wantOK:     true,
		},
		{
			name:       "internal",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, status, ok := userMessage(tt.err)
			if ok != tt.wantOK || status != tt.wantStatus {
				t.Errorf("got (%q, %d, %v), want status %d ok %v", msg, status, ok, tt.wantStatus, tt.wantOK)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", msg, tt.wantMsg)
			}
			if ok && msg == "" {
				t.Error("user-facing error with empty message")
			}
		})
	}
}

func TestUserMessage_HalfMove(t *testing.T) {
	apiErr := &academyapi.Error{Status: 400, Body: `{"detail":"Group already has a coach."}`, Kind: academyapi.KindInvalid}
	err := fmt.Errorf("%w: group 1 released, group 2: %w", orchestrators.ErrMoveHalfApplied, apiErr)

	msg, status, ok := userMessage(err)
	if !ok || status != http.StatusConflict {
		t.Fatalf("status = %d ok = %v", status, ok)
	}
	if !strings.Contains(msg, "left the old group") || !strings.Contains(msg, "Group already has a coach.") {
		t.Errorf("msg = %q", msg)
	}
}

func TestBackTo(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{next: "/groups/3", want: "/groups/3"},
		{next: "", want: "/fallback"},
		{next: "https://evil.example", want: "/fallback"},
		{next: "//evil.example", want: "/fallback"},
		{next: `/\evil.example`, want: "/fallback"},
	}
	for _, tt := range tests {
		req := formRequest(http.MethodPost, "/x", url.Values{"next": {tt.next}})
		if got := backTo(req, "/fallback"); got != tt.want {
			t.Errorf("backTo(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestRenderPages(t *testing.T) {
	env := setupTestEnv(t)
	env.api.addGroup(9, "U10")
	env.api.addPlayer(5, "Omar", intPtr(9))

	pages := []struct {
		path   string
		viewer bool
		want   string
	}{
		{path: "/login", want: "Log in"},
		{path: "/signup", want: "Coach sign up"},
		{path: "/groups", viewer: true, want: "U10"},
		{path: "/groups/9", viewer: true, want: "Omar"},
		{path: "/players?group=9", viewer: true, want: "Omar"},
		{path: "/attendance?month=2025-03", viewer: true, want: "March 2025"},
		{path: "/admin/perf", viewer: true, want: "Performance collection is disabled"},
		{path: "/profile", viewer: true, want: "Change password"},
	}

	for _, p := range pages {
		t.Run(p.path, func(t *testing.T) {
			req := asBrowser(httptest.NewRequest(http.MethodGet, p.path, nil))
			if p.viewer {
				req = asViewer(req, staffViewer)
			}
			rec := serve(req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), p.want) {
				t.Errorf("page does not contain %q", p.want)
			}
		})
	}
}

func TestNotFoundPage(t *testing.T) {
	setupTestEnv(t)

	rec := serve(asBrowser(asViewer(httptest.NewRequest(http.MethodGet, "/groups/404", nil), staffViewer)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not found.") {
		t.Errorf("body missing API detail")
	}
}
