package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/middleware"
	"github.com/HazemIbrahim256/sports-academy/internal/config"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/session"
)

// fakeAcademy is an in-memory academy API.
type fakeAcademy struct {
	mu      sync.Mutex
	groups  map[int]group.Group // nested players are rebuilt on read
	players map[int]player.Player
	me      identity.Me
	calls   []string // "METHOD /path" in arrival order
	patches map[int]map[string]any

	// attendanceHook runs before an attendance PUT is answered; nil answers at once.
	attendanceHook func(playerID, days int)
}

func newFakeAcademy() *fakeAcademy {
	return &fakeAcademy{
		groups:  make(map[int]group.Group),
		players: make(map[int]player.Player),
		patches: make(map[int]map[string]any),
	}
}

func intPtr(v int) *int { return &v }

func (f *fakeAcademy) addGroup(id int, name string) {
	f.groups[id] = group.Group{ID: id, Name: name}
}

func (f *fakeAcademy) addPlayer(id int, name string, groupID *int) {
	f.players[id] = player.Player{ID: id, Name: name, Age: 10, BirthDate: "2015-04-01", Phone: "0100", Group: groupID}
}

func (f *fakeAcademy) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// groupLocked returns g with its current roster nested.
// PRE: f.mu is held
func (f *fakeAcademy) groupLocked(g group.Group) group.Group {
	g.Players = []player.Player{}
	for _, p := range f.sortedPlayersLocked() {
		if p.InGroup(g.ID) {
			g.Players = append(g.Players, p)
		}
	}
	return g
}

// PRE: f.mu is held
func (f *fakeAcademy) sortedPlayersLocked() []player.Player {
	out := make([]player.Player, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeAcademy) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	id := func(r *http.Request) int {
		n, _ := strconv.Atoi(r.PathValue("id"))
		return n
	}

	mux.HandleFunc("POST /api/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		reply(w, http.StatusOK, academyapi.TokenPair{Access: "access-" + body["username"], Refresh: "refresh"})
	})
	mux.HandleFunc("GET /api/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		reply(w, http.StatusOK, f.me)
	})
	mux.HandleFunc("GET /api/groups/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		ids := make([]int, 0, len(f.groups))
		for gid := range f.groups {
			ids = append(ids, gid)
		}
		sort.Ints(ids)
		out := make([]group.Group, 0, len(ids))
		for _, gid := range ids {
			out = append(out, f.groupLocked(f.groups[gid]))
		}
		reply(w, http.StatusOK, out)
	})
	mux.HandleFunc("GET /api/groups/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		g, ok := f.groups[id(r)]
		if !ok {
			reply(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		reply(w, http.StatusOK, f.groupLocked(g))
	})
	mux.HandleFunc("DELETE /api/groups/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.groups, id(r))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/groups/{id}/report-pdf/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 group"))
	})
	mux.HandleFunc("GET /api/players/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		gid, _ := strconv.Atoi(r.URL.Query().Get("group"))
		out := []player.Player{}
		for _, p := range f.sortedPlayersLocked() {
			if gid == 0 || p.InGroup(gid) {
				out = append(out, p)
			}
		}
		reply(w, http.StatusOK, out)
	})
	mux.HandleFunc("PATCH /api/players/{id}/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		p, ok := f.players[id(r)]
		if !ok {
			reply(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		f.patches[p.ID] = body
		if g, ok := body["group"].(float64); ok {
			p.Group = intPtr(int(g))
		}
		f.players[p.ID] = p
		reply(w, http.StatusOK, p)
	})
	mux.HandleFunc("GET /api/players/{id}/report-pdf/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 player " + r.PathValue("id")))
	})
	mux.HandleFunc("PUT /api/players/{id}/attendance/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		_ = json.NewDecoder(r.Body).Decode(&body)
		if f.attendanceHook != nil {
			f.attendanceHook(id(r), body["days"])
		}
		reply(w, http.StatusOK, map[string]any{"player": id(r), "month": r.URL.Query().Get("month"), "days": body["days"]})
	})
	mux.HandleFunc("GET /api/coaches/", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []coach.Coach{})
	})
	mux.HandleFunc("GET /api/evaluations/", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []any{})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

// mockSessionStore implements the session store for testing.
type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]session.Session)}
}

// Create stores a session.
// PRE: s has been validated
// POST: s is retrievable by its ID
func (m *mockSessionStore) Create(ctx context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get returns a stored session.
// PRE: id is non-empty
// POST: returns session.ErrNotFound for unknown ids
func (m *mockSessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

// UpdateTokens replaces the token pair of a session.
// POST: returns session.ErrNotFound for unknown ids
func (m *mockSessionStore) UpdateTokens(ctx context.Context, id, access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	s.Access, s.Refresh = access, refresh
	m.sessions[id] = s
	return nil
}

// Touch records activity.
func (m *mockSessionStore) Touch(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.LastSeenAt = at
		m.sessions[id] = s
	}
	return nil
}

// Delete removes a session.
// POST: unknown ids are not an error
func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// DeleteExpired removes idle sessions.
// POST: returns the number removed
func (m *mockSessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.LastSeenAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// testEnv points the package globals at a fake API and session store.
type testEnv struct {
	api      *fakeAcademy
	sessions *mockSessionStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := newFakeAcademy()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	store := newMockSessionStore()
	cfg = config.New()
	api = academyapi.New(academyapi.Options{BaseURL: srv.URL})
	sessions = store
	appMetrics = nil
	perfCollector = nil
	return &testEnv{api: fake, sessions: store}
}

var (
	staffViewer = identity.FromMe(identity.Me{
		User:    coach.User{ID: 1, Username: "admin", Email: "admin@academy.test", IsStaff: true},
		IsStaff: true,
	})
	coachViewer = identity.FromMe(identity.Me{
		User:  coach.User{ID: 2, Username: "sara", FirstName: "Sara", Email: "sara@academy.test"},
		Coach: &coach.Coach{ID: 7, User: coach.User{ID: 2, Username: "sara"}},
	})
)

func sessionFixture(id string) session.Session {
	now := time.Now()
	return session.Session{ID: id, Access: "tok", Refresh: "ref", CreatedAt: now, LastSeenAt: now}
}

// asViewer attaches a signed-in viewer and its session to r.
func asViewer(r *http.Request, viewer identity.Identity) *http.Request {
	ctx := middleware.ContextWithSession(r.Context(), session.Session{ID: "sess-1", Access: "tok", Refresh: "ref"})
	ctx = middleware.ContextWithIdentity(ctx, viewer)
	return r.WithContext(ctx)
}
