package orchestrators

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	emailAdapter "github.com/HazemIbrahim256/sports-academy/internal/adapters/email"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/attendance"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/session"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testNow() time.Time { return testTime }

func testID() string { return "sess-001" }

func apiError(status int, kind academyapi.Kind, body string) error {
	return &academyapi.Error{Status: status, StatusText: fmt.Sprint(status), Body: body, Kind: kind}
}

// mockAPI records every call made against the academy API.
type mockAPI struct {
	mu    sync.Mutex
	calls []string

	pair       academyapi.TokenPair
	tokenErr   error
	refreshErr error

	coaches   map[int]coach.Coach
	setErrFor map[int]error // SetGroupCoach error by group id
	err       error         // returned by every mutation when set

	evaluations []evaluation.Evaluation
	lastBody    map[string]any
	lastForm    *academyapi.Form

	groupPDF  []byte
	playerPDF []byte
}

func newMockAPI() *mockAPI {
	return &mockAPI{coaches: map[int]coach.Coach{}, setErrFor: map[int]error{}}
}

func (m *mockAPI) record(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

// ObtainToken returns the configured pair.
// PRE: none
// POST: records "token <username>"
func (m *mockAPI) ObtainToken(_ context.Context, username, _ string) (academyapi.TokenPair, error) {
	m.record("token %s", username)
	return m.pair, m.tokenErr
}

// RefreshToken returns the configured pair.
// PRE: none
// POST: records "refresh"
func (m *mockAPI) RefreshToken(_ context.Context, _ string) (academyapi.TokenPair, error) {
	m.record("refresh")
	return m.pair, m.refreshErr
}

// Signup echoes the username.
// PRE: form was validated
// POST: records "signup <username>"
func (m *mockAPI) Signup(_ context.Context, form coach.CreateForm) (coach.Coach, error) {
	m.record("signup %s", form.Username)
	return coach.Coach{ID: 1, User: coach.User{Username: form.Username}}, m.err
}

// UpdateMe keeps the multipart form for inspection.
// PRE: none
// POST: records "me"
func (m *mockAPI) UpdateMe(_ context.Context, _ string, form *academyapi.Form) (identity.Me, error) {
	m.record("me")
	m.lastForm = form
	return identity.Me{User: coach.User{ID: 7, FirstName: form.Fields["first_name"]}}, m.err
}

// ChangePassword returns a fixed detail.
// PRE: none
// POST: records "password"
func (m *mockAPI) ChangePassword(_ context.Context, _, _, _ string) (string, error) {
	m.record("password")
	return "", m.err
}

// CreateCoachWithUser echoes the form.
// PRE: none
// POST: records "create-coach <username>"
func (m *mockAPI) CreateCoachWithUser(_ context.Context, _ string, form coach.CreateForm) (coach.Coach, error) {
	m.record("create-coach %s", form.Username)
	return coach.Coach{ID: 3, User: coach.User{Username: form.Username}}, m.err
}

// DeleteCoach records the id.
// PRE: none
// POST: records "delete-coach <id>"
func (m *mockAPI) DeleteCoach(_ context.Context, _ string, id int) error {
	m.record("delete-coach %d", id)
	return m.err
}

// GetCoach returns the seeded coach.
// PRE: none
// POST: records "get-coach <id>"
func (m *mockAPI) GetCoach(_ context.Context, _ string, id int) (coach.Coach, error) {
	m.record("get-coach %d", id)
	return m.coaches[id], nil
}

// SetGroupCoach records the assignment; "nil" marks an unassignment.
// PRE: none
// POST: records "set-coach <group> <coach|nil>"
func (m *mockAPI) SetGroupCoach(_ context.Context, _ string, groupID int, coachID *int) (group.Group, error) {
	if coachID == nil {
		m.record("set-coach %d nil", groupID)
	} else {
		m.record("set-coach %d %d", groupID, *coachID)
	}
	return group.Group{ID: groupID}, m.setErrFor[groupID]
}

// CreateGroup echoes the form.
// PRE: none
// POST: records "create-group <name>"
func (m *mockAPI) CreateGroup(_ context.Context, _ string, form group.CreateForm) (group.Group, error) {
	m.record("create-group %s", form.Name)
	return group.Group{ID: 11, Name: form.Name}, m.err
}

// DeleteGroup records the id.
// PRE: none
// POST: records "delete-group <id>"
func (m *mockAPI) DeleteGroup(_ context.Context, _ string, id int) error {
	m.record("delete-group %d", id)
	return m.err
}

// ResetGroupEvaluations returns a fixed result.
// PRE: none
// POST: records "reset <id>"
func (m *mockAPI) ResetGroupEvaluations(_ context.Context, _ string, id int) (academyapi.ResetResult, error) {
	m.record("reset %d", id)
	return academyapi.ResetResult{Updated: 4}, m.err
}

// PatchPlayer keeps the JSON body.
// PRE: none
// POST: records "patch-player <id>"
func (m *mockAPI) PatchPlayer(_ context.Context, _ string, id int, fields map[string]any) (player.Player, error) {
	m.record("patch-player %d", id)
	m.lastBody = fields
	p := player.Player{ID: id}
	if g, ok := fields["group"].(int); ok {
		p.Group = &g
	}
	return p, m.err
}

// CreatePlayer keeps the form.
// PRE: none
// POST: records "create-player"
func (m *mockAPI) CreatePlayer(_ context.Context, _ string, form *academyapi.Form) (player.Player, error) {
	m.record("create-player")
	m.lastForm = form
	return player.Player{ID: 21, Name: form.Fields["name"]}, m.err
}

// PatchPlayerForm keeps the form.
// PRE: none
// POST: records "patch-player-form <id>"
func (m *mockAPI) PatchPlayerForm(_ context.Context, _ string, id int, form *academyapi.Form) (player.Player, error) {
	m.record("patch-player-form %d", id)
	m.lastForm = form
	return player.Player{ID: id}, m.err
}

// DeletePlayer records the id.
// PRE: none
// POST: records "delete-player <id>"
func (m *mockAPI) DeletePlayer(_ context.Context, _ string, id int) error {
	m.record("delete-player %d", id)
	return m.err
}

// ListEvaluations returns the seeded evaluations.
// PRE: none
// POST: records "list-evaluations <player>"
func (m *mockAPI) ListEvaluations(_ context.Context, _ string, playerID int) ([]evaluation.Evaluation, error) {
	m.record("list-evaluations %d", playerID)
	return m.evaluations, nil
}

// CreateEvaluation keeps the body.
// PRE: none
// POST: records "create-evaluation <player>"
func (m *mockAPI) CreateEvaluation(_ context.Context, _ string, playerID int, fields map[string]any) (evaluation.Evaluation, error) {
	m.record("create-evaluation %d", playerID)
	m.lastBody = fields
	return evaluation.Evaluation{ID: 50, Player: playerID}, m.err
}

// PatchEvaluation keeps the body.
// PRE: none
// POST: records "patch-evaluation <id>"
func (m *mockAPI) PatchEvaluation(_ context.Context, _ string, id int, fields map[string]any) (evaluation.Evaluation, error) {
	m.record("patch-evaluation %d", id)
	m.lastBody = fields
	return evaluation.Evaluation{ID: id}, m.err
}

// GroupReportPDF returns the seeded bytes.
// PRE: none
// POST: records "group-pdf <id>"
func (m *mockAPI) GroupReportPDF(_ context.Context, _ string, id int) ([]byte, error) {
	m.record("group-pdf %d", id)
	return m.groupPDF, m.err
}

// PlayerReportPDF returns the seeded bytes.
// PRE: none
// POST: records "player-pdf <id>"
func (m *mockAPI) PlayerReportPDF(_ context.Context, _ string, id int) ([]byte, error) {
	m.record("player-pdf %d", id)
	return m.playerPDF, m.err
}

// mockAttendance blocks each save until released, so tests can interleave saves.
type mockAttendance struct {
	mu      sync.Mutex
	release map[int]chan struct{} // keyed by days
	started chan int
	err     error
}

// SetAttendance waits for release[days] when present.
// PRE: none
// POST: returns a record echoing the input
func (m *mockAttendance) SetAttendance(ctx context.Context, _ string, playerID int, month attendance.Month, days int) (attendance.Record, error) {
	m.mu.Lock()
	ch := m.release[days]
	m.mu.Unlock()
	if m.started != nil {
		m.started <- days
	}
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return attendance.Record{}, ctx.Err()
		}
	}
	return attendance.Record{Player: playerID, Month: month.String(), Days: days}, m.err
}

// mockSessionStore is an in-memory session store.
type mockSessionStore struct {
	sessions  map[string]session.Session
	createErr error
	deleted   []string
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: map[string]session.Session{}}
}

// Create stores the session.
// PRE: s is valid
// POST: s is retrievable by id unless createErr is set
func (m *mockSessionStore) Create(_ context.Context, s session.Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sessions[s.ID] = s
	return nil
}

// UpdateTokens replaces the token pair.
// PRE: none
// POST: returns session.ErrNotFound for unknown ids
func (m *mockSessionStore) UpdateTokens(_ context.Context, id, access, refresh string) error {
	s, ok := m.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	s.Access, s.Refresh = access, refresh
	m.sessions[id] = s
	return nil
}

// Delete removes the session.
// PRE: none
// POST: returns session.ErrNotFound for unknown ids
func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	if _, ok := m.sessions[id]; !ok {
		return session.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// mockSender captures sent emails.
type mockSender struct {
	sent []emailAdapter.SendRequest
	err  error
}

// Send records the request.
// PRE: none
// POST: returns a fixed message id unless err is set
func (m *mockSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if m.err != nil {
		return emailAdapter.SendResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: "msg-1", SentAt: testTime}, nil
}

// mockOutcomes counts email outcomes.
type mockOutcomes map[string]int

// EmailSent increments the outcome.
// PRE: none
// POST: outcome count grows by one
func (m mockOutcomes) EmailSent(outcome string) { m[outcome]++ }

func readAll(r io.Reader) string {
	b, _ := io.ReadAll(r)
	return string(b)
}

func stringsReader(s string) io.Reader { return strings.NewReader(s) }
