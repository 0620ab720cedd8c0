package projections

import (
	"context"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

// mockAcademy serves seeded academy data to every reader interface.
type mockAcademy struct {
	groups      []group.Group
	players     []player.Player
	coaches     []coach.Coach
	evaluations []evaluation.Evaluation

	groupsErr  error
	coachesErr error

	calls  int
	months []string
}

// ListGroups returns the seeded groups.
// PRE: token is non-empty
// POST: Records the requested month
func (m *mockAcademy) ListGroups(_ context.Context, _ string, month string) ([]group.Group, error) {
	m.calls++
	m.months = append(m.months, month)
	return m.groups, m.groupsErr
}

// GetGroup returns the seeded group with id.
// PRE: id > 0
// POST: Returns errNotSeeded when absent
func (m *mockAcademy) GetGroup(_ context.Context, _ string, id int) (group.Group, error) {
	m.calls++
	for _, g := range m.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return group.Group{}, errNotSeeded
}

// ListPlayers returns seeded players, filtered by group when groupID > 0.
// PRE: groupID >= 0
// POST: Returns players in seed order
func (m *mockAcademy) ListPlayers(_ context.Context, _ string, groupID int) ([]player.Player, error) {
	m.calls++
	if groupID == 0 {
		return m.players, nil
	}
	var out []player.Player
	for _, p := range m.players {
		if p.InGroup(groupID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetPlayer returns the seeded player with id.
// PRE: id > 0
// POST: Returns errNotSeeded when absent
func (m *mockAcademy) GetPlayer(_ context.Context, _ string, id int) (player.Player, error) {
	m.calls++
	for _, p := range m.players {
		if p.ID == id {
			return p, nil
		}
	}
	return player.Player{}, errNotSeeded
}

// ListCoaches returns the seeded coaches.
// PRE: token is non-empty
// POST: Returns coachesErr when set
func (m *mockAcademy) ListCoaches(_ context.Context, _ string) ([]coach.Coach, error) {
	m.calls++
	return m.coaches, m.coachesErr
}

// GetCoach returns the seeded coach with id.
// PRE: id > 0
// POST: Returns errNotSeeded when absent
func (m *mockAcademy) GetCoach(_ context.Context, _ string, id int) (coach.Coach, error) {
	m.calls++
	for _, c := range m.coaches {
		if c.ID == id {
			return c, nil
		}
	}
	return coach.Coach{}, errNotSeeded
}

// ListEvaluations returns seeded evaluations, filtered by player when playerID > 0.
// PRE: playerID >= 0
// POST: Returns evaluations in seed order
func (m *mockAcademy) ListEvaluations(_ context.Context, _ string, playerID int) ([]evaluation.Evaluation, error) {
	m.calls++
	if playerID == 0 {
		return m.evaluations, nil
	}
	var out []evaluation.Evaluation
	for _, e := range m.evaluations {
		if e.Player == playerID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockLeaderboard struct {
	size int
	set  bool
}

// SetLeaderboardSize records n.
// PRE: n >= 0
// POST: size holds n
func (m *mockLeaderboard) SetLeaderboardSize(n int) {
	m.size, m.set = n, true
}

type seedError string

func (e seedError) Error() string { return string(e) }

const errNotSeeded = seedError("not seeded")

func intPtr(v int) *int { return &v }
