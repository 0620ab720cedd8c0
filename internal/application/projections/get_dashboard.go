package projections

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

// LeaderboardObserver receives the size of each computed leaderboard.
type LeaderboardObserver interface {
	SetLeaderboardSize(n int)
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Token  string
	Viewer identity.Identity
	Origin string // API origin for photo URLs
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	GroupReader      GroupReader
	CoachReader      CoachReader
	EvaluationReader EvaluationReader
	Leaderboard      LeaderboardObserver // optional
}

// RecentEvaluation is one row of the recent activity list.
type RecentEvaluation struct {
	Evaluation evaluation.Evaluation `json:"evaluation"`
	Player     *player.Player        `json:"player"`
	Name       string                `json:"name"`
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Anonymous bool `json:"anonymous"`
	IsStaff   bool `json:"is_staff"`

	CoachCount   *int `json:"coach_count"` // staff only; nil when unknown
	GroupCount   int  `json:"group_count"`
	TotalPlayers int  `json:"total_players"`

	Groups  []group.Group `json:"groups"`   // first DashboardLimit groups
	MyGroup *group.Group  `json:"my_group"` // non-staff only

	BestPlayers []RankedPlayer     `json:"best_players"`
	Recent      []RecentEvaluation `json:"recent"`
}

// QueryGetDashboard aggregates the dashboard for the viewer.
// An anonymous viewer gets the public landing without any API call.
// PRE: query.Token is set when the viewer is authenticated
// POST: Anonymous result iff the viewer is anonymous
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	if !query.Viewer.IsAuthenticated() {
		return DashboardResult{Anonymous: true}, nil
	}
	result := DashboardResult{IsStaff: query.Viewer.IsStaff()}

	groups, err := deps.GroupReader.ListGroups(ctx, query.Token, "")
	if err != nil {
		return DashboardResult{}, fmt.Errorf("list groups: %w", err)
	}
	result.GroupCount = len(groups)
	result.TotalPlayers = group.TotalPlayers(groups)
	result.Groups = groups
	if len(groups) > group.DashboardLimit {
		result.Groups = groups[:group.DashboardLimit]
	}
	if !result.IsStaff && len(groups) > 0 {
		mine := groups[0]
		result.MyGroup = &mine
	}

	// Staff: coach count; a failure leaves it unknown rather than failing the page
	if result.IsStaff {
		coaches, err := deps.CoachReader.ListCoaches(ctx, query.Token)
		if err == nil {
			n := len(coaches)
			result.CoachCount = &n
		} else {
			slog.Warn("dashboard_coach_count_failed", "error", err)
		}
	}

	evs, err := deps.EvaluationReader.ListEvaluations(ctx, query.Token, 0)
	if err != nil {
		return DashboardResult{}, fmt.Errorf("list evaluations: %w", err)
	}

	result.BestPlayers = RankBestPlayers(groups, evs, query.Origin)
	if deps.Leaderboard != nil {
		deps.Leaderboard.SetLeaderboardSize(len(result.BestPlayers))
	}

	players := playersByID(groups)
	latest := evaluation.LatestFirst(evs, evaluation.RecentLimit)
	result.Recent = make([]RecentEvaluation, 0, len(latest))
	for _, ev := range latest {
		p := players[ev.Player]
		result.Recent = append(result.Recent, RecentEvaluation{
			Evaluation: ev,
			Player:     p,
			Name:       player.DisplayName(p, ev.Player),
		})
	}
	return result, nil
}

// playersByID indexes the players nested in groups; the last occurrence wins.
func playersByID(groups []group.Group) map[int]*player.Player {
	out := make(map[int]*player.Player)
	for _, g := range groups {
		for _, p := range g.Players {
			pc := p
			out[p.ID] = &pc
		}
	}
	return out
}
