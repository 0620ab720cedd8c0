package projections

import (
	"context"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

// GroupReader lists and fetches groups visible to the token's user.
type GroupReader interface {
	ListGroups(ctx context.Context, token, month string) ([]group.Group, error)
	GetGroup(ctx context.Context, token string, id int) (group.Group, error)
}

// PlayerReader lists and fetches players.
type PlayerReader interface {
	ListPlayers(ctx context.Context, token string, groupID int) ([]player.Player, error)
	GetPlayer(ctx context.Context, token string, id int) (player.Player, error)
}

// CoachReader lists and fetches coaches.
type CoachReader interface {
	ListCoaches(ctx context.Context, token string) ([]coach.Coach, error)
	GetCoach(ctx context.Context, token string, id int) (coach.Coach, error)
}

// EvaluationReader lists evaluations.
type EvaluationReader interface {
	ListEvaluations(ctx context.Context, token string, playerID int) ([]evaluation.Evaluation, error)
}
