package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

// GroupWriter mutates groups on the academy API.
type GroupWriter interface {
	CreateGroup(ctx context.Context, token string, form group.CreateForm) (group.Group, error)
	DeleteGroup(ctx context.Context, token string, id int) error
	ResetGroupEvaluations(ctx context.Context, token string, id int) (academyapi.ResetResult, error)
}

// PlayerPatcher applies partial JSON updates to a player.
type PlayerPatcher interface {
	PatchPlayer(ctx context.Context, token string, id int, fields map[string]any) (player.Player, error)
}

// GroupDeps holds dependencies for the group orchestrators.
type GroupDeps struct {
	Groups  GroupWriter
	Players PlayerPatcher
}

// ExecuteCreateGroup creates a group owned by the chosen coach.
// PRE: caller is staff
// POST: no call is made when name or coach is missing
func ExecuteCreateGroup(ctx context.Context, token string, form group.CreateForm, deps GroupDeps) (group.Group, error) {
	if err := form.Validate(); err != nil {
		return group.Group{}, err
	}
	g, err := deps.Groups.CreateGroup(ctx, token, form)
	if err != nil {
		return group.Group{}, fmt.Errorf("create group: %w", err)
	}
	slog.Info("group_event", "event", "group_created", "group_id", g.ID, "coach_id", form.CoachID)
	return g, nil
}

// ExecuteDeleteGroup deletes a group after explicit confirmation.
func ExecuteDeleteGroup(ctx context.Context, token string, groupID int, confirmed bool, deps GroupDeps) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := deps.Groups.DeleteGroup(ctx, token, groupID); err != nil {
		return fmt.Errorf("delete group %d: %w", groupID, err)
	}
	slog.Info("group_event", "event", "group_deleted", "group_id", groupID)
	return nil
}

// ExecuteResetEvaluations resets every evaluation in the group to defaults.
// POST: returns the API's detail text for the flash message
func ExecuteResetEvaluations(ctx context.Context, token string, groupID int, confirmed bool, deps GroupDeps) (string, error) {
	if !confirmed {
		return "", ErrNotConfirmed
	}
	res, err := deps.Groups.ResetGroupEvaluations(ctx, token, groupID)
	if err != nil {
		return "", fmt.Errorf("reset group %d: %w", groupID, err)
	}
	slog.Info("group_event", "event", "evaluations_reset", "group_id", groupID, "updated", res.Updated)
	if res.Detail == "" {
		return fmt.Sprintf("Reset %d evaluations.", res.Updated), nil
	}
	return res.Detail, nil
}

// ExecuteAddPlayerToGroup moves an existing player into the group.
// PRE: groupID and playerID identify existing records
// POST: the returned player belongs to groupID
func ExecuteAddPlayerToGroup(ctx context.Context, token string, groupID, playerID int, deps GroupDeps) (player.Player, error) {
	if playerID <= 0 {
		return player.Player{}, ErrPlayerRequired
	}
	p, err := deps.Players.PatchPlayer(ctx, token, playerID, map[string]any{"group": groupID})
	if err != nil {
		return player.Player{}, fmt.Errorf("add player %d to group %d: %w", playerID, groupID, err)
	}
	slog.Info("group_event", "event", "player_added", "group_id", groupID, "player_id", playerID)
	return p, nil
}
