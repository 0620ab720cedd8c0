package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
)

// CoachWriter creates and deletes coaches.
type CoachWriter interface {
	CreateCoachWithUser(ctx context.Context, token string, form coach.CreateForm) (coach.Coach, error)
	DeleteCoach(ctx context.Context, token string, id int) error
}

// CreateCoachDeps holds dependencies for CreateCoach.
type CreateCoachDeps struct {
	Coaches CoachWriter
}

// ExecuteCreateCoach creates a coach together with its login.
// PRE: caller is staff
// POST: returns the created coach; no call is made when the form is invalid
func ExecuteCreateCoach(ctx context.Context, token string, form coach.CreateForm, deps CreateCoachDeps) (coach.Coach, error) {
	if err := form.Validate(); err != nil {
		return coach.Coach{}, err
	}
	c, err := deps.Coaches.CreateCoachWithUser(ctx, token, form)
	if err != nil {
		return coach.Coach{}, fmt.Errorf("create coach: %w", err)
	}
	slog.Info("coach_event", "event", "coach_created", "coach_id", c.ID, "username", form.Username)
	return c, nil
}

// DeleteCoachDeps holds dependencies for DeleteCoach.
type DeleteCoachDeps struct {
	Coaches CoachWriter
}

// ExecuteDeleteCoach deletes a coach. The API refuses while the coach still runs groups.
// PRE: Confirmed is the user's explicit confirmation
// POST: the coach is gone, or an error leaves it untouched
func ExecuteDeleteCoach(ctx context.Context, token string, coachID int, confirmed bool, deps DeleteCoachDeps) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := deps.Coaches.DeleteCoach(ctx, token, coachID); err != nil {
		return fmt.Errorf("delete coach %d: %w", coachID, err)
	}
	slog.Info("coach_event", "event", "coach_deleted", "coach_id", coachID)
	return nil
}

// GroupCoachSetter changes the coach of a group; a nil coach unassigns it.
type GroupCoachSetter interface {
	SetGroupCoach(ctx context.Context, token string, groupID int, coachID *int) (group.Group, error)
}

// CoachFetcher reloads a coach after its groups change.
type CoachFetcher interface {
	GetCoach(ctx context.Context, token string, id int) (coach.Coach, error)
}

// AssignGroupInput carries input for group assignment changes.
type AssignGroupInput struct {
	Token       string
	CoachID     int
	GroupID     int // group to assign or unassign
	FromGroupID int // move only: group to release first
}

// AssignGroupDeps holds dependencies for the assignment orchestrators.
type AssignGroupDeps struct {
	Groups  GroupCoachSetter
	Coaches CoachFetcher
}

var (
	ErrNotConfirmed    = errors.New("deletion was not confirmed")
	ErrGroupRequired   = errors.New("choose a group first")
	ErrMoveToSameGroup = errors.New("choose two different groups")
	ErrMoveHalfApplied = errors.New("the coach left the old group but could not take the new one")
)

// ExecuteAssignGroup makes the coach run GroupID and returns the reloaded coach.
// POST: the coach's Groups include GroupID
func ExecuteAssignGroup(ctx context.Context, input AssignGroupInput, deps AssignGroupDeps) (coach.Coach, error) {
	if input.GroupID <= 0 {
		return coach.Coach{}, ErrGroupRequired
	}
	id := input.CoachID
	if _, err := deps.Groups.SetGroupCoach(ctx, input.Token, input.GroupID, &id); err != nil {
		return coach.Coach{}, fmt.Errorf("assign group %d: %w", input.GroupID, err)
	}
	slog.Info("coach_event", "event", "group_assigned", "coach_id", input.CoachID, "group_id", input.GroupID)
	return deps.Coaches.GetCoach(ctx, input.Token, input.CoachID)
}

// ExecuteUnassignGroup releases GroupID from its coach and returns the reloaded coach.
// POST: GroupID has no coach
func ExecuteUnassignGroup(ctx context.Context, input AssignGroupInput, deps AssignGroupDeps) (coach.Coach, error) {
	if input.GroupID <= 0 {
		return coach.Coach{}, ErrGroupRequired
	}
	if _, err := deps.Groups.SetGroupCoach(ctx, input.Token, input.GroupID, nil); err != nil {
		return coach.Coach{}, fmt.Errorf("unassign group %d: %w", input.GroupID, err)
	}
	slog.Info("coach_event", "event", "group_unassigned", "coach_id", input.CoachID, "group_id", input.GroupID)
	return deps.Coaches.GetCoach(ctx, input.Token, input.CoachID)
}

// ExecuteMoveGroup releases FromGroupID and then assigns GroupID, one call after
// the other. If the assignment fails the release is not undone; the error says so.
// PRE: FromGroupID and GroupID differ
// POST: on success the coach runs GroupID and not FromGroupID
func ExecuteMoveGroup(ctx context.Context, input AssignGroupInput, deps AssignGroupDeps) (coach.Coach, error) {
	if input.GroupID <= 0 || input.FromGroupID <= 0 {
		return coach.Coach{}, ErrGroupRequired
	}
	if input.GroupID == input.FromGroupID {
		return coach.Coach{}, ErrMoveToSameGroup
	}
	if _, err := deps.Groups.SetGroupCoach(ctx, input.Token, input.FromGroupID, nil); err != nil {
		return coach.Coach{}, fmt.Errorf("release group %d: %w", input.FromGroupID, err)
	}
	id := input.CoachID
	if _, err := deps.Groups.SetGroupCoach(ctx, input.Token, input.GroupID, &id); err != nil {
		slog.Warn("coach_event", "event", "move_half_applied", "coach_id", input.CoachID, "from", input.FromGroupID, "to", input.GroupID, "error", err)
		return coach.Coach{}, fmt.Errorf("%w: group %d released, group %d: %w", ErrMoveHalfApplied, input.FromGroupID, input.GroupID, err)
	}
	slog.Info("coach_event", "event", "group_moved", "coach_id", input.CoachID, "from", input.FromGroupID, "to", input.GroupID)
	return deps.Coaches.GetCoach(ctx, input.Token, input.CoachID)
}
