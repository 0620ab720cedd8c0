package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
)

// EvaluationWriter creates and patches evaluations.
type EvaluationWriter interface {
	ListEvaluations(ctx context.Context, token string, playerID int) ([]evaluation.Evaluation, error)
	CreateEvaluation(ctx context.Context, token string, playerID int, fields map[string]any) (evaluation.Evaluation, error)
	PatchEvaluation(ctx context.Context, token string, id int, fields map[string]any) (evaluation.Evaluation, error)
}

// EvaluationDeps holds dependencies for the evaluation orchestrators.
type EvaluationDeps struct {
	Evaluations EvaluationWriter
}

// EvaluationInput carries a score form and notes for one player.
type EvaluationInput struct {
	Token        string
	PlayerID     int
	EvaluationID int // edits only
	Scores       evaluation.Scores
	Notes        string
}

// ErrEvaluationNotFound is returned when an edit targets an evaluation the player does not have.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// ExecuteCreateEvaluation records a first evaluation for a player.
// POST: every skill is sent clamped to [1,5]; notes are trimmed
func ExecuteCreateEvaluation(ctx context.Context, input EvaluationInput, deps EvaluationDeps) (evaluation.Evaluation, error) {
	if input.PlayerID <= 0 {
		return evaluation.Evaluation{}, ErrPlayerRequired
	}
	body := input.Scores.Payload()
	body["notes"] = strings.TrimSpace(input.Notes)
	ev, err := deps.Evaluations.CreateEvaluation(ctx, input.Token, input.PlayerID, body)
	if err != nil {
		return evaluation.Evaluation{}, fmt.Errorf("create evaluation: %w", err)
	}
	slog.Info("evaluation_event", "event", "evaluation_created", "player_id", input.PlayerID, "evaluation_id", ev.ID)
	return ev, nil
}

// ExecuteEditSkills rewrites the skill scores of an evaluation. The current
// notes are re-read and sent back unchanged.
// PRE: EvaluationID belongs to PlayerID
func ExecuteEditSkills(ctx context.Context, input EvaluationInput, deps EvaluationDeps) (evaluation.Evaluation, error) {
	current, err := findEvaluation(ctx, input, deps)
	if err != nil {
		return evaluation.Evaluation{}, err
	}
	body := input.Scores.Payload()
	body["notes"] = current.Notes
	ev, err := deps.Evaluations.PatchEvaluation(ctx, input.Token, current.ID, body)
	if err != nil {
		return evaluation.Evaluation{}, fmt.Errorf("edit skills: %w", err)
	}
	slog.Info("evaluation_event", "event", "skills_edited", "player_id", input.PlayerID, "evaluation_id", ev.ID)
	return ev, nil
}

// ExecuteEditNotes replaces only the notes of an evaluation.
func ExecuteEditNotes(ctx context.Context, input EvaluationInput, deps EvaluationDeps) (evaluation.Evaluation, error) {
	if input.EvaluationID <= 0 {
		return evaluation.Evaluation{}, ErrEvaluationNotFound
	}
	ev, err := deps.Evaluations.PatchEvaluation(ctx, input.Token, input.EvaluationID, map[string]any{
		"notes": strings.TrimSpace(input.Notes),
	})
	if err != nil {
		return evaluation.Evaluation{}, fmt.Errorf("edit notes: %w", err)
	}
	slog.Info("evaluation_event", "event", "notes_edited", "player_id", input.PlayerID, "evaluation_id", ev.ID)
	return ev, nil
}

func findEvaluation(ctx context.Context, input EvaluationInput, deps EvaluationDeps) (evaluation.Evaluation, error) {
	if input.EvaluationID <= 0 {
		return evaluation.Evaluation{}, ErrEvaluationNotFound
	}
	evs, err := deps.Evaluations.ListEvaluations(ctx, input.Token, input.PlayerID)
	if err != nil {
		return evaluation.Evaluation{}, fmt.Errorf("load evaluation: %w", err)
	}
	for _, ev := range evs {
		if ev.ID == input.EvaluationID {
			return ev, nil
		}
	}
	return evaluation.Evaluation{}, ErrEvaluationNotFound
}
