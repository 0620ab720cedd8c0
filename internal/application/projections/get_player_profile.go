package projections

import (
	"context"
	"fmt"
	"strconv"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/media"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/rating"
)

// GetPlayerProfileQuery carries input for the player page.
type GetPlayerProfileQuery struct {
	Token    string
	PlayerID int
	Origin   string
}

// GetPlayerProfileDeps holds dependencies for the player page.
type GetPlayerProfileDeps struct {
	PlayerReader     PlayerReader
	EvaluationReader EvaluationReader
}

// SkillRow is one rated skill as displayed.
type SkillRow struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Rated bool   `json:"rated"`
	Text  string `json:"text"` // "3 (Good)" or "—"
}

// SkillSection is a category of skill rows.
type SkillSection struct {
	Title string     `json:"title"`
	Rows  []SkillRow `json:"rows"`
}

// PlayerProfileResult carries the player page.
type PlayerProfileResult struct {
	Player       player.Player          `json:"player"`
	PhotoURL     string                 `json:"photo_url"`
	Evaluation   *evaluation.Evaluation `json:"evaluation"`
	Sections     []SkillSection         `json:"sections"`
	AverageText  string                 `json:"average_text"`
	AverageLabel string                 `json:"average_label"`
	Scores       evaluation.Scores      `json:"scores"` // prefill for create/edit forms
	RatingScale  []rating.Option        `json:"-"`
}

// QueryGetPlayerProfile loads a player and the first evaluation listed for them.
// POST: Sections is empty when the player has no evaluation
func QueryGetPlayerProfile(ctx context.Context, query GetPlayerProfileQuery, deps GetPlayerProfileDeps) (PlayerProfileResult, error) {
	p, err := deps.PlayerReader.GetPlayer(ctx, query.Token, query.PlayerID)
	if err != nil {
		return PlayerProfileResult{}, fmt.Errorf("get player %d: %w", query.PlayerID, err)
	}
	evs, err := deps.EvaluationReader.ListEvaluations(ctx, query.Token, query.PlayerID)
	if err != nil {
		return PlayerProfileResult{}, fmt.Errorf("list evaluations: %w", err)
	}

	result := PlayerProfileResult{
		Player:       p,
		PhotoURL:     media.ResolveURL(query.Origin, p.Photo),
		Sections:     []SkillSection{},
		AverageText:  rating.NoRating,
		AverageLabel: rating.NoRating,
		RatingScale:  rating.Options(),
	}
	if len(evs) > 0 {
		ev := evs[0]
		result.Evaluation = &ev
	}
	result.Scores = evaluation.ScoresFrom(result.Evaluation)
	if result.Evaluation == nil {
		return result, nil
	}

	result.Sections = SkillSections(result.Evaluation)
	result.AverageLabel = result.Evaluation.RatingLabel()
	if result.Evaluation.AverageRating != nil {
		result.AverageText = strconv.FormatFloat(*result.Evaluation.AverageRating, 'f', 2, 64)
	}
	return result, nil
}

// SkillSections lays out an evaluation's skills in catalogue order.
func SkillSections(ev *evaluation.Evaluation) []SkillSection {
	cats := evaluation.Categories()
	out := make([]SkillSection, 0, len(cats))
	for _, c := range cats {
		sec := SkillSection{Title: c.Title, Rows: make([]SkillRow, 0, len(c.Skills))}
		for _, s := range c.Skills {
			row := SkillRow{Key: s.Key, Label: s.Label, Text: rating.NoRating}
			if v, ok := ev.SkillValue(s.Key); ok {
				row.Value, row.Rated = v, true
				row.Text = fmt.Sprintf("%d (%s)", v, rating.Label(v))
			}
			sec.Rows = append(sec.Rows, row)
		}
		out = append(out, sec)
	}
	return out
}
