package academyapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
)

// ListEvaluations returns evaluations, filtered to one player when playerID > 0.
func (c *Client) ListEvaluations(ctx context.Context, token string, playerID int) ([]evaluation.Evaluation, error) {
	var q url.Values
	if playerID > 0 {
		q = url.Values{"player": {itoa(playerID)}}
	}
	var out []evaluation.Evaluation
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/evaluations/",
		Route:  "/api/evaluations/",
		Token:  token,
		Query:  q,
	}, &out)
	return out, err
}

// CreateEvaluation records a new evaluation. fields holds skill scores and notes.
func (c *Client) CreateEvaluation(ctx context.Context, token string, playerID int, fields map[string]any) (evaluation.Evaluation, error) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["player"] = playerID
	var out evaluation.Evaluation
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/evaluations/",
		Route:  "/api/evaluations/",
		Token:  token,
		JSON:   body,
	}, &out)
	return out, err
}

// PatchEvaluation applies a partial update to an evaluation.
func (c *Client) PatchEvaluation(ctx context.Context, token string, id int, fields map[string]any) (evaluation.Evaluation, error) {
	var out evaluation.Evaluation
	err := c.call(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/evaluations/" + itoa(id) + "/",
		Route:  "/api/evaluations/{id}/",
		Token:  token,
		JSON:   fields,
	}, &out)
	return out, err
}
