package academyapi

import (
	"context"
	"net/http"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
)

// ListCoaches returns every coach with its groups. Staff only.
func (c *Client) ListCoaches(ctx context.Context, token string) ([]coach.Coach, error) {
	var out []coach.Coach
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/coaches/",
		Route:  "/api/coaches/",
		Token:  token,
	}, &out)
	return out, err
}

// GetCoach returns one coach with its groups.
func (c *Client) GetCoach(ctx context.Context, token string, id int) (coach.Coach, error) {
	var out coach.Coach
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/coaches/" + itoa(id) + "/",
		Route:  "/api/coaches/{id}/",
		Token:  token,
	}, &out)
	return out, err
}

// CreateCoachWithUser creates a login and its coach profile in one call.
func (c *Client) CreateCoachWithUser(ctx context.Context, token string, form coach.CreateForm) (coach.Coach, error) {
	var out coach.Coach
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/coaches/create-with-user/",
		Route:  "/api/coaches/create-with-user/",
		Token:  token,
		JSON:   form,
	}, &out)
	return out, err
}

// DeleteCoach removes a coach and its login. The API refuses while groups are assigned.
func (c *Client) DeleteCoach(ctx context.Context, token string, id int) error {
	return c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/coaches/" + itoa(id) + "/",
		Route:  "/api/coaches/{id}/",
		Token:  token,
	}, nil)
}
