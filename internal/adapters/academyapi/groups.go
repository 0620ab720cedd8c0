package academyapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
)

// ResetResult is the answer to a group evaluation reset.
type ResetResult struct {
	Detail  string `json:"detail"`
	Updated int    `json:"updated"`
}

// ListGroups returns the groups visible to the caller.
// When month (YYYY-MM) is set, nested players carry that month's attendance.
func (c *Client) ListGroups(ctx context.Context, token, month string) ([]group.Group, error) {
	var q url.Values
	if month != "" {
		q = url.Values{"month": {month}}
	}
	var out []group.Group
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/groups/",
		Route:  "/api/groups/",
		Token:  token,
		Query:  q,
	}, &out)
	return out, err
}

// GetGroup returns one group with its coach and players.
func (c *Client) GetGroup(ctx context.Context, token string, id int) (group.Group, error) {
	var out group.Group
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/groups/" + itoa(id) + "/",
		Route:  "/api/groups/{id}/",
		Token:  token,
	}, &out)
	return out, err
}

// CreateGroup creates a group owned by the chosen coach.
func (c *Client) CreateGroup(ctx context.Context, token string, form group.CreateForm) (group.Group, error) {
	var out group.Group
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/groups/",
		Route:  "/api/groups/",
		Token:  token,
		JSON:   form,
	}, &out)
	return out, err
}

// SetGroupCoach assigns a coach to a group, or unassigns it when coachID is nil.
func (c *Client) SetGroupCoach(ctx context.Context, token string, groupID int, coachID *int) (group.Group, error) {
	var out group.Group
	err := c.call(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/groups/" + itoa(groupID) + "/",
		Route:  "/api/groups/{id}/",
		Token:  token,
		JSON:   map[string]*int{"coach_id": coachID},
	}, &out)
	return out, err
}

// DeleteGroup removes a group.
func (c *Client) DeleteGroup(ctx context.Context, token string, id int) error {
	return c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/groups/" + itoa(id) + "/",
		Route:  "/api/groups/{id}/",
		Token:  token,
	}, nil)
}

// GroupReportPDF downloads the group's PDF report.
func (c *Client) GroupReportPDF(ctx context.Context, token string, id int) ([]byte, error) {
	return c.binary(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/groups/" + itoa(id) + "/report-pdf/",
		Route:  "/api/groups/{id}/report-pdf/",
		Token:  token,
	})
}

// ResetGroupEvaluations clears every skill score of the group's players.
func (c *Client) ResetGroupEvaluations(ctx context.Context, token string, id int) (ResetResult, error) {
	var out ResetResult
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/groups/" + itoa(id) + "/reset-evaluations/",
		Route:  "/api/groups/{id}/reset-evaluations/",
		Token:  token,
	}, &out)
	return out, err
}
