package academyapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/attendance"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

// ListPlayers returns players, filtered to one group when groupID > 0.
func (c *Client) ListPlayers(ctx context.Context, token string, groupID int) ([]player.Player, error) {
	var q url.Values
	if groupID > 0 {
		q = url.Values{"group": {itoa(groupID)}}
	}
	var out []player.Player
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/players/",
		Route:  "/api/players/",
		Token:  token,
		Query:  q,
	}, &out)
	return out, err
}

// GetPlayer returns one player with its nested evaluation.
func (c *Client) GetPlayer(ctx context.Context, token string, id int) (player.Player, error) {
	var out player.Player
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/players/" + itoa(id) + "/",
		Route:  "/api/players/{id}/",
		Token:  token,
	}, &out)
	return out, err
}

// CreatePlayer creates a player from a multipart form, which may include a photo.
func (c *Client) CreatePlayer(ctx context.Context, token string, form *Form) (player.Player, error) {
	var out player.Player
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/players/",
		Route:  "/api/players/",
		Token:  token,
		Form:   form,
	}, &out)
	return out, err
}

// PatchPlayer applies a partial JSON update.
func (c *Client) PatchPlayer(ctx context.Context, token string, id int, fields map[string]any) (player.Player, error) {
	var out player.Player
	err := c.call(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/players/" + itoa(id) + "/",
		Route:  "/api/players/{id}/",
		Token:  token,
		JSON:   fields,
	}, &out)
	return out, err
}

// PatchPlayerForm applies a partial multipart update, used for photos.
func (c *Client) PatchPlayerForm(ctx context.Context, token string, id int, form *Form) (player.Player, error) {
	var out player.Player
	err := c.call(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/players/" + itoa(id) + "/",
		Route:  "/api/players/{id}/",
		Token:  token,
		Form:   form,
	}, &out)
	return out, err
}

// DeletePlayer removes a player.
func (c *Client) DeletePlayer(ctx context.Context, token string, id int) error {
	return c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/players/" + itoa(id) + "/",
		Route:  "/api/players/{id}/",
		Token:  token,
	}, nil)
}

// PlayerReportPDF downloads the player's PDF report.
func (c *Client) PlayerReportPDF(ctx context.Context, token string, id int) ([]byte, error) {
	return c.binary(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/players/" + itoa(id) + "/report-pdf/",
		Route:  "/api/players/{id}/report-pdf/",
		Token:  token,
	})
}

// SetAttendance stores the attended day count of a player for a month.
func (c *Client) SetAttendance(ctx context.Context, token string, id int, month attendance.Month, days int) (attendance.Record, error) {
	var out attendance.Record
	err := c.call(ctx, Request{
		Method: http.MethodPut,
		Path:   "/api/players/" + itoa(id) + "/attendance/",
		Route:  "/api/players/{id}/attendance/",
		Token:  token,
		Query:  url.Values{"month": {month.String()}},
		JSON:   map[string]int{"days": days},
	}, &out)
	return out, err
}
