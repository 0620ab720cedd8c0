package academyapi

import (
	"context"
	"net/http"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
)

// ObtainToken exchanges credentials for a token pair.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (TokenPair, error) {
	var pair TokenPair
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/token/",
		Route:  "/api/auth/token/",
		JSON:   map[string]string{"username": username, "password": password},
	}, &pair)
	return pair, err
}

// RefreshToken trades a refresh token for a new access token.
// When the API does not rotate refresh tokens the returned Refresh is the input.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (TokenPair, error) {
	var pair TokenPair
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/token/refresh/",
		Route:  "/api/auth/token/refresh/",
		JSON:   map[string]string{"refresh": refresh},
	}, &pair)
	if err != nil {
		return TokenPair{}, err
	}
	if pair.Refresh == "" {
		pair.Refresh = refresh
	}
	return pair, nil
}

// Signup registers a new coach account.
func (c *Client) Signup(ctx context.Context, form coach.CreateForm) (coach.Coach, error) {
	var out coach.Coach
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/signup/",
		Route:  "/api/auth/signup/",
		JSON:   form,
	}, &out)
	return out, err
}

// Me returns the current user's identity payload.
func (c *Client) Me(ctx context.Context, token string) (identity.Me, error) {
	var me identity.Me
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/auth/me/",
		Route:  "/api/auth/me/",
		Token:  token,
	}, &me)
	return me, err
}

// UpdateMe patches the current user's profile; the form may carry a photo.
func (c *Client) UpdateMe(ctx context.Context, token string, form *Form) (identity.Me, error) {
	var me identity.Me
	err := c.call(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/auth/me/",
		Route:  "/api/auth/me/",
		Token:  token,
		Form:   form,
	}, &me)
	return me, err
}

// ChangePassword changes the current user's password and returns the API's message.
func (c *Client) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) (string, error) {
	var out struct {
		Detail string `json:"detail"`
	}
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/change-password/",
		Route:  "/api/auth/change-password/",
		Token:  token,
		JSON:   map[string]string{"old_password": oldPassword, "new_password": newPassword},
	}, &out)
	return out.Detail, err
}
