package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/session"
)

// TokenIssuer exchanges credentials and refresh tokens for token pairs.
type TokenIssuer interface {
	ObtainToken(ctx context.Context, username, password string) (academyapi.TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (academyapi.TokenPair, error)
}

// SessionStoreForLogin defines the store interface needed by Login.
type SessionStoreForLogin interface {
	Create(ctx context.Context, s session.Session) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	SessionID string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Tokens       TokenIssuer
	SessionStore SessionStoreForLogin
	GenerateID   func() string
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionExpired     = errors.New("session expired, please log in again")
)

// ExecuteLogin obtains a token pair and stores it in a new session.
// PRE: Username and Password provided
// POST: a session holding the token pair exists and its id is returned
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	pair, err := deps.Tokens.ObtainToken(ctx, username, input.Password)
	if err != nil {
		if apiErr, ok := academyapi.AsError(err); ok && (apiErr.Kind == academyapi.KindUnauthorized || apiErr.Kind == academyapi.KindInvalid) {
			slog.Info("auth_event", "event", "login_failed", "username", username, "status", apiErr.Status)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("obtain token: %w", err)
	}

	now := deps.Now()
	sess := session.Session{
		ID:         deps.GenerateID(),
		Access:     pair.Access,
		Refresh:    pair.Refresh,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := sess.Validate(); err != nil {
		return LoginResult{}, fmt.Errorf("new session: %w", err)
	}
	if err := deps.SessionStore.Create(ctx, sess); err != nil {
		return LoginResult{}, fmt.Errorf("store session: %w", err)
	}

	slog.Info("auth_event", "event", "login_success", "username", username)
	return LoginResult{SessionID: sess.ID}, nil
}

// SessionStoreForLogout defines the store interface needed by Logout.
type SessionStoreForLogout interface {
	Delete(ctx context.Context, id string) error
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	SessionStore SessionStoreForLogout
}

// ExecuteLogout forgets the session's token pair.
// POST: the session no longer exists; an unknown id is not an error
func ExecuteLogout(ctx context.Context, sessionID string, deps LogoutDeps) error {
	if sessionID == "" {
		return nil
	}
	if err := deps.SessionStore.Delete(ctx, sessionID); err != nil && !errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}

// SessionStoreForRefresh defines the store interface needed by RefreshSession.
type SessionStoreForRefresh interface {
	UpdateTokens(ctx context.Context, id, access, refresh string) error
	Delete(ctx context.Context, id string) error
}

// RefreshSessionDeps holds dependencies for RefreshSession.
type RefreshSessionDeps struct {
	Tokens       TokenIssuer
	SessionStore SessionStoreForRefresh
	Now          func() time.Time
	Skew         time.Duration // refresh when the access token expires within Skew
}

// ExecuteRefreshSession renews the access token when it is about to expire.
// A rejected refresh token ends the session.
// PRE: sess was loaded from the store
// POST: returned session holds a usable access token, or ErrSessionExpired and the session is deleted
func ExecuteRefreshSession(ctx context.Context, sess session.Session, deps RefreshSessionDeps) (session.Session, error) {
	if !academyapi.NeedsRefresh(sess.Access, deps.Now(), deps.Skew) || sess.Refresh == "" {
		return sess, nil
	}

	pair, err := deps.Tokens.RefreshToken(ctx, sess.Refresh)
	if err != nil {
		if academyapi.IsUnauthorized(err) {
			_ = deps.SessionStore.Delete(ctx, sess.ID)
			slog.Info("auth_event", "event", "refresh_rejected")
			return session.Session{}, ErrSessionExpired
		}
		return sess, fmt.Errorf("refresh token: %w", err)
	}
	if err := deps.SessionStore.UpdateTokens(ctx, sess.ID, pair.Access, pair.Refresh); err != nil {
		return sess, fmt.Errorf("store refreshed tokens: %w", err)
	}
	sess.Access, sess.Refresh = pair.Access, pair.Refresh
	slog.Debug("auth_event", "event", "token_refreshed")
	return sess, nil
}
