package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const (
	sessionContextKey  contextKey = "session"
	identityContextKey contextKey = "identity"
)

// SessionCookieName is the cookie holding the opaque session id.
const SessionCookieName = "academy_session"

// SecureCookies marks cookies Secure; set in production.
var SecureCookies bool

// SessionStore is the persistence the auth middleware needs.
type SessionStore interface {
	Get(ctx context.Context, id string) (session.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	UpdateTokens(ctx context.Context, id, access, refresh string) error
	Delete(ctx context.Context, id string) error
}

// SessionEventRecorder counts session lifecycle events.
type SessionEventRecorder interface {
	SessionEvent(event string)
}

// AuthConfig configures the Auth middleware.
type AuthConfig struct {
	Sessions SessionStore
	Tokens   orchestrators.TokenIssuer
	TTL      time.Duration // idle lifetime
	Skew     time.Duration // refresh the access token this early
	Now      func() time.Time
	Events   SessionEventRecorder // optional
}

func (c AuthConfig) event(name string) {
	if c.Events != nil {
		c.Events.SessionEvent(name)
	}
}

// Auth returns middleware that loads the session named by the cookie and puts it in context.
// Expiring access tokens are refreshed first. It does NOT block anonymous requests;
// use RequireAuth or RequireStaff for that.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" || skipsSession(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			sess, err := cfg.Sessions.Get(ctx, cookie.Value)
			switch {
			case errors.Is(err, session.ErrNotFound):
				ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			case err != nil:
				slog.Error("session_load_failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			now := cfg.Now()
			if cfg.TTL > 0 && sess.IsExpired(now, cfg.TTL) {
				_ = cfg.Sessions.Delete(ctx, sess.ID)
				ClearSessionCookie(w)
				cfg.event("expired")
				slog.Info("auth_event", "event", "session_expired")
				next.ServeHTTP(w, r)
				return
			}

			sess, err = orchestrators.ExecuteRefreshSession(ctx, sess, orchestrators.RefreshSessionDeps{
				Tokens:       cfg.Tokens,
				SessionStore: cfg.Sessions,
				Now:          cfg.Now,
				Skew:         cfg.Skew,
			})
			switch {
			case errors.Is(err, orchestrators.ErrSessionExpired):
				ClearSessionCookie(w)
				cfg.event("refresh_rejected")
				next.ServeHTTP(w, r)
				return
			case err != nil:
				// The current access token may still be accepted; the API decides.
				slog.Warn("token_refresh_failed", "error", err)
			default:
				cfg.event("active")
			}

			if err := cfg.Sessions.Touch(ctx, sess.ID, now); err != nil {
				slog.Warn("session_touch_failed", "error", err)
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(ctx, sess)))
		})
	}
}

// skipsSession lists paths that never need the caller's session.
func skipsSession(path string) bool {
	return strings.HasPrefix(path, "/static/") || path == "/healthz" || path == "/metrics"
}

// IdentityResolver fetches the current user for a bearer token.
type IdentityResolver interface {
	Me(ctx context.Context, token string) (identity.Me, error)
}

// SessionDeleter forgets a session whose tokens the API rejected.
type SessionDeleter interface {
	Delete(ctx context.Context, id string) error
}

// Identity returns middleware that resolves the viewer once per request.
// A 401 deletes the session; any other failure leaves the viewer anonymous for this request only.
// INVARIANT: every request passing through carries an identity, Anonymous by default
func Identity(resolver IdentityResolver, sessions SessionDeleter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			viewer := identity.Identity{}

			if sess, ok := GetSessionFromContext(ctx); ok {
				me, err := resolver.Me(ctx, sess.Access)
				switch {
				case err == nil:
					viewer = identity.FromMe(me)
				case academyapi.IsUnauthorized(err):
					if delErr := sessions.Delete(ctx, sess.ID); delErr != nil && !errors.Is(delErr, session.ErrNotFound) {
						slog.Warn("session_delete_failed", "error", delErr)
					}
					ClearSessionCookie(w)
					ctx = context.WithValue(ctx, sessionContextKey, nil)
					slog.Info("auth_event", "event", "token_rejected")
				case errors.Is(err, context.Canceled):
					// client went away
				default:
					slog.Warn("identity_fetch_failed", "error", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, viewer)))
		})
	}
}

// RequireAuth returns middleware that blocks anonymous requests.
// Browsers are redirected to /login; other clients get a JSON 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFrom(r.Context()).IsAuthenticated() {
			if WantsHTML(r) {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}
			writeJSONError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff returns middleware that admits staff only.
// Authenticated non-staff users are handed to forbidden, or get a plain 403 when it is nil.
func RequireStaff(forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IdentityFrom(r.Context()).IsStaff() {
				slog.Info("auth_event", "event", "staff_required", "path", r.URL.Path)
				switch {
				case forbidden != nil:
					forbidden.ServeHTTP(w, r)
				case WantsHTML(r):
					http.Error(w, "Forbidden", http.StatusForbidden)
				default:
					writeJSONError(w, http.StatusForbidden, "You do not have permission to perform this action.")
				}
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// WantsHTML reports whether the client asked for a page rather than JSON.
func WantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(session.Session)
	return sess, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// TokenFrom returns the access token of the request's session, or "".
func TokenFrom(ctx context.Context) string {
	sess, _ := GetSessionFromContext(ctx)
	return sess.Access
}

// SessionIDFrom returns the id of the request's session, or "".
func SessionIDFrom(ctx context.Context) string {
	sess, _ := GetSessionFromContext(ctx)
	return sess.ID
}

// IdentityFrom returns the viewer resolved for this request; Anonymous when none was.
func IdentityFrom(ctx context.Context) identity.Identity {
	id, _ := ctx.Value(identityContextKey).(identity.Identity)
	return id
}

// ContextWithIdentity returns a context carrying the viewer.
// Intended for the Identity middleware and tests.
func ContextWithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
