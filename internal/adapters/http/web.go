package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/email"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/middleware"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/perf"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/metrics"
	sessionStore "github.com/HazemIbrahim256/sports-academy/internal/adapters/storage/session"
	"github.com/HazemIbrahim256/sports-academy/internal/application/supersede"
	"github.com/HazemIbrahim256/sports-academy/internal/config"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Config    *config.Config
	API       *academyapi.Client
	Sessions  sessionStore.Store
	Collector *perf.Collector  // optional
	Metrics   *metrics.Manager // optional
	Sender    email.Sender     // nil uses the no-op sender
}

// loadCSRFKey decodes the configured CSRF secret (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey(cfg *config.Config) []byte {
	if cfg.CSRFKey != "" {
		key, err := hex.DecodeString(cfg.CSRFKey)
		if err != nil || len(key) != 32 {
			log.Fatal("ACADEMY_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if cfg.IsProduction() {
		log.Fatal("ACADEMY_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (open forms won't survive restart). Set ACADEMY_CSRF_KEY for production.")
	return key
}

// Global academy API client (set by NewMux)
var api *academyapi.Client

// Global session store instance
var sessions sessionStore.Store

// Global process configuration
var cfg *config.Config

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global Prometheus metrics; nil-safe
var appMetrics *metrics.Manager

// attendanceTracker discards attendance saves overtaken by a newer one.
var attendanceTracker = supersede.NewTracker()

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender = email.NewNoopSender()

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// NewMux wires HTTP handlers for the app. The rate limiter's sweeper stops when ctx is done.
func NewMux(ctx context.Context, d Deps) http.Handler {
	cfg = d.Config
	api = d.API
	sessions = d.Sessions
	perfCollector = d.Collector
	appMetrics = d.Metrics
	if d.Sender != nil {
		SetEmailSender(d.Sender, cfg.EmailFrom, cfg.ReplyTo)
	} else {
		SetEmailSender(email.NewNoopSender(), cfg.EmailFrom, cfg.ReplyTo)
	}
	middleware.SecureCookies = cfg.IsProduction()

	mux := http.NewServeMux()
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from config
	csrfKey := loadCSRFKey(cfg)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerSecond, time.Second)

	// Outermost first: Timing -> RateLimit -> CORS -> Auth -> Identity -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(middleware.RecordPattern(mux),
		middleware.SecurityHeaders(cfg.APIOrigin()),
		middleware.CSRF(csrfKey, cfg.IsProduction(), trustedHosts(cfg.Origins())),
		middleware.Identity(api, sessions),
		middleware.Auth(middleware.AuthConfig{
			Sessions: sessions,
			Tokens:   api,
			TTL:      cfg.SessionTTL(),
			Skew:     cfg.TokenRefreshSkew(),
			Events:   appMetrics,
		}),
		middleware.CORS(cfg.Origins()),
		middleware.RateLimit(limiter),
		middleware.Timing(middleware.TimingConfig{
			Collector:     d.Collector,
			Metrics:       appMetrics,
			SlowThreshold: time.Duration(cfg.SlowRequestMs) * time.Millisecond,
		}),
	)
}

// trustedHosts reduces allowed origins to the host form gorilla/csrf compares against.
func trustedHosts(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
		}
	}
	return out
}
