package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	emailPkg "github.com/HazemIbrahim256/sports-academy/internal/adapters/email"
	web "github.com/HazemIbrahim256/sports-academy/internal/adapters/http"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/perf"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/metrics"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/storage"
	sessionStore "github.com/HazemIbrahim256/sports-academy/internal/adapters/storage/session"
	"github.com/HazemIbrahim256/sports-academy/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// sessionSweepInterval is how often idle sessions are purged.
const sessionSweepInterval = 15 * time.Minute

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slog.SetDefault(slog.New(newLogHandler(cfg)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open applies pending migrations.
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, time.Duration(cfg.SlowCallMs)*time.Millisecond)
	defer timedDB.Close()

	sealer, err := newSealer(cfg)
	if err != nil {
		log.Fatalf("failed to configure session encryption: %v", err)
	}
	sessions := sessionStore.NewSQLiteStore(timedDB, sealer)

	appMetrics := metrics.NewManager(metrics.WithNamespace("academy"))

	client := academyapi.New(academyapi.Options{
		BaseURL:   cfg.APIOrigin(),
		Timeout:   cfg.APITimeout(),
		SlowCall:  time.Duration(cfg.SlowCallMs) * time.Millisecond,
		Collector: collector,
		Metrics:   appMetrics,
	})

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("email_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_configured", "provider", "noop", "detail", "ACADEMY_RESEND_KEY is not set; report emails are not delivered")
		} else {
			slog.Info("email_configured", "provider", "noop")
		}
	}

	go sweepSessions(ctx, sessions, cfg.SessionTTL())

	mux := web.NewMux(ctx, web.Deps{
		Config:    cfg,
		API:       client,
		Sessions:  sessions,
		Collector: collector,
		Metrics:   appMetrics,
		Sender:    sender,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// Uploads and PDF streaming need more than the API timeout.
		WriteTimeout: cfg.APITimeout() + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_failed", "error", err)
		}
	}()

	slog.Info("server_starting",
		"version", version,
		"addr", cfg.Addr,
		"env", cfg.Env,
		"api", cfg.APIOrigin(),
		"schema", storage.LatestSchemaVersion(),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	slog.Info("server_stopped")
}

func newLogHandler(cfg *config.Config) slog.Handler {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// newSealer builds the token sealer. Without a configured key, development gets
// a random one and every session ends at restart.
func newSealer(cfg *config.Config) (*sessionStore.Sealer, error) {
	if cfg.SessionKey != "" {
		return sessionStore.NewSealerHex(cfg.SessionKey)
	}
	if cfg.IsProduction() {
		log.Fatal("ACADEMY_SESSION_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	slog.Warn("session_key_random", "detail", "sessions will not survive a restart; set ACADEMY_SESSION_KEY")
	return sessionStore.NewSealer(key)
}

func sweepSessions(ctx context.Context, store *sessionStore.SQLiteStore, ttl time.Duration) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx, time.Now().Add(-ttl))
			if err != nil {
				slog.Error("session_sweep_failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("session_sweep", "removed", n)
			}
		}
	}
}
