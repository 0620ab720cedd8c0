// Package config defines the frontend's configuration and how it is loaded.
package config

import (
	"strings"
	"time"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Env is "development" or "production".
	Env string `koanf:"env"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// APIURL is the origin of the academy REST API. Relative media paths are prefixed with it.
	APIURL string `koanf:"api_url"`

	// APITimeoutMs bounds every call to the academy API.
	APITimeoutMs int `koanf:"api_timeout_ms"`

	// DBPath is the SQLite file holding sessions.
	DBPath string `koanf:"db_path"`

	// CSRFKey and SessionKey are hex-encoded 32-byte secrets. Required in production.
	CSRFKey    string `koanf:"csrf_key"`
	SessionKey string `koanf:"session_key"`

	// SessionTTLHours is the idle lifetime of a login session.
	SessionTTLHours int `koanf:"session_ttl_hours"`

	// TokenRefreshSkewS refreshes an access token this many seconds before it expires.
	TokenRefreshSkewS int `koanf:"token_refresh_skew_s"`

	// SlowRequestMs and SlowCallMs are warn thresholds for inbound requests and API calls.
	SlowRequestMs int `koanf:"slow_request_ms"`
	SlowCallMs    int `koanf:"slow_call_ms"`

	// RateLimitPerSecond is the per-IP request budget.
	RateLimitPerSecond int `koanf:"rate_limit_per_second"`

	// AllowedOrigins is a comma-separated CORS allow list for JSON responses. Empty disables CORS.
	AllowedOrigins string `koanf:"allowed_origins"`

	// ResendKey enables real email delivery of reports. Empty uses the no-op sender.
	ResendKey string `koanf:"resend_key"`
	EmailFrom string `koanf:"email_from"`
	ReplyTo   string `koanf:"reply_to"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:               ":8080",
		Env:                EnvDevelopment,
		LogLevel:           "info",
		LogFormat:          "text",
		APIURL:             "http://127.0.0.1:8000",
		APITimeoutMs:       15_000,
		DBPath:             "academy.db",
		SessionTTLHours:    24 * 7,
		TokenRefreshSkewS:  30,
		SlowRequestMs:      300,
		SlowCallMs:         200,
		RateLimitPerSecond: 20,
		EmailFrom:          "El Capitano Academy <noreply@elcapitano.academy>",
		ReplyTo:            "info@elcapitano.academy",
	}
}

// IsProduction reports whether the process runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// APITimeout returns the per-call timeout for the academy API.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutMs) * time.Millisecond
}

// SessionTTL returns the idle lifetime of a session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// TokenRefreshSkew returns how early an expiring access token is refreshed.
func (c *Config) TokenRefreshSkew() time.Duration {
	return time.Duration(c.TokenRefreshSkewS) * time.Second
}

// Origins splits AllowedOrigins into a trimmed, non-empty list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
