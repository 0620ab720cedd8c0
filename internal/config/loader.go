package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "ACADEMY_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ACADEMY_CONFIG is set
//  3. env (prefix ACADEMY_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// ACADEMY_API_URL -> api_url (flat keys, underscores preserved)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
// PRE: none
// POST: returns an error wrapping ErrInvalidConfig on the first bad value
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("%w: env must be %q or %q", ErrInvalidConfig, EnvDevelopment, EnvProduction)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api_url must be an absolute URL", ErrInvalidConfig)
	}
	if c.APITimeoutMs <= 0 {
		return fmt.Errorf("%w: api_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("%w: session_ttl_hours must be positive", ErrInvalidConfig)
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("%w: rate_limit_per_second must be positive", ErrInvalidConfig)
	}
	for name, key := range map[string]string{"csrf_key": c.CSRFKey, "session_key": c.SessionKey} {
		if key == "" {
			if c.IsProduction() {
				return fmt.Errorf("%w: %s is required in production", ErrInvalidConfig, name)
			}
			continue
		}
		if b, err := hex.DecodeString(key); err != nil || len(b) != 32 {
			return fmt.Errorf("%w: %s must be 64 hex characters (32 bytes)", ErrInvalidConfig, name)
		}
	}
	return nil
}

// APIOrigin returns APIURL without a trailing slash, ready for path concatenation.
func (c *Config) APIOrigin() string {
	return strings.TrimRight(c.APIURL, "/")
}
