// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"sitekit/internal/scripts"
	"sitekit/pkg/secrets"
	s "sitekit/pkg/string"
)

// Storage backends for consent records.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"SITEKIT_ADDR" envDefault:":8080"`
	Environment     string        `env:"SITEKIT_ENV" envDefault:"development"`
	LogLevel        string        `env:"SITEKIT_LOG_LEVEL" envDefault:"info"`
	RequestTimeout  time.Duration `env:"SITEKIT_REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SITEKIT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	TrustedProxies  []string      `env:"SITEKIT_TRUSTED_PROXIES" envSeparator:","`
	LegalConfigPath string        `env:"SITEKIT_LEGAL_CONFIG"`

	Consent  Consent
	Visitor  Visitor
	Storage  Storage
	Database DatabaseConfig
	Redis    RedisConfig
	Scripts  scripts.Config
}

// Consent configures the per-visitor consent sessions.
type Consent struct {
	Debug           bool          `env:"SITEKIT_CONSENT_DEBUG"`
	StorageKey      string        `env:"SITEKIT_CONSENT_STORAGE_KEY" envDefault:"cookie_consent"`
	PolicyURL       string        `env:"SITEKIT_COOKIE_POLICY_URL" envDefault:"/cookies"`
	SessionTTL      time.Duration `env:"SITEKIT_SESSION_TTL" envDefault:"30m"`
	CleanupInterval time.Duration `env:"SITEKIT_SESSION_CLEANUP" envDefault:"5m"`
	AuditBuffer     int           `env:"SITEKIT_AUDIT_BUFFER" envDefault:"256"`
}

// Visitor configures the signed visitor cookie.
type Visitor struct {
	SigningKey   string        `env:"SITEKIT_VISITOR_SIGNING_KEY"`
	Issuer       string        `env:"SITEKIT_VISITOR_ISSUER" envDefault:"sitekit"`
	TTL          time.Duration `env:"SITEKIT_VISITOR_TTL" envDefault:"8760h"`
	CookieSecure bool          `env:"SITEKIT_COOKIE_SECURE" envDefault:"true"`
	CookieDomain string        `env:"SITEKIT_COOKIE_DOMAIN"`

	// EphemeralKey is set when SigningKey was generated at startup.
	EphemeralKey bool `env:"-"`
}

// Storage selects and tunes the consent storage backend.
type Storage struct {
	Backend          string        `env:"CONSENT_STORAGE_BACKEND" envDefault:"memory"`
	SQLitePath       string        `env:"SITEKIT_SQLITE_PATH" envDefault:"sitekit.db"`
	Namespace        string        `env:"SITEKIT_STORAGE_NAMESPACE"`
	RecordTTL        time.Duration `env:"SITEKIT_RECORD_TTL"`
	BreakerThreshold int           `env:"SITEKIT_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"SITEKIT_BREAKER_COOLDOWN" envDefault:"30s"`
	Tracing          bool          `env:"SITEKIT_STORAGE_TRACING" envDefault:"true"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// FromEnv parses and validates the server configuration.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c *Server) validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendNone, BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("storage backend %q requires DATABASE_URL", c.Storage.Backend)
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("storage backend %q requires REDIS_URL", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Visitor.SigningKey == "" {
		if c.IsProduction() {
			return fmt.Errorf("SITEKIT_VISITOR_SIGNING_KEY is required in production")
		}
		// Outside production a random key is fine: visitors just get a new
		// id after a restart.
		key, err := secrets.Generate()
		if err != nil {
			return err
		}
		c.Visitor.SigningKey = key
		c.Visitor.EphemeralKey = true
	}
	if _, err := c.ProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether the server runs with production defaults.
func (c Server) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// ProxyPrefixes parses TrustedProxies. Bare addresses are treated as single
// host prefixes.
func (c Server) ProxyPrefixes() ([]netip.Prefix, error) {
	values := s.DedupeAndTrim(c.TrustedProxies)
	out := make([]netip.Prefix, 0, len(values))
	for _, raw := range values {
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			out = append(out, p)
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
