// internal/config/resolver.go
//
// Environment-to-config resolution.
//
/*
Context
--------
`Resolve()` is a pure transform: `(Mode, Source) → *Config`.  It applies
the built-in defaults, builds the module descriptor list, validates the
invariants, and returns.  It performs no disk or network I/O.

Defaults apply when a value is unset *or* empty, so `JWT_SECRET=` in a
file still yields the placeholder secret rather than an empty key.

Values without a default (payment keys, bucket credentials, search host)
pass through as they are, possibly empty.  `Audit()` reports them when
asked; the runtime decides whether they are fatal.
*/
package config

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/barrio/internal/metrics"
	"github.com/yanizio/barrio/internal/modules"
)

// Environment keys.
const (
	KeyNodeEnv         = "NODE_ENV"
	KeyDatabaseURL     = "DATABASE_URL"
	KeyDatabaseSSL     = "DATABASE_SSL"
	KeyRedisURL        = "REDIS_URL"
	KeyRedisPrefix     = "REDIS_PREFIX"
	KeyStoreCORS       = "STORE_CORS"
	KeyAdminCORS       = "ADMIN_CORS"
	KeyAuthCORS        = "AUTH_CORS"
	KeyJWTSecret       = "JWT_SECRET"
	KeyCookieSecret    = "COOKIE_SECRET"
	KeyAdminBackendURL = "ADMIN_BACKEND_URL"
	KeyOpenBrowser     = "OPEN_BROWSER"
)

// Built-in defaults for local development.
const (
	DefaultDatabaseURL     = "postgres://localhost/medusa-starter-default"
	DefaultRedisURL        = "redis://localhost:6379"
	DefaultStoreCORS       = "http://localhost:8000"
	DefaultAdminCORS       = "http://localhost:7000,http://localhost:7001"
	DefaultAuthCORS        = "http://localhost:7000,http://localhost:7001,http://localhost:8000"
	DefaultAdminBackendURL = "http://localhost:9000"

	// InsecureSecret replaces unset signing secrets.  Never acceptable
	// outside local development; Audit() flags it in deployed modes.
	InsecureSecret = "supersecret"
)

var defaults = map[string]string{
	KeyDatabaseURL:     DefaultDatabaseURL,
	KeyRedisURL:        DefaultRedisURL,
	KeyStoreCORS:       DefaultStoreCORS,
	KeyAdminCORS:       DefaultAdminCORS,
	KeyAuthCORS:        DefaultAuthCORS,
	KeyJWTSecret:       InsecureSecret,
	KeyCookieSecret:    InsecureSecret,
	KeyAdminBackendURL: DefaultAdminBackendURL,
}

// Resolve builds the configuration for mode from src.
func Resolve(mode Mode, src Source) (*Config, error) {
	mode = ParseMode(string(mode))
	r := resolver{src: src}

	cfg := &Config{
		Mode:    mode,
		EnvFile: EnvFile(mode),
		Database: Database{
			URL:     r.get(KeyDatabaseURL),
			Options: DriverOptions{SSL: r.flag(KeyDatabaseSSL, false)},
		},
		Redis: Redis{
			URL:    r.get(KeyRedisURL),
			Prefix: src.Get(KeyRedisPrefix),
		},
		HTTP: HTTP{
			StoreCORS:    splitCORS(r.get(KeyStoreCORS)),
			AdminCORS:    splitCORS(r.get(KeyAdminCORS)),
			AuthCORS:     splitCORS(r.get(KeyAuthCORS)),
			JWTSecret:    r.get(KeyJWTSecret),
			CookieSecret: r.get(KeyCookieSecret),
		},
		Admin: Admin{
			BackendURL:  r.get(KeyAdminBackendURL),
			OpenBrowser: src.Get(KeyOpenBrowser) != "false",
		},
	}

	mods, err := modules.Build(r.value)
	if err != nil {
		return nil, err
	}
	cfg.Modules = mods

	if err := validateStruct(cfg); err != nil {
		return nil, err
	}

	metrics.ResolutionsTotal.Inc()
	return cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

type resolver struct {
	src Source
}

// value returns the source value, or the built-in default when the value
// is unset or empty.
func (r resolver) value(key string) string {
	if val := r.src.Get(key); val != "" {
		return val
	}
	return defaults[key]
}

// get is value plus the defaults-applied counter.
func (r resolver) get(key string) string {
	if r.src.Get(key) == "" {
		if _, ok := defaults[key]; ok {
			metrics.DefaultsAppliedTotal.WithLabelValues(key).Inc()
		}
	}
	return r.value(key)
}

func (r resolver) flag(key string, def bool) bool {
	raw := r.src.Get(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		zap.S().Warnw("ignoring malformed boolean", "key", key, "value", raw, "default", def)
		return def
	}
	return b
}

// splitCORS turns "a, b,,c" into [a b c].
func splitCORS(raw string) CORS {
	c := CORS{Raw: raw}
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.Origins = append(c.Origins, o)
		}
	}
	return c
}
