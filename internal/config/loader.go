// internal/config/loader.go
//
// Process-wide configuration loader.
//
/*
Context
--------
`Load()` is the one call a binary makes at startup:

  1. Mode comes from `LoadOptions.Mode`, else the process `NODE_ENV`,
     else development.
  2. `LoadSource()` layers `.env`, the mode file, and the process
     environment found in `LoadOptions.Dir` (cwd when empty).
  3. `LoadOptions.Transform`, when set, rewrites the source before
     resolution.  The CLI uses it for `vault:` indirection.
  4. `Resolve()` builds and validates the config.
  5. The result is cached in an `atomic.Pointer` for lock-free reads via
     `Get()`.

Instrumentation
---------------
  • DEBUG span: source layering (see source.go).
  • ERROR span: transform or resolve failures.
  • INFO  span: final “config resolved” with non-secret highlights.
  • Logs use the global *sugared* logger (`zap.S()`), so early boot issues
    surface before a file logger is installed.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

// TransformFunc rewrites a Source before it is resolved.
type TransformFunc func(context.Context, Source) (Source, error)

// LoadOptions tunes Load.  The zero value loads from the working
// directory using NODE_ENV.
type LoadOptions struct {
	Dir       string
	Mode      Mode
	Transform TransformFunc
}

// Load resolves the process configuration and caches it for Get.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("config: working dir: %w", err)
		}
		dir = wd
	}

	mode := opts.Mode
	if mode == "" {
		mode = ParseMode(os.Getenv(KeyNodeEnv))
	}
	zap.S().Debugw("config mode resolved", "mode", mode, "env_file", EnvFile(mode))

	src := LoadSource(dir, mode)
	if opts.Transform != nil {
		var err error
		if src, err = opts.Transform(ctx, src); err != nil {
			zap.S().Errorw("config source transform failed", "err", err)
			return nil, fmt.Errorf("config: transform: %w", err)
		}
	}

	cfg, err := Resolve(mode, src)
	if err != nil {
		zap.S().Errorw("config resolve failed", "err", err)
		return nil, err
	}

	current.Store(cfg)
	zap.S().Infow("config resolved",
		"mode", cfg.Mode,
		"env_file", cfg.EnvFile,
		"database", redactURL(cfg.Database.URL),
		"redis", redactURL(cfg.Redis.URL),
		"modules", len(cfg.Modules),
	)
	return cfg, nil
}

// Get returns the config stored by the last successful Load, or nil.
func Get() *Config { return current.Load() }
