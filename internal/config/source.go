// internal/config/source.go
//
// Layered environment input.
//
/*
Context
--------
`LoadSource()` flattens three layers into one immutable `Source` (highest
precedence last):

  1. `<dir>/.env`                 – defaults shared by every mode.
  2. `<dir>/.env.<mode>`          – production, staging, or test only.
  3. Process environment          – always wins, even when set to "".

Files are read with Koanf's file provider and parsed by a thin godotenv
adapter, so quoting, `export` prefixes, and `${VAR}` expansion inside the
file behave exactly like the dotenv tooling operators already use.

Instrumentation
---------------
  • INFO  span: env file absent (normal on most hosts).
  • WARN  span: env file present but unreadable or malformed.
  • Every skipped file increments `barrio_config_env_file_errors_total`.

Notes
-----
  • A file failure never aborts loading.  Whatever layers did load are
    kept, and resolution continues.
  • `Resolve()` never calls `LoadSource()`; tests build a `Source` with
    `NewSource()` and stay hermetic.
*/
package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/barrio/internal/metrics"
)

/*──────────────────────────── Source ──────────────────────────────────────*/

// Source is an immutable view of environment input.  The zero value is an
// empty source.
type Source struct {
	vals map[string]string
}

// NewSource copies m into a Source.
func NewSource(m map[string]string) Source {
	vals := make(map[string]string, len(m))
	for k, v := range m {
		vals[k] = v
	}
	return Source{vals: vals}
}

// Lookup returns the raw value and whether key was present at all.
func (s Source) Lookup(key string) (string, bool) {
	v, ok := s.vals[key]
	return v, ok
}

// Get returns the raw value or "".
func (s Source) Get(key string) string { return s.vals[key] }

// Len returns the number of keys.
func (s Source) Len() int { return len(s.vals) }

// Keys returns every key in lexical order.
func (s Source) Keys() []string {
	keys := make([]string, 0, len(s.vals))
	for k := range s.vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of s with key set to val.
func (s Source) With(key, val string) Source {
	out := NewSource(s.vals)
	out.vals[key] = val
	return out
}

/*──────────────────────────── loader ──────────────────────────────────────*/

// LoadSource layers dir/.env, the env file for mode, and the process
// environment.  It never fails.
func LoadSource(dir string, mode Mode) Source {
	k := koanf.New(".")

	loadEnvFile(k, filepath.Join(dir, DefaultEnvFile))
	if name := EnvFile(mode); name != DefaultEnvFile {
		loadEnvFile(k, filepath.Join(dir, name))
	}

	// Identity callback: keep process variable names untouched.
	_ = k.Load(env.Provider("", ".", func(s string) string { return s }), nil)

	vals := make(map[string]string, len(k.Keys()))
	for _, key := range k.Keys() {
		vals[key] = k.String(key)
	}
	zap.S().Debugw("env source loaded", "dir", dir, "mode", mode, "keys", len(vals))
	return Source{vals: vals}
}

func loadEnvFile(k *koanf.Koanf, path string) {
	err := k.Load(file.Provider(path), dotenvParser{})
	switch {
	case err == nil:
		zap.S().Debugw("env file loaded", "file", path)
	case errors.Is(err, fs.ErrNotExist):
		metrics.EnvFileErrorsTotal.WithLabelValues(filepath.Base(path), "absent").Inc()
		zap.S().Infow("env file absent", "file", path)
	default:
		metrics.EnvFileErrorsTotal.WithLabelValues(filepath.Base(path), "invalid").Inc()
		zap.S().Warnw("env file skipped", "file", path, "err", err)
	}
}

/*──────────────────────────── dotenv parser ───────────────────────────────*/

// dotenvParser satisfies koanf.Parser on top of godotenv.
type dotenvParser struct{}

func (dotenvParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	vals, err := godotenv.UnmarshalBytes(b)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out, nil
}

func (dotenvParser) Marshal(m map[string]interface{}) ([]byte, error) {
	vals := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			vals[k] = s
		}
	}
	s, err := godotenv.Marshal(vals)
	return []byte(s), err
}
