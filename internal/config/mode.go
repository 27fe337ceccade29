// internal/config/mode.go
//
// Deployment modes and the env-file each one selects.

package config

import "strings"

// Mode names a deployment context.  Unknown non-empty names are kept as-is
// and select the default env file.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeStaging     Mode = "staging"
	ModeProduction  Mode = "production"
	ModeTest        Mode = "test"
)

// DefaultEnvFile is loaded for every mode, below the mode-specific file.
const DefaultEnvFile = ".env"

// ParseMode trims s and falls back to development when nothing is left.
func ParseMode(s string) Mode {
	s = strings.TrimSpace(s)
	if s == "" {
		return ModeDevelopment
	}
	return Mode(s)
}

// EnvFile returns the env-file name for m.
func EnvFile(m Mode) string {
	switch m {
	case ModeProduction:
		return ".env.production"
	case ModeStaging:
		return ".env.staging"
	case ModeTest:
		return ".env.test"
	default:
		return DefaultEnvFile
	}
}

// Deployed reports whether m is a shared, non-local environment.
func (m Mode) Deployed() bool {
	return m == ModeProduction || m == ModeStaging
}

func (m Mode) String() string { return string(m) }
