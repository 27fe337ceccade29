// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs are the resolved shape that `Resolve()` produces from a
// `Source`.  The commerce runtime reads them through `Get()`; nothing
// writes to them after resolution.
//
// Notes
// -----
//   • `validate:"…"` tags hold invariants that defaults guarantee.  A
//     failure here means a default is broken, not that the operator forgot
//     a variable.
//   • CORS lists keep both the raw comma string (what the runtime expects)
//     and the split origins (what Go middleware expects).

package config

import "github.com/yanizio/barrio/internal/modules"

// Database holds the primary store connection.
type Database struct {
	URL     string        `json:"url" validate:"required"`
	Options DriverOptions `json:"driver_options"`
}

// DriverOptions are passed to the database driver untouched.
type DriverOptions struct {
	SSL bool `json:"ssl"`
}

// Redis covers cache, event bus, and workflow engine connections.
type Redis struct {
	URL    string `json:"url" validate:"required"`
	Prefix string `json:"prefix,omitempty"`
}

// CORS is one allow-list.  Raw is the comma-joined form.
type CORS struct {
	Raw     string   `json:"raw"`
	Origins []string `json:"origins"`
}

// HTTP holds CORS allow-lists and signing secrets.
type HTTP struct {
	StoreCORS    CORS   `json:"store_cors"`
	AdminCORS    CORS   `json:"admin_cors"`
	AuthCORS     CORS   `json:"auth_cors"`
	JWTSecret    string `json:"jwt_secret"    validate:"required"`
	CookieSecret string `json:"cookie_secret" validate:"required"`
}

// Admin holds admin UI settings.
type Admin struct {
	BackendURL  string `json:"backend_url" validate:"required"`
	OpenBrowser bool   `json:"open_browser"`
}

// Config is the immutable aggregate returned by Resolve() and cached by
// Load() for lock-free reads.
type Config struct {
	Mode     Mode             `json:"mode"`
	EnvFile  string           `json:"env_file"`
	Database Database         `json:"database"`
	Redis    Redis            `json:"redis"`
	HTTP     HTTP             `json:"http"`
	Admin    Admin            `json:"admin"`
	Modules  []modules.Module `json:"modules" validate:"-"`
}

// Module is a convenience wrapper around modules.Lookup.
func (c *Config) Module(key string) (modules.Module, bool) {
	return modules.Lookup(c.Modules, key)
}
