// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// `Resolve()` calls `validateStruct` once defaults are in place.  The only
// tag in use is `required`; `Audit()` reuses the same instance for its
// `url` checks on CORS origins.

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
