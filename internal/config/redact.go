// internal/config/redact.go
//
// Printable copies of a resolved config.
//
// Masking rules
// -------------
//   • Signing secrets are always masked when set.
//   • Option values whose key contains key, secret, password, or token are
//     masked.
//   • Any other string that parses as a URL with a password has the
//     password masked, including strings nested in maps and lists.
//   • Empty values stay empty so gaps remain visible.

package config

import (
	"net/url"
	"strings"

	"github.com/yanizio/barrio/internal/modules"
)

const mask = "****"

var secretHints = []string{"key", "secret", "password", "token"}

// Redacted returns a deep copy of c that is safe to print.  Signing
// secrets, URL passwords, and provider options whose names look secret are
// masked.  Empty values stay empty so gaps remain visible.
func (c *Config) Redacted() *Config {
	out := *c
	out.Database.URL = redactURL(c.Database.URL)
	out.Redis.URL = redactURL(c.Redis.URL)
	out.HTTP.JWTSecret = maskNonEmpty(c.HTTP.JWTSecret)
	out.HTTP.CookieSecret = maskNonEmpty(c.HTTP.CookieSecret)

	out.Modules = make([]modules.Module, len(c.Modules))
	for i, m := range c.Modules {
		m.Options = redactOptions(m.Options)
		provs := make([]modules.Provider, len(m.Providers))
		for j, p := range m.Providers {
			p.Options = redactOptions(p.Options)
			provs[j] = p
		}
		m.Providers = provs
		out.Modules[i] = m
	}
	return &out
}

func redactOptions(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = redactValue(looksSecret(k), v)
	}
	return out
}

// redactValue masks v; secret is inherited from the enclosing option name
// so list elements under a secret-looking key are masked too.
func redactValue(secret bool, v any) any {
	switch t := v.(type) {
	case map[string]any:
		return redactOptions(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = redactValue(secret, e)
		}
		return out
	case string:
		if secret {
			return maskNonEmpty(t)
		}
		return redactURL(t)
	default:
		return v
	}
}

func looksSecret(name string) bool {
	name = strings.ToLower(name)
	for _, h := range secretHints {
		if strings.Contains(name, h) {
			return true
		}
	}
	return false
}

func maskNonEmpty(s string) string {
	if s == "" {
		return ""
	}
	return mask
}

// redactURL masks the password of URLs that carry one and leaves every
// other string untouched.
func redactURL(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	if _, ok := u.User.Password(); !ok {
		return s
	}
	// url.Userinfo escapes '*', so splice the mask into Redacted's output.
	return strings.Replace(u.Redacted(), ":xxxxx@", ":"+mask+"@", 1)
}
