// internal/config/audit.go
//
// Post-resolution audit.
//
// Context
// -------
// `Resolve()` is deliberately fail-soft: a missing payment key or bucket
// credential passes through empty, and the runtime decides later whether
// that module can start.  `Audit()` lets operators see those gaps up front
// without changing that contract.  It never mutates the config and never
// returns an error; callers choose what to do with the findings.
//
// Severity
// --------
//   • error: placeholder signing secrets in a deployed mode, or the primary
//     provider of a module missing required options in a deployed mode.
//   • warn : everything else worth a look.

package config

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/yanizio/barrio/internal/metrics"
)

// Severity grades a Finding.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Finding is one audit result.
type Finding struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s: %s", f.Severity, f.Field, f.Message)
}

// Audit inspects cfg and reports questionable values.
func Audit(cfg *Config) []Finding {
	var out []Finding
	add := func(sev Severity, field, format string, args ...any) {
		out = append(out, Finding{Severity: sev, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	deployed := cfg.Mode.Deployed()
	for field, secret := range map[string]string{
		KeyJWTSecret:    cfg.HTTP.JWTSecret,
		KeyCookieSecret: cfg.HTTP.CookieSecret,
	} {
		if secret == InsecureSecret && deployed {
			add(SeverityError, field, "placeholder secret in %s mode", cfg.Mode)
		}
	}

	if u, err := url.Parse(cfg.Database.URL); err != nil {
		add(SeverityWarn, KeyDatabaseURL, "unparseable: %v", err)
	} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		add(SeverityWarn, KeyDatabaseURL, "unexpected scheme %q", u.Scheme)
	}

	for field, cors := range map[string]CORS{
		KeyStoreCORS: cfg.HTTP.StoreCORS,
		KeyAdminCORS: cfg.HTTP.AdminCORS,
		KeyAuthCORS:  cfg.HTTP.AuthCORS,
	} {
		if len(cors.Origins) == 0 {
			add(SeverityWarn, field, "no origins, cross-origin requests are denied")
		}
		for _, o := range cors.Origins {
			if o == "*" {
				continue
			}
			if err := v.Var(o, "url"); err != nil {
				add(SeverityWarn, field, "origin %q is not a URL", o)
			}
		}
	}

	for _, m := range cfg.Modules {
		for _, opt := range m.Missing() {
			add(SeverityWarn, m.Key, "option %s is empty", opt)
		}
		for i, p := range m.Providers {
			sev := SeverityWarn
			if i == 0 && deployed {
				sev = SeverityError
			}
			for _, opt := range p.Missing() {
				add(sev, m.Key+"."+p.ID, "option %s is empty", opt)
			}
		}
	}

	sortFindings(out)
	recordFindings(out)
	return out
}

func recordFindings(fs []Finding) {
	counts := map[Severity]float64{SeverityWarn: 0, SeverityError: 0}
	for _, f := range fs {
		counts[f.Severity]++
	}
	for sev, n := range counts {
		metrics.AuditFindings.WithLabelValues(string(sev)).Set(n)
	}
}

// HasErrors reports whether any finding is an error.
func HasErrors(fs []Finding) bool {
	for _, f := range fs {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// sortFindings orders errors first, then by field and message, so output is
// stable across runs.
func sortFindings(fs []Finding) {
	sort.Slice(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Message < b.Message
	})
}
