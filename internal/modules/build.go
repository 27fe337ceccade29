// internal/modules/build.go
//
// Descriptor table loader and placeholder substitution.
//
/*
Context
--------
`table.yaml` is embedded at compile time and parsed with Koanf's YAML
parser on every `Build()` call.  Each string option is then run through
`expand()`, which swaps `${NAME}` placeholders for resolved environment
values supplied by the caller.  Inline references go through
drone/envsubst; only the whole-value bool form is handled here.

Placeholder forms
-----------------
  ${NAME}                 value, or "" when unset.
  ${NAME:-fallback}       value, or fallback when unset or empty.
  ${bool:NAME:-fallback}  whole-string only; yields a bool.  "false" is
                          false, any other non-empty value is true.
  $${NAME}                literal "${NAME}".

Notes
-----
  • The lookup function sees values *after* config defaults were applied,
    so `${REDIS_URL}` never expands to "".
  • Duplicate provider ids inside one module are rejected; the runtime
    keys providers by id.
*/
package modules

import (
	_ "embed"
	"fmt"
	"regexp"

	"github.com/drone/envsubst"
	"github.com/knadh/koanf/parsers/yaml"
	koanf "github.com/knadh/koanf/v2"
)

//go:embed table.yaml
var tableYAML []byte

// LookupFunc returns the resolved value for an environment key, or "".
type LookupFunc func(key string) string

var boolRef = regexp.MustCompile(`^\$\{bool:([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}$`)

// Build parses the declaration table and substitutes lookup values into
// every option.  The returned slice is in declaration order.
func Build(lookup LookupFunc) ([]Module, error) {
	return build(tableYAML, lookup)
}

func build(table []byte, lookup LookupFunc) ([]Module, error) {
	k := koanf.New(".")
	if err := k.Load(rawTable(table), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("modules: parse table: %w", err)
	}

	var mods []Module
	if err := k.Unmarshal("modules", &mods); err != nil {
		return nil, fmt.Errorf("modules: decode table: %w", err)
	}

	for i := range mods {
		m := &mods[i]
		if m.Key == "" || m.Resolve == "" {
			return nil, fmt.Errorf("modules: entry %d needs key and resolve", i)
		}
		opts, err := expandMap(m.Options, lookup)
		if err != nil {
			return nil, fmt.Errorf("modules: %s: %w", m.Key, err)
		}
		m.Options = opts

		seen := make(map[string]bool, len(m.Providers))
		for j := range m.Providers {
			p := &m.Providers[j]
			if p.ID == "" || p.Resolve == "" {
				return nil, fmt.Errorf("modules: %s provider %d needs id and resolve", m.Key, j)
			}
			if seen[p.ID] {
				return nil, fmt.Errorf("modules: %s declares provider %q twice", m.Key, p.ID)
			}
			seen[p.ID] = true
			opts, err := expandMap(p.Options, lookup)
			if err != nil {
				return nil, fmt.Errorf("modules: %s.%s: %w", m.Key, p.ID, err)
			}
			p.Options = opts
		}
	}
	return mods, nil
}

/*──────────────────────────── expansion ───────────────────────────────────*/

func expandMap(in map[string]any, lookup LookupFunc) (map[string]any, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		val, err := expandValue(v, lookup)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

func expandValue(v any, lookup LookupFunc) (any, error) {
	switch t := v.(type) {
	case string:
		return expand(t, lookup)
	case map[string]any:
		return expandMap(t, lookup)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			val, err := expandValue(e, lookup)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	default:
		return v, nil
	}
}

// expand substitutes placeholders in s.  A whole-string bool reference
// returns a bool; everything else returns a string.
func expand(s string, lookup LookupFunc) (any, error) {
	if m := boolRef.FindStringSubmatch(s); m != nil {
		val := lookup(m[1])
		if val == "" {
			val = m[2]
		}
		return val != "" && val != "false", nil
	}
	return envsubst.Eval(s, lookup)
}

// rawTable adapts an in-memory document to koanf.Provider.
type rawTable []byte

func (r rawTable) ReadBytes() ([]byte, error) { return r, nil }

func (r rawTable) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("modules: raw table provider does not support Read")
}
