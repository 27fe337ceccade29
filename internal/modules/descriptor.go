// internal/modules/descriptor.go
//
// Module and provider descriptors.
//
// Context
// -------
// A descriptor names an external capability (payment, cache, file storage,
// and so on) and the provider plugins that implement it.  Descriptors are
// plain data.  Nothing in this repository instantiates a provider; the
// commerce runtime reads the list and does that itself.
//
// Notes
// -----
//   • Slice order is registration order.  Never sort a []Module.
//   • Option maps are freshly built on every Build() call, so callers may
//     keep references without worrying about later resolutions.

package modules

import "strings"

// Provider is one plugin registered inside a Module.
type Provider struct {
	Resolve  string         `koanf:"resolve"  json:"resolve"`
	ID       string         `koanf:"id"       json:"id"`
	Options  map[string]any `koanf:"options"  json:"options,omitempty"`
	Required []string       `koanf:"required" json:"-"`
}

// Module is one capability slot in the runtime.
type Module struct {
	Key       string         `koanf:"key"       json:"key"`
	Resolve   string         `koanf:"resolve"   json:"resolve"`
	Options   map[string]any `koanf:"options"   json:"options,omitempty"`
	Providers []Provider     `koanf:"providers" json:"providers,omitempty"`
	Required  []string       `koanf:"required"  json:"-"`
}

// Primary returns the first declared provider.
func (m Module) Primary() (Provider, bool) {
	if len(m.Providers) == 0 {
		return Provider{}, false
	}
	return m.Providers[0], true
}

// Provider returns the provider with the given id.
func (m Module) Provider(id string) (Provider, bool) {
	for _, p := range m.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// Missing lists the module-level required options that resolved empty.
func (m Module) Missing() []string { return missing(m.Options, m.Required) }

// Missing lists the required options that resolved empty.
func (p Provider) Missing() []string { return missing(p.Options, p.Required) }

// Lookup finds a module by key.
func Lookup(mods []Module, key string) (Module, bool) {
	for _, m := range mods {
		if m.Key == key {
			return m, true
		}
	}
	return Module{}, false
}

// Option walks a dotted path (e.g., "config.host") through nested option
// maps.
func Option(opts map[string]any, path string) (any, bool) {
	var cur any = opts
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func missing(opts map[string]any, required []string) []string {
	var out []string
	for _, path := range required {
		v, ok := Option(opts, path)
		if !ok || v == nil || v == "" {
			out = append(out, path)
		}
	}
	return out
}
