// Package goquery implements marketplace platform adapters using CSS
// selector based HTML extraction.
package goquery

import (
	"sort"

	"github.com/fwojciec/saletrack"
)

var _ saletrack.PlatformRegistry = (*Registry)(nil)

// Registry manages platform adapters keyed by platform name.
type Registry struct {
	platforms map[string]saletrack.Platform
}

// NewRegistry creates a Registry with the given platforms pre-registered.
func NewRegistry(platforms ...saletrack.Platform) *Registry {
	r := &Registry{
		platforms: make(map[string]saletrack.Platform),
	}
	for _, p := range platforms {
		r.Register(p)
	}
	return r
}

// Get returns the platform registered under the given name.
func (r *Registry) Get(name string) (saletrack.Platform, error) {
	p, ok := r.platforms[name]
	if !ok {
		return nil, saletrack.Errorf(saletrack.ENOTFOUND, "unknown platform %q", name)
	}
	return p, nil
}

// Register adds a platform. If one is already registered under the same name,
// it is replaced.
func (r *Registry) Register(p saletrack.Platform) {
	r.platforms[p.Name()] = p
}

// Names returns the registered platform names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.platforms))
	for name := range r.platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
