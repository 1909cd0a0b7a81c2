package sources

import (
	"fmt"

	"BlogEngine/internal/ports"
)

// Registry keeps trend sources by name in registration order.
type Registry struct {
	sources map[string]ports.TrendSource
	order   []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.TrendSource{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(source ports.TrendSource) {
	if r.sources == nil {
		r.sources = map[string]ports.TrendSource{}
	}
	name := source.Name()
	if _, ok := r.sources[name]; !ok {
		r.order = append(r.order, name)
	}
	r.sources[name] = source
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.TrendSource, error) {
	if source, ok := r.sources[name]; ok {
		return source, nil
	}
	return nil, fmt.Errorf("trend source %s is not registered", name)
}

// All lists the registered sources in registration order.
func (r *Registry) All() []ports.TrendSource {
	out := make([]ports.TrendSource, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sources[name])
	}
	return out
}
