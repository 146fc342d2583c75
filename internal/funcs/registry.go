package funcs

import (
	"fmt"
	"sort"
)

// Spec describes a named function as it appears in a configuration file.
type Spec struct {
	Name      string    `yaml:"name" json:"name"`
	Type      string    `yaml:"type" json:"type"`
	X         []float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y         []float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Value     float64   `yaml:"value,omitempty" json:"value,omitempty"`
	Direction string    `yaml:"direction,omitempty" json:"direction,omitempty"`
	Scale     float64   `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// FromSpec builds the function described by s.
func FromSpec(s Spec) (Func, error) {
	switch s.Type {
	case "constant", "cte":
		return NewConstant(s.Value), nil
	case "piecewise_linear":
		return NewPiecewiseLinear(s.X, s.Y, s.Scale)
	case "piecewise_constant":
		dir, err := ParseDirection(s.Direction)
		if err != nil {
			return nil, err
		}
		return NewPiecewiseConstant(s.X, s.Y, dir, s.Scale)
	}
	return nil, fmt.Errorf("%w: %q (function %q)", ErrUnknownType, s.Type, s.Name)
}

// Registry holds functions by name.
type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// NewRegistryFromSpecs builds every spec; the first failure aborts.
func NewRegistryFromSpecs(specs []Spec) (*Registry, error) {
	r := NewRegistry()
	for _, s := range specs {
		f, err := FromSpec(s)
		if err != nil {
			return nil, fmt.Errorf("cannot build function %q: %w", s.Name, err)
		}
		r.Register(s.Name, f)
	}
	return r, nil
}

func (r *Registry) Register(name string, f Func) {
	r.funcs[name] = f
}

func (r *Registry) Get(name string) (Func, error) {
	f, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return f, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
