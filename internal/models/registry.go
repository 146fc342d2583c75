package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/dtgrowth/internal/dynamo"
	"github.com/san-kum/dtgrowth/internal/funcs"
)

const DefaultDecayRate = 50.0

var registry = map[string]func(load funcs.Func) (dynamo.System, error){
	"pendulum": func(torque funcs.Func) (dynamo.System, error) {
		p := NewPendulum()
		p.Torque = torque
		return p, nil
	},
	"spring_mass": func(funcs.Func) (dynamo.System, error) { return NewSpringMass(), nil },
	"decay":       func(funcs.Func) (dynamo.System, error) { return NewDecay(DefaultDecayRate), nil },
	"forced": func(load funcs.Func) (dynamo.System, error) {
		if load == nil {
			return nil, fmt.Errorf("model forced needs a load function")
		}
		return NewForced(load), nil
	},
}

// New builds the named model. load drives the pendulum torque when set and
// is required by forced; other models ignore it.
func New(name string, load funcs.Func) (dynamo.System, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(load)
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
