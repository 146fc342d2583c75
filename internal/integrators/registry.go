package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/dtgrowth/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler":         func() dynamo.Integrator { return NewEuler() },
	"heun":          func() dynamo.Integrator { return NewHeun() },
	"rk4":           func() dynamo.Integrator { return NewRK4() },
	"rk45":          func() dynamo.Integrator { return NewRK45() },
	"euler_doubled": func() dynamo.Integrator { return NewStepDoubling(NewEuler()) },
	"rk4_doubled":   func() dynamo.Integrator { return NewStepDoubling(NewRK4()) },
}

func Get(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
