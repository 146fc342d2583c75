package config

import (
	"math"
	"sort"

	"github.com/san-kum/dtgrowth/internal/funcs"
)

var Presets = map[string]*Config{
	"ramp": {
		Model: "spring_mass", Integrator: "rk45", Duration: 10.0,
		Tolerance: 1e-6, CutbackFactor: 0.5, MaxCutbacks: 20, MinStep: 1e-14,
		InitState: []float64{1.0, 0.0},
		Timestepper: TimestepperConfig{
			Function: "dt", GrowthFactor: 1.2, MinDT: 1e-4, Interpolate: true,
		},
		Functions: []funcs.Spec{
			{Name: "dt", Type: "piecewise_linear", X: []float64{0, 2, 5, 10}, Y: []float64{0.005, 0.02, 0.05, 0.1}},
		},
	},
	"load_steps": {
		Model: "forced", Integrator: "rk4", Load: "load", Duration: 6.0,
		Tolerance: 1e-6, CutbackFactor: 0.5, MaxCutbacks: 20, MinStep: 1e-14,
		InitState: []float64{0.0, 0.0},
		Timestepper: TimestepperConfig{
			Function: "dt", GrowthFactor: math.Inf(1), Interpolate: true,
		},
		Functions: []funcs.Spec{
			{Name: "load", Type: "piecewise_constant", X: []float64{0, 1.05, 2.5, 4.2}, Y: []float64{0, 10, -5, 0}},
			{Name: "dt", Type: "piecewise_constant", X: []float64{0, 1.05, 2.5, 4.2}, Y: []float64{0.1, 0.02, 0.05, 0.2}},
		},
	},
	"legacy_table": {
		Model: "pendulum", Integrator: "rk4", Duration: 5.0,
		Tolerance: 1e-6, CutbackFactor: 0.5, MaxCutbacks: 20, MinStep: 1e-14,
		InitState: []float64{0.5, 0.0},
		Timestepper: TimestepperConfig{
			TimeT: []float64{0, 1, 2}, TimeDT: []float64{0.01, 0.02, 0.05},
			GrowthFactor: math.Inf(1), Interpolate: false, SyncTableKnots: true,
		},
	},
	"stiff_decay": {
		Model: "decay", Integrator: "rk45", Duration: 1.0,
		Tolerance: 1e-8, CutbackFactor: 0.5, MaxCutbacks: 30, MinStep: 1e-14,
		InitState: []float64{1.0},
		Timestepper: TimestepperConfig{
			Function: "dt", GrowthFactor: 1.5, Interpolate: true,
		},
		Functions: []funcs.Spec{
			{Name: "dt", Type: "constant", Value: 0.1},
		},
	},
}

// GetPreset returns a copy of the named preset, nil when unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	c.InitState = append([]float64(nil), p.InitState...)
	c.Functions = append([]funcs.Spec(nil), p.Functions...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
