package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dtgrowth/internal/funcs"
	"github.com/san-kum/dtgrowth/internal/sim"
	"github.com/san-kum/dtgrowth/internal/stepper"
)

const (
	DefaultDuration      = 10.0
	DefaultTolerance     = 1e-6
	DefaultCutbackFactor = 0.5
	DefaultMaxCutbacks   = 20
	DefaultMinStep       = 1e-14
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Model         string            `yaml:"model"`
	Integrator    string            `yaml:"integrator"`
	Load          string            `yaml:"load,omitempty"`
	StartTime     float64           `yaml:"start_time"`
	Duration      float64           `yaml:"duration"`
	Tolerance     float64           `yaml:"tolerance"`
	CutbackFactor float64           `yaml:"cutback_factor"`
	MaxCutbacks   int               `yaml:"max_cutbacks"`
	MinStep       float64           `yaml:"min_step"`
	InitState     []float64         `yaml:"init_state"`
	Timestepper   TimestepperConfig `yaml:"timestepper"`
	Functions     []funcs.Spec      `yaml:"functions,omitempty"`
}

// TimestepperConfig mirrors stepper.Params with functions referenced by name.
type TimestepperConfig struct {
	Function       string    `yaml:"function,omitempty"`
	TimeT          []float64 `yaml:"time_t,omitempty"`
	TimeDT         []float64 `yaml:"time_dt,omitempty"`
	GrowthFactor   float64   `yaml:"growth_factor"`
	MinDT          float64   `yaml:"min_dt"`
	Interpolate    bool      `yaml:"interpolate"`
	SyncTableKnots bool      `yaml:"sync_table_knots,omitempty"`
}

func DefaultConfig() *Config {
	p := stepper.DefaultParams()
	return &Config{
		Model:         "spring_mass",
		Integrator:    "rk45",
		Duration:      DefaultDuration,
		Tolerance:     DefaultTolerance,
		CutbackFactor: DefaultCutbackFactor,
		MaxCutbacks:   DefaultMaxCutbacks,
		MinStep:       DefaultMinStep,
		InitState:     []float64{1.0, 0.0},
		Timestepper: TimestepperConfig{
			Function:     "dt",
			GrowthFactor: p.GrowthFactor,
			MinDT:        p.MinDT,
			Interpolate:  p.Interpolate,
		},
		Functions: []funcs.Spec{
			{Name: "dt", Type: "constant", Value: 0.01},
		},
	}
}

// Load reads a YAML file on top of the defaults. The default step-size
// function is only kept when the file prescribes no step size at all.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	defaults := *cfg

	cfg.Timestepper.Function = ""
	cfg.Functions = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	ts := cfg.Timestepper
	if ts.Function == "" && len(ts.TimeT) == 0 && len(ts.TimeDT) == 0 {
		cfg.Timestepper.Function = defaults.Timestepper.Function
		cfg.Functions = append(cfg.Functions, defaults.Functions...)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalid)
	}
	if c.Integrator == "" {
		return fmt.Errorf("%w: integrator is required", ErrInvalid)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalid, c.Duration)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalid, c.Tolerance)
	}
	if c.CutbackFactor <= 0 || c.CutbackFactor >= 1 {
		return fmt.Errorf("%w: cutback_factor must be in (0, 1), got %g", ErrInvalid, c.CutbackFactor)
	}
	if math.IsNaN(c.Timestepper.GrowthFactor) || c.Timestepper.GrowthFactor <= 0 {
		return fmt.Errorf("%w: growth_factor must be positive, got %g", ErrInvalid, c.Timestepper.GrowthFactor)
	}
	if ts := c.Timestepper; len(ts.TimeT) > 0 || len(ts.TimeDT) > 0 {
		if err := funcs.CheckTable(ts.TimeT, ts.TimeDT); err != nil {
			return fmt.Errorf("%w: timestepper table: %v", ErrInvalid, err)
		}
	}
	return nil
}

// Registry builds the named functions.
func (c *Config) Registry() (*funcs.Registry, error) {
	return funcs.NewRegistryFromSpecs(c.Functions)
}

// StepperParams resolves the timestepper block against reg.
func (c *Config) StepperParams(reg *funcs.Registry) (stepper.Params, error) {
	ts := c.Timestepper
	p := stepper.Params{
		TimeT:          ts.TimeT,
		TimeDT:         ts.TimeDT,
		GrowthFactor:   ts.GrowthFactor,
		MinDT:          ts.MinDT,
		Interpolate:    ts.Interpolate,
		SyncTableKnots: ts.SyncTableKnots,
	}
	if ts.Function != "" {
		f, err := reg.Get(ts.Function)
		if err != nil {
			return stepper.Params{}, err
		}
		p.Function = f
	}
	return p, nil
}

// LoadFunc resolves the load function, nil when none is configured.
func (c *Config) LoadFunc(reg *funcs.Registry) (funcs.Func, error) {
	if c.Load == "" {
		return nil, nil
	}
	return reg.Get(c.Load)
}

func (c *Config) SimConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.StartTime = c.StartTime
	cfg.Duration = c.Duration
	cfg.Tolerance = c.Tolerance
	cfg.CutbackFactor = c.CutbackFactor
	cfg.MaxCutbacks = c.MaxCutbacks
	cfg.MinStep = c.MinStep
	return cfg
}
