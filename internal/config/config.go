package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/vmath"
)

const (
	DefaultIntegrator  = "forest-ruth"
	DefaultDt          = 86400.0
	DefaultSteps       = 365
	DefaultFPS         = 120
	DefaultScale       = 2e-9
	DefaultWidth       = 900
	DefaultHeight      = 600
	DefaultRecordEvery = 1
	DefaultRadius      = 5
)

var (
	ErrInvalidConfig = errors.New("config: invalid value")
	ErrInvalidColor  = errors.New("config: invalid color")
)

type Config struct {
	Integrator  string       `yaml:"integrator"`
	G           float64      `yaml:"g"`
	Dt          float64      `yaml:"dt"`
	Steps       int          `yaml:"steps"`
	FPS         int          `yaml:"fps"`
	Scale       float64      `yaml:"scale"`
	Width       int          `yaml:"width"`
	Height      int          `yaml:"height"`
	RecordEvery int          `yaml:"record_every"`
	Bodies      []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Name   string     `yaml:"name"`
	Mass   float64    `yaml:"mass"`
	Pos    [2]float64 `yaml:"pos,flow"`
	Vel    [2]float64 `yaml:"vel,flow"`
	Color  string     `yaml:"color,omitempty"`
	Radius int        `yaml:"radius,omitempty"`
}

// DefaultConfig is the binary star system in SI units, drawn at 2e-9 px/m
// in a 900x600 window and stepped one day per frame.
func DefaultConfig() *Config {
	return &Config{
		Integrator:  DefaultIntegrator,
		G:           physics.G,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		FPS:         DefaultFPS,
		Scale:       DefaultScale,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		RecordEvery: DefaultRecordEvery,
		Bodies:      FromBodies(physics.BinaryStars()),
	}
}

// Load reads a YAML file over the defaults. A file that lists bodies
// replaces the default bodies entirely.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Bodies) == 0 {
		cfg.Bodies = DefaultConfig().Bodies
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

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &out
}

func (c *Config) Validate() error {
	if c.G <= 0 || !finite(c.G) {
		return fmt.Errorf("g %g: %w", c.G, ErrInvalidConfig)
	}
	if c.Dt == 0 || !finite(c.Dt) {
		return fmt.Errorf("dt %g: %w", c.Dt, dynamo.ErrInvalidTimestep)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps %d: %w", c.Steps, ErrInvalidConfig)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps %d: %w", c.FPS, ErrInvalidConfig)
	}
	if c.Scale <= 0 || !finite(c.Scale) {
		return fmt.Errorf("scale %g: %w", c.Scale, ErrInvalidConfig)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window %dx%d: %w", c.Width, c.Height, ErrInvalidConfig)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("record_every %d: %w", c.RecordEvery, ErrInvalidConfig)
	}

	for i, b := range c.Bodies {
		if b.Radius < 0 {
			return fmt.Errorf("body %d (%s): radius %d: %w", i, b.Name, b.Radius, ErrInvalidConfig)
		}
		if b.Color == "" {
			continue
		}
		if _, err := colorful.Hex(b.Color); err != nil {
			return fmt.Errorf("body %d (%s): %q: %w", i, b.Name, b.Color, ErrInvalidColor)
		}
	}

	return c.BuildBodies().Validate()
}

// BuildBodies converts the configured bodies into a fresh body list.
func (c *Config) BuildBodies() dynamo.Bodies {
	bodies := make(dynamo.Bodies, len(c.Bodies))
	for i, b := range c.Bodies {
		radius := b.Radius
		if radius == 0 {
			radius = DefaultRadius
		}
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("body%d", i)
		}
		bodies[i] = dynamo.Body{
			Name:     name,
			Mass:     b.Mass,
			Pos:      vmath.Vec2{X: b.Pos[0], Y: b.Pos[1]},
			Vel:      vmath.Vec2{X: b.Vel[0], Y: b.Vel[1]},
			Color:    b.Color,
			RadiusPx: radius,
		}
	}
	return bodies
}

// RunConfig is the headless run configuration derived from c.
func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Steps:         c.Steps,
		RecordEvery:   c.RecordEvery,
		ValidateState: true,
	}
}

func FromBodies(bodies dynamo.Bodies) []BodyConfig {
	out := make([]BodyConfig, len(bodies))
	for i, b := range bodies {
		out[i] = BodyConfig{
			Name:   b.Name,
			Mass:   b.Mass,
			Pos:    [2]float64{b.Pos.X, b.Pos.Y},
			Vel:    [2]float64{b.Vel.X, b.Vel.Y},
			Color:  b.Color,
			Radius: b.RadiusPx,
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
