package dynamo

import (
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/vmath"
)

// Body is a point mass. Name, Color and RadiusPx are display metadata and
// play no part in the dynamics.
type Body struct {
	Mass     float64
	Pos      vmath.Vec2
	Vel      vmath.Vec2
	Name     string
	Color    string
	RadiusPx int
}

// Bodies is the canonical body list of a run. Identity is the index.
type Bodies []Body

func (b Bodies) Clone() Bodies {
	c := make(Bodies, len(b))
	copy(c, b)
	return c
}

func (b Bodies) IsFinite() bool {
	for i := range b {
		if !b[i].Pos.IsFinite() || !b[i].Vel.IsFinite() {
			return false
		}
	}
	return true
}

// Validate rejects body lists that cannot be integrated meaningfully.
func (b Bodies) Validate() error {
	if len(b) == 0 {
		return ErrNoBodies
	}
	for i := range b {
		m := b[i].Mass
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("body %d (%s): mass %g: %w", i, b[i].Name, m, ErrInvalidMass)
		}
		if !b[i].Pos.IsFinite() || !b[i].Vel.IsFinite() {
			return fmt.Errorf("body %d (%s): %w", i, b[i].Name, ErrInvalidState)
		}
	}
	return nil
}

// Field evaluates the net acceleration on every body at the current
// positions. The result is index-aligned with bodies and is always a full
// recomputation. dst is reused when it has the right length.
type Field interface {
	Accelerations(bodies Bodies, dst []vmath.Vec2) []vmath.Vec2
}

// Stepper advances every body by dt in place. dt may be negative.
type Stepper interface {
	Step(bodies Bodies, dt float64)
}

// Integrator is a named Stepper with a known order of accuracy.
type Integrator interface {
	Stepper
	Name() string
	Order() int
}

// Hamiltonian systems expose their total energy for drift monitoring.
type Hamiltonian interface {
	Energy(bodies Bodies) float64
}

type Metric interface {
	Name() string
	Observe(bodies Bodies, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(bodies Bodies, t float64)
}

// Frame describes the loop iteration handed to a Renderer.
type Frame struct {
	Index  int
	Time   float64
	Dt     float64
	Paused bool
	FPS    float64
}

// Renderer receives read-only access to the bodies once per frame.
type Renderer interface {
	Render(bodies Bodies, frame Frame) error
}

type Config struct {
	Dt            float64
	Steps         int
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            86400,
		Steps:         365,
		RecordEvery:   1,
		ValidateState: true,
	}
}

// Snapshot is the recorded state of all bodies at one instant.
type Snapshot struct {
	Time   float64
	Bodies Bodies
}

// NoDrift is the EnergyDrift of a run whose final state or energy is not
// finite.
const NoDrift = -1.0

type Result struct {
	Snapshots   []Snapshot
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Flatten returns each snapshot as [x0 y0 vx0 vy0 x1 ...].
func (r *Result) Flatten() ([][]float64, []float64) {
	states := make([][]float64, len(r.Snapshots))
	times := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		row := make([]float64, 0, len(s.Bodies)*4)
		for _, b := range s.Bodies {
			row = append(row, b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y)
		}
		states[i] = row
		times[i] = s.Time
	}
	return states, times
}
