package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Simulator runs a fixed number of steps without rendering and records
// snapshots, metrics and energy drift.
type Simulator struct {
	integrator dynamo.Stepper
	energy     dynamo.Hamiltonian
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

// New returns a Simulator. energy may be nil, in which case drift is not computed.
func New(integrator dynamo.Stepper, energy dynamo.Hamiltonian) *Simulator {
	return &Simulator{
		integrator: integrator,
		energy:     energy,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run integrates a private copy of bodies. The caller's slice is not modified.
func (s *Simulator) Run(ctx context.Context, bodies dynamo.Bodies, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := bodies.Validate(); err != nil {
		return nil, err
	}

	every := cfg.RecordEvery
	if every <= 0 {
		every = 1
	}

	result := &dynamo.Result{
		Snapshots: make([]dynamo.Snapshot, 0, cfg.Steps/every+2),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := bodies.Clone()
	t := 0.0

	result.Snapshots = append(result.Snapshots, dynamo.Snapshot{Time: t, Bodies: x.Clone()})
	s.observe(x, t)

	initialEnergy := s.computeEnergy(x)

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		s.integrator.Step(x, cfg.Dt)
		t += cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState && !x.IsFinite() {
			err := &dynamo.SimulationError{Step: i, Time: t, Bodies: x.Clone(), Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			break
		}

		s.observe(x, t)

		if (i+1)%every == 0 || i == cfg.Steps-1 {
			result.Snapshots = append(result.Snapshots, dynamo.Snapshot{Time: t, Bodies: x.Clone()})
		}
	}

	finalEnergy := s.computeEnergy(x)
	switch {
	case !x.IsFinite() || !finite(finalEnergy) || !finite(initialEnergy):
		result.EnergyDrift = dynamo.NoDrift
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, &dynamo.SimulationError{
				Step: result.StepsTaken - 1, Time: t, Bodies: x.Clone(), Wrapped: dynamo.ErrInvalidState,
			})
		}
	case initialEnergy != 0:
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) observe(x dynamo.Bodies, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	if cfg.Dt == 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt %g: %w", cfg.Dt, dynamo.ErrInvalidTimestep)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s *Simulator) computeEnergy(x dynamo.Bodies) float64 {
	if s.energy == nil {
		return 0
	}
	return s.energy.Energy(x)
}
