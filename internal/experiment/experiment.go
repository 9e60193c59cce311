package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
)

// Experiment is a validated configuration bound to a force law, an
// integrator and a headless simulator.
type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	gravity    *physics.Gravity
	integrator dynamo.Integrator
	simulator  *sim.Simulator
}

func New(cfg *config.Config, registry *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	g := physics.NewGravity(cfg.G)
	integ, err := registry.GetIntegrator(cfg.Integrator, g)
	if err != nil {
		return nil, err
	}

	return &Experiment{
		cfg:        cfg.Clone(),
		registry:   registry,
		gravity:    g,
		integrator: integ,
	}, nil
}

// Setup creates the simulator and attaches metrics. A nil metric list
// installs the registry defaults.
func (e *Experiment) Setup(ms []dynamo.Metric) error {
	e.simulator = sim.New(e.integrator, e.gravity)
	e.simulator.AddObserver(newProgress(e.cfg.Dt, e.cfg.Steps))
	if ms == nil {
		ms = e.registry.DefaultMetrics(e.gravity, e.Bodies())
	}
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	log := logrus.WithFields(logrus.Fields{
		"integrator": e.integrator.Name(),
		"bodies":     len(e.cfg.Bodies),
		"dt":         e.cfg.Dt,
		"steps":      e.cfg.Steps,
	})
	log.Info("running simulation")

	result, err := e.simulator.Run(ctx, e.Bodies(), e.cfg.RunConfig())
	if err != nil {
		return result, err
	}

	log.WithFields(logrus.Fields{
		"energy_drift": result.EnergyDrift,
		"steps_taken":  result.StepsTaken,
	}).Info("simulation finished")
	for _, err := range result.Errors {
		log.WithError(err).Warn("simulation reported an error")
	}
	return result, nil
}

// NewLoop builds an interactive loop over a fresh copy of the bodies,
// using a separate integrator instance from the headless simulator.
func (e *Experiment) NewLoop(opts ...sim.LoopOption) (*sim.Loop, error) {
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator, e.gravity)
	if err != nil {
		return nil, err
	}
	return sim.NewLoop(e.Bodies(), integ, e.cfg.Dt, opts...)
}

// Bodies returns a fresh body list built from the configuration.
func (e *Experiment) Bodies() dynamo.Bodies {
	return e.cfg.BuildBodies()
}

// progress logs a debug line roughly every tenth of a run.
type progress struct {
	dt    float64
	every int
}

func newProgress(dt float64, steps int) *progress {
	return &progress{dt: dt, every: max(steps/10, 1)}
}

func (p *progress) OnStep(bodies dynamo.Bodies, t float64) {
	step := int(math.Round(t / p.dt))
	if step > 0 && step%p.every == 0 {
		logrus.WithFields(logrus.Fields{"step": step, "time": t}).Debug("simulation progress")
	}
}

func (e *Experiment) Config() *config.Config        { return e.cfg }
func (e *Experiment) Gravity() *physics.Gravity     { return e.gravity }
func (e *Experiment) Integrator() dynamo.Integrator { return e.integrator }
func (e *Experiment) Registry() *Registry           { return e.registry }
