package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	g := physics.NewGravity(1)

	want := []string{"euler", "forest-ruth", "verlet"}
	got := r.ListIntegrators()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
		integ, err := r.GetIntegrator(want[i], g)
		if err != nil {
			t.Fatalf("%s: %v", want[i], err)
		}
		if integ.Name() != want[i] {
			t.Errorf("expected name %s, got %s", want[i], integ.Name())
		}
	}

	a, _ := r.GetIntegrator("verlet", g)
	b, _ := r.GetIntegrator("verlet", g)
	if a == b {
		t.Error("expected independent integrator instances")
	}
}

func TestRegistryUnknown(t *testing.T) {
	if _, err := NewRegistry().Factory("rk4"); !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}

	_, err := NewRegistry().GetIntegrator("rk4", physics.NewGravity(1))
	if !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
}

func TestDefaultMetrics(t *testing.T) {
	ms := NewRegistry().DefaultMetrics(physics.NewGravity(1), physics.CircularBinary(1, 1, 1, 2))

	names := map[string]bool{}
	for _, m := range ms {
		names[m.Name()] = true
	}
	for _, n := range []string{"energy", "energy_drift", "momentum_drift", "angular_momentum_drift", "stability"} {
		if !names[n] {
			t.Errorf("missing default metric %s", n)
		}
	}
}

func TestSystemRadius(t *testing.T) {
	if r := systemRadius(physics.CircularBinary(1, 1, 3, 4)); r != 3 {
		t.Errorf("expected radius 3, got %v", r)
	}
	if r := systemRadius(dynamo.Bodies{{Mass: 1}}); r != 1 {
		t.Errorf("expected fallback radius 1, got %v", r)
	}
}

func TestExperimentRun(t *testing.T) {
	cfg := config.GetPreset("circular")
	cfg.Steps = 200

	e, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	if _, err := e.Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}

	if err := e.Setup(nil); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 200 {
		t.Errorf("expected 200 steps, got %d", result.StepsTaken)
	}
	if result.Metrics["stability"] != 1 {
		t.Errorf("circular orbit should be stable, got %v", result.Metrics["stability"])
	}
	if result.EnergyDrift > 1e-9 {
		t.Errorf("energy drift too high: %e", result.EnergyDrift)
	}
}

func TestExperimentLogsProgress(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer logrus.SetLevel(level)

	cfg := config.GetPreset("circular")
	cfg.Steps = 20

	e, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if err := e.Setup(nil); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var steps []int
	for _, entry := range hook.AllEntries() {
		if entry.Message == "simulation progress" {
			steps = append(steps, entry.Data["step"].(int))
		}
	}
	if len(steps) != 10 || steps[0] != 2 || steps[9] != 20 {
		t.Errorf("expected progress every 2 steps, got %v", steps)
	}
}

func TestExperimentConfigIsCopied(t *testing.T) {
	cfg := config.DefaultConfig()
	e, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Dt = 1
	cfg.Bodies[0].Mass = 1
	if e.Config().Dt != config.DefaultDt || e.Bodies()[0].Mass != 2.0e30 {
		t.Error("experiment shares the caller's config")
	}
}

func TestExperimentInvalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Integrator = "leapfrog"
	if _, err := New(cfg, NewRegistry()); !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}

	cfg = config.DefaultConfig()
	cfg.Dt = 0
	if _, err := New(cfg, NewRegistry()); !errors.Is(err, dynamo.ErrInvalidTimestep) {
		t.Errorf("expected ErrInvalidTimestep, got %v", err)
	}
}

func TestExperimentNewLoop(t *testing.T) {
	e, err := New(config.DefaultConfig(), NewRegistry())
	if err != nil {
		t.Fatal(err)
	}

	l, err := e.NewLoop()
	if err != nil {
		t.Fatal(err)
	}
	if l.Stepper() == dynamo.Stepper(e.Integrator()) {
		t.Error("loop must not share the simulator's integrator")
	}

	l.Tick()
	if l.Bodies()[0].Pos == e.Bodies()[0].Pos {
		t.Error("expected the loop to advance its own bodies")
	}
}
