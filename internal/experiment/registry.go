package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/physics"
)

// stabilityFactor scales the initial system radius into the escape radius
// used by the default stability metric.
const stabilityFactor = 10.0

type Registry struct {
	integrators map[string]func(dynamo.Field) dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(dynamo.Field) dynamo.Integrator),
	}

	r.integrators["euler"] = func(f dynamo.Field) dynamo.Integrator { return integrators.NewEuler(f) }
	r.integrators["verlet"] = func(f dynamo.Field) dynamo.Integrator { return integrators.NewVerlet(f) }
	r.integrators["forest-ruth"] = func(f dynamo.Field) dynamo.Integrator { return integrators.NewForestRuth(f) }

	return r
}

// GetIntegrator returns a new integrator bound to field. Every call yields
// an independent instance with its own scratch buffers.
func (r *Registry) GetIntegrator(name string, field dynamo.Field) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownIntegrator)
	}
	return fn(field), nil
}

// Factory returns the constructor registered under name.
func (r *Registry) Factory(name string) (func(dynamo.Field) dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownIntegrator)
	}
	return fn, nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(g *physics.Gravity, bodies dynamo.Bodies) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergy(g),
		metrics.NewEnergyDrift(g),
		metrics.NewMomentumDrift(),
		metrics.NewAngularMomentumDrift(),
		metrics.NewStability(stabilityFactor * systemRadius(bodies)),
	}
}

// systemRadius is the largest distance of any body from the center of mass,
// or 1 for a single body.
func systemRadius(bodies dynamo.Bodies) float64 {
	com := physics.CenterOfMass(bodies)
	r := 0.0
	for i := range bodies {
		r = math.Max(r, bodies[i].Pos.Sub(com).Len())
	}
	if r == 0 {
		return 1
	}
	return r
}
