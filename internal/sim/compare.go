package sim

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Comparison is the outcome of one integrator in a Compare call.
type Comparison struct {
	Name    string
	Result  *dynamo.Result
	Elapsed time.Duration
}

// Compare runs every integrator on its own copy of bodies. Runs are
// independent and execute concurrently; each run is single-threaded.
// metrics, when non-nil, builds a fresh metric set for each run.
func Compare(ctx context.Context, bodies dynamo.Bodies, integs []dynamo.Integrator, energy dynamo.Hamiltonian, cfg dynamo.Config, metrics func() []dynamo.Metric) ([]Comparison, error) {
	if err := bodies.Validate(); err != nil {
		return nil, err
	}

	out := make([]Comparison, len(integs))
	g, ctx := errgroup.WithContext(ctx)

	for i, integ := range integs {
		i, integ := i, integ
		g.Go(func() error {
			s := New(integ, energy)
			if metrics != nil {
				for _, m := range metrics() {
					s.AddMetric(m)
				}
			}

			start := time.Now()
			res, err := s.Run(ctx, bodies, cfg)
			if err != nil {
				return err
			}
			out[i] = Comparison{Name: integ.Name(), Result: res, Elapsed: time.Since(start)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
