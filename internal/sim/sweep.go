package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dtgrowth/internal/dynamo"
	"github.com/san-kum/dtgrowth/internal/stepper"
)

// Job is one independent run of a sweep. Each job gets its own system,
// integrator and stepper, so jobs can run concurrently.
type Job struct {
	Name          string
	NewSystem     func() (dynamo.System, error)
	NewIntegrator func() (dynamo.Integrator, error)
	Config        Config
	Params        stepper.Params
	X0            dynamo.State
}

// RunJob builds the driver and stepper for j and runs it.
func RunJob(ctx context.Context, j Job, opts ...stepper.Option) (*Result, error) {
	dyn, err := j.NewSystem()
	if err != nil {
		return nil, err
	}
	integ, err := j.NewIntegrator()
	if err != nil {
		return nil, err
	}

	d := New(dyn, integ, j.Config)
	st, err := stepper.New(j.Params, d, opts...)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, j.X0, st)
}

// Sweep runs jobs concurrently with at most limit in flight (limit <= 0
// means no limit). Results are in job order; the first error cancels the
// remaining jobs.
func Sweep(ctx context.Context, jobs []Job, limit int, opts ...stepper.Option) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, j := range jobs {
		g.Go(func() error {
			res, err := RunJob(ctx, j, opts...)
			if err != nil {
				return fmt.Errorf("job %s: %w", j.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
