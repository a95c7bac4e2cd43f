package edge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"iftseg/internal/models"
	"iftseg/pkg/ift"
)

// Job is one independent edge algorithm run
type Job struct {
	// ID correlates log lines; a random one is assigned when empty
	ID        string
	Algorithm Algorithm
	Image     *models.Image
	Mask      *models.Image
	Seeds     []bool
	Params    Params
}

// Outcome is the result of a Job
type Outcome struct {
	Job     Job
	Result  *ift.Result
	Elapsed time.Duration
}

// RunBatch runs independent jobs concurrently, at most limit at a time
// (limit <= 0 means no limit). Each run owns its buffers; inputs are only
// read. A run cannot be interrupted, so cancellation takes effect before the
// next job starts. Outcomes keep the order of jobs.
func RunBatch(ctx context.Context, log *slog.Logger, jobs []Job, limit int) ([]Outcome, error) {
	const op = "edge.RunBatch"

	outcomes := make([]Outcome, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range jobs {
		job := jobs[i]
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l := log.With(slog.String("op", op), slog.String("run_id", job.ID), slog.String("algorithm", string(job.Algorithm)))
			l.Debug("run started", slog.Int("seeds", models.Seeds(job.Seeds).Count()))

			start := time.Now()
			res, err := Compute(job.Algorithm, job.Image, job.Mask, job.Seeds, job.Params)
			if err != nil {
				l.Error("run failed", slog.String("err", err.Error()))
				return fmt.Errorf("%s: job %s: %w", op, job.ID, err)
			}
			elapsed := time.Since(start)
			stats := res.Stats()
			l.Info("run finished",
				slog.Duration("elapsed", elapsed),
				slog.Int("reached", stats.Reached),
				slog.Float64("max_cost", stats.Max),
			)
			outcomes[i] = Outcome{Job: job, Result: res, Elapsed: elapsed}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
