// Package sweep evaluates the score across a slice of the load profile, one
// independent evaluation per step. Evaluations share nothing, so they fan
// out across a bounded group and land in per-index slots; the assembled
// result is identical for any worker count.
package sweep

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/Gianni-inc/QuantumGianni/internal/profile"
	"github.com/Gianni-inc/QuantumGianni/internal/qops"
)

// Sample is one sweep evaluation: the profile step it came from, the load
// factor read there, and the full score breakdown at that load.
type Sample struct {
	Step       uint64  `json:"step"`
	LoadFactor float64 `json:"load_factor"`
	qops.Breakdown
}

// Result aggregates a finished sweep.
type Result struct {
	Samples []Sample `json:"samples"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Mean    float64  `json:"mean"`
}

// Run evaluates base at every load factor in profile steps [from, from+steps).
// workers bounds concurrency; values below one run single-threaded. Each
// goroutine owns exactly one slot of the sample slice, so the only
// cross-goroutine effect of the worker count is scheduling.
func Run(ctx context.Context, base qops.Params, gen *profile.Generator, from uint64, steps, workers int) (Result, error) {
	if steps <= 0 {
		return Result{}, nil
	}
	if workers < 1 {
		workers = 1
	}

	samples := make([]Sample, steps)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k := 0; k < steps; k++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			step := from + uint64(k)
			p := base
			p.LoadFactor = gen.At(step)
			samples[k] = Sample{
				Step:       step,
				LoadFactor: p.LoadFactor,
				Breakdown:  qops.Orchestrate(p),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return summarize(samples), nil
}

// summarize computes the aggregate stats over the finished samples. NaN
// totals propagate into the mean but are skipped by the min/max
// comparisons, matching how the rest of the system treats degenerate
// scores.
func summarize(samples []Sample) Result {
	res := Result{
		Samples: samples,
		Min:     math.Inf(1),
		Max:     math.Inf(-1),
	}
	sum := 0.0
	for _, s := range samples {
		if s.Total < res.Min {
			res.Min = s.Total
		}
		if s.Total > res.Max {
			res.Max = s.Total
		}
		sum += s.Total
	}
	res.Mean = sum / float64(len(samples))
	return res
}
