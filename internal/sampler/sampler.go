// Package sampler drives the daemon's periodic score evaluations: a
// monotonic step counter and a callback fired once per interval.
package sampler

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Sampler fires OnSample at a fixed interval until stopped. The step counter
// starts at zero and increments before each callback, so the first sample
// sees step 1.
type Sampler struct {
	Interval time.Duration
	OnSample func(step uint64)

	step     atomic.Uint64
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a sampler with the given interval and callback.
func New(interval time.Duration, onSample func(step uint64)) *Sampler {
	return &Sampler{
		Interval: interval,
		OnSample: onSample,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Step returns the number of samples taken so far. Safe to call from any
// goroutine.
func (s *Sampler) Step() uint64 {
	return s.step.Load()
}

// Run is the main loop. It blocks until Stop is called, firing OnSample
// once per interval tick.
func (s *Sampler) Run() {
	slog.Info("sampler started", "interval", s.Interval)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.quit:
			slog.Info("sampler stopped", "steps", s.step.Load())
			return
		case <-ticker.C:
			step := s.step.Add(1)
			if s.OnSample != nil {
				s.OnSample(step)
			}
		}
	}
}

// Stop halts the loop and waits for the in-flight sample, if any, to
// finish. Must not be called before Run; safe to call more than once.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.done
}
