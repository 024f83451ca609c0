// Package scheduler runs periodic background jobs
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// MetricsWarmer is the part of the supplier metrics flow the scheduler drives
type MetricsWarmer interface {
	Warm(ctx context.Context) (int, error)
}

// MetricsWarmupScheduler periodically recomputes cached supplier metrics so
// recommendation requests rarely pay for a cold aggregation.
type MetricsWarmupScheduler struct {
	warmer  MetricsWarmer
	spec    string
	timeout time.Duration
	logger  *log.Logger
}

// NewMetricsWarmupScheduler builds a scheduler for a cron spec such as
// "@every 5m" or "*/10 * * * *". Each run is bounded by timeout.
func NewMetricsWarmupScheduler(warmer MetricsWarmer, spec string, timeout time.Duration) *MetricsWarmupScheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &MetricsWarmupScheduler{
		warmer:  warmer,
		spec:    spec,
		timeout: timeout,
		logger:  log.New(log.Writer(), "metrics-warmup: ", log.LstdFlags|log.LUTC),
	}
}

// Start runs one warm-up immediately, then hands the job to cron. The returned
// stop function blocks until every in-flight run has finished.
func (s *MetricsWarmupScheduler) Start(parent context.Context) (func(), error) {
	ctx, cancel := context.WithCancel(parent)

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cron.VerbosePrintfLogger(s.logger)),
		cron.WithChain(cron.Recover(cron.PrintfLogger(s.logger)), cron.SkipIfStillRunning(cron.PrintfLogger(s.logger))),
	)
	if _, err := c.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid warm-up schedule %q: %w", s.spec, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runOnce(ctx)
	}()
	c.Start()

	return func() {
		cancel()
		<-c.Stop().Done()
		wg.Wait()
	}, nil
}

func (s *MetricsWarmupScheduler) runOnce(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.warmer.Warm(ctx)
	if err != nil {
		s.logger.Printf("warm-up failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return
	}
	s.logger.Printf("refreshed metrics of %d suppliers in %s", n, time.Since(start).Round(time.Millisecond))
}
