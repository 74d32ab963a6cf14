// Package trigger starts pipeline runs from outside events: a NATS message
// or an interval ticker. Whatever the source, runs go through one Runner so
// they never overlap and cannot exceed the configured hourly budget.
package trigger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/logger"
	"github.com/rbb-data/cpisync/pipeline"
)

// ErrRateLimited is returned by Fire when the hourly run budget is spent.
var ErrRateLimited = errors.New("run rate limit exceeded")

// RunFunc performs one sync, usually (*pipeline.Pipeline).Run.
type RunFunc func(ctx context.Context) (pipeline.Report, error)

// Runner serialises runs and rate-limits them.
type Runner struct {
	run     RunFunc
	mu      sync.Mutex
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewRunner creates a Runner allowing at most maxRunsPerHour runs per hour.
// Zero means unlimited.
func NewRunner(run RunFunc, maxRunsPerHour int) *Runner {
	limit := rate.Inf
	if maxRunsPerHour > 0 {
		limit = rate.Every(time.Hour / time.Duration(maxRunsPerHour))
	}
	return &Runner{
		run:     run,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.ComponentLogger("trigger"),
	}
}

// Fire runs the pipeline once on behalf of source. A trigger over budget is
// dropped with ErrRateLimited; a trigger arriving during a run waits for it.
func (r *Runner) Fire(ctx context.Context, source string) (pipeline.Report, error) {
	ctx = logger.WithTrigger(ctx, source)
	log := logger.FromContext(ctx, r.logger)

	if !r.limiter.Allow() {
		log.Warnw("Trigger dropped, run rate limit exceeded")
		return pipeline.Report{}, ErrRateLimited
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	log.Debugw("Starting triggered run")
	return r.run(ctx)
}
