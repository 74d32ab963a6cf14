package trigger

import (
	"context"
	"time"

	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/logger"
)

// Ticker fires a run immediately and then once per interval until ctx is
// cancelled.
type Ticker struct {
	runner   *Runner
	interval time.Duration
}

// NewTicker creates a Ticker.
func NewTicker(runner *Runner, interval time.Duration) *Ticker {
	return &Ticker{runner: runner, interval: interval}
}

// Run blocks until ctx is done. Failed runs are logged by the pipeline and
// do not stop the ticker.
func (t *Ticker) Run(ctx context.Context) error {
	if t.interval <= 0 {
		return errors.Newf("ticker interval must be positive, got %s", t.interval)
	}

	log := logger.FromContext(ctx, t.runner.logger)
	log.Infow("Watching", "interval", t.interval.String())

	t.fire(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infow("Ticker stopped")
			return nil
		case <-ticker.C:
			t.fire(ctx)
		}
	}
}

func (t *Ticker) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	t.runner.Fire(ctx, "ticker")
}
