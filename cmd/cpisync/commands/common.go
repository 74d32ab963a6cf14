package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbb-data/cpisync/am"
	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/logger"
	"github.com/rbb-data/cpisync/pipeline"
	"github.com/rbb-data/cpisync/secrets"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadValidConfig loads the configuration and rejects it if invalid.
func loadValidConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// newPipeline builds a pipeline with the configured secret provider.
// The returned func releases the provider.
func newPipeline(ctx context.Context, cfg *am.Config, opts ...pipeline.Option) (*pipeline.Pipeline, func(), error) {
	provider, err := secrets.New(ctx, cfg.Secrets)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		if c, ok := provider.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warnw("Failed to close secrets provider", logger.FieldError, err.Error())
			}
		}
	}

	return pipeline.New(cfg, provider, opts...), release, nil
}
