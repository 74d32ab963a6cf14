// Package pipeline runs one incremental sync: resolve the next unpublished
// month, fetch and parse the source table, keep the new rows and publish
// them.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rbb-data/cpisync/am"
	"github.com/rbb-data/cpisync/catalog"
	"github.com/rbb-data/cpisync/cpi"
	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/genesis"
	"github.com/rbb-data/cpisync/internal/httpclient"
	"github.com/rbb-data/cpisync/logger"
	"github.com/rbb-data/cpisync/secrets"
	"github.com/rbb-data/cpisync/store"
)

// Outcome is how a successful run ended.
type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeNoNewData Outcome = "no_new_data"
	OutcomeDryRun    Outcome = "dry_run"
)

// Store is the downstream store as the pipeline uses it.
type Store interface {
	MostRecent(ctx context.Context, referenceID string) (cpi.Cursor, error)
	Publish(ctx context.Context, observations []cpi.Observation, token string) error
}

// Source downloads a raw table to a path.
type Source interface {
	Download(ctx context.Context, req genesis.Request, dstPath string) error
}

// Report summarises a successful run.
type Report struct {
	RunID     string     `json:"run_id"`
	Cursor    cpi.Cursor `json:"cursor"`
	Next      cpi.Cursor `json:"next"`
	Parsed    int        `json:"parsed"`
	Selected  int        `json:"selected"`
	Published int        `json:"published"`
	Outcome   Outcome    `json:"outcome"`

	// Observations holds the selected rows.
	Observations []cpi.Observation `json:"observations,omitempty"`
}

// Pipeline wires the store, the source and the secret provider.
type Pipeline struct {
	cfg     *am.Config
	store   Store
	source  Source
	secrets secrets.Provider
	dryRun  bool
	logger  *zap.SugaredLogger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDryRun stops the run before publishing.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) { p.dryRun = dryRun }
}

// WithStore replaces the HTTP store client.
func WithStore(s Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithSource replaces the GENESIS client.
func WithSource(s Source) Option {
	return func(p *Pipeline) { p.source = s }
}

// New creates a pipeline for cfg. Credentials are resolved through provider
// on every run.
func New(cfg *am.Config, provider secrets.Provider, opts ...Option) *Pipeline {
	hc := httpclient.New(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)

	p := &Pipeline{
		cfg:     cfg,
		store:   store.New(hc, cfg.Store.URL, cfg.Store.Table),
		source:  genesis.New(hc, cfg.Genesis),
		secrets: provider,
		logger:  logger.ComponentLogger("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one sync. A run that finds nothing new succeeds with
// OutcomeNoNewData. Any failure aborts the run before anything is published;
// classified failures carry an errors.Code.
func (p *Pipeline) Run(ctx context.Context) (report Report, err error) {
	report.RunID = uuid.NewString()
	ctx = logger.WithRunID(ctx, report.RunID)
	log := logger.FromContext(ctx, p.logger)
	start := time.Now()

	defer func() {
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			log.Errorw("Run failed",
				logger.FieldError, err.Error(),
				logger.FieldErrorCode, string(errors.CodeOf(err)),
				logger.FieldDurationMS, elapsed)
			return
		}
		log.Infow("Run finished",
			"outcome", string(report.Outcome),
			logger.FieldCount, report.Published,
			logger.FieldDurationMS, elapsed)
	}()

	items, err := catalog.Load(p.cfg.Items.Path)
	if err != nil {
		return report, err
	}

	cursor, err := p.store.MostRecent(ctx, p.cfg.Store.ReferenceID)
	if err != nil {
		return report, err
	}
	report.Cursor = cursor
	report.Next = cursor.Next()
	log.Infow("Resolved cursor",
		logger.FieldCursor, cursor.String(),
		logger.FieldNext, report.Next.String())

	password, err := p.secrets.Resolve(ctx, p.cfg.Genesis.PasswordSecret)
	if err != nil {
		return report, errors.Wrap(err, "failed to resolve GENESIS password")
	}

	observations, err := p.fetch(ctx, genesis.Request{
		Username: p.cfg.Genesis.Username,
		Password: password,
		Year:     report.Next.Year,
		Items:    items,
	})
	if err != nil {
		return report, err
	}
	report.Parsed = len(observations)

	// the payload only holds next.Year, so this is month >= next.Month
	selected := Select(observations, report.Next)
	report.Selected = len(selected)
	report.Observations = selected

	if len(selected) == 0 {
		log.Infow("No new data available", logger.FieldNext, report.Next.String())
		report.Outcome = OutcomeNoNewData
		return report, nil
	}

	if p.dryRun {
		log.Infow("Dry run, not publishing", logger.FieldCount, len(selected))
		report.Outcome = OutcomeDryRun
		return report, nil
	}

	token, err := p.secrets.Resolve(ctx, p.cfg.Store.TokenSecret)
	if err != nil {
		return report, errors.Wrap(err, "failed to resolve API token")
	}

	if err := p.store.Publish(ctx, selected, token); err != nil {
		return report, err
	}
	report.Published = len(selected)
	report.Outcome = OutcomePublished

	return report, nil
}

// fetch downloads the table into a transient file and parses it. The file
// is removed before fetch returns, whatever happened.
func (p *Pipeline) fetch(ctx context.Context, req genesis.Request) ([]cpi.Observation, error) {
	log := logger.FromContext(ctx, p.logger)

	path, err := p.createTransient()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warnw("Failed to remove transient payload", logger.FieldFile, path, logger.FieldError, err.Error())
		}
	}()

	if err := p.source.Download(ctx, req, path); err != nil {
		return nil, err
	}

	observations, err := genesis.ParseFile(path)
	if err != nil {
		return nil, err
	}
	log.Infow("Parsed payload", logger.FieldCount, len(observations))
	return observations, nil
}

func (p *Pipeline) createTransient() (string, error) {
	dir := p.cfg.Work.TmpDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create work dir %s", dir)
	}

	f, err := os.CreateTemp(dir, "genesis-*.csv")
	if err != nil {
		return "", errors.Wrap(err, "failed to create transient payload file")
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "failed to close transient payload file")
	}
	return path, nil
}
