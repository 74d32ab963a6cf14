package am

import (
	"net/url"

	"go.uber.org/zap/zapcore"

	"github.com/rbb-data/cpisync/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := validateEndpoint("store.url", c.Store.URL); err != nil {
		return err
	}
	if err := validateEndpoint("genesis.url", c.Genesis.URL); err != nil {
		return err
	}

	if c.Store.Table == "" {
		return errors.New("store.table cannot be empty")
	}
	if c.Store.ReferenceID == "" {
		return errors.New("store.reference_id cannot be empty")
	}
	if c.Store.TokenSecret == "" {
		return errors.WithHint(errors.New("store.token_secret cannot be empty"),
			"set API_SECRET or CPISYNC_STORE_TOKEN_SECRET")
	}

	if c.Genesis.Username == "" {
		return errors.WithHint(errors.New("genesis.username cannot be empty"),
			"set GENESIS_USERNAME or CPISYNC_GENESIS_USERNAME")
	}
	if c.Genesis.PasswordSecret == "" {
		return errors.WithHint(errors.New("genesis.password_secret cannot be empty"),
			"set GENESIS_PASSWORD or CPISYNC_GENESIS_PASSWORD_SECRET")
	}
	if c.Genesis.Dataset == "" || c.Genesis.ClassifyingVariable == "" {
		return errors.New("genesis.dataset and genesis.classifying_variable cannot be empty")
	}

	switch c.Secrets.Provider {
	case "gcp", "env":
	default:
		return errors.Newf("secrets.provider must be gcp or env, got %q", c.Secrets.Provider)
	}

	if c.Items.Path == "" {
		return errors.New("items.path cannot be empty")
	}

	if c.Trigger.IntervalMinutes < 0 {
		return errors.Newf("trigger.interval_minutes must be >= 0, got %d", c.Trigger.IntervalMinutes)
	}
	if c.Trigger.MaxRunsPerHour < 0 {
		return errors.Newf("trigger.max_runs_per_hour must be >= 0, got %d", c.Trigger.MaxRunsPerHour)
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return errors.Newf("http.timeout_seconds must be >= 0, got %d", c.HTTP.TimeoutSeconds)
	}

	if _, err := c.Log.ZapLevel(); err != nil {
		return err
	}

	return nil
}

// ZapLevel parses log.level
func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	if l.Level == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel, errors.Wrapf(err, "invalid log.level %q", l.Level)
	}
	return level, nil
}

func validateEndpoint(key, raw string) error {
	if raw == "" {
		return errors.Newf("%s cannot be empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(err, "%s is not a valid URL", key)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Newf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}
