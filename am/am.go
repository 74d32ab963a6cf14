// Package am loads the cpisync configuration.
//
// Sources, lowest to highest precedence: defaults, /etc/cpisync/config.toml,
// ~/.cpisync/config.toml, ./cpisync.toml (searched upwards), an explicit
// --config file, then environment variables (CPISYNC_* and the variable
// names of the original function deployment such as API_URL).
package am

// Config represents the cpisync configuration
type Config struct {
	Store   StoreConfig   `mapstructure:"store" toml:"store" json:"store" yaml:"store"`
	Genesis GenesisConfig `mapstructure:"genesis" toml:"genesis" json:"genesis" yaml:"genesis"`
	Secrets SecretsConfig `mapstructure:"secrets" toml:"secrets" json:"secrets" yaml:"secrets"`
	Items   ItemsConfig   `mapstructure:"items" toml:"items" json:"items" yaml:"items"`
	Work    WorkConfig    `mapstructure:"work" toml:"work" json:"work" yaml:"work"`
	Trigger TriggerConfig `mapstructure:"trigger" toml:"trigger" json:"trigger" yaml:"trigger"`
	Log     LogConfig     `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
	HTTP    HTTPConfig    `mapstructure:"http" toml:"http" json:"http" yaml:"http"`
}

// StoreConfig configures the downstream time-series API
type StoreConfig struct {
	URL   string `mapstructure:"url" toml:"url" json:"url" yaml:"url"`
	Table string `mapstructure:"table" toml:"table" json:"table" yaml:"table"`
	// item whose latest month drives the cursor
	ReferenceID string `mapstructure:"reference_id" toml:"reference_id" json:"reference_id" yaml:"reference_id"`
	// secret reference for the bearer token
	TokenSecret string `mapstructure:"token_secret" toml:"token_secret" json:"token_secret" yaml:"token_secret"`
}

// GenesisConfig configures the GENESIS data-delivery service
type GenesisConfig struct {
	URL                 string `mapstructure:"url" toml:"url" json:"url" yaml:"url"`
	Username            string `mapstructure:"username" toml:"username" json:"username" yaml:"username"`
	PasswordSecret      string `mapstructure:"password_secret" toml:"password_secret" json:"password_secret" yaml:"password_secret"`
	Dataset             string `mapstructure:"dataset" toml:"dataset" json:"dataset" yaml:"dataset"`
	Language            string `mapstructure:"language" toml:"language" json:"language" yaml:"language"`
	Area                string `mapstructure:"area" toml:"area" json:"area" yaml:"area"`
	ClassifyingVariable string `mapstructure:"classifying_variable" toml:"classifying_variable" json:"classifying_variable" yaml:"classifying_variable"`
	Format              string `mapstructure:"format" toml:"format" json:"format" yaml:"format"`
}

// SecretsConfig selects where credentials are resolved
type SecretsConfig struct {
	// gcp or env
	Provider string `mapstructure:"provider" toml:"provider" json:"provider" yaml:"provider"`
}

// ItemsConfig points at the basket item list
type ItemsConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// WorkConfig configures the transient download location
type WorkConfig struct {
	TmpDir string `mapstructure:"tmp_dir" toml:"tmp_dir" json:"tmp_dir" yaml:"tmp_dir"`
}

// TriggerConfig configures the long-running trigger modes (listen, watch)
type TriggerConfig struct {
	NatsURL string `mapstructure:"nats_url" toml:"nats_url" json:"nats_url" yaml:"nats_url"`
	Subject string `mapstructure:"subject" toml:"subject" json:"subject" yaml:"subject"`
	// optional queue group
	Queue string `mapstructure:"queue" toml:"queue" json:"queue" yaml:"queue"`
	// watch mode period
	IntervalMinutes int `mapstructure:"interval_minutes" toml:"interval_minutes" json:"interval_minutes" yaml:"interval_minutes"`
	// 0 = unlimited
	MaxRunsPerHour int `mapstructure:"max_runs_per_hour" toml:"max_runs_per_hour" json:"max_runs_per_hour" yaml:"max_runs_per_hour"`
}

// LogConfig configures log output
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	Level string `mapstructure:"level" toml:"level" json:"level" yaml:"level"`
}

// HTTPConfig configures outgoing requests
type HTTPConfig struct {
	// 0 = transport default
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
}
