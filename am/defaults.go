package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Default endpoints and query constants
const (
	DefaultGenesisURL  = "https://www-genesis.destatis.de/genesisWS/rest/2020/data/tablefile"
	DefaultStoreURL    = "https://europe-west3-rbb-data-inflation.cloudfunctions.net/consumer-price-index-api"
	DefaultReferenceID = "CC13-0111101100"
	DefaultDataset     = "61111-0006"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Downstream store
	v.SetDefault("store.url", DefaultStoreURL)
	v.SetDefault("store.table", "consumer-price-index")
	v.SetDefault("store.reference_id", DefaultReferenceID)
	v.SetDefault("store.token_secret", "CPISYNC_API_TOKEN")

	// GENESIS source service
	v.SetDefault("genesis.url", DefaultGenesisURL)
	v.SetDefault("genesis.password_secret", "CPISYNC_GENESIS_PASSWORD")
	v.SetDefault("genesis.dataset", DefaultDataset)
	v.SetDefault("genesis.language", "de")
	v.SetDefault("genesis.area", "all")
	v.SetDefault("genesis.classifying_variable", "CC13Z1") // basket taxonomy
	v.SetDefault("genesis.format", "ffcsv")                // flat-file CSV

	v.SetDefault("secrets.provider", "env")

	v.SetDefault("items.path", filepath.Join("data", "warenkorb_ids.txt"))
	v.SetDefault("work.tmp_dir", defaultTmpDir())

	// Trigger modes
	v.SetDefault("trigger.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("trigger.subject", "cpisync.update")
	v.SetDefault("trigger.interval_minutes", 24*60)
	v.SetDefault("trigger.max_runs_per_hour", 6)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("http.timeout_seconds", 0)
}

// BindSensitiveEnvVars binds settings to the environment variable names the
// function deployment already uses, next to their CPISYNC_* names.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("store.url", "CPISYNC_STORE_URL", "API_URL")
	v.BindEnv("store.token_secret", "CPISYNC_STORE_TOKEN_SECRET", "API_SECRET")
	v.BindEnv("genesis.url", "CPISYNC_GENESIS_URL", "GENESIS_API_URL")
	v.BindEnv("genesis.username", "CPISYNC_GENESIS_USERNAME", "GENESIS_USERNAME")
	v.BindEnv("genesis.password_secret", "CPISYNC_GENESIS_PASSWORD_SECRET", "GENESIS_PASSWORD")
}

// defaultTmpDir keeps downloads inside the working tree for local
// development and in the system temp dir everywhere else.
func defaultTmpDir() string {
	if strings.EqualFold(os.Getenv("FUNCTION_ENV"), "development") {
		return "tmp"
	}
	return os.TempDir()
}
