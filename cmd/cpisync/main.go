package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rbb-data/cpisync/am"
	"github.com/rbb-data/cpisync/cmd/cpisync/commands"
	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/logger"
)

var rootCmd = &cobra.Command{
	Use:   "cpisync",
	Short: "cpisync - consumer price index sync from GENESIS",
	Long: `cpisync - incremental sync of the Destatis consumer price index.

Publishes the months of GENESIS table 61111-0006 that the downstream
time-series store does not have yet.

Available commands:
  sync    - Run one sync
  listen  - Run a sync per NATS message
  watch   - Run a sync on an interval
  items   - List the queried basket items
  am      - Manage configuration ("I am")
  version - Show version information

Examples:
  cpisync sync --dry-run     # Preview new rows
  cpisync sync               # Publish new rows
  cpisync watch --interval 24h`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			am.SetConfigFile(path)
		}
		if err := initLogger(cmd); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// initLogger picks the log level from -v/--quiet, falling back to
// log.level. Output is JSON when log.json is set or on Cloud Run.
func initLogger(cmd *cobra.Command) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if quiet {
		verbosity = logger.VerbosityQuiet
	}
	level := logger.VerbosityToLevel(verbosity)

	jsonLogs := logger.IsManagedRuntime()
	if cfg, err := am.Load(); err == nil {
		jsonLogs = jsonLogs || cfg.Log.JSON
		if verbosity == logger.VerbosityDefault {
			if l, err := cfg.Log.ZapLevel(); err == nil {
				level = l
			}
		}
	}

	return logger.Initialize(jsonLogs, level)
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (-v shows request details)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log warnings and errors")
	rootCmd.PersistentFlags().String("config", "", "Config file read on top of the default cascade")

	rootCmd.AddCommand(commands.SyncCmd)
	rootCmd.AddCommand(commands.ListenCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.ItemsCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		logger.Cleanup()
		os.Exit(1)
	}
}
