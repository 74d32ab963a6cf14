package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rbb-data/cpisync/trigger"
)

// WatchCmd runs the pipeline on an interval
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run a sync now and then on a fixed interval",
	Long: `Run a sync immediately and then once per interval until interrupted.

The interval defaults to trigger.interval_minutes. Runs share the hourly cap
with every other trigger.

Examples:
  cpisync watch                 # Use the configured interval
  cpisync watch --interval 6h   # Every six hours`,
	RunE: runWatch,
}

func init() {
	WatchCmd.Flags().Duration("interval", 0, "Time between runs (default trigger.interval_minutes)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	if interval == 0 {
		interval = time.Duration(cfg.Trigger.IntervalMinutes) * time.Minute
	}

	p, release, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	runner := trigger.NewRunner(p.Run, cfg.Trigger.MaxRunsPerHour)
	return trigger.NewTicker(runner, interval).Run(ctx)
}
