package commands

import (
	"github.com/spf13/cobra"

	"github.com/rbb-data/cpisync/logger"
	"github.com/rbb-data/cpisync/trigger"
)

// ListenCmd runs the pipeline once per NATS message
var ListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run a sync for every message on a NATS subject",
	Long: `Subscribe to a NATS subject and run one sync per message.

Runs never overlap and are capped at trigger.max_runs_per_hour. A failed run
is logged and the listener keeps going. When a message carries a reply
subject the run report is sent back, so

  nats request cpisync.update ''

triggers a run and waits for its outcome.`,
	RunE: runListen,
}

func init() {
	ListenCmd.Flags().String("nats-url", "", "NATS server URL (default trigger.nats_url)")
	ListenCmd.Flags().String("subject", "", "Subject to listen on (default trigger.subject)")
	ListenCmd.Flags().String("queue", "", "Queue group shared by several listeners (default trigger.queue)")
}

func runListen(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("nats-url") {
		cfg.Trigger.NatsURL, _ = cmd.Flags().GetString("nats-url")
	}
	if cmd.Flags().Changed("subject") {
		cfg.Trigger.Subject, _ = cmd.Flags().GetString("subject")
	}
	if cmd.Flags().Changed("queue") {
		cfg.Trigger.Queue, _ = cmd.Flags().GetString("queue")
	}

	p, release, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	nc, err := trigger.Connect(cfg.Trigger.NatsURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := nc.Drain(); err != nil {
			logger.Warnw("Failed to drain NATS connection", logger.FieldError, err.Error())
		}
	}()

	runner := trigger.NewRunner(p.Run, cfg.Trigger.MaxRunsPerHour)
	return trigger.NewListener(runner, cfg.Trigger.Subject, cfg.Trigger.Queue).Listen(ctx, nc)
}
