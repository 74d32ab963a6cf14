package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rbb-data/cpisync/display"
	"github.com/rbb-data/cpisync/pipeline"
	"github.com/rbb-data/cpisync/trigger"
)

// SyncCmd runs the pipeline once
var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish months that are missing downstream",
	Long: `Run one incremental sync.

Asks the store for the most recently published month of the reference item,
downloads the consumer-price-index table for the following month's year
from GENESIS, and publishes every row from that month onwards.

Exits 0 when rows were published or nothing new was available, 1 on any
failure.

Examples:
  cpisync sync              # Publish new months
  cpisync sync --dry-run    # Show what would be published
  cpisync sync --json       # Print the run report as JSON`,
	RunE: runSync,
}

func init() {
	SyncCmd.Flags().Bool("dry-run", false, "Stop before publishing and print the selected rows")
	SyncCmd.Flags().BoolP("json", "j", false, "Output the run report as JSON")
}

func runSync(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	useJSON := display.ShouldOutputJSON(cmd)

	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	p, release, err := newPipeline(ctx, cfg, pipeline.WithDryRun(dryRun))
	if err != nil {
		return err
	}
	defer release()

	report, err := p.Run(ctx)
	if useJSON {
		if jerr := display.OutputJSON(trigger.NewResponse(report, err)); jerr != nil {
			return jerr
		}
		return err
	}
	if err != nil {
		return err
	}

	renderReport(report)
	return nil
}

func renderReport(report pipeline.Report) {
	switch report.Outcome {
	case pipeline.OutcomeNoNewData:
		pterm.Info.Printfln("No new data available (store is at %s)", report.Cursor)

	case pipeline.OutcomeDryRun:
		pterm.Warning.Println("DRY RUN MODE: nothing was published")
		pterm.Println()
		if err := display.ObservationTable(report.Observations); err != nil {
			pterm.Error.Printfln("Failed to render table: %v", err)
		}
		pterm.Println()
		pterm.Info.Printfln("%d of %d parsed rows from %s onwards would be published", report.Selected, report.Parsed, report.Next)

	case pipeline.OutcomePublished:
		pterm.Success.Printfln("Published %d rows from %s onwards", report.Published, report.Next)
	}
}
