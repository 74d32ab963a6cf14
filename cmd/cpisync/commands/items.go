package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rbb-data/cpisync/am"
	"github.com/rbb-data/cpisync/catalog"
	"github.com/rbb-data/cpisync/display"
)

// ItemsCmd prints the basket item catalog
var ItemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List the basket items that are queried",
	Long: `Print the deduplicated item IDs from items.path, in query order.

Examples:
  cpisync items
  cpisync items --file other_ids.txt --json`,
	RunE: runItems,
}

func init() {
	ItemsCmd.Flags().String("file", "", "Item list to read (default items.path)")
	ItemsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

func runItems(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		cfg, err := am.Load()
		if err != nil {
			return err
		}
		path = cfg.Items.Path
	}

	ids, err := catalog.Load(path)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(ids)
	}

	if err := display.ItemTable(ids); err != nil {
		return err
	}
	pterm.Info.Printfln("%d items from %s", len(ids), path)
	return nil
}
