package display

import (
	"strconv"

	"github.com/pterm/pterm"

	"github.com/rbb-data/cpisync/cpi"
)

// ObservationRows returns the table data for observations, header first.
// Missing values render as "null", matching what the store receives.
func ObservationRows(observations []cpi.Observation) pterm.TableData {
	data := pterm.TableData{{"ID", "Name", "Period", "Value"}}
	for _, o := range observations {
		value := "null"
		if o.Value != nil {
			value = strconv.FormatFloat(*o.Value, 'f', -1, 64)
		}
		data = append(data, []string{o.ID, o.Name, o.Period().String(), value})
	}
	return data
}

// ObservationTable prints observations as a boxed table.
func ObservationTable(observations []cpi.Observation) error {
	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(ObservationRows(observations)).
		Render()
}

// ItemRows returns the table data for a catalog, header first.
func ItemRows(ids []cpi.ItemID) pterm.TableData {
	data := pterm.TableData{{"#", "Item"}}
	for i, id := range ids {
		data = append(data, []string{strconv.Itoa(i + 1), string(id)})
	}
	return data
}

// ItemTable prints a catalog as a table.
func ItemTable(ids []cpi.ItemID) error {
	return pterm.DefaultTable.
		WithHasHeader().
		WithData(ItemRows(ids)).
		Render()
}
