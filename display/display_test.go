package display

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbb-data/cpisync/cpi"
)

func TestObservationRows(t *testing.T) {
	v := 101.3
	rows := ObservationRows([]cpi.Observation{
		{ID: "CC13-01", Name: "Brot", Year: 2023, Month: 6, Value: &v},
		{ID: "CC13-02", Name: "Milch", Year: 2023, Month: 7},
	})

	assert.Equal(t, pterm.TableData{
		{"ID", "Name", "Period", "Value"},
		{"CC13-01", "Brot", "2023-06", "101.3"},
		{"CC13-02", "Milch", "2023-07", "null"},
	}, rows)
}

func TestItemRows(t *testing.T) {
	rows := ItemRows([]cpi.ItemID{"CC13-01", "CC13-02"})
	assert.Equal(t, []string{"2", "CC13-02"}, rows[2])
	assert.Len(t, rows, 3)
}

func TestShouldOutputJSON(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().Bool("json", false, "")
	child := &cobra.Command{Use: "child"}
	root.AddCommand(child)

	assert.False(t, ShouldOutputJSON(child))
	assert.False(t, ShouldOutputJSON(nil))

	require.NoError(t, root.PersistentFlags().Set("json", "true"))
	assert.True(t, ShouldOutputJSON(child))
}

func TestShouldOutputJSONLocalFlagWins(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().Bool("json", true, "")
	child := &cobra.Command{Use: "child"}
	child.Flags().Bool("json", false, "")
	root.AddCommand(child)

	require.NoError(t, child.Flags().Set("json", "false"))
	assert.False(t, ShouldOutputJSON(child))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]int{"count": 3}))
	assert.Equal(t, "{\n  \"count\": 3\n}\n", buf.String())
}
