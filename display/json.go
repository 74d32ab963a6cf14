// Package display renders command results for the terminal or as JSON.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rbb-data/cpisync/errors"
)

// ShouldOutputJSON reports whether cmd should print JSON: an explicit
// --json flag wins, then the root's persistent --json flag.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}

	if cmd.Flags().Lookup("json") != nil && cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	if globalFlag, err := cmd.Root().PersistentFlags().GetBool("json"); err == nil && globalFlag {
		return true
	}
	return false
}

// MarshalJSON marshals v with two-space indentation.
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// OutputJSON prints v as JSON to stdout.
func OutputJSON(v interface{}) error {
	return WriteJSON(os.Stdout, v)
}

// WriteJSON writes v as JSON followed by a newline.
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
