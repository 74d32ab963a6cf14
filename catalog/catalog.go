// Package catalog loads the basket items requested from the source service.
package catalog

import (
	"bufio"
	"os"
	"strings"

	"github.com/rbb-data/cpisync/cpi"
	"github.com/rbb-data/cpisync/errors"
)

// Load reads one item ID per line from path. Lines are whitespace-trimmed,
// blank lines skipped and duplicates dropped keeping the first occurrence.
func Load(path string) ([]cpi.ItemID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open item list %s", path)
	}
	defer f.Close()

	seen := make(map[cpi.ItemID]bool)
	var ids []cpi.ItemID

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := cpi.ItemID(strings.TrimSpace(scanner.Text()))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read item list %s", path)
	}

	if len(ids) == 0 {
		return nil, errors.WithHint(
			errors.Newf("item list %s is empty", path),
			"add one basket code (e.g. CC13-0111101100) per line")
	}

	return ids, nil
}

// Join renders ids as the comma-separated classifying key the source expects.
func Join(ids []cpi.ItemID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
