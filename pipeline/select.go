package pipeline

import "github.com/rbb-data/cpisync/cpi"

// Select returns the observations whose period is at or after next, in
// input order. Payloads are scoped to next.Year, so for them this is
// exactly month >= next.Month; observations from earlier years are never
// selected.
func Select(observations []cpi.Observation, next cpi.Cursor) []cpi.Observation {
	selected := make([]cpi.Observation, 0, len(observations))
	for _, o := range observations {
		if o.Period().Before(next) {
			continue
		}
		selected = append(selected, o)
	}
	return selected
}
