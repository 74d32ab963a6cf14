package genesis

import "strings"

// months maps the German month labels used by the export to 1..12.
var months = map[string]int{
	"Januar":    1,
	"Februar":   2,
	"März":      3,
	"MÃ¤rz":     3,
	"Maerz":     3,
	"April":     4,
	"Mai":       5,
	"Juni":      6,
	"Juli":      7,
	"August":    8,
	"September": 9,
	"Oktober":   10,
	"November":  11,
	"Dezember":  12,
}

// MonthNumber returns the month number for a German month label.
func MonthNumber(label string) (int, bool) {
	m, ok := months[strings.TrimSpace(label)]
	return m, ok
}
