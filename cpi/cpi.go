// Package cpi holds the canonical consumer-price-index records exchanged
// between the source service and the downstream store.
package cpi

import "fmt"

// Table is the downstream store table all observations belong to.
const Table = "consumer-price-index"

// ItemID identifies one basket component, e.g. "CC13-0111101100".
type ItemID string

// Cursor is a (year, month) period. As returned by the store it is the most
// recently published month for the reference item.
type Cursor struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Valid reports whether c names a real calendar month.
func (c Cursor) Valid() bool {
	return c.Year > 0 && c.Month >= 1 && c.Month <= 12
}

// Next returns the calendar month following c.
func (c Cursor) Next() Cursor {
	if c.Month == 12 {
		return Cursor{Year: c.Year + 1, Month: 1}
	}
	return Cursor{Year: c.Year, Month: c.Month + 1}
}

// Before reports whether c is strictly earlier than other.
func (c Cursor) Before(other Cursor) bool {
	if c.Year != other.Year {
		return c.Year < other.Year
	}
	return c.Month < other.Month
}

func (c Cursor) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, c.Month)
}

// Observation is one index value for one item in one month.
// A nil Value means the source marked the cell as unavailable.
type Observation struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Value *float64 `json:"value"`
}

// Period returns the month the observation belongs to.
func (o Observation) Period() Cursor {
	return Cursor{Year: o.Year, Month: o.Month}
}
