package query

import (
	"time"
)

// Range is an inclusive numeric constraint. A nil bound leaves that side open.
type Range struct {
	Min *float64
	Max *float64
}

func Between(min, max float64) Range {
	return Range{Min: &min, Max: &max}
}

func AtLeast(min float64) Range {
	return Range{Min: &min}
}

func AtMost(max float64) Range {
	return Range{Max: &max}
}

func (r Range) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// Filter is the set of optional constraints accepted by Facade.Exoplanets.
// The zero value selects every column of every row.
type Filter struct {
	Columns []string

	DiscoveryMethod *string
	DiscoveryYear   *int
	OrbitalPeriod   Range
	HostStarVMag    Range
	PlanetRadius    Range
	HostStarTemp    Range

	OrderBy string
	// Limit caps the row count; zero means unbounded.
	Limit int
}

func String(value string) *string {
	return &value
}

func Int(value int) *int {
	return &value
}

func Float(value float64) *float64 {
	return &value
}

// Statement is SQL text plus the values bound to its placeholders.
type Statement struct {
	SQL  string
	Args []any
}

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

func (r Result) Len() int {
	return len(r.Rows)
}

// Records returns each row keyed by column label.
func (r Result) Records() []map[string]any {
	records := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		record := make(map[string]any, len(r.Columns))
		for i, column := range r.Columns {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

// Column returns the values of the named column, or false when the result
// does not contain it.
func (r Result) Column(name string) ([]any, bool) {
	index := -1
	for i, column := range r.Columns {
		if column == name {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, false
	}
	values := make([]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		values = append(values, row[index])
	}
	return values, true
}
