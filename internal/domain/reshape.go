package domain

import (
	"math"
	"strconv"
	"strings"
)

// Reshape unpivots the wide table into one record per (row, month column),
// row-major. Identifier fields are copied verbatim. No aggregation happens:
// len(result) == len(t.Rows) * len(t.Months).
func Reshape(t NormalsTable) []ClimateRecord {
	out := make([]ClimateRecord, 0, len(t.Rows)*len(t.Months))
	for _, row := range t.Rows {
		for i, month := range t.Months {
			var raw string
			if i < len(row.Values) {
				raw = row.Values[i]
			}
			out = append(out, ClimateRecord{
				Station:  row.Station,
				Variable: row.Variable,
				Month:    month,
				Value:    ParseValue(raw),
			})
		}
	}
	return out
}

// ParseValue parses a decimal string, returning nil when it is not a finite
// number.
func ParseValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
