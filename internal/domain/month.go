package domain

import (
	"slices"
	"strings"
)

// AllMonths selects every month when building maps.
const AllMonths = "Todos"

var calendar = []string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// MonthIndex returns the zero-based calendar position of a Spanish month
// label. "SETIEMBRE" is accepted as a spelling of September.
func MonthIndex(label string) (int, bool) {
	l := Normalize(label)
	if l == "SETIEMBRE" {
		return 8, true
	}
	i := slices.Index(calendar, l)
	return i, i >= 0
}

// SortMonths returns the distinct labels in calendar order. Labels that are
// not month names follow, in the order they were first seen.
func SortMonths(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	var known, unknown []string
	for _, l := range labels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		if _, ok := MonthIndex(l); ok {
			known = append(known, l)
		} else {
			unknown = append(unknown, l)
		}
	}
	slices.SortStableFunc(known, func(a, b string) int {
		ia, _ := MonthIndex(a)
		ib, _ := MonthIndex(b)
		return ia - ib
	})
	return append(known, unknown...)
}

// MonthFileLabel turns a month label into a file name fragment.
func MonthFileLabel(label string) string {
	return strings.ReplaceAll(label, " ", "_")
}
