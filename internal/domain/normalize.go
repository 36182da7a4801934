package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// accentReplacer covers exactly the marks found in station names that differ
// between the two source files. It is not a general accent stripper.
var accentReplacer = strings.NewReplacer(
	"Á", "A",
	"É", "E",
	"Í", "I",
	"Ó", "O",
	"Ú", "U",
	"Ñ", "N",
)

// Normalize returns the join key form of a station name: uppercased, trimmed
// and with Á, É, Í, Ó, Ú, Ñ replaced by A, E, I, O, U, N.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	return accentReplacer.Replace(NormalizeHeader(s))
}

// NormalizeHeader trims and uppercases a column label, keeping accents.
func NormalizeHeader(s string) string {
	// A Caser is stateful, so one is created per call.
	return strings.TrimSpace(cases.Upper(language.Und).String(s))
}
