// Command validate checks a finished ETL run against its inputs: the stored
// table must hold one row per (station, variable, month), station names must
// be normalized, coordinates must come from the catalogue and every
// correction must be in place.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -climate "datasets/ESTADISTICAS CLIMATICAS NORMALES.CSV" \
//	  -stations "datasets/ESTACIONES METEOROLOGICAS.TXT" \
//	  -dsn clima.db
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/couchcryptid/climate-normals-etl/internal/adapter/source"
	"github.com/couchcryptid/climate-normals-etl/internal/adapter/sqlstore"
	"github.com/couchcryptid/climate-normals-etl/internal/corrections"
	"github.com/couchcryptid/climate-normals-etl/internal/domain"
)

const coordTolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	climate, stations  string
	driver, dsn, table string
	correctionsPath    string
}

func main() {
	var o options
	flag.StringVar(&o.climate, "climate", "", "path to the climate normals file")
	flag.StringVar(&o.stations, "stations", "", "path to the station catalogue")
	flag.StringVar(&o.driver, "driver", sqlstore.DriverSQLite, "database/sql driver (sqlite or pgx)")
	flag.StringVar(&o.dsn, "dsn", "clima.db", "database DSN")
	flag.StringVar(&o.table, "table", "datos_climaticos", "table name")
	flag.StringVar(&o.correctionsPath, "corrections", "", "corrections YAML (default: embedded list)")
	flag.Parse()

	if o.climate == "" || o.stations == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(context.Background(), o, os.Stdout))
}

func run(ctx context.Context, o options, out io.Writer) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fmt.Fprintln(out, "=== Climate Table Validation ===")
	fmt.Fprintln(out)

	files := source.NewFiles(o.climate, o.stations, logger)
	if err := files.CheckInputs(); err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	table, err := files.ExtractClimate(ctx)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	catalogue, err := files.ExtractStations(ctx)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	fixes, err := corrections.Load(o.correctionsPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load corrections: %v\n", err)
		return 1
	}

	store, err := sqlstore.Open(ctx, o.driver, o.dsn, o.table, logger)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	defer store.Close()
	count, err := store.Count(ctx)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	stored, err := store.LoadAll(ctx)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRowCount(table, count),
		validateReshape(table, stored),
		validateCoordinates(catalogue, fixes, stored),
		validateCorrections(fixes, stored),
	}
	return report(out, phases, len(table.Rows), len(table.Months), len(stored))
}

func report(out io.Writer, phases []*phase, rows, months, stored int) int {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d input rows x %d months, %d stored\n", rows, months, stored)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateRowCount(table domain.NormalsTable, count int) *phase {
	p := &phase{name: "Row count (rows x months)"}
	if want := len(table.Rows) * len(table.Months); count != want {
		p.errorf("stored %d rows, want %d", count, want)
	}
	return p
}

// validateReshape compares the stored rows, in insertion order, with a
// fresh reshape of the input.
func validateReshape(table domain.NormalsTable, stored []domain.JoinedRecord) *phase {
	p := &phase{name: "Reshape parity and normalized names"}
	want := domain.Reshape(table)
	for i := 0; i < len(want) && i < len(stored); i++ {
		w, got := want[i], stored[i]
		if got.Station != domain.Normalize(got.Station) {
			p.errorf("row %d: station %q is not normalized", i+1, got.Station)
		}
		if got.Station != w.Station || got.Variable != w.Variable || got.Month != w.Month {
			p.errorf("row %d: got (%s, %s, %s), want (%s, %s, %s)",
				i+1, got.Station, got.Variable, got.Month, w.Station, w.Variable, w.Month)
			continue
		}
		if !sameValue(got.Value, w.Value) {
			p.errorf("row %d: %s %s %s value %s, want %s",
				i+1, got.Station, got.Variable, got.Month, show(got.Value), show(w.Value))
		}
	}
	return p
}

// validateCoordinates checks that uncorrected rows carry the coordinates of
// the first catalogue entry for their station, or none when unmatched.
func validateCoordinates(catalogue []domain.StationLocation, fixes []domain.Correction, stored []domain.JoinedRecord) *phase {
	p := &phase{name: "Coordinates from catalogue"}
	corrected := make(map[string]bool, len(fixes))
	for _, c := range fixes {
		corrected[c.Station] = true
	}
	index := make(map[string]domain.StationLocation, len(catalogue))
	for _, loc := range catalogue {
		if _, dup := index[loc.Name]; !dup {
			index[loc.Name] = loc
		}
	}

	for i, r := range stored {
		if corrected[r.Station] {
			continue
		}
		loc, ok := index[r.Station]
		if !ok {
			if r.Lat != nil || r.Lon != nil {
				p.errorf("row %d: unmatched station %s has coordinates", i+1, r.Station)
			}
			continue
		}
		if !sameValue(r.Lat, loc.Lat) || !sameValue(r.Lon, loc.Lon) {
			p.errorf("row %d: %s at (%s, %s), catalogue (%s, %s)",
				i+1, r.Station, show(r.Lat), show(r.Lon), show(loc.Lat), show(loc.Lon))
		}
	}
	return p
}

func validateCorrections(fixes []domain.Correction, stored []domain.JoinedRecord) *phase {
	p := &phase{name: "Coordinate corrections"}
	for i, r := range stored {
		for _, c := range fixes {
			if r.Station != c.Station {
				continue
			}
			if !sameValue(r.Lat, domain.Float(c.Lat)) || !sameValue(r.Lon, domain.Float(c.Lon)) {
				p.errorf("row %d: %s at (%s, %s), want (%g, %g)",
					i+1, r.Station, show(r.Lat), show(r.Lon), c.Lat, c.Lon)
			}
		}
	}
	return p
}

func sameValue(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return math.Abs(*a-*b) <= coordTolerance
}

func show(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%g", *v)
}
