package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/climate-normals-etl/internal/adapter/sqlstore"
	"github.com/couchcryptid/climate-normals-etl/internal/corrections"
	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

var f = domain.Float

func writeLatin1(t *testing.T, path, content string) {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o600))
}

func sampleTable() domain.NormalsTable {
	return domain.NormalsTable{
		Months: []string{"ENERO", "FEBRERO"},
		Rows: []domain.NormalsRow{
			{Station: "JOSE", Variable: domain.VarTemperature, Values: []string{"15.0", "S/D"}},
		},
	}
}

func TestValidateRowCount(t *testing.T) {
	assert.True(t, validateRowCount(sampleTable(), 2).passed())
	assert.False(t, validateRowCount(sampleTable(), 1).passed())
}

func TestValidateReshape(t *testing.T) {
	stored := []domain.JoinedRecord{
		{ClimateRecord: domain.ClimateRecord{Station: "JOSE", Variable: domain.VarTemperature, Month: "ENERO", Value: f(15)}},
		{ClimateRecord: domain.ClimateRecord{Station: "JOSE", Variable: domain.VarTemperature, Month: "FEBRERO"}},
	}
	assert.True(t, validateReshape(sampleTable(), stored).passed())

	stored[1].Value = f(0)
	p := validateReshape(sampleTable(), stored)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "value 0, want null")

	stored[0].Station = "José"
	assert.Len(t, validateReshape(sampleTable(), stored).errors, 3)
}

func TestValidateCoordinates(t *testing.T) {
	catalogue := []domain.StationLocation{
		{Name: "JOSE", Lat: f(-10), Lon: f(-60)},
		{Name: "JOSE", Lat: f(1), Lon: f(1)},
	}
	fixes := []domain.Correction{{Station: "BUENOS AIRES", Lat: -34.61315, Lon: -58.37723}}
	stored := []domain.JoinedRecord{
		{ClimateRecord: domain.ClimateRecord{Station: "JOSE"}, Lat: f(-10), Lon: f(-60)},
		{ClimateRecord: domain.ClimateRecord{Station: "BUENOS AIRES"}, Lat: f(-34.61315), Lon: f(-58.37723)},
		{ClimateRecord: domain.ClimateRecord{Station: "NOWHERE"}},
	}
	assert.True(t, validateCoordinates(catalogue, fixes, stored).passed())

	stored[2].Lat = f(3)
	assert.False(t, validateCoordinates(catalogue, fixes, stored).passed())
}

func TestValidateCorrections(t *testing.T) {
	fixes := []domain.Correction{{Station: "BUENOS AIRES", Lat: -34.61315, Lon: -58.37723}}
	stored := []domain.JoinedRecord{
		{ClimateRecord: domain.ClimateRecord{Station: "BUENOS AIRES"}},
	}
	p := validateCorrections(fixes, stored)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "(null, null)")

	stored[0].Lat, stored[0].Lon = f(-34.61315), f(-58.37723)
	assert.True(t, validateCorrections(fixes, stored).passed())
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	o := options{
		climate:  filepath.Join(dir, "normales.csv"),
		stations: filepath.Join(dir, "estaciones.txt"),
		driver:   sqlstore.DriverSQLite,
		dsn:      filepath.Join(dir, "clima.db"),
		table:    "datos_climaticos",
	}
	writeLatin1(t, o.climate, "ESTACIÓN;VALOR MEDIO DE;ENERO\nJosé;TEMPERATURA (°C);15.0\nBuenos Aires;TEMPERATURA (°C);24.6\n")
	writeLatin1(t, o.stations, "NOMBRE,LATITUD,LONGITUD\nJOSE,-10,-60\n")

	store, err := sqlstore.Open(ctx, o.driver, o.dsn, o.table, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	joined := domain.Join(domain.Reshape(domain.NormalsTable{
		Months: []string{"ENERO"},
		Rows: []domain.NormalsRow{
			{Station: "JOSE", Variable: domain.VarTemperature, Values: []string{"15.0"}},
			{Station: "BUENOS AIRES", Variable: domain.VarTemperature, Values: []string{"24.6"}},
		},
	}), []domain.StationLocation{{Name: "JOSE", Lat: f(-10), Lon: f(-60)}})
	require.NoError(t, store.Replace(ctx, joined.Records))

	var out bytes.Buffer
	assert.Equal(t, 1, run(ctx, o, &out), "corrections not applied yet")
	assert.Contains(t, out.String(), "Coordinate corrections")
	assert.Contains(t, out.String(), "Validation FAILED.")

	_, err = store.ApplyCorrections(ctx, corrections.Default())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out.Reset()
	assert.Equal(t, 0, run(ctx, o, &out), out.String())
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_MissingInput(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), options{climate: "/nonexistent/a.csv", stations: "/nonexistent/b.txt"}, &out)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL")
}
