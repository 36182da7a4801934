package report

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(station, variable, month string, value, lat, lon *float64) domain.JoinedRecord {
	return domain.JoinedRecord{
		ClimateRecord: domain.ClimateRecord{Station: station, Variable: variable, Month: month, Value: value},
		Lat:           lat,
		Lon:           lon,
	}
}

var f = domain.Float

func sampleRecords() []domain.JoinedRecord {
	return []domain.JoinedRecord{
		rec("JOSE", domain.VarTemperature, "FEBRERO", f(14), f(-10), f(-60)),
		rec("JOSE", domain.VarTemperature, "ENERO", f(16), f(-10), f(-60)),
		rec("BUENOS AIRES", domain.VarTemperature, "ENERO", f(24.6), f(-34.6), f(-58.4)),
		rec("BUENOS AIRES", domain.VarTemperature, "FEBRERO", nil, f(-34.6), f(-58.4)),
		rec("JOSE", domain.VarHumidity, "ENERO", f(70), f(-10), f(-60)),
		rec("JOSE", domain.VarMaxTemperature, "ENERO", f(30), f(-10), f(-60)),
		rec("LA QUIACA OBS.", domain.VarMinTemperature, "ENERO", f(-5), f(-22.1), f(-65.6)),
		rec("SIN COORDENADAS", domain.VarMaxTemperature, "FEBRERO", f(28), nil, nil),
	}
}

func TestMean(t *testing.T) {
	records := sampleRecords()

	v, ok := Mean(records, domain.VarTemperature)
	require.True(t, ok)
	assert.InDelta(t, (14+16+24.6)/3, v, 1e-9)

	v, ok = Mean(records, "humedad relativa (%)")
	require.True(t, ok)
	assert.InDelta(t, 70.0, v, 1e-9)
}

func TestMean_NoData(t *testing.T) {
	_, ok := Mean(nil, domain.VarTemperature)
	assert.False(t, ok)

	allNil := []domain.JoinedRecord{rec("A", domain.VarWindSpeed, "ENERO", nil, nil, nil)}
	v, ok := Mean(allNil, domain.VarWindSpeed)
	assert.False(t, ok)
	assert.False(t, math.IsNaN(v))
}

func TestKPIPanel(t *testing.T) {
	kpis := ComputeKPIs(sampleRecords())
	require.Len(t, kpis, 3)
	assert.True(t, kpis[0].OK)
	assert.True(t, kpis[1].OK)
	assert.False(t, kpis[2].OK, "no wind data in sample")

	fig := KPIPanel(kpis)

	require.Len(t, fig.Data, 3)
	wind := fig.Data[2].(IndicatorTrace)
	assert.Nil(t, wind.Value)
	assert.Contains(t, wind.Title.Text, "sin datos")
	assert.Equal(t, Domain{Row: 0, Column: 2}, wind.Domain)
	assert.Equal(t, &Grid{Rows: 1, Columns: 3}, fig.Layout.Grid)

	// nil values must encode as JSON null rather than failing on NaN.
	_, err := json.Marshal(fig)
	require.NoError(t, err)
}

func TestLineChart(t *testing.T) {
	fig := LineChart(sampleRecords(), domain.VarTemperature)

	require.Len(t, fig.Data, 2)
	jose := fig.Data[0].(LineTrace)
	assert.Equal(t, "JOSE", jose.Name)
	assert.Equal(t, []string{"ENERO", "FEBRERO"}, jose.X, "months in calendar order")
	assert.Equal(t, []float64{16, 14}, jose.Y)

	ba := fig.Data[1].(LineTrace)
	assert.Equal(t, "BUENOS AIRES", ba.Name)
	assert.Equal(t, []string{"ENERO"}, ba.X, "nil values dropped")
	assert.Equal(t, domain.VarTemperature, fig.Layout.Title.Text)
}

func TestLineChart_NoMatches(t *testing.T) {
	fig := LineChart(sampleRecords(), domain.VarWindSpeed)
	assert.Empty(t, fig.Data)

	b, err := json.Marshal(fig)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"data":[]`)

	frag, err := renderFragment(fig, "")
	require.NoError(t, err)
	assert.Regexp(t, `Plotly\.newPlot\("[0-9a-f-]+", \[\], \{`, string(frag))
	assert.NotContains(t, string(frag), "null, {")
}

func TestMapFigure(t *testing.T) {
	fig, ok := MapFigure(sampleRecords(), domain.AllMonths, domain.VarMaxTemperature)
	require.True(t, ok)

	require.Len(t, fig.Data, 1)
	trace := fig.Data[0].(ScatterMapTrace)
	assert.Equal(t, []string{"JOSE"}, trace.HoverText, "rows without coordinates dropped")
	assert.Equal(t, []float64{30}, trace.Marker.Color)
	assert.Equal(t, "Mapa de temperatura MÁXIMA - Todos", fig.Layout.Title.Text)
	assert.Equal(t, "open-street-map", fig.Layout.Map.Style)
}

func TestMapFigure_NegativeValuesSizedByMagnitude(t *testing.T) {
	records := []domain.JoinedRecord{
		rec("A", domain.VarMinTemperature, "JULIO", f(-8), f(-40), f(-70)),
		rec("B", domain.VarMinTemperature, "JULIO", f(4), f(-30), f(-60)),
	}

	fig, ok := MapFigure(records, "JULIO", domain.VarMinTemperature)
	require.True(t, ok)

	trace := fig.Data[0].(ScatterMapTrace)
	assert.Equal(t, []float64{8, 4}, trace.Marker.Size)
	assert.Equal(t, []float64{-8, 4}, trace.Marker.Color)
	assert.InDelta(t, 2*8.0/400, trace.Marker.SizeRef, 1e-12)
	assert.InDelta(t, -35.0, fig.Layout.Map.Center.Lat, 1e-9)
}

func TestMapFigure_Empty(t *testing.T) {
	_, ok := MapFigure(sampleRecords(), "MARZO", domain.VarMaxTemperature)
	assert.False(t, ok)

	_, ok = MapFigure(sampleRecords(), "FEBRERO", domain.VarMaxTemperature)
	assert.False(t, ok, "only row for FEBRERO lacks coordinates")
}

func TestMapFileName(t *testing.T) {
	assert.Equal(t, "mapa_máxima_ENERO.html", MapFileName(domain.VarMaxTemperature, "ENERO"))
	assert.Equal(t, "mapa_mínima_Todos.html", MapFileName(domain.VarMinTemperature, domain.AllMonths))
	assert.Equal(t, "mapa_máxima_PRIMER_TRIMESTRE.html", MapFileName(domain.VarMaxTemperature, "PRIMER TRIMESTRE"))
}

func TestMapMonths(t *testing.T) {
	assert.Equal(t, []string{domain.AllMonths, "ENERO", "FEBRERO"}, MapMonths(sampleRecords()))
}

func newTestReporter(t *testing.T) (*Reporter, Options) {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		ReportPath: filepath.Join(dir, "dashboard_climatico.html"),
		MapsDir:    filepath.Join(dir, "mapas"),
	}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(opts, clock, discardLogger()), opts
}

func TestWriteMonthlyMaps(t *testing.T) {
	r, opts := newTestReporter(t)

	files, err := r.WriteMonthlyMaps(context.Background(), sampleRecords())
	require.NoError(t, err)

	var names []string
	for _, p := range files {
		names = append(names, filepath.Base(p))
	}
	assert.ElementsMatch(t, []string{
		"mapa_máxima_Todos.html",
		"mapa_mínima_Todos.html",
		"mapa_máxima_ENERO.html",
		"mapa_mínima_ENERO.html",
	}, names)

	entries, err := os.ReadDir(opts.MapsDir)
	require.NoError(t, err)
	assert.Len(t, entries, len(files), "no file for empty (month, variable) pairs")

	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "<!DOCTYPE html>")
	assert.Contains(t, string(body), DefaultPlotlyURL)
}

func TestBuild(t *testing.T) {
	r, opts := newTestReporter(t)

	res, err := r.Build(context.Background(), sampleRecords(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, opts.ReportPath, res.ReportPath)
	assert.Len(t, res.KPIs, 3)
	assert.Equal(t, opts.ReportPath, res.Files()[0])

	body, err := os.ReadFile(opts.ReportPath)
	require.NoError(t, err)
	html := string(body)

	assert.Equal(t, 1, strings.Count(html, "<script charset=\"utf-8\" src="), "bootstrap only once")
	assert.Equal(t, 6, strings.Count(html, "Plotly.newPlot("), "kpi + 3 lines + 2 maps")
	assert.Contains(t, html, "2025-03-01T12:00:00Z")
	assert.Contains(t, html, "run-1")

	// Fragments appear in the fixed order.
	order := regexp.MustCompile(`"type":"(indicator|scatter|scattermap)"`).FindAllStringSubmatch(html, -1)
	var kinds []string
	for _, m := range order {
		if len(kinds) == 0 || kinds[len(kinds)-1] != m[1] {
			kinds = append(kinds, m[1])
		}
	}
	assert.Equal(t, []string{"indicator", "scatter", "scattermap"}, kinds)
	assert.Less(t, strings.Index(html, "TEMPERATURA (°C)"), strings.Index(html, "HUMEDAD RELATIVA"))
	assert.Less(t, strings.Index(html, "MÁXIMA - Todos"), strings.Index(html, "MÍNIMA - Todos"))
}

func TestBuild_CancelledContext(t *testing.T) {
	r, _ := newTestReporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Build(ctx, sampleRecords(), "run-1")
	require.ErrorIs(t, err, context.Canceled)
}
