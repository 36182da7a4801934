package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("visible", "rows", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "visible", line["msg"])
	assert.Equal(t, "climate-etl", line["service"])
	assert.InDelta(t, 3, line["rows"], 0)
}

func TestNewLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "DEBUG", "text")

	logger.Debug("details", "stage", "join")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "stage=join")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.RowsRead.WithLabelValues("climate").Set(4)
	m.RowsCorrected.Set(2)
	m.ExportErrors.WithLabelValues("kafka").Inc()

	assert.InDelta(t, 2, testutil.ToFloat64(m.RowsCorrected), 0)

	path := filepath.Join(t.TempDir(), "climate_etl.prom")
	require.NoError(t, m.WriteTextfile(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), `climate_etl_rows_read{source="climate"} 4`)
	assert.Contains(t, string(body), `climate_etl_export_errors_total{exporter="kafka"} 1`)
}

func TestMetricsWriteTextfile_EmptyPath(t *testing.T) {
	require.NoError(t, NewMetricsForTesting().WriteTextfile(""))
}
