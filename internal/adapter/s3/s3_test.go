package s3

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		baseDir  string
		file     string
		expected string
	}{
		{"report at base", "/srv/clima", "/srv/clima/dashboard_climatico.html", "reports/run-1/dashboard_climatico.html"},
		{"map below base", "/srv/clima", "/srv/clima/mapas/mapa_máxima_ENERO.html", "reports/run-1/mapas/mapa_máxima_ENERO.html"},
		{"outside base", "/srv/clima", "/tmp/other.html", "reports/run-1/other.html"},
		{"no base", "", "/tmp/mapas/x.html", "reports/run-1/x.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, objectKey("reports", "run-1", tt.baseDir, tt.file))
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", contentType("a/B.HTML"))
	assert.Equal(t, "application/octet-stream", contentType("a/b.prom"))
}

func TestNewUploader(t *testing.T) {
	u, err := NewUploader("localhost:9000", "minio", "minio123", "clima", "reports", false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "s3", u.Name())

	_, err = NewUploader("localhost:9000/bucket/path", "a", "b", "c", "", false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
