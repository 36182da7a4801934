// Package source reads the Latin-1 delimited input files into domain tables.
package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
)

// Column labels after header normalization.
const (
	ColStation  = "ESTACIÓN"
	ColVariable = "VALOR MEDIO DE"
	ColName     = "NOMBRE"
	ColLat      = "LATITUD"
	ColLon      = "LONGITUD"
)

// ErrMissingInput is wrapped by the errors returned when an input file does
// not exist.
var ErrMissingInput = errors.New("input file not found")

// Files reads the climate normals and station catalogue from disk.
// It implements pipeline.Extractor.
type Files struct {
	climatePath  string
	stationsPath string
	logger       *slog.Logger
}

// NewFiles creates a Files source for the two input paths.
func NewFiles(climatePath, stationsPath string, logger *slog.Logger) *Files {
	return &Files{climatePath: climatePath, stationsPath: stationsPath, logger: logger}
}

// CheckInputs fails fast when either input file is absent.
func (f *Files) CheckInputs() error {
	if err := requireFile(f.climatePath, "climate normals"); err != nil {
		return err
	}
	return requireFile(f.stationsPath, "station")
}

// ExtractClimate reads the ";" separated normals file. The station column is
// normalized; every column other than station and variable is a month.
func (f *Files) ExtractClimate(_ context.Context) (domain.NormalsTable, error) {
	df, err := readFrame(f.climatePath, ';')
	if err != nil {
		return domain.NormalsTable{}, fmt.Errorf("read climate normals: %w", err)
	}
	table, err := normalsFromFrame(df)
	if err != nil {
		return domain.NormalsTable{}, fmt.Errorf("read climate normals %s: %w", f.climatePath, err)
	}
	f.logger.Info("climate normals loaded", "path", f.climatePath, "rows", len(table.Rows), "months", len(table.Months))
	return table, nil
}

// ExtractStations reads the "," separated station catalogue. Names are
// normalized; unparsable coordinates become nil.
func (f *Files) ExtractStations(_ context.Context) ([]domain.StationLocation, error) {
	df, err := readFrame(f.stationsPath, ',')
	if err != nil {
		return nil, fmt.Errorf("read stations: %w", err)
	}
	stations, err := stationsFromFrame(df)
	if err != nil {
		return nil, fmt.Errorf("read stations %s: %w", f.stationsPath, err)
	}
	f.logger.Info("stations loaded", "path", f.stationsPath, "rows", len(stations))
	return stations, nil
}

func requireFile(path, what string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s file %q: %w", what, path, ErrMissingInput)
	}
	if err != nil {
		return fmt.Errorf("stat %s file %q: %w", what, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s file %q is a directory: %w", what, path, ErrMissingInput)
	}
	return nil
}

// readFrame decodes a Latin-1 file and loads it as an all-string frame.
func readFrame(path string, comma rune) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return dataframe.DataFrame{}, fmt.Errorf("%q: %w", path, ErrMissingInput)
	}
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer file.Close()
	return decodeFrame(charmap.ISO8859_1.NewDecoder().Reader(file), comma)
}

// decodeFrame loads delimited text as an all-string frame. A file holding
// only a header row yields a frame with those columns and no rows.
func decodeFrame(r io.Reader, comma rune) (dataframe.DataFrame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(comma),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err == nil {
		return df, nil
	}
	if !strings.Contains(df.Err.Error(), "empty DataFrame") {
		return dataframe.DataFrame{}, df.Err
	}
	return headerOnlyFrame(data, comma, df.Err)
}

// headerOnlyFrame builds an empty frame from the first record. loadErr is
// returned when there is no header either.
func headerOnlyFrame(data []byte, comma rune, loadErr error) (dataframe.DataFrame, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		return dataframe.DataFrame{}, loadErr
	}
	cols := make([]series.Series, len(header))
	for i, name := range header {
		cols[i] = series.New([]string{}, series.String, name)
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}

// columnsByHeader maps normalized header labels to the frame's own names.
func columnsByHeader(df dataframe.DataFrame) ([]string, map[string]string) {
	names := df.Names()
	headers := make([]string, len(names))
	byHeader := make(map[string]string, len(names))
	for i, name := range names {
		headers[i] = domain.NormalizeHeader(name)
		byHeader[headers[i]] = name
	}
	return headers, byHeader
}

func normalsFromFrame(df dataframe.DataFrame) (domain.NormalsTable, error) {
	headers, byHeader := columnsByHeader(df)
	stationCol, ok := byHeader[ColStation]
	if !ok {
		return domain.NormalsTable{}, fmt.Errorf("missing column %q", ColStation)
	}
	variableCol, ok := byHeader[ColVariable]
	if !ok {
		return domain.NormalsTable{}, fmt.Errorf("missing column %q", ColVariable)
	}

	var months [][]string
	var table domain.NormalsTable
	for i, h := range headers {
		if h == ColStation || h == ColVariable {
			continue
		}
		table.Months = append(table.Months, h)
		months = append(months, df.Col(df.Names()[i]).Records())
	}

	stations := df.Col(stationCol).Records()
	variables := df.Col(variableCol).Records()
	table.Rows = make([]domain.NormalsRow, df.Nrow())
	for r := range table.Rows {
		values := make([]string, len(months))
		for m := range months {
			values[m] = months[m][r]
		}
		table.Rows[r] = domain.NormalsRow{
			Station:  domain.Normalize(stations[r]),
			Variable: variables[r],
			Values:   values,
		}
	}
	return table, nil
}

func stationsFromFrame(df dataframe.DataFrame) ([]domain.StationLocation, error) {
	_, byHeader := columnsByHeader(df)
	cols := make(map[string][]string, 3)
	for _, want := range []string{ColName, ColLat, ColLon} {
		name, ok := byHeader[want]
		if !ok {
			return nil, fmt.Errorf("missing column %q", want)
		}
		cols[want] = df.Col(name).Records()
	}

	out := make([]domain.StationLocation, df.Nrow())
	for i := range out {
		out[i] = domain.StationLocation{
			Name: domain.Normalize(cols[ColName][i]),
			Lat:  domain.ParseValue(cols[ColLat][i]),
			Lon:  domain.ParseValue(cols[ColLon][i]),
		}
	}
	return out, nil
}
