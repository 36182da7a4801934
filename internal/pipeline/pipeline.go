// Package pipeline runs the climate normals ETL once: extract both inputs,
// reshape and join, replace the stored table, apply coordinate corrections,
// read the table back and render the report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/observability"
	"github.com/couchcryptid/climate-normals-etl/internal/report"
	"github.com/jonboulle/clockwork"
)

// Extractor reads the two input tables.
type Extractor interface {
	CheckInputs() error
	ExtractClimate(ctx context.Context) (domain.NormalsTable, error)
	ExtractStations(ctx context.Context) ([]domain.StationLocation, error)
}

// Store is the persistent climate table.
type Store interface {
	Replace(ctx context.Context, records []domain.JoinedRecord) error
	ApplyCorrections(ctx context.Context, corrections []domain.Correction) (int64, error)
	LoadAll(ctx context.Context) ([]domain.JoinedRecord, error)
	Close() error
}

// StoreOpener opens a fresh connection to the store. The pipeline opens it
// twice: once to write and correct, once to read back.
type StoreOpener func(ctx context.Context) (Store, error)

// Reporter renders the read-back records.
type Reporter interface {
	Build(ctx context.Context, records []domain.JoinedRecord, runID string) (report.Result, error)
}

// Exporter publishes the read-back records somewhere besides the store.
type Exporter interface {
	Name() string
	Export(ctx context.Context, records []domain.JoinedRecord) error
}

// ArtifactSink receives the files written by the reporter.
type ArtifactSink interface {
	Name() string
	Upload(ctx context.Context, runID, baseDir string, files []string) error
}

// Summary describes a completed run.
type Summary struct {
	RunID         string
	ClimateRows   int
	Stations      int
	Records       int
	Unmatched     []string
	RowsCorrected int64
	StoredRecords int
	Report        report.Result
	FailedExports []string
}

// Option configures optional pipeline outputs.
type Option func(*Pipeline)

// WithExporters adds record exporters run after the report is written.
func WithExporters(exporters ...Exporter) Option {
	return func(p *Pipeline) { p.exporters = append(p.exporters, exporters...) }
}

// WithArtifactSinks adds sinks for the report files. Paths below baseDir
// keep their relative layout.
func WithArtifactSinks(baseDir string, sinks ...ArtifactSink) Option {
	return func(p *Pipeline) {
		p.artifactBase = baseDir
		p.sinks = append(p.sinks, sinks...)
	}
}

// Pipeline wires the stages of one run.
type Pipeline struct {
	extractor    Extractor
	openStore    StoreOpener
	corrections  []domain.Correction
	reporter     Reporter
	exporters    []Exporter
	sinks        []ArtifactSink
	artifactBase string
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, open StoreOpener, corrections []domain.Correction, r Reporter,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, opts ...Option,
) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		openStore:   open,
		corrections: corrections,
		reporter:    r,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every stage in order and stops at the first fatal error.
// Exporter and artifact sink failures are logged and counted but do not
// fail the run.
func (p *Pipeline) Run(ctx context.Context, runID string) (Summary, error) {
	sum := Summary{RunID: runID}
	logger := p.logger.With("run_id", runID)
	logger.Info("pipeline started", "corrections", len(p.corrections))
	p.metrics.RunSuccess.Set(0)

	if err := p.extractor.CheckInputs(); err != nil {
		return sum, err
	}

	var joined domain.JoinResult
	err := p.stage(logger, "extract", func() error {
		table, err := p.extractor.ExtractClimate(ctx)
		if err != nil {
			return err
		}
		stations, err := p.extractor.ExtractStations(ctx)
		if err != nil {
			return err
		}
		sum.ClimateRows = len(table.Rows)
		sum.Stations = len(stations)
		p.metrics.RowsRead.WithLabelValues("climate").Set(float64(len(table.Rows)))
		p.metrics.RowsRead.WithLabelValues("stations").Set(float64(len(stations)))

		records := domain.Reshape(table)
		p.metrics.RecordsReshaped.Set(float64(len(records)))
		joined = domain.Join(records, stations)
		return nil
	})
	if err != nil {
		return sum, err
	}

	sum.Records = len(joined.Records)
	sum.Unmatched = joined.Unmatched
	p.metrics.UnmatchedStations.Set(float64(len(joined.Unmatched)))
	p.metrics.DuplicateStations.Set(float64(joined.Duplicates))
	if joined.Duplicates > 0 {
		logger.Warn("duplicate station names in catalogue, first entry kept", "duplicates", joined.Duplicates)
	}
	if len(joined.Unmatched) > 0 {
		logger.Warn("stations without coordinates", "count", len(joined.Unmatched), "stations", joined.Unmatched)
	}

	err = p.stage(logger, "store", func() error {
		n, err := p.persist(ctx, joined.Records)
		sum.RowsCorrected = n
		return err
	})
	if err != nil {
		return sum, err
	}

	var stored []domain.JoinedRecord
	err = p.stage(logger, "read_back", func() error {
		var err error
		stored, err = p.readBack(ctx)
		return err
	})
	if err != nil {
		return sum, err
	}
	sum.StoredRecords = len(stored)

	err = p.stage(logger, "report", func() error {
		res, err := p.reporter.Build(ctx, stored, runID)
		sum.Report = res
		return err
	})
	if err != nil {
		return sum, fmt.Errorf("build report: %w", err)
	}
	p.metrics.MapsWritten.Set(float64(len(sum.Report.MapFiles)))

	sum.FailedExports = p.export(ctx, logger, runID, stored, sum.Report.Files())

	p.metrics.RunSuccess.Set(1)
	p.metrics.RunTimestamp.Set(float64(p.clock.Now().Unix()))
	logger.Info("pipeline finished",
		"records", sum.StoredRecords,
		"corrected", sum.RowsCorrected,
		"report", sum.Report.ReportPath,
		"maps", len(sum.Report.MapFiles),
	)
	return sum, nil
}

// persist replaces the stored table and applies the corrections against it.
func (p *Pipeline) persist(ctx context.Context, records []domain.JoinedRecord) (n int64, err error) {
	store, err := p.openStore(ctx)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer closeStore(store, &err)

	if err := store.Replace(ctx, records); err != nil {
		return 0, fmt.Errorf("replace table: %w", err)
	}
	p.metrics.RowsStored.Set(float64(len(records)))

	n, err = store.ApplyCorrections(ctx, p.corrections)
	if err != nil {
		return 0, fmt.Errorf("apply corrections: %w", err)
	}
	p.metrics.RowsCorrected.Set(float64(n))
	return n, nil
}

func (p *Pipeline) readBack(ctx context.Context) (records []domain.JoinedRecord, err error) {
	store, err := p.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer closeStore(store, &err)

	records, err = store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return records, nil
}

// closeStore closes s and reports the close error unless *err is already set.
func closeStore(s Store, err *error) {
	if cerr := s.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close store: %w", cerr)
	}
}

// export runs every exporter and sink and returns the names of those that
// failed.
func (p *Pipeline) export(ctx context.Context, logger *slog.Logger, runID string, records []domain.JoinedRecord, files []string) []string {
	var failed []string
	for _, e := range p.exporters {
		err := p.stage(logger, "export_"+e.Name(), func() error {
			return e.Export(ctx, records)
		})
		if err != nil {
			logger.Error("export failed", "exporter", e.Name(), "error", err)
			p.metrics.ExportErrors.WithLabelValues(e.Name()).Inc()
			failed = append(failed, e.Name())
		}
	}
	for _, s := range p.sinks {
		err := p.stage(logger, "upload_"+s.Name(), func() error {
			return s.Upload(ctx, runID, p.artifactBase, files)
		})
		if err != nil {
			logger.Error("artifact upload failed", "sink", s.Name(), "error", err)
			p.metrics.ExportErrors.WithLabelValues(s.Name()).Inc()
			failed = append(failed, s.Name())
		}
	}
	return failed
}

// stage times fn and records the duration whatever the outcome.
func (p *Pipeline) stage(logger *slog.Logger, name string, fn func() error) error {
	start := p.clock.Now()
	err := fn()
	elapsed := p.clock.Since(start)
	p.metrics.StageDuration.WithLabelValues(name).Set(elapsed.Seconds())
	logger.Debug("stage finished", "stage", name, "duration", elapsed, "ok", err == nil)
	return err
}
