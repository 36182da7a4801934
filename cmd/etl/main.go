package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/climate-normals-etl/internal/adapter/kafka"
	"github.com/couchcryptid/climate-normals-etl/internal/adapter/s3"
	"github.com/couchcryptid/climate-normals-etl/internal/adapter/source"
	"github.com/couchcryptid/climate-normals-etl/internal/adapter/sqlstore"
	"github.com/couchcryptid/climate-normals-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/climate-normals-etl/internal/config"
	"github.com/couchcryptid/climate-normals-etl/internal/corrections"
	"github.com/couchcryptid/climate-normals-etl/internal/observability"
	"github.com/couchcryptid/climate-normals-etl/internal/pipeline"
	"github.com/couchcryptid/climate-normals-etl/internal/report"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	runID := uuid.NewString()
	logger.Info("configuration loaded", "run_id", runID, "config", cfg)

	fixes, err := corrections.Load(cfg.CorrectionsPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	openStore := func(ctx context.Context) (pipeline.Store, error) {
		return sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN, cfg.DBTable, logger)
	}
	reporter := report.New(report.Options{
		ReportPath: cfg.ReportPath,
		MapsDir:    cfg.MapsDir,
		PlotlyURL:  cfg.PlotlyURL,
	}, clock, logger)

	var opts []pipeline.Option
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, runID, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		opts = append(opts, pipeline.WithExporters(writer))
	}
	if cfg.XLSXPath != "" {
		opts = append(opts, pipeline.WithExporters(xlsx.NewExporter(cfg.XLSXPath, cfg.DBTable, logger)))
	}
	if cfg.S3Enabled() {
		uploader, err := s3.NewUploader(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Prefix, cfg.S3UseSSL, logger)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithArtifactSinks(cfg.BaseDir, uploader))
	}

	p := pipeline.New(
		source.NewFiles(cfg.ClimatePath, cfg.StationsPath, logger),
		openStore, fixes, reporter, clock, logger, metrics, opts...,
	)
	_, runErr := p.Run(ctx, runID)

	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Error("write metrics textfile", "error", err, "path", cfg.MetricsFile)
	}
	return runErr
}
