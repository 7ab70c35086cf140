package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Verxtics/termsheet-extractor/internal/api"
	"github.com/Verxtics/termsheet-extractor/internal/docsource"
	"github.com/Verxtics/termsheet-extractor/internal/pipeline"
	"github.com/Verxtics/termsheet-extractor/internal/profile"
	"github.com/Verxtics/termsheet-extractor/internal/schema"
	"github.com/Verxtics/termsheet-extractor/internal/sink"
	"github.com/Verxtics/termsheet-extractor/internal/watch"
	"github.com/Verxtics/termsheet-extractor/pkg/archive"
	"github.com/Verxtics/termsheet-extractor/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *prometheus.Registry

	Profiles   *profile.Registry
	JSONReader *docsource.JSONReader
	PDFReader  *docsource.PDFReader
	Sink       sink.Sink
	Pipeline   *pipeline.Pipeline
	Archive    *archive.Archive
	Watcher    *watch.Watcher
	Server     *api.Server

	pool *pgxpool.Pool
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	if err := deps.initSink(ctx); err != nil {
		return nil, fmt.Errorf("failed to init sink: %w", err)
	}

	if err := deps.initPipeline(); err != nil {
		return nil, fmt.Errorf("failed to init pipeline: %w", err)
	}

	if err := deps.initWatcher(); err != nil {
		return nil, fmt.Errorf("failed to init watcher: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

func (d *Dependencies) initMetrics() error {
	if !d.Config.Observability.MetricsEnabled {
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = reg
	return nil
}

// initSink opens the workbook and, when configured, mirrors every row
// into Postgres.
func (d *Dependencies) initSink(ctx context.Context) error {
	workbook, err := sink.OpenWorkbook(d.Config.Workbook.Path, schema.V1())
	if err != nil {
		return err
	}

	if !d.Config.Database.Enabled {
		d.Sink = workbook
		d.Logger.Info("workbook sink opened", slog.String("path", d.Config.Workbook.Path))
		return nil
	}

	pool, err := pgxpool.New(ctx, d.Config.Database.DSN())
	if err != nil {
		workbook.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	pg := sink.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		workbook.Close()
		return err
	}

	d.pool = pool
	d.Sink = sink.NewFanout(workbook, pg)
	d.Logger.Info("workbook sink opened with database mirror",
		slog.String("path", d.Config.Workbook.Path),
	)
	return nil
}

func (d *Dependencies) initPipeline() error {
	registry, err := profile.Builtin()
	if err != nil {
		return err
	}
	d.Profiles = registry

	d.JSONReader = docsource.NewJSONReader()
	d.PDFReader = docsource.NewPDFReader(d.Logger)

	var reg prometheus.Registerer
	if d.Metrics != nil {
		reg = d.Metrics
	}
	d.Pipeline = pipeline.New(registry, d.Sink, d.Logger, pipeline.NewMetrics(reg))
	d.Server = api.NewServer(d.Pipeline, d.Logger, d.Metrics,
		float64(d.Config.Server.RateLimitPerSecond))

	d.Logger.Info("pipeline initialized", slog.Int("profiles", len(registry.Keys())))
	return nil
}

func (d *Dependencies) initWatcher() error {
	arc, err := archive.New(d.Config.Inbox.ArchiveDir)
	if err != nil {
		return err
	}
	d.Archive = arc

	d.Watcher = watch.New(
		d.Pipeline,
		arc,
		d.JSONReader,
		d.PDFReader,
		d.Config.Inbox.Dir,
		d.Config.Inbox.Schedule,
		d.Config.Inbox.Workers,
		d.Logger,
	)
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Sink != nil {
		if err := d.Sink.Close(); err != nil {
			d.Logger.Error("failed to close sink", slog.Any("error", err))
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.Logger.Info("cleanup completed")
}
