// Package watch runs the extraction pipeline over an inbox directory on
// a cron schedule, archiving each document after it is processed.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Verxtics/termsheet-extractor/internal/docsource"
	"github.com/Verxtics/termsheet-extractor/internal/pipeline"
	"github.com/Verxtics/termsheet-extractor/pkg/archive"
)

const sweepTimeout = 30 * time.Minute

// Watcher periodically sweeps the inbox directory and feeds every
// readable document through the pipeline.
type Watcher struct {
	cron    *cron.Cron
	pipe    *pipeline.Pipeline
	archive *archive.Archive
	json    *docsource.JSONReader
	pdf     *docsource.PDFReader
	dir     string
	spec    string
	workers int
	logger  *slog.Logger

	mu sync.Mutex // one sweep at a time
}

// New creates a watcher over dir. spec is a cron expression accepted by
// robfig/cron, including descriptors such as "@every 1m".
func New(pipe *pipeline.Pipeline, arc *archive.Archive, json *docsource.JSONReader, pdf *docsource.PDFReader, dir, spec string, workers int, logger *slog.Logger) *Watcher {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	if workers < 1 {
		workers = 1
	}

	return &Watcher{
		cron:    c,
		pipe:    pipe,
		archive: arc,
		json:    json,
		pdf:     pdf,
		dir:     dir,
		spec:    spec,
		workers: workers,
		logger:  logger,
	}
}

// Start begins the scheduled sweeps.
func (w *Watcher) Start() error {
	_, err := w.cron.AddFunc(w.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		w.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("inbox watcher started",
		slog.String("dir", w.dir),
		slog.String("schedule", w.spec),
	)
	return nil
}

// Stop gracefully stops the scheduler. The returned context is done
// once any in-flight sweep has finished.
func (w *Watcher) Stop() context.Context {
	w.logger.Info("inbox watcher stopping")
	return w.cron.Stop()
}

// Sweep processes every readable document currently in the inbox and
// returns the processed and failed counts. Unsupported files are left
// in place.
func (w *Watcher) Sweep(ctx context.Context) (processed, failed int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Error("failed to list inbox", slog.Any("error", err))
		return 0, 0
	}

	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, w.workers)
		countMu sync.Mutex
	)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())

		reader, err := docsource.ForFile(path, w.json, w.pdf)
		if err != nil {
			w.logger.Debug("skipping unsupported file", slog.String("path", path))
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			ok := w.process(ctx, reader, path)

			countMu.Lock()
			if ok {
				processed++
			} else {
				failed++
			}
			countMu.Unlock()
		}()
	}
	wg.Wait()

	if processed > 0 || failed > 0 {
		w.logger.Info("inbox sweep completed",
			slog.Int("processed", processed),
			slog.Int("failed", failed),
		)
	}
	return processed, failed
}

func (w *Watcher) process(ctx context.Context, reader docsource.Reader, path string) bool {
	doc, err := reader.Read(ctx, path)
	if err != nil {
		w.logger.Warn("failed to read document",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return false
	}

	res, err := w.pipe.Run(ctx, doc)
	if err != nil {
		w.logger.Warn("failed to process document",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return false
	}

	// The row is appended at this point; an archive failure leaves the
	// file in the inbox, where the next sweep would append it again.
	if _, err := w.archive.Store(ctx, path, res.IssuerKey, res.RunID); err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.Error("failed to archive document",
				slog.String("path", path),
				slog.Any("error", err),
			)
		}
		return false
	}
	return true
}
