// Command extractor turns structured product termsheets into rows of the
// investment database workbook.
//
// Usage:
//
//	extractor process <file>...   extract the given documents and append rows
//	extractor classify <file>     print the detected issuer for a document
//	extractor serve               run the diagnostics HTTP API
//	extractor watch               sweep the inbox directory on a schedule
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Verxtics/termsheet-extractor/internal/docsource"
	"github.com/Verxtics/termsheet-extractor/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: extractor <process|classify|serve|watch> [args]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := InitDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.Cleanup()

	switch os.Args[1] {
	case "process":
		err = runProcess(ctx, deps, os.Args[2:])
	case "classify":
		err = runClassify(ctx, deps, os.Args[2:])
	case "serve":
		err = runServe(ctx, deps)
	case "watch":
		err = runWatch(ctx, deps)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", slog.Any("error", err))
		deps.Cleanup()
		os.Exit(1)
	}
}

// runProcess extracts every named document and appends one row each.
func runProcess(ctx context.Context, deps *Dependencies, paths []string) error {
	if len(paths) == 0 {
		return errors.New("process: at least one document path is required")
	}

	failed := 0
	for _, path := range paths {
		reader, err := docsource.ForFile(path, deps.JSONReader, deps.PDFReader)
		if err != nil {
			deps.Logger.Warn("unsupported document", slog.String("path", path))
			failed++
			continue
		}

		doc, err := reader.Read(ctx, path)
		if err != nil {
			deps.Logger.Warn("failed to read document",
				slog.String("path", path),
				slog.Any("error", err),
			)
			failed++
			continue
		}

		res, err := deps.Pipeline.Run(ctx, doc)
		if err != nil {
			deps.Logger.Warn("failed to process document",
				slog.String("path", path),
				slog.Any("error", err),
			)
			failed++
			continue
		}

		fmt.Printf("%s\t%s\t%s\n", path, res.IssuerKey, res.RunID)
	}

	if failed > 0 {
		return fmt.Errorf("process: %d of %d documents failed", failed, len(paths))
	}
	return nil
}

// runClassify prints the detected issuer key without touching the sink.
func runClassify(ctx context.Context, deps *Dependencies, paths []string) error {
	if len(paths) != 1 {
		return errors.New("classify: exactly one document path is required")
	}

	reader, err := docsource.ForFile(paths[0], deps.JSONReader, deps.PDFReader)
	if err != nil {
		return err
	}
	doc, err := reader.Read(ctx, paths[0])
	if err != nil {
		return err
	}

	fmt.Println(deps.Pipeline.Classify(doc.Text))
	return nil
}

// runServe blocks on the HTTP API until the process is signalled.
func runServe(ctx context.Context, deps *Dependencies) error {
	addr := fmt.Sprintf("%s:%d", deps.Config.Server.Host, deps.Config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           deps.Server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	deps.Logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runWatch sweeps the inbox once, then keeps sweeping on the configured
// schedule until the process is signalled.
func runWatch(ctx context.Context, deps *Dependencies) error {
	deps.Watcher.Sweep(ctx)

	if err := deps.Watcher.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	<-deps.Watcher.Stop().Done()
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
