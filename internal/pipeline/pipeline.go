// Package pipeline wires the extraction stages into one run per document:
// classify, extract, resolve assets, normalize, assemble, append. State flows
// strictly downstream; a run owns its fields and shares nothing but the sink.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Verxtics/termsheet-extractor/internal/assets"
	"github.com/Verxtics/termsheet-extractor/internal/classify"
	"github.com/Verxtics/termsheet-extractor/internal/docsource"
	"github.com/Verxtics/termsheet-extractor/internal/extract"
	"github.com/Verxtics/termsheet-extractor/internal/normalize"
	"github.com/Verxtics/termsheet-extractor/internal/profile"
	"github.com/Verxtics/termsheet-extractor/internal/schema"
	"github.com/Verxtics/termsheet-extractor/internal/sink"
)

// Pipeline runs documents through the extraction stages and appends the
// assembled rows to the sink. Safe for concurrent Run calls; the sink
// serializes the only shared write.
type Pipeline struct {
	registry   *profile.Registry
	classifier *classify.Classifier
	extractor  *extract.Extractor
	resolver   *assets.Resolver
	assembler  *schema.Assembler
	out        sink.Sink
	log        *slog.Logger
	metrics    *Metrics
}

// New assembles a pipeline over the given registry and sink. Metrics may be
// nil when no diagnostics surface is running.
func New(registry *profile.Registry, out sink.Sink, log *slog.Logger, metrics *Metrics) *Pipeline {
	return &Pipeline{
		registry:   registry,
		classifier: classify.New(registry),
		extractor:  extract.New(),
		resolver:   assets.NewResolver(),
		assembler:  schema.NewAssembler(schema.V1(), registry),
		out:        out,
		log:        log,
		metrics:    metrics,
	}
}

// Result is the outcome of one successful document run.
type Result struct {
	RunID     uuid.UUID
	IssuerKey string
	Fields    extract.Fields
	Row       schema.Row
}

type runConfig struct {
	issuerOverride string
	skipAppend     bool
}

// Option adjusts one run.
type Option func(*runConfig)

// WithIssuer forces the issuer instead of classifying, for operator
// overrides.
func WithIssuer(key string) Option {
	return func(c *runConfig) { c.issuerOverride = key }
}

// DryRun assembles the row without appending it to the sink.
func DryRun() Option {
	return func(c *runConfig) { c.skipAppend = true }
}

// Run processes one document end to end.
func (p *Pipeline) Run(ctx context.Context, doc *docsource.Document, opts ...Option) (Result, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	runID := uuid.New()

	issuerKey := cfg.issuerOverride
	if issuerKey == "" {
		issuerKey = p.classifier.Classify(doc.Text)
	}
	prof, ok := p.registry.Get(issuerKey)
	if !ok {
		p.metrics.observeRun("unknown", "error", time.Since(start).Seconds())
		return Result{}, fmt.Errorf("unknown issuer key %q", issuerKey)
	}

	fields := p.extractor.Extract(doc.Text, doc.Tables, prof)
	fields.Source = doc.Source
	fields.Underlyings = p.resolver.Resolve(doc.Text, doc.Tables, basketRefs(prof))

	normalize.Apply(&fields)
	row := p.assembler.Assemble(&fields)

	if !cfg.skipAppend {
		if err := p.out.Append(ctx, row); err != nil {
			p.metrics.observeRun(issuerKey, "error", time.Since(start).Seconds())
			return Result{}, fmt.Errorf("append row for %s: %w", doc.Source, err)
		}
		p.metrics.rowAppended()
	}

	p.metrics.observeRun(issuerKey, "ok", time.Since(start).Seconds())
	p.log.Info("document processed",
		slog.String("run_id", runID.String()),
		slog.String("source", doc.Source),
		slog.String("issuer", issuerKey),
		slog.String("product_type", fields.ProductType),
		slog.Bool("catalog_fallback", fields.CatalogFallback()),
		slog.Duration("took", time.Since(start)))

	return Result{RunID: runID, IssuerKey: issuerKey, Fields: fields, Row: row}, nil
}

// Classify exposes the classifier for diagnostics and operator overrides.
func (p *Pipeline) Classify(text string) string {
	return p.classifier.Classify(text)
}

// Failure records one document that could not be processed.
type Failure struct {
	Source string
	Err    error
}

// BatchResult summarizes a RunBatch call.
type BatchResult struct {
	Processed int
	Failures  []Failure
}

// RunBatch processes documents concurrently with at most workers in flight.
// A failed document is recorded and the batch continues; only context
// cancellation stops the whole run early.
func (p *Pipeline) RunBatch(ctx context.Context, docs []*docsource.Document, workers int) BatchResult {
	if workers < 1 {
		workers = 1
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		result   BatchResult
		semaphor = make(chan struct{}, workers)
	)

	for _, doc := range docs {
		if ctx.Err() != nil {
			mu.Lock()
			result.Failures = append(result.Failures, Failure{Source: doc.Source, Err: ctx.Err()})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		semaphor <- struct{}{}
		go func(doc *docsource.Document) {
			defer wg.Done()
			defer func() { <-semaphor }()

			_, err := p.Run(ctx, doc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, Failure{Source: doc.Source, Err: err})
				return
			}
			result.Processed++
		}(doc)
	}

	wg.Wait()
	return result
}

func basketRefs(prof *profile.Profile) []assets.CatalogRef {
	refs := make([]assets.CatalogRef, 0, len(prof.Basket))
	for _, a := range prof.Basket {
		refs = append(refs, assets.CatalogRef{Name: a.Name, Ticker: a.Ticker})
	}
	return refs
}
