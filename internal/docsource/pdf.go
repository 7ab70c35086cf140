package docsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFReader extracts page content with pdfcpu as a best-effort direct path
// for termsheets that skipped the upstream flattening step. pdfcpu extracts
// raw content streams, not laid-out tables, so Tables is always empty here;
// table-dependent tiers simply fall through to their text and catalog
// fallbacks.
type PDFReader struct {
	log     *slog.Logger
	tempDir string
}

func NewPDFReader(log *slog.Logger) *PDFReader {
	tempDir := filepath.Join(os.TempDir(), "termsheet-extractor")
	_ = os.MkdirAll(tempDir, 0o755)
	return &PDFReader{log: log, tempDir: tempDir}
}

func (r *PDFReader) Read(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	outDir, err := os.MkdirTemp(r.tempDir, "pages-")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	text, err := r.collectPages(outDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s: no extractable text", ErrUnreadable, path)
	}

	r.log.Debug("pdf content extracted",
		slog.String("path", path),
		slog.Int("pages", pdfCtx.PageCount))

	return &Document{Source: path, Text: text}, nil
}

func (r *PDFReader) collectPages(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		b.Write(content)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
