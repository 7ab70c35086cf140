// Package docsource supplies the extraction pipeline with document contexts:
// the full text and every parsed table grid of one termsheet. The pipeline
// never touches raw file bytes itself; it consumes whatever a Reader
// produced.
package docsource

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnreadable marks a source document as corrupt or unparsable. The batch
// runner reports it and moves on to the next document.
var ErrUnreadable = errors.New("unreadable document")

// Document is the read-only context one extraction run works from.
type Document struct {
	// Source is the originating file path, kept for naming fallbacks and
	// run reports.
	Source string
	Text   string
	Tables [][][]string
}

// Reader turns one file into a Document.
type Reader interface {
	Read(ctx context.Context, path string) (*Document, error)
}

// ForFile picks a reader by file extension.
func ForFile(path string, json *JSONReader, pdf *PDFReader) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json, nil
	case ".pdf":
		return pdf, nil
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrUnreadable, filepath.Ext(path))
	}
}
