package docsource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// jsonPayload is the wire shape produced by the upstream document-reading
// collaborator.
type jsonPayload struct {
	Text   string       `json:"text"`
	Tables [][][]string `json:"tables"`
}

// JSONReader reads pre-extracted {text, tables} payloads. This is the main
// ingestion path: a separate extraction step (or the operator) has already
// flattened the PDF.
type JSONReader struct{}

func NewJSONReader() *JSONReader { return &JSONReader{} }

func (r *JSONReader) Read(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	var payload jsonPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if payload.Text == "" && len(payload.Tables) == 0 {
		return nil, fmt.Errorf("%w: %s: empty payload", ErrUnreadable, path)
	}

	return &Document{Source: path, Text: payload.Text, Tables: payload.Tables}, nil
}
