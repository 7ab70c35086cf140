// Package sink persists assembled rows. The sink is the only shared resource
// of a batch run: every implementation serializes appends internally so
// concurrent pipeline workers cannot race on row positions.
package sink

import (
	"context"

	"github.com/Verxtics/termsheet-extractor/internal/schema"
)

// Sink appends output rows to the target table. Append is safe for
// concurrent use; rows land in append order, one position each.
type Sink interface {
	Append(ctx context.Context, row schema.Row) error
	Close() error
}

// Fanout appends each row to all targets in order. The first append
// error stops the row; targets already written keep it.
type Fanout struct {
	targets []Sink
}

func NewFanout(targets ...Sink) *Fanout {
	return &Fanout{targets: targets}
}

func (f *Fanout) Append(ctx context.Context, row schema.Row) error {
	for _, t := range f.targets {
		if err := t.Append(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fanout) Close() error {
	var firstErr error
	for _, t := range f.targets {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
