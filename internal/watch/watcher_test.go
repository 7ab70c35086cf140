package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verxtics/termsheet-extractor/internal/docsource"
	"github.com/Verxtics/termsheet-extractor/internal/pipeline"
	"github.com/Verxtics/termsheet-extractor/internal/profile"
	"github.com/Verxtics/termsheet-extractor/internal/schema"
	"github.com/Verxtics/termsheet-extractor/pkg/archive"
)

type memorySink struct {
	mu   sync.Mutex
	rows []schema.Row
}

func (s *memorySink) Append(ctx context.Context, row schema.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return nil
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func newWatcher(t *testing.T, inbox string) (*Watcher, *memorySink, *archive.Archive) {
	t.Helper()
	reg, err := profile.Builtin()
	require.NoError(t, err)

	out := &memorySink{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipe := pipeline.New(reg, out, log, pipeline.NewMetrics(prometheus.NewRegistry()))

	arc, err := archive.New(t.TempDir())
	require.NoError(t, err)

	w := New(pipe, arc, docsource.NewJSONReader(), docsource.NewPDFReader(log), inbox, "@every 1m", 2, log)
	return w, out, arc
}

func writeDoc(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(`{"text":"`+text+`"}`), 0644))
	return path
}

func TestSweepProcessesAndArchives(t *testing.T) {
	inbox := t.TempDir()
	w, out, arc := newWatcher(t, inbox)

	writeDoc(t, inbox, "one.json", "Barclays Bank PLC note")
	writeDoc(t, inbox, "two.json", "UBS Equity Goals product")

	processed, failed := w.Sweep(context.Background())
	assert.Equal(t, 2, processed)
	assert.Zero(t, failed)
	assert.Equal(t, 2, out.count())

	entries, err := os.ReadDir(inbox)
	require.NoError(t, err)
	assert.Empty(t, entries)

	archived, err := arc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, archived, 2)
}

func TestSweepSkipsUnsupportedFiles(t *testing.T) {
	inbox := t.TempDir()
	w, out, _ := newWatcher(t, inbox)

	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("ignored"), 0644))

	processed, failed := w.Sweep(context.Background())
	assert.Zero(t, processed)
	assert.Zero(t, failed)
	assert.Zero(t, out.count())
	assert.FileExists(t, filepath.Join(inbox, "notes.txt"))
}

func TestSweepRecordsFailures(t *testing.T) {
	inbox := t.TempDir()
	w, out, _ := newWatcher(t, inbox)

	require.NoError(t, os.WriteFile(filepath.Join(inbox, "bad.json"), []byte("{not json"), 0644))
	writeDoc(t, inbox, "good.json", "Macquarie Bank Limited note")

	processed, failed := w.Sweep(context.Background())
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, out.count())

	// Failed documents stay in the inbox for the next sweep.
	assert.FileExists(t, filepath.Join(inbox, "bad.json"))
}

func TestSweepEmptyInbox(t *testing.T) {
	inbox := t.TempDir()
	w, out, _ := newWatcher(t, inbox)

	processed, failed := w.Sweep(context.Background())
	assert.Zero(t, processed)
	assert.Zero(t, failed)
	assert.Zero(t, out.count())
}
