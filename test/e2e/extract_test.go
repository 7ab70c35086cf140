// Package e2etest provides end-to-end integration tests for extraction flows.
package e2etest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Verxtics/termsheet-extractor/internal/docsource"
	"github.com/Verxtics/termsheet-extractor/internal/pipeline"
	"github.com/Verxtics/termsheet-extractor/internal/profile"
	"github.com/Verxtics/termsheet-extractor/internal/schema"
	"github.com/Verxtics/termsheet-extractor/internal/sink"
	"github.com/Verxtics/termsheet-extractor/internal/watch"
	"github.com/Verxtics/termsheet-extractor/pkg/archive"
)

const termsheetJSON = `{
  "text": "Barclays Bank PLC. ISIN: XS2021832634. Knock-in Barrier: 65% of the Initial Price. Coupon: 3.675% per quarter. Issue Date: 22/03/2024. Maturity Date: 22/03/2027. Aggregate Nominal Amount: AUD 1,250,000.00",
  "tables": [
    [
      ["Underlying", "Bloomberg Code", "Initial Price"],
      ["Acme Corp", "ACM", "AUD 102.50"]
    ]
  ]
}`

func newPipeline(t *testing.T, out sink.Sink) *pipeline.Pipeline {
	t.Helper()
	reg, err := profile.Builtin()
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pipeline.New(reg, out, log, pipeline.NewMetrics(prometheus.NewRegistry()))
}

// TestDocumentToWorkbook runs a JSON termsheet through the full pipeline
// and checks the row as persisted in the spreadsheet.
func TestDocumentToWorkbook(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "barclays.json")
	require.NoError(t, os.WriteFile(docPath, []byte(termsheetJSON), 0644))

	workbookPath := filepath.Join(dir, "database.xlsx")
	wb, err := sink.OpenWorkbook(workbookPath, schema.V1())
	require.NoError(t, err)

	pipe := newPipeline(t, wb)

	doc, err := docsource.NewJSONReader().Read(context.Background(), docPath)
	require.NoError(t, err)

	res, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	t.Run("Classification", func(t *testing.T) {
		assert.Equal(t, "barclays", res.IssuerKey)
	})

	t.Run("PersistedRow", func(t *testing.T) {
		f, err := excelize.OpenFile(workbookPath)
		require.NoError(t, err)
		defer f.Close()

		cell := func(col int) string {
			name, err := excelize.CoordinatesToCellName(col+1, 3)
			require.NoError(t, err)
			v, err := f.GetCellValue("Database", name)
			require.NoError(t, err)
			return v
		}

		assert.Equal(t, "XS2021832634", cell(schema.ColISIN))
		assert.Equal(t, "Barclays Bank PLC", cell(schema.ColIssuer))
		assert.Equal(t, "PCN", cell(schema.ColProductType))
		assert.Equal(t, "AUD", cell(schema.ColCurrency))
		assert.Equal(t, "22/03/2024", cell(schema.ColIssueDate))
		assert.Equal(t, "22/03/2027", cell(schema.ColMaturityDate))
		assert.Equal(t, "Acme Corp (ACM)", cell(schema.ColUnderlying1))
	})
}

// TestInboxSweepToWorkbook drops documents into an inbox, sweeps it, and
// checks that rows are appended and the documents archived.
func TestInboxSweepToWorkbook(t *testing.T) {
	inbox := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "one.json"), []byte(termsheetJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "two.json"),
		[]byte(`{"text":"UBS Equity Goals with Kick-in Level at 60% of the Initial Level"}`), 0644))

	workbookPath := filepath.Join(t.TempDir(), "database.xlsx")
	wb, err := sink.OpenWorkbook(workbookPath, schema.V1())
	require.NoError(t, err)

	pipe := newPipeline(t, wb)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	arc, err := archive.New(t.TempDir())
	require.NoError(t, err)

	w := watch.New(pipe, arc, docsource.NewJSONReader(), docsource.NewPDFReader(log),
		inbox, "@every 1m", 2, log)

	processed, failed := w.Sweep(context.Background())
	assert.Equal(t, 2, processed)
	assert.Zero(t, failed)
	require.NoError(t, wb.Close())

	entries, err := os.ReadDir(inbox)
	require.NoError(t, err)
	assert.Empty(t, entries, "processed documents leave the inbox")

	archived, err := arc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, archived, 2)

	f, err := excelize.OpenFile(workbookPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Database")
	require.NoError(t, err)
	// Header row plus one data row per document.
	require.GreaterOrEqual(t, len(rows), 4)
}
