package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Verxtics/termsheet-extractor/internal/schema"
)

const createRowsTable = `
CREATE TABLE IF NOT EXISTS termsheet_rows (
	id              BIGSERIAL PRIMARY KEY,
	investment_name TEXT NOT NULL,
	issuer          TEXT NOT NULL,
	isin            TEXT NOT NULL,
	product_type    TEXT NOT NULL,
	currency        TEXT NOT NULL,
	cells           JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertRow = `
INSERT INTO termsheet_rows (investment_name, issuer, isin, product_type, currency, cells)
VALUES ($1, $2, $3, $4, $5, $6)`

// DB is the subset of pgxpool.Pool the sink needs; pgxmock satisfies it in
// tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Postgres appends rows to the termsheet_rows table, keeping the full cell
// sequence as JSONB next to the searchable key fields. Appends are
// serialized like every other sink.
type Postgres struct {
	mu sync.Mutex
	db DB
}

func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the rows table when missing. Call once at startup.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createRowsTable); err != nil {
		return fmt.Errorf("ensure termsheet_rows: %w", err)
	}
	return nil
}

func (p *Postgres) Append(ctx context.Context, row schema.Row) error {
	cells, err := json.Marshal(row.Cells())
	if err != nil {
		return fmt.Errorf("encode row cells: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, err = p.db.Exec(ctx, insertRow,
		stringCell(row, schema.ColInvestmentName),
		stringCell(row, schema.ColIssuer),
		stringCell(row, schema.ColISIN),
		stringCell(row, schema.ColProductType),
		stringCell(row, schema.ColCurrency),
		cells,
	)
	if err != nil {
		return fmt.Errorf("insert termsheet row: %w", err)
	}
	return nil
}

// Close is a no-op; pool lifetime belongs to the caller.
func (p *Postgres) Close() error { return nil }

func stringCell(row schema.Row, col int) string {
	s, _ := row.Cell(col).(string)
	return s
}
