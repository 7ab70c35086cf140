package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS termsheet_rows").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	p := NewPostgres(mock)
	require.NoError(t, p.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppend(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	row := sampleRow(t)

	mock.ExpectExec("INSERT INTO termsheet_rows").
		WithArgs("EQUITY LINKED NOTE", "Macquarie Bank Limited", "AU0000312345",
			"ACE 90%", "AUD", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p := NewPostgres(mock)
	require.NoError(t, p.Append(context.Background(), row))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppendError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO termsheet_rows").
		WillReturnError(errors.New("connection reset"))

	p := NewPostgres(mock)
	err = p.Append(context.Background(), sampleRow(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert termsheet row")
}
