package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendoors/balance-dual/internal/domain/repository"
	"github.com/opendoors/balance-dual/internal/infrastructure/postgres"
)

var errDown = errors.New("conexión rechazada")

// recordingQuerier guarda los argumentos de la consulta y falla sin tocar una base.
type recordingQuerier struct {
	sql  string
	args []any
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	return nil, errDown
}

func (q *recordingQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (q *recordingQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errDown
}

func TestFindForBalance_Parametros(t *testing.T) {
	q := &recordingQuerier{}
	repo := postgres.NewInvoiceRecordRepository(q)

	start := time.Date(2024, time.May, 1, 15, 30, 0, 0, time.FixedZone("ART", -3*3600))
	end := time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)
	_, err := repo.FindForBalance(context.Background(), repository.BalanceFilter(start, end, "Joni"))
	require.ErrorIs(t, err, errDown)
	assert.Contains(t, err.Error(), "invoice_records.FindForBalance")

	require.Len(t, q.args, 5)
	from, ok := q.args[0].(*time.Time)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), *from, "solo el día calendario")
	to := q.args[1].(*time.Time)
	assert.Equal(t, end, *to)
	assert.Equal(t, "Joni", q.args[2])
	assert.Equal(t, false, q.args[3])
	assert.Equal(t, "completed", q.args[4])
	assert.Contains(t, q.sql, "FROM invoice_records")
}

func TestFindForBalance_SinFechas(t *testing.T) {
	q := &recordingQuerier{}
	repo := postgres.NewInvoiceRecordRepository(q)

	_, _ = repo.FindForBalance(context.Background(), repository.RecordFilter{IncludeDeleted: true})
	require.Len(t, q.args, 5)
	assert.Nil(t, q.args[0].(*time.Time))
	assert.Nil(t, q.args[1].(*time.Time))
	assert.Equal(t, "", q.args[2])
	assert.Equal(t, true, q.args[3])
	assert.Equal(t, "", q.args[4])
}
