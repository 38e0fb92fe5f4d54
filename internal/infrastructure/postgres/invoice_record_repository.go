package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/opendoors/balance-dual/internal/domain/repository"
)

var _ repository.InvoiceRecordRepository = (*InvoiceRecordRepo)(nil)

// InvoiceRecordRepo lectura de invoice_records (solo lectura).
type InvoiceRecordRepo struct {
	q Querier
}

// NewInvoiceRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRecordRepository(q Querier) *InvoiceRecordRepo {
	return &InvoiceRecordRepo{q: q}
}

// findForBalanceSQL los parámetros nulos o vacíos desactivan su filtro.
const findForBalanceSQL = `
	SELECT
	    id,
	    direction,
	    category,
	    cash_movement,
	    is_tax_only_offset,
	    subtotal,
	    tax_amount,
	    other_taxes,
	    total,
	    issue_date,
	    COALESCE(partner, ''),
	    is_deleted,
	    status
	FROM invoice_records
	WHERE ($1::date IS NULL OR issue_date >= $1::date)
	  AND ($2::date IS NULL OR issue_date <= $2::date)
	  AND ($3::text = '' OR partner = $3::text)
	  AND ($4::boolean OR NOT is_deleted)
	  AND ($5::text = '' OR status = $5::text)
	ORDER BY issue_date NULLS LAST, id`

// FindForBalance lee los registros del filtro. Los montos NULL llegan como NullDecimal inválido
// y la fecha NULL como time.Time cero; el motor decide si son un error.
func (r *InvoiceRecordRepo) FindForBalance(ctx context.Context, f repository.RecordFilter) ([]*entity.InvoiceRecord, error) {
	rows, err := r.q.Query(ctx, findForBalanceSQL,
		nullDate(f.Start), nullDate(f.End), string(f.Partner), f.IncludeDeleted, f.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("invoice_records.FindForBalance: %w", err)
	}
	defer rows.Close()

	var out []*entity.InvoiceRecord
	for rows.Next() {
		var (
			rec       entity.InvoiceRecord
			direction string
			category  string
			partner   string
			issueDate *time.Time
		)
		if err := rows.Scan(
			&rec.ID,
			&direction,
			&category,
			&rec.CashMovement,
			&rec.TaxOnlyOffset,
			&rec.Subtotal,
			&rec.TaxAmount,
			&rec.OtherTaxes,
			&rec.Total,
			&issueDate,
			&partner,
			&rec.SoftDeleted,
			&rec.Status,
		); err != nil {
			return nil, fmt.Errorf("invoice_records.FindForBalance scan: %w", err)
		}
		rec.Direction = entity.Direction(direction)
		rec.Category = entity.Category(category)
		rec.Partner = entity.Partner(partner)
		if issueDate != nil {
			rec.IssueDate = issueDate.UTC()
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoice_records.FindForBalance rows: %w", err)
	}
	return out, nil
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
