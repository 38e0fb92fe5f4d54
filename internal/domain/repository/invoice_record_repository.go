package repository

import (
	"context"
	"time"

	"github.com/opendoors/balance-dual/internal/domain/entity"
)

// RecordFilter filtros de lectura de registros para balances.
// Start y End son un intervalo cerrado sobre issue_date; cero = sin límite.
type RecordFilter struct {
	Start          time.Time
	End            time.Time
	Partner        entity.Partner // "" = todos los socios
	IncludeDeleted bool
	Status         string // "" = cualquier estado
}

// BalanceFilter filtro estándar de los balances: sin borrados y solo completados.
func BalanceFilter(start, end time.Time, partner entity.Partner) RecordFilter {
	return RecordFilter{
		Start:   start,
		End:     end,
		Partner: partner,
		Status:  entity.StatusCompleted,
	}
}

// InvoiceRecordRepository puerto de lectura de facturas. Las implementaciones son read-only.
type InvoiceRecordRepository interface {
	// FindForBalance devuelve los registros que cumplen el filtro, ordenados por fecha de emisión e id.
	// El motor de balances vuelve a filtrar: el resultado no necesita ser exacto.
	FindForBalance(ctx context.Context, f RecordFilter) ([]*entity.InvoiceRecord, error)
}
