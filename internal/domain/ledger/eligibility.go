package ledger

import (
	"time"

	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/opendoors/balance-dual/internal/domain/entity"
)

// Eligible es el único predicado de elegibilidad común a todos los balances:
// registro completado, no borrado, del socio pedido y con fecha dentro del rango cerrado.
//
// Devuelve *domain.InputError si se pidió un rango de fechas y el registro, por lo demás
// elegible, no tiene fecha de emisión. Los filtros específicos de cada balance (tipo A,
// movimiento de caja) se aplican antes de llamar a Eligible.
func Eligible(r *entity.InvoiceRecord, f Filter) (bool, error) {
	if r == nil || r.SoftDeleted || !r.IsCompleted() {
		return false, nil
	}
	if f.Partner != "" && r.Partner != f.Partner {
		return false, nil
	}
	if !f.HasDateRange() {
		return true, nil
	}
	if !r.HasIssueDate() {
		return false, domain.NewInputError(r.ID, "issue_date", "fecha de emisión faltante con filtro de fechas")
	}
	day := dayOf(r.IssueDate)
	if !f.Start.IsZero() && day.Before(dayOf(f.Start)) {
		return false, nil
	}
	if !f.End.IsZero() && day.After(dayOf(f.End)) {
		return false, nil
	}
	return true, nil
}

// dayOf descarta la hora conservando la fecha calendario de t.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
