// Package ledger calcula los tres balances de la contabilidad dual (IVA, real y fiscal)
// sobre instantáneas de facturas. Es puro: no hace I/O, no muta los registros y no redondea
// sumas parciales.
package ledger

import (
	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Engine motor de balances para una jurisdicción.
type Engine struct {
	settings entity.FiscalSettings
}

// NewEngine crea el motor con la configuración fiscal.
func NewEngine(settings entity.FiscalSettings) *Engine {
	return &Engine{settings: settings}
}

// Settings configuración con la que se creó el motor.
func (e *Engine) Settings() entity.FiscalSettings {
	return e.settings
}

// ── Balance IVA ───────────────────────────────────────────────────────────────

func vatCandidate(r *entity.InvoiceRecord) bool {
	return r != nil && r.Category == entity.CategoryA && !r.TaxOnlyOffset
}

// BalanceVAT débito fiscal (IVA de emitidas) menos crédito fiscal (IVA de recibidas),
// solo sobre comprobantes tipo A que no sean de compensación fiscal.
func (e *Engine) BalanceVAT(records []*entity.InvoiceRecord, f Filter) (VATBalance, error) {
	out := VATBalance{
		TaxCollected: decimal.Zero,
		TaxPaid:      decimal.Zero,
	}
	for _, r := range records {
		if !vatCandidate(r) {
			continue
		}
		ok, err := Eligible(r, f)
		if err != nil {
			return VATBalance{}, err
		}
		if !ok {
			continue
		}
		if !r.TaxAmount.Valid {
			return VATBalance{}, domain.NewInputError(r.ID, "tax_amount", "monto faltante")
		}
		switch r.Direction {
		case entity.DirectionIssued:
			out.TaxCollected = out.TaxCollected.Add(r.TaxAmount.Decimal)
			out.IssuedCount++
		case entity.DirectionReceived:
			out.TaxPaid = out.TaxPaid.Add(r.TaxAmount.Decimal)
			out.ReceivedCount++
		default:
			return VATBalance{}, domain.NewInputError(r.ID, "direction", "dirección desconocida: "+string(r.Direction))
		}
	}
	out.finish()
	return out, nil
}

func (b *VATBalance) finish() {
	b.Balance = b.TaxCollected.Sub(b.TaxPaid)
	b.AmountPayable = decimal.Zero
	b.AmountInCredit = decimal.Zero
	switch b.Balance.Sign() {
	case 1:
		b.State = VATPayable
		b.AmountPayable = b.Balance
	case -1:
		b.State = VATInCredit
		b.AmountInCredit = b.Balance.Abs()
	default:
		b.State = VATNeutral
	}
}

// ── Balances de caja ──────────────────────────────────────────────────────────

// BalanceReal flujo de caja real: solo registros con movimiento bancario, sin importar el tipo.
func (e *Engine) BalanceReal(records []*entity.InvoiceRecord, f Filter) (CashBalance, error) {
	return cashBalance(KindReal, records, f)
}

// BalanceFiscal lo declarado ante AFIP: todo registro elegible, incluidas las compensaciones fiscales.
func (e *Engine) BalanceFiscal(records []*entity.InvoiceRecord, f Filter) (CashBalance, error) {
	return cashBalance(KindFiscal, records, f)
}

func cashBalance(kind Kind, records []*entity.InvoiceRecord, f Filter) (CashBalance, error) {
	out := CashBalance{
		Kind:    kind,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	for _, r := range records {
		if r == nil || (kind == KindReal && !r.CashMovement) {
			continue
		}
		ok, err := Eligible(r, f)
		if err != nil {
			return CashBalance{}, err
		}
		if !ok {
			continue
		}
		if !r.Total.Valid {
			return CashBalance{}, domain.NewInputError(r.ID, "total", "monto faltante")
		}
		switch r.Direction {
		case entity.DirectionIssued:
			out.Income = out.Income.Add(r.Total.Decimal)
			out.IssuedCount++
		case entity.DirectionReceived:
			out.Expense = out.Expense.Add(r.Total.Decimal)
			out.ReceivedCount++
		default:
			return CashBalance{}, domain.NewInputError(r.ID, "direction", "dirección desconocida: "+string(r.Direction))
		}
	}
	out.finish()
	return out, nil
}

func (b *CashBalance) finish() {
	b.Balance = b.Income.Sub(b.Expense)
	b.Margin = decimal.Zero
	if b.Income.IsPositive() {
		b.Margin = b.Balance.Div(b.Income).Mul(hundred)
	}
}

// ── Ganancias ─────────────────────────────────────────────────────────────────

// EstimateIncomeTax estima ganancias con la alícuota configurada en el motor.
func (e *Engine) EstimateIncomeTax(fiscal CashBalance) TaxEstimate {
	return EstimateIncomeTax(fiscal, e.settings.IncomeTaxRate)
}

// EstimateIncomeTax impuesto = balance fiscal × rate / 100. Sin ganancia (balance <= 0) el
// impuesto es cero y el estado TaxNoTaxableProfit.
func EstimateIncomeTax(fiscal CashBalance, rate decimal.Decimal) TaxEstimate {
	if !fiscal.Balance.IsPositive() {
		return TaxEstimate{
			TaxableBase: decimal.Zero,
			Rate:        rate,
			Tax:         decimal.Zero,
			State:       TaxNoTaxableProfit,
		}
	}
	return TaxEstimate{
		TaxableBase: fiscal.Balance,
		Rate:        rate,
		Tax:         fiscal.Balance.Mul(rate).Div(hundred),
		State:       TaxPayable,
	}
}
