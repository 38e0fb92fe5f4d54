// Package coherence verifica que los importes declarados de una factura cierren entre sí.
// Una diferencia es un defecto de calidad de datos: se informa como dato, nunca se corrige.
package coherence

import (
	"fmt"
	"time"

	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Tipos de ítem de revisión.
const (
	KindCoherenceMismatch = "coherence_mismatch"
	KindVATRateMismatch   = "vat_rate_mismatch"
	KindMalformed         = "malformed"
	KindFutureIssueDate   = "future_issue_date"
	KindStaleIssueDate    = "stale_issue_date"
)

// maxInvoiceAgeYears antigüedad máxima de una fecha de emisión antes de pedir revisión.
const maxInvoiceAgeYears = 2

var hundred = decimal.NewFromInt(100)

// Result resultado de Check.
type Result struct {
	RecordID      string          `json:"record_id"`
	IsCoherent    bool            `json:"is_coherent"`
	ExpectedTotal decimal.Decimal `json:"expected_total"` // subtotal + iva + otros impuestos
	StatedTotal   decimal.Decimal `json:"stated_total"`
	Delta         decimal.Decimal `json:"delta"` // |total - expected_total|
	Tolerance     decimal.Decimal `json:"tolerance"`
}

// RateResult resultado de CheckVATRate.
type RateResult struct {
	RecordID    string                     `json:"record_id"`
	Applicable  bool                       `json:"applicable"` // false si el comprobante no discrimina IVA
	Matches     bool                       `json:"matches"`
	MatchedRate decimal.Decimal            `json:"matched_rate"` // alícuota que coincide (0 = exento)
	Expected    map[string]decimal.Decimal `json:"expected,omitempty"`
}

// ReviewItem registro marcado para revisión manual (needs_review).
type ReviewItem struct {
	RecordID  string  `json:"record_id"`
	Kind      string  `json:"kind"`
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	Coherence *Result `json:"coherence,omitempty"`
}

// Split total bruto separado en neto e IVA. Subtotal + Tax == Total exacto.
type Split struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax_amount"`
	Total    decimal.Decimal `json:"total"`
	Rate     decimal.Decimal `json:"rate"`
}

// Validator aplica la tolerancia configurada por la jurisdicción.
type Validator struct {
	ratio        decimal.Decimal
	minTolerance decimal.Decimal
	rates        []decimal.Decimal
	now          func() time.Time
}

// NewValidator construye el validador con la configuración fiscal y el reloj del sistema.
func NewValidator(settings entity.FiscalSettings) *Validator {
	return &Validator{
		ratio:        settings.CoherenceToleranceRatio,
		minTolerance: settings.CoherenceMinTolerance,
		rates:        []decimal.Decimal{settings.VATStandardRate, settings.VATReducedRate},
		now:          time.Now,
	}
}

// WithClock copia del validador que toma "hoy" de clock (nil = time.Now).
func (v *Validator) WithClock(clock func() time.Time) *Validator {
	out := *v
	out.now = clock
	if out.now == nil {
		out.now = time.Now
	}
	return &out
}

// SplitGross separa un total con IVA incluido a la alícuota general configurada.
func (v *Validator) SplitGross(total decimal.Decimal) Split {
	return SplitGross(total, v.rates[0])
}

// SplitGross separa total (IVA incluido) en subtotal = total / (1 + rate/100), redondeado a
// 2 decimales, e IVA = total - subtotal.
func SplitGross(total, rate decimal.Decimal) Split {
	divisor := decimal.NewFromInt(1).Add(rate.Div(hundred))
	subtotal := total.DivRound(divisor, 2)
	return Split{Subtotal: subtotal, Tax: total.Sub(subtotal), Total: total, Rate: rate}
}

// CheckIssueDate marca fechas de emisión futuras o de más de dos años de antigüedad respecto
// de hoy. Devuelve "" si la fecha es plausible o falta (la falta la resuelve el motor).
func (v *Validator) CheckIssueDate(r *entity.InvoiceRecord) (kind, message string) {
	if !r.HasIssueDate() {
		return "", ""
	}
	now := v.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	issued := time.Date(r.IssueDate.Year(), r.IssueDate.Month(), r.IssueDate.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case issued.After(today):
		return KindFutureIssueDate, fmt.Sprintf("fecha de emisión %s posterior a hoy", issued.Format(time.DateOnly))
	case issued.Before(today.AddDate(-maxInvoiceAgeYears, 0, 0)):
		return KindStaleIssueDate, fmt.Sprintf("fecha de emisión %s con más de %d años de antigüedad",
			issued.Format(time.DateOnly), maxInvoiceAgeYears)
	}
	return "", ""
}

// Check compara el total declarado con subtotal + iva + otros impuestos.
// La tolerancia es |total| * ratio; con total == 0 se usa la tolerancia mínima absoluta.
// No modifica el registro. Un monto faltante devuelve *domain.InputError.
func (v *Validator) Check(r *entity.InvoiceRecord) (Result, error) {
	if err := requireAmounts(r); err != nil {
		return Result{}, err
	}
	expected := r.Subtotal.Decimal.Add(r.TaxAmount.Decimal).Add(r.OtherTaxesOrZero())
	total := r.Total.Decimal
	delta := total.Sub(expected).Abs()

	tolerance := total.Abs().Mul(v.ratio)
	if total.IsZero() {
		tolerance = v.minTolerance
	}

	return Result{
		RecordID:      r.ID,
		IsCoherent:    delta.LessThanOrEqual(tolerance),
		ExpectedTotal: expected,
		StatedTotal:   total,
		Delta:         delta,
		Tolerance:     tolerance,
	}, nil
}

// CheckVATRate verifica que el IVA declarado corresponda a alguna alícuota configurada
// (21% o 10,5% por defecto) o a exento. Solo aplica a comprobantes tipo A.
func (v *Validator) CheckVATRate(r *entity.InvoiceRecord) RateResult {
	res := RateResult{RecordID: r.ID}
	if r.Category != entity.CategoryA || !r.Subtotal.Valid || !r.TaxAmount.Valid {
		return res
	}
	res.Applicable = true

	tax := r.TaxAmount.Decimal
	if tax.IsZero() {
		res.Matches = true
		return res
	}
	tolerance := tax.Abs().Mul(v.ratio)
	if tolerance.LessThan(v.minTolerance) {
		tolerance = v.minTolerance
	}

	res.Expected = make(map[string]decimal.Decimal, len(v.rates))
	for _, rate := range v.rates {
		expected := r.Subtotal.Decimal.Mul(rate).Div(hundred).Round(2)
		res.Expected[rate.String()] = expected
		if !res.Matches && tax.Sub(expected).Abs().LessThanOrEqual(tolerance) {
			res.Matches = true
			res.MatchedRate = rate
		}
	}
	return res
}

// CheckBatch corre las verificaciones de importes, alícuota y fecha sobre todos los registros
// y devuelve cada diferencia como ítem de revisión. Nunca aborta: los registros mal formados también se informan.
func (v *Validator) CheckBatch(records []*entity.InvoiceRecord) []ReviewItem {
	items := []ReviewItem{}
	for _, r := range records {
		if r == nil {
			continue
		}
		if kind, msg := v.CheckIssueDate(r); kind != "" {
			items = append(items, ReviewItem{
				RecordID: r.ID,
				Kind:     kind,
				Status:   entity.StatusNeedsReview,
				Message:  msg,
			})
		}
		res, err := v.Check(r)
		if err != nil {
			items = append(items, ReviewItem{
				RecordID: r.ID,
				Kind:     KindMalformed,
				Status:   entity.StatusNeedsReview,
				Message:  err.Error(),
			})
			continue
		}
		if !res.IsCoherent {
			res := res
			items = append(items, ReviewItem{
				RecordID:  r.ID,
				Kind:      KindCoherenceMismatch,
				Status:    entity.StatusNeedsReview,
				Message:   fmt.Sprintf("total declarado %s, calculado %s, diferencia %s", res.StatedTotal, res.ExpectedTotal, res.Delta),
				Coherence: &res,
			})
		}
		if rate := v.CheckVATRate(r); rate.Applicable && !rate.Matches {
			items = append(items, ReviewItem{
				RecordID: r.ID,
				Kind:     KindVATRateMismatch,
				Status:   entity.StatusNeedsReview,
				Message:  fmt.Sprintf("IVA declarado %s no corresponde a ninguna alícuota configurada", r.TaxAmount.Decimal),
			})
		}
	}
	return items
}

func requireAmounts(r *entity.InvoiceRecord) error {
	switch {
	case !r.Subtotal.Valid:
		return domain.NewInputError(r.ID, "subtotal", "monto faltante")
	case !r.TaxAmount.Valid:
		return domain.NewInputError(r.ID, "tax_amount", "monto faltante")
	case !r.Total.Valid:
		return domain.NewInputError(r.ID, "total", "monto faltante")
	}
	return nil
}
