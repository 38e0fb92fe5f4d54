// Package report arma el informe integral de la contabilidad dual y expone los casos de uso
// de balances sobre el repositorio de facturas.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/opendoors/balance-dual/internal/domain/fiscal"
	"github.com/opendoors/balance-dual/internal/domain/ledger"
)

// reportNamespace espacio de nombres de los IDs de informe (UUIDv5).
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://opendoors.com.ar/balance-dual/report"))

// Clock fuente de la hora actual; se inyecta para que el informe sea reproducible en tests.
type Clock func() time.Time

// Period ventana de fechas del informe. FiscalYear es 0 cuando se pidió un rango explícito.
type Period struct {
	FiscalYear int       `json:"fiscal_year,omitempty"`
	Start      time.Time `json:"start_date"`
	End        time.Time `json:"end_date"`
	Label      string    `json:"label"`
}

// PeriodFromYear período de un año fiscal completo.
func PeriodFromYear(y fiscal.Year) Period {
	return Period{FiscalYear: y.Label, Start: y.Start, End: y.End, Label: y.Description}
}

// PeriodFromRange período de fechas explícitas (cualquiera puede ser cero).
func PeriodFromRange(start, end time.Time) Period {
	return Period{Start: start, End: end, Label: rangeLabel(start, end)}
}

// Filter filtro del motor para este período y socio.
func (p Period) Filter(partner entity.Partner) ledger.Filter {
	return ledger.Filter{Partner: partner, Start: p.Start, End: p.End}
}

func rangeLabel(start, end time.Time) string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "…"
		}
		return t.Format(time.DateOnly)
	}
	return format(start) + " / " + format(end)
}

// ComprehensiveReport informe integral: balances IVA, real y fiscal, ganancias e indicadores.
type ComprehensiveReport struct {
	ID          uuid.UUID          `json:"id"`
	Period      Period             `json:"period"`
	Partner     entity.Partner     `json:"partner,omitempty"`
	VAT         ledger.VATBalance  `json:"vat"`
	Real        ledger.CashBalance `json:"real"`
	Fiscal      ledger.CashBalance `json:"fiscal"`
	IncomeTax   ledger.TaxEstimate `json:"income_tax"`
	Indicators  ledger.Indicators  `json:"indicators"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Assembler compone el informe a partir del motor de balances y el calendario fiscal.
type Assembler struct {
	engine   *ledger.Engine
	calendar fiscal.Calendar
	clock    Clock
}

// NewAssembler crea el ensamblador. clock nil usa time.Now.
func NewAssembler(settings entity.FiscalSettings, clock Clock) (*Assembler, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	cal, err := fiscal.NewCalendar(settings.StartMonth)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{engine: ledger.NewEngine(settings), calendar: cal, clock: clock}, nil
}

// Engine motor de balances del ensamblador.
func (a *Assembler) Engine() *ledger.Engine { return a.engine }

// Calendar calendario fiscal del ensamblador.
func (a *Assembler) Calendar() fiscal.Calendar { return a.calendar }

// Now hora actual según el reloj inyectado.
func (a *Assembler) Now() time.Time { return a.clock() }

// ResolvePeriod año fiscal pedido, o el vigente si fiscalYear es nil.
func (a *Assembler) ResolvePeriod(fiscalYear *int) Period {
	if fiscalYear != nil {
		return PeriodFromYear(a.calendar.ForLabel(*fiscalYear))
	}
	return PeriodFromYear(a.calendar.Current(a.clock()))
}

// Build arma el informe del año fiscal pedido (o el vigente) para el socio (o todos con "").
func (a *Assembler) Build(records []*entity.InvoiceRecord, partner entity.Partner, fiscalYear *int) (*ComprehensiveReport, error) {
	return a.BuildPeriod(records, partner, a.ResolvePeriod(fiscalYear))
}

// BuildPeriod arma el informe sobre un período arbitrario.
func (a *Assembler) BuildPeriod(records []*entity.InvoiceRecord, partner entity.Partner, period Period) (*ComprehensiveReport, error) {
	f := period.Filter(partner)

	vat, err := a.engine.BalanceVAT(records, f)
	if err != nil {
		return nil, fmt.Errorf("balance IVA: %w", err)
	}
	realBal, err := a.engine.BalanceReal(records, f)
	if err != nil {
		return nil, fmt.Errorf("balance real: %w", err)
	}
	fiscalBal, err := a.engine.BalanceFiscal(records, f)
	if err != nil {
		return nil, fmt.Errorf("balance fiscal: %w", err)
	}

	r := &ComprehensiveReport{
		Period:     period,
		Partner:    partner,
		VAT:        vat,
		Real:       realBal,
		Fiscal:     fiscalBal,
		IncomeTax:  a.engine.EstimateIncomeTax(fiscalBal),
		Indicators: ledger.ComputeIndicators(realBal, fiscalBal),
	}
	fp, err := fingerprint(r)
	if err != nil {
		return nil, err
	}
	r.ID = uuid.NewSHA1(reportNamespace, fp)
	r.GeneratedAt = a.clock()
	return r, nil
}

// Equal compara dos informes ignorando GeneratedAt.
func Equal(a, b *ComprehensiveReport) bool {
	if a == nil || b == nil {
		return a == b
	}
	fa, errA := fingerprint(a)
	fb, errB := fingerprint(b)
	return errA == nil && errB == nil && a.ID == b.ID && bytes.Equal(fa, fb)
}

// fingerprint serialización canónica del contenido, sin ID ni GeneratedAt.
func fingerprint(r *ComprehensiveReport) ([]byte, error) {
	c := *r
	c.ID = uuid.Nil
	c.GeneratedAt = time.Time{}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("serializar informe: %w", err)
	}
	return b, nil
}
