package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/opendoors/balance-dual/internal/domain/ledger"
)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type opt func(*entity.InvoiceRecord)

func cat(c entity.Category) opt { return func(r *entity.InvoiceRecord) { r.Category = c } }
func noCash() opt { return func(r *entity.InvoiceRecord) { r.CashMovement = false } }
func taxOnly() opt { return func(r *entity.InvoiceRecord) { r.TaxOnlyOffset = true } }
func partner(p entity.Partner) opt { return func(r *entity.InvoiceRecord) { r.Partner = p } }
func status(s string) opt { return func(r *entity.InvoiceRecord) { r.Status = s } }
func deleted() opt { return func(r *entity.InvoiceRecord) { r.SoftDeleted = true } }
func issued(t time.Time) opt { return func(r *entity.InvoiceRecord) { r.IssueDate = t } }
func id(s string) opt { return func(r *entity.InvoiceRecord) { r.ID = s } }

func rec(dir entity.Direction, tax, total string, opts ...opt) *entity.InvoiceRecord {
	r := &entity.InvoiceRecord{
		ID:           "r",
		Direction:    dir,
		Category:     entity.CategoryA,
		CashMovement: true,
		Subtotal:     entity.Amount(decimal.RequireFromString(total).Sub(decimal.RequireFromString(tax))),
		TaxAmount:    entity.MustAmount(tax),
		Total:        entity.MustAmount(total),
		IssueDate:    day(2024, time.June, 15),
		Partner:      "Joni",
		Status:       entity.StatusCompleted,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func newEngine() *ledger.Engine {
	return ledger.NewEngine(entity.DefaultFiscalSettings())
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Balance IVA ───────────────────────────────────────────────────────────────

func TestBalanceVAT_Escenario(t *testing.T) {
	records := []*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "210", "1210"),
		rec(entity.DirectionReceived, "100", "600"),
	}
	b, err := newEngine().BalanceVAT(records, ledger.Filter{})
	require.NoError(t, err)
	assert.True(t, dec("210").Equal(b.TaxCollected))
	assert.True(t, dec("100").Equal(b.TaxPaid))
	assert.True(t, dec("110").Equal(b.Balance))
	assert.Equal(t, ledger.VATPayable, b.State)
	assert.True(t, dec("110").Equal(b.AmountPayable))
	assert.True(t, b.AmountInCredit.IsZero())
	assert.Equal(t, 1, b.IssuedCount)
	assert.Equal(t, 1, b.ReceivedCount)
}

func TestBalanceVAT_EstadosCreditoYNeutro(t *testing.T) {
	e := newEngine()

	b, err := e.BalanceVAT([]*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "50", "300"),
		rec(entity.DirectionReceived, "80", "480"),
	}, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, ledger.VATInCredit, b.State)
	assert.True(t, dec("30").Equal(b.AmountInCredit))

	b, err = e.BalanceVAT(nil, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, ledger.VATNeutral, b.State)
	assert.True(t, b.Balance.IsZero())
}

// TestBalanceVAT_InvarianteSinTipoA: agregar o quitar comprobantes no-A no cambia el IVA.
func TestBalanceVAT_InvarianteSinTipoA(t *testing.T) {
	base := []*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "210", "1210"),
		rec(entity.DirectionReceived, "100", "600"),
	}
	extra := append([]*entity.InvoiceRecord{}, base...)
	extra = append(extra,
		rec(entity.DirectionIssued, "999", "5000", cat(entity.CategoryB)),
		rec(entity.DirectionReceived, "77", "400", cat(entity.CategoryC)),
		rec(entity.DirectionIssued, "13", "100", cat(entity.CategoryX)),
	)

	e := newEngine()
	want, err := e.BalanceVAT(base, ledger.Filter{})
	require.NoError(t, err)
	got, err := e.BalanceVAT(extra, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBalanceVAT_ExcluyeCompensacionFiscal(t *testing.T) {
	b, err := newEngine().BalanceVAT([]*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "210", "1210"),
		rec(entity.DirectionReceived, "500", "3000", taxOnly()),
	}, ledger.Filter{})
	require.NoError(t, err)
	assert.True(t, dec("210").Equal(b.Balance))
	assert.Equal(t, 0, b.ReceivedCount)
}

func TestBalanceVAT_IVAFaltante(t *testing.T) {
	r := rec(entity.DirectionIssued, "210", "1210", id("sin-iva"))
	r.TaxAmount = decimal.NullDecimal{}

	_, err := newEngine().BalanceVAT([]*entity.InvoiceRecord{r}, ledger.Filter{})
	var ie *domain.InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "sin-iva", ie.RecordID)
	assert.Equal(t, "tax_amount", ie.Field)
}

// ── Elegibilidad ──────────────────────────────────────────────────────────────

func TestEligible_ExcluyeBorradosYNoCompletados(t *testing.T) {
	records := []*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "210", "1210"),
		rec(entity.DirectionIssued, "210", "1210", deleted()),
		rec(entity.DirectionIssued, "210", "1210", status(entity.StatusPending)),
		rec(entity.DirectionIssued, "210", "1210", status(entity.StatusNeedsReview)),
		rec(entity.DirectionIssued, "210", "1210", status(entity.StatusError)),
	}
	e := newEngine()

	vat, err := e.BalanceVAT(records, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, vat.IssuedCount)

	fiscal, err := e.BalanceFiscal(records, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, fiscal.IssuedCount)
	assert.True(t, dec("1210").Equal(fiscal.Income))
}

func TestEligible_RangoCerrado(t *testing.T) {
	records := []*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "0", "100", issued(day(2024, time.April, 30))),
		rec(entity.DirectionIssued, "0", "200", issued(day(2024, time.May, 1))),
		rec(entity.DirectionIssued, "0", "400", issued(time.Date(2025, time.April, 30, 23, 59, 0, 0, time.UTC))),
		rec(entity.DirectionIssued, "0", "800", issued(day(2025, time.May, 1))),
	}
	f := ledger.Filter{Start: day(2024, time.May, 1), End: day(2025, time.April, 30)}

	b, err := newEngine().BalanceFiscal(records, f)
	require.NoError(t, err)
	assert.True(t, dec("600").Equal(b.Income))
	assert.Equal(t, 2, b.IssuedCount)
}

func TestEligible_SinFechaConFiltro(t *testing.T) {
	r := rec(entity.DirectionIssued, "0", "100", id("sin-fecha"), issued(time.Time{}))
	f := ledger.Filter{Start: day(2024, time.May, 1)}

	_, err := newEngine().BalanceFiscal([]*entity.InvoiceRecord{r}, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInput)

	// Sin filtro de fechas la falta de fecha no importa.
	b, err := newEngine().BalanceFiscal([]*entity.InvoiceRecord{r}, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, b.IssuedCount)
}

func TestEligible_BorradoSinFechaNoFalla(t *testing.T) {
	r := rec(entity.DirectionIssued, "0", "100", issued(time.Time{}), deleted())
	ok, err := ledger.Eligible(r, ledger.Filter{End: day(2025, time.April, 30)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEligible_FiltroSocio(t *testing.T) {
	records := []*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "0", "100", partner("Joni")),
		rec(entity.DirectionIssued, "0", "200", partner("Maxi")),
	}
	b, err := newEngine().BalanceReal(records, ledger.Filter{Partner: "Maxi"})
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(b.Income))
}

// ── Balances de caja ──────────────────────────────────────────────────────────

func TestBalanceReal_SoloMovimientoDeCaja(t *testing.T) {
	records := []*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "210", "1210"),
		rec(entity.DirectionReceived, "0", "200", cat(entity.CategoryC)),
		rec(entity.DirectionReceived, "500", "3000", noCash(), taxOnly()),
	}
	e := newEngine()

	r, err := e.BalanceReal(records, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, ledger.KindReal, r.Kind)
	assert.True(t, dec("1210").Equal(r.Income))
	assert.True(t, dec("200").Equal(r.Expense))
	assert.True(t, dec("1010").Equal(r.Balance))

	f, err := e.BalanceFiscal(records, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, ledger.KindFiscal, f.Kind)
	assert.True(t, dec("3200").Equal(f.Expense))
	assert.True(t, dec("-1990").Equal(f.Balance))
	assert.Equal(t, 2, f.ReceivedCount)
}

// TestBalanceReal_IgualFiscalSobreCaja: real(todos) == fiscal(solo con movimiento de caja).
func TestBalanceReal_IgualFiscalSobreCaja(t *testing.T) {
	all := []*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "210", "1210"),
		rec(entity.DirectionIssued, "0", "333.33", cat(entity.CategoryB)),
		rec(entity.DirectionReceived, "21", "121", noCash()),
		rec(entity.DirectionReceived, "10.5", "110.5", cat(entity.CategoryA)),
		rec(entity.DirectionReceived, "0", "99", noCash(), taxOnly()),
	}
	var cashOnly []*entity.InvoiceRecord
	for _, r := range all {
		if r.CashMovement {
			cashOnly = append(cashOnly, r)
		}
	}
	e := newEngine()
	r, err := e.BalanceReal(all, ledger.Filter{})
	require.NoError(t, err)
	f, err := e.BalanceFiscal(cashOnly, ledger.Filter{})
	require.NoError(t, err)

	assert.True(t, r.Income.Equal(f.Income))
	assert.True(t, r.Expense.Equal(f.Expense))
	assert.True(t, r.Balance.Equal(f.Balance))
	assert.True(t, r.Margin.Equal(f.Margin))
	assert.Equal(t, r.IssuedCount, f.IssuedCount)
	assert.Equal(t, r.ReceivedCount, f.ReceivedCount)
}

func TestBalanceReal_Margen(t *testing.T) {
	b, err := newEngine().BalanceReal([]*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "0", "1000"),
		rec(entity.DirectionReceived, "0", "750"),
	}, ledger.Filter{})
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(b.Margin))

	b, err = newEngine().BalanceReal([]*entity.InvoiceRecord{
		rec(entity.DirectionReceived, "0", "750"),
	}, ledger.Filter{})
	require.NoError(t, err)
	assert.True(t, b.Margin.IsZero(), "sin ingresos el margen es 0")
}

func TestBalanceFiscal_SinRedondeoParcial(t *testing.T) {
	records := make([]*entity.InvoiceRecord, 0, 3)
	for i := 0; i < 3; i++ {
		records = append(records, rec(entity.DirectionIssued, "0", "0.005"))
	}
	b, err := newEngine().BalanceFiscal(records, ledger.Filter{})
	require.NoError(t, err)
	assert.True(t, dec("0.015").Equal(b.Income))
}

func TestBalanceFiscal_TotalFaltante(t *testing.T) {
	r := rec(entity.DirectionReceived, "0", "10")
	r.Total = decimal.NullDecimal{}
	_, err := newEngine().BalanceFiscal([]*entity.InvoiceRecord{r}, ledger.Filter{})
	assert.ErrorIs(t, err, domain.ErrInput)
}

func TestBalanceFiscal_DireccionDesconocida(t *testing.T) {
	r := rec("", "0", "10")
	_, err := newEngine().BalanceFiscal([]*entity.InvoiceRecord{r}, ledger.Filter{})
	assert.ErrorIs(t, err, domain.ErrInput)
}

func TestBalances_NoMutanRegistros(t *testing.T) {
	r := rec(entity.DirectionIssued, "210", "1210")
	before := *r
	e := newEngine()
	_, _ = e.BalanceVAT([]*entity.InvoiceRecord{r}, ledger.Filter{})
	_, _ = e.BalanceReal([]*entity.InvoiceRecord{r}, ledger.Filter{})
	_, _ = e.BalanceFiscal([]*entity.InvoiceRecord{r}, ledger.Filter{})
	assert.Equal(t, before, *r)
}

// ── Por socio ─────────────────────────────────────────────────────────────────

func TestBalanceByPartner(t *testing.T) {
	records := []*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "210", "1210", partner("Joni")),
		rec(entity.DirectionReceived, "100", "600", partner("Joni")),
		rec(entity.DirectionIssued, "21", "121", partner("Leo")),
		rec(entity.DirectionIssued, "21", "121", partner("Desconocido")),
		rec(entity.DirectionIssued, "21", "121", partner("")),
	}
	byPartner, err := newEngine().BalanceByPartner(records, ledger.Filter{Partner: "Leo"})
	require.NoError(t, err)
	require.Len(t, byPartner, len(entity.DefaultPartners))

	joni := byPartner["Joni"]
	assert.True(t, dec("110").Equal(joni.VAT.Balance))
	assert.True(t, dec("610").Equal(joni.Real.Balance))
	assert.True(t, dec("610").Equal(joni.Fiscal.Balance))

	assert.True(t, dec("121").Equal(byPartner["Leo"].Fiscal.Income))

	franco := byPartner["Franco"]
	assert.True(t, franco.VAT.Balance.IsZero())
	assert.Equal(t, ledger.VATNeutral, franco.VAT.State)
	assert.Equal(t, 0, franco.Fiscal.IssuedCount)
	assert.NotContains(t, byPartner, entity.Partner("Desconocido"))
}

// TestBalanceByPartner_CoincideConFiltro: el reparto en una pasada da lo mismo que
// filtrar por socio uno por uno.
func TestBalanceByPartner_CoincideConFiltro(t *testing.T) {
	records := []*entity.InvoiceRecord{
		rec(entity.DirectionIssued, "210", "1210", partner("Hernán")),
		rec(entity.DirectionReceived, "10.5", "110.5", partner("Hernán"), noCash()),
		rec(entity.DirectionIssued, "0", "50", partner("Maxi"), cat(entity.CategoryC)),
		rec(entity.DirectionReceived, "21", "121", partner("Maxi"), issued(day(2023, time.January, 2))),
	}
	f := ledger.Filter{Start: day(2024, time.May, 1), End: day(2025, time.April, 30)}
	e := newEngine()

	byPartner, err := e.BalanceByPartner(records, f)
	require.NoError(t, err)
	for _, p := range entity.DefaultPartners {
		pf := f
		pf.Partner = p
		fiscal, err := e.BalanceFiscal(records, pf)
		require.NoError(t, err)
		assert.Equal(t, fiscal, byPartner[p].Fiscal, p)
	}
}

// TestBalanceByPartner_ErrorDeterminista: con registros mal formados de varios socios, el error
// nombra siempre al primero según el orden de la configuración.
func TestBalanceByPartner_ErrorDeterminista(t *testing.T) {
	broken := func(p entity.Partner, recordID string) *entity.InvoiceRecord {
		r := rec(entity.DirectionIssued, "21", "121", partner(p), id(recordID))
		r.TaxAmount = decimal.NullDecimal{}
		return r
	}
	records := []*entity.InvoiceRecord{
		broken("Franco", "f-1"),
		broken("Leo", "l-1"),
		broken("Joni", "j-1"),
	}
	e := newEngine()

	for i := 0; i < 50; i++ {
		_, err := e.BalanceByPartner(records, ledger.Filter{})
		var ie *domain.InputError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "j-1", ie.RecordID)
		assert.Contains(t, err.Error(), "socio Joni")
	}
}

// ── Ganancias e indicadores ───────────────────────────────────────────────────

func TestEstimateIncomeTax(t *testing.T) {
	rate := dec("35")

	est := ledger.EstimateIncomeTax(ledger.CashBalance{Balance: dec("1000")}, rate)
	assert.Equal(t, ledger.TaxPayable, est.State)
	assert.True(t, dec("350").Equal(est.Tax))
	assert.True(t, dec("1000").Equal(est.TaxableBase))

	for _, b := range []string{"0", "-500"} {
		est = ledger.EstimateIncomeTax(ledger.CashBalance{Balance: dec(b)}, rate)
		assert.Equal(t, ledger.TaxNoTaxableProfit, est.State, b)
		assert.True(t, est.Tax.IsZero(), b)
	}
}

func TestEngine_EstimateIncomeTaxUsaAlicuotaConfigurada(t *testing.T) {
	s := entity.DefaultFiscalSettings()
	s.IncomeTaxRate = dec("30")
	est := ledger.NewEngine(s).EstimateIncomeTax(ledger.CashBalance{Balance: dec("200")})
	assert.True(t, dec("60").Equal(est.Tax))
}

func TestComputeIndicators(t *testing.T) {
	realBal := ledger.CashBalance{Income: dec("1000"), Expense: dec("500"), Balance: dec("500"), Margin: dec("50")}
	fiscal := ledger.CashBalance{Income: dec("1500"), Expense: dec("600"), Balance: dec("900")}

	ind := ledger.ComputeIndicators(realBal, fiscal)
	assert.True(t, dec("50").Equal(ind.RealProfitability))
	assert.True(t, dec("2").Equal(ind.IncomeExpenseRatio))
	assert.True(t, dec("500").Equal(ind.NetProfit))
	assert.True(t, dec("900").Equal(ind.FiscalProfit))
	assert.True(t, dec("400").Equal(ind.RealFiscalGap))

	ind = ledger.ComputeIndicators(ledger.CashBalance{Income: dec("10")}, fiscal)
	assert.True(t, ind.IncomeExpenseRatio.IsZero())
}
