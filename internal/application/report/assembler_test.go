package report_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendoors/balance-dual/internal/application/report"
	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/opendoors/balance-dual/internal/domain/ledger"
)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func fixedClock(t time.Time) report.Clock {
	return func() time.Time { return t }
}

func newRecord(id string, dir entity.Direction, cat entity.Category, tax, total string, date time.Time, partner entity.Partner, cash bool) *entity.InvoiceRecord {
	return &entity.InvoiceRecord{
		ID:           id,
		Direction:    dir,
		Category:     cat,
		CashMovement: cash,
		Subtotal:     entity.Amount(decimal.RequireFromString(total).Sub(decimal.RequireFromString(tax))),
		TaxAmount:    entity.MustAmount(tax),
		Total:        entity.MustAmount(total),
		IssueDate:    date,
		Partner:      partner,
		Status:       entity.StatusCompleted,
	}
}

func sampleRecords() []*entity.InvoiceRecord {
	may := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2024, time.December, 3, 0, 0, 0, 0, time.UTC)
	prev := time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)
	return []*entity.InvoiceRecord{
		newRecord("v1", entity.DirectionIssued, entity.CategoryA, "210", "1210", may, "Joni", true),
		newRecord("c1", entity.DirectionReceived, entity.CategoryA, "100", "600", dec, "Joni", true),
		newRecord("c2", entity.DirectionReceived, entity.CategoryC, "0", "200", dec, "Leo", true),
		newRecord("f1", entity.DirectionReceived, entity.CategoryA, "42", "242", dec, "Leo", false),
		newRecord("old", entity.DirectionIssued, entity.CategoryA, "999", "9999", prev, "Joni", true),
	}
}

func newAssembler(t *testing.T, now time.Time) *report.Assembler {
	t.Helper()
	a, err := report.NewAssembler(entity.DefaultFiscalSettings(), fixedClock(now))
	require.NoError(t, err)
	return a
}

// ── Build ─────────────────────────────────────────────────────────────────────

func TestBuild_AñoFiscalVigente(t *testing.T) {
	a := newAssembler(t, time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC))

	r, err := a.Build(sampleRecords(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, 2024, r.Period.FiscalYear)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), r.Period.Start)
	assert.Equal(t, time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC), r.Period.End)

	// IVA: 210 - (100 + 42) = 68
	assert.True(t, decimal.NewFromInt(68).Equal(r.VAT.Balance))
	assert.Equal(t, ledger.VATPayable, r.VAT.State)

	// Real: 1210 - (600 + 200) = 410; fiscal suma además 242.
	assert.True(t, decimal.NewFromInt(410).Equal(r.Real.Balance))
	assert.True(t, decimal.NewFromInt(168).Equal(r.Fiscal.Balance))

	// Ganancias 35% de 168.
	assert.Equal(t, ledger.TaxPayable, r.IncomeTax.State)
	assert.True(t, decimal.RequireFromString("58.8").Equal(r.IncomeTax.Tax))

	assert.True(t, decimal.NewFromInt(-242).Equal(r.Indicators.RealFiscalGap))
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC), r.GeneratedAt)
}

func TestBuild_AñoFiscalExplicitoYSocio(t *testing.T) {
	a := newAssembler(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	fy := 2023

	r, err := a.Build(sampleRecords(), "Joni", &fy)
	require.NoError(t, err)
	assert.Equal(t, 2023, r.Period.FiscalYear)
	assert.Equal(t, entity.Partner("Joni"), r.Partner)
	assert.True(t, decimal.NewFromInt(9999).Equal(r.Fiscal.Income))
	assert.Equal(t, 1, r.Fiscal.IssuedCount)
}

func TestBuild_Determinista(t *testing.T) {
	a := newAssembler(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	b := newAssembler(t, time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC))

	r1, err := a.Build(sampleRecords(), "", nil)
	require.NoError(t, err)
	r2, err := b.Build(sampleRecords(), "", nil)
	require.NoError(t, err)

	assert.NotEqual(t, r1.GeneratedAt, r2.GeneratedAt)
	assert.Equal(t, r1.ID, r2.ID)
	assert.True(t, report.Equal(r1, r2))
}

func TestBuild_DistintoContenidoDistintoID(t *testing.T) {
	a := newAssembler(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))

	r1, err := a.Build(sampleRecords(), "", nil)
	require.NoError(t, err)
	r2, err := a.Build(sampleRecords()[:2], "", nil)
	require.NoError(t, err)

	assert.NotEqual(t, r1.ID, r2.ID)
	assert.False(t, report.Equal(r1, r2))
}

func TestBuild_RegistroMalFormado(t *testing.T) {
	a := newAssembler(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	records := sampleRecords()
	records[1].IssueDate = time.Time{}

	_, err := a.Build(records, "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInput)
}

func TestNewAssembler_ConfiguracionInvalida(t *testing.T) {
	s := entity.DefaultFiscalSettings()
	s.StartMonth = 13
	_, err := report.NewAssembler(s, nil)
	assert.Error(t, err)
}

func TestEqual_Nil(t *testing.T) {
	assert.True(t, report.Equal(nil, nil))
	assert.False(t, report.Equal(nil, &report.ComprehensiveReport{}))
}
