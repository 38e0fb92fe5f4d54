package ledger

import (
	"time"

	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Filter filtros opcionales de un balance. Los valores cero significan "sin filtro".
// Start y End forman un intervalo cerrado sobre la fecha de emisión (solo se compara el día).
type Filter struct {
	Partner entity.Partner
	Start   time.Time
	End     time.Time
}

// HasDateRange indica si se pidió al menos un límite de fecha.
func (f Filter) HasDateRange() bool {
	return !f.Start.IsZero() || !f.End.IsZero()
}

// VATState estado de la posición de IVA.
type VATState string

const (
	VATPayable  VATState = "payable"   // débito > crédito: hay que pagar
	VATInCredit VATState = "in_credit" // crédito > débito: saldo a favor
	VATNeutral  VATState = "neutral"
)

// VATBalance posición de IVA (débito fiscal - crédito fiscal). Solo comprobantes tipo A.
type VATBalance struct {
	TaxCollected   decimal.Decimal `json:"tax_collected"` // IVA débito (emitidas)
	TaxPaid        decimal.Decimal `json:"tax_paid"`      // IVA crédito (recibidas)
	Balance        decimal.Decimal `json:"balance"`
	State          VATState        `json:"state"`
	IssuedCount    int             `json:"issued_count"`
	ReceivedCount  int             `json:"received_count"`
	AmountPayable  decimal.Decimal `json:"amount_payable"`
	AmountInCredit decimal.Decimal `json:"amount_in_credit"`
}

// Kind tipo de balance de caja.
type Kind string

const (
	KindReal   Kind = "real"
	KindFiscal Kind = "fiscal"
)

// CashBalance ingresos y egresos por total facturado.
type CashBalance struct {
	Kind          Kind            `json:"kind"`
	Income        decimal.Decimal `json:"income"`
	Expense       decimal.Decimal `json:"expense"`
	Balance       decimal.Decimal `json:"balance"`
	Margin        decimal.Decimal `json:"margin"` // balance / income * 100; 0 sin ingresos
	IssuedCount   int             `json:"issued_count"`
	ReceivedCount int             `json:"received_count"`
}

// PartnerBalances los tres balances de un socio.
type PartnerBalances struct {
	VAT    VATBalance  `json:"vat"`
	Real   CashBalance `json:"real"`
	Fiscal CashBalance `json:"fiscal"`
}

// TaxState estado de la estimación de ganancias.
type TaxState string

const (
	TaxNoTaxableProfit TaxState = "no_taxable_profit"
	TaxPayable         TaxState = "payable"
)

// TaxEstimate estimación del impuesto a las ganancias sobre el balance fiscal.
type TaxEstimate struct {
	TaxableBase decimal.Decimal `json:"taxable_base"`
	Rate        decimal.Decimal `json:"rate"`
	Tax         decimal.Decimal `json:"tax"`
	State       TaxState        `json:"state"`
}

// Indicators indicadores derivados de los balances real y fiscal.
type Indicators struct {
	RealProfitability  decimal.Decimal `json:"real_profitability"`   // margen real, %
	IncomeExpenseRatio decimal.Decimal `json:"income_expense_ratio"` // ingresos reales / egresos reales
	NetProfit          decimal.Decimal `json:"net_profit"`           // balance real
	FiscalProfit       decimal.Decimal `json:"fiscal_profit"`        // balance fiscal
	RealFiscalGap      decimal.Decimal `json:"real_fiscal_gap"`      // fiscal - real
}
