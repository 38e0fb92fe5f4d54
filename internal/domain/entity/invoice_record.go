package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction indica si la factura fue emitida (venta) o recibida (compra).
type Direction string

const (
	DirectionIssued   Direction = "issued"   // emitida: ingreso / IVA débito fiscal
	DirectionReceived Direction = "received" // recibida: egreso / IVA crédito fiscal
)

// Category tipo de comprobante AFIP. Solo "A" discrimina IVA.
type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
	CategoryX Category = "X"
)

// ValidCategories tipos de comprobante aceptados.
var ValidCategories = map[Category]bool{
	CategoryA: true,
	CategoryB: true,
	CategoryC: true,
	CategoryX: true,
}

// Estados del flujo de carga/aprobación. Solo StatusCompleted es visible para los balances.
const (
	StatusCompleted   = "completed"
	StatusPending     = "pending"
	StatusProcessing  = "processing"
	StatusError       = "error"
	StatusNeedsReview = "needs_review"
)

// Partner identificador de socio responsable ("" = sin asignar).
type Partner string

// InvoiceRecord es la instantánea de solo lectura que consume el motor de balances.
// La crean y modifican colaboradores externos (carga, aprobación); el motor nunca la muta.
//
// Los montos son decimal.NullDecimal: Valid=false representa un campo que falló la
// normalización aguas arriba y llegó como "None".
type InvoiceRecord struct {
	ID            string
	Direction     Direction
	Category      Category
	CashMovement  bool // true si hubo movimiento real en la cuenta bancaria
	TaxOnlyOffset bool // true si solo existe para computar crédito fiscal de IVA
	Subtotal      decimal.NullDecimal
	TaxAmount     decimal.NullDecimal
	OtherTaxes    decimal.NullDecimal // nulo equivale a cero
	Total         decimal.NullDecimal
	IssueDate     time.Time // zero = sin fecha de emisión
	Partner       Partner
	SoftDeleted   bool
	Status        string
}

// IsCompleted indica si el registro terminó el flujo de aprobación.
func (r *InvoiceRecord) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// HasIssueDate indica si el registro tiene fecha de emisión.
func (r *InvoiceRecord) HasIssueDate() bool {
	return !r.IssueDate.IsZero()
}

// OtherTaxesOrZero devuelve OtherTaxes o cero si es nulo.
func (r *InvoiceRecord) OtherTaxesOrZero() decimal.Decimal {
	if r.OtherTaxes.Valid {
		return r.OtherTaxes.Decimal
	}
	return decimal.Zero
}

// Amount envuelve un decimal válido en NullDecimal.
func Amount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// MustAmount parsea un literal canónico ("1210.00"); entra en pánico si es inválido.
// Pensado para fixtures y tests.
func MustAmount(s string) decimal.NullDecimal {
	return Amount(decimal.RequireFromString(s))
}
