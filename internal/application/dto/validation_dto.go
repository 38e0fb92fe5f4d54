package dto

import "github.com/shopspring/decimal"

// CUITValidationRequest lote de CUITs a validar.
type CUITValidationRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500"`
}

// AmountValidationRequest lote de montos en texto a normalizar.
type AmountValidationRequest struct {
	Amounts []string `json:"amounts" validate:"required,min=1,max=500"`
}

// AmountResult resultado de normalizar un monto.
type AmountResult struct {
	Input     string           `json:"input"`
	Value     *decimal.Decimal `json:"value,omitempty"`
	Formatted string           `json:"formatted,omitempty"` // formato canónico "$1.234,56"
	Notation  string           `json:"notation,omitempty"`
	Changed   bool             `json:"changed"` // true si el texto no estaba en formato canónico
	Error     string           `json:"error,omitempty"`
}

// SplitGrossRequest total con IVA incluido a separar. Rate vacío = alícuota general.
type SplitGrossRequest struct {
	Total string `json:"total" validate:"required"`
	Rate  string `json:"rate" validate:"omitempty,numeric"`
}

// CoherenceRequest montos de una factura para verificar coherencia.
type CoherenceRequest struct {
	ID         string `json:"id"`
	Category   string `json:"category" validate:"omitempty,oneof=A B C X"`
	Subtotal   string `json:"subtotal" validate:"required"`
	TaxAmount  string `json:"tax_amount" validate:"required"`
	OtherTaxes string `json:"other_taxes"`
	Total      string `json:"total" validate:"required"`
}
