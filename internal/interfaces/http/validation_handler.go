package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/opendoors/balance-dual/internal/application/dto"
	"github.com/opendoors/balance-dual/internal/domain/afip"
	"github.com/opendoors/balance-dual/internal/domain/coherence"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/opendoors/balance-dual/internal/domain/money"
)

// ValidationHandler validaciones de entrada de datos (CUIT, montos, coherencia).
type ValidationHandler struct {
	validator *coherence.Validator
}

// NewValidationHandler construye el handler.
func NewValidationHandler(validator *coherence.Validator) *ValidationHandler {
	return &ValidationHandler{validator: validator}
}

// CUIT POST /api/validation/cuit: valida un lote sin abortar ante el primer error.
func (h *ValidationHandler) CUIT(c *fiber.Ctx) error {
	var req dto.CUITValidationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo JSON inválido"})
	}
	if err := dto.Validate(req); err != nil {
		return writeError(c, err)
	}
	results := afip.ValidateTaxIDs(req.IDs)
	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	return c.JSON(fiber.Map{"results": results, "valid": valid, "invalid": len(results) - valid})
}

// Amounts POST /api/validation/amounts: normaliza cada monto y devuelve su forma canónica.
func (h *ValidationHandler) Amounts(c *fiber.Ctx) error {
	var req dto.AmountValidationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo JSON inválido"})
	}
	if err := dto.Validate(req); err != nil {
		return writeError(c, err)
	}
	results := make([]dto.AmountResult, 0, len(req.Amounts))
	for _, raw := range req.Amounts {
		res := dto.AmountResult{Input: raw}
		p, err := money.Parse(raw)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		value := p.Value
		res.Value = &value
		res.Notation = string(p.Notation)
		res.Formatted, res.Changed = money.Canonical(raw, p)
		results = append(results, res)
	}
	return c.JSON(fiber.Map{"results": results})
}

// Coherence POST /api/validation/coherence: verifica que subtotal + IVA + otros = total.
func (h *ValidationHandler) Coherence(c *fiber.Ctx) error {
	var req dto.CoherenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo JSON inválido"})
	}
	if err := dto.Validate(req); err != nil {
		return writeError(c, err)
	}

	rec := &entity.InvoiceRecord{ID: req.ID, Category: entity.Category(req.Category)}
	var err error
	if rec.Subtotal, err = parseAmount(req.Subtotal); err != nil {
		return writeError(c, err)
	}
	if rec.TaxAmount, err = parseAmount(req.TaxAmount); err != nil {
		return writeError(c, err)
	}
	if req.OtherTaxes != "" {
		if rec.OtherTaxes, err = parseAmount(req.OtherTaxes); err != nil {
			return writeError(c, err)
		}
	}
	if rec.Total, err = parseAmount(req.Total); err != nil {
		return writeError(c, err)
	}

	res, err := h.validator.Check(rec)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"coherence": res, "vat_rate": h.validator.CheckVATRate(rec)})
}

// SplitGross POST /api/validation/split-gross: separa un total con IVA incluido en neto + IVA.
func (h *ValidationHandler) SplitGross(c *fiber.Ctx) error {
	var req dto.SplitGrossRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo JSON inválido"})
	}
	if err := dto.Validate(req); err != nil {
		return writeError(c, err)
	}
	total, err := money.Normalize(req.Total)
	if err != nil {
		return writeError(c, err)
	}
	if req.Rate == "" {
		return c.JSON(h.validator.SplitGross(total))
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil || rate.IsNegative() {
		return writeError(c, &dto.ValidationError{Fields: []string{"rate"}})
	}
	return c.JSON(coherence.SplitGross(total, rate))
}

func parseAmount(raw string) (decimal.NullDecimal, error) {
	v, err := money.Normalize(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return entity.Amount(v), nil
}
