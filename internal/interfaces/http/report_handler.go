package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/opendoors/balance-dual/internal/application/dto"
	"github.com/opendoors/balance-dual/internal/application/report"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/opendoors/balance-dual/pkg/logger"
)

// ReportHandler endpoints de balances de la contabilidad dual.
type ReportHandler struct {
	svc *report.Service
	log *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *report.Service, log *logger.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, log: log}
}

func (h *ReportHandler) parseQuery(c *fiber.Ctx) (report.Query, error) {
	var q dto.BalanceQuery
	if err := c.QueryParser(&q); err != nil {
		return report.Query{}, &dto.ValidationError{Fields: []string{err.Error()}}
	}
	return q.ToQuery()
}

func (h *ReportHandler) fail(c *fiber.Ctx, err error) error {
	h.log.Warn().Err(err).Str("request_id", GetRequestID(c)).Str("path", c.Path()).Msg("report: petición rechazada")
	return writeError(c, err)
}

// BalanceVAT GET /api/reports/balance-iva: débito - crédito fiscal, solo comprobantes tipo A.
func (h *ReportHandler) BalanceVAT(c *fiber.Ctx) error {
	q, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.svc.VAT(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// BalanceReal GET /api/reports/balance-real
func (h *ReportHandler) BalanceReal(c *fiber.Ctx) error {
	q, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.svc.Real(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// BalanceFiscal GET /api/reports/balance-fiscal
func (h *ReportHandler) BalanceFiscal(c *fiber.Ctx) error {
	q, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.svc.Fiscal(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Comprehensive GET /api/reports/comprehensive-report. El ETag es el ID determinista del informe.
func (h *ReportHandler) Comprehensive(c *fiber.Ctx) error {
	q, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.svc.Comprehensive(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err)
	}
	etag := `"` + out.ID.String() + `"`
	if c.Get(fiber.HeaderIfNoneMatch) == etag {
		return c.SendStatus(fiber.StatusNotModified)
	}
	c.Set(fiber.HeaderETag, etag)
	return c.JSON(out)
}

// ByPartner GET /api/reports/balance-by-partner
func (h *ReportHandler) ByPartner(c *fiber.Ctx) error {
	q, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.svc.ByPartner(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// CompareYears GET /api/reports/compare-years?years=2024,2023
func (h *ReportHandler) CompareYears(c *fiber.Ctx) error {
	var q dto.CompareQuery
	if err := c.QueryParser(&q); err != nil {
		return h.fail(c, &dto.ValidationError{Fields: []string{err.Error()}})
	}
	years, err := q.ParseYears()
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.svc.CompareYears(c.UserContext(), entity.Partner(strings.TrimSpace(q.Partner)), years)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"reports": out})
}

// FiscalYears GET /api/reports/fiscal-years
func (h *ReportHandler) FiscalYears(c *fiber.Ctx) error {
	var q dto.FiscalYearsQuery
	if err := c.QueryParser(&q); err != nil {
		return h.fail(c, &dto.ValidationError{Fields: []string{err.Error()}})
	}
	if err := dto.Validate(q); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"fiscal_years": h.svc.FiscalYears(q.Limit)})
}

// Review GET /api/reports/review: registros que no cierran y requieren revisión manual.
func (h *ReportHandler) Review(c *fiber.Ctx) error {
	q, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	items, err := h.svc.Review(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

// Invalidate POST /api/reports/cache/invalidate
func (h *ReportHandler) Invalidate(c *fiber.Ctx) error {
	if err := h.svc.Invalidate(c.UserContext()); err != nil {
		h.log.Error().Err(err).Msg("report: invalidar caché")
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
