package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/opendoors/balance-dual/internal/domain/money"
)

// recordFile una factura tal como llega en el archivo JSON: los montos son texto con
// separadores locales ("1.234,56" o "1,234.56"); "" = monto faltante.
type recordFile struct {
	ID            string `json:"id"`
	Direction     string `json:"direction"`
	Category      string `json:"category"`
	CashMovement  *bool  `json:"cash_movement"` // ausente = true
	TaxOnlyOffset bool   `json:"is_tax_only_offset"`
	Subtotal      string `json:"subtotal"`
	TaxAmount     string `json:"tax_amount"`
	OtherTaxes    string `json:"other_taxes"`
	Total         string `json:"total"`
	IssueDate     string `json:"issue_date"` // YYYY-MM-DD
	Partner       string `json:"partner"`
	Deleted       bool   `json:"is_deleted"`
	Status        string `json:"status"` // ausente = completed
}

// LoadRecordsFile lee un archivo JSON con un arreglo de facturas.
func LoadRecordsFile(path string) ([]*entity.InvoiceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()
	return LoadRecords(f)
}

// LoadRecords decodifica y normaliza las facturas. Junta todos los campos inválidos en un
// único error (errors.Join) en lugar de cortar en el primero.
func LoadRecords(r io.Reader) ([]*entity.InvoiceRecord, error) {
	var raw []recordFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decodificar registros: %w", err)
	}

	out := make([]*entity.InvoiceRecord, 0, len(raw))
	var errs []error
	for i, rf := range raw {
		rec, recErrs := rf.toEntity(i)
		errs = append(errs, recErrs...)
		out = append(out, rec)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func (rf recordFile) toEntity(index int) (*entity.InvoiceRecord, []error) {
	id := rf.ID
	if id == "" {
		id = fmt.Sprintf("#%d", index+1)
	}
	rec := &entity.InvoiceRecord{
		ID:            id,
		Direction:     entity.Direction(strings.ToLower(strings.TrimSpace(rf.Direction))),
		Category:      entity.Category(strings.ToUpper(strings.TrimSpace(rf.Category))),
		CashMovement:  rf.CashMovement == nil || *rf.CashMovement,
		TaxOnlyOffset: rf.TaxOnlyOffset,
		Partner:       entity.Partner(strings.TrimSpace(rf.Partner)),
		SoftDeleted:   rf.Deleted,
		Status:        strings.TrimSpace(rf.Status),
	}
	if rec.Status == "" {
		rec.Status = entity.StatusCompleted
	}

	var errs []error
	wrap := func(err error) { errs = append(errs, fmt.Errorf("registro %s: %w", id, err)) }

	if rec.Direction != entity.DirectionIssued && rec.Direction != entity.DirectionReceived {
		wrap(domain.NewInputError(id, "direction", "debe ser issued o received"))
	}
	if !entity.ValidCategories[rec.Category] {
		wrap(domain.NewInputError(id, "category", "debe ser A, B, C o X"))
	}

	amounts := []struct {
		field string
		raw   string
		dst   *decimal.NullDecimal
	}{
		{"subtotal", rf.Subtotal, &rec.Subtotal},
		{"tax_amount", rf.TaxAmount, &rec.TaxAmount},
		{"other_taxes", rf.OtherTaxes, &rec.OtherTaxes},
		{"total", rf.Total, &rec.Total},
	}
	for _, a := range amounts {
		if strings.TrimSpace(a.raw) == "" {
			continue
		}
		v, err := money.Normalize(a.raw)
		if err != nil {
			wrap(fmt.Errorf("%s: %w", a.field, err))
			continue
		}
		*a.dst = entity.Amount(v)
	}

	if d := strings.TrimSpace(rf.IssueDate); d != "" {
		t, err := time.Parse(time.DateOnly, d)
		if err != nil {
			wrap(domain.NewFormatError("issue_date", d, "se espera YYYY-MM-DD"))
		} else {
			rec.IssueDate = t
		}
	}
	return rec, errs
}
