// Package afip valida identificadores fiscales (CUIT/CUIL) como reglas de dominio,
// usando el algoritmo público de pkg/afip.
package afip

import (
	"strings"

	"github.com/opendoors/balance-dual/internal/domain"
	pkgafip "github.com/opendoors/balance-dual/pkg/afip"
)

// TaxID CUIT normalizado (11 dígitos, sin separadores).
type TaxID string

// Formatted devuelve el CUIT como XX-XXXXXXXX-X.
func (id TaxID) Formatted() string { return pkgafip.FormatCUIT(string(id)) }

// TaxIDResult resultado de validar un CUIT dentro de un lote.
type TaxIDResult struct {
	Input     string `json:"input"`
	TaxID     TaxID  `json:"tax_id,omitempty"`
	Formatted string `json:"formatted,omitempty"`
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
	// Warning: prefijo no asignado por AFIP. Informativo; no invalida un verificador correcto.
	Warning string `json:"warning,omitempty"`
}

// ValidateTaxID quita separadores (guion, punto, barra, espacios), exige 11 dígitos y
// recalcula el dígito verificador. Cualquier fallo es un *domain.FormatError.
func ValidateTaxID(raw string) (TaxID, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '.' || r == '/' || r == ' ' || r == '\t':
			continue
		default:
			return "", domain.NewFormatError("cuit", raw, "carácter no permitido "+string(r))
		}
	}
	digits := b.String()
	if len(digits) != pkgafip.CUITLength {
		return "", domain.NewFormatError("cuit", raw, "el CUIT debe tener 11 dígitos")
	}
	if err := pkgafip.ValidateCUITCheckDigit(digits); err != nil {
		return "", domain.NewFormatError("cuit", raw, err.Error())
	}
	return TaxID(digits), nil
}

// ValidateTaxIDs valida un lote completo sin abortar ante el primer error.
func ValidateTaxIDs(raws []string) []TaxIDResult {
	out := make([]TaxIDResult, 0, len(raws))
	for _, raw := range raws {
		res := TaxIDResult{Input: raw}
		id, err := ValidateTaxID(raw)
		if err != nil {
			res.Error = err.Error()
			out = append(out, res)
			continue
		}
		res.Valid = true
		res.TaxID = id
		res.Formatted = id.Formatted()
		if !pkgafip.HasKnownPrefix(string(id)) {
			res.Warning = "prefijo de CUIT no asignado por AFIP"
		}
		out = append(out, res)
	}
	return out
}
