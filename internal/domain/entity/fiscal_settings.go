package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultPartners socios de la sociedad (conjunto cerrado).
var DefaultPartners = []Partner{"Hernán", "Joni", "Maxi", "Leo", "Franco"}

// FiscalSettings configuración de la jurisdicción (Argentina por defecto).
// Se pasa explícitamente a cada punto de entrada; ningún valor está fijo en el código del motor.
type FiscalSettings struct {
	StartMonth              int             // mes de inicio del año fiscal (1-12), default 5 = mayo
	VATStandardRate         decimal.Decimal // IVA general, %
	VATReducedRate          decimal.Decimal // IVA reducido, %
	IncomeTaxRate           decimal.Decimal // impuesto a las ganancias, %
	CoherenceToleranceRatio decimal.Decimal // tolerancia relativa sobre el total (0.01 = 1%)
	CoherenceMinTolerance   decimal.Decimal // tolerancia absoluta cuando total == 0
	Partners                []Partner
}

// DefaultFiscalSettings valores de la normativa argentina.
func DefaultFiscalSettings() FiscalSettings {
	partners := make([]Partner, len(DefaultPartners))
	copy(partners, DefaultPartners)
	return FiscalSettings{
		StartMonth:              5,
		VATStandardRate:         decimal.RequireFromString("21.0"),
		VATReducedRate:          decimal.RequireFromString("10.5"),
		IncomeTaxRate:           decimal.RequireFromString("35.0"),
		CoherenceToleranceRatio: decimal.RequireFromString("0.01"),
		CoherenceMinTolerance:   decimal.NewFromInt(1),
		Partners:                partners,
	}
}

// Validate comprueba rangos básicos de la configuración.
func (s FiscalSettings) Validate() error {
	if s.StartMonth < 1 || s.StartMonth > 12 {
		return fmt.Errorf("fiscal: mes de inicio fuera de rango (1-12): %d", s.StartMonth)
	}
	rates := map[string]decimal.Decimal{
		"vat_standard_rate":         s.VATStandardRate,
		"vat_reduced_rate":          s.VATReducedRate,
		"income_tax_rate":           s.IncomeTaxRate,
		"coherence_tolerance_ratio": s.CoherenceToleranceRatio,
		"coherence_min_tolerance":   s.CoherenceMinTolerance,
	}
	for name, v := range rates {
		if v.IsNegative() {
			return fmt.Errorf("fiscal: %s no puede ser negativo: %s", name, v.String())
		}
	}
	seen := make(map[Partner]bool, len(s.Partners))
	for _, p := range s.Partners {
		if p == "" {
			return fmt.Errorf("fiscal: socio vacío en la lista de socios")
		}
		if seen[p] {
			return fmt.Errorf("fiscal: socio duplicado: %s", p)
		}
		seen[p] = true
	}
	return nil
}

// IsKnownPartner indica si p pertenece al conjunto configurado.
func (s FiscalSettings) IsKnownPartner(p Partner) bool {
	for _, known := range s.Partners {
		if known == p {
			return true
		}
	}
	return false
}
