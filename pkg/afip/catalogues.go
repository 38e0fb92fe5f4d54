// Package afip contiene catálogos y algoritmos públicos de AFIP (Argentina):
// dígito verificador de CUIT/CUIL y prefijos de tipo de contribuyente.
package afip

// =============================================================================
// Prefijos de CUIT/CUIL según tipo de persona.
// =============================================================================

const (
	PrefixMale          = "20" // persona humana, masculino
	PrefixDuplicate     = "23" // persona humana, prefijo alternativo por duplicado
	PrefixDuplicateMale = "24"
	PrefixTemporary     = "25"
	PrefixTemporaryAlt  = "26"
	PrefixFemale        = "27" // persona humana, femenino
	PrefixCompany       = "30" // persona jurídica
	PrefixCompanyDup    = "33"
	PrefixCompanyAlt    = "34"
)

// KnownPrefixes prefijos asignados por AFIP.
var KnownPrefixes = map[string]bool{
	PrefixMale:          true,
	PrefixDuplicate:     true,
	PrefixDuplicateMale: true,
	PrefixTemporary:     true,
	PrefixTemporaryAlt:  true,
	PrefixFemale:        true,
	PrefixCompany:       true,
	PrefixCompanyDup:    true,
	PrefixCompanyAlt:    true,
}

// HasKnownPrefix indica si los dos primeros dígitos corresponden a un prefijo asignado.
func HasKnownPrefix(taxID string) bool {
	digits := ExtractDigits(taxID)
	if len(digits) < 2 {
		return false
	}
	return KnownPrefixes[string(digits[:2])]
}
