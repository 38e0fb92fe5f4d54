package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/opendoors/balance-dual/internal/domain/afip"
	pkgafip "github.com/opendoors/balance-dual/pkg/afip"
)

// CUITs válidos calculados a mano con los multiplicadores 5,4,3,2,7,6,5,4,3,2:
//   - 33-69345023-9: suma 145, 145 mod 11 = 2 → 9
//   - 20-12345678-6: suma 148, 148 mod 11 = 5 → 6
//   - 30-71234567-1: suma 142, 142 mod 11 = 10 → 1
//   - 20-00000006-0: suma 22,  22 mod 11 = 0  → 11 → 0
//   - 20-00000001-9: suma 12,  12 mod 11 = 1  → 10 → 9
var validCUITs = []string{
	"33-69345023-9",
	"20-12345678-6",
	"30-71234567-1",
	"20000000060",
	"20 00000001 9",
}

func TestValidateTaxID_Validos(t *testing.T) {
	for _, raw := range validCUITs {
		t.Run(raw, func(t *testing.T) {
			id, err := afip.ValidateTaxID(raw)
			require.NoError(t, err)
			assert.Len(t, string(id), 11)
			assert.Equal(t, pkgafip.FormatCUIT(string(id)), id.Formatted())
		})
	}
}

// TestValidateTaxID_MutacionUltimoDigito: cualquier cambio del dígito verificador se rechaza.
func TestValidateTaxID_MutacionUltimoDigito(t *testing.T) {
	for _, raw := range validCUITs {
		digits := string(pkgafip.ExtractDigits(raw))
		for d := byte('0'); d <= '9'; d++ {
			if d == digits[10] {
				continue
			}
			mutated := digits[:10] + string(d)
			_, err := afip.ValidateTaxID(mutated)
			assert.ErrorIs(t, err, domain.ErrFormat, "mutación %s debe rechazarse", mutated)
		}
	}
}

func TestValidateTaxID_Formato(t *testing.T) {
	cases := map[string]string{
		"corto":            "20-1234567-6",
		"largo":            "20-123456789-6",
		"letras":           "20-1234567A-6",
		"vacío":            "",
		"solo separadores": "--",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := afip.ValidateTaxID(raw)
			assert.ErrorIs(t, err, domain.ErrFormat)
		})
	}
}

// TestValidateTaxIDs_ColectaTodo: un lote con errores no aborta y conserva el orden.
func TestValidateTaxIDs_ColectaTodo(t *testing.T) {
	results := afip.ValidateTaxIDs([]string{"33-69345023-9", "33-69345023-0", "abc", "11-11111111-1"})
	require.Len(t, results, 4)

	assert.True(t, results[0].Valid)
	assert.Equal(t, "33-69345023-9", results[0].Formatted)
	assert.Empty(t, results[0].Warning)

	assert.False(t, results[1].Valid)
	assert.NotEmpty(t, results[1].Error)

	assert.False(t, results[2].Valid)

	// 11-11111111-1: suma 41, 41 mod 11 = 8 → 3; el verificador 1 es incorrecto.
	assert.False(t, results[3].Valid)
}

func TestValidateTaxIDs_PrefijoDesconocidoEsAdvertencia(t *testing.T) {
	// 11-11111111-3 tiene verificador correcto pero prefijo no asignado.
	results := afip.ValidateTaxIDs([]string{"11-11111111-3"})
	require.Len(t, results, 1)
	assert.True(t, results[0].Valid)
	assert.NotEmpty(t, results[0].Warning)
}
