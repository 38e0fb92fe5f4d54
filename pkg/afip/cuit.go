package afip

import (
	"fmt"
	"unicode"
)

// pesos para el cálculo del dígito verificador del CUIT/CUIL (algoritmo módulo 11 de AFIP).
// Se aplican a los 10 primeros dígitos, de izquierda a derecha.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// CUITLength cantidad de dígitos de un CUIT completo.
const CUITLength = 11

// ComputeCUITCheckDigit calcula el dígito verificador a partir de los 10 primeros dígitos.
// Verificador = 11 - (suma mod 11); 11 se mapea a 0 y 10 a 9.
func ComputeCUITCheckDigit(taxID string) (byte, error) {
	digits := ExtractDigits(taxID)
	if len(digits) < CUITLength-1 {
		return 0, fmt.Errorf("afip: se requieren al menos 10 dígitos para calcular el verificador, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:CUITLength-1] {
		sum += int(d-'0') * cuitWeights[i]
	}
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		check = 9
	}
	return byte('0' + check), nil
}

// ValidateCUITCheckDigit valida que el CUIT (con o sin guiones) tenga 11 dígitos y
// un dígito verificador correcto.
func ValidateCUITCheckDigit(taxID string) error {
	digits := ExtractDigits(taxID)
	if len(digits) != CUITLength {
		return fmt.Errorf("afip: el CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	expected, err := ComputeCUITCheckDigit(string(digits))
	if err != nil {
		return err
	}
	if digits[CUITLength-1] != expected {
		return fmt.Errorf("afip: dígito verificador del CUIT inválido: esperado %c, recibido %c", expected, digits[CUITLength-1])
	}
	return nil
}

// FormatCUIT devuelve el CUIT en formato XX-XXXXXXXX-X. Si no tiene 11 dígitos lo devuelve sin cambios.
func FormatCUIT(taxID string) string {
	digits := ExtractDigits(taxID)
	if len(digits) != CUITLength {
		return taxID
	}
	s := string(digits)
	return s[:2] + "-" + s[2:10] + "-" + s[10:]
}

// ExtractDigits devuelve solo los dígitos ASCII de s.
func ExtractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			out = append(out, byte(r))
		}
	}
	return out
}
