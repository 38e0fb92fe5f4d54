// Package money interpreta montos escritos con convenciones de separadores ambiguas
// (argentina 1.234,56 / inglesa 1,234.56) y los presenta en formato canónico argentino.
//
// Toda la heurística de detección vive en Parse para que la cobertura de casos de borde
// quede concentrada en un único lugar.
package money

import (
	"strings"
	"unicode"

	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Notation convención de separadores detectada.
type Notation string

const (
	NotationArgentine Notation = "argentine" // punto = miles, coma = decimales
	NotationEnglish   Notation = "english"   // coma = miles, punto = decimales
	NotationAmbiguous Notation = "ambiguous" // sin separadores o un único grupo de 3 dígitos
)

// Parsed resultado etiquetado de Parse.
type Parsed struct {
	Value    decimal.Decimal
	Notation Notation
}

// currencyCodes códigos de moneda que se descartan al inicio o al final del texto.
var currencyCodes = []string{"ARS", "USD", "EUR"}

// Normalize convierte un monto en texto a decimal exacto. Ver Parse.
func Normalize(raw string) (decimal.Decimal, error) {
	p, err := Parse(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return p.Value, nil
}

// Parse interpreta raw mirando el separador más a la derecha y los dígitos que lo siguen:
//   - 1 o 2 dígitos: ese separador es el decimal (coma → argentino, punto → inglés);
//   - exactamente 3 dígitos: ese separador es de miles y el monto es entero;
//   - 0 o más de 3 dígitos: formato inválido.
//
// Antes se aplica NFKC, se quitan "$", espacios y un código de moneda (ARS, USD, EUR).
// Cualquier entrada que no encaje devuelve *domain.FormatError; nunca se asume cero.
func Parse(raw string) (Parsed, error) {
	s := clean(raw)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return Parsed{}, domain.NewFormatError("amount", raw, "monto vacío")
	}
	for _, r := range s {
		if !isDigit(r) && r != '.' && r != ',' {
			return Parsed{}, domain.NewFormatError("amount", raw, "carácter no permitido "+string(r))
		}
	}
	if !isDigit(rune(s[0])) {
		return Parsed{}, domain.NewFormatError("amount", raw, "falta la parte entera")
	}

	var digits string
	notation := NotationAmbiguous

	last := strings.LastIndexAny(s, ".,")
	if last < 0 {
		digits = s
	} else {
		sep := s[last]
		other := byte('.')
		if sep == '.' {
			other = ','
		}
		frac := s[last+1:]
		switch {
		case len(frac) == 0:
			return Parsed{}, domain.NewFormatError("amount", raw, "separador final sin dígitos")

		case len(frac) <= 2:
			// Separador decimal; el otro carácter solo puede ser de miles.
			intPart := s[:last]
			if strings.IndexByte(intPart, sep) >= 0 {
				return Parsed{}, domain.NewFormatError("amount", raw, "separador decimal repetido")
			}
			whole, ok := ungroup(intPart, other)
			if !ok {
				return Parsed{}, domain.NewFormatError("amount", raw, "agrupación de miles inválida")
			}
			digits = whole + "." + frac
			if sep == ',' {
				notation = NotationArgentine
			} else {
				notation = NotationEnglish
			}

		case len(frac) == 3:
			// Separador de miles; no puede convivir con el otro carácter.
			if strings.IndexByte(s, other) >= 0 {
				return Parsed{}, domain.NewFormatError("amount", raw, "separadores de miles mezclados")
			}
			whole, ok := ungroup(s, sep)
			if !ok {
				return Parsed{}, domain.NewFormatError("amount", raw, "agrupación de miles inválida")
			}
			digits = whole
			switch {
			case strings.Count(s, string(sep)) == 1:
				notation = NotationAmbiguous
			case sep == '.':
				notation = NotationArgentine
			default:
				notation = NotationEnglish
			}

		default:
			return Parsed{}, domain.NewFormatError("amount", raw, "más de tres dígitos tras el último separador")
		}
	}

	value, err := decimal.NewFromString(digits)
	if err != nil {
		return Parsed{}, domain.NewFormatError("amount", raw, err.Error())
	}
	if neg {
		value = value.Neg()
	}
	return Parsed{Value: value, Notation: notation}, nil
}

// clean aplica NFKC (NBSP y dígitos de ancho completo) y descarta símbolo, espacios y código de moneda.
func clean(raw string) string {
	s := norm.NFKC.String(raw)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '$' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()
	for _, code := range currencyCodes {
		n := len(code)
		if len(s) >= n && strings.EqualFold(s[:n], code) {
			return s[n:]
		}
		if len(s) >= n && strings.EqualFold(s[len(s)-n:], code) {
			return s[:len(s)-n]
		}
	}
	return s
}

// ungroup quita los separadores de miles validando grupos: el primero de 1 a 3 dígitos y
// los siguientes de exactamente 3. Sin separadores acepta cualquier cantidad de dígitos.
func ungroup(part string, sep byte) (string, bool) {
	if part == "" {
		return "", false
	}
	groups := strings.Split(part, string(sep))
	if len(groups) == 1 {
		return part, allDigits(part)
	}
	for i, g := range groups {
		if !allDigits(g) {
			return "", false
		}
		if i == 0 && (len(g) < 1 || len(g) > 3) {
			return "", false
		}
		if i > 0 && len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
