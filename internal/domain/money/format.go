package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format presenta value en formato argentino canónico: "$1.234,56".
// Siempre 2 decimales (redondeo half-up solo en la presentación), punto cada 3 dígitos
// enteros y el signo delante del símbolo: "-$1.234,56".
func Format(value decimal.Decimal, withSymbol bool) string {
	r := value.Round(2)
	fixed := r.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if r.IsNegative() {
		b.WriteByte('-')
	}
	if withSymbol {
		b.WriteByte('$')
	}
	b.WriteString(groupThousands(intPart))
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// AutoCorrect reescribe raw en formato canónico. changed es false cuando raw ya estaba
// en ese formato (ignorando símbolo y espacios).
func AutoCorrect(raw string) (corrected string, changed bool, err error) {
	p, err := Parse(raw)
	if err != nil {
		return raw, false, err
	}
	corrected, changed = Canonical(raw, p)
	return corrected, changed, nil
}

// Canonical forma canónica de p, el resultado de Parse(raw), sin volver a interpretar raw.
func Canonical(raw string, p Parsed) (corrected string, changed bool) {
	corrected = Format(p.Value, true)
	return corrected, stripSymbol(raw) != stripSymbol(corrected)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func stripSymbol(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), " ", ""))
}
