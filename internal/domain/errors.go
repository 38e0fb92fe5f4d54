package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	// ErrFormat: un monto o CUIT no se pudo interpretar con ninguna convención reconocida.
	ErrFormat = errors.New("formato inválido")
	// ErrInput: precondición violada por un registro (p. ej. falta issue_date con filtro de fechas).
	ErrInput = errors.New("registro mal formado")
)

// FormatError describe un valor rechazado por el normalizador de montos o de CUIT.
// Nunca se convierte en cero de forma silenciosa: el llamador lo muestra como ítem de revisión.
type FormatError struct {
	Field  string // "amount", "cuit", "subtotal", ...
	Value  string // valor crudo recibido
	Reason string
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %q: %s", ErrFormat, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrFormat, e.Field, e.Value, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// InputError es fatal para un único cálculo; no afecta a otras llamadas.
type InputError struct {
	RecordID string
	Field    string
	Reason   string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: registro %q, campo %s: %s", ErrInput, e.RecordID, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInput }

// NewFormatError atajo para construir un *FormatError.
func NewFormatError(field, value, reason string) *FormatError {
	return &FormatError{Field: field, Value: value, Reason: reason}
}

// NewInputError atajo para construir un *InputError.
func NewInputError(recordID, field, reason string) *InputError {
	return &InputError{RecordID: recordID, Field: field, Reason: reason}
}
