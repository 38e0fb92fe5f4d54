package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate aplica las etiquetas validate del DTO. Devuelve un error con un detalle por campo.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+": "+fe.Tag())
	}
	return &ValidationError{Fields: msgs}
}

// ValidationError errores de validación de un DTO, uno por campo.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "parámetros inválidos: " + strings.Join(e.Fields, ", ")
}
