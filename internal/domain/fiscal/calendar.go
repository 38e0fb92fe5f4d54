// Package fiscal resuelve el año fiscal de la jurisdicción. En Argentina la sociedad cierra
// en abril: el año fiscal 2024 va de mayo 2024 a abril 2025. El mes de inicio es configuración.
package fiscal

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultStartMonth mes de inicio por defecto (mayo).
const DefaultStartMonth = 5

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Year ventana de un año fiscal. Start y End son fechas a medianoche UTC, ambas inclusive.
type Year struct {
	Label       int       `json:"fiscal_year"`
	Start       time.Time `json:"start_date"`
	End         time.Time `json:"end_date"`
	IsCurrent   bool      `json:"is_current"`
	Description string    `json:"label"` // ej. "2024 (Mayo 2024 - Abril 2025)"
}

// Contains indica si la fecha (solo día) cae dentro de la ventana cerrada [Start, End].
func (y Year) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(y.Start) && !d.After(y.End)
}

// Calendar calcula años fiscales a partir de un mes de inicio.
type Calendar struct {
	startMonth time.Month
}

// NewCalendar construye el calendario; startMonth debe estar entre 1 y 12.
func NewCalendar(startMonth int) (Calendar, error) {
	if startMonth < 1 || startMonth > 12 {
		return Calendar{}, fmt.Errorf("fiscal: mes de inicio fuera de rango (1-12): %d", startMonth)
	}
	return Calendar{startMonth: time.Month(startMonth)}, nil
}

// StartMonth mes de inicio configurado.
func (c Calendar) StartMonth() int { return int(c.startMonth) }

// Resolve devuelve el año fiscal que contiene date. Si date.Month() >= mes de inicio la
// etiqueta es date.Year(); si no, date.Year()-1.
func (c Calendar) Resolve(date time.Time) Year {
	label := date.Year()
	if date.Month() < c.startMonth {
		label--
	}
	return c.ForLabel(label)
}

// ForLabel devuelve la ventana del año fiscal con esa etiqueta:
// [día 1 del mes de inicio de label, último día del mes anterior de label+1].
func (c Calendar) ForLabel(label int) Year {
	start := time.Date(label, c.startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, -1)
	return Year{
		Label:       label,
		Start:       start,
		End:         end,
		Description: describe(label, start, end),
	}
}

// Current año fiscal vigente en now, marcado como actual.
func (c Calendar) Current(now time.Time) Year {
	y := c.Resolve(now)
	y.IsCurrent = true
	return y
}

// ListRecent devuelve el año fiscal actual y los n-1 anteriores, del más reciente al más antiguo.
func (c Calendar) ListRecent(now time.Time, n int) []Year {
	if n <= 0 {
		return []Year{}
	}
	current := c.Resolve(now)
	years := make([]Year, 0, n)
	for i := 0; i < n; i++ {
		y := c.ForLabel(current.Label - i)
		y.IsCurrent = i == 0
		years = append(years, y)
	}
	return years
}

// DateOf trunca t a su fecha civil (medianoche UTC), ignorando hora y zona.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// describe arma la etiqueta legible. cases.Caser guarda estado: se crea uno por llamada.
func describe(label int, start, end time.Time) string {
	titleES := cases.Title(language.Spanish)
	return fmt.Sprintf("%d (%s %d - %s %d)",
		label,
		titleES.String(monthNames[start.Month()-1]), start.Year(),
		titleES.String(monthNames[end.Month()-1]), end.Year(),
	)
}
