package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opendoors/balance-dual/internal/application/report"
	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/opendoors/balance-dual/internal/domain/entity"
)

// BalanceQuery parámetros de consulta de los balances.
// start_date / end_date (YYYY-MM-DD) tienen prioridad sobre fiscal_year.
type BalanceQuery struct {
	Partner    string `query:"partner" validate:"omitempty,max=64"`
	FiscalYear string `query:"fiscal_year" validate:"omitempty,number,len=4"`
	StartDate  string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// ToQuery valida y convierte los parámetros a report.Query.
func (q BalanceQuery) ToQuery() (report.Query, error) {
	if err := Validate(q); err != nil {
		return report.Query{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	out := report.Query{Partner: entity.Partner(strings.TrimSpace(q.Partner))}

	fy, err := q.Year()
	if err != nil {
		return report.Query{}, err
	}
	out.FiscalYear = fy

	if q.StartDate != "" {
		out.Start, _ = time.Parse(time.DateOnly, q.StartDate)
	}
	if q.EndDate != "" {
		out.End, _ = time.Parse(time.DateOnly, q.EndDate)
	}
	if !out.Start.IsZero() && !out.End.IsZero() && out.End.Before(out.Start) {
		return report.Query{}, fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
	}
	return out, nil
}

// Year año fiscal pedido o nil.
func (q BalanceQuery) Year() (*int, error) {
	if q.FiscalYear == "" {
		return nil, nil
	}
	fy, err := strconv.Atoi(q.FiscalYear)
	if err != nil {
		return nil, fmt.Errorf("%w: fiscal_year %q", domain.ErrInvalidInput, q.FiscalYear)
	}
	return &fy, nil
}

// FiscalYearsQuery parámetros de /fiscal-years.
type FiscalYearsQuery struct {
	Limit int `query:"limit" validate:"min=0,max=20"`
}

// CompareQuery parámetros de /compare-years: years="2024,2023".
type CompareQuery struct {
	Partner string `query:"partner" validate:"omitempty,max=64"`
	Years   string `query:"years" validate:"required"`
}

// ParseYears lista de años fiscales.
func (q CompareQuery) ParseYears() ([]int, error) {
	if err := Validate(q); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	var years []int
	for _, raw := range strings.Split(q.Years, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		y, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: año fiscal %q", domain.ErrInvalidInput, raw)
		}
		years = append(years, y)
	}
	return years, nil
}
