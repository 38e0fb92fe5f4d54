package ledger

import "github.com/shopspring/decimal"

// ComputeIndicators indicadores financieros a partir de los balances real y fiscal.
func ComputeIndicators(realBal, fiscal CashBalance) Indicators {
	ratio := decimal.Zero
	if !realBal.Expense.IsZero() {
		ratio = realBal.Income.Div(realBal.Expense)
	}
	return Indicators{
		RealProfitability:  realBal.Margin,
		IncomeExpenseRatio: ratio,
		NetProfit:          realBal.Balance,
		FiscalProfit:       fiscal.Balance,
		RealFiscalGap:      fiscal.Balance.Sub(realBal.Balance),
	}
}
