package domain

import "github.com/shopspring/decimal"

// maxMoney is the exclusive bound of a NUMERIC(12,2) column.
var maxMoney = decimal.New(1, 10)

// FitsMoneyColumn reports whether d is stored exactly by a NUMERIC(12,2)
// column: at most two fractional digits and ten integer digits.
func FitsMoneyColumn(d decimal.Decimal) bool {
	return d.Equal(d.Round(2)) && d.Abs().LessThan(maxMoney)
}
