package service

import "github.com/shopspring/decimal"

// moneyScale is the number of minor-unit decimal places every derived
// monetary value is rounded to.
const moneyScale = 2

// roundMoney applies half-even (banker's) rounding at the currency's minor
// unit. Applied uniformly to item tax, item totals and every aggregate field
// so the invariants in the totals hold exactly.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(moneyScale)
}

var oneHundred = decimal.NewFromInt(100)

// taxFor derives the tax on a taxable amount at a percentage rate.
func taxFor(taxable, ratePercent decimal.Decimal) decimal.Decimal {
	return roundMoney(taxable.Mul(ratePercent).Div(oneHundred))
}
