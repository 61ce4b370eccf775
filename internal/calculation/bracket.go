package calculation

import (
	"github.com/rgehrsitz/taxcalc/internal/rates"
	"github.com/shopspring/decimal"
)

// BracketTax applies a progressive ladder to taxable income. Each bracket's rate
// applies only to the slice of income between the previous bound and its own.
// Negative income is treated as zero.
func BracketTax(taxableIncome decimal.Decimal, ladder []rates.Bracket) decimal.Decimal {
	if taxableIncome.Sign() <= 0 {
		return decimal.Zero
	}

	totalTax := decimal.Zero
	lower := decimal.Zero
	for _, bracket := range ladder {
		upper := taxableIncome
		if !bracket.Unbounded() && bracket.UpperBound.LessThan(taxableIncome) {
			upper = *bracket.UpperBound
		}
		if incomeInBracket := upper.Sub(lower); incomeInBracket.IsPositive() {
			totalTax = totalTax.Add(incomeInBracket.Mul(bracket.Rate))
		}
		if bracket.Unbounded() || !bracket.UpperBound.LessThan(taxableIncome) {
			break
		}
		lower = *bracket.UpperBound
	}

	return totalTax
}

// MarginalRate returns the rate of the bracket the last dollar of taxable income falls in
func MarginalRate(taxableIncome decimal.Decimal, ladder []rates.Bracket) decimal.Decimal {
	if len(ladder) == 0 {
		return decimal.Zero
	}
	for _, bracket := range ladder {
		if bracket.Unbounded() || taxableIncome.LessThanOrEqual(*bracket.UpperBound) {
			return bracket.Rate
		}
	}
	return ladder[len(ladder)-1].Rate
}

// FlatTax applies a single proportional rate. Negative amounts yield zero.
func FlatTax(amount, rate decimal.Decimal) decimal.Decimal {
	if amount.Sign() <= 0 {
		return decimal.Zero
	}
	return amount.Mul(rate)
}
