package calculation

import (
	"fmt"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// ValidateDeductions splits claimed deductions into valid and invalid sets. A deduction
// is valid when its type is on the allow-list and its amount is positive. Invalid items
// are reported, never silently dropped, and only their positive amounts count toward
// TotalInvalidAmount.
func ValidateDeductions(deductions []domain.Deduction) domain.DeductionValidation {
	result := domain.DeductionValidation{
		ValidDeductions:    []domain.Deduction{},
		InvalidDeductions:  []domain.InvalidDeduction{},
		TotalValidAmount:   decimal.Zero,
		TotalInvalidAmount: decimal.Zero,
	}

	for _, d := range deductions {
		var reason string
		switch {
		case !d.Type.IsAllowed():
			reason = fmt.Sprintf("unsupported deduction type %q", string(d.Type))
		case d.Amount.IsZero():
			reason = "amount must be greater than zero"
		case d.Amount.IsNegative():
			reason = "amount cannot be negative"
		}

		if reason == "" {
			result.ValidDeductions = append(result.ValidDeductions, d)
			result.TotalValidAmount = result.TotalValidAmount.Add(d.Amount)
			continue
		}

		result.InvalidDeductions = append(result.InvalidDeductions, domain.InvalidDeduction{Deduction: d, Reason: reason})
		if d.Amount.IsPositive() {
			result.TotalInvalidAmount = result.TotalInvalidAmount.Add(d.Amount)
		}
	}

	return result
}
