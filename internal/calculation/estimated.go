package calculation

import (
	"context"
	"errors"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// EstimateQuarterly derives quarterly estimated payments from the annual liability of
// a return with no deductions. state is optional; when empty only federal tax counts.
// The annual figure and the due dates come from the same rate table snapshot.
func (e *TaxEngine) EstimateQuarterly(ctx context.Context, income decimal.Decimal, status domain.FilingStatus, state string) (*domain.EstimatedTaxSchedule, error) {
	if e.Rates == nil {
		return nil, errors.New("tax engine has no rate store")
	}
	table := e.Rates.Current()

	result, err := e.calculate(ctx, domain.TaxFormInput{
		Income:       income,
		FilingStatus: status,
		State:        state,
	}, table)
	if err != nil {
		return nil, err
	}

	return &domain.EstimatedTaxSchedule{
		TaxYear:         table.TaxYear,
		FilingStatus:    result.FilingStatus,
		AnnualAmount:    result.TotalTax,
		QuarterlyAmount: result.TotalTax.Div(decimal.NewFromInt(4)).Round(2),
		DueDates:        table.DueDates(),
	}, nil
}
