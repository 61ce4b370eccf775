package calculation

import (
	"context"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/rates"
)

// LocalRateSource computes every component from a rate table snapshot. It never
// fails for a well-formed request; unlisted jurisdictions get the table default.
type LocalRateSource struct {
	Table *rates.Table
}

// NewLocalRateSource wraps a table snapshot
func NewLocalRateSource(table *rates.Table) LocalRateSource {
	return LocalRateSource{Table: table}
}

func (s LocalRateSource) FederalTax(_ context.Context, req domain.FederalRequest) (domain.RateOutcome, error) {
	ladder, err := s.Table.Ladder(req.FilingStatus)
	if err != nil {
		return domain.RateOutcome{}, &domain.SourceError{Op: domain.ComponentFederal, Kind: domain.SourceErrorMalformed, Err: err}
	}
	return domain.RateOutcome{
		Amount: BracketTax(req.TaxableIncome(), ladder),
		Rate:   MarginalRate(req.TaxableIncome(), ladder),
		Source: domain.SourceLocal,
	}, nil
}

func (s LocalRateSource) StateTax(_ context.Context, req domain.StateRequest) (domain.RateOutcome, error) {
	rate, found := s.Table.StateIncome.Lookup(req.State)
	return domain.RateOutcome{
		Amount:          FlatTax(req.Income, rate),
		Rate:            rate,
		Source:          domain.SourceLocal,
		DefaultRateUsed: !found,
	}, nil
}

func (s LocalRateSource) SalesTax(_ context.Context, req domain.SalesRequest) (domain.RateOutcome, error) {
	rate, found := s.Table.Sales.Lookup(req.State)
	return domain.RateOutcome{
		Amount:          FlatTax(req.Amount, rate),
		Rate:            rate,
		Source:          domain.SourceLocal,
		DefaultRateUsed: !found,
	}, nil
}
