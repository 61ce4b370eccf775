package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source names reported in RateOutcome.Source
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// FederalRequest asks a source for federal income tax
type FederalRequest struct {
	Income       decimal.Decimal `json:"income"`
	Deductions   decimal.Decimal `json:"deductions"`
	FilingStatus FilingStatus    `json:"filingStatus"`
	TaxYear      int             `json:"taxYear"`
}

// TaxableIncome returns income less deductions, floored at zero
func (r FederalRequest) TaxableIncome() decimal.Decimal {
	taxable := r.Income.Sub(r.Deductions)
	if taxable.IsNegative() {
		return decimal.Zero
	}
	return taxable
}

// StateRequest asks a source for state income tax on gross income
type StateRequest struct {
	Income       decimal.Decimal `json:"income"`
	State        string          `json:"state"`
	FilingStatus FilingStatus    `json:"filingStatus"`
	TaxYear      int             `json:"taxYear"`
}

// SalesRequest asks a source for sales tax on a sale amount
type SalesRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	State   string          `json:"state"`
	TaxYear int             `json:"taxYear"`
}

// RateOutcome is a single computed tax component
type RateOutcome struct {
	Amount decimal.Decimal
	// Rate is the flat rate applied, zero for bracket computations or when the
	// remote source did not report one.
	Rate            decimal.Decimal
	Source          string
	DefaultRateUsed bool
}

//go:generate mockgen -destination=../mocks/mock_rate_source.go -package=mocks github.com/rgehrsitz/taxcalc/internal/domain RateSource

// RateSource computes tax components. Implementations return a *SourceError
// when they cannot produce an outcome.
type RateSource interface {
	FederalTax(ctx context.Context, req FederalRequest) (RateOutcome, error)
	StateTax(ctx context.Context, req StateRequest) (RateOutcome, error)
	SalesTax(ctx context.Context, req SalesRequest) (RateOutcome, error)
}
