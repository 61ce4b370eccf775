package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// JurisdictionFederal is the jurisdiction code of the federal bracket ladders
const JurisdictionFederal = "FEDERAL"

// JurisdictionNone means no state was supplied
const JurisdictionNone = "NONE"

// NormalizeJurisdiction upper-cases a state code and maps "" to NONE.
// Anything that is not NONE or two ASCII letters is rejected.
func NormalizeJurisdiction(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" || c == JurisdictionNone {
		return JurisdictionNone, nil
	}
	if len(c) != 2 || c[0] < 'A' || c[0] > 'Z' || c[1] < 'A' || c[1] > 'Z' {
		return "", fmt.Errorf("%w: malformed jurisdiction code %q", ErrInvalidInput, code)
	}
	return c, nil
}

// TaxFormInput holds the raw input for one calculation request
type TaxFormInput struct {
	Income       decimal.Decimal  `yaml:"income" json:"income"`
	Deductions   []Deduction      `yaml:"deductions" json:"deductions"`
	FilingStatus FilingStatus     `yaml:"filingStatus" json:"filingStatus"`
	State        string           `yaml:"state,omitempty" json:"state,omitempty"`
	SaleAmount   *decimal.Decimal `yaml:"saleAmount,omitempty" json:"saleAmount,omitempty"`
}

// Normalize validates the input and returns a copy with canonical filing status
// and jurisdiction code.
func (in TaxFormInput) Normalize() (TaxFormInput, error) {
	if in.Income.IsNegative() {
		return in, fmt.Errorf("%w: income cannot be negative", ErrInvalidInput)
	}
	fs, err := ParseFilingStatus(string(in.FilingStatus))
	if err != nil {
		return in, err
	}
	state, err := NormalizeJurisdiction(in.State)
	if err != nil {
		return in, err
	}
	if in.SaleAmount != nil && in.SaleAmount.IsNegative() {
		return in, fmt.Errorf("%w: sale amount cannot be negative", ErrInvalidInput)
	}
	in.FilingStatus = fs
	in.State = state
	return in, nil
}

// HasState reports whether a state jurisdiction applies
func (in TaxFormInput) HasState() bool {
	return in.State != "" && in.State != JurisdictionNone
}

// Component names used in TaxCalculationResult.Sources
const (
	ComponentFederal = "federal"
	ComponentState   = "state"
	ComponentSales   = "sales"
)

// TaxCalculationResult is the derived output of one calculation. It is built fresh
// for every call and never mutated afterwards.
type TaxCalculationResult struct {
	TaxYear             int                `yaml:"taxYear" json:"taxYear"`
	FilingStatus        FilingStatus       `yaml:"filingStatus" json:"filingStatus"`
	State               string             `yaml:"state" json:"state"`
	GrossIncome         decimal.Decimal    `yaml:"grossIncome" json:"grossIncome"`
	AdjustedGrossIncome decimal.Decimal    `yaml:"adjustedGrossIncome" json:"adjustedGrossIncome"`
	TotalDeductions     decimal.Decimal    `yaml:"totalDeductions" json:"totalDeductions"`
	TaxableIncome       decimal.Decimal    `yaml:"taxableIncome" json:"taxableIncome"`
	FederalTax          decimal.Decimal    `yaml:"federalTax" json:"federalTax"`
	StateTax            decimal.Decimal    `yaml:"stateTax" json:"stateTax"`
	SalesTax            decimal.Decimal    `yaml:"salesTax" json:"salesTax"`
	TotalTax            decimal.Decimal    `yaml:"totalTax" json:"totalTax"`
	EffectiveRate       decimal.Decimal    `yaml:"effectiveRate" json:"effectiveRate"` // percent
	Confidence          float64            `yaml:"confidence" json:"confidence"`
	Recommendations     []string           `yaml:"recommendations" json:"recommendations"`
	Sources             map[string]string  `yaml:"sources" json:"sources"`
	InvalidDeductions   []InvalidDeduction `yaml:"invalidDeductions,omitempty" json:"invalidDeductions,omitempty"`
}

// EstimatedTaxSchedule holds quarterly prepayments derived from an annual liability
type EstimatedTaxSchedule struct {
	TaxYear         int             `yaml:"taxYear" json:"taxYear"`
	FilingStatus    FilingStatus    `yaml:"filingStatus" json:"filingStatus"`
	AnnualAmount    decimal.Decimal `yaml:"annualAmount" json:"annualAmount"`
	QuarterlyAmount decimal.Decimal `yaml:"quarterlyAmount" json:"quarterlyAmount"`
	DueDates        [4]time.Time    `yaml:"dueDates" json:"dueDates"`
}
