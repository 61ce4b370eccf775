package domain

import (
	"github.com/shopspring/decimal"
)

// DeductionType identifies the kind of deduction claimed. Values outside the
// whitelist are kept verbatim so they can be reported back as invalid.
type DeductionType string

const (
	DeductionStandard        DeductionType = "STANDARD_DEDUCTION"
	DeductionItemized        DeductionType = "ITEMIZED_DEDUCTION"
	DeductionBusinessExpense DeductionType = "BUSINESS_EXPENSE"
	DeductionCharitable      DeductionType = "CHARITABLE_CONTRIBUTION"
	DeductionMortgage        DeductionType = "MORTGAGE_INTEREST"
	DeductionPropertyTax     DeductionType = "PROPERTY_TAX"
	DeductionMedical         DeductionType = "MEDICAL_EXPENSE"
)

// AllowedDeductionTypes is the fixed deduction whitelist
var AllowedDeductionTypes = map[DeductionType]bool{
	DeductionStandard:        true,
	DeductionItemized:        true,
	DeductionBusinessExpense: true,
	DeductionCharitable:      true,
	DeductionMortgage:        true,
	DeductionPropertyTax:     true,
	DeductionMedical:         true,
}

// IsAllowed reports whether the type is on the whitelist
func (dt DeductionType) IsAllowed() bool {
	return AllowedDeductionTypes[dt]
}

// Deduction is a single deduction claim
type Deduction struct {
	Type        DeductionType   `yaml:"type" json:"type"`
	Amount      decimal.Decimal `yaml:"amount" json:"amount"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
}

// InvalidDeduction is a rejected claim together with the reason it was excluded
type InvalidDeduction struct {
	Deduction Deduction `yaml:"deduction" json:"deduction"`
	Reason    string    `yaml:"reason" json:"reason"`
}

// DeductionValidation partitions a list of claims into valid and invalid sets.
// TotalInvalidAmount only counts invalid claims whose amount is positive.
type DeductionValidation struct {
	ValidDeductions    []Deduction        `yaml:"validDeductions" json:"validDeductions"`
	InvalidDeductions  []InvalidDeduction `yaml:"invalidDeductions" json:"invalidDeductions"`
	TotalValidAmount   decimal.Decimal    `yaml:"totalValidAmount" json:"totalValidAmount"`
	TotalInvalidAmount decimal.Decimal    `yaml:"totalInvalidAmount" json:"totalInvalidAmount"`
}

// TotalOfType sums the valid deductions of a single type
func (dv DeductionValidation) TotalOfType(t DeductionType) decimal.Decimal {
	total := decimal.Zero
	for _, d := range dv.ValidDeductions {
		if d.Type == t {
			total = total.Add(d.Amount)
		}
	}
	return total
}
