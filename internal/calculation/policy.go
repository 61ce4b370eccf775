package calculation

import (
	"fmt"
	"math"
	"strings"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Policy holds the thresholds behind the confidence score and the advisories.
// The confidence score is a heuristic, not a statistical measure.
type Policy struct {
	HighBurdenRatio        float64 `mapstructure:"high_burden_ratio"`
	EstimatedTaxThreshold  float64 `mapstructure:"estimated_tax_threshold"`
	ConfidenceBase         float64 `mapstructure:"confidence_base"`
	ConfidenceIncomeLow    float64 `mapstructure:"confidence_income_low"`
	ConfidenceIncomeHigh   float64 `mapstructure:"confidence_income_high"`
	ConfidenceIncomeBonus  float64 `mapstructure:"confidence_income_bonus"`
	ConfidenceTaxableBonus float64 `mapstructure:"confidence_taxable_bonus"`
	ConfidenceCeiling      float64 `mapstructure:"confidence_ceiling"`
}

// DefaultPolicy returns the stock thresholds
func DefaultPolicy() Policy {
	return Policy{
		HighBurdenRatio:        0.25,
		EstimatedTaxThreshold:  100000,
		ConfidenceBase:         0.70,
		ConfidenceIncomeLow:    20000,
		ConfidenceIncomeHigh:   500000,
		ConfidenceIncomeBonus:  0.15,
		ConfidenceTaxableBonus: 0.10,
		ConfidenceCeiling:      0.95,
	}
}

// Confidence scores how typical the inputs are. The result is in [0, ceiling].
func (p Policy) Confidence(income, taxable decimal.Decimal) float64 {
	score := p.ConfidenceBase
	if income.GreaterThanOrEqual(decimal.NewFromFloat(p.ConfidenceIncomeLow)) &&
		income.LessThanOrEqual(decimal.NewFromFloat(p.ConfidenceIncomeHigh)) {
		score += p.ConfidenceIncomeBonus
	}
	if taxable.IsPositive() {
		score += p.ConfidenceTaxableBonus
	}
	score = math.Max(0, math.Min(score, p.ConfidenceCeiling))
	return math.Round(score*100) / 100
}

// assessment is everything the advisories look at for one calculation
type assessment struct {
	Income            decimal.Decimal
	TotalTax          decimal.Decimal
	FilingStatus      domain.FilingStatus
	State             string
	DeductionsClaimed int
	StandardDeduction decimal.Decimal
	TaxYear           int
	StateRate         *domain.RateOutcome
	SalesRate         *domain.RateOutcome
	Invalid           domain.DeductionValidation
	FellBack          []string
}

// Recommendations builds the advisory list in a fixed order
func (p Policy) Recommendations(a assessment) []string {
	recs := []string{}

	if a.Income.IsPositive() && a.TotalTax.Div(a.Income).GreaterThan(decimal.NewFromFloat(p.HighBurdenRatio)) {
		recs = append(recs, fmt.Sprintf(
			"Total tax exceeds %s%% of income; consider tax-advantaged retirement contributions or other strategies to reduce taxable income.",
			percent(decimal.NewFromFloat(p.HighBurdenRatio))))
	}

	if a.DeductionsClaimed == 0 {
		if a.StandardDeduction.IsPositive() {
			recs = append(recs, fmt.Sprintf(
				"No deductions were claimed; consider itemizing deductions or claiming the %s standard deduction of $%s.",
				strings.ToLower(a.FilingStatus.Label()), a.StandardDeduction.StringFixed(0)))
		} else {
			recs = append(recs, "No deductions were claimed; consider itemizing deductions or claiming the standard deduction.")
		}
	}

	if a.Income.GreaterThan(decimal.NewFromFloat(p.EstimatedTaxThreshold)) {
		recs = append(recs, fmt.Sprintf(
			"Income exceeds $%s; consider quarterly estimated tax payments to avoid underpayment penalties.",
			decimal.NewFromFloat(p.EstimatedTaxThreshold).StringFixed(0)))
	}

	if a.State != "" && a.State != domain.JurisdictionNone {
		recs = append(recs, fmt.Sprintf(
			"%s state tax uses a simplified flat rate on gross income; verify your obligations with the %s revenue department.",
			a.State, a.State))
	}

	if a.StateRate != nil && a.StateRate.DefaultRateUsed {
		recs = append(recs, fmt.Sprintf(
			"%s is not in the %d state income rate table; the default rate of %s%% was applied.",
			a.State, a.TaxYear, percent(a.StateRate.Rate)))
	}

	if a.SalesRate != nil && a.SalesRate.DefaultRateUsed {
		if a.State == "" || a.State == domain.JurisdictionNone {
			recs = append(recs, fmt.Sprintf(
				"No state was given for the sale; the default sales tax rate of %s%% was applied.",
				percent(a.SalesRate.Rate)))
		} else {
			recs = append(recs, fmt.Sprintf(
				"%s is not in the %d sales tax table; the default rate of %s%% was applied.",
				a.State, a.TaxYear, percent(a.SalesRate.Rate)))
		}
	}

	if n := len(a.Invalid.InvalidDeductions); n > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d deduction(s) were excluded as invalid ($%s not counted); review the invalid deductions list.",
			n, a.Invalid.TotalInvalidAmount.StringFixed(2)))
	}

	for _, component := range a.FellBack {
		recs = append(recs, fmt.Sprintf(
			"%s tax was computed from bundled %d rates because the remote rate service was unavailable.",
			titleCase(component), a.TaxYear))
	}

	return recs
}

// percent renders a fractional rate as a percentage with two decimals
func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
