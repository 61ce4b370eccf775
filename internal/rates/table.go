package rates

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Bracket is one rung of a progressive ladder. A nil UpperBound marks the
// open-ended top bracket.
type Bracket struct {
	Rate       decimal.Decimal  `yaml:"rate" json:"rate"`
	UpperBound *decimal.Decimal `yaml:"upper_bound,omitempty" json:"upperBound,omitempty"`
}

// Unbounded reports whether the bracket has no upper limit
func (b Bracket) Unbounded() bool {
	return b.UpperBound == nil
}

// FederalRates holds the federal bracket ladders for every filing status
type FederalRates struct {
	StandardDeduction map[domain.FilingStatus]decimal.Decimal `yaml:"standard_deduction" json:"standardDeduction"`
	Brackets          map[domain.FilingStatus][]Bracket       `yaml:"brackets" json:"brackets"`
}

// FlatRateTable maps jurisdiction codes to a single proportional rate. Codes missing
// from Rates use DefaultRate; that is the only unsupported-jurisdiction branch.
type FlatRateTable struct {
	DefaultRate decimal.Decimal            `yaml:"default_rate" json:"defaultRate"`
	Rates       map[string]decimal.Decimal `yaml:"rates" json:"rates"`
}

// Lookup returns the rate for a jurisdiction and whether it was listed
func (ft FlatRateTable) Lookup(code string) (decimal.Decimal, bool) {
	if rate, ok := ft.Rates[code]; ok {
		return rate, true
	}
	return ft.DefaultRate, false
}

// Jurisdictions returns the listed codes in sorted order
func (ft FlatRateTable) Jurisdictions() []string {
	codes := make([]string, 0, len(ft.Rates))
	for code := range ft.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Table is the rate data for one tax year. Once published through a Store it
// must not be mutated; a refresh installs a new Table instead.
type Table struct {
	TaxYear           int           `yaml:"tax_year" json:"taxYear"`
	Description       string        `yaml:"description,omitempty" json:"description,omitempty"`
	Federal           FederalRates  `yaml:"federal" json:"federal"`
	StateIncome       FlatRateTable `yaml:"state_income" json:"stateIncome"`
	Sales             FlatRateTable `yaml:"sales" json:"sales"`
	EstimatedDueDates []string      `yaml:"estimated_due_dates" json:"estimatedDueDates"`

	dueDates [4]time.Time
}

// Parse decodes a YAML (or JSON) rate document and validates it
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse rate table: %w", err)
	}
	dates, err := t.check()
	if err != nil {
		return nil, fmt.Errorf("rate table validation failed: %w", err)
	}
	t.dueDates = dates
	return &t, nil
}

// Validate checks every invariant of the table. It does not modify t, so it is
// safe on a published table.
func (t *Table) Validate() error {
	_, err := t.check()
	return err
}

// check validates t and returns the parsed estimated due dates
func (t *Table) check() ([4]time.Time, error) {
	var dates [4]time.Time
	if t.TaxYear < 2000 || t.TaxYear > 2100 {
		return dates, fmt.Errorf("tax year %d out of range", t.TaxYear)
	}
	for _, fs := range domain.FilingStatuses {
		ladder, ok := t.Federal.Brackets[fs]
		if !ok {
			return dates, fmt.Errorf("missing federal brackets for %s", fs)
		}
		if err := validateLadder(ladder); err != nil {
			return dates, fmt.Errorf("federal brackets for %s: %w", fs, err)
		}
		if sd, ok := t.Federal.StandardDeduction[fs]; ok && sd.IsNegative() {
			return dates, fmt.Errorf("standard deduction for %s cannot be negative", fs)
		}
	}
	if err := validateFlat(t.StateIncome); err != nil {
		return dates, fmt.Errorf("state income rates: %w", err)
	}
	if err := validateFlat(t.Sales); err != nil {
		return dates, fmt.Errorf("sales rates: %w", err)
	}
	if len(t.EstimatedDueDates) != 4 {
		return dates, fmt.Errorf("expected 4 estimated due dates, got %d", len(t.EstimatedDueDates))
	}
	for i, s := range t.EstimatedDueDates {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return dates, fmt.Errorf("estimated due date %d: %w", i+1, err)
		}
		if i > 0 && !d.After(dates[i-1]) {
			return dates, fmt.Errorf("estimated due dates must be increasing")
		}
		dates[i] = d
	}
	return dates, nil
}

func validateLadder(ladder []Bracket) error {
	if len(ladder) == 0 {
		return fmt.Errorf("ladder is empty")
	}
	prev := decimal.Zero
	for i, b := range ladder {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("bracket %d rate %s must be between 0 and 1", i+1, b.Rate)
		}
		last := i == len(ladder)-1
		if last {
			if !b.Unbounded() {
				return fmt.Errorf("top bracket must be unbounded")
			}
			continue
		}
		if b.Unbounded() {
			return fmt.Errorf("only the top bracket may be unbounded")
		}
		if !b.UpperBound.GreaterThan(prev) {
			return fmt.Errorf("bracket %d upper bound %s must exceed %s", i+1, b.UpperBound, prev)
		}
		prev = *b.UpperBound
	}
	return nil
}

func validateFlat(ft FlatRateTable) error {
	one := decimal.NewFromInt(1)
	if ft.DefaultRate.IsNegative() || ft.DefaultRate.GreaterThan(one) {
		return fmt.Errorf("default rate %s must be between 0 and 1", ft.DefaultRate)
	}
	for code, rate := range ft.Rates {
		if len(code) != 2 {
			return fmt.Errorf("jurisdiction code %q must be two letters", code)
		}
		if rate.IsNegative() || rate.GreaterThan(one) {
			return fmt.Errorf("rate for %s must be between 0 and 1", code)
		}
	}
	return nil
}

// Ladder returns a copy of the bracket ladder for a filing status
func (t *Table) Ladder(fs domain.FilingStatus) ([]Bracket, error) {
	ladder, ok := t.Federal.Brackets[fs]
	if !ok {
		return nil, fmt.Errorf("no federal brackets for filing status %s", fs)
	}
	return slices.Clone(ladder), nil
}

// StandardDeduction returns the standard deduction for a filing status, zero if unknown
func (t *Table) StandardDeduction(fs domain.FilingStatus) decimal.Decimal {
	return t.Federal.StandardDeduction[fs]
}

// DueDates returns the four estimated-tax due dates
func (t *Table) DueDates() [4]time.Time {
	return t.dueDates
}
