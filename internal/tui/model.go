// Package tui is an interactive terminal front end for the tax engine.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/domain"
)

// calcTimeout bounds a single engine call made from the UI
const calcTimeout = 15 * time.Second

// Field indexes into Model.inputs
const (
	FieldIncome = iota
	FieldState
	FieldSale
	FieldDeductions
	fieldCount
)

var fieldLabels = [fieldCount]string{
	FieldIncome:     "Income",
	FieldState:      "State",
	FieldSale:       "Sale Amount",
	FieldDeductions: "Deductions",
}

// Model represents the entire application state
type Model struct {
	engine *calculation.TaxEngine

	inputs      []textinput.Model
	focus       int
	statusIndex int

	// Terminal dimensions
	width  int
	height int

	result   *domain.TaxCalculationResult
	schedule *domain.EstimatedTaxSchedule
	info     string
	err      error
	loading  bool
}

// NewModel creates a new application model
func NewModel(engine *calculation.TaxEngine) Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 40
		inputs[i] = ti
	}

	inputs[FieldIncome].Placeholder = "e.g., 75000"
	inputs[FieldIncome].CharLimit = 14
	inputs[FieldState].Placeholder = "two-letter code, blank for none"
	inputs[FieldState].CharLimit = 4
	inputs[FieldSale].Placeholder = "optional purchase amount"
	inputs[FieldSale].CharLimit = 14
	inputs[FieldDeductions].Placeholder = "STANDARD_DEDUCTION=14600, CHARITABLE_CONTRIBUTION=500"
	inputs[FieldDeductions].CharLimit = 512
	inputs[FieldIncome].Focus()

	return Model{
		engine: engine,
		inputs: inputs,
		width:  80,
		height: 24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// FilingStatus returns the currently selected filing status
func (m Model) FilingStatus() domain.FilingStatus {
	return domain.FilingStatuses[m.statusIndex%len(domain.FilingStatuses)]
}

// Focused returns the index of the focused field
func (m Model) Focused() int {
	return m.focus
}

// Result returns the last calculation result, if any
func (m Model) Result() *domain.TaxCalculationResult {
	return m.result
}

// SetValue sets the text of a field
func (m *Model) SetValue(field int, value string) {
	m.inputs[field].SetValue(value)
}

// BuildInput converts the form fields into a calculation request
func (m Model) BuildInput() (domain.TaxFormInput, error) {
	input := domain.TaxFormInput{
		FilingStatus: m.FilingStatus(),
		State:        strings.TrimSpace(m.inputs[FieldState].Value()),
		Deductions:   []domain.Deduction{},
	}

	incomeText := strings.TrimSpace(m.inputs[FieldIncome].Value())
	if incomeText == "" {
		return input, fmt.Errorf("income is required")
	}
	income, err := parseAmount(incomeText)
	if err != nil {
		return input, fmt.Errorf("invalid income: %w", err)
	}
	input.Income = income

	if saleText := strings.TrimSpace(m.inputs[FieldSale].Value()); saleText != "" {
		sale, err := parseAmount(saleText)
		if err != nil {
			return input, fmt.Errorf("invalid sale amount: %w", err)
		}
		input.SaleAmount = &sale
	}

	deductions, err := ParseDeductionList(m.inputs[FieldDeductions].Value())
	if err != nil {
		return input, err
	}
	input.Deductions = deductions

	return input.Normalize()
}

// ParseDeductionList parses "TYPE=amount" pairs separated by commas.
// Types are upper-cased; unknown types are passed through for the engine to
// report.
func ParseDeductionList(s string) ([]domain.Deduction, error) {
	deductions := []domain.Deduction{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, amountText, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("deduction %q must be TYPE=amount", part)
		}
		amount, err := parseAmount(amountText)
		if err != nil {
			return nil, fmt.Errorf("deduction %q: %w", part, err)
		}
		deductions = append(deductions, domain.Deduction{
			Type:   domain.DeductionType(strings.ToUpper(strings.TrimSpace(name))),
			Amount: amount,
		})
	}
	return deductions, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "_", "").Replace(strings.TrimSpace(s))
	return decimal.NewFromString(cleaned)
}

// calculateCmd returns a command that runs a full calculation
func calculateCmd(engine *calculation.TaxEngine, input domain.TaxFormInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), calcTimeout)
		defer cancel()
		result, err := engine.Calculate(ctx, input)
		return CalculationCompleteMsg{Result: result, Err: err}
	}
}

// estimateCmd returns a command that builds a quarterly schedule
func estimateCmd(engine *calculation.TaxEngine, input domain.TaxFormInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), calcTimeout)
		defer cancel()
		schedule, err := engine.EstimateQuarterly(ctx, input.Income, input.FilingStatus, input.State)
		return EstimateCompleteMsg{Schedule: schedule, Err: err}
	}
}

// refreshRatesCmd reloads the rate table from the configured loader
func refreshRatesCmd(engine *calculation.TaxEngine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), calcTimeout)
		defer cancel()
		table, err := engine.Rates.Refresh(ctx)
		return RatesRefreshedMsg{TaxYear: table.TaxYear, Err: err}
	}
}
