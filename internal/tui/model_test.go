package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/rates"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	store, err := rates.NewStore(rates.MustDefaults(), rates.EmbeddedLoader{Year: rates.DefaultTaxYear})
	require.NoError(t, err)
	return NewModel(calculation.NewTaxEngine(store, nil))
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: k})
	next, ok := updated.(Model)
	require.True(t, ok, "Update should return a tui.Model")
	return next, cmd
}

func TestParseDeductionList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []domain.Deduction
		wantErr string
	}{
		{"empty", "  ", []domain.Deduction{}, ""},
		{
			"comma inside amount",
			"standard_deduction=14,600, MEDICAL_EXPENSE = $250.50",
			nil,
			"must be TYPE=amount",
		},
		{
			"upper cases types",
			"standard_deduction=14600, MEDICAL_EXPENSE = $250.50",
			[]domain.Deduction{
				{Type: domain.DeductionStandard, Amount: decimal.RequireFromString("14600")},
				{Type: domain.DeductionMedical, Amount: decimal.RequireFromString("250.50")},
			},
			"",
		},
		{"bad amount", "PROPERTY_TAX=lots", nil, `deduction "PROPERTY_TAX=lots"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDeductionList(tt.input)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Type, got[i].Type)
				assert.True(t, tt.want[i].Amount.Equal(got[i].Amount), "amount %d: %s", i, got[i].Amount)
			}
		})
	}
}

func TestBuildInput(t *testing.T) {
	m := newTestModel(t)

	_, err := m.BuildInput()
	assert.ErrorContains(t, err, "income is required")

	m.SetValue(FieldIncome, "$75,000")
	m.SetValue(FieldState, "tx")
	m.SetValue(FieldSale, "1000")
	m.SetValue(FieldDeductions, "STANDARD_DEDUCTION=12950")

	input, err := m.BuildInput()
	require.NoError(t, err)
	assert.Equal(t, "75000", input.Income.String())
	assert.Equal(t, "TX", input.State)
	assert.Equal(t, domain.FilingSingle, input.FilingStatus)
	require.NotNil(t, input.SaleAmount)
	assert.Equal(t, "1000", input.SaleAmount.String())
	assert.Len(t, input.Deductions, 1)

	m.SetValue(FieldState, "Texas")
	_, err = m.BuildInput()
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFocusAndFilingStatus(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, FieldIncome, m.Focused())

	m, _ = press(t, m, tea.KeyTab)
	assert.Equal(t, FieldState, m.Focused())

	m, _ = press(t, m, tea.KeyShiftTab)
	m, _ = press(t, m, tea.KeyShiftTab)
	assert.Equal(t, FieldDeductions, m.Focused(), "Focus should wrap backwards")

	assert.Equal(t, domain.FilingSingle, m.FilingStatus())
	m, _ = press(t, m, tea.KeyCtrlF)
	assert.Equal(t, domain.FilingMarried, m.FilingStatus())
	for i := 0; i < len(domain.FilingStatuses)-1; i++ {
		m, _ = press(t, m, tea.KeyCtrlF)
	}
	assert.Equal(t, domain.FilingSingle, m.FilingStatus(), "Filing status should cycle")
	assert.Contains(t, m.View(), "Single")
}

func TestCalculateFlow(t *testing.T) {
	m := newTestModel(t)
	m.SetValue(FieldIncome, "75000")
	m.SetValue(FieldDeductions, "STANDARD_DEDUCTION=12950")

	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd, "Enter should start a calculation")
	assert.Contains(t, m.View(), "Calculating...")

	msg := cmd()
	complete, ok := msg.(CalculationCompleteMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, complete.Err)

	updated, _ := m.Update(complete)
	m = updated.(Model)
	require.NotNil(t, m.Result())
	assert.Equal(t, "8704.00", m.Result().FederalTax.StringFixed(2))

	view := m.View()
	assert.Contains(t, view, "TAX CALCULATION SUMMARY (2024)")
	assert.Contains(t, view, "$8704.00 (local)")

	m, _ = press(t, m, tea.KeyEsc)
	assert.Nil(t, m.Result())
	assert.NotContains(t, m.View(), "TAX CALCULATION SUMMARY")
}

func TestEstimateFlow(t *testing.T) {
	m := newTestModel(t)
	m.SetValue(FieldIncome, "75000")

	m, cmd := press(t, m, tea.KeyCtrlE)
	require.NotNil(t, cmd)

	msg := cmd()
	estimate, ok := msg.(EstimateCompleteMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, estimate.Err)

	updated, _ := m.Update(estimate)
	view := updated.(Model).View()
	assert.Contains(t, view, "ESTIMATED TAX SCHEDULE (2024)")
	assert.Contains(t, view, "$2888.25")
}

func TestInvalidFormShowsError(t *testing.T) {
	m := newTestModel(t)
	m.SetValue(FieldIncome, "abc")

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd, "No calculation for an invalid form")
	assert.Contains(t, m.View(), "invalid income")
}

func TestRefreshRates(t *testing.T) {
	m := newTestModel(t)

	m, cmd := press(t, m, tea.KeyCtrlR)
	require.NotNil(t, cmd)

	updated, _ := m.Update(cmd())
	assert.Contains(t, updated.(Model).View(), "Loaded 2024 rates")
}

func TestCalculationErrorMessage(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(CalculationCompleteMsg{Err: errors.New("remote exploded")})
	assert.Contains(t, updated.(Model).View(), "remote exploded")
}
