package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func buildTestResult() *domain.TaxCalculationResult {
	return &domain.TaxCalculationResult{
		TaxYear:             2024,
		FilingStatus:        domain.FilingSingle,
		State:               "TX",
		GrossIncome:         dec("75000"),
		AdjustedGrossIncome: dec("75000"),
		TotalDeductions:     dec("12950"),
		TaxableIncome:       dec("62050"),
		FederalTax:          dec("8704.00"),
		StateTax:            decimal.Zero,
		SalesTax:            dec("62.50"),
		TotalTax:            dec("8766.50"),
		EffectiveRate:       dec("11.69"),
		Confidence:          0.95,
		Recommendations:     []string{"Texas state tax uses a simplified flat rate on gross income; verify your obligations."},
		Sources: map[string]string{
			domain.ComponentFederal: domain.SourceLocal,
			domain.ComponentState:   domain.SourceLocal,
			domain.ComponentSales:   "remote",
		},
		InvalidDeductions: []domain.InvalidDeduction{
			{Deduction: domain.Deduction{Type: "GAMBLING_LOSS", Amount: dec("400")}, Reason: `unsupported deduction type "GAMBLING_LOSS"`},
		},
	}
}

func buildTestSchedule() *domain.EstimatedTaxSchedule {
	return &domain.EstimatedTaxSchedule{
		TaxYear:         2024,
		FilingStatus:    domain.FilingSingle,
		AnnualAmount:    dec("11553.00"),
		QuarterlyAmount: dec("2888.25"),
		DueDates: [4]time.Time{
			time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.September, 16, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
	}
}

func buildTestValidation() *domain.DeductionValidation {
	return &domain.DeductionValidation{
		ValidDeductions: []domain.Deduction{{Type: domain.DeductionMortgage, Amount: dec("9000")}},
		InvalidDeductions: []domain.InvalidDeduction{
			{Deduction: domain.Deduction{Type: domain.DeductionMedical, Amount: dec("-5")}, Reason: "amount cannot be negative"},
		},
		TotalValidAmount:   dec("9000"),
		TotalInvalidAmount: decimal.Zero,
	}
}

func fullReport() *Report {
	return &Report{Result: buildTestResult(), Schedule: buildTestSchedule(), Validation: buildTestValidation()}
}

func TestFormatterFunc(t *testing.T) {
	called := false
	var received *Report

	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(report *Report) ([]byte, error) {
			called = true
			received = report
			return []byte("test output"), nil
		},
	}

	report := fullReport()
	out, err := formatter.Format(report)

	assert.NoError(t, err)
	assert.True(t, called, "Should call the function")
	assert.Same(t, report, received, "Should pass the report")
	assert.Equal(t, []byte("test output"), out)
	assert.Equal(t, "test-formatter", formatter.Name())
}

func TestGetFormatterByName(t *testing.T) {
	for _, name := range []string{"console", "json", "csv", "yaml"} {
		f := GetFormatterByName(name)
		require.NotNil(t, f, name)
		assert.Equal(t, name, f.Name())
	}
	assert.Nil(t, GetFormatterByName("html"))
	assert.Equal(t, []string{"console", "csv", "json", "yaml"}, FormatterNames())
}

func TestRender(t *testing.T) {
	_, err := Render("pdf", fullReport())
	assert.ErrorContains(t, err, "unsupported format: pdf")

	_, err = Render("json", &Report{})
	assert.ErrorContains(t, err, "nothing to render")

	out, err := Render("console", &Report{Schedule: buildTestSchedule()})
	require.NoError(t, err)
	assert.Contains(t, string(out), "ESTIMATED TAX SCHEDULE (2024)")
	assert.NotContains(t, string(out), "TAX CALCULATION SUMMARY")
}

func TestWriteFormatted(t *testing.T) {
	t.Chdir(t.TempDir())

	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(*Report) ([]byte, error) {
			return []byte("test output content"), nil
		},
	}

	filename, err := WriteFormatted(formatter, fullReport(), "txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "tax_report_"), filename)
	assert.True(t, strings.HasSuffix(filename, ".txt"), filename)

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "test output content", string(content))
}

func TestWriteFormatted_FormatterError(t *testing.T) {
	formatter := FormatterFunc{
		ID: "error-formatter",
		F: func(*Report) ([]byte, error) {
			return nil, fmt.Errorf("formatter error")
		},
	}

	filename, err := WriteFormatted(formatter, fullReport(), "txt")
	assert.ErrorContains(t, err, "formatter error")
	assert.Empty(t, filename)
}

func TestConsoleFormatter_Result(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(&Report{Result: buildTestResult()})
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "TAX CALCULATION SUMMARY (2024)")
	assert.Contains(t, content, "Single")
	assert.Contains(t, content, "$8704.00 (local)")
	assert.Contains(t, content, "$62.50 (remote)")
	assert.Contains(t, content, "$8766.50")
	assert.Contains(t, content, "11.69%")
	assert.Contains(t, content, "0.95")
	assert.Contains(t, content, "EXCLUDED DEDUCTIONS")
	assert.Contains(t, content, "GAMBLING_LOSS $400.00")
	assert.Contains(t, content, "RECOMMENDATIONS")
}

func TestConsoleFormatter_NoRecommendations(t *testing.T) {
	result := buildTestResult()
	result.Recommendations = []string{}
	result.InvalidDeductions = nil

	out, err := ConsoleFormatter{}.Format(&Report{Result: result})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "RECOMMENDATIONS")
	assert.NotContains(t, string(out), "EXCLUDED DEDUCTIONS")
}

func TestConsoleFormatter_ScheduleAndValidation(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(&Report{Schedule: buildTestSchedule(), Validation: buildTestValidation()})
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "$11553.00")
	assert.Contains(t, content, "$2888.25")
	assert.Contains(t, content, "2024-06-17")
	assert.Contains(t, content, "2025-01-15")
	assert.Contains(t, content, "DEDUCTION VALIDATION")
	assert.Contains(t, content, "MORTGAGE_INTEREST $9000.00")
	assert.Contains(t, content, "amount cannot be negative")
}

func TestConsoleFormatter_Empty(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(nil)
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{Indent: true}.Format(fullReport())
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.NotNil(t, decoded.Result)
	assert.Equal(t, "8704.00", decoded.Result.FederalTax.StringFixed(2))
	assert.Equal(t, "remote", decoded.Result.Sources[domain.ComponentSales])
	require.NotNil(t, decoded.Schedule)
	assert.Equal(t, "2888.25", decoded.Schedule.QuarterlyAmount.StringFixed(2))
	require.NotNil(t, decoded.Validation)
	assert.Len(t, decoded.Validation.InvalidDeductions, 1)

	compact, err := JSONFormatter{}.Format(&Report{Result: buildTestResult()})
	require.NoError(t, err)
	assert.NotContains(t, strings.TrimSpace(string(compact)), "\n")
	assert.NotContains(t, string(compact), `"schedule"`)
}

func TestYAMLFormatter(t *testing.T) {
	out, err := YAMLFormatter{}.Format(&Report{Result: buildTestResult()})
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.NotNil(t, decoded.Result)
	assert.Equal(t, "62050.00", decoded.Result.TaxableIncome.StringFixed(2))
	assert.Equal(t, domain.FilingSingle, decoded.Result.FilingStatus)
	assert.Nil(t, decoded.Schedule)
}

func TestCSVFormatter(t *testing.T) {
	out, err := CSVFormatter{}.Format(fullReport())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"Section", "Field", "Value"}, records[0])

	values := map[string]string{}
	for _, rec := range records[1:] {
		require.Len(t, rec, 3)
		values[rec[0]+"."+rec[1]] = rec[2]
	}
	assert.Equal(t, "8704.00", values["result.FederalTax"])
	assert.Equal(t, "0.00", values["result.StateTax"])
	assert.Equal(t, "0.95", values["result.Confidence"])
	assert.Equal(t, "remote", values["result.Source:sales"])
	assert.Equal(t, "2888.25", values["schedule.QuarterlyAmount"])
	assert.Equal(t, "2024-04-15", values["schedule.Q1Due"])
	assert.Equal(t, "9000.00", values["validation.Valid:MORTGAGE_INTEREST"])
	assert.Equal(t, "0.00", values["validation.TotalInvalidAmount"])
}

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		currency string
		percent  string
	}{
		{"whole", dec("100"), "$100.00", "100.00%"},
		{"fraction", dec("11.6053"), "$11.61", "11.61%"},
		{"zero", decimal.Zero, "$0.00", "0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.currency, FormatCurrency(tt.amount))
			assert.Equal(t, tt.percent, FormatPercentage(tt.amount))
		})
	}
}
