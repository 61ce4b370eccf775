package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/taxcalc/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(24)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

const ruleWidth = 60

// ConsoleFormatter renders a human-readable report for terminals
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	if report.Empty() {
		return buf.Bytes(), nil
	}
	if report.Result != nil {
		writeResult(&buf, report.Result)
	}
	if report.Schedule != nil {
		writeSchedule(&buf, report.Schedule)
	}
	if report.Validation != nil {
		writeValidation(&buf, report.Validation)
	}
	return buf.Bytes(), nil
}

func writeTitle(buf *bytes.Buffer, title string) {
	fmt.Fprintln(buf, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(buf, titleStyle.Render(title))
	fmt.Fprintln(buf, strings.Repeat("=", ruleWidth))
}

func writeRow(buf *bytes.Buffer, label, value string) {
	fmt.Fprintf(buf, "%s %s\n", labelStyle.Render(label+":"), value)
}

func writeResult(buf *bytes.Buffer, r *domain.TaxCalculationResult) {
	writeTitle(buf, fmt.Sprintf("TAX CALCULATION SUMMARY (%d)", r.TaxYear))
	writeRow(buf, "Filing Status", r.FilingStatus.Label())
	writeRow(buf, "State", r.State)
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, sectionStyle.Render("INCOME"))
	writeRow(buf, "Gross Income", FormatCurrency(r.GrossIncome))
	writeRow(buf, "Adjusted Gross Income", FormatCurrency(r.AdjustedGrossIncome))
	writeRow(buf, "Total Deductions", FormatCurrency(r.TotalDeductions))
	writeRow(buf, "Taxable Income", FormatCurrency(r.TaxableIncome))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, sectionStyle.Render("TAXES"))
	writeRow(buf, "Federal Tax", FormatCurrency(r.FederalTax)+sourceTag(r, domain.ComponentFederal))
	writeRow(buf, "State Tax", FormatCurrency(r.StateTax)+sourceTag(r, domain.ComponentState))
	writeRow(buf, "Sales Tax", FormatCurrency(r.SalesTax)+sourceTag(r, domain.ComponentSales))
	fmt.Fprintln(buf, strings.Repeat("-", ruleWidth))
	writeRow(buf, "Total Tax", FormatCurrency(r.TotalTax))
	writeRow(buf, "Effective Rate", FormatPercentage(r.EffectiveRate))
	writeRow(buf, "Confidence", fmt.Sprintf("%.2f", r.Confidence))
	fmt.Fprintln(buf)

	if len(r.InvalidDeductions) > 0 {
		fmt.Fprintln(buf, sectionStyle.Render("EXCLUDED DEDUCTIONS"))
		for _, inv := range r.InvalidDeductions {
			fmt.Fprintf(buf, "• %s %s: %s\n", inv.Deduction.Type, FormatCurrency(inv.Deduction.Amount), warnStyle.Render(inv.Reason))
		}
		fmt.Fprintln(buf)
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(buf, sectionStyle.Render("RECOMMENDATIONS"))
		for _, rec := range r.Recommendations {
			fmt.Fprintf(buf, "• %s\n", rec)
		}
		fmt.Fprintln(buf)
	}
}

// sourceTag annotates a component with where its figure came from
func sourceTag(r *domain.TaxCalculationResult, component string) string {
	src, ok := r.Sources[component]
	if !ok {
		return ""
	}
	return " (" + src + ")"
}

func writeSchedule(buf *bytes.Buffer, s *domain.EstimatedTaxSchedule) {
	writeTitle(buf, fmt.Sprintf("ESTIMATED TAX SCHEDULE (%d)", s.TaxYear))
	writeRow(buf, "Filing Status", s.FilingStatus.Label())
	writeRow(buf, "Annual Liability", FormatCurrency(s.AnnualAmount))
	writeRow(buf, "Quarterly Payment", FormatCurrency(s.QuarterlyAmount))
	fmt.Fprintln(buf)
	for i, due := range s.DueDates {
		writeRow(buf, fmt.Sprintf("Q%d due", i+1), due.Format("2006-01-02"))
	}
	fmt.Fprintln(buf)
}

func writeValidation(buf *bytes.Buffer, v *domain.DeductionValidation) {
	writeTitle(buf, "DEDUCTION VALIDATION")
	fmt.Fprintf(buf, "%s (%d)\n", sectionStyle.Render("VALID"), len(v.ValidDeductions))
	for _, d := range v.ValidDeductions {
		fmt.Fprintf(buf, "• %s %s\n", d.Type, FormatCurrency(d.Amount))
	}
	writeRow(buf, "Total Valid", FormatCurrency(v.TotalValidAmount))
	fmt.Fprintln(buf)

	fmt.Fprintf(buf, "%s (%d)\n", sectionStyle.Render("INVALID"), len(v.InvalidDeductions))
	for _, inv := range v.InvalidDeductions {
		fmt.Fprintf(buf, "• %s %s: %s\n", inv.Deduction.Type, FormatCurrency(inv.Deduction.Amount), warnStyle.Render(inv.Reason))
	}
	writeRow(buf, "Total Invalid", FormatCurrency(v.TotalInvalidAmount))
	fmt.Fprintln(buf)
}
