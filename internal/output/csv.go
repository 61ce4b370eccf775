package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rgehrsitz/taxcalc/internal/domain"
)

// CSVFormatter emits one section,field,value row per figure so the output can be
// loaded into a spreadsheet regardless of which sections are present.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{{"Section", "Field", "Value"}}
	if report != nil {
		if r := report.Result; r != nil {
			rows = append(rows, resultRows(r)...)
		}
		if s := report.Schedule; s != nil {
			rows = append(rows, scheduleRows(s)...)
		}
		if v := report.Validation; v != nil {
			rows = append(rows, validationRows(v)...)
		}
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resultRows(r *domain.TaxCalculationResult) [][]string {
	const section = "result"
	rows := [][]string{
		{section, "TaxYear", strconv.Itoa(r.TaxYear)},
		{section, "FilingStatus", string(r.FilingStatus)},
		{section, "State", r.State},
		{section, "GrossIncome", r.GrossIncome.StringFixed(2)},
		{section, "AdjustedGrossIncome", r.AdjustedGrossIncome.StringFixed(2)},
		{section, "TotalDeductions", r.TotalDeductions.StringFixed(2)},
		{section, "TaxableIncome", r.TaxableIncome.StringFixed(2)},
		{section, "FederalTax", r.FederalTax.StringFixed(2)},
		{section, "StateTax", r.StateTax.StringFixed(2)},
		{section, "SalesTax", r.SalesTax.StringFixed(2)},
		{section, "TotalTax", r.TotalTax.StringFixed(2)},
		{section, "EffectiveRate", r.EffectiveRate.StringFixed(2)},
		{section, "Confidence", strconv.FormatFloat(r.Confidence, 'f', 2, 64)},
	}
	for _, component := range []string{domain.ComponentFederal, domain.ComponentState, domain.ComponentSales} {
		if src, ok := r.Sources[component]; ok {
			rows = append(rows, []string{section, "Source:" + component, src})
		}
	}
	for _, rec := range r.Recommendations {
		rows = append(rows, []string{section, "Recommendation", rec})
	}
	return rows
}

func scheduleRows(s *domain.EstimatedTaxSchedule) [][]string {
	const section = "schedule"
	rows := [][]string{
		{section, "TaxYear", strconv.Itoa(s.TaxYear)},
		{section, "FilingStatus", string(s.FilingStatus)},
		{section, "AnnualAmount", s.AnnualAmount.StringFixed(2)},
		{section, "QuarterlyAmount", s.QuarterlyAmount.StringFixed(2)},
	}
	for i, due := range s.DueDates {
		rows = append(rows, []string{section, fmt.Sprintf("Q%dDue", i+1), due.Format("2006-01-02")})
	}
	return rows
}

func validationRows(v *domain.DeductionValidation) [][]string {
	const section = "validation"
	var rows [][]string
	for _, d := range v.ValidDeductions {
		rows = append(rows, []string{section, "Valid:" + string(d.Type), d.Amount.StringFixed(2)})
	}
	for _, inv := range v.InvalidDeductions {
		rows = append(rows, []string{section, "Invalid:" + string(inv.Deduction.Type), inv.Deduction.Amount.StringFixed(2) + " " + inv.Reason})
	}
	rows = append(rows,
		[]string{section, "TotalValidAmount", v.TotalValidAmount.StringFixed(2)},
		[]string{section, "TotalInvalidAmount", v.TotalInvalidAmount.StringFixed(2)},
	)
	return rows
}
