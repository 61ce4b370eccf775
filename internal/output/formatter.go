// Package output renders calculation results, quarterly schedules and deduction
// validations in console, JSON, CSV and YAML form.
package output

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Report carries whatever a command produced. Formatters render every
// non-nil section in a fixed order: result, schedule, validation.
type Report struct {
	Result     *domain.TaxCalculationResult `json:"result,omitempty" yaml:"result,omitempty"`
	Schedule   *domain.EstimatedTaxSchedule `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Validation *domain.DeductionValidation  `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// Empty reports whether the report has nothing to render
func (r *Report) Empty() bool {
	return r == nil || (r.Result == nil && r.Schedule == nil && r.Validation == nil)
}

// Formatter renders a report into bytes
type Formatter interface {
	Name() string
	Format(report *Report) ([]byte, error)
}

// FormatterFunc adapts a plain function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(report *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *Report) ([]byte, error) { return f.F(report) }

var formatters = map[string]Formatter{}

func register(f Formatter) {
	formatters[f.Name()] = f
}

func init() {
	register(ConsoleFormatter{})
	register(JSONFormatter{Indent: true})
	register(CSVFormatter{})
	register(YAMLFormatter{})
}

// GetFormatterByName returns the registered formatter or nil
func GetFormatterByName(name string) Formatter {
	return formatters[name]
}

// FormatterNames lists registered formatter names in sorted order
func FormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render looks up a formatter by name and formats the report with it
func Render(name string, report *Report) ([]byte, error) {
	f := GetFormatterByName(name)
	if f == nil {
		return nil, fmt.Errorf("unsupported format: %s", name)
	}
	if report.Empty() {
		return nil, fmt.Errorf("nothing to render")
	}
	return f.Format(report)
}

// WriteFormatted formats the report and writes it to a timestamped file in the
// working directory, returning the file name.
func WriteFormatted(f Formatter, report *Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("tax_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
