package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of tax form and deduction files. YAML and JSON are
// both accepted.
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadTaxForm loads and validates a tax form from a YAML or JSON file
func (ip *InputParser) LoadTaxForm(filename string) (*domain.TaxFormInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.ParseTaxForm(data)
}

// ParseTaxForm decodes and validates a tax form document
func (ip *InputParser) ParseTaxForm(data []byte) (*domain.TaxFormInput, error) {
	var input domain.TaxFormInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("%w: failed to parse tax form: %v", domain.ErrInvalidInput, err)
	}

	normalized, err := ip.ValidateTaxForm(&input)
	if err != nil {
		return nil, fmt.Errorf("tax form validation failed: %w", err)
	}
	return normalized, nil
}

// ValidateTaxForm checks structural constraints and returns the normalized form.
// Deductions with unknown types or bad amounts are not errors here; the engine
// reports them.
func (ip *InputParser) ValidateTaxForm(input *domain.TaxFormInput) (*domain.TaxFormInput, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: tax form is empty", domain.ErrInvalidInput)
	}
	if input.FilingStatus == "" {
		return nil, fmt.Errorf("%w: filingStatus is required", domain.ErrInvalidInput)
	}
	for i, d := range input.Deductions {
		if d.Type == "" {
			return nil, fmt.Errorf("%w: deduction %d has no type", domain.ErrInvalidInput, i+1)
		}
	}
	normalized, err := input.Normalize()
	if err != nil {
		return nil, err
	}
	return &normalized, nil
}

// deductionDocument is the keyed form of a deductions file
type deductionDocument struct {
	Deductions []domain.Deduction `yaml:"deductions"`
}

// LoadDeductions loads a deduction list. The file may be a bare list or a
// document with a top-level deductions key.
func (ip *InputParser) LoadDeductions(filename string) ([]domain.Deduction, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.ParseDeductions(data)
}

// ParseDeductions decodes a deduction list document
func (ip *InputParser) ParseDeductions(data []byte) ([]domain.Deduction, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: failed to parse deductions: %v", domain.ErrInvalidInput, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: deductions document is empty", domain.ErrInvalidInput)
	}

	doc := root.Content[0]
	var deductions []domain.Deduction
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&deductions); err != nil {
			return nil, fmt.Errorf("%w: failed to decode deductions: %v", domain.ErrInvalidInput, err)
		}
	case yaml.MappingNode:
		var keyed deductionDocument
		if err := doc.Decode(&keyed); err != nil {
			return nil, fmt.Errorf("%w: failed to decode deductions: %v", domain.ErrInvalidInput, err)
		}
		deductions = keyed.Deductions
	default:
		return nil, fmt.Errorf("%w: deductions must be a list", domain.ErrInvalidInput)
	}

	if deductions == nil {
		return nil, fmt.Errorf("%w: no deductions found", domain.ErrInvalidInput)
	}
	return deductions, nil
}
