package domain

import (
	"fmt"
	"strings"
)

// FilingStatus selects which federal bracket ladder applies
type FilingStatus string

const (
	FilingSingle          FilingStatus = "SINGLE"
	FilingMarried         FilingStatus = "MARRIED"
	FilingHeadOfHousehold FilingStatus = "HEAD_OF_HOUSEHOLD"
	FilingQualifyingWidow FilingStatus = "QUALIFYING_WIDOW"
)

// FilingStatuses lists every supported filing status in display order
var FilingStatuses = []FilingStatus{
	FilingSingle,
	FilingMarried,
	FilingHeadOfHousehold,
	FilingQualifyingWidow,
}

// IsValid reports whether the status is one of the supported values
func (fs FilingStatus) IsValid() bool {
	for _, s := range FilingStatuses {
		if fs == s {
			return true
		}
	}
	return false
}

// Label returns a human readable name for the status
func (fs FilingStatus) Label() string {
	switch fs {
	case FilingSingle:
		return "Single"
	case FilingMarried:
		return "Married Filing Jointly"
	case FilingHeadOfHousehold:
		return "Head of Household"
	case FilingQualifyingWidow:
		return "Qualifying Widow(er)"
	default:
		return string(fs)
	}
}

// ParseFilingStatus normalizes user input ("head of household", "married") into a FilingStatus.
// Unknown values are structural input errors.
func ParseFilingStatus(s string) (FilingStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	fs := FilingStatus(normalized)
	if !fs.IsValid() {
		return "", fmt.Errorf("%w: unknown filing status %q", ErrInvalidInput, s)
	}
	return fs, nil
}
