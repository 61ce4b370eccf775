package tui

import (
	"github.com/rgehrsitz/taxcalc/internal/domain"
)

// Message types for the Bubble Tea update cycle

// CalculationStartedMsg signals a calculation has begun
type CalculationStartedMsg struct{}

// CalculationCompleteMsg carries the outcome of a full calculation
type CalculationCompleteMsg struct {
	Result *domain.TaxCalculationResult
	Err    error
}

// EstimateCompleteMsg carries the outcome of a quarterly estimate
type EstimateCompleteMsg struct {
	Schedule *domain.EstimatedTaxSchedule
	Err      error
}

// RatesRefreshedMsg signals the rate table was reloaded
type RatesRefreshedMsg struct {
	TaxYear int
	Err     error
}
