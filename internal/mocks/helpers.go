package mocks

import (
	"testing"

	"go.uber.org/mock/gomock"
)

// NewMockRateSourceForTest creates a new mock RateSource for testing
func NewMockRateSourceForTest(t *testing.T) *MockRateSource {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockRateSource(ctrl)
}
