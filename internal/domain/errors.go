package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks structurally invalid calculation input (negative income,
// unknown filing status, malformed jurisdiction code). These are rejected, never
// recovered.
var ErrInvalidInput = errors.New("invalid input")

// SourceErrorKind classifies why an external rate source failed
type SourceErrorKind string

const (
	SourceErrorTransport SourceErrorKind = "transport"
	SourceErrorTimeout   SourceErrorKind = "timeout"
	SourceErrorStatus    SourceErrorKind = "status"
	SourceErrorMalformed SourceErrorKind = "malformed"
)

// SourceError is returned by a RateSource that could not produce an outcome.
// The engine absorbs it and falls back to local rates.
type SourceError struct {
	Op         string // federal, state or sales
	Kind       SourceErrorKind
	StatusCode int
	Err        error
}

func (e *SourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("rate source %s failed (%s, status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("rate source %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
