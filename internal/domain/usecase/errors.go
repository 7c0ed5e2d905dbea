package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrReportNotFound       = errors.New("report not found")
	ErrCacheDisabled        = errors.New("cache disabled")
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
	ErrReasoningUnavailable = errors.New("reasoning unavailable")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
