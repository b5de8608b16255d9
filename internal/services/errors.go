package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrUnavailable   = errors.New("unavailable")
	ErrTransient     = errors.New("transient failure")
	ErrPanic         = errors.New("panic recovered")
)

// FailureKind classifies a failure for journal records and status reporting.
type FailureKind string

const (
	FailureValidation    FailureKind = "validation"
	FailureConfiguration FailureKind = "configuration"
	FailureNotFound      FailureKind = "not_found"
	FailureTimeout       FailureKind = "timeout"
	FailureUnavailable   FailureKind = "unavailable"
	FailureTransient     FailureKind = "transient"
	FailurePanic         FailureKind = "panic"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to the failure kind the journal should record.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrValidation):
		return FailureValidation
	case errors.Is(err, ErrConfiguration):
		return FailureConfiguration
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	case errors.Is(err, ErrTimeout):
		return FailureTimeout
	case errors.Is(err, ErrUnavailable):
		return FailureUnavailable
	case errors.Is(err, ErrPanic):
		return FailurePanic
	default:
		return FailureTransient
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
