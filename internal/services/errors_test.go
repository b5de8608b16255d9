package services_test

import (
	"errors"
	"strings"
	"testing"

	"conveyor/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUnavailable, "health", "probe", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"health", "probe", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "watcher", "read", "file vanished", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestClassifyMapping(t *testing.T) {
	cases := []struct {
		err  error
		want services.FailureKind
	}{
		{services.Wrap(services.ErrValidation, "ingest", "decode", "bad payload", nil), services.FailureValidation},
		{services.Wrap(services.ErrConfiguration, "config", "load", "missing dir", nil), services.FailureConfiguration},
		{services.Wrap(services.ErrNotFound, "watcher", "read", "gone", nil), services.FailureNotFound},
		{services.Wrap(services.ErrTimeout, "health", "probe", "deadline", nil), services.FailureTimeout},
		{services.Wrap(services.ErrUnavailable, "health", "probe", "refused", nil), services.FailureUnavailable},
		{services.Wrap(services.ErrPanic, "worker", "execute", "recovered", nil), services.FailurePanic},
		{errors.New("untyped"), services.FailureTransient},
	}
	for _, tc := range cases {
		if got := services.Classify(tc.err); got != tc.want {
			t.Fatalf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
