package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("cannot build context", ErrUnknownActor).WithActor("Nobody").WithPhase("trial_vote")

	want := "config error [actor=Nobody, phase=trial_vote]: cannot build context: unknown actor"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if !errors.Is(err, ErrUnknownActor) {
		t.Error("errors.Is(err, ErrUnknownActor) = false, want true")
	}
}

func TestResponseError(t *testing.T) {
	err := NewResponseError("bad index", ErrTargetOutOfRange).WithActor("Kaede").WithRaw("target_index: 99")

	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	if err.Raw != "target_index: 99" {
		t.Errorf("Raw = %q", err.Raw)
	}
	if !strings.Contains(err.Error(), "actor=Kaede") {
		t.Errorf("Error() = %q, want actor context", err.Error())
	}

	wrapped := fmt.Errorf("turn failed: %w", err)
	var respErr *ResponseError
	if !As(wrapped, &respErr) {
		t.Fatal("As() could not find ResponseError in chain")
	}
	if !Is(wrapped, ErrTargetOutOfRange) {
		t.Error("Is(wrapped, ErrTargetOutOfRange) = false, want true")
	}
}

func TestAgentError(t *testing.T) {
	err := NewAgentError("request failed", ErrAgentUnavailable).WithBackend("openai")
	if !err.IsRetryable() {
		t.Error("agent errors should be retryable by default")
	}
	if !strings.HasPrefix(err.Error(), "agent error (openai)") {
		t.Errorf("Error() = %q", err.Error())
	}

	err = err.WithRetryable(false)
	if IsRetryable(err) {
		t.Error("IsRetryable() = true after WithRetryable(false)")
	}
}

func TestStateError(t *testing.T) {
	err := NewStateError("no kill decision", ErrNoResolution).WithPhase("vote_reveal").WithDay(2)
	want := "state error [phase=vote_reveal, day=2]: no kill decision: no resolution recorded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if IsFatal(err) {
		t.Error("IsFatal(StateError) = true, want false")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("must be positive").WithField("dispatch.max_attempts").WithValue(0)
	want := "validation failed: dispatch.max_attempts: must be positive (got: 0)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !IsUserFacing(err) {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("actor", "Ghost").WithCause(ErrUnknownActor)
	if err.Error() != "actor not found: Ghost" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !Is(err, ErrUnknownActor) {
		t.Error("Is(err, ErrUnknownActor) = false, want true")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", New("boom"), false},
		{"response", NewResponseError("x", nil), true},
		{"config", NewConfigError("x", nil), false},
		{"wrapped response", Wrap(NewResponseError("x", nil), "ctx"), true},
		{"canceled", Join(NewAgentError("x", nil), ErrCanceled), false},
		{"context", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	if got := GetSeverity(nil); got != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v", got)
	}
	if got := GetSeverity(New("plain")); got != SeverityError {
		t.Errorf("GetSeverity(plain) = %v", got)
	}
	if got := GetSeverity(NewResponseError("x", nil)); got != SeverityWarning {
		t.Errorf("GetSeverity(response) = %v", got)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "msg") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	err := Wrapf(ErrGameOver, "advance day %d", 3)
	if err.Error() != "advance day 3: game is over" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
	if !Is(err, ErrGameOver) {
		t.Error("Wrapf lost the cause")
	}
}
