// Package errors provides the error taxonomy for the nightfall engine. It
// defines sentinel errors, typed domain errors carrying game context, and
// classification helpers used by the decision dispatcher and the phase
// state machine to decide between retrying, degrading, and aborting.
//
// # Error Taxonomy
//
// Domain errors map onto the engine's failure classes:
//   - ConfigError: missing or invalid per-actor context (unknown actor,
//     bad configuration). Fatal and never retried.
//   - ResponseError: the reasoning agent answered, but the answer is
//     malformed, out of range, or missing a field required by the phase.
//     Retryable until the attempt budget is spent.
//   - AgentError: the reasoning agent could not be reached or failed.
//     Retryable unless marked otherwise.
//   - StateError: the action log does not contain what a resolution step
//     expected. Callers degrade to a descriptive system entry.
//
// Semantic errors cover common conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//
// # Usage
//
//	err := errors.NewResponseError("target index out of range", errors.ErrTargetOutOfRange).
//		WithActor("Kaede").WithPhase("trial_vote")
//
//	if errors.IsRetryable(err) { ... }
//	if errors.Is(err, errors.ErrTargetOutOfRange) { ... }
//
//	var cfgErr *errors.ConfigError
//	if errors.As(err, &cfgErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors the engine can degrade around.
	SeverityWarning
	// SeverityError is for errors that fail the current turn or batch.
	SeverityError
	// SeverityCritical is for errors that end the game run.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Roster-related sentinel errors
var (
	// ErrUnknownActor indicates a name that is not on the roster.
	ErrUnknownActor = New("unknown actor")
	// ErrActorEliminated indicates an operation on an actor who is no longer alive.
	ErrActorEliminated = New("actor eliminated")
	// ErrRolesAssigned indicates a second attempt to assign roles.
	ErrRolesAssigned = New("roles already assigned")
	// ErrRosterTooSmall indicates too few actors for the role distribution.
	ErrRosterTooSmall = New("roster too small")
)

// Agent response sentinel errors
var (
	// ErrMalformedResponse indicates a response that could not be parsed.
	ErrMalformedResponse = New("malformed response")
	// ErrMissingField indicates a response missing a field the phase requires.
	ErrMissingField = New("missing required field")
	// ErrTargetOutOfRange indicates a target index outside 0..N.
	ErrTargetOutOfRange = New("target index out of range")
	// ErrInvalidEmotion indicates an emotion tag outside the allowed set.
	ErrInvalidEmotion = New("invalid emotion")
	// ErrAgentUnavailable indicates the reasoning agent could not be reached.
	ErrAgentUnavailable = New("agent unavailable")
)

// Game flow sentinel errors
var (
	// ErrGameOver indicates an attempt to advance a finished game.
	ErrGameOver = New("game is over")
	// ErrGameFailed indicates an attempt to advance a game after a fatal error.
	ErrGameFailed = New("game failed")
	// ErrNoPendingInput indicates a human submission when none was requested.
	ErrNoPendingInput = New("no pending human input")
	// ErrNoResolution indicates the log holds no final decision for a phase.
	ErrNoResolution = New("no resolution recorded")
	// ErrPartialBatch indicates a parallel round where some slots failed.
	ErrPartialBatch = New("parallel round incomplete")
)

// General sentinel errors
var (
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// GameError is the base interface for all nightfall errors.
type GameError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the failed operation may succeed when
	// attempted again.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to show to the
	// human participant.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// turnContext renders the actor/phase/day context shared by turn errors.
type turnContext struct {
	Actor string
	Phase string
	Day   int
}

func (c turnContext) format(kind, message string, cause error) string {
	var parts []string
	if c.Actor != "" {
		parts = append(parts, "actor="+c.Actor)
	}
	if c.Phase != "" {
		parts = append(parts, "phase="+c.Phase)
	}
	if c.Day > 0 {
		parts = append(parts, fmt.Sprintf("day=%d", c.Day))
	}

	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
	}
	return fmt.Sprintf("%s: %s", prefix, message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ConfigError reports missing or invalid context needed to run a turn, such
// as an actor name that is not on the roster. It is never retryable.
//
// Example:
//
//	err := errors.NewConfigError("cannot build context", errors.ErrUnknownActor).WithActor("Nobody")
//	fmt.Println(err) // "config error [actor=Nobody]: cannot build context: unknown actor"
type ConfigError struct {
	baseError
	turnContext
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			userFacing: true,
		},
	}
}

// WithActor adds the actor name to the error context.
func (e *ConfigError) WithActor(name string) *ConfigError {
	e.Actor = name
	return e
}

// WithPhase adds the phase identifier to the error context.
func (e *ConfigError) WithPhase(phase string) *ConfigError {
	e.Phase = phase
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	return e.format("config error", e.message, e.cause)
}

// ResponseError reports a reasoning-agent answer that does not satisfy the
// phase schema. Retryable by default.
type ResponseError struct {
	baseError
	turnContext
	// Raw is the unparsed agent output, kept for debug logging.
	Raw string
}

// NewResponseError creates a new ResponseError.
func NewResponseError(message string, cause error) *ResponseError {
	return &ResponseError{
		baseError: baseError{
			message:   message,
			cause:     cause,
			severity:  SeverityWarning,
			retryable: true,
		},
	}
}

// WithActor adds the actor name to the error context.
func (e *ResponseError) WithActor(name string) *ResponseError {
	e.Actor = name
	return e
}

// WithPhase adds the phase identifier to the error context.
func (e *ResponseError) WithPhase(phase string) *ResponseError {
	e.Phase = phase
	return e
}

// WithRaw attaches the raw agent output.
func (e *ResponseError) WithRaw(raw string) *ResponseError {
	e.Raw = raw
	return e
}

// Error returns the formatted error message.
func (e *ResponseError) Error() string {
	return e.format("response error", e.message, e.cause)
}

// AgentError reports a failure to obtain any answer from the reasoning agent.
type AgentError struct {
	baseError
	turnContext
	Backend string
}

// NewAgentError creates a new AgentError. Agent failures are retryable unless
// WithRetryable(false) is applied.
func NewAgentError(message string, cause error) *AgentError {
	return &AgentError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithBackend records which agent backend failed.
func (e *AgentError) WithBackend(name string) *AgentError {
	e.Backend = name
	return e
}

// WithActor adds the actor name to the error context.
func (e *AgentError) WithActor(name string) *AgentError {
	e.Actor = name
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *AgentError) WithRetryable(r bool) *AgentError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *AgentError) Error() string {
	kind := "agent error"
	if e.Backend != "" {
		kind = fmt.Sprintf("agent error (%s)", e.Backend)
	}
	return e.format(kind, e.message, e.cause)
}

// StateError reports a log or roster state that a resolution step did not
// expect. The engine logs it and continues with a "no resolution" outcome.
type StateError struct {
	baseError
	turnContext
}

// NewStateError creates a new StateError.
func NewStateError(message string, cause error) *StateError {
	return &StateError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityWarning,
		},
	}
}

// WithPhase adds the phase identifier to the error context.
func (e *StateError) WithPhase(phase string) *StateError {
	e.Phase = phase
	return e
}

// WithDay adds the day number to the error context.
func (e *StateError) WithDay(day int) *StateError {
	e.Day = day
	return e
}

// Error returns the formatted error message.
func (e *StateError) Error() string {
	return e.format("state error", e.message, e.cause)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError indicates that a resource could not be found.
type NotFoundError struct {
	ResourceType string
	ResourceID   string
	cause        error
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{ResourceType: resourceType, ResourceID: resourceID}
}

// WithCause attaches an underlying error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.ResourceType, e.ResourceID)
}

// Unwrap returns the underlying error.
func (e *NotFoundError) Unwrap() error {
	return e.cause
}

// ValidationError indicates invalid input or state.
type ValidationError struct {
	Field   string
	Value   any
	Message string
	cause   error
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// WithField records the field that failed validation.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the offending value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause attaches an underlying error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Value != nil {
		msg = fmt.Sprintf("%s (got: %v)", msg, e.Value)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return "validation failed: " + msg
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a condition that may
// clear on another attempt. Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if Is(err, ErrCanceled) {
		return false
	}

	var gameErr GameError
	if As(err, &gameErr) {
		return gameErr.IsRetryable()
	}
	return false
}

// IsFatal returns true if the error must end the current game run.
// Everything that is not a degradable StateError is fatal once retries are
// exhausted.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var stateErr *StateError
	return !As(err, &stateErr)
}

// IsUserFacing returns true if the error message is safe to display to the
// human participant.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var gameErr GameError
	if As(err, &gameErr) {
		return gameErr.IsUserFacing()
	}

	var notFound *NotFoundError
	var validation *ValidationError
	return As(err, &notFound) || As(err, &validation)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement GameError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var gameErr GameError
	if As(err, &gameErr) {
		return gameErr.Severity()
	}
	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
