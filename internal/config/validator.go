package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "dispatch.max_attempts")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateGame()...)
	errors = append(errors, c.validatePlayer()...)
	errors = append(errors, c.validateDispatch()...)
	errors = append(errors, c.validateAgent()...)
	errors = append(errors, c.validateDisplay()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateGame validates the GameConfig
func (c *Config) validateGame() []ValidationError {
	var errors []ValidationError

	n := len(c.Game.Roster)
	if n < 3 {
		errors = append(errors, ValidationError{
			Field:   "game.roster",
			Value:   n,
			Message: "needs at least 3 actors",
		})
	}

	seen := make(map[string]bool, n)
	folded := make(map[string]bool, n)
	for _, name := range c.Game.Roster {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			errors = append(errors, ValidationError{
				Field:   "game.roster",
				Value:   name,
				Message: "names must not be empty",
			})
			continue
		}
		if seen[trimmed] {
			errors = append(errors, ValidationError{
				Field:   "game.roster",
				Value:   name,
				Message: "names must be unique",
			})
		}
		seen[trimmed] = true
		folded[strings.ToLower(trimmed)] = true
	}

	if c.Game.Saboteurs < 0 {
		errors = append(errors, ValidationError{
			Field:   "game.saboteurs",
			Value:   c.Game.Saboteurs,
			Message: "must be non-negative",
		})
	} else if n >= 3 && c.Game.Saboteurs*2 >= n {
		errors = append(errors, ValidationError{
			Field:   "game.saboteurs",
			Value:   c.Game.Saboteurs,
			Message: fmt.Sprintf("must be fewer than half of %d actors", n),
		})
	}

	for name := range c.Game.Personas {
		if !folded[strings.ToLower(name)] {
			errors = append(errors, ValidationError{
				Field:   "game.personas",
				Value:   name,
				Message: "persona for an actor not on the roster",
			})
		}
	}

	return errors
}

// validatePlayer validates the PlayerConfig
func (c *Config) validatePlayer() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidModes(), c.Player.Mode) {
		errors = append(errors, ValidationError{
			Field:   "player.mode",
			Value:   c.Player.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidModes(), ", ")),
		})
	}

	// The omniscient viewer does not sit at the table.
	if c.Player.Mode != ModeOmniscient && !slices.Contains(c.Game.Roster, c.Player.Name) {
		errors = append(errors, ValidationError{
			Field:   "player.name",
			Value:   c.Player.Name,
			Message: "must be one of game.roster",
		})
	}

	return errors
}

// validateDispatch validates the DispatchConfig
func (c *Config) validateDispatch() []ValidationError {
	var errors []ValidationError

	if c.Dispatch.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "dispatch.max_attempts",
			Value:   c.Dispatch.MaxAttempts,
			Message: "must be at least 1",
		})
	}

	const maxAttempts = 20
	if c.Dispatch.MaxAttempts > maxAttempts {
		errors = append(errors, ValidationError{
			Field:   "dispatch.max_attempts",
			Value:   c.Dispatch.MaxAttempts,
			Message: fmt.Sprintf("exceeds maximum of %d", maxAttempts),
		})
	}

	if c.Dispatch.RetryWaitMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "dispatch.retry_wait_ms",
			Value:   c.Dispatch.RetryWaitMs,
			Message: "must be non-negative",
		})
	}

	if c.Dispatch.MaxParallel < 0 {
		errors = append(errors, ValidationError{
			Field:   "dispatch.max_parallel",
			Value:   c.Dispatch.MaxParallel,
			Message: "must be non-negative (0 = unbounded)",
		})
	}

	return errors
}

// validateAgent validates the AgentConfig
func (c *Config) validateAgent() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidBackends(), c.Agent.Backend) {
		errors = append(errors, ValidationError{
			Field:   "agent.backend",
			Value:   c.Agent.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	if c.Agent.Backend == BackendClaude && strings.TrimSpace(c.Agent.Command) == "" {
		errors = append(errors, ValidationError{
			Field:   "agent.command",
			Value:   c.Agent.Command,
			Message: "required for the claude backend",
		})
	}

	if c.Agent.Backend == BackendOpenAI && c.Agent.Model == "" {
		errors = append(errors, ValidationError{
			Field:   "agent.model",
			Value:   c.Agent.Model,
			Message: "required for the openai backend",
		})
	}

	if c.Agent.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "agent.timeout_seconds",
			Value:   c.Agent.TimeoutSeconds,
			Message: "must be non-negative (0 = no limit)",
		})
	}

	return errors
}

// validateDisplay validates the DisplayConfig
func (c *Config) validateDisplay() []ValidationError {
	var errors []ValidationError

	if c.Display.Pacing < 0 {
		errors = append(errors, ValidationError{
			Field:   "display.pacing",
			Value:   c.Display.Pacing,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if strings.ContainsRune(c.Logging.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "logging.dir",
			Value:   c.Logging.Dir,
			Message: "contains invalid null character",
		})
	}

	return errors
}
