package agent

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Iron-Ham/nightfall/internal/errors"
)

// ClaudeCLI runs the claude command line tool in print mode, one process
// per prompt. The prompt is written to stdin.
type ClaudeCLI struct {
	command string
	model   string
	args    []string
}

// NewClaudeCLI creates a CLI completer. An empty command defaults to "claude".
func NewClaudeCLI(command, model string) *ClaudeCLI {
	if command == "" {
		command = "claude"
	}
	return &ClaudeCLI{command: command, model: model}
}

// Name identifies the backend in errors and logs.
func (c *ClaudeCLI) Name() string { return "claude" }

// Args returns the arguments passed to the command.
func (c *ClaudeCLI) Args() []string {
	args := []string{"--print"}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	return append(args, c.args...)
}

// Complete runs the command and returns its stdout.
func (c *ClaudeCLI) Complete(ctx context.Context, prompt string) (string, error) {
	fields := strings.Fields(c.command)
	if len(fields) == 0 {
		return "", errors.NewAgentError("empty command", errors.ErrAgentUnavailable).
			WithBackend(c.Name()).WithRetryable(false)
	}

	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], c.Args()...)...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			// Missing binary will not fix itself between attempts.
			return "", errors.NewAgentError(fmt.Sprintf("cannot run %s", fields[0]), err).
				WithBackend(c.Name()).WithRetryable(false)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "command failed"
		}
		return "", errors.NewAgentError(msg, err).WithBackend(c.Name())
	}
	return stdout.String(), nil
}
