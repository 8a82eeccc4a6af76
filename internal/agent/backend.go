package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/nightfall/internal/config"
	"github.com/Iron-Ham/nightfall/internal/errors"
)

// NewFromConfig builds the configured agent. seed feeds the offline backend.
func NewFromConfig(cfg config.AgentConfig, seed uint64) (Agent, error) {
	var (
		a   Agent
		err error
	)
	switch cfg.Backend {
	case config.BackendScripted, "":
		return NewRandom(seed), nil
	case config.BackendClaude:
		a = NewText(NewClaudeCLI(cfg.Command, cfg.Model))
	case config.BackendAnthropic:
		var c *Anthropic
		c, err = NewAnthropic(cfg.APIKey(), WithAnthropicModel(cfg.Model))
		a = NewText(c)
	case config.BackendOpenAI:
		var c *OpenAI
		c, err = NewOpenAI(cfg.APIKey(), cfg.BaseURL, cfg.Model)
		a = NewText(c)
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown agent backend %q", cfg.Backend), errors.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(a, cfg.Timeout()), nil
}

// WithTimeout bounds every call to a with d. A zero d returns a unchanged.
func WithTimeout(a Agent, d time.Duration) Agent {
	if d <= 0 {
		return a
	}
	return Func(func(ctx context.Context, req Request) (Response, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return a.Decide(ctx, req)
	})
}
