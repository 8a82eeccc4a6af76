package agent

import (
	"context"

	"github.com/Iron-Ham/nightfall/internal/errors"
)

// Completer turns a prompt into free-form text. Language-model backends
// implement it and are wrapped by Text to produce structured responses.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Text adapts a Completer to Agent by parsing its output as a YAML answer.
type Text struct {
	c Completer
}

// NewText wraps c.
func NewText(c Completer) *Text {
	return &Text{c: c}
}

// Decide sends the prompt and parses the reply. Transport failures become
// AgentErrors; unparseable replies become ResponseErrors.
func (t *Text) Decide(ctx context.Context, req Request) (Response, error) {
	out, err := t.c.Complete(ctx, req.Prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return Response{}, errors.Join(errors.ErrCanceled, ctx.Err())
		}
		var agentErr *errors.AgentError
		if errors.As(err, &agentErr) {
			return Response{}, err
		}
		return Response{}, errors.NewAgentError("completion failed", err).
			WithBackend(t.c.Name()).WithActor(req.Actor)
	}

	resp, err := ParseResponse(out)
	if err != nil {
		var respErr *errors.ResponseError
		if errors.As(err, &respErr) {
			respErr.WithActor(req.Actor).WithPhase(string(req.Phase))
		}
		return resp, err
	}
	return resp, nil
}
