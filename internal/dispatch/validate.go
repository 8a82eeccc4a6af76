package dispatch

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/nightfall/internal/agent"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/visibility"
)

// validate checks resp against schema and converts it to a Decision.
func validate(turn Turn, resp agent.Response, schema agent.Schema, vc visibility.Context) (Decision, error) {
	fail := func(msg string, cause error) error {
		return errors.NewResponseError(msg, cause).
			WithActor(turn.Actor).WithPhase(string(phase.Canonical(turn.Phase))).WithRaw(resp.Raw)
	}

	trace := strings.TrimSpace(resp.ReasoningTrace)
	if trace == "" {
		return nil, fail("reasoning_trace is required", errors.ErrMissingField)
	}

	if schema.Target {
		if resp.TargetIndex == nil {
			return nil, fail("target_index is required", errors.ErrMissingField)
		}
		idx := *resp.TargetIndex
		if idx < 0 || idx > schema.MaxIndex {
			return nil, fail(fmt.Sprintf("target_index %d outside 0..%d", idx, schema.MaxIndex), errors.ErrTargetOutOfRange)
		}
		target, _ := vc.TargetAt(idx)
		return Choice{Actor: turn.Actor, ReasoningTrace: trace, Target: target, Index: idx}, nil
	}

	if !schema.Statement {
		return nil, fail("phase takes no decisions", errors.ErrInvalidInput)
	}

	text := strings.TrimSpace(resp.Statement)
	if text == "" {
		return nil, fail("statement is required", errors.ErrMissingField)
	}
	st := Statement{Actor: turn.Actor, ReasoningTrace: trace, Text: text}
	if schema.Emotion {
		if resp.Emotion == "" {
			return nil, fail("emotion is required", errors.ErrMissingField)
		}
		if !agent.ValidEmotion(resp.Emotion) {
			return nil, fail(fmt.Sprintf("emotion %q not allowed", resp.Emotion), errors.ErrInvalidEmotion)
		}
		st.Emotion = resp.Emotion
	}
	return st, nil
}
