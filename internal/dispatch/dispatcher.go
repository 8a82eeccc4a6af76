// Package dispatch turns actor turns into validated, logged decisions.
//
// For each turn the dispatcher builds the actor's filtered context from a
// log snapshot, renders a prompt, asks the agent, and validates the answer
// against the phase schema, retrying invalid answers a bounded number of
// times. A successful turn appends exactly two entries: the actor's private
// reasoning trace and the action itself.
//
// Parallel rounds build every context from the same snapshot and append
// nothing until all slots have finished, so no actor in a round can see
// another's answer.
package dispatch

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/agent"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
	"github.com/Iron-Ham/nightfall/internal/visibility"
)

// Recorder is the log surface the dispatcher needs. *actionlog.Log
// satisfies it; the game session wraps it to publish events.
type Recorder interface {
	Append(ctx context.Context, e actionlog.Entry) (actionlog.Entry, error)
	Snapshot() []actionlog.Entry
}

// Dispatcher resolves turns through an agent.
type Dispatcher struct {
	agent  agent.Agent
	rec    Recorder
	roster *roster.Roster
	cfg    options
}

// New creates a Dispatcher.
func New(a agent.Agent, rec Recorder, r *roster.Roster, opts ...Option) *Dispatcher {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxAttempts < 1 {
		cfg.maxAttempts = 1
	}
	return &Dispatcher{agent: a, rec: rec, roster: r, cfg: cfg}
}

// Decide resolves one turn sequentially and logs it.
func (d *Dispatcher) Decide(ctx context.Context, turn Turn) (Decision, error) {
	dec, err := d.request(ctx, turn, d.rec.Snapshot())
	if err != nil {
		return nil, err
	}
	if err := d.commit(ctx, turn, dec); err != nil {
		return nil, err
	}
	return dec, nil
}

type slotResult struct {
	actor    string
	decision Decision
}

// DecideAll resolves every actor in the round concurrently. All contexts
// are built from one log snapshot; entries are appended after every slot
// has finished, in the round's actor order.
//
// By default any slot failure fails the whole round and nothing is logged.
// With AllowPartial, failed slots are dropped and the rest are logged.
func (d *Dispatcher) DecideAll(ctx context.Context, round Round) (map[string]Decision, error) {
	if len(round.Actors) == 0 {
		return map[string]Decision{}, nil
	}
	snapshot := d.rec.Snapshot()

	p := pool.NewWithResults[slotResult]().WithContext(ctx)
	if !d.cfg.allowPartial {
		p = p.WithCancelOnError()
	}
	if d.cfg.maxParallel > 0 {
		p = p.WithMaxGoroutines(d.cfg.maxParallel)
	}

	for _, actor := range round.Actors {
		turn := Turn{Actor: actor, Phase: round.Phase, Day: round.Day}
		p.Go(func(ctx context.Context) (slotResult, error) {
			dec, err := d.request(ctx, turn, snapshot)
			if err != nil {
				return slotResult{}, err
			}
			return slotResult{actor: actor, decision: dec}, nil
		})
	}

	results, err := p.Wait()
	if err != nil && !d.cfg.allowPartial {
		return nil, errors.Join(errors.ErrPartialBatch, err)
	}
	if err != nil {
		d.cfg.logger.WithPhase(string(round.Phase)).Warn("parallel round lost slots",
			"error", err.Error(), "kept", len(results), "of", len(round.Actors))
	}

	byActor := make(map[string]Decision, len(results))
	for _, r := range results {
		byActor[r.actor] = r.decision
	}
	for _, actor := range round.Actors {
		dec, ok := byActor[actor]
		if !ok {
			continue
		}
		turn := Turn{Actor: actor, Phase: round.Phase, Day: round.Day}
		if err := d.commit(ctx, turn, dec); err != nil {
			return byActor, err
		}
	}
	return byActor, nil
}

// Record logs a decision made by the human seat. Choices are checked
// against the actor's legal targets; a reasoning entry is written only if
// the decision carries one.
func (d *Dispatcher) Record(ctx context.Context, turn Turn, dec Decision) error {
	if dec.Author() != turn.Actor {
		return errors.NewValidationError("decision author does not match turn").
			WithField("actor").WithValue(dec.Author())
	}
	if c, ok := dec.(Choice); ok && !c.Abstained() {
		vc, err := d.context(turn, d.rec.Snapshot())
		if err != nil {
			return err
		}
		if vc.IndexOf(c.Target) < 0 {
			return errors.NewValidationError("not a legal target").
				WithField("target").WithValue(c.Target).WithCause(errors.ErrTargetOutOfRange)
		}
	}
	return d.commit(ctx, turn, dec)
}

// Context returns what turn.Actor may see right now, as the agent would.
func (d *Dispatcher) Context(turn Turn) (visibility.Context, error) {
	return d.context(turn, d.rec.Snapshot())
}

func (d *Dispatcher) context(turn Turn, snapshot []actionlog.Entry) (visibility.Context, error) {
	return visibility.Build(visibility.Request{
		Viewer:   turn.Actor,
		Phase:    turn.Phase,
		Day:      turn.Day,
		Deciding: true,
	}, snapshot, d.roster)
}

// request runs one turn through the agent without logging anything.
func (d *Dispatcher) request(ctx context.Context, turn Turn, snapshot []actionlog.Entry) (Decision, error) {
	canonical := phase.Canonical(turn.Phase)
	log := d.cfg.logger.WithPhase(string(canonical)).WithActor(turn.Actor)

	if phase.RuleFor(canonical).Mode == phase.ModeSystem {
		return nil, errors.NewConfigError("phase has no actor turns", errors.ErrInvalidInput).
			WithActor(turn.Actor).WithPhase(string(canonical))
	}

	vc, err := d.context(turn, snapshot)
	if err != nil {
		return nil, err
	}
	schema := agent.SchemaFor(canonical, len(vc.Targets))

	prompt, err := renderPrompt(buildPromptData(vc, turn, d.cfg.persona(turn.Actor), schema, d.roster))
	if err != nil {
		return nil, errors.NewConfigError("cannot render prompt", err).WithActor(turn.Actor)
	}
	log.Debug("agent prompt", "prompt", prompt)

	req := agent.Request{
		Actor:   turn.Actor,
		Role:    vc.Role,
		Phase:   canonical,
		Day:     turn.Day,
		Prompt:  prompt,
		Schema:  schema,
		Targets: slices.Clone(vc.Targets),
	}

	attempt := 0
	operation := func() (Decision, error) {
		attempt++
		req.Attempt = attempt
		resp, err := d.agent.Decide(ctx, req)
		if err == nil {
			log.Debug("agent response", "attempt", attempt, "raw", resp.Raw)
			var dec Decision
			dec, err = validate(turn, resp, schema, vc)
			if err == nil {
				return dec, nil
			}
		}
		if !errors.IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	dec, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(d.cfg.retryWait)),
		backoff.WithMaxTries(uint(d.cfg.maxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("invalid agent answer, retrying", "attempt", attempt, "error", err.Error(), "wait", next)
		}),
	)
	if err != nil {
		log.Report("turn failed", err, "attempts", attempt)
		return nil, errors.Wrapf(err, "%s in %s after %d attempt(s)", turn.Actor, canonical, attempt)
	}
	return dec, nil
}

// commit appends the reasoning trace and the action for dec.
func (d *Dispatcher) commit(ctx context.Context, turn Turn, dec Decision) error {
	canonical := phase.Canonical(turn.Phase)
	base := actionlog.Entry{Day: turn.Day, Phase: canonical, Actor: turn.Actor}

	if trace := dec.Reasoning(); trace != "" {
		e := base
		e.Kind = actionlog.KindReasoning
		e.Content = trace
		if _, err := d.rec.Append(ctx, e); err != nil {
			return err
		}
	}

	action := base
	switch v := dec.(type) {
	case Statement:
		action.Kind = actionlog.KindStatement
		action.Content = v.Text
		action.Emotion = v.Emotion
	case Choice:
		action.Kind = choiceKind(canonical)
		action.Target = v.Target
	default:
		return fmt.Errorf("unknown decision type %T", dec)
	}
	_, err := d.rec.Append(ctx, action)
	return err
}

// choiceKind is public-vote for open votes and private-decision for
// role-private choices.
func choiceKind(p phase.Phase) actionlog.Kind {
	rule := phase.RuleFor(p)
	if rule.Vote && rule.Private == "" {
		return actionlog.KindVote
	}
	return actionlog.KindDecision
}
