package game

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/agent"
	"github.com/Iron-Ham/nightfall/internal/dispatch"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/event"
	"github.com/Iron-Ham/nightfall/internal/logging"
	"github.com/Iron-Ham/nightfall/internal/phase"
)

// HumanInput answers an InputRequest.
type HumanInput struct {
	// Text is the seat's words in a talking phase. By default it guides
	// the agent voicing the seat; with Verbatim it is logged as-is.
	Text     string
	Verbatim bool
	// Emotion tags a verbatim statement; "normal" when empty.
	Emotion string
	// TargetIndex picks from InputRequest.Targets; 0 abstains.
	TargetIndex int
}

// Option configures an Engine.
type Option func(*Engine)

// WithBus publishes engine events on bus.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithLogger sets the engine logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDispatchOptions passes options through to the dispatcher.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(e *Engine) { e.dispatchOpts = append(e.dispatchOpts, opts...) }
}

// Engine drives a Session through the phase loop.
type Engine struct {
	s            *Session
	d            *dispatch.Dispatcher
	rec          *publisher
	bus          *event.Bus
	logger       *logging.Logger
	dispatchOpts []dispatch.Option
}

// NewEngine creates an engine for s whose actor turns are resolved by a.
func NewEngine(s *Session, a agent.Agent, opts ...Option) *Engine {
	e := &Engine{s: s, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = event.NewBus(e.logger)
	}
	e.logger = e.logger.WithGame(s.ID)

	dopts := append([]dispatch.Option{dispatch.WithLogger(e.logger)}, e.dispatchOpts...)
	e.rec = &publisher{log: s.Log, bus: e.bus}
	e.d = dispatch.New(a, e.rec, s.Roster, dopts...)
	return e
}

// Session returns the session being driven.
func (e *Engine) Session() *Session { return e.s }

// Bus returns the bus the engine publishes on.
func (e *Engine) Bus() *event.Bus { return e.bus }

// Pending returns the open human-input request, if any.
func (e *Engine) Pending() (InputRequest, bool) { return e.s.Pending() }

// Advance runs phases until the game ends or the human seat has to act.
// After a failure every call returns the same error wrapped in
// ErrGameFailed. Advancing a finished game is a no-op.
func (e *Engine) Advance(ctx context.Context) error {
	if e.s.failed != nil {
		return errors.Join(errors.ErrGameFailed, e.s.failed)
	}
	for !e.s.Over() && e.s.pending == nil {
		if err := ctx.Err(); err != nil {
			return errors.Join(errors.ErrCanceled, err)
		}
		if err := e.step(ctx); err != nil {
			if errors.Is(err, errors.ErrCanceled) || ctx.Err() != nil {
				return errors.Join(errors.ErrCanceled, err)
			}
			return e.fail(err)
		}
	}
	return nil
}

// Submit answers the pending request and continues the game.
// An invalid answer leaves the request open and returns a ValidationError.
func (e *Engine) Submit(ctx context.Context, in HumanInput) error {
	if e.s.failed != nil {
		return errors.Join(errors.ErrGameFailed, e.s.failed)
	}
	req, ok := e.s.Pending()
	if !ok {
		return errors.ErrNoPendingInput
	}
	canonical := phase.Canonical(req.Phase)
	turn := e.turn(req.Actor, canonical)

	var err error
	switch phase.RuleFor(canonical).Mode {
	case phase.ModeTalk:
		turn.Position, turn.Total = e.speakerPosition(req.Actor), e.s.total
		err = e.submitTalk(ctx, turn, req, in)
	case phase.ModeChoose:
		err = e.submitChoice(ctx, turn, req, in)
	}
	if err != nil {
		var verr *errors.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		return e.fail(err)
	}

	e.s.pending = nil
	e.s.queue = slices.DeleteFunc(e.s.queue, func(n string) bool { return n == req.Actor })
	e.s.Phase = canonical
	if len(e.s.queue) == 0 {
		e.transition(phase.Next(canonical))
	}
	return e.Advance(ctx)
}

// speakerPosition is actor's 1-based place in the current sequential round.
func (e *Engine) speakerPosition(actor string) int {
	done := e.s.total - len(e.s.queue)
	return done + slices.Index(e.s.queue, actor) + 1
}

func (e *Engine) submitTalk(ctx context.Context, turn dispatch.Turn, req InputRequest, in HumanInput) error {
	text := strings.TrimSpace(in.Text)
	if !in.Verbatim {
		turn.Guidance = text
		_, err := e.d.Decide(ctx, turn)
		return err
	}
	if text == "" {
		return errors.NewValidationError("statement is empty").WithField("text")
	}
	st := dispatch.Statement{Actor: req.Actor, Text: text}
	if req.Emotion {
		st.Emotion = in.Emotion
		if st.Emotion == "" {
			st.Emotion = agent.EmotionNormal
		}
		if !agent.ValidEmotion(st.Emotion) {
			return errors.NewValidationError("unknown emotion").WithField("emotion").
				WithValue(in.Emotion).WithCause(errors.ErrInvalidEmotion)
		}
	}
	return e.d.Record(ctx, turn, st)
}

func (e *Engine) submitChoice(ctx context.Context, turn dispatch.Turn, req InputRequest, in HumanInput) error {
	if in.TargetIndex < 0 || in.TargetIndex > len(req.Targets) {
		return errors.NewValidationError(fmt.Sprintf("choose 0..%d", len(req.Targets))).
			WithField("target_index").WithValue(in.TargetIndex).WithCause(errors.ErrTargetOutOfRange)
	}
	target := ""
	if in.TargetIndex > 0 {
		target = req.Targets[in.TargetIndex-1]
	}
	return e.d.Record(ctx, turn, dispatch.Choice{Actor: req.Actor, Target: target, Index: in.TargetIndex})
}

func (e *Engine) fail(err error) error {
	e.s.failed = err
	e.logger.WithPhase(string(e.s.Phase)).Error("game failed", "day", e.s.Day, "error", err.Error())
	e.bus.Publish(event.NewGameFailedEvent(e.s.Phase, e.s.Day, err))
	return errors.Join(errors.ErrGameFailed, err)
}

// step runs one unit of work in the current phase.
func (e *Engine) step(ctx context.Context) error {
	p := phase.Canonical(e.s.Phase)
	rule := phase.RuleFor(p)

	if rule.Mode == phase.ModeSystem {
		if err := e.resolve(ctx, p); err != nil {
			if errors.IsFatal(err) {
				return err
			}
			e.logger.WithPhase(string(p)).Report("resolved without a decision", err)
		}
		if !e.s.Over() {
			e.transition(e.nextPhase(p))
		}
		return nil
	}

	if !e.s.entered {
		e.s.entered = true
		e.s.queue = e.s.Roster.Living(rule.Actors...)
		e.s.total = len(e.s.queue)
		if len(e.s.queue) == 0 {
			if err := e.skip(ctx, p); err != nil {
				return err
			}
			e.transition(phase.Next(p))
			return nil
		}
	}

	if rule.Parallel {
		return e.stepParallel(ctx, p)
	}
	return e.stepSequential(ctx, p)
}

func (e *Engine) stepSequential(ctx context.Context, p phase.Phase) error {
	if len(e.s.queue) == 0 {
		e.transition(phase.Next(p))
		return nil
	}
	actor := e.s.queue[0]
	if e.humanTurn(actor) {
		return e.requestInput(actor, p)
	}
	turn := e.turn(actor, p)
	if phase.RuleFor(p).Mode == phase.ModeTalk {
		turn.Position, turn.Total = e.speakerPosition(actor), e.s.total
	}
	if _, err := e.d.Decide(ctx, turn); err != nil {
		return err
	}
	e.s.queue = e.s.queue[1:]
	if len(e.s.queue) == 0 {
		e.transition(phase.Next(p))
	}
	return nil
}

// stepParallel collects the human seat's choice first, if it is in the
// round, and then dispatches everyone else at once. The human's entry is
// already in the log by then, but the deciding agents cannot see it.
func (e *Engine) stepParallel(ctx context.Context, p phase.Phase) error {
	for _, actor := range e.s.queue {
		if e.humanTurn(actor) {
			return e.requestInput(actor, p)
		}
	}
	round := dispatch.Round{Phase: p, Day: e.s.Day, Actors: e.s.queue}
	if _, err := e.d.DecideAll(ctx, round); err != nil {
		return err
	}
	e.s.queue = nil
	e.transition(phase.Next(p))
	return nil
}

func (e *Engine) humanTurn(actor string) bool {
	return e.s.Seat.Plays() && actor == e.s.Seat.Name && e.s.Roster.IsAlive(actor)
}

func (e *Engine) requestInput(actor string, p phase.Phase) error {
	rule := phase.RuleFor(p)
	req := &InputRequest{Actor: actor, Phase: rule.Input, Day: e.s.Day, Emotion: rule.Emotion}
	if rule.Mode == phase.ModeChoose {
		vc, err := e.d.Context(e.turn(actor, p))
		if err != nil {
			return err
		}
		req.Targets = vc.Targets
	}
	e.s.pending = req
	e.s.Phase = rule.Input
	e.logger.WithPhase(string(p)).Info("waiting for input", "actor", actor)
	e.bus.Publish(event.NewPhaseChangedEvent(p, rule.Input, e.s.Day))
	e.bus.Publish(event.NewInputRequiredEvent(actor, rule.Input, e.s.Day, slices.Clone(req.Targets)))
	return nil
}

func (e *Engine) turn(actor string, p phase.Phase) dispatch.Turn {
	return dispatch.Turn{Actor: actor, Phase: p, Day: e.s.Day}
}

// nextPhase is phase.Next except that a new day starts after the
// execution reveal.
func (e *Engine) nextPhase(p phase.Phase) phase.Phase {
	if p == phase.ExecutionReveal {
		e.s.Day++
	}
	return phase.Next(p)
}

func (e *Engine) transition(to phase.Phase) {
	from := e.s.Phase
	e.s.Phase = to
	e.s.entered = false
	e.s.queue = nil
	e.s.total = 0
	e.logger.Debug("phase changed", "from", string(from), "to", string(to), "day", e.s.Day)
	e.bus.Publish(event.NewPhaseChangedEvent(from, to, e.s.Day))
}

// publisher forwards appends to the log and announces them on the bus.
type publisher struct {
	log *actionlog.Log
	bus *event.Bus
}

func (p *publisher) Append(ctx context.Context, e actionlog.Entry) (actionlog.Entry, error) {
	stored, err := p.log.Append(ctx, e)
	if stored.Seq > 0 {
		p.bus.Publish(event.NewEntryAppendedEvent(stored, Pacing(stored)))
	}
	return stored, err
}

func (p *publisher) Snapshot() []actionlog.Entry { return p.log.Snapshot() }

// Pacing is the dwell time a presenter should give an entry: reading time
// for statements, a beat for outcomes, nothing for private traces.
func Pacing(e actionlog.Entry) time.Duration {
	switch e.Kind {
	case actionlog.KindStatement:
		words := len(strings.Fields(e.Content))
		return time.Second + time.Duration(words)*250*time.Millisecond
	case actionlog.KindSystem:
		return 2 * time.Second
	case actionlog.KindVote, actionlog.KindDecision:
		return 500 * time.Millisecond
	}
	return 0
}
