// Package actionlog is the append-only record of everything that happens in
// a game. Entries are immutable once appended and carry a 1-based sequence
// number assigned by the log. Every other view of the game (prompt
// contexts, tallies, transcripts) is derived from it.
package actionlog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/phase"
)

// SystemActor is the author of engine-generated outcome entries.
const SystemActor = "Moderator"

// Kind classifies an entry.
type Kind string

const (
	KindReasoning Kind = "reasoning_trace"
	KindStatement Kind = "public_statement"
	KindDecision  Kind = "private_decision"
	KindVote      Kind = "public_vote"
	KindSystem    Kind = "system_outcome"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindReasoning, KindStatement, KindDecision, KindVote, KindSystem:
		return true
	}
	return false
}

// Outcome tags a system entry with what it resolved.
type Outcome string

const (
	OutcomeGameStart     Outcome = "game_start"
	OutcomeKillTarget    Outcome = "kill_target"
	OutcomeVoteSummary   Outcome = "vote_summary"
	OutcomeInvestigation Outcome = "investigation"
	OutcomeProtection    Outcome = "protection"
	OutcomeKill          Outcome = "kill"
	OutcomeSafeNight     Outcome = "safe_night"
	OutcomeTrialTarget   Outcome = "trial_target"
	OutcomeExecution     Outcome = "execution"
	OutcomeNoExecution   Outcome = "no_execution"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeGameOver      Outcome = "game_over"
)

// Entry is one immutable record in the log.
type Entry struct {
	Seq       int         `json:"seq"`
	Day       int         `json:"day"`
	Phase     phase.Phase `json:"phase"`
	Actor     string      `json:"actor"`
	Kind      Kind        `json:"kind"`
	Content   string      `json:"content,omitempty"`
	Target    string      `json:"target,omitempty"`
	Emotion   string      `json:"emotion,omitempty"`
	Outcome   Outcome     `json:"outcome,omitempty"`
	Recipient string      `json:"recipient,omitempty"`
	Time      time.Time   `json:"time"`
}

// Sink receives every entry after it is appended. Journals and transcript
// writers implement it.
type Sink interface {
	Write(ctx context.Context, e Entry) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Entry) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, e Entry) error { return f(ctx, e) }

// Log is the in-memory action log. It is safe for concurrent use; appends
// are serialized.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	sinks   []Sink
	now     func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithSink forwards each appended entry to s.
func WithSink(s Sink) Option {
	return func(l *Log) { l.sinks = append(l.sinks, s) }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// New creates an empty log.
func New(opts ...Option) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append validates e, stamps it with the next sequence number and the
// current time, stores it, and forwards it to every sink. Input sub-state
// phases are recorded under their canonical phase.
//
// A sink failure is returned after the entry has been stored in memory.
func (l *Log) Append(ctx context.Context, e Entry) (Entry, error) {
	if err := validate(e); err != nil {
		return Entry{}, err
	}
	e.Phase = phase.Canonical(e.Phase)

	l.mu.Lock()
	e.Seq = len(l.entries) + 1
	e.Time = l.now()
	l.entries = append(l.entries, e)
	sinks := l.sinks
	// Sinks run under the lock so they observe entries in sequence order.
	var sinkErr error
	for _, s := range sinks {
		if err := s.Write(ctx, e); err != nil {
			sinkErr = errors.Join(sinkErr, err)
		}
	}
	l.mu.Unlock()

	if sinkErr != nil {
		return e, errors.Wrapf(sinkErr, "write entry %d to sink", e.Seq)
	}
	return e, nil
}

// Load replaces the log's contents with previously recorded entries without
// forwarding them to sinks. Used when rebuilding a game from a journal.
func (l *Log) Load(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = slices.Clone(entries)
}

func validate(e Entry) error {
	if !e.Kind.Valid() {
		return errors.NewValidationError("unknown entry kind").WithField("kind").WithValue(e.Kind)
	}
	if !e.Phase.Valid() {
		return errors.NewValidationError("unknown phase").WithField("phase").WithValue(e.Phase)
	}
	if e.Actor == "" {
		return errors.NewValidationError("entry has no actor").WithField("actor")
	}
	if e.Day < 0 {
		return errors.NewValidationError("negative day").WithField("day").WithValue(e.Day)
	}
	return nil
}

// Snapshot returns a copy of every entry in append order.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Filter returns every entry matching all of the given predicates.
func (l *Log) Filter(preds ...Predicate) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, e := range l.entries {
		if matchAll(e, preds) {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recent entry matching all of the given predicates.
func (l *Log) Last(preds ...Predicate) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if matchAll(l.entries[i], preds) {
			return l.entries[i], true
		}
	}
	return Entry{}, false
}

func matchAll(e Entry, preds []Predicate) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}
