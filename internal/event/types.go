package event

import (
	"time"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
)

// Event type identifiers.
const (
	TypeEntryAppended = "entry.appended"
	TypePhaseChanged  = "phase.changed"
	TypeInputRequired = "input.required"
	TypeGameOver      = "game.over"
	TypeGameFailed    = "game.failed"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier.
	EventType() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// EntryAppendedEvent is emitted after every log append.
type EntryAppendedEvent struct {
	baseEvent
	Entry actionlog.Entry
	// Pacing is how long a presenter should dwell on the entry before
	// showing the next one, before any user scaling.
	Pacing time.Duration
}

// NewEntryAppendedEvent creates an EntryAppendedEvent.
func NewEntryAppendedEvent(e actionlog.Entry, pacing time.Duration) EntryAppendedEvent {
	return EntryAppendedEvent{baseEvent: newBaseEvent(TypeEntryAppended), Entry: e, Pacing: pacing}
}

// PhaseChangedEvent is emitted when the game moves to another phase.
type PhaseChangedEvent struct {
	baseEvent
	From phase.Phase
	To   phase.Phase
	Day  int
}

// NewPhaseChangedEvent creates a PhaseChangedEvent.
func NewPhaseChangedEvent(from, to phase.Phase, day int) PhaseChangedEvent {
	return PhaseChangedEvent{baseEvent: newBaseEvent(TypePhaseChanged), From: from, To: to, Day: day}
}

// InputRequiredEvent is emitted when the game pauses for the human seat.
type InputRequiredEvent struct {
	baseEvent
	Actor string
	Phase phase.Phase
	Day   int
	// Targets are the legal choices at indices 1..N for choosing phases.
	Targets []string
}

// NewInputRequiredEvent creates an InputRequiredEvent.
func NewInputRequiredEvent(actor string, p phase.Phase, day int, targets []string) InputRequiredEvent {
	return InputRequiredEvent{
		baseEvent: newBaseEvent(TypeInputRequired),
		Actor:     actor,
		Phase:     p,
		Day:       day,
		Targets:   targets,
	}
}

// GameOverEvent is emitted once a faction has won.
type GameOverEvent struct {
	baseEvent
	Winner roster.Faction
	Day    int
}

// NewGameOverEvent creates a GameOverEvent.
func NewGameOverEvent(winner roster.Faction, day int) GameOverEvent {
	return GameOverEvent{baseEvent: newBaseEvent(TypeGameOver), Winner: winner, Day: day}
}

// GameFailedEvent is emitted when the game stops on an unrecoverable error.
type GameFailedEvent struct {
	baseEvent
	Phase phase.Phase
	Day   int
	Err   error
}

// NewGameFailedEvent creates a GameFailedEvent.
func NewGameFailedEvent(p phase.Phase, day int, err error) GameFailedEvent {
	return GameFailedEvent{baseEvent: newBaseEvent(TypeGameFailed), Phase: p, Day: day, Err: err}
}
