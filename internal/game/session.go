// Package game runs the day/night loop.
//
// A Session holds all mutable state of one game: the roster, the action
// log, the current day and phase, and the phase-local scratch the engine
// uses while a phase is in progress. An Engine drives a Session forward,
// resolving actor turns through the dispatcher and system phases through
// the tally and roster, and pauses whenever the human seat has to act.
package game

import (
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/config"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
)

// Seat is the human participant. An empty Name, or ModeOmniscient, means
// nobody is seated and every turn goes to the agent.
type Seat struct {
	Name string
	Mode string
}

// Plays reports whether the seat takes its own turns.
func (s Seat) Plays() bool {
	return s.Name != "" && s.Mode == config.ModePlayer
}

// Settings describe a new game.
type Settings struct {
	// ID names the game; a random UUID is used when empty.
	ID string
	// Names is the seating order. Roles are dealt by shuffling the
	// distribution for len(Names) with Saboteurs saboteurs.
	Names     []string
	Saboteurs int
	// Actors, when set, is used as-is instead of dealing roles.
	Actors []roster.Actor
	// Seed drives role dealing and night tie-breaks. Zero picks one.
	Seed uint64
	Seat Seat
	// Sinks receive every appended entry.
	Sinks []actionlog.Sink
}

// InputRequest is what the human seat is being asked for.
type InputRequest struct {
	Actor string
	// Phase is the input sub-state the game is paused in.
	Phase phase.Phase
	Day   int
	// Targets are the legal choices at indices 1..N; empty for talking
	// phases. Index 0 is abstain.
	Targets []string
	// Emotion is set when a statement needs an emotion tag.
	Emotion bool
}

// Session is the state of one game. Only the Engine mutates it.
type Session struct {
	ID     string
	Seed   uint64
	Day    int
	Phase  phase.Phase
	Roster *roster.Roster
	Log    *actionlog.Log
	Seat   Seat

	// Phase-local scratch.
	entered bool
	queue   []string
	total   int
	pending *InputRequest

	failed error
	rng    *rand.Rand
}

// NewSession deals roles and returns a session in PreGame.
func NewSession(s Settings) (*Session, error) {
	seed := s.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x5deece66d))

	var (
		r   *roster.Roster
		err error
	)
	if len(s.Actors) > 0 {
		r, err = roster.New(s.Actors)
	} else {
		var dist []roster.Role
		dist, err = roster.Distribution(len(s.Names), s.Saboteurs)
		if err == nil {
			r, err = roster.Assign(s.Names, dist, rng)
		}
	}
	if err != nil {
		return nil, err
	}

	if s.Seat.Name != "" && s.Seat.Mode != config.ModeOmniscient && !r.Has(s.Seat.Name) {
		return nil, errors.NewConfigError("human seat is not on the roster", errors.ErrUnknownActor).
			WithActor(s.Seat.Name)
	}

	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}

	opts := make([]actionlog.Option, 0, len(s.Sinks))
	for _, sink := range s.Sinks {
		opts = append(opts, actionlog.WithSink(sink))
	}

	return &Session{
		ID:     id,
		Seed:   seed,
		Phase:  phase.PreGame,
		Roster: r,
		Log:    actionlog.New(opts...),
		Seat:   s.Seat,
		rng:    rng,
	}, nil
}

// Pending returns the open human-input request, if any.
func (s *Session) Pending() (InputRequest, bool) {
	if s.pending == nil {
		return InputRequest{}, false
	}
	req := *s.pending
	req.Targets = slices.Clone(req.Targets)
	return req, true
}

// Over reports whether a faction has won.
func (s *Session) Over() bool { return s.Phase.IsTerminal() }

// Failed returns the error that stopped the game, or nil.
func (s *Session) Failed() error { return s.failed }

// Winner returns the winning faction once the game is over.
func (s *Session) Winner() (roster.Faction, bool) {
	switch s.Phase {
	case phase.GameOverHope:
		return roster.FactionHope, true
	case phase.GameOverDespair:
		return roster.FactionDespair, true
	}
	return "", false
}
