package dispatch

import "github.com/Iron-Ham/nightfall/internal/phase"

// Decision is the validated result of one actor's turn: a Statement in
// talking phases or a Choice in target-choosing phases.
type Decision interface {
	// Author is the actor who made the decision.
	Author() string
	// Reasoning is the private reasoning trace; it may be empty for
	// human-submitted decisions.
	Reasoning() string
	decision()
}

// Statement is a public utterance.
type Statement struct {
	Actor          string
	ReasoningTrace string
	Text           string
	// Emotion is set only in phases that take emotion tags.
	Emotion string
}

// Choice is a target pick. An empty Target is an abstention.
type Choice struct {
	Actor          string
	ReasoningTrace string
	Target         string
	// Index is the position the agent picked in its choice list.
	Index int
}

func (s Statement) Author() string    { return s.Actor }
func (s Statement) Reasoning() string { return s.ReasoningTrace }
func (Statement) decision()           {}

func (c Choice) Author() string    { return c.Actor }
func (c Choice) Reasoning() string { return c.ReasoningTrace }
func (Choice) decision()           {}

// Abstained reports whether the choice picks nobody.
func (c Choice) Abstained() bool { return c.Target == "" }

// Turn identifies one actor acting in one phase.
type Turn struct {
	Actor string
	// Phase may be an input sub-state; entries are logged under its
	// canonical phase.
	Phase phase.Phase
	Day   int
	// Guidance is free text from the human seat, added to the prompt.
	Guidance string
	// Position and Total give the speaker's place in a sequential round,
	// counting from 1. Zero Total omits it from the prompt.
	Position int
	Total    int
}

// Round is a set of actors deciding concurrently in the same phase.
type Round struct {
	Phase  phase.Phase
	Day    int
	Actors []string
}
