// Package phase enumerates the game's phases and the fixed order they run in.
//
// Every canonical phase has a rule describing who acts in it, whether those
// actors talk or choose a target, whether the round runs concurrently, and
// which role (if any) may see what happens in it. Input sub-states exist for
// the phases a human seat can act in; they share the rule of their canonical
// phase and are never written to the action log.
package phase

import "github.com/Iron-Ham/nightfall/internal/roster"

// Phase identifies a step of the game loop.
type Phase string

const (
	PreGame   Phase = "pre_game"
	GameStart Phase = "game_start"

	NightDiscussion      Phase = "night_discussion"
	NightDiscussionInput Phase = "night_discussion_input"
	NightVote            Phase = "night_vote"
	NightVoteInput       Phase = "night_vote_input"
	VoteReveal           Phase = "vote_reveal"

	NightInvestigate      Phase = "night_investigate"
	NightInvestigateInput Phase = "night_investigate_input"
	InvestigateReveal     Phase = "investigate_reveal"

	NightProtect      Phase = "night_protect"
	NightProtectInput Phase = "night_protect_input"
	ProtectReveal     Phase = "protect_reveal"

	MorningResolution Phase = "morning_resolution"

	TrialDiscussion      Phase = "trial_discussion"
	TrialDiscussionInput Phase = "trial_discussion_input"
	TrialVote            Phase = "trial_vote"
	TrialVoteInput       Phase = "trial_vote_input"
	ExecutionReveal      Phase = "execution_reveal"

	GameOverHope    Phase = "game_over_hope"
	GameOverDespair Phase = "game_over_despair"
)

// Mode says what an actor produces in a phase.
type Mode int

const (
	// ModeSystem phases are resolved by the engine with no actor turns.
	ModeSystem Mode = iota
	// ModeTalk phases collect a reasoning trace and a public statement.
	ModeTalk
	// ModeChoose phases collect a reasoning trace and a target index.
	ModeChoose
)

// Rule describes how a canonical phase runs.
type Rule struct {
	// Mode is what each actor produces.
	Mode Mode
	// Actors restricts the acting set to holders of these roles. Empty means
	// every living actor.
	Actors []roster.Role
	// Parallel rounds dispatch all actors concurrently.
	Parallel bool
	// Private names the only role allowed to see entries logged in this phase.
	Private roster.Role
	// Emotion phases require an emotion tag on each statement.
	Emotion bool
	// Vote phases record public-vote entries and keep the round secret from
	// other voters while it is in progress.
	Vote bool
	// Input is the human sub-state for this phase, if it has one.
	Input Phase
}

var rules = map[Phase]Rule{
	PreGame:   {Mode: ModeSystem},
	GameStart: {Mode: ModeSystem},

	NightDiscussion: {
		Mode:    ModeTalk,
		Actors:  []roster.Role{roster.Saboteur},
		Private: roster.Saboteur,
		Input:   NightDiscussionInput,
	},
	NightVote: {
		Mode:     ModeChoose,
		Actors:   []roster.Role{roster.Saboteur},
		Parallel: true,
		Private:  roster.Saboteur,
		Vote:     true,
		Input:    NightVoteInput,
	},
	VoteReveal: {Mode: ModeSystem, Private: roster.Saboteur},

	NightInvestigate: {
		Mode:    ModeChoose,
		Actors:  []roster.Role{roster.Seeker},
		Private: roster.Seeker,
		Input:   NightInvestigateInput,
	},
	InvestigateReveal: {Mode: ModeSystem, Private: roster.Seeker},

	NightProtect: {
		Mode:    ModeChoose,
		Actors:  []roster.Role{roster.Protector},
		Private: roster.Protector,
		Input:   NightProtectInput,
	},
	ProtectReveal: {Mode: ModeSystem, Private: roster.Protector},

	MorningResolution: {Mode: ModeSystem},

	TrialDiscussion: {
		Mode:    ModeTalk,
		Emotion: true,
		Input:   TrialDiscussionInput,
	},
	TrialVote: {
		Mode:     ModeChoose,
		Parallel: true,
		Vote:     true,
		Input:    TrialVoteInput,
	},
	ExecutionReveal: {Mode: ModeSystem},

	GameOverHope:    {Mode: ModeSystem},
	GameOverDespair: {Mode: ModeSystem},
}

var inputs = map[Phase]Phase{
	NightDiscussionInput:  NightDiscussion,
	NightVoteInput:        NightVote,
	NightInvestigateInput: NightInvestigate,
	NightProtectInput:     NightProtect,
	TrialDiscussionInput:  TrialDiscussion,
	TrialVoteInput:        TrialVote,
}

var next = map[Phase]Phase{
	PreGame:           GameStart,
	GameStart:         NightDiscussion,
	NightDiscussion:   NightVote,
	NightVote:         VoteReveal,
	VoteReveal:        NightInvestigate,
	NightInvestigate:  InvestigateReveal,
	InvestigateReveal: NightProtect,
	NightProtect:      ProtectReveal,
	ProtectReveal:     MorningResolution,
	MorningResolution: TrialDiscussion,
	TrialDiscussion:   TrialVote,
	TrialVote:         ExecutionReveal,
	ExecutionReveal:   NightDiscussion,
	GameOverHope:      GameOverHope,
	GameOverDespair:   GameOverDespair,
}

// Canonical maps an input sub-state to the phase it belongs to. Canonical
// phases map to themselves.
func Canonical(p Phase) Phase {
	if c, ok := inputs[p]; ok {
		return c
	}
	return p
}

// Next returns the canonical successor of p. Input sub-states advance as
// their canonical phase would; terminal phases return themselves. Win checks
// that cut the loop short are the engine's job, not this table's.
func Next(p Phase) Phase {
	if n, ok := next[Canonical(p)]; ok {
		return n
	}
	return p
}

// RuleFor returns the rule of p's canonical phase.
func RuleFor(p Phase) Rule {
	return rules[Canonical(p)]
}

// Valid reports whether p is a known phase or input sub-state.
func (p Phase) Valid() bool {
	_, ok := rules[Canonical(p)]
	return ok
}

// IsInput reports whether p is a human-input sub-state.
func (p Phase) IsInput() bool {
	_, ok := inputs[p]
	return ok
}

// IsTerminal reports whether p ends the game.
func (p Phase) IsTerminal() bool {
	return p == GameOverHope || p == GameOverDespair
}

// IsNight reports whether p belongs to the night half of a day.
func (p Phase) IsNight() bool {
	switch Canonical(p) {
	case NightDiscussion, NightVote, VoteReveal, NightInvestigate,
		InvestigateReveal, NightProtect, ProtectReveal:
		return true
	}
	return false
}

// Visible reports whether a holder of role may see entries logged in p.
func (p Phase) Visible(role roster.Role) bool {
	private := RuleFor(p).Private
	return private == "" || private == role
}

// String returns the phase identifier.
func (p Phase) String() string { return string(p) }
