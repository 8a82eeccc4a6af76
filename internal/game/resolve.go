package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/event"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
	"github.com/Iron-Ham/nightfall/internal/tally"
)

// resolve runs a system phase.
func (e *Engine) resolve(ctx context.Context, p phase.Phase) error {
	switch p {
	case phase.GameStart:
		e.s.Day = 1
		c := e.s.Roster.Counts()
		return e.announce(ctx, p, actionlog.Entry{
			Outcome: actionlog.OutcomeGameStart,
			Content: fmt.Sprintf("%d people wake up locked in together. %d of them are Saboteurs.",
				c.Saboteurs+c.Others, c.Saboteurs),
		})
	case phase.VoteReveal:
		return e.revealKillTarget(ctx)
	case phase.InvestigateReveal:
		return e.revealInvestigation(ctx)
	case phase.ProtectReveal:
		return e.revealProtection(ctx)
	case phase.MorningResolution:
		return e.resolveMorning(ctx)
	case phase.ExecutionReveal:
		return e.resolveExecution(ctx)
	}
	return nil
}

// announce appends a system entry for the current day.
func (e *Engine) announce(ctx context.Context, p phase.Phase, entry actionlog.Entry) error {
	entry.Day = e.s.Day
	entry.Phase = p
	entry.Actor = actionlog.SystemActor
	entry.Kind = actionlog.KindSystem
	_, err := e.rec.Append(ctx, entry)
	return err
}

// unresolved records entry in place of an outcome whose decision from
// source is missing, and reports the gap as a StateError.
func (e *Engine) unresolved(ctx context.Context, p, source phase.Phase, entry actionlog.Entry) error {
	if err := e.announce(ctx, p, entry); err != nil {
		return err
	}
	return errors.NewStateError("no decision recorded", errors.ErrNoResolution).
		WithPhase(string(source)).WithDay(e.s.Day)
}

// skip records that nobody could act in p.
func (e *Engine) skip(ctx context.Context, p phase.Phase) error {
	roles := make([]string, 0, len(phase.RuleFor(p).Actors))
	for _, r := range phase.RuleFor(p).Actors {
		roles = append(roles, string(r))
	}
	who := "actor"
	if len(roles) > 0 {
		who = strings.Join(roles, "/")
	}
	e.logger.WithPhase(string(p)).Info("phase skipped", "day", e.s.Day, "missing", who)
	return e.announce(ctx, p, actionlog.Entry{
		Outcome: actionlog.OutcomeSkipped,
		Content: fmt.Sprintf("No living %s; %s is skipped.", who, p),
	})
}

func (e *Engine) choices(p phase.Phase, kind actionlog.Kind) []tally.Vote {
	entries := e.s.Log.Filter(actionlog.OnDay(e.s.Day), actionlog.InPhase(p), actionlog.OfKind(kind))
	votes := make([]tally.Vote, len(entries))
	for i, en := range entries {
		votes[i] = tally.Vote{Voter: en.Actor, Target: en.Target}
	}
	return votes
}

func (e *Engine) revealKillTarget(ctx context.Context) error {
	votes := e.choices(phase.NightVote, actionlog.KindDecision)
	if len(votes) == 0 {
		return e.unresolved(ctx, phase.VoteReveal, phase.NightVote, actionlog.Entry{
			Outcome: actionlog.OutcomeKillTarget,
			Content: "No night vote was recorded. Nobody will be attacked tonight.",
		})
	}

	res := tally.Tally(votes, tally.Random, e.s.rng)
	target := actionlog.Entry{Outcome: actionlog.OutcomeKillTarget, Target: res.Winner}
	switch {
	case res.Decided && len(res.Tied) > 0:
		target.Content = fmt.Sprintf("The vote was tied between %s. Fate picked %s.",
			strings.Join(res.Tied, " and "), res.Winner)
	case res.Decided:
		target.Content = fmt.Sprintf("The Saboteurs have chosen %s.", res.Winner)
	default:
		target.Content = "The Saboteurs could not agree. Nobody will be attacked tonight."
	}
	if err := e.announce(ctx, phase.VoteReveal, target); err != nil {
		return err
	}
	return e.announce(ctx, phase.VoteReveal, actionlog.Entry{
		Outcome: actionlog.OutcomeVoteSummary,
		Content: tally.Summarize(votes),
	})
}

// dayDecision returns the decision entry logged by the holder of a
// single-actor phase today.
func (e *Engine) dayDecision(p phase.Phase) (actionlog.Entry, bool) {
	return e.s.Log.Last(actionlog.OnDay(e.s.Day), actionlog.InPhase(p), actionlog.OfKind(actionlog.KindDecision))
}

func (e *Engine) revealInvestigation(ctx context.Context) error {
	seeker, alive := e.s.Roster.Holder(roster.Seeker)
	if !alive {
		return nil
	}
	out := actionlog.Entry{Outcome: actionlog.OutcomeInvestigation, Recipient: seeker}
	dec, ok := e.dayDecision(phase.NightInvestigate)
	if !ok {
		out.Content = "No investigation was recorded tonight."
		return e.unresolved(ctx, phase.InvestigateReveal, phase.NightInvestigate, out)
	}
	switch {
	case dec.Target == "":
		out.Content = "You chose not to investigate anyone tonight."
	default:
		role, err := e.s.Roster.RoleOf(dec.Target)
		if err != nil {
			return err
		}
		out.Target = dec.Target
		if role == roster.Saboteur {
			out.Content = fmt.Sprintf("%s is a Saboteur. (Despair)", dec.Target)
		} else {
			out.Content = fmt.Sprintf("%s is not a Saboteur. (Hope)", dec.Target)
		}
	}
	return e.announce(ctx, phase.InvestigateReveal, out)
}

func (e *Engine) revealProtection(ctx context.Context) error {
	protector, alive := e.s.Roster.Holder(roster.Protector)
	if !alive {
		return nil
	}
	out := actionlog.Entry{Outcome: actionlog.OutcomeProtection, Recipient: protector}
	dec, ok := e.dayDecision(phase.NightProtect)
	if !ok {
		out.Content = "No protection was recorded tonight."
		return e.unresolved(ctx, phase.ProtectReveal, phase.NightProtect, out)
	}
	switch {
	case dec.Target == "":
		out.Content = "You are protecting nobody tonight."
	default:
		out.Target = dec.Target
		out.Content = fmt.Sprintf("You are protecting %s tonight.", dec.Target)
	}
	return e.announce(ctx, phase.ProtectReveal, out)
}

func (e *Engine) resolveMorning(ctx context.Context) error {
	var target string
	if k, ok := e.s.Log.Last(actionlog.OnDay(e.s.Day), actionlog.InPhase(phase.VoteReveal),
		actionlog.WithOutcome(actionlog.OutcomeKillTarget)); ok {
		target = k.Target
	}
	var protected string
	if dec, ok := e.dayDecision(phase.NightProtect); ok {
		protected = dec.Target
	}

	if target == "" || target == protected || !e.s.Roster.IsAlive(target) {
		if err := e.announce(ctx, phase.MorningResolution, actionlog.Entry{
			Outcome: actionlog.OutcomeSafeNight,
			Content: "Morning comes and everyone is still alive.",
		}); err != nil {
			return err
		}
		return e.checkWin(ctx)
	}

	role, err := e.s.Roster.Eliminate(target)
	if err != nil {
		return err
	}
	e.logger.Info("actor killed", "day", e.s.Day, "actor", target, "role", string(role))
	if err := e.announce(ctx, phase.MorningResolution, actionlog.Entry{
		Outcome: actionlog.OutcomeKill,
		Target:  target,
		Content: fmt.Sprintf("%s was found dead this morning. %s was a %s.", target, target, role),
	}); err != nil {
		return err
	}
	return e.checkWin(ctx)
}

func (e *Engine) resolveExecution(ctx context.Context) error {
	votes := e.choices(phase.TrialVote, actionlog.KindVote)
	res := tally.Tally(votes, tally.None, nil)

	if err := e.announce(ctx, phase.ExecutionReveal, actionlog.Entry{
		Outcome: actionlog.OutcomeVoteSummary,
		Content: tally.Summarize(votes),
	}); err != nil {
		return err
	}

	if !res.Decided {
		msg := "The vote is split. Nobody is executed today."
		if len(votes) == 0 {
			msg = "No votes were cast. Nobody is executed today."
		}
		if err := e.announce(ctx, phase.ExecutionReveal, actionlog.Entry{
			Outcome: actionlog.OutcomeNoExecution,
			Content: msg,
		}); err != nil {
			return err
		}
		return e.checkWin(ctx)
	}

	if err := e.announce(ctx, phase.ExecutionReveal, actionlog.Entry{
		Outcome: actionlog.OutcomeTrialTarget,
		Target:  res.Winner,
		Content: fmt.Sprintf("The vote falls on %s.", res.Winner),
	}); err != nil {
		return err
	}
	role, err := e.s.Roster.Eliminate(res.Winner)
	if err != nil {
		return err
	}
	e.logger.Info("actor executed", "day", e.s.Day, "actor", res.Winner, "role", string(role))
	if err := e.announce(ctx, phase.ExecutionReveal, actionlog.Entry{
		Outcome: actionlog.OutcomeExecution,
		Target:  res.Winner,
		Content: fmt.Sprintf("%s has been executed. %s was a %s.", res.Winner, res.Winner, role),
	}); err != nil {
		return err
	}
	return e.checkWin(ctx)
}

// checkWin ends the game when no Saboteur is alive or the Saboteurs are at
// least as many as everyone else.
func (e *Engine) checkWin(ctx context.Context) error {
	c := e.s.Roster.Counts()
	var (
		to      phase.Phase
		winner  roster.Faction
		message string
	)
	switch {
	case c.Saboteurs == 0:
		to, winner = phase.GameOverHope, roster.FactionHope
		message = "Every Saboteur has been found. Hope prevails."
	case c.Saboteurs >= c.Others:
		to, winner = phase.GameOverDespair, roster.FactionDespair
		message = "The Saboteurs now match the rest. Despair wins."
	default:
		return nil
	}

	e.transition(to)
	var sabs []string
	for _, a := range e.s.Roster.Actors() {
		if a.Role == roster.Saboteur {
			sabs = append(sabs, a.Name)
		}
	}
	if err := e.announce(ctx, to, actionlog.Entry{
		Outcome: actionlog.OutcomeGameOver,
		Content: fmt.Sprintf("%s The Saboteurs were: %s.", message, strings.Join(sabs, ", ")),
	}); err != nil {
		return err
	}
	e.logger.Info("game over", "day", e.s.Day, "winner", string(winner))
	e.bus.Publish(event.NewGameOverEvent(winner, e.s.Day))
	return nil
}
