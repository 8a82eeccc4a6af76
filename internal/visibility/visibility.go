// Package visibility decides what each actor is allowed to know.
//
// Build walks the action log in append order and drops, in this order:
// entries from phases private to a role the viewer does not hold; other
// actors' votes in a vote round the viewer is still deciding; other actors'
// reasoning traces; and system results addressed privately to someone
// else. The result, together with the viewer's own role and the legal
// targets for the current phase, is the only game state a reasoning agent
// ever receives.
package visibility

import (
	"slices"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
)

// Request names the viewer and the moment they are viewing from.
type Request struct {
	Viewer string
	Phase  phase.Phase
	Day    int
	// Deciding is set when the viewer is about to act in Phase, which
	// withholds other actors' votes in an in-progress vote round.
	Deciding bool
}

// Context is everything a viewer may know at one moment.
type Context struct {
	Viewer string
	Role   roster.Role
	Alive  bool
	Day    int
	Phase  phase.Phase

	// History is the filtered log in append order.
	History []actionlog.Entry
	// Living lists living actors in seating order.
	Living []string
	// Teammates lists the other living saboteurs; empty for other roles.
	Teammates []string
	// Targets are the legal choices at indices 1..N. Index 0 is abstain.
	Targets []string
	// Counts is the living head-count by faction.
	Counts roster.Counts
	// DeadRoles lists the special roles whose holder has been eliminated.
	DeadRoles []roster.Role
	// LastProtected is the Protector's choice on the previous day, shown
	// only to the Protector.
	LastProtected string
}

// TargetAt resolves a target index. Index 0 is abstain and returns ("", true).
func (c Context) TargetAt(i int) (string, bool) {
	if i == 0 {
		return "", true
	}
	if i < 0 || i > len(c.Targets) {
		return "", false
	}
	return c.Targets[i-1], true
}

// IndexOf returns the index of name in the target list, or -1.
func (c Context) IndexOf(name string) int {
	if name == "" {
		return 0
	}
	if i := slices.Index(c.Targets, name); i >= 0 {
		return i + 1
	}
	return -1
}

// Build produces the viewer's context from a log snapshot and the roster.
// An unknown viewer is a configuration error.
func Build(req Request, entries []actionlog.Entry, r *roster.Roster) (Context, error) {
	viewer, err := r.Get(req.Viewer)
	if err != nil {
		return Context{}, errors.NewConfigError("cannot build context", errors.ErrUnknownActor).
			WithActor(req.Viewer).WithPhase(string(req.Phase))
	}

	ctx := Context{
		Viewer:    viewer.Name,
		Role:      viewer.Role,
		Alive:     viewer.Alive,
		Day:       req.Day,
		Phase:     phase.Canonical(req.Phase),
		History:   Filter(req, viewer.Role, entries),
		Living:    r.Living(),
		Teammates: r.Teammates(viewer.Name),
		Counts:    r.Counts(),
	}

	for _, role := range []roster.Role{roster.Seeker, roster.Protector} {
		if _, alive := r.Holder(role); !alive {
			ctx.DeadRoles = append(ctx.DeadRoles, role)
		}
	}

	if viewer.Role == roster.Protector {
		ctx.LastProtected = LastProtected(entries, viewer.Name, req.Day)
	}

	if phase.RuleFor(req.Phase).Mode == phase.ModeChoose {
		ctx.Targets = Targets(req.Phase, ctx.Living, ctx.LastProtected)
	}
	return ctx, nil
}

// Filter returns the entries a holder of role may see from req's vantage.
func Filter(req Request, role roster.Role, entries []actionlog.Entry) []actionlog.Entry {
	current := phase.Canonical(req.Phase)
	secretRound := req.Deciding && phase.RuleFor(current).Vote

	out := make([]actionlog.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Phase.Visible(role) {
			continue
		}
		if secretRound && e.Actor != req.Viewer && e.Day == req.Day && e.Phase == current &&
			(e.Kind == actionlog.KindVote || e.Kind == actionlog.KindDecision) {
			continue
		}
		if e.Kind == actionlog.KindReasoning && e.Actor != req.Viewer {
			continue
		}
		if e.Recipient != "" && e.Recipient != req.Viewer {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Omniscient returns the unfiltered transcript.
func Omniscient(entries []actionlog.Entry) []actionlog.Entry {
	return slices.Clone(entries)
}

// Targets returns the legal choices for a target-choosing phase. Every
// living actor is eligible, except that the Protector may not pick the
// actor it protected the previous day.
func Targets(p phase.Phase, living []string, lastProtected string) []string {
	targets := slices.Clone(living)
	if phase.Canonical(p) == phase.NightProtect && lastProtected != "" {
		targets = slices.DeleteFunc(targets, func(n string) bool { return n == lastProtected })
	}
	return targets
}

// LastProtected returns who protector chose on the day before day, read
// from the log.
func LastProtected(entries []actionlog.Entry, protector string, day int) string {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Day == day-1 && e.Phase == phase.NightProtect &&
			e.Kind == actionlog.KindDecision && e.Actor == protector {
			return e.Target
		}
	}
	return ""
}
