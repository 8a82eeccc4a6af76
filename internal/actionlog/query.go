package actionlog

import "github.com/Iron-Ham/nightfall/internal/phase"

// Predicate selects entries in Filter and Last.
type Predicate func(Entry) bool

// OnDay matches entries logged on day d.
func OnDay(d int) Predicate {
	return func(e Entry) bool { return e.Day == d }
}

// InPhase matches entries logged under p's canonical phase.
func InPhase(p phase.Phase) Predicate {
	c := phase.Canonical(p)
	return func(e Entry) bool { return e.Phase == c }
}

// OfKind matches entries of kind k.
func OfKind(k Kind) Predicate {
	return func(e Entry) bool { return e.Kind == k }
}

// By matches entries authored by actor.
func By(actor string) Predicate {
	return func(e Entry) bool { return e.Actor == actor }
}

// WithOutcome matches system entries tagged o.
func WithOutcome(o Outcome) Predicate {
	return func(e Entry) bool { return e.Kind == KindSystem && e.Outcome == o }
}
