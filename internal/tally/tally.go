// Package tally counts votes and picks a winner.
//
// Abstention is a countable option. If abstention is among the options with
// the most votes there is no winner. A single non-abstain maximum wins
// outright; a tie between several non-abstain maxima is broken according to
// a TieBreak policy.
package tally

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// Abstain is the target recorded for a vote that picks nobody.
const Abstain = ""

// Vote is one voter's choice. An empty Target is an abstention.
type Vote struct {
	Voter  string
	Target string
}

// Abstained reports whether the vote picks nobody.
func (v Vote) Abstained() bool { return v.Target == Abstain }

// TieBreak decides a tie between several non-abstain maxima.
type TieBreak int

const (
	// None leaves a tie unresolved.
	None TieBreak = iota
	// Random picks one tied target uniformly.
	Random
)

// Count is how many votes one option received.
type Count struct {
	Target string
	Votes  int
	Voters []string
}

// Result is the outcome of a tally.
type Result struct {
	// Winner is the chosen target; empty when there is none.
	Winner string
	// Decided is false when nobody is chosen.
	Decided bool
	// Tied lists the non-abstain targets sharing the maximum when a tie
	// was seen, sorted.
	Tied []string
	// Counts holds every option with at least one vote, non-abstain targets
	// first sorted by name, abstention last.
	Counts []Count
}

// Tally counts votes and applies policy. rng is only consulted for a Random
// tie-break and may be nil otherwise.
func Tally(votes []Vote, policy TieBreak, rng *rand.Rand) Result {
	counts := countVotes(votes)
	res := Result{Counts: counts}
	if len(counts) == 0 {
		return res
	}

	top := 0
	for _, c := range counts {
		top = max(top, c.Votes)
	}

	var leaders []string
	abstainLeads := false
	for _, c := range counts {
		if c.Votes != top {
			continue
		}
		if c.Target == Abstain {
			abstainLeads = true
			continue
		}
		leaders = append(leaders, c.Target)
	}

	if len(leaders) > 1 {
		res.Tied = leaders
	}
	if abstainLeads {
		return res
	}

	switch {
	case len(leaders) == 1:
		res.Winner, res.Decided = leaders[0], true
	case policy == Random && rng != nil:
		res.Winner, res.Decided = leaders[rng.IntN(len(leaders))], true
	}
	return res
}

func countVotes(votes []Vote) []Count {
	byTarget := make(map[string]*Count)
	for _, v := range votes {
		c, ok := byTarget[v.Target]
		if !ok {
			c = &Count{Target: v.Target}
			byTarget[v.Target] = c
		}
		c.Votes++
		c.Voters = append(c.Voters, v.Voter)
	}

	counts := make([]Count, 0, len(byTarget))
	for _, c := range byTarget {
		slices.Sort(c.Voters)
		counts = append(counts, *c)
	}
	slices.SortFunc(counts, func(a, b Count) int {
		// Abstention sorts last.
		if (a.Target == Abstain) != (b.Target == Abstain) {
			if a.Target == Abstain {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Target, b.Target)
	})
	return counts
}

// Summarize renders the vote breakdown, one option per line:
//
//	Kaede: 2 (Miu, Rantaro)
//	Abstain: 1 (Kokichi)
func Summarize(votes []Vote) string {
	counts := countVotes(votes)
	if len(counts) == 0 {
		return "No votes were cast."
	}
	var b strings.Builder
	for i, c := range counts {
		if i > 0 {
			b.WriteByte('\n')
		}
		name := c.Target
		if name == Abstain {
			name = "Abstain"
		}
		fmt.Fprintf(&b, "%s: %d (%s)", name, c.Votes, strings.Join(c.Voters, ", "))
	}
	return b.String()
}
