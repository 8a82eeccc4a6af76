package agent

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
)

// Scripted replays canned responses per actor in order. When an actor's
// script runs out, Fallback answers; with no Fallback an AgentError is
// returned. It is safe for concurrent use.
type Scripted struct {
	mu       sync.Mutex
	scripts  map[string][]Response
	calls    []Request
	Fallback Agent
}

// NewScripted creates an empty Scripted agent.
func NewScripted() *Scripted {
	return &Scripted{scripts: make(map[string][]Response)}
}

// Add queues responses for actor.
func (s *Scripted) Add(actor string, responses ...Response) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[actor] = append(s.scripts[actor], responses...)
	return s
}

// Decide pops the next scripted response for req.Actor.
func (s *Scripted) Decide(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	queue := s.scripts[req.Actor]
	if len(queue) > 0 {
		resp := queue[0]
		s.scripts[req.Actor] = queue[1:]
		s.mu.Unlock()
		return resp, nil
	}
	fallback := s.Fallback
	s.mu.Unlock()

	if fallback != nil {
		return fallback.Decide(ctx, req)
	}
	return Response{}, errors.NewAgentError(
		fmt.Sprintf("no scripted response left (phase %s)", req.Phase), errors.ErrAgentUnavailable).
		WithBackend("scripted").WithActor(req.Actor).WithRetryable(false)
}

// Calls returns every request received so far, in arrival order.
func (s *Scripted) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.calls...)
}

// Random is an offline agent that answers every schema with plausible
// values drawn from its own seeded source. Saboteurs never abstain and
// nobody targets themselves.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a Random agent from seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

var cannedStatements = map[phase.Phase][]string{
	phase.NightDiscussion: {
		"Let's pick someone quiet tonight.",
		"We should go after whoever is leading the discussion.",
		"I'd rather not draw attention. Let's choose carefully.",
	},
	phase.TrialDiscussion: {
		"Something about yesterday's votes doesn't add up.",
		"I'm watching everyone who stayed silent.",
		"We need to agree on one name or we lose another day.",
		"I don't have proof yet, but I have a suspicion.",
	},
}

// Decide fills whatever the schema asks for.
func (r *Random) Decide(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, errors.Join(errors.ErrCanceled, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	resp := Response{
		ReasoningTrace: fmt.Sprintf("As %s on day %d I weigh what I've seen and decide.", req.Role, req.Day),
	}
	if req.Schema.Statement {
		lines := cannedStatements[phase.Canonical(req.Phase)]
		if len(lines) == 0 {
			lines = cannedStatements[phase.TrialDiscussion]
		}
		resp.Statement = lines[r.rng.IntN(len(lines))]
	}
	if req.Schema.Emotion {
		emotions := Emotions()
		resp.Emotion = emotions[r.rng.IntN(len(emotions))]
	}
	if req.Schema.Target {
		resp.TargetIndex = Index(r.pick(req))
	}
	return resp, nil
}

func (r *Random) pick(req Request) int {
	var candidates []int
	for i, name := range req.Targets {
		if name == req.Actor {
			continue
		}
		candidates = append(candidates, i+1)
	}
	if len(candidates) == 0 {
		return 0
	}
	// An occasional abstention keeps trial outcomes varied, but the night
	// kill always names someone.
	if req.Role != roster.Saboteur && r.rng.IntN(10) == 0 {
		return 0
	}
	return candidates[r.rng.IntN(len(candidates))]
}
