package game

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/agent"
	"github.com/Iron-Ham/nightfall/internal/config"
	"github.com/Iron-Ham/nightfall/internal/dispatch"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/event"
	"github.com/Iron-Ham/nightfall/internal/logging"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
)

// plan maps (day, phase, actor) to a target name; "" abstains. Missing
// keys abstain too.
type plan map[string]string

func planKey(day int, p phase.Phase, actor string) string {
	return fmt.Sprintf("%d/%s/%s", day, p, actor)
}

// planAgent answers talking phases with a fixed line and choosing phases
// from a plan. Every reasoning trace is unique to its actor, phase, and day
// so leaks are detectable.
type planAgent struct {
	mu    sync.Mutex
	plan  plan
	calls []agent.Request
}

func (a *planAgent) Decide(_ context.Context, req agent.Request) (agent.Response, error) {
	a.mu.Lock()
	a.calls = append(a.calls, req)
	a.mu.Unlock()

	resp := agent.Response{ReasoningTrace: traceFor(req.Actor, req.Phase, req.Day)}
	if req.Schema.Statement {
		resp.Statement = fmt.Sprintf("%s speaks on day %d.", req.Actor, req.Day)
	}
	if req.Schema.Emotion {
		resp.Emotion = agent.EmotionThinking
	}
	if req.Schema.Target {
		target := a.plan[planKey(req.Day, req.Phase, req.Actor)]
		resp.TargetIndex = agent.Index(slices.Index(req.Targets, target) + 1)
		if target == "" {
			resp.TargetIndex = agent.Index(0)
		}
	}
	return resp, nil
}

func (a *planAgent) requests() []agent.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.calls)
}

func traceFor(actor string, p phase.Phase, day int) string {
	return fmt.Sprintf("TRACE<%s|%s|%d>", actor, p, day)
}

func fiveActors() []roster.Actor {
	return []roster.Actor{
		{Name: "Ann", Role: roster.Saboteur, Alive: true},
		{Name: "Ben", Role: roster.Seeker, Alive: true},
		{Name: "Cal", Role: roster.Protector, Alive: true},
		{Name: "Dee", Role: roster.Bystander, Alive: true},
		{Name: "Eve", Role: roster.Bystander, Alive: true},
	}
}

func newEngine(t *testing.T, actors []roster.Actor, a agent.Agent, seat Seat) (*Engine, *[]event.Event) {
	t.Helper()
	s, err := NewSession(Settings{ID: "test-game", Actors: actors, Seed: 42, Seat: seat})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	bus := event.NewBus(nil)
	var events []event.Event
	bus.SubscribeAll(func(e event.Event) { events = append(events, e) })
	eng := NewEngine(s, a, WithBus(bus), WithDispatchOptions(dispatch.WithRetryWait(time.Millisecond)))
	return eng, &events
}

func outcomes(log *actionlog.Log, o actionlog.Outcome) []actionlog.Entry {
	return log.Filter(actionlog.WithOutcome(o))
}

func TestEngine_HopeWinsOnFirstDay(t *testing.T) {
	a := &planAgent{plan: plan{
		planKey(1, phase.NightVote, "Ann"):        "Dee",
		planKey(1, phase.NightInvestigate, "Ben"): "Ann",
		planKey(1, phase.NightProtect, "Cal"):     "Eve",
		planKey(1, phase.TrialVote, "Ann"):        "Ben",
		planKey(1, phase.TrialVote, "Ben"):        "Ann",
		planKey(1, phase.TrialVote, "Cal"):        "Ann",
		planKey(1, phase.TrialVote, "Eve"):        "Ann",
	}}
	eng, events := newEngine(t, fiveActors(), a, Seat{})

	if err := eng.Advance(context.Background()); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	s := eng.Session()
	if winner, ok := s.Winner(); !ok || winner != roster.FactionHope {
		t.Fatalf("Winner() = %q, %v; want hope", winner, ok)
	}
	if s.Day != 1 {
		t.Errorf("Day = %d, want 1", s.Day)
	}

	kills := outcomes(s.Log, actionlog.OutcomeKill)
	if len(kills) != 1 || kills[0].Target != "Dee" || !strings.Contains(kills[0].Content, "Bystander") {
		t.Errorf("kill entries = %+v", kills)
	}
	execs := outcomes(s.Log, actionlog.OutcomeExecution)
	if len(execs) != 1 || execs[0].Target != "Ann" || !strings.Contains(execs[0].Content, "Saboteur") {
		t.Errorf("execution entries = %+v", execs)
	}

	inv := outcomes(s.Log, actionlog.OutcomeInvestigation)
	if len(inv) != 1 || inv[0].Recipient != "Ben" || !strings.Contains(inv[0].Content, "Despair") {
		t.Errorf("investigation entries = %+v", inv)
	}

	// Dee died before the trial and never had a turn.
	for _, req := range a.requests() {
		if req.Actor == "Dee" {
			t.Errorf("Dee acted in %s after dying", req.Phase)
		}
	}

	last := (*events)[len(*events)-1]
	over, ok := last.(event.GameOverEvent)
	if !ok || over.Winner != roster.FactionHope {
		t.Errorf("last event = %#v, want GameOverEvent(hope)", last)
	}

	if err := eng.Advance(context.Background()); err != nil {
		t.Errorf("Advance() on a finished game = %v, want nil", err)
	}
}

func TestEngine_DespairWinsAtMorning(t *testing.T) {
	actors := []roster.Actor{
		{Name: "Ann", Role: roster.Saboteur, Alive: true},
		{Name: "Ben", Role: roster.Seeker, Alive: true},
		{Name: "Cal", Role: roster.Protector, Alive: true},
	}
	a := &planAgent{plan: plan{
		planKey(1, phase.NightVote, "Ann"):    "Ben",
		planKey(1, phase.NightProtect, "Cal"): "Cal",
	}}
	eng, _ := newEngine(t, actors, a, Seat{})

	if err := eng.Advance(context.Background()); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	s := eng.Session()
	if s.Phase != phase.GameOverDespair {
		t.Fatalf("Phase = %s, want %s", s.Phase, phase.GameOverDespair)
	}
	if n := len(s.Log.Filter(actionlog.InPhase(phase.TrialDiscussion))); n != 0 {
		t.Errorf("%d trial entries logged after the game ended", n)
	}
	if over := outcomes(s.Log, actionlog.OutcomeGameOver); len(over) != 1 || over[0].Phase != phase.GameOverDespair {
		t.Errorf("game over entries = %+v", over)
	}
}

func TestEngine_SplitVoteAndProtectorRule(t *testing.T) {
	a := &planAgent{plan: plan{
		planKey(1, phase.NightProtect, "Cal"): "Dee",
		planKey(1, phase.TrialVote, "Ann"):    "Dee",
		planKey(1, phase.TrialVote, "Ben"):    "Dee",
		planKey(1, phase.TrialVote, "Cal"):    "Eve",
		planKey(1, phase.TrialVote, "Dee"):    "Eve",
		planKey(2, phase.NightProtect, "Cal"): "Ben",
		planKey(2, phase.TrialVote, "Ben"):    "Ann",
		planKey(2, phase.TrialVote, "Cal"):    "Ann",
		planKey(2, phase.TrialVote, "Dee"):    "Ann",
		planKey(2, phase.TrialVote, "Eve"):    "Ann",
	}}
	eng, _ := newEngine(t, fiveActors(), a, Seat{})

	if err := eng.Advance(context.Background()); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	s := eng.Session()

	safe := outcomes(s.Log, actionlog.OutcomeSafeNight)
	if len(safe) != 2 {
		t.Errorf("safe nights = %d, want 2", len(safe))
	}
	none := outcomes(s.Log, actionlog.OutcomeNoExecution)
	if len(none) != 1 || none[0].Day != 1 {
		t.Fatalf("no-execution entries = %+v, want one on day 1", none)
	}
	summary := s.Log.Filter(actionlog.OnDay(1), actionlog.InPhase(phase.ExecutionReveal),
		actionlog.WithOutcome(actionlog.OutcomeVoteSummary))
	if len(summary) != 1 || !strings.Contains(summary[0].Content, "Dee: 2") ||
		!strings.Contains(summary[0].Content, "Eve: 2") {
		t.Errorf("vote summary = %+v", summary)
	}

	for _, req := range a.requests() {
		if req.Phase == phase.NightProtect && req.Day == 2 && slices.Contains(req.Targets, "Dee") {
			t.Errorf("day 2 protect targets %v include last night's choice", req.Targets)
		}
	}

	if winner, _ := s.Winner(); winner != roster.FactionHope || s.Day != 2 {
		t.Errorf("winner = %q on day %d, want hope on day 2", winner, s.Day)
	}
}

func TestEngine_NoReasoningLeaks(t *testing.T) {
	a := &planAgent{plan: plan{
		planKey(1, phase.NightVote, "Ann"):    "Dee",
		planKey(1, phase.NightProtect, "Cal"): "Eve",
		planKey(1, phase.TrialVote, "Ben"):    "Ann",
		planKey(1, phase.TrialVote, "Cal"):    "Ann",
		planKey(1, phase.TrialVote, "Eve"):    "Ann",
	}}
	eng, _ := newEngine(t, fiveActors(), a, Seat{})
	if err := eng.Advance(context.Background()); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	for _, req := range a.requests() {
		for _, other := range []string{"Ann", "Ben", "Cal", "Dee", "Eve"} {
			if other == req.Actor {
				continue
			}
			if strings.Contains(req.Prompt, "TRACE<"+other+"|") {
				t.Errorf("%s's %s prompt leaks %s's reasoning", req.Actor, req.Phase, other)
			}
		}
		// Night-private phases stay with their role.
		if req.Role != roster.Saboteur && strings.Contains(req.Prompt, string(phase.NightVote)) {
			t.Errorf("%s (%s) saw the night vote", req.Actor, req.Role)
		}
		if req.Role != roster.Seeker && strings.Contains(req.Prompt, "(Despair)") {
			t.Errorf("%s saw the investigation result", req.Actor)
		}
	}
}

func TestEngine_HumanSeat(t *testing.T) {
	a := &planAgent{plan: plan{
		planKey(1, phase.NightProtect, "Cal"): "Ben",
		planKey(1, phase.TrialVote, "Ben"):    "Ann",
		planKey(1, phase.TrialVote, "Cal"):    "Ann",
		planKey(1, phase.TrialVote, "Dee"):    "Ann",
	}}
	eng, events := newEngine(t, fiveActors(), a, Seat{Name: "Eve", Mode: config.ModePlayer})
	ctx := context.Background()

	if err := eng.Submit(ctx, HumanInput{}); !errors.Is(err, errors.ErrNoPendingInput) {
		t.Fatalf("Submit() before any request = %v, want ErrNoPendingInput", err)
	}

	if err := eng.Advance(ctx); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	req, ok := eng.Pending()
	if !ok || req.Actor != "Eve" || req.Phase != phase.TrialDiscussionInput || !req.Emotion {
		t.Fatalf("Pending() = %+v, %v; want Eve in trial discussion", req, ok)
	}

	if err := eng.Submit(ctx, HumanInput{Text: "Ann is lying.", Verbatim: true, Emotion: agent.EmotionWorried}); err != nil {
		t.Fatalf("Submit(statement) error = %v", err)
	}
	req, ok = eng.Pending()
	if !ok || req.Phase != phase.TrialVoteInput {
		t.Fatalf("Pending() = %+v, %v; want trial vote", req, ok)
	}

	err := eng.Submit(ctx, HumanInput{TargetIndex: 99})
	var verr *errors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit(99) error = %v, want ValidationError", err)
	}
	if _, still := eng.Pending(); !still {
		t.Fatal("invalid submission cleared the request")
	}

	ann := slices.Index(req.Targets, "Ann") + 1
	if err := eng.Submit(ctx, HumanInput{TargetIndex: ann}); err != nil {
		t.Fatalf("Submit(vote) error = %v", err)
	}

	s := eng.Session()
	if winner, _ := s.Winner(); winner != roster.FactionHope {
		t.Fatalf("winner = %q, want hope", winner)
	}

	st, ok := s.Log.Last(actionlog.By("Eve"), actionlog.OfKind(actionlog.KindStatement))
	if !ok || st.Content != "Ann is lying." || st.Emotion != agent.EmotionWorried || st.Phase != phase.TrialDiscussion {
		t.Errorf("Eve's statement = %+v", st)
	}

	for _, r := range a.requests() {
		if r.Actor == "Eve" {
			t.Errorf("agent was asked to play the human seat in %s", r.Phase)
		}
		if r.Phase == phase.TrialVote && strings.Contains(r.Prompt, "Eve (public_vote") {
			t.Errorf("%s saw Eve's vote while deciding", r.Actor)
		}
	}

	var sawInput bool
	for _, e := range *events {
		if in, ok := e.(event.InputRequiredEvent); ok && in.Actor == "Eve" {
			sawInput = true
		}
	}
	if !sawInput {
		t.Error("no InputRequiredEvent published")
	}
}

func TestEngine_HumanGuidanceReachesAgent(t *testing.T) {
	a := &planAgent{plan: plan{
		planKey(1, phase.TrialVote, "Ben"): "Ann",
		planKey(1, phase.TrialVote, "Cal"): "Ann",
		planKey(1, phase.TrialVote, "Dee"): "Ann",
	}}
	eng, _ := newEngine(t, fiveActors(), a, Seat{Name: "Eve", Mode: config.ModePlayer})
	ctx := context.Background()

	if err := eng.Advance(ctx); err != nil {
		t.Fatal(err)
	}
	if err := eng.Submit(ctx, HumanInput{Text: "Accuse Ann loudly"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	var guided bool
	for _, r := range a.requests() {
		if r.Actor == "Eve" && strings.Contains(r.Prompt, "Accuse Ann loudly") {
			guided = true
			if !strings.Contains(r.Prompt, "(you are speaker 5/5)") {
				t.Errorf("guided prompt lacks the speaker position:\n%s", r.Prompt)
			}
		}
	}
	if !guided {
		t.Error("guidance was not passed to the agent voicing the seat")
	}
}

func TestEngine_SoleRoleHolderSeated(t *testing.T) {
	tests := []struct {
		seat  string
		input phase.Phase
	}{
		{seat: "Ben", input: phase.NightInvestigateInput},
		{seat: "Cal", input: phase.NightProtectInput},
	}

	for _, tt := range tests {
		t.Run(tt.seat, func(t *testing.T) {
			a := &planAgent{plan: plan{
				planKey(1, phase.TrialVote, "Ben"): "Ann",
				planKey(1, phase.TrialVote, "Cal"): "Ann",
				planKey(1, phase.TrialVote, "Dee"): "Ann",
				planKey(1, phase.TrialVote, "Eve"): "Ann",
			}}
			eng, _ := newEngine(t, fiveActors(), a, Seat{Name: tt.seat, Mode: config.ModePlayer})
			ctx := context.Background()

			if err := eng.Advance(ctx); err != nil {
				t.Fatalf("Advance() error = %v", err)
			}
			req, ok := eng.Pending()
			if !ok || req.Actor != tt.seat || req.Phase != tt.input {
				t.Fatalf("Pending() = %+v, %v; want %s in %s", req, ok, tt.seat, tt.input)
			}

			ann := slices.Index(req.Targets, "Ann") + 1
			if err := eng.Submit(ctx, HumanInput{TargetIndex: ann}); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			req, ok = eng.Pending()
			if !ok || req.Phase != phase.TrialDiscussionInput {
				t.Fatalf("Pending() = %+v, %v; want the trial discussion", req, ok)
			}

			s := eng.Session()
			if tt.seat == "Ben" {
				inv := outcomes(s.Log, actionlog.OutcomeInvestigation)
				if len(inv) != 1 || inv[0].Recipient != "Ben" || !strings.Contains(inv[0].Content, "Ann is a Saboteur") {
					t.Errorf("investigation entries = %+v", inv)
				}
			}

			if err := eng.Submit(ctx, HumanInput{Text: "I know who it is."}); err != nil {
				t.Fatalf("Submit(talk) error = %v", err)
			}
			var pos string
			for _, r := range a.requests() {
				if r.Actor == tt.seat && r.Phase == phase.TrialDiscussion {
					pos = r.Prompt
				}
			}
			want := fmt.Sprintf("(you are speaker %d/5)", slices.Index([]string{"Ann", "Ben", "Cal", "Dee", "Eve"}, tt.seat)+1)
			if !strings.Contains(pos, want) {
				t.Errorf("guided prompt for %s lacks %q", tt.seat, want)
			}

			req, _ = eng.Pending()
			if err := eng.Submit(ctx, HumanInput{TargetIndex: slices.Index(req.Targets, "Ann") + 1}); err != nil {
				t.Fatalf("Submit(vote) error = %v", err)
			}
			if winner, _ := s.Winner(); winner != roster.FactionHope {
				t.Errorf("winner = %q, want hope", winner)
			}
		})
	}
}

func TestEngine_MissingNightVoteIsDegraded(t *testing.T) {
	plans := &planAgent{plan: plan{
		planKey(1, phase.TrialVote, "Ben"): "Ann",
		planKey(1, phase.TrialVote, "Cal"): "Ann",
		planKey(1, phase.TrialVote, "Dee"): "Ann",
		planKey(1, phase.TrialVote, "Eve"): "Ann",
	}}
	a := agent.Func(func(ctx context.Context, req agent.Request) (agent.Response, error) {
		if req.Phase == phase.NightVote {
			return agent.Response{}, errors.NewAgentError("offline", errors.ErrAgentUnavailable).WithRetryable(false)
		}
		return plans.Decide(ctx, req)
	})

	s, err := NewSession(Settings{ID: "test-game", Actors: fiveActors(), Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	eng := NewEngine(s, a,
		WithLogger(logging.NewWriterLogger(&logs, logging.LevelDebug)),
		WithDispatchOptions(dispatch.WithRetryWait(time.Millisecond), dispatch.WithAllowPartial(true)))

	if err := eng.Advance(context.Background()); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	targets := outcomes(s.Log, actionlog.OutcomeKillTarget)
	if len(targets) != 1 || targets[0].Target != "" || !strings.Contains(targets[0].Content, "No night vote was recorded") {
		t.Errorf("kill target entries = %+v", targets)
	}
	if winner, _ := s.Winner(); winner != roster.FactionHope {
		t.Errorf("winner = %q, want hope", winner)
	}
	out := logs.String()
	if !strings.Contains(out, `"level":"WARN","msg":"resolved without a decision"`) ||
		!strings.Contains(out, "no resolution recorded") {
		t.Errorf("missing night vote not logged as a state warning:\n%s", out)
	}
}

func TestEngine_CharacterViewDoesNotPause(t *testing.T) {
	a := &planAgent{plan: plan{
		planKey(1, phase.TrialVote, "Ben"): "Ann",
		planKey(1, phase.TrialVote, "Cal"): "Ann",
		planKey(1, phase.TrialVote, "Eve"): "Ann",
	}}
	eng, _ := newEngine(t, fiveActors(), a, Seat{Name: "Eve", Mode: config.ModeCharacterView})
	if err := eng.Advance(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := eng.Pending(); ok {
		t.Error("character view seat should not be asked for input")
	}
	if !eng.Session().Over() {
		t.Error("game should have finished")
	}
}

func TestEngine_FailureIsTerminal(t *testing.T) {
	failing := agent.NewScripted()
	eng, events := newEngine(t, fiveActors(), failing, Seat{})

	err := eng.Advance(context.Background())
	if !errors.Is(err, errors.ErrGameFailed) || !errors.Is(err, errors.ErrAgentUnavailable) {
		t.Fatalf("Advance() error = %v, want ErrGameFailed wrapping ErrAgentUnavailable", err)
	}
	if eng.Session().Failed() == nil {
		t.Error("Failed() = nil after failure")
	}
	if err := eng.Advance(context.Background()); !errors.Is(err, errors.ErrGameFailed) {
		t.Errorf("second Advance() = %v, want ErrGameFailed", err)
	}

	var failed bool
	for _, e := range *events {
		if _, ok := e.(event.GameFailedEvent); ok {
			failed = true
		}
	}
	if !failed {
		t.Error("no GameFailedEvent published")
	}
}

func TestEngine_SkipsAbsentRole(t *testing.T) {
	actors := fiveActors()
	actors[1].Alive = false // Seeker already dead.
	a := &planAgent{plan: plan{
		planKey(1, phase.TrialVote, "Cal"): "Ann",
		planKey(1, phase.TrialVote, "Dee"): "Ann",
		planKey(1, phase.TrialVote, "Eve"): "Ann",
	}}
	eng, _ := newEngine(t, actors, a, Seat{})
	if err := eng.Advance(context.Background()); err != nil {
		t.Fatal(err)
	}

	skipped := outcomes(eng.Session().Log, actionlog.OutcomeSkipped)
	if len(skipped) != 1 || skipped[0].Phase != phase.NightInvestigate {
		t.Errorf("skipped entries = %+v, want one for night_investigate", skipped)
	}
	if n := len(outcomes(eng.Session().Log, actionlog.OutcomeInvestigation)); n != 0 {
		t.Errorf("%d investigation results for a dead seeker", n)
	}
}

func TestEngine_TwelveActorGame(t *testing.T) {
	names := slices.Clone(config.DefaultRoster)
	s, err := NewSession(Settings{Names: names, Saboteurs: 3, Seed: 7})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	roles := map[roster.Role]int{}
	for _, a := range s.Roster.Actors() {
		roles[a.Role]++
	}
	want := map[roster.Role]int{roster.Saboteur: 3, roster.Seeker: 1, roster.Protector: 1, roster.Bystander: 7}
	for role, n := range want {
		if roles[role] != n {
			t.Errorf("%s count = %d, want %d", role, roles[role], n)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	eng := NewEngine(s, agent.NewRandom(7), WithDispatchOptions(dispatch.WithRetryWait(time.Millisecond)))
	if err := eng.Advance(ctx); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if !s.Over() {
		t.Fatal("game did not finish")
	}

	c := s.Roster.Counts()
	winner, _ := s.Winner()
	switch winner {
	case roster.FactionHope:
		if c.Saboteurs != 0 {
			t.Errorf("hope won with %d saboteurs alive", c.Saboteurs)
		}
	case roster.FactionDespair:
		if c.Saboteurs < c.Others {
			t.Errorf("despair won with %d saboteurs against %d", c.Saboteurs, c.Others)
		}
	}

	// At most one vote per actor per round, and only from the living.
	for day := 1; day <= s.Day; day++ {
		seen := map[string]bool{}
		for _, v := range s.Log.Filter(actionlog.OnDay(day), actionlog.OfKind(actionlog.KindVote)) {
			if seen[v.Actor] {
				t.Errorf("%s voted twice on day %d", v.Actor, day)
			}
			seen[v.Actor] = true
		}
	}

	for i, e := range s.Log.Snapshot() {
		if e.Seq != i+1 {
			t.Fatalf("entry %d has Seq %d", i, e.Seq)
		}
		if e.Phase.IsInput() {
			t.Errorf("entry %d logged under input phase %s", e.Seq, e.Phase)
		}
	}
}

func TestNewSession_SeatMustBeOnRoster(t *testing.T) {
	_, err := NewSession(Settings{Actors: fiveActors(), Seat: Seat{Name: "Zed", Mode: config.ModePlayer}})
	if !errors.Is(err, errors.ErrUnknownActor) {
		t.Errorf("NewSession() error = %v, want ErrUnknownActor", err)
	}
	if _, err := NewSession(Settings{Actors: fiveActors(), Seat: Seat{Name: "Zed", Mode: config.ModeOmniscient}}); err != nil {
		t.Errorf("omniscient seat should not need a roster name: %v", err)
	}
}

func TestPacing(t *testing.T) {
	short := Pacing(actionlog.Entry{Kind: actionlog.KindStatement, Content: "hi"})
	long := Pacing(actionlog.Entry{Kind: actionlog.KindStatement, Content: "one two three four five six"})
	if long <= short {
		t.Errorf("longer statements should dwell longer: %v <= %v", long, short)
	}
	if Pacing(actionlog.Entry{Kind: actionlog.KindReasoning}) != 0 {
		t.Error("reasoning traces should not be paced")
	}
}
