package visibility

import (
	"slices"
	"testing"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
)

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r, err := roster.New([]roster.Actor{
		{Name: "Sab1", Role: roster.Saboteur, Alive: true},
		{Name: "Sab2", Role: roster.Saboteur, Alive: true},
		{Name: "Seek", Role: roster.Seeker, Alive: true},
		{Name: "Prot", Role: roster.Protector, Alive: true},
		{Name: "By1", Role: roster.Bystander, Alive: true},
		{Name: "By2", Role: roster.Bystander, Alive: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func entry(seq, day int, p phase.Phase, actor string, kind actionlog.Kind, target string) actionlog.Entry {
	return actionlog.Entry{Seq: seq, Day: day, Phase: p, Actor: actor, Kind: kind, Target: target}
}

func sampleLog() []actionlog.Entry {
	return []actionlog.Entry{
		entry(1, 1, phase.NightDiscussion, "Sab1", actionlog.KindReasoning, ""),
		entry(2, 1, phase.NightDiscussion, "Sab1", actionlog.KindStatement, ""),
		entry(3, 1, phase.NightVote, "Sab1", actionlog.KindDecision, "By1"),
		entry(4, 1, phase.NightVote, "Sab2", actionlog.KindDecision, "By1"),
		entry(5, 1, phase.VoteReveal, actionlog.SystemActor, actionlog.KindSystem, "By1"),
		entry(6, 1, phase.NightInvestigate, "Seek", actionlog.KindDecision, "Sab1"),
		{Seq: 7, Day: 1, Phase: phase.InvestigateReveal, Actor: actionlog.SystemActor, Kind: actionlog.KindSystem, Target: "Sab1", Recipient: "Seek"},
		entry(8, 1, phase.NightProtect, "Prot", actionlog.KindDecision, "By1"),
		entry(9, 1, phase.MorningResolution, actionlog.SystemActor, actionlog.KindSystem, ""),
		entry(10, 1, phase.TrialDiscussion, "By2", actionlog.KindReasoning, ""),
		entry(11, 1, phase.TrialDiscussion, "By2", actionlog.KindStatement, ""),
		entry(12, 1, phase.TrialVote, "By2", actionlog.KindVote, "Sab1"),
	}
}

func seqs(entries []actionlog.Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Seq
	}
	return out
}

func TestFilter_NoForeignReasoningTraces(t *testing.T) {
	r := testRoster(t)
	log := sampleLog()
	for _, a := range r.Actors() {
		ctx, err := Build(Request{Viewer: a.Name, Phase: phase.TrialVote, Day: 1, Deciding: true}, log, r)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range ctx.History {
			if e.Kind == actionlog.KindReasoning && e.Actor != a.Name {
				t.Errorf("%s sees reasoning trace of %s (seq %d)", a.Name, e.Actor, e.Seq)
			}
		}
	}
}

func TestFilter_RolePhasePrivacy(t *testing.T) {
	r := testRoster(t)
	log := sampleLog()

	for _, a := range r.Actors() {
		ctx, err := Build(Request{Viewer: a.Name, Phase: phase.TrialDiscussion, Day: 1}, log, r)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range ctx.History {
			private := phase.RuleFor(e.Phase).Private
			if private != "" && private != a.Role {
				t.Errorf("%s (%s) sees %s entry %d", a.Name, a.Role, e.Phase, e.Seq)
			}
		}
	}
}

func TestFilter_PerViewer(t *testing.T) {
	r := testRoster(t)
	log := sampleLog()

	tests := []struct {
		viewer string
		want   []int
	}{
		// Saboteurs see their own night, teammate statements, public phases.
		{"Sab1", []int{1, 2, 3, 4, 5, 9, 11, 12}},
		{"Sab2", []int{2, 3, 4, 5, 9, 11, 12}},
		// The seeker sees its private result.
		{"Seek", []int{6, 7, 9, 11, 12}},
		{"Prot", []int{8, 9, 11, 12}},
		{"By1", []int{9, 11, 12}},
		{"By2", []int{9, 10, 11, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.viewer, func(t *testing.T) {
			ctx, err := Build(Request{Viewer: tt.viewer, Phase: phase.TrialDiscussion, Day: 1}, log, r)
			if err != nil {
				t.Fatal(err)
			}
			if got := seqs(ctx.History); !slices.Equal(got, tt.want) {
				t.Errorf("History = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_PrivateResultOnlyForRecipient(t *testing.T) {
	r := testRoster(t)
	log := []actionlog.Entry{
		{Seq: 1, Day: 1, Phase: phase.InvestigateReveal, Actor: actionlog.SystemActor, Kind: actionlog.KindSystem, Recipient: "Someone"},
	}
	ctx, err := Build(Request{Viewer: "Seek", Phase: phase.NightProtect, Day: 1}, log, r)
	if err != nil {
		t.Fatal(err)
	}
	if len(ctx.History) != 0 {
		t.Errorf("seeker sees a result addressed to someone else: %+v", ctx.History)
	}
}

func TestFilter_VoteSecrecyDuringRound(t *testing.T) {
	r := testRoster(t)
	log := []actionlog.Entry{
		entry(1, 1, phase.TrialVote, "By1", actionlog.KindVote, "Sab1"),
		entry(2, 1, phase.TrialVote, "By2", actionlog.KindVote, "Sab2"),
		entry(3, 0, phase.TrialVote, "Sab1", actionlog.KindVote, "By2"),
	}

	deciding, err := Build(Request{Viewer: "By2", Phase: phase.TrialVoteInput, Day: 1, Deciding: true}, log, r)
	if err != nil {
		t.Fatal(err)
	}
	if got := seqs(deciding.History); !slices.Equal(got, []int{2, 3}) {
		t.Errorf("while deciding: History = %v, want [2 3]", got)
	}

	after, err := Build(Request{Viewer: "By2", Phase: phase.ExecutionReveal, Day: 1}, log, r)
	if err != nil {
		t.Fatal(err)
	}
	if len(after.History) != 3 {
		t.Errorf("after the round every vote is public, got %v", seqs(after.History))
	}
}

func TestBuild_ProtectorExclusion(t *testing.T) {
	r := testRoster(t)
	log := []actionlog.Entry{
		entry(1, 1, phase.NightProtect, "Prot", actionlog.KindDecision, "By1"),
	}

	day2, err := Build(Request{Viewer: "Prot", Phase: phase.NightProtect, Day: 2, Deciding: true}, log, r)
	if err != nil {
		t.Fatal(err)
	}
	if day2.LastProtected != "By1" {
		t.Errorf("LastProtected = %q, want By1", day2.LastProtected)
	}
	if slices.Contains(day2.Targets, "By1") {
		t.Errorf("Targets = %v, must exclude yesterday's choice", day2.Targets)
	}
	if len(day2.Targets) != 5 {
		t.Errorf("len(Targets) = %d, want 5", len(day2.Targets))
	}

	day3, err := Build(Request{Viewer: "Prot", Phase: phase.NightProtect, Day: 3, Deciding: true}, log, r)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(day3.Targets, "By1") {
		t.Error("exclusion must only cover the previous day")
	}
}

func TestBuild_TargetsAndIndex(t *testing.T) {
	r := testRoster(t)
	if _, err := r.Eliminate("By2"); err != nil {
		t.Fatal(err)
	}

	ctx, err := Build(Request{Viewer: "Sab1", Phase: phase.NightVote, Day: 1, Deciding: true}, nil, r)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ctx.Targets, []string{"Sab1", "Sab2", "Seek", "Prot", "By1"}) {
		t.Errorf("Targets = %v", ctx.Targets)
	}
	if name, ok := ctx.TargetAt(0); !ok || name != "" {
		t.Error("index 0 must be abstain")
	}
	if name, ok := ctx.TargetAt(3); !ok || name != "Seek" {
		t.Errorf("TargetAt(3) = %q, %v", name, ok)
	}
	if _, ok := ctx.TargetAt(6); ok {
		t.Error("TargetAt(6) should be out of range")
	}
	if ctx.IndexOf("By1") != 5 || ctx.IndexOf("By2") != -1 {
		t.Errorf("IndexOf mismatch")
	}
	if !slices.Equal(ctx.Teammates, []string{"Sab2"}) {
		t.Errorf("Teammates = %v", ctx.Teammates)
	}
	if ctx.Counts != (roster.Counts{Saboteurs: 2, Others: 3}) {
		t.Errorf("Counts = %+v", ctx.Counts)
	}

	talk, err := Build(Request{Viewer: "Sab1", Phase: phase.NightDiscussion, Day: 1}, nil, r)
	if err != nil {
		t.Fatal(err)
	}
	if talk.Targets != nil {
		t.Error("talking phases have no targets")
	}
}

func TestBuild_UnknownViewer(t *testing.T) {
	r := testRoster(t)
	_, err := Build(Request{Viewer: "Ghost", Phase: phase.TrialVote, Day: 1}, nil, r)
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Build() error = %v, want ConfigError", err)
	}
	if errors.IsRetryable(err) {
		t.Error("unknown viewer must not be retryable")
	}
}

func TestBuild_DeadRoles(t *testing.T) {
	r := testRoster(t)
	if _, err := r.Eliminate("Seek"); err != nil {
		t.Fatal(err)
	}
	ctx, err := Build(Request{Viewer: "By1", Phase: phase.TrialDiscussion, Day: 2}, nil, r)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ctx.DeadRoles, []roster.Role{roster.Seeker}) {
		t.Errorf("DeadRoles = %v", ctx.DeadRoles)
	}
}

func TestOmniscient(t *testing.T) {
	log := sampleLog()
	if got := Omniscient(log); len(got) != len(log) {
		t.Errorf("Omniscient() dropped entries: %d of %d", len(got), len(log))
	}
}
