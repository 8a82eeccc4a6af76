package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/nightfall/internal/agent"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/game"
	"github.com/Iron-Ham/nightfall/internal/phase"
)

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	var model tea.Model = m
	for _, k := range keys {
		model, _ = model.Update(k)
	}
	return model.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var voteRequest = game.InputRequest{
	Actor:   "Eve",
	Phase:   phase.TrialVoteInput,
	Day:     2,
	Targets: []string{"Ann", "Ben", "Cal"},
}

func TestModel_Choice(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"enter abstains", []tea.KeyMsg{{Type: tea.KeyEnter}}, 0},
		{"arrows", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyUp}, {Type: tea.KeyEnter}}, 1},
		{"number", []tea.KeyMsg{runes("3"), {Type: tea.KeyEnter}}, 3},
		{"clamped", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyEnter}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, NewModel(voteRequest), tt.keys...)
			in, err := m.Input()
			if err != nil {
				t.Fatalf("Input() error = %v", err)
			}
			if in.TargetIndex != tt.want {
				t.Errorf("TargetIndex = %d, want %d", in.TargetIndex, tt.want)
			}
		})
	}
}

func TestModel_ChoiceOutOfRange(t *testing.T) {
	m := press(t, NewModel(voteRequest), runes("9"))
	if !strings.Contains(m.View(), "choose 0..3") {
		t.Errorf("View() = %q, want range error", m.View())
	}
}

func TestModel_Text(t *testing.T) {
	req := game.InputRequest{Actor: "Eve", Phase: phase.TrialDiscussionInput, Day: 1, Emotion: true}

	m := press(t, NewModel(req), runes("push for Ann"), tea.KeyMsg{Type: tea.KeyEnter})
	in, err := m.Input()
	if err != nil {
		t.Fatal(err)
	}
	if in.Text != "push for Ann" || in.Verbatim || in.Emotion != "" {
		t.Errorf("guidance input = %+v", in)
	}

	m = press(t, NewModel(req),
		tea.KeyMsg{Type: tea.KeyTab},
		tea.KeyMsg{Type: tea.KeyCtrlE},
		runes("It was Ann."),
		tea.KeyMsg{Type: tea.KeyEnter})
	in, err = m.Input()
	if err != nil {
		t.Fatal(err)
	}
	if !in.Verbatim || in.Text != "It was Ann." || in.Emotion != agent.Emotions()[1] {
		t.Errorf("verbatim input = %+v", in)
	}
}

func TestModel_VerbatimNeedsText(t *testing.T) {
	req := game.InputRequest{Actor: "Eve", Phase: phase.NightDiscussionInput, Day: 1}
	m := press(t, NewModel(req), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	if _, err := m.Input(); !errors.Is(err, errors.ErrCanceled) {
		t.Errorf("empty verbatim should not finish, Input() error = %v", err)
	}
}

func TestModel_Cancel(t *testing.T) {
	m := press(t, NewModel(voteRequest), tea.KeyMsg{Type: tea.KeyEsc})
	if _, err := m.Input(); !errors.Is(err, errors.ErrCanceled) {
		t.Errorf("Input() error = %v, want ErrCanceled", err)
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		name  string
		req   game.InputRequest
		input string
		want  game.HumanInput
		err   bool
	}{
		{"vote", voteRequest, "2\n", game.HumanInput{TargetIndex: 2}, false},
		{"not a number", voteRequest, "Ann\n", game.HumanInput{}, true},
		{"guidance", game.InputRequest{Phase: phase.TrialDiscussionInput}, "defend Ben\n", game.HumanInput{Text: "defend Ben"}, false},
		{"verbatim", game.InputRequest{Phase: phase.TrialDiscussionInput}, "> I trust Ben.", game.HumanInput{Text: "I trust Ben.", Verbatim: true}, false},
		{"eof", voteRequest, "", game.HumanInput{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := NewLines(strings.NewReader(tt.input), &out).Ask(context.Background(), tt.req)
			if (err != nil) != tt.err {
				t.Fatalf("Ask() error = %v, wantErr %v", err, tt.err)
			}
			if got != tt.want {
				t.Errorf("Ask() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
