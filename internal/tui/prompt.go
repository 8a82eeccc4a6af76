package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/nightfall/internal/agent"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/game"
	"github.com/Iron-Ham/nightfall/internal/phase"
)

// Asker collects the human seat's answer to an input request.
type Asker interface {
	Ask(ctx context.Context, req game.InputRequest) (game.HumanInput, error)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Italic(true)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	emotionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
)

// Model is the Bubbletea model for one input request.
type Model struct {
	req       game.InputRequest
	choosing  bool
	cursor    int
	textInput textinput.Model
	verbatim  bool
	emotion   int
	errorMsg  string
	done      bool
	canceled  bool
}

// NewModel creates a model for req.
func NewModel(req game.InputRequest) Model {
	ti := textinput.New()
	ti.Placeholder = "what should your character say?"
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	return Model{
		req:       req,
		choosing:  phase.RuleFor(req.Phase).Mode == phase.ModeChoose,
		textInput: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.choosing {
		return nil
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.choosing {
			return m, nil
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	m.errorMsg = ""
	switch key.String() {
	case "ctrl+c", "esc":
		m.canceled = true
		return m, tea.Quit
	}

	if m.choosing {
		return m.updateChoice(key)
	}
	return m.updateText(key)
}

func (m Model) updateChoice(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := len(m.req.Targets)
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < last {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	default:
		if n, err := strconv.Atoi(key.String()); err == nil {
			if n > last {
				m.errorMsg = fmt.Sprintf("choose 0..%d", last)
				return m, nil
			}
			m.cursor = n
		}
	}
	return m, nil
}

func (m Model) updateText(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "tab":
		m.verbatim = !m.verbatim
		return m, nil
	case "ctrl+e":
		if m.req.Emotion {
			m.emotion = (m.emotion + 1) % len(agent.Emotions())
		}
		return m, nil
	case "enter":
		if m.verbatim && strings.TrimSpace(m.textInput.Value()) == "" {
			m.errorMsg = "say something first"
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(key)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done || m.canceled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s, day %d: your turn", m.req.Actor, m.req.Day)))
	b.WriteString("\n\n")

	if m.choosing {
		options := append([]string{"Abstain"}, m.req.Targets...)
		for i, name := range options {
			line := fmt.Sprintf("  %d. %s", i, name)
			if i == m.cursor {
				line = cursorStyle.Render(fmt.Sprintf("> %d. %s", i, name))
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + hintStyle.Render("↑/↓ or a number to pick, enter to confirm, esc to quit"))
	} else {
		mode := "guide your character"
		if m.verbatim {
			mode = "say it yourself"
		}
		b.WriteString(m.textInput.View() + "\n\n")
		b.WriteString(hintStyle.Render("mode: " + mode + " (tab to switch)"))
		if m.req.Emotion && m.verbatim {
			b.WriteString("  " + emotionStyle.Render("emotion: "+agent.Emotions()[m.emotion]+" (ctrl+e)"))
		}
	}
	if m.errorMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errorMsg))
	}
	return b.String()
}

// Input converts the finished model into a HumanInput.
func (m Model) Input() (game.HumanInput, error) {
	if m.canceled || !m.done {
		return game.HumanInput{}, errors.ErrCanceled
	}
	if m.choosing {
		return game.HumanInput{TargetIndex: m.cursor}, nil
	}
	in := game.HumanInput{Text: strings.TrimSpace(m.textInput.Value()), Verbatim: m.verbatim}
	if m.verbatim && m.req.Emotion {
		in.Emotion = agent.Emotions()[m.emotion]
	}
	return in, nil
}

// Program asks through an interactive Bubbletea program.
type Program struct {
	In  io.Reader
	Out io.Writer
}

// Ask implements Asker.
func (p Program) Ask(ctx context.Context, req game.InputRequest) (game.HumanInput, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	final, err := tea.NewProgram(NewModel(req), opts...).Run()
	if err != nil {
		return game.HumanInput{}, fmt.Errorf("input prompt: %w", err)
	}
	return final.(Model).Input()
}

// Lines asks on a plain line-oriented stream, for pipes and scripts.
// Choosing phases read a number; talking phases read a line, and a line
// starting with '>' is said verbatim.
type Lines struct {
	In  *bufio.Reader
	Out io.Writer
}

// NewLines creates a line-oriented Asker.
func NewLines(in io.Reader, out io.Writer) *Lines {
	return &Lines{In: bufio.NewReader(in), Out: out}
}

// Ask implements Asker.
func (l *Lines) Ask(ctx context.Context, req game.InputRequest) (game.HumanInput, error) {
	if err := ctx.Err(); err != nil {
		return game.HumanInput{}, errors.Join(errors.ErrCanceled, err)
	}
	choosing := phase.RuleFor(req.Phase).Mode == phase.ModeChoose
	if choosing {
		fmt.Fprintf(l.Out, "%s, day %d: choose a number.\n  0. Abstain\n", req.Actor, req.Day)
		for i, name := range req.Targets {
			fmt.Fprintf(l.Out, "  %d. %s\n", i+1, name)
		}
	} else {
		fmt.Fprintf(l.Out, "%s, day %d: guide your character (start with '>' to speak verbatim).\n", req.Actor, req.Day)
	}
	fmt.Fprint(l.Out, "> ")

	line, err := l.In.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return game.HumanInput{}, errors.Join(errors.ErrCanceled, err)
	}
	line = strings.TrimSpace(line)

	if choosing {
		n, err := strconv.Atoi(line)
		if err != nil {
			return game.HumanInput{}, errors.NewValidationError("not a number").
				WithField("target_index").WithValue(line)
		}
		return game.HumanInput{TargetIndex: n}, nil
	}
	if rest, ok := strings.CutPrefix(line, ">"); ok {
		return game.HumanInput{Text: strings.TrimSpace(rest), Verbatim: true}, nil
	}
	return game.HumanInput{Text: line}, nil
}
