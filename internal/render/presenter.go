// Package render prints the game transcript to a terminal.
//
// A Presenter subscribes to the engine's event bus and writes each entry
// the viewer is allowed to see, dwelling on it for the entry's pacing hint
// scaled by the configured factor. Replay feeds it journaled entries
// directly.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/event"
	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
	"github.com/Iron-Ham/nightfall/internal/visibility"
)

// View is whose eyes the transcript is shown through.
type View struct {
	// Viewer is empty for the omniscient view.
	Viewer string
	Role   roster.Role
}

// Omniscient reports whether every entry is shown.
func (v View) Omniscient() bool { return v.Viewer == "" }

// Option configures a Presenter.
type Option func(*Presenter)

// WithPacing scales every entry's dwell time; 0 disables pauses.
func WithPacing(scale float64) Option {
	return func(p *Presenter) { p.pacing = scale }
}

// WithColor toggles styling.
func WithColor(on bool) Option {
	return func(p *Presenter) { p.color = on }
}

// WithRoles reveals roles next to actor names. Used by the omniscient view
// and replay.
func WithRoles(roles map[string]roster.Role) Option {
	return func(p *Presenter) { p.roles = roles }
}

// WithSleep replaces time.Sleep, for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(p *Presenter) { p.sleep = sleep }
}

// Presenter writes a viewer's transcript.
type Presenter struct {
	mu     sync.Mutex
	w      io.Writer
	view   View
	pacing float64
	color  bool
	roles  map[string]roster.Role
	sleep  func(time.Duration)
	width  int
	theme  theme
	last   phase.Phase
}

// New creates a Presenter writing to w.
func New(w io.Writer, view View, opts ...Option) *Presenter {
	p := &Presenter{
		w:      w,
		view:   view,
		pacing: 1,
		color:  true,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.width = terminalWidth(w)
	p.theme = newTheme(lipgloss.NewRenderer(w), p.color)
	return p
}

// terminalWidth returns the width of w if it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// Attach subscribes the presenter to bus and returns the subscription ID.
func (p *Presenter) Attach(bus *event.Bus) string {
	return bus.SubscribeAll(p.Handle)
}

// Handle renders one engine event.
func (p *Presenter) Handle(e event.Event) {
	switch ev := e.(type) {
	case event.EntryAppendedEvent:
		if p.Entry(ev.Entry) {
			p.pause(ev.Pacing)
		}
	case event.GameOverEvent:
		p.gameOver(ev.Winner)
	case event.GameFailedEvent:
		p.write(p.theme.failure.Render(fmt.Sprintf("The game stopped in %s on day %d: %s", ev.Phase, ev.Day, failureReason(ev.Err))))
	}
}

// failureReason is the part of err that is fit to show at the table.
func failureReason(err error) string {
	if errors.IsUserFacing(err) {
		return err.Error()
	}
	return "an internal error occurred (details in debug.log)"
}

// Visible reports whether the viewer may see e.
func (p *Presenter) Visible(e actionlog.Entry) bool {
	if p.view.Omniscient() {
		return true
	}
	req := visibility.Request{Viewer: p.view.Viewer, Phase: e.Phase, Day: e.Day}
	return len(visibility.Filter(req, p.view.Role, []actionlog.Entry{e})) == 1
}

// Entry writes e if it is visible and reports whether it was written.
func (p *Presenter) Entry(e actionlog.Entry) bool {
	if !p.Visible(e) {
		return false
	}
	p.mu.Lock()
	header := ""
	if e.Phase != p.last {
		p.last = e.Phase
		header = p.phaseHeader(e)
	}
	p.mu.Unlock()

	if header != "" {
		p.write(header)
	}
	p.write(p.Format(e))
	return true
}

func (p *Presenter) phaseHeader(e actionlog.Entry) string {
	title := fmt.Sprintf("Day %d · %s", e.Day, Title(e.Phase))
	if e.Phase.IsNight() {
		return p.theme.night.Render(title)
	}
	return p.theme.header.Render(title)
}

// Title turns a phase identifier into a heading.
func Title(ph phase.Phase) string {
	words := strings.Split(string(phase.Canonical(ph)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Format renders one entry as styled text.
func (p *Presenter) Format(e actionlog.Entry) string {
	name := p.name(e.Actor)
	// Agent text reaches the terminal; drop any escape sequences it carries.
	e.Content = ansi.Strip(e.Content)
	switch e.Kind {
	case actionlog.KindReasoning:
		return p.wrap(p.theme.reasoning.Render(fmt.Sprintf("  %s thinks: %s", e.Actor, e.Content)))
	case actionlog.KindStatement:
		tag := ""
		if e.Emotion != "" && e.Emotion != "normal" {
			tag = fmt.Sprintf(" (%s)", e.Emotion)
		}
		return p.wrap(fmt.Sprintf("%s%s: %s", name, tag, p.theme.statement.Render(e.Content)))
	case actionlog.KindVote, actionlog.KindDecision:
		target := e.Target
		if target == "" {
			target = "nobody"
		}
		verb := "votes for"
		switch e.Phase {
		case phase.NightInvestigate:
			verb = "investigates"
		case phase.NightProtect:
			verb = "protects"
		}
		return fmt.Sprintf("%s %s %s", name, p.theme.vote.Render(verb), p.theme.vote.Render(target))
	case actionlog.KindSystem:
		st := p.theme.system
		if e.Recipient != "" || phase.RuleFor(e.Phase).Private != "" {
			st = p.theme.private
		}
		return p.wrap(st.Render(e.Content))
	}
	return e.Content
}

func (p *Presenter) name(actor string) string {
	label := p.theme.actor.Render(actor)
	if role, ok := p.roles[actor]; ok {
		label += " " + p.theme.role(role).Render("["+string(role)+"]")
	}
	return label
}

func (p *Presenter) wrap(s string) string {
	if p.width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(p.width).Render(s)
}

func (p *Presenter) gameOver(winner roster.Faction) {
	if winner == roster.FactionHope {
		p.write(p.theme.hope.Render("HOPE WINS"))
		return
	}
	p.write(p.theme.despair.Render("DESPAIR WINS"))
}

func (p *Presenter) pause(d time.Duration) {
	if p.pacing <= 0 || d <= 0 {
		return
	}
	p.sleep(time.Duration(float64(d) * p.pacing))
}

func (p *Presenter) write(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s)
}
