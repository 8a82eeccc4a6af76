package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/nightfall/internal/roster"
)

var (
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	hopeColor    = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	despairColor = lipgloss.Color("#F87171") // Red
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	nightColor   = lipgloss.Color("#60A5FA") // Blue
	textColor    = lipgloss.Color("#F9FAFB")
)

// theme holds the styles for one output renderer.
type theme struct {
	header    lipgloss.Style
	night     lipgloss.Style
	actor     lipgloss.Style
	statement lipgloss.Style
	reasoning lipgloss.Style
	vote      lipgloss.Style
	system    lipgloss.Style
	private   lipgloss.Style
	hope      lipgloss.Style
	despair   lipgloss.Style
	failure   lipgloss.Style
	roles     map[roster.Role]lipgloss.Style
}

func newTheme(r *lipgloss.Renderer, color bool) theme {
	s := func() lipgloss.Style { return r.NewStyle() }
	t := theme{
		header:    s().Bold(true).MarginTop(1),
		night:     s().Bold(true).MarginTop(1),
		actor:     s().Bold(true),
		statement: s(),
		reasoning: s().Italic(true),
		vote:      s(),
		system:    s().Bold(true),
		private:   s().Italic(true),
		hope:      s().Bold(true).Border(lipgloss.RoundedBorder()).Padding(0, 2),
		despair:   s().Bold(true).Border(lipgloss.RoundedBorder()).Padding(0, 2),
		failure:   s().Bold(true),
		roles:     map[roster.Role]lipgloss.Style{},
	}
	if !color {
		return t
	}

	t.header = t.header.Foreground(primaryColor)
	t.night = t.night.Foreground(nightColor)
	t.actor = t.actor.Foreground(textColor)
	t.reasoning = t.reasoning.Foreground(mutedColor)
	t.vote = t.vote.Foreground(warningColor)
	t.system = t.system.Foreground(primaryColor)
	t.private = t.private.Foreground(nightColor)
	t.hope = t.hope.Foreground(hopeColor).BorderForeground(hopeColor)
	t.despair = t.despair.Foreground(despairColor).BorderForeground(despairColor)
	t.failure = t.failure.Foreground(despairColor)
	t.roles = map[roster.Role]lipgloss.Style{
		roster.Saboteur:  s().Foreground(despairColor),
		roster.Seeker:    s().Foreground(nightColor),
		roster.Protector: s().Foreground(hopeColor),
		roster.Bystander: s().Foreground(mutedColor),
	}
	return t
}

func (t theme) role(r roster.Role) lipgloss.Style {
	if st, ok := t.roles[r]; ok {
		return st
	}
	return t.statement
}
