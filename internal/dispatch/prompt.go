package dispatch

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/agent"
	"github.com/Iron-Ham/nightfall/internal/roster"
	"github.com/Iron-Ham/nightfall/internal/visibility"
)

// PromptData contains everything available to the prompt template.
type PromptData struct {
	Actor    string
	Role     roster.Role
	Persona  string
	Day      int
	Phase    string
	Position int
	Total    int
	// Teammates is the comma-separated list of fellow saboteurs.
	Teammates string
	// Players lists living actors, with only the viewer's own role shown.
	Players string
	// Order is the living speaking order.
	Order         string
	Saboteurs     int
	Others        int
	LastProtected string
	Warnings      []string
	History       []string
	// Targets is the numbered choice list, starting with 0 for abstain.
	Targets  []string
	Guidance string
	Schema   agent.Schema
	Emotions string
}

const rulesText = `A group of strangers is locked in together. A hidden minority of Saboteurs
eliminates one person each night. Everyone else wins by voting every Saboteur
out during the daytime trials; the Saboteurs win once they are at least as many
as everyone else. At night the Seeker learns whether one person is a Saboteur
and the Protector shields one person from the night's attack (never the same
person two nights in a row). Bystanders have no power beyond their voice and vote.`

var promptTemplate = template.Must(template.New("decision").Parse(`You are {{.Actor}}.
{{- if .Persona}}
Personality: {{.Persona}}{{end}}
Your secret role: {{.Role}}
{{- if .Teammates}}
Your fellow Saboteurs (work together): {{.Teammates}}{{end}}

Rules:
{{.Rules}}

Situation:
- Day {{.Day}}, phase {{.Phase}}{{if .Total}} (you are speaker {{.Position}}/{{.Total}}){{end}}
- Saboteurs alive: {{.Saboteurs}}; everyone else alive: {{.Others}}
- Living players: {{.Players}}
- Speaking order: {{if .Order}}{{.Order}}{{else}}N/A{{end}}
{{- if .LastProtected}}
- You protected {{.LastProtected}} last night and may not choose them again tonight.{{end}}
{{- range .Warnings}}
{{.}}{{end}}

History (other players' private thoughts are hidden):
{{- if .History}}{{range .History}}
{{.}}{{end}}{{else}}
No events yet.{{end}}
{{- if .Targets}}

Choices:{{range .Targets}}
{{.}}{{end}}{{end}}
{{- if .Guidance}}

The person guiding you says: "{{.Guidance}}"
Follow this guidance in your own voice.{{end}}

Answer with a single fenced YAML block:
` + "```yaml" + `
reasoning_trace: >
  Your private reasoning. Be concrete and conclusive.
{{- if .Schema.Statement}}
statement: >
  What you say out loud (5-50 words), consistent with your reasoning and personality.
{{- end}}
{{- if .Schema.Emotion}}
emotion: <one of {{.Emotions}}>
{{- end}}
{{- if .Schema.Target}}
target_index: <number from the choice list, 0 to abstain>
{{- end}}
` + "```" + `
`))

// renderPrompt fills the decision template.
func renderPrompt(data PromptData) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, struct {
		PromptData
		Rules string
	}{data, rulesText})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// buildPromptData assembles template data from a viewer's context.
func buildPromptData(vc visibility.Context, turn Turn, persona string, schema agent.Schema, r *roster.Roster) PromptData {
	data := PromptData{
		Actor:         vc.Viewer,
		Role:          vc.Role,
		Persona:       persona,
		Day:           vc.Day,
		Phase:         string(vc.Phase),
		Position:      turn.Position,
		Total:         turn.Total,
		Teammates:     strings.Join(vc.Teammates, ", "),
		Saboteurs:     vc.Counts.Saboteurs,
		Others:        vc.Counts.Others,
		LastProtected: vc.LastProtected,
		Warnings:      Warnings(vc),
		Guidance:      turn.Guidance,
		Schema:        schema,
		Emotions:      strings.Join(agent.Emotions(), "|"),
	}

	players := make([]string, len(vc.Living))
	order := make([]string, len(vc.Living))
	for i, name := range vc.Living {
		role := "?"
		if name == vc.Viewer {
			role = string(vc.Role)
		}
		players[i] = fmt.Sprintf("%s (role: %s)", name, role)
		order[i] = fmt.Sprintf("(%d) %s", i+1, name)
	}
	data.Players = strings.Join(players, ", ")
	data.Order = strings.Join(order, ", ")

	for _, e := range vc.History {
		data.History = append(data.History, FormatEntry(e))
	}

	if schema.Target {
		data.Targets = append(data.Targets, "0. Abstain")
		for i, name := range vc.Targets {
			data.Targets = append(data.Targets, fmt.Sprintf("%d. %s", i+1, name))
		}
	}
	return data
}

// Warnings returns the alerts shown when the majority faction is one loss
// away from being outnumbered or a special role has been eliminated.
func Warnings(vc visibility.Context) []string {
	var warnings []string
	c := vc.Counts
	if c.Others > 0 && c.Saboteurs > 0 && c.Others-1 <= c.Saboteurs {
		warnings = append(warnings, "Warning: one more loss and the Saboteurs may outnumber everyone else!")
	}
	if len(vc.DeadRoles) > 0 {
		names := make([]string, len(vc.DeadRoles))
		for i, r := range vc.DeadRoles {
			names[i] = string(r)
		}
		warnings = append(warnings, fmt.Sprintf("Warning: the %s is dead!", strings.Join(names, " and ")))
	}
	if len(warnings) == 0 {
		return nil
	}
	if vc.Role == roster.Saboteur {
		warnings = append(warnings, "Press the advantage: sow confusion and steer suspicion away from your team.")
	} else {
		warnings = append(warnings, "Time is short: accuse openly and push for a unanimous vote.")
	}
	return warnings
}

// FormatEntry renders one log entry as a single history line.
func FormatEntry(e actionlog.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Day %d %s] %s (%s", e.Day, e.Phase, e.Actor, e.Kind)
	if e.Target != "" {
		fmt.Fprintf(&b, " -> %s", e.Target)
	} else if e.Kind == actionlog.KindVote || e.Kind == actionlog.KindDecision {
		b.WriteString(" -> abstain")
	}
	if e.Emotion != "" {
		fmt.Fprintf(&b, " [%s]", e.Emotion)
	}
	b.WriteByte(')')
	if e.Content != "" {
		fmt.Fprintf(&b, " %q", e.Content)
	}
	return b.String()
}
