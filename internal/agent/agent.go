// Package agent defines the contract between the engine and the external
// reasoning agents that play each seat, plus the backends that implement it.
//
// An agent receives a fully rendered prompt and the schema of the answer the
// current phase expects, and returns a structured Response. Agents never see
// the action log directly; everything they know is in the prompt.
package agent

import (
	"context"
	"slices"

	"github.com/Iron-Ham/nightfall/internal/phase"
	"github.com/Iron-Ham/nightfall/internal/roster"
)

// Emotion tags accepted on trial statements.
const (
	EmotionNormal     = "normal"
	EmotionDetermined = "determined"
	EmotionThinking   = "thinking"
	EmotionWorried    = "worried"
)

// Emotions returns the allowed emotion tags.
func Emotions() []string {
	return []string{EmotionNormal, EmotionDetermined, EmotionThinking, EmotionWorried}
}

// ValidEmotion reports whether e is an allowed emotion tag.
func ValidEmotion(e string) bool {
	return slices.Contains(Emotions(), e)
}

// Schema lists the fields a response must carry in the current phase. A
// reasoning trace is always required.
type Schema struct {
	Statement bool
	Emotion   bool
	Target    bool
	// MaxIndex is the highest legal target index; 0 is abstain.
	MaxIndex int
}

// SchemaFor derives the response schema of phase p with n legal targets.
func SchemaFor(p phase.Phase, n int) Schema {
	rule := phase.RuleFor(p)
	return Schema{
		Statement: rule.Mode == phase.ModeTalk,
		Emotion:   rule.Emotion,
		Target:    rule.Mode == phase.ModeChoose,
		MaxIndex:  n,
	}
}

// Request is one decision request.
type Request struct {
	Actor  string
	Role   roster.Role
	Phase  phase.Phase
	Day    int
	Prompt string
	Schema Schema
	// Targets are the legal choices at indices 1..N, for backends that pick
	// without reading the prompt.
	Targets []string
	// Attempt counts from 1 and increases on each retry.
	Attempt int
}

// Response is an agent's structured answer.
type Response struct {
	ReasoningTrace string `yaml:"reasoning_trace"`
	Statement      string `yaml:"statement,omitempty"`
	Emotion        string `yaml:"emotion,omitempty"`
	TargetIndex    *int   `yaml:"target_index,omitempty"`
	// Raw is the unparsed output for text backends.
	Raw string `yaml:"-"`
}

// Agent produces a decision for one actor.
type Agent interface {
	Decide(ctx context.Context, req Request) (Response, error)
}

// Func adapts a function to Agent.
type Func func(ctx context.Context, req Request) (Response, error)

// Decide calls f.
func (f Func) Decide(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Index returns a pointer to i, for building responses.
func Index(i int) *int { return &i }
