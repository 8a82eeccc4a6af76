package agent

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/nightfall/internal/errors"
)

var fencePattern = regexp.MustCompile("(?s)```(?:ya?ml)?\\s*\\n(.*?)```")

// wireResponse accepts both the current field names and the shorter ones
// older prompts asked for.
type wireResponse struct {
	ReasoningTrace string `yaml:"reasoning_trace"`
	Thinking       string `yaml:"thinking"`
	Statement      string `yaml:"statement"`
	Talking        string `yaml:"talking"`
	Emotion        string `yaml:"emotion"`
	TargetIndex    *int   `yaml:"target_index"`
	VoteIndex      *int   `yaml:"vote_target_index"`
}

// ParseResponse extracts a Response from free-form agent output. The answer
// is read from the first fenced YAML block if there is one, otherwise the
// whole text is parsed as YAML.
func ParseResponse(text string) (Response, error) {
	body := text
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		body = m[1]
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return Response{Raw: text}, errors.NewResponseError("empty response", errors.ErrMalformedResponse).WithRaw(text)
	}

	var w wireResponse
	if err := yaml.Unmarshal([]byte(body), &w); err != nil {
		return Response{Raw: text}, errors.NewResponseError("response is not valid YAML",
			errors.Join(errors.ErrMalformedResponse, err)).WithRaw(text)
	}

	resp := Response{
		ReasoningTrace: firstNonEmpty(w.ReasoningTrace, w.Thinking),
		Statement:      firstNonEmpty(w.Statement, w.Talking),
		Emotion:        strings.ToLower(strings.TrimSpace(w.Emotion)),
		TargetIndex:    w.TargetIndex,
		Raw:            text,
	}
	if resp.TargetIndex == nil {
		resp.TargetIndex = w.VoteIndex
	}
	if resp.Emotion == "think" {
		resp.Emotion = EmotionThinking
	}
	return resp, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
