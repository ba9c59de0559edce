package ai

import (
	"encoding/json"
	"strings"
)

// Values used when a reply carries no parseable score object.
const (
	FallbackScore       = 5
	FallbackSuggestions = "see the detailed analysis"
)

// ScoreResult is the normalized outcome of AI scoring.
// Fields the model omitted stay nil and are left out of the JSON.
type ScoreResult struct {
	Score       *float64 `json:"score,omitempty"`
	Analysis    *string  `json:"analysis,omitempty"`
	Suggestions *string  `json:"suggestions,omitempty"`
}

// ScoreValue returns the score, or 0 when the model did not provide one.
func (r ScoreResult) ScoreValue() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// ReplyKind tells whether a model reply embedded a score object.
type ReplyKind int

const (
	Unstructured ReplyKind = iota
	Structured
)

// Reply is a parsed model reply: either a Structured result or the
// Unstructured raw text.
type Reply struct {
	Kind   ReplyKind
	Result ScoreResult
	Raw    string
}

// ParseReply looks for the first balanced {...} in text and decodes it as a
// ScoreResult. Anything that fails along the way yields an Unstructured reply.
func ParseReply(text string) Reply {
	obj, ok := firstObject(text)
	if !ok {
		return Reply{Kind: Unstructured, Raw: text}
	}
	var res ScoreResult
	if err := json.Unmarshal([]byte(obj), &res); err != nil {
		return Reply{Kind: Unstructured, Raw: text}
	}
	return Reply{Kind: Structured, Result: res, Raw: text}
}

// Normalize turns a reply into a ScoreResult, synthesizing the fallback for
// unstructured replies. It never fails.
func (r Reply) Normalize() ScoreResult {
	if r.Kind == Structured {
		return r.Result
	}
	score := float64(FallbackScore)
	analysis := r.Raw
	suggestions := FallbackSuggestions
	return ScoreResult{Score: &score, Analysis: &analysis, Suggestions: &suggestions}
}

// firstObject returns the substring from the first '{' to its matching '}'.
// Braces inside JSON string literals are not counted.
func firstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
