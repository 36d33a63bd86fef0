package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("```(?:json)?")

// ParseStructured decodes the model's reply into v. Code fences and
// surrounding prose are stripped first; unknown fields are rejected. A decode
// failure is reported as a MalformedResponseError — this is the single
// recovery point for output that doesn't match the requested shape.
func ParseStructured(raw string, v any) error {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))

	if err := decodeStrict(cleaned, v); err == nil {
		return nil
	}

	// Tolerate prose wrapping: retry on the outermost {...} span.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := decodeStrict(cleaned[start:end+1], v); err == nil {
			return nil
		}
	}

	return &MalformedResponseError{Reason: "not a valid JSON object: " + truncate(cleaned, 200)}
}

func decodeStrict(s string, v any) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Anything after the object means it wasn't a single JSON value.
	if dec.More() {
		return &MalformedResponseError{Reason: "trailing content after JSON object"}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// GoalDraft is one goal proposed by the conversational goal-setting flow.
type GoalDraft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Multiplier  float64 `json:"multiplier"`
	Frequency   string  `json:"frequency"`
	Category    string  `json:"category"`
}

type finalizedGoals struct {
	GoalsComplete bool        `json:"goalsComplete"`
	Goals         []GoalDraft `json:"goals"`
}

// ExtractFinalizedGoals scans free-form assistant text for an embedded object
// carrying a true goalsComplete flag and a non-empty goal list. Absence of
// such an object is the normal case while the conversation is still going, so
// it returns nil rather than an error.
func ExtractFinalizedGoals(text string) []GoalDraft {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		candidate, ok := balancedObject(text[i:])
		if !ok {
			continue
		}
		var fin finalizedGoals
		if err := json.Unmarshal([]byte(candidate), &fin); err != nil {
			continue
		}
		if fin.GoalsComplete && len(fin.Goals) > 0 {
			return fin.Goals
		}
		// Skip past this object so nested opens aren't rescanned.
		i += len(candidate) - 1
	}
	return nil
}

// balancedObject returns the shortest brace-balanced prefix of s, which must
// start with '{'. String literals and escapes are respected.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1], true
				}
			}
		}
	}
	return "", false
}
