// Package llmjson pulls a JSON object out of free-form model output.
package llmjson

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// greedy: first '{' through the last '}'
var objectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ParseError is returned when a model response holds no usable JSON object.
// Raw keeps the full response for diagnostics.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extract returns the brace span of text decoded into a generic object.
// reason becomes the ParseError message, e.g. "failed to parse AI response".
func Extract(text, reason string) (map[string]any, error) {
	span := objectRe.FindString(text)
	if span == "" {
		return nil, &ParseError{Reason: reason, Raw: text}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, &ParseError{Reason: reason, Raw: text, Err: err}
	}
	return obj, nil
}
