// Package research turns free-form provider responses into structured enrichment data.
package research

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseKind names the JSON shape that was expected.
type ParseKind string

const (
	// ParseKindObject is expected from the company prompt.
	ParseKindObject ParseKind = "object"
	// ParseKindArray is expected from the person prompt.
	ParseKindArray ParseKind = "array"
)

// rawPreviewLimit bounds how much provider text ends up in error messages.
const rawPreviewLimit = 200

// ErrNoJSON is matched by every ParseError via errors.Is.
var ErrNoJSON = errors.New("no JSON value found in provider response")

// ParseError reports provider output that did not contain the expected JSON value.
// Raw holds the complete response text.
type ParseError struct {
	Kind  ParseKind
	Stage string
	Raw   string
}

func (e *ParseError) Error() string {
	preview := e.Raw
	if len(preview) > rawPreviewLimit {
		preview = preview[:rawPreviewLimit] + "..."
	}
	return fmt.Sprintf("%s response: no JSON %s found in provider output %q", e.Stage, e.Kind, preview)
}

// Is lets errors.Is(err, ErrNoJSON) match.
func (e *ParseError) Is(target error) bool {
	return target == ErrNoJSON
}

// ExtractObject returns the first well-formed JSON object embedded in text.
func ExtractObject(stage, text string) (json.RawMessage, error) {
	return extractFirst(stage, text, ParseKindObject, nil)
}

// ExtractArray returns the first well-formed JSON array embedded in text for which accept returns true.
// A nil accept takes the first array.
func ExtractArray(stage, text string, accept func(json.RawMessage) bool) (json.RawMessage, error) {
	return extractFirst(stage, text, ParseKindArray, accept)
}

func extractFirst(stage, text string, kind ParseKind, accept func(json.RawMessage) bool) (json.RawMessage, error) {
	open := byte('{')
	if kind == ParseKindArray {
		open = '['
	}
	for i := 0; i < len(text); i++ {
		if text[i] != open {
			continue
		}
		raw, ok := decodeAt(text[i:])
		if !ok {
			continue
		}
		if accept != nil && !accept(raw) {
			continue
		}
		return raw, nil
	}
	return nil, &ParseError{Kind: kind, Stage: stage, Raw: text}
}

// decodeAt decodes exactly one JSON value from the start of s, ignoring whatever follows it.
func decodeAt(s string) (json.RawMessage, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	return bytes.TrimSpace(raw), true
}
