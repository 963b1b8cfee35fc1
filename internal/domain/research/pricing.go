package research

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NormalizePricingModel flattens whatever the provider returned for pricingModel into one string.
// Strings pass through, lists are joined with ", ", objects become compact JSON text and
// other scalars keep their literal text. Null or missing values become "".
func NormalizePricingModel(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return compactJSON(raw)
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, scalarText(item))
		}
		return strings.Join(parts, ", ")
	case '{':
		return compactJSON(raw)
	default:
		return scalarText(raw)
	}
}

// scalarText renders a JSON value as plain text: strings unquoted, null empty, anything else compact JSON.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return compactJSON(raw)
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
