package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

var ErrInvalidJSON = errors.New("model response is not valid JSON")

// parseReasoning accepts either a bare JSON object or text with one embedded.
func parseReasoning(text string) (entity.Reasoning, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		obj, ok := extractObject(text)
		if !ok {
			return entity.Reasoning{}, ErrInvalidJSON
		}
		if err := json.Unmarshal([]byte(obj), &raw); err != nil {
			return entity.Reasoning{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	}

	var out entity.Reasoning
	if b, ok := raw["bottlenecks"]; ok {
		var list []any
		if err := json.Unmarshal(b, &list); err != nil {
			return entity.Reasoning{}, fmt.Errorf("bottlenecks must be a list: %w", err)
		}
		for _, v := range list {
			out.Bottlenecks = append(out.Bottlenecks, fmt.Sprint(v))
		}
	}

	if s, ok := raw["sop"]; ok {
		sop, err := flattenSOP(s)
		if err != nil {
			return entity.Reasoning{}, err
		}
		out.SOP = sop
	}

	if s, ok := raw["summary"]; ok {
		if err := json.Unmarshal(s, &out.Summary); err != nil {
			return entity.Reasoning{}, fmt.Errorf("summary must be a string: %w", err)
		}
	}
	return out, nil
}

// flattenSOP accepts the SOP as a string or as an object of sections.
func flattenSOP(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var sections map[string]any
	if err := json.Unmarshal(raw, &sections); err != nil {
		return "", fmt.Errorf("sop must be a string or an object")
	}

	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		switch v := sections[k].(type) {
		case map[string]any:
			fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(k))
			sub := make([]string, 0, len(v))
			for sk := range v {
				sub = append(sub, sk)
			}
			sort.Strings(sub)
			for _, sk := range sub {
				fmt.Fprintf(&b, "  - %s: %v\n", sk, v[sk])
			}
		default:
			fmt.Fprintf(&b, "\n%s: %v\n", strings.ToUpper(k), v)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// extractObject returns the first brace-balanced object in text.
// Braces inside JSON strings are skipped.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
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
