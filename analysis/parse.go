package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Result maps each configured field key to its extracted value. Every key
// from the field table is always present.
type Result map[string]string

// jsonFenceRe matches a markdown code fence tagged json, tolerating case and
// surrounding whitespace, across multiple lines.
var jsonFenceRe = regexp.MustCompile("(?is)```\\s*json\\s*(.*?)```")

// ParseResponse turns raw model text into a Result. The model's output
// format is not guaranteed, so extraction strategies are tried in order:
// fenced JSON, then the whole text as JSON, then a per-line label scan.
// Badly-formatted-but-non-empty text degrades to placeholder values; only an
// empty reply is an error.
func ParseResponse(text string, fields []Field) (Result, *Error) {
	if strings.TrimSpace(text) == "" {
		return nil, parseFailure("vision model returned no content", nil)
	}

	candidate := extractFencedJSON(text)
	if candidate == "" {
		candidate = text
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &obj); err == nil {
		return resultFromObject(obj, fields), nil
	}

	return resultFromLines(text, fields), nil
}

// extractFencedJSON returns the interior of the first ```json fence, or ""
// when the text has none.
func extractFencedJSON(text string) string {
	m := jsonFenceRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// resultFromObject pulls the expected keys out of a parsed JSON object. A
// missing or empty key defaults to UnknownValue instead of failing the
// whole parse.
func resultFromObject(obj map[string]any, fields []Field) Result {
	result := make(Result, len(fields))
	for _, field := range fields {
		result[field.Key] = UnknownValue

		value, ok := obj[field.Key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				result[field.Key] = s
			}
		default:
			result[field.Key] = fmt.Sprint(v)
		}
	}
	return result
}

// resultFromLines scans the raw text line by line when it is not JSON at
// all. For each field the first line containing its label gets everything
// after the first colon; fields with no matching line stay UnknownValue.
func resultFromLines(text string, fields []Field) Result {
	lines := strings.Split(text, "\n")
	result := make(Result, len(fields))

	for _, field := range fields {
		result[field.Key] = UnknownValue

		for _, line := range lines {
			if !strings.Contains(strings.ToLower(line), field.Label) {
				continue
			}
			_, after, found := strings.Cut(line, ":")
			if !found {
				continue
			}
			if value := strings.TrimSpace(after); value != "" {
				result[field.Key] = value
				break
			}
		}
	}

	return result
}
