package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/postpilot/postpilot-api/internal/apperrors"
)

const fence = "```"

// ExtractJSON returns the JSON object embedded in model output. A fenced code block wins
// over surrounding prose; inside it (or in the whole text when there is no fence) the
// object spans from the first '{' to the last '}'.
func ExtractJSON(raw string) (string, error) {
	text := raw
	if start := strings.Index(raw, fence); start >= 0 {
		body := raw[start+len(fence):]
		// Drop the language tag on the opening fence line, e.g. ```json.
		if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.Contains(body[:nl], "{") {
			body = body[nl+1:]
		}
		if end := strings.Index(body, fence); end >= 0 {
			body = body[:end]
		}
		text = body
	}

	open := strings.Index(text, "{")
	closing := strings.LastIndex(text, "}")
	if open < 0 || closing < open {
		return "", &apperrors.MalformedResponseError{Err: errors.New("no JSON object found in model output")}
	}
	return text[open : closing+1], nil
}

// ParseObject decodes the embedded JSON object without any schema.
func ParseObject(raw string) (map[string]any, error) {
	var out map[string]any
	if err := ParseInto(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseInto decodes the embedded JSON object into v. There is no partial recovery.
func ParseInto(raw string, v any) error {
	body, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &apperrors.MalformedResponseError{Err: err}
	}
	return nil
}

// ParseCalendar decodes a {"items": [...]} response into days.
func ParseCalendar(raw string) ([]Day, error) {
	obj, err := ParseObject(raw)
	if err != nil {
		return nil, err
	}
	items, ok := obj["items"]
	if !ok {
		return nil, &apperrors.InvalidShapeError{Field: "items"}
	}
	if _, ok := items.([]any); !ok {
		return nil, &apperrors.InvalidShapeError{Field: "items"}
	}

	var out struct {
		Items []Day `json:"items"`
	}
	if err := ParseInto(raw, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ParseDay decodes a single day object, as returned by regeneration.
func ParseDay(raw string) (*Day, error) {
	var day Day
	if err := ParseInto(raw, &day); err != nil {
		return nil, err
	}
	if day.CaptionLong == "" && day.CaptionShort == "" {
		return nil, &apperrors.InvalidShapeError{Field: "captionLong"}
	}
	return &day, nil
}

// DescribeShape is used in log lines when a response is rejected.
func DescribeShape(raw string) string {
	n := len(raw)
	if n > 200 {
		raw = raw[:200] + "..."
	}
	return fmt.Sprintf("%d bytes: %q", n, raw)
}
