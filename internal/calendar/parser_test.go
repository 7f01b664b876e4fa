package calendar

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot-api/internal/apperrors"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced with tag", raw: "Here you go:\n```json\n{\"a\":1}\n```\nEnjoy!", want: `{"a":1}`},
		{name: "fenced without tag", raw: "```\n{\"a\":{\"b\":2}}\n```", want: `{"a":{"b":2}}`},
		{name: "fence on one line", raw: "```{\"a\":1}```", want: `{"a":1}`},
		{name: "prose around", raw: "Sure! {\"a\":1} Hope it helps.", want: `{"a":1}`},
		{name: "unterminated fence", raw: "```json\n{\"a\":1}", want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseObject_RoundTrip(t *testing.T) {
	original := map[string]any{
		"items": []any{
			map[string]any{"day": float64(1), "hashtags": []any{"#a", "#b"}, "theme": "Education"},
		},
		"note": "braces } inside { strings",
	}
	b, err := json.MarshalIndent(original, "", "  ")
	require.NoError(t, err)

	got, err := ParseObject("```json\n" + string(b) + "\n```")
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestParseObject_Malformed(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{not json}", "```json\n{\"a\": }\n```"} {
		_, err := ParseObject(raw)
		var malformed *apperrors.MalformedResponseError
		assert.True(t, errors.As(err, &malformed), "input %q", raw)
	}
}

func TestParseCalendar(t *testing.T) {
	raw := "```json\n" + `{"items":[
		{"day":1,"date":"2026-02-01","postType":"photo","theme":"Light Engagement","captionShort":"Hi","captionLong":"Hello there","hashtags":["#a"],"cta":"Visit","canvaPrompt":"warm","suggestedProduct":"Croissant"},
		{"day":2,"date":"2026-02-02","postType":"reel","theme":"Education","captionShort":"Tip","captionLong":"A tip","hashtags":[],"cta":"Save","canvaPrompt":"clean"}
	]}` + "\n```"

	days, err := ParseCalendar(raw)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "Croissant", days[0].SuggestedProduct)
	assert.Equal(t, "reel", days[1].PostType)
	assert.Empty(t, days[1].SuggestedProduct)
}

func TestParseCalendar_InvalidShape(t *testing.T) {
	for _, raw := range []string{`{"days":[]}`, `{"items":{}}`, `{"items":"x"}`, `{"items":null}`} {
		_, err := ParseCalendar(raw)
		var shape *apperrors.InvalidShapeError
		require.True(t, errors.As(err, &shape), "input %q", raw)
		assert.Equal(t, "items", shape.Field)
	}
}

func TestParseCalendar_WrongFieldTypeIsMalformed(t *testing.T) {
	_, err := ParseCalendar(`{"items":[{"day":"one"}]}`)
	var malformed *apperrors.MalformedResponseError
	assert.True(t, errors.As(err, &malformed))
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay(`Here: {"day":3,"captionLong":"Fresh","hashtags":["#x"],"cta":"Go"}`)
	require.NoError(t, err)
	assert.Equal(t, 3, day.Day)
	assert.Equal(t, "Fresh", day.CaptionLong)

	_, err = ParseDay(`{"day":3}`)
	var shape *apperrors.InvalidShapeError
	assert.True(t, errors.As(err, &shape))
}
