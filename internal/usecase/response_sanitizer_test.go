package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-orchestrator/internal/domain"
	"podcast-orchestrator/internal/usecase"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"plain json untouched",
			`{"a":1}`,
			`{"a":1}`,
		},
		{
			"think span stripped",
			"<think>internal reasoning\nmore reasoning</think>{\"a\":1}",
			`{"a":1}`,
		},
		{
			"code fence stripped",
			"```json\n{\"a\":1}\n```",
			`{"a":1}`,
		},
		{
			"prose narrowed to braces",
			`Here is the outline you asked for: {"a":1} hope it helps!`,
			`{"a":1}`,
		},
		{
			"no braces left as-is",
			"just text",
			"just text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.Sanitize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, usecase.Sanitize(got), "must be idempotent")
		})
	}
}

func TestRepairCommonIssues(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"trailing comma in object",
			`{"a": 1,}`,
			`{"a": 1}`,
		},
		{
			"trailing comma in array",
			`{"a": [1, 2,]}`,
			`{"a": [1, 2]}`,
		},
		{
			"single quoted key",
			`{'title': "x"}`,
			`{"title": "x"}`,
		},
		{
			"bare key",
			`{title: "x", tone: "warm"}`,
			`{"title": "x", "tone": "warm"}`,
		},
		{
			"smart quotes normalized",
			`{“title”: “x”}`,
			`{"title": "x"}`,
		},
		{
			"valid json untouched",
			`{"title": "x", "n": 3}`,
			`{"title": "x", "n": 3}`,
		},
		{
			"valid json with commas and colons inside strings",
			`{"a": "intro, next: the outline", "b": "x, ]"}`,
			`{"a": "intro, next: the outline", "b": "x, ]"}`,
		},
		{
			"valid json with a quote-adjacent comma inside a string",
			`{"note": "ends with a comma," ,"n": 1}`,
			`{"note": "ends with a comma," ,"n": 1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.RepairCommonIssues(tt.in))
		})
	}
}

func TestParseStructured_RepairsBeforeFailing(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	got, err := usecase.ParseStructured[payload](`{'title': "Deep Sea Mining",}`)
	require.NoError(t, err)
	assert.Equal(t, "Deep Sea Mining", got.Title)
}

func TestParseStructured_ClassifiesUnterminatedString(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	_, err := usecase.ParseStructured[payload](`{"title": "never closed`)
	require.Error(t, err)

	var malformed *domain.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, domain.MalformedUnterminatedString, malformed.Kind)
}

func TestParseStructured_ClassifiesStructural(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	_, err := usecase.ParseStructured[payload](`{"title": }`)
	require.Error(t, err)

	var malformed *domain.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, domain.MalformedStructural, malformed.Kind)
}

func TestParseOutline_ValidationToggle(t *testing.T) {
	raw := `{
  "overview": {"title": "string", "description": "A tour of reef ecology", "totalDuration": "12 minutes", "targetAudience": "curious generalists", "tone": "conversational"},
  "sections": [],
  "finalThoughts": {"title": "Closing reflections", "description": "Wrapping the episode", "duration": "2 minutes", "keyTakeaways": []}
}`

	outline, err := usecase.ParseOutline(raw, false)
	require.NoError(t, err)
	assert.Equal(t, "string", outline.Overview.Title)

	_, err = usecase.ParseOutline(raw, true)
	var placeholder *domain.PlaceholderContentError
	require.ErrorAs(t, err, &placeholder)
	assert.Equal(t, "overview.title", placeholder.Field)
}
