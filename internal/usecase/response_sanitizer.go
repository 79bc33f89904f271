package usecase

import (
	"encoding/json"
	"regexp"
	"strings"

	"podcast-orchestrator/internal/domain"
)

var (
	thinkSpanPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFencePattern = regexp.MustCompile("```[a-zA-Z]*")

	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	singleQuoteKeyPattern = regexp.MustCompile(`'([A-Za-z_][A-Za-z0-9_]*)'\s*:`)
	bareKeyPattern        = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)

	smartQuoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
)

// Sanitize strips reasoning-model scratch tags and markdown fencing from raw
// LLM text and narrows it to the JSON payload between the first '{' and the
// last '}'. It never fails; worst case the returned text will fail downstream
// parsing. Idempotent.
func Sanitize(raw string) string {
	s := thinkSpanPattern.ReplaceAllString(raw, "")
	s = codeFencePattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first != -1 && last != -1 && first < last {
		s = s[first : last+1]
	}
	return s
}

// RepairCommonIssues applies best-effort regex fixes for malformations models
// commonly produce: trailing commas, single-quoted or bare object keys, and
// smart quotes. Text that already parses is returned untouched: the key
// heuristics are textual and would otherwise rewrite string values that
// happen to contain commas or colons.
func RepairCommonIssues(text string) string {
	if json.Valid([]byte(text)) {
		return text
	}

	s := smartQuoteReplacer.Replace(text)
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	s = singleQuoteKeyPattern.ReplaceAllString(s, `"$1":`)
	s = bareKeyPattern.ReplaceAllString(s, `$1"$2"$3`)
	return s
}

// ParseStructured sanitizes raw and unmarshals it into T. On failure it runs
// the repair pass and retries once; a second failure is returned as a
// *domain.MalformedResponseError classified so callers can give actionable
// feedback.
func ParseStructured[T any](raw string) (*T, error) {
	s := Sanitize(raw)

	var v T
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return &v, nil
	}

	repaired := RepairCommonIssues(s)
	var v2 T
	if err := json.Unmarshal([]byte(repaired), &v2); err != nil {
		return nil, &domain.MalformedResponseError{
			Kind: classifyParseError(err),
			Err:  err,
		}
	}
	return &v2, nil
}

func classifyParseError(err error) domain.MalformedResponseKind {
	msg := err.Error()
	if strings.Contains(msg, "unexpected end of JSON input") ||
		strings.Contains(msg, "in string literal") {
		return domain.MalformedUnterminatedString
	}
	return domain.MalformedStructural
}

// ParseOutline parses raw into a PodcastOutline. When validate is set, the
// outline is additionally screened for placeholder content; a violation is
// surfaced as *domain.PlaceholderContentError, distinct from parse failures.
func ParseOutline(raw string, validate bool) (*domain.PodcastOutline, error) {
	outline, err := ParseStructured[domain.PodcastOutline](raw)
	if err != nil {
		return nil, err
	}
	if validate {
		if err := NewOutlineValidator().Validate(outline); err != nil {
			return nil, err
		}
	}
	return outline, nil
}

// ParseCompiledScript parses raw into the final two-host script shape.
func ParseCompiledScript(raw string) (*domain.CompiledScript, error) {
	return ParseStructured[domain.CompiledScript](raw)
}
