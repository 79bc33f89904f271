package domain

import (
	"errors"
	"fmt"
)

// MalformedResponseKind classifies why an LLM payload failed to parse, so
// callers can give actionable feedback.
type MalformedResponseKind string

const (
	// MalformedUnterminatedString signals a truncated response, usually a
	// token-budget cutoff mid-string.
	MalformedUnterminatedString MalformedResponseKind = "unterminated_string"
	// MalformedStructural signals broken JSON structure that survived repair.
	MalformedStructural MalformedResponseKind = "structural"
)

// MalformedResponseError is returned when an LLM response cannot be parsed
// even after the repair pass.
type MalformedResponseError struct {
	Kind MalformedResponseKind
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed llm response (%s): %v", e.Kind, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// PlaceholderContentError is raised when a parsed outline contains unfilled
// template text instead of real content.
type PlaceholderContentError struct {
	Field  string
	Value  string
	Reason string
}

func (e *PlaceholderContentError) Error() string {
	return fmt.Sprintf("placeholder content in %s: %s (%q)", e.Field, e.Reason, e.Value)
}

// OutlineGenerationError is fatal: all outline attempts were exhausted.
type OutlineGenerationError struct {
	Attempts int
	Err      error
}

func (e *OutlineGenerationError) Error() string {
	return fmt.Sprintf("outline generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *OutlineGenerationError) Unwrap() error { return e.Err }

// CompilationError is fatal: the final script could not be produced or parsed.
type CompilationError struct {
	Err error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("script compilation failed: %v", e.Err)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// TransportError carries the HTTP status of a failed upstream call. Retry
// policy belongs to the caller, not the client that raises this.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

// SynthesisError reports a failed text-to-speech call.
type SynthesisError struct {
	Status int
	Body   string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed with %d: %s", e.Status, e.Body)
}

// NotConfiguredError distinguishes "not configured" from "call failed" for
// external services that need an API key.
type NotConfiguredError struct {
	Service string
	Hint    string
}

func (e *NotConfiguredError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s is not configured: %s", e.Service, e.Hint)
	}
	return fmt.Sprintf("%s is not configured", e.Service)
}

// IsNotConfigured reports whether err stems from a missing configuration.
func IsNotConfigured(err error) bool {
	var nc *NotConfiguredError
	return errors.As(err, &nc)
}

// ErrUnknownSpeaker is raised when a script line names a speaker outside the
// static voice mapping.
var ErrUnknownSpeaker = errors.New("unknown speaker")
