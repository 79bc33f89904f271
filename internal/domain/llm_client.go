package domain

import "context"

// Message is one turn of a chat conversation sent to the LLM.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReasoningEffort controls how much internal deliberation the model spends.
type ReasoningEffort string

const (
	ReasoningLow    ReasoningEffort = "low"
	ReasoningMedium ReasoningEffort = "medium"
	ReasoningHigh   ReasoningEffort = "high"
)

// CompletionOptions tune a single chat completion call. ResponseFormat, when
// set, is a structured-output JSON schema descriptor passed through to the
// endpoint verbatim.
type CompletionOptions struct {
	Model           string
	ReasoningEffort ReasoningEffort
	Temperature     float64
	MaxTokens       int
	ResponseFormat  map[string]interface{}
}

// StreamDelta is one text increment of a streaming completion.
type StreamDelta struct {
	Text string
	Done bool
}

// LLMClient is the capability to run chat completions against a remote model.
// Transport failures are surfaced as *TransportError; the client never retries
// on its own, retry policy belongs to the caller.
type LLMClient interface {
	// Complete runs a non-streaming call and returns the full response text
	// with any inline thinking spans removed.
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
	// StreamComplete runs the same request with streaming enabled. The delta
	// channel is a finite, non-restartable sequence; the error channel carries
	// at most one mid-stream failure. No delta ever contains a partial
	// thinking tag.
	StreamComplete(ctx context.Context, messages []Message, opts CompletionOptions) (<-chan StreamDelta, <-chan error, error)
}
