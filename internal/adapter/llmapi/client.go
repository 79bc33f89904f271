package llmapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"podcast-orchestrator/internal/domain"
)

var thinkSpanPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model           string                 `json:"model"`
	Messages        []chatMessage          `json:"messages"`
	ReasoningEffort string                 `json:"reasoning_effort,omitempty"`
	Temperature     float64                `json:"temperature,omitempty"`
	MaxTokens       int                    `json:"max_tokens,omitempty"`
	Stream          bool                   `json:"stream,omitempty"`
	ResponseFormat  map[string]interface{} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// ChatClient talks to an OpenAI-compatible chat completion endpoint. It never
// retries; transport failures surface as *domain.TransportError and retry
// policy stays with the caller.
type ChatClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewChatClient constructs a client for the given endpoint. The shared rate
// limiter paces all completion calls of this process.
func NewChatClient(baseURL, apiKey string, httpClient *http.Client, limiter *rate.Limiter) *ChatClient {
	return &ChatClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  httpClient,
		limiter: limiter,
	}
}

var _ domain.LLMClient = (*ChatClient)(nil)

// Complete runs a non-streaming completion and returns the full text with any
// inline thinking spans removed.
func (c *ChatClient) Complete(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions) (string, error) {
	resp, err := c.send(ctx, messages, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	content := thinkSpanPattern.ReplaceAllString(parsed.Choices[0].Message.Content, "")
	return strings.TrimSpace(content), nil
}

// StreamComplete runs the same request with streaming enabled. Deltas pass
// through a think-span filter that buffers across chunk boundaries, so no
// emitted delta ever contains a partial open tag.
func (c *ChatClient) StreamComplete(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions) (<-chan domain.StreamDelta, <-chan error, error) {
	resp, err := c.send(ctx, messages, opts, true)
	if err != nil {
		return nil, nil, err
	}

	deltas := make(chan domain.StreamDelta, 8)
	errs := make(chan error, 1)

	go func() {
		defer close(deltas)
		defer close(errs)
		defer resp.Body.Close()

		filter := &thinkFilter{}
		emit := func(text string, done bool) bool {
			if text == "" && !done {
				return true
			}
			select {
			case <-ctx.Done():
				return false
			case deltas <- domain.StreamDelta{Text: text, Done: done}:
				return true
			}
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, ":") {
				continue
			}
			payload, ok := strings.CutPrefix(line, "data:")
			if !ok {
				continue
			}
			payload = strings.TrimSpace(payload)
			if payload == "[DONE]" {
				break
			}

			var chunk chatStreamChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				// A single garbled frame is not fatal to the stream.
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				if !emit(filter.Feed(text), false) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case errs <- fmt.Errorf("completion stream read failed: %w", err):
			default:
			}
			return
		}
		emit(filter.Flush(), true)
	}()

	return deltas, errs, nil
}

func (c *ChatClient) send(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions, stream bool) (*http.Response, error) {
	if c.APIKey == "" {
		return nil, &domain.NotConfiguredError{
			Service: "chat completion",
			Hint:    "set CHAT_API_KEY in the environment",
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body := chatRequest{
		Model:           opts.Model,
		Messages:        make([]chatMessage, 0, len(messages)),
		ReasoningEffort: string(opts.ReasoningEffort),
		Temperature:     opts.Temperature,
		MaxTokens:       opts.MaxTokens,
		Stream:          stream,
		ResponseFormat:  opts.ResponseFormat,
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, chatMessage(m))
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := c.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat endpoint call failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.TransportError{Status: resp.StatusCode, Body: string(b)}
	}
	return resp, nil
}
