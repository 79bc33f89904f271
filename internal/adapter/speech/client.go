package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"podcast-orchestrator/internal/domain"
)

// voiceMap resolves the two canonical host identities to fixed upstream
// voice identifiers.
var voiceMap = map[string]string{
	domain.HostA: "nova",
	domain.HostB: "onyx",
}

// testModeSeconds is the fixed duration of a test-mode segment.
const testModeSeconds = 3

type speechRequest struct {
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	Instructions   string `json:"instructions,omitempty"`
	ResponseFormat string `json:"response_format"`
}

// Client converts script lines to WAV audio via an external text-to-speech
// endpoint. In test mode it bypasses the network entirely and produces
// deterministic silence so the pipeline can be exercised without cost.
type Client struct {
	BaseURL  string
	APIKey   string
	TestMode bool
	Client   *http.Client
}

// NewClient constructs a synthesizer client.
func NewClient(baseURL, apiKey string, testMode bool, httpClient *http.Client) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		TestMode: testMode,
		Client:   httpClient,
	}
}

var _ domain.SpeechClient = (*Client)(nil)

// Synthesize produces one single-channel PCM WAV buffer for the line.
func (c *Client) Synthesize(ctx context.Context, text, speaker, instruction string) ([]byte, error) {
	voice, ok := voiceMap[speaker]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSpeaker, speaker)
	}

	if c.TestMode {
		return domain.SilenceWav(domain.DefaultSynthesisFormat, testModeSeconds), nil
	}

	if c.APIKey == "" {
		return nil, &domain.NotConfiguredError{
			Service: "text-to-speech",
			Hint:    "set TTS_API_KEY in the environment",
		}
	}

	payload, err := json.Marshal(speechRequest{
		Input:          text,
		Voice:          voice,
		Instructions:   instruction,
		ResponseFormat: "wav",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech endpoint call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.SynthesisError{Status: resp.StatusCode, Body: string(b)}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %w", err)
	}
	return audio, nil
}
