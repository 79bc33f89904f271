package domain

import "context"

// SpeechClient converts one (text, speaker, style-instruction) triple into a
// single-channel PCM WAV buffer. An unmapped speaker raises ErrUnknownSpeaker;
// an upstream failure raises *SynthesisError.
type SpeechClient interface {
	Synthesize(ctx context.Context, text, speaker, instruction string) ([]byte, error)
}
