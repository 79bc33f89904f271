package domain

import "context"

// SegmentStore holds synthesized audio artifacts between synthesis and
// combination. Keys are opaque; implementations may also fetch http(s) URLs.
type SegmentStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Fetch(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// AudioSegment is one line of the compiled script queued for synthesis.
type AudioSegment struct {
	Speaker     string `json:"speaker"`
	Text        string `json:"text"`
	Instruction string `json:"instruction"`
}

// GeneratedSegment is a synthesized AudioSegment. Index is the line's position
// in the compiled script and must be preserved through combination.
type GeneratedSegment struct {
	Index    int          `json:"index"`
	Segment  AudioSegment `json:"segment"`
	Key      string       `json:"key"`
	Filename string       `json:"filename"`
	FileSize int          `json:"fileSize"`
}

// CombinedAudio is the immutable result of one combination call.
type CombinedAudio struct {
	Key                      string `json:"key"`
	Filename                 string `json:"filename"`
	Title                    string `json:"title"`
	FileSize                 int    `json:"fileSize"`
	EstimatedDurationSeconds int    `json:"estimatedDurationSeconds"`
	SegmentCount             int    `json:"segmentCount"`
}
