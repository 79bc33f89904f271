package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// WavHeaderSize is the canonical RIFF/WAVE header this package reads and
// writes. Extra chunks (metadata, fact) are ignored; only the declared data
// payload is carried forward.
const WavHeaderSize = 44

// WavFormat is the PCM format triple every buffer in a combination must share.
type WavFormat struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
}

// ByteRate returns bytes of payload per second of audio.
func (f WavFormat) ByteRate() uint32 {
	return f.SampleRate * uint32(f.Channels) * uint32(f.BitsPerSample) / 8
}

var (
	// ErrEmptyWav is returned when a buffer is too short to hold a header.
	ErrEmptyWav = errors.New("wav buffer shorter than canonical header")
	// ErrNotWav is returned when the RIFF/WAVE magic bytes are missing.
	ErrNotWav = errors.New("buffer is not a RIFF/WAVE file")
	// ErrTruncatedWav is returned when the declared data size exceeds the buffer.
	ErrTruncatedWav = errors.New("wav data chunk truncated")
	// ErrNoBuffers is returned when a combination is requested with no input.
	ErrNoBuffers = errors.New("no wav buffers to combine")
)

// WavFormatMismatchError reports an input whose PCM format differs from the
// first buffer's. Combination rejects mismatches rather than emitting audio
// that would play corrupted.
type WavFormatMismatchError struct {
	Index    int
	Expected WavFormat
	Actual   WavFormat
}

func (e *WavFormatMismatchError) Error() string {
	return fmt.Sprintf("wav buffer %d format %+v does not match first buffer %+v",
		e.Index, e.Actual, e.Expected)
}

// ParseWav reads the canonical 44-byte header and returns the PCM format plus
// exactly the declared data payload. Header bytes beyond the canonical 44 and
// trailing chunks after the payload are ignored.
func ParseWav(b []byte) (WavFormat, []byte, error) {
	if len(b) < WavHeaderSize {
		return WavFormat{}, nil, ErrEmptyWav
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return WavFormat{}, nil, ErrNotWav
	}
	format := WavFormat{
		Channels:      binary.LittleEndian.Uint16(b[22:24]),
		SampleRate:    binary.LittleEndian.Uint32(b[24:28]),
		BitsPerSample: binary.LittleEndian.Uint16(b[34:36]),
	}
	dataSize := binary.LittleEndian.Uint32(b[40:44])
	if uint64(WavHeaderSize)+uint64(dataSize) > uint64(len(b)) {
		return WavFormat{}, nil, fmt.Errorf("%w: declared %d bytes, have %d",
			ErrTruncatedWav, dataSize, len(b)-WavHeaderSize)
	}
	return format, b[WavHeaderSize : WavHeaderSize+int(dataSize)], nil
}

// EncodeWavHeader synthesizes a canonical 44-byte PCM header for a payload of
// dataSize bytes. RIFF size is total file length minus 8.
func EncodeWavHeader(format WavFormat, dataSize uint32) []byte {
	h := make([]byte, WavHeaderSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 36+dataSize)
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], format.Channels)
	binary.LittleEndian.PutUint32(h[24:28], format.SampleRate)
	binary.LittleEndian.PutUint32(h[28:32], format.ByteRate())
	binary.LittleEndian.PutUint16(h[32:34], format.Channels*format.BitsPerSample/8)
	binary.LittleEndian.PutUint16(h[34:36], format.BitsPerSample)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], dataSize)
	return h
}

// CombinedWav is the result of concatenating segment payloads.
type CombinedWav struct {
	Bytes           []byte
	Format          WavFormat
	SegmentCount    int
	DurationSeconds int
}

// CombineWav concatenates the PCM payloads of the given WAV buffers in input
// order under one fresh header. All buffers must share the first buffer's
// format. The duration estimate is payload/byte-rate rounded to the nearest
// second, an approximation rather than a decode-accurate value.
func CombineWav(buffers [][]byte) (*CombinedWav, error) {
	if len(buffers) == 0 {
		return nil, ErrNoBuffers
	}

	var format WavFormat
	payloads := make([][]byte, 0, len(buffers))
	total := 0
	for i, buf := range buffers {
		f, payload, err := ParseWav(buf)
		if err != nil {
			return nil, fmt.Errorf("wav buffer %d: %w", i, err)
		}
		if i == 0 {
			format = f
		} else if f != format {
			return nil, &WavFormatMismatchError{Index: i, Expected: format, Actual: f}
		}
		payloads = append(payloads, payload)
		total += len(payload)
	}

	out := make([]byte, 0, WavHeaderSize+total)
	out = append(out, EncodeWavHeader(format, uint32(total))...)
	for _, p := range payloads {
		out = append(out, p...)
	}

	duration := 0
	if rate := format.ByteRate(); rate > 0 {
		duration = int(math.Round(float64(total) / float64(rate)))
	}

	return &CombinedWav{
		Bytes:           out,
		Format:          format,
		SegmentCount:    len(buffers),
		DurationSeconds: duration,
	}, nil
}

// SilenceWav deterministically generates seconds of zero-filled PCM audio in
// the given format. Used by the test-mode synthesizer so the pipeline can be
// exercised without external cost.
func SilenceWav(format WavFormat, seconds int) []byte {
	dataSize := format.ByteRate() * uint32(seconds)
	out := make([]byte, WavHeaderSize+int(dataSize))
	copy(out, EncodeWavHeader(format, dataSize))
	return out
}

// DefaultSynthesisFormat is the format the synthesizer produces: 44.1kHz
// mono 16-bit PCM.
var DefaultSynthesisFormat = WavFormat{SampleRate: 44100, Channels: 1, BitsPerSample: 16}
