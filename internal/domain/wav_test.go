package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-orchestrator/internal/domain"
)

func TestParseWav_RoundTrip(t *testing.T) {
	format := domain.WavFormat{SampleRate: 22050, Channels: 2, BitsPerSample: 16}
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	buf := append(domain.EncodeWavHeader(format, uint32(len(payload))), payload...)

	parsed, data, err := domain.ParseWav(buf)
	require.NoError(t, err)
	assert.Equal(t, format, parsed)
	assert.Equal(t, payload, data)
}

func TestParseWav_IgnoresTrailingBytes(t *testing.T) {
	format := domain.DefaultSynthesisFormat
	payload := []byte{9, 9, 9, 9}

	buf := append(domain.EncodeWavHeader(format, uint32(len(payload))), payload...)
	buf = append(buf, []byte("LIST0000junk")...)

	_, data, err := domain.ParseWav(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestParseWav_Errors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"empty", nil, domain.ErrEmptyWav},
		{"too short", make([]byte, 10), domain.ErrEmptyWav},
		{"wrong magic", make([]byte, 44), domain.ErrNotWav},
		{
			"truncated data",
			domain.EncodeWavHeader(domain.DefaultSynthesisFormat, 1000),
			domain.ErrTruncatedWav,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := domain.ParseWav(tt.buf)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCombineWav_ConcatenatesPayloads(t *testing.T) {
	format := domain.DefaultSynthesisFormat
	a := append(domain.EncodeWavHeader(format, 4), []byte{1, 2, 3, 4}...)
	b := append(domain.EncodeWavHeader(format, 2), []byte{5, 6}...)

	combined, err := domain.CombineWav([][]byte{a, b})
	require.NoError(t, err)

	assert.Equal(t, 2, combined.SegmentCount)
	assert.Equal(t, format, combined.Format)
	assert.Len(t, combined.Bytes, domain.WavHeaderSize+6)

	parsed, payload, err := domain.ParseWav(combined.Bytes)
	require.NoError(t, err)
	assert.Equal(t, format, parsed)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, payload)
}

func TestCombineWav_SingleSegment(t *testing.T) {
	buf := domain.SilenceWav(domain.DefaultSynthesisFormat, 1)

	combined, err := domain.CombineWav([][]byte{buf})
	require.NoError(t, err)

	assert.Equal(t, 1, combined.SegmentCount)
	assert.Equal(t, buf, combined.Bytes)
}

func TestCombineWav_DurationSumsSegments(t *testing.T) {
	format := domain.DefaultSynthesisFormat
	buffers := [][]byte{
		domain.SilenceWav(format, 3),
		domain.SilenceWav(format, 3),
	}

	combined, err := domain.CombineWav(buffers)
	require.NoError(t, err)

	assert.Equal(t, 6, combined.DurationSeconds)
	assert.Len(t, combined.Bytes, domain.WavHeaderSize+2*3*44100*2)
}

func TestCombineWav_FormatMismatchRejected(t *testing.T) {
	a := domain.SilenceWav(domain.WavFormat{SampleRate: 44100, Channels: 1, BitsPerSample: 16}, 1)
	b := domain.SilenceWav(domain.WavFormat{SampleRate: 22050, Channels: 1, BitsPerSample: 16}, 1)

	_, err := domain.CombineWav([][]byte{a, b})
	require.Error(t, err)

	var mismatch *domain.WavFormatMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 1, mismatch.Index)
	assert.Equal(t, uint32(44100), mismatch.Expected.SampleRate)
	assert.Equal(t, uint32(22050), mismatch.Actual.SampleRate)
}

func TestCombineWav_NoBuffers(t *testing.T) {
	_, err := domain.CombineWav(nil)
	assert.ErrorIs(t, err, domain.ErrNoBuffers)
}

func TestCombineWav_CorruptSegmentNamed(t *testing.T) {
	good := domain.SilenceWav(domain.DefaultSynthesisFormat, 1)
	bad := []byte("not a wav file at all, just text padding out 44+")

	_, err := domain.CombineWav([][]byte{good, bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotWav)
	assert.Contains(t, err.Error(), "wav buffer 1")
}

func TestSilenceWav_SizeMatchesFormat(t *testing.T) {
	buf := domain.SilenceWav(domain.DefaultSynthesisFormat, 3)

	format, payload, err := domain.ParseWav(buf)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSynthesisFormat, format)
	assert.Len(t, payload, 3*44100*2)
	for _, b := range payload[:100] {
		assert.Zero(t, b)
	}
}
