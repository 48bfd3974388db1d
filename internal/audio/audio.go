package audio

import "time"

// Decoded stream parameters. The decode subprocess is always asked for
// this exact format, so the rest of the pipeline can assume it.
const (
	SampleRate     = 16000
	Channels       = 1
	BytesPerSample = 2
)

// BytesPerWindow returns the PCM byte count for one window of the given
// duration in seconds.
func BytesPerWindow(windowSeconds int) int {
	return SampleRate * Channels * BytesPerSample * windowSeconds
}

// Frame is a chunk of decoded PCM as it arrived from the decoder. Chunk
// boundaries carry no meaning; the windower re-slices them.
type Frame struct {
	Data      []byte
	Timestamp time.Time
}

// Window is a fixed-duration slice of the decoded stream. Immutable once
// emitted; the final window of a stream may be shorter than the rest.
type Window struct {
	Index      int
	PCM        []byte
	CapturedAt time.Time
	RMS        float64
}

// StartSeconds returns the playback offset of the window start.
func (w Window) StartSeconds(windowSeconds int) int {
	return w.Index * windowSeconds
}
