package audio

import (
	"math"
	"time"
)

// Windower accumulates arbitrarily-chunked PCM bytes and slices them into
// fixed-size windows with monotonic indices starting at 0. It is push-driven
// and not safe for concurrent use; the caller owns the feed goroutine.
type Windower struct {
	bytesPerWindow int
	buf            []byte
	nextIndex      int
}

func NewWindower(windowSeconds int) *Windower {
	return &Windower{
		bytesPerWindow: BytesPerWindow(windowSeconds),
	}
}

// Push appends a chunk and returns every full window that became available.
// Any remainder stays buffered for the next call. Windows own their bytes;
// the caller may reuse chunk.
func (w *Windower) Push(chunk []byte) []Window {
	w.buf = append(w.buf, chunk...)

	var out []Window
	for len(w.buf) >= w.bytesPerWindow {
		out = append(out, w.emit(w.bytesPerWindow))
	}
	return out
}

// Flush emits the buffered remainder as a final, short window if it holds at
// least half a window's worth of audio. Smaller remainders are discarded.
func (w *Windower) Flush() (Window, bool) {
	if len(w.buf) < w.bytesPerWindow/2 {
		w.buf = nil
		return Window{}, false
	}
	return w.emit(len(w.buf)), true
}

// Pending returns the number of buffered bytes not yet emitted.
func (w *Windower) Pending() int {
	return len(w.buf)
}

func (w *Windower) emit(n int) Window {
	pcm := make([]byte, n)
	copy(pcm, w.buf[:n])
	w.buf = w.buf[n:]

	win := Window{
		Index:      w.nextIndex,
		PCM:        pcm,
		CapturedAt: time.Now(),
		RMS:        pcmRMS(pcm),
	}
	w.nextIndex++
	return win
}

// pcmRMS computes the normalized root-mean-square level of s16le samples.
// Used to flag near-silent windows; a trailing odd byte is ignored.
func pcmRMS(pcm []byte) float64 {
	samples := len(pcm) / BytesPerSample
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < samples; i++ {
		s := int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(samples))
}
