package transcriber

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/matteoferrigno/podsight/internal/audio"
)

// Adapter interface for speech-to-text backends
type Adapter interface {
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}

// Config for the transcription service
type Config struct {
	Provider      string
	APIKey        string
	Model         string
	Language      string
	Timeout       time.Duration
	WindowSeconds int
}

// Service wraps an Adapter with the pipeline's fail-soft policy: every window
// gets a displayable transcript, falling back to a deterministic placeholder
// when the remote call fails, times out, or returns nothing.
type Service struct {
	adapter       Adapter
	timeout       time.Duration
	windowSeconds int
}

func NewService(config Config) (*Service, error) {
	var adapter Adapter

	switch config.Provider {
	case "openai":
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		adapter = NewOpenAIAdapter(config)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}

	return NewServiceWithAdapter(adapter, config.Timeout, config.WindowSeconds), nil
}

func NewServiceWithAdapter(adapter Adapter, timeout time.Duration, windowSeconds int) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		adapter:       adapter,
		timeout:       timeout,
		windowSeconds: windowSeconds,
	}
}

// Transcribe returns the transcript for a window and whether the fallback
// text was used. Errors are logged, never returned: a single bad segment must
// not stall the stream.
func (s *Service) Transcribe(ctx context.Context, w audio.Window) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.adapter.Transcribe(callCtx, w.PCM)
	if err != nil {
		log.Printf("transcriber: window %d failed, using fallback: %v", w.Index, err)
		return FallbackText(w.Index, s.windowSeconds), true
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Printf("transcriber: window %d produced empty transcript, using fallback", w.Index)
		return FallbackText(w.Index, s.windowSeconds), true
	}

	return text, false
}

// FallbackText describes a window by index and approximate playback time so
// the consumer timeline never shows a hole.
func FallbackText(index, windowSeconds int) string {
	start := index * windowSeconds
	end := start + windowSeconds
	return fmt.Sprintf("[Segment %d (%s-%s): transcription unavailable]",
		index, formatTime(start), formatTime(end))
}

func formatTime(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
