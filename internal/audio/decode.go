package audio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DecoderConfig controls the ffmpeg decode subprocess.
type DecoderConfig struct {
	BufferSize        int
	ChannelBufferSize int
	FFmpegPath        string
}

func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		BufferSize:        4096,
		ChannelBufferSize: 20,
		FFmpegPath:        "ffmpeg",
	}
}

// Decoder fetches a remote audio URL and transcodes it to 16 kHz mono s16le
// PCM via an ffmpeg subprocess, streaming stdout as frames. One decode per
// Decoder at a time.
type Decoder struct {
	config   DecoderConfig
	decoding atomic.Bool

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

func NewDecoder(config DecoderConfig) *Decoder {
	return &Decoder{config: config}
}

func NewDefaultDecoder() *Decoder { return NewDecoder(DefaultDecoderConfig()) }

// Start launches the decode subprocess for url. The frame channel closes at
// end of stream; an abnormal subprocess exit is reported on the error channel.
func (d *Decoder) Start(ctx context.Context, url string) (<-chan Frame, <-chan error, error) {
	if d.decoding.Load() {
		return nil, nil, fmt.Errorf("already decoding")
	}
	if url == "" {
		return nil, nil, fmt.Errorf("empty source URL")
	}
	if err := d.validateConfig(); err != nil {
		return nil, nil, err
	}
	if err := CheckFFmpegAvailable(ctx, d.config.FFmpegPath); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg not available: %w", err)
	}

	decodeCtx, cancel := context.WithCancel(ctx)

	frameCh := make(chan Frame, d.config.ChannelBufferSize)
	errCh := make(chan error, 1)

	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	d.decoding.Store(true)
	go d.decodeLoop(decodeCtx, url, frameCh, errCh)

	return frameCh, errCh, nil
}

func (d *Decoder) Stop() error {
	if !d.decoding.Load() {
		return nil
	}

	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

func (d *Decoder) decodeLoop(ctx context.Context, url string, frameCh chan<- Frame, errCh chan<- error) {
	defer func() {
		close(frameCh)
		close(errCh)
		d.decoding.Store(false)

		// Ensure the child process is reaped.
		d.mu.Lock()
		if d.cmd != nil {
			_ = d.cmd.Wait()
			d.cmd = nil
		}
		d.cancel = nil
		d.mu.Unlock()
	}()

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, d.buildFFmpegArgs(url)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.emitErr(errCh, fmt.Errorf("create stdout pipe: %w", err))
		d.requestCancel()
		return
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		d.emitErr(errCh, fmt.Errorf("create stderr pipe: %w", err))
		d.requestCancel()
		return
	}

	d.mu.Lock()
	d.cmd = cmd
	d.mu.Unlock()

	if err := cmd.Start(); err != nil {
		d.emitErr(errCh, fmt.Errorf("start ffmpeg: %w", err))
		d.requestCancel()
		return
	}

	// Keep the last few stderr lines for error reporting; ffmpeg writes its
	// failure reason there.
	var stderrMu sync.Mutex
	var stderrTail []string
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			stderrMu.Lock()
			stderrTail = append(stderrTail, scanner.Text())
			if len(stderrTail) > 5 {
				stderrTail = stderrTail[1:]
			}
			stderrMu.Unlock()
		}
	}()

	buffer := make([]byte, d.config.BufferSize)
	var totalBytes int

	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			frameData := make([]byte, n)
			copy(frameData, buffer[:n])
			totalBytes += n

			// Never drop audio: enrichment latency is absorbed downstream by
			// the window queue, so a blocking send here stays short-lived.
			select {
			case frameCh <- Frame{Data: frameData, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				if waitErr := cmd.Wait(); waitErr != nil && ctx.Err() == nil {
					stderrMu.Lock()
					tail := strings.Join(stderrTail, " | ")
					stderrMu.Unlock()
					d.emitErr(errCh, fmt.Errorf("ffmpeg exited: %w (%s)", waitErr, tail))
				} else {
					log.Printf("Decoder: stream ended after %d bytes", totalBytes)
				}
				d.mu.Lock()
				d.cmd = nil
				d.mu.Unlock()
				return
			}
			d.emitErr(errCh, fmt.Errorf("read audio: %w", readErr))
			d.requestCancel()
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (d *Decoder) requestCancel() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (d *Decoder) emitErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
		// Best-effort; avoid blocking
	}
	log.Printf("Decoder error: %v", err)
}

func (d *Decoder) buildFFmpegArgs(url string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", url,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"pipe:1",
	}
}

func (d *Decoder) validateConfig() error {
	if d.config.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", d.config.BufferSize)
	}
	if d.config.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid ChannelBufferSize: %d", d.config.ChannelBufferSize)
	}
	if d.config.FFmpegPath == "" {
		return fmt.Errorf("invalid FFmpegPath: empty")
	}
	return nil
}

func CheckFFmpegAvailable(ctx context.Context, path string) error {
	if path == "" {
		path = "ffmpeg"
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("%s not found: %w (install ffmpeg)", path, err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(checkCtx, path, "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg not runnable: %w", err)
	}
	return nil
}
