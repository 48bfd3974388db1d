// Package pipeline coordinates the per-window enrichment flow: windows are
// transcribed, enriched with generated context, and matched to encyclopedia
// references, then emitted to the consumer strictly in index order.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/matteoferrigno/podsight/internal/audio"
	"github.com/matteoferrigno/podsight/internal/enricher"
	"github.com/matteoferrigno/podsight/internal/reference"
)

// AudioSource produces decoded PCM frames for a stream URL. The frame channel
// must close at end of stream and when ctx is cancelled; an abnormal decode
// exit must be queued on the error channel before the frame channel closes.
type AudioSource interface {
	Start(ctx context.Context, url string) (<-chan audio.Frame, <-chan error, error)
	Stop() error
}

// Transcriber converts a window to displayable text. The bool reports whether
// fallback text was substituted.
type Transcriber interface {
	Transcribe(ctx context.Context, w audio.Window) (string, bool)
}

// ContextGenerator produces the context block and rollup summaries.
type ContextGenerator interface {
	Enrich(ctx context.Context, transcript string) enricher.Result
	Summarize(ctx context.Context, combinedTranscript string) (string, error)
}

// ReferenceResolver maps a topic to an encyclopedia reference or nil.
type ReferenceResolver interface {
	Resolve(ctx context.Context, topic string) *reference.Reference
}

// Options collapse the historical pipeline variants into one configurable
// coordinator.
type Options struct {
	WindowSeconds   int
	PreliminaryEmit bool
	SummaryEvery    int
	TopTopics       int
	WindowQueueSize int
	EventBufferSize int
}

func (o Options) withDefaults() Options {
	if o.WindowSeconds <= 0 {
		o.WindowSeconds = 15
	}
	if o.SummaryEvery <= 0 {
		o.SummaryEvery = 4
	}
	if o.TopTopics <= 0 {
		o.TopTopics = 5
	}
	if o.WindowQueueSize <= 0 {
		o.WindowQueueSize = 16
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = 64
	}
	return o
}

// Coordinator owns all per-stream state: the windower, the seen-topics set
// inside the resolver, the topic ranking, and the emission sequence. One
// Coordinator serves one stream; create a fresh one per session.
type Coordinator struct {
	opts        Options
	source      AudioSource
	transcriber Transcriber
	generator   ContextGenerator
	resolver    ReferenceResolver

	events chan Event
	topics *TopicTracker

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool

	done chan struct{}
}

func New(opts Options, source AudioSource, transcriber Transcriber, generator ContextGenerator, resolver ReferenceResolver) *Coordinator {
	opts = opts.withDefaults()
	return &Coordinator{
		opts:        opts,
		source:      source,
		transcriber: transcriber,
		generator:   generator,
		resolver:    resolver,
		events:      make(chan Event, opts.EventBufferSize),
		topics:      NewTopicTracker(opts.TopTopics),
		done:        make(chan struct{}),
	}
}

// Events returns the ordered output stream. The channel is closed after the
// terminal status event.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Stop cancels the in-flight stream. In-progress remote calls are abandoned
// and the decode subprocess is terminated.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once the terminal status has been emitted.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Run processes the stream at url until end of stream, a fatal error, or
// Stop. It blocks; callers wanting asynchrony run it in a goroutine. A
// Coordinator runs at most once.
func (c *Coordinator) Run(ctx context.Context, url string) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("coordinator already ran")
	}
	c.started = true
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	defer cancel()
	defer close(c.done)
	defer close(c.events)

	c.emit(runCtx, statusEvent(PhaseStarting, "Starting stream processing"))

	frames, decodeErrs, err := c.source.Start(runCtx, url)
	if err != nil {
		c.emit(runCtx, statusEvent(PhaseError, fmt.Sprintf("Failed to start audio decode: %v", err)))
		return fmt.Errorf("start audio source: %w", err)
	}
	defer c.source.Stop()

	c.emit(runCtx, statusEvent(PhaseDecoding, "Decoding audio"))

	windows := make(chan audio.Window, c.opts.WindowQueueSize)

	// Byte reception must not stall behind enrichment, so windowing runs in
	// its own goroutine feeding a bounded queue.
	var feedErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(windows)
		feedErr = c.feed(runCtx, frames, decodeErrs, windows)
	}()

	runErr := c.process(runCtx, windows)

	wg.Wait()

	switch {
	case runCtx.Err() != nil:
		c.emitTerminal(statusEvent(PhaseStopped, "Stream stopped"))
		return runCtx.Err()
	case feedErr != nil:
		c.emit(runCtx, statusEvent(PhaseError, fmt.Sprintf("Audio decode failed: %v", feedErr)))
		return feedErr
	case runErr != nil:
		c.emit(runCtx, statusEvent(PhaseError, fmt.Sprintf("Processing failed: %v", runErr)))
		return runErr
	default:
		c.emit(runCtx, statusEvent(PhaseComplete, "Stream processing complete"))
		return nil
	}
}

// feed slices incoming frames into windows and queues them. On clean end of
// stream the remainder is flushed if significant; after a decode failure the
// remainder is truncated mid-stream, so no partial window is synthesized.
func (c *Coordinator) feed(ctx context.Context, frames <-chan audio.Frame, decodeErrs <-chan error, windows chan<- audio.Window) error {
	windower := audio.NewWindower(c.opts.WindowSeconds)

	for frame := range frames {
		for _, w := range windower.Push(frame.Data) {
			select {
			case windows <- w:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	select {
	case derr, ok := <-decodeErrs:
		if ok && derr != nil {
			return derr
		}
	default:
	}

	if w, ok := windower.Flush(); ok {
		select {
		case windows <- w:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// process drains the window queue one window at a time. Serial execution
// trivially preserves index-ordered emission.
func (c *Coordinator) process(ctx context.Context, windows <-chan audio.Window) error {
	finalized := 0
	recent := make([]string, 0, c.opts.SummaryEvery)

	for {
		select {
		case w, ok := <-windows:
			if !ok {
				return nil
			}
			if w.Index == 0 {
				c.emit(ctx, statusEvent(PhaseProcessing, "Processing segments"))
			}
			seg := c.processWindow(ctx, w)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.emit(ctx, segmentEvent(seg))

			finalized++
			c.topics.Record(seg.MainTopic)

			recent = append(recent, seg.Transcript)
			if len(recent) > c.opts.SummaryEvery {
				recent = recent[1:]
			}
			if finalized%c.opts.SummaryEvery == 0 {
				c.rollup(ctx, finalized, recent)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// processWindow runs one window through all stages. Every stage recovers its
// own failures, so a finalized segment always comes out.
func (c *Coordinator) processWindow(ctx context.Context, w audio.Window) Segment {
	start := time.Now()
	log.Printf("pipeline: window %d received (%d bytes)", w.Index, len(w.PCM))

	transcript, isFallback := c.transcriber.Transcribe(ctx, w)

	if c.opts.PreliminaryEmit && !isFallback && transcript != "" {
		c.emit(ctx, segmentEvent(Segment{
			Index:         w.Index,
			Transcript:    transcript,
			IsPreliminary: true,
			StartSeconds:  w.StartSeconds(c.opts.WindowSeconds),
			Timestamp:     time.Now(),
		}))
	}

	var contextText, mainTopic string
	var ref *reference.Reference

	if isFallback {
		// Nothing worth enriching; a placeholder transcript would only
		// produce placeholder context.
		contextText = enricher.ErrorContext
	} else {
		result := c.generator.Enrich(ctx, transcript)
		contextText = result.Context
		mainTopic = result.MainTopic
		if !result.Failed {
			ref = c.resolver.Resolve(ctx, mainTopic)
		}
	}

	log.Printf("pipeline: window %d finalized in %v (topic %q)", w.Index, time.Since(start), mainTopic)

	return Segment{
		Index:        w.Index,
		Transcript:   transcript,
		Context:      contextText,
		MainTopic:    mainTopic,
		Wikipedia:    ref,
		IsFallback:   isFallback,
		StartSeconds: w.StartSeconds(c.opts.WindowSeconds),
		Timestamp:    time.Now(),
	}
}

// rollup generates a summary over the most recent transcripts and pushes it
// with the current topic ranking.
func (c *Coordinator) rollup(ctx context.Context, finalized int, recent []string) {
	combined := strings.Join(recent, "\n\n")
	summary, err := c.generator.Summarize(ctx, combined)
	if err != nil {
		log.Printf("pipeline: rollup after %d segments failed: %v", finalized, err)
		c.emit(ctx, logEvent(fmt.Sprintf("Summary generation failed after %d segments", finalized)))
		return
	}

	c.emit(ctx, summaryEvent(Summary{
		AfterSegments: finalized,
		Text:          summary,
		TopTopics:     c.topics.Top(),
	}))
}

func (c *Coordinator) emit(ctx context.Context, e Event) {
	select {
	case c.events <- e:
	case <-ctx.Done():
	}
}

// emitTerminal delivers the final status even when the run context is
// already cancelled, dropping it only if the consumer stopped draining.
func (c *Coordinator) emitTerminal(e Event) {
	select {
	case c.events <- e:
	default:
		log.Printf("pipeline: consumer gone, dropping terminal event")
	}
}
