// Package enricher turns a transcript segment into a background-context block
// and a main-topic label by calling a chain of language-model providers.
package enricher

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/matteoferrigno/podsight/internal/prompt"
)

// ErrorContext is shown when every provider in the chain fails. The empty
// topic that accompanies it makes the reference resolver skip its lookup.
const ErrorContext = "Error generating context."

const summaryInstruction = "Provide a short summary of the following podcast excerpt in two or three sentences."

// Provider is a single language-model backend
type Provider interface {
	Name() string
	// Available reports whether the provider has a credential configured.
	// Unavailable providers are skipped without a network call.
	Available() bool
	Generate(ctx context.Context, promptText string) (string, error)
}

// PromptSource supplies the current prompt pair; reads happen at the start of
// every call so edits apply to the next segment.
type PromptSource interface {
	Get() prompt.Prompts
}

// Result of enriching one transcript
type Result struct {
	Context   string
	MainTopic string
	Failed    bool // every provider failed; Context holds the error text
}

// Enricher drives the provider chain with a bounded per-call deadline.
type Enricher struct {
	providers []Provider
	prompts   PromptSource
	timeout   time.Duration
}

func New(providers []Provider, prompts PromptSource, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Enricher{
		providers: providers,
		prompts:   prompts,
		timeout:   timeout,
	}
}

// Enrich renders the context prompt for transcript and walks the provider
// chain. The first provider that returns non-empty text wins; failures and
// timeouts fall through to the next provider.
func (e *Enricher) Enrich(ctx context.Context, transcript string) Result {
	promptText := e.prompts.Get().Render(transcript)

	text, ok := e.generate(ctx, promptText)
	if !ok {
		return Result{Context: ErrorContext, Failed: true}
	}

	return Result{
		Context:   text,
		MainTopic: ExtractMainTopic(text),
	}
}

// Summarize produces a rollup summary over several concatenated transcripts
// using the same provider chain.
func (e *Enricher) Summarize(ctx context.Context, combinedTranscript string) (string, error) {
	promptText := summaryInstruction + "\n\n" + combinedTranscript
	text, ok := e.generate(ctx, promptText)
	if !ok {
		return "", fmt.Errorf("all context providers failed")
	}
	return text, nil
}

func (e *Enricher) generate(ctx context.Context, promptText string) (string, bool) {
	for _, p := range e.providers {
		if !p.Available() {
			log.Printf("enricher: %s has no credential, trying next provider", p.Name())
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		start := time.Now()
		text, err := p.Generate(callCtx, promptText)
		duration := time.Since(start)
		cancel()

		if err != nil {
			log.Printf("enricher: %s failed after %v, trying next provider: %v", p.Name(), duration, err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			log.Printf("enricher: %s returned empty text after %v, trying next provider", p.Name(), duration)
			continue
		}

		log.Printf("enricher: %s generated %d chars in %v", p.Name(), len(text), duration)
		return text, true
	}
	return "", false
}
