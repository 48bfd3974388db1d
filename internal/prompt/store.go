// Package prompt holds the externally editable prompt pair used for context
// generation: a template with a {{transcript}} placeholder and a main-topic
// extraction instruction appended to every rendered prompt.
package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const FileName = "promptConfig.json"

// TranscriptPlaceholder is substituted with the segment transcript when the
// context prompt is rendered.
const TranscriptPlaceholder = "{{transcript}}"

type Prompts struct {
	ContextPrompt        string `json:"contextPrompt"`
	MainTopicInstruction string `json:"mainTopicInstruction"`
}

// DefaultPrompts returns the prompts used when no prompt file exists or it
// cannot be parsed.
func DefaultPrompts() Prompts {
	return Prompts{
		ContextPrompt: "Generate a detailed background context for the following podcast transcript segment:\n\n" +
			TranscriptPlaceholder + "\n\nContext:",
		MainTopicInstruction: "At the end of your response, on a new line, output 'MAIN_TOPIC:' followed by the most important topic discussed in the segment.",
	}
}

// Render substitutes the transcript into the context template and appends the
// main-topic instruction.
func (p Prompts) Render(transcript string) string {
	return strings.ReplaceAll(p.ContextPrompt, TranscriptPlaceholder, transcript) +
		"\n" + p.MainTopicInstruction
}

// Store serves the current prompt pair and reloads it when the backing file
// changes. Reads are cheap; every context-generation call asks the store.
type Store struct {
	mu      sync.RWMutex
	path    string
	prompts Prompts
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

func NewStore(dir string) *Store {
	s := &Store{
		path:    filepath.Join(dir, FileName),
		prompts: DefaultPrompts(),
	}
	s.reload()
	return s
}

func (s *Store) Path() string { return s.path }

func (s *Store) Get() Prompts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompts
}

// Update validates and persists a new prompt pair, then makes it current.
func (s *Store) Update(p Prompts) error {
	if !strings.Contains(p.ContextPrompt, TranscriptPlaceholder) {
		return fmt.Errorf("context prompt must contain %s", TranscriptPlaceholder)
	}
	if strings.TrimSpace(p.MainTopicInstruction) == "" {
		return fmt.Errorf("main topic instruction must not be empty")
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prompts: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write prompt file: %w", err)
	}

	s.mu.Lock()
	s.prompts = p
	s.mu.Unlock()

	log.Printf("Prompt store: prompts updated")
	return nil
}

func (s *Store) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}

	s.wg.Add(1)
	go s.watchLoop(ctx)

	log.Printf("Prompt store: watching %s for changes", s.path)
	return nil
}

func (s *Store) Stop() {
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.wg.Wait()
}

func (s *Store) watchLoop(ctx context.Context) {
	defer s.wg.Done()
	fileName := filepath.Base(s.path)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				log.Printf("Prompt store: file change detected, reloading prompts")
				s.reload()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Prompt store watcher error: %v", err)

		case <-ctx.Done():
			return
		}
	}
}

// reload reads the prompt file, falling back to defaults when it is missing
// or malformed so context generation always has a usable prompt.
func (s *Store) reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Prompt store: failed to read %s: %v (using defaults)", s.path, err)
		}
		s.mu.Lock()
		s.prompts = DefaultPrompts()
		s.mu.Unlock()
		return
	}

	var p Prompts
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("Prompt store: failed to parse %s: %v (using defaults)", s.path, err)
		return
	}
	if !strings.Contains(p.ContextPrompt, TranscriptPlaceholder) || strings.TrimSpace(p.MainTopicInstruction) == "" {
		log.Printf("Prompt store: %s is incomplete, keeping previous prompts", s.path)
		return
	}

	s.mu.Lock()
	s.prompts = p
	s.mu.Unlock()
}
