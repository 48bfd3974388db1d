package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/matteoferrigno/podsight/internal/pipeline"
)

// CoordinatorFactory builds a fresh pipeline per stream request with the
// current configuration.
type CoordinatorFactory func() (*pipeline.Coordinator, error)

// handleStream runs the pipeline for ?url= and forwards its events as
// server-sent events. Client disconnect cancels the whole stream.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	audioURL := rawURL
	if s.resolver != nil {
		resolved, err := s.resolver.Resolve(ctx, rawURL)
		if err != nil {
			http.Error(w, fmt.Sprintf("resolve url: %v", err), http.StatusBadRequest)
			return
		}
		audioURL = resolved
	}

	coordinator, err := s.factory()
	if err != nil {
		http.Error(w, fmt.Sprintf("start pipeline: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	log.Printf("server: stream started for %s", rawURL)

	go func() {
		if err := coordinator.Run(ctx, audioURL); err != nil {
			log.Printf("server: pipeline finished with error: %v", err)
		}
	}()

	for event := range coordinator.Events() {
		if err := writeSSE(w, event); err != nil {
			log.Printf("server: client gone, stopping stream: %v", err)
			coordinator.Stop()
			break
		}
		flusher.Flush()
	}

	// Drain so the pipeline can close down even after a write failure.
	for range coordinator.Events() {
	}
	<-coordinator.Done()
	log.Printf("server: stream ended for %s", rawURL)
}

func writeSSE(w http.ResponseWriter, event pipeline.Event) error {
	payload, err := json.Marshal(ssePayload(event))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
	return err
}

func ssePayload(event pipeline.Event) any {
	switch event.Type {
	case pipeline.EventStatus:
		return event.Status
	case pipeline.EventSegment:
		return event.Segment
	case pipeline.EventSummary:
		return event.Summary
	case pipeline.EventLog:
		return map[string]string{"message": event.Log}
	default:
		return event
	}
}
