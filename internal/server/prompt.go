package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/matteoferrigno/podsight/internal/prompt"
)

// PromptStore reads and persists the generation prompts, satisfied by
// prompt.Store.
type PromptStore interface {
	Get() prompt.Prompts
	Update(prompt.Prompts) error
}

// handlePrompt serves the current prompts and, in dev mode only, accepts
// replacements. Production listeners get a read-only view.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.prompts.Get()); err != nil {
			http.Error(w, "encode prompts", http.StatusInternalServerError)
		}

	case http.MethodPost:
		if !s.config.DevMode {
			http.Error(w, "prompt updates are disabled outside dev mode", http.StatusForbidden)
			return
		}

		var p prompt.Prompts
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, fmt.Sprintf("decode prompts: %v", err), http.StatusBadRequest)
			return
		}
		if err := s.prompts.Update(p); err != nil {
			http.Error(w, fmt.Sprintf("update prompts: %v", err), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"updated"}`)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
