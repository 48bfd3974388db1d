package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

type stubEpisodeResolver struct {
	audioURL string
	calls    int
}

func (s *stubEpisodeResolver) ResolveEpisode(ctx context.Context, episodeID string) (string, error) {
	s.calls++
	return s.audioURL, nil
}

func TestResolver_DirectURLPassesThrough(t *testing.T) {
	stub := &stubEpisodeResolver{}
	r := NewResolver(stub)

	got, err := r.Resolve(context.Background(), "https://example.com/show/ep1.mp3")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != "https://example.com/show/ep1.mp3" {
		t.Errorf("Resolve() = %q", got)
	}
	if stub.calls != 0 {
		t.Errorf("episode resolver calls = %d, want 0", stub.calls)
	}
}

func TestResolver_SpotifyURLUsesEpisodeResolver(t *testing.T) {
	stub := &stubEpisodeResolver{audioURL: "https://p.scdn.co/mp3-preview/abc"}
	r := NewResolver(stub)

	got, err := r.Resolve(context.Background(), "https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != stub.audioURL {
		t.Errorf("Resolve() = %q, want %q", got, stub.audioURL)
	}
	if stub.calls != 1 {
		t.Errorf("episode resolver calls = %d, want 1", stub.calls)
	}
}

func TestResolver_SpotifyWithoutCredentials(t *testing.T) {
	r := NewResolver(nil)
	if _, err := r.Resolve(context.Background(), "https://open.spotify.com/episode/abc"); err == nil {
		t.Error("Resolve() expected error without spotify client")
	}
}

func TestResolver_RejectsBadSchemes(t *testing.T) {
	r := NewResolver(nil)
	for _, raw := range []string{"file:///etc/passwd", "ftp://example.com/a.mp3"} {
		if _, err := r.Resolve(context.Background(), raw); err == nil {
			t.Errorf("Resolve(%q) expected error", raw)
		}
	}
}

func TestSpotifyEpisodeID(t *testing.T) {
	tests := []struct {
		raw    string
		wantID string
		wantOK bool
	}{
		{"https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk", "4rOoJ6Egrf8K2IrywzwOMk", true},
		{"https://OPEN.SPOTIFY.COM/episode/abc", "abc", true},
		{"https://open.spotify.com/track/abc", "", false},
		{"https://open.spotify.com/episode/", "", false},
		{"https://example.com/episode/abc", "", false},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.raw, err)
		}
		id, ok := spotifyEpisodeID(u)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("spotifyEpisodeID(%q) = (%q, %v), want (%q, %v)", tt.raw, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestSpotifyClient_ResolveEpisode(t *testing.T) {
	var tokenCalls, episodeCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			t.Errorf("basic auth = (%q, %q, %v)", user, pass, ok)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		w.Write([]byte(`{"access_token":"tok-123","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/episodes/ep-42", func(w http.ResponseWriter, r *http.Request) {
		episodeCalls++
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"audio_preview_url":"https://p.scdn.co/mp3-preview/xyz"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewSpotifyClientWithURLs("client-id", "client-secret",
		server.URL+"/api/token", server.URL+"/v1")

	got, err := c.ResolveEpisode(context.Background(), "ep-42")
	if err != nil {
		t.Fatalf("ResolveEpisode() error: %v", err)
	}
	if got != "https://p.scdn.co/mp3-preview/xyz" {
		t.Errorf("ResolveEpisode() = %q", got)
	}

	// Second resolve reuses the cached token.
	if _, err := c.ResolveEpisode(context.Background(), "ep-42"); err != nil {
		t.Fatalf("second ResolveEpisode() error: %v", err)
	}
	if tokenCalls != 1 {
		t.Errorf("token calls = %d, want 1", tokenCalls)
	}
	if episodeCalls != 2 {
		t.Errorf("episode calls = %d, want 2", episodeCalls)
	}
}

func TestSpotifyClient_NoPreviewURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/episodes/ep-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"audio_preview_url":null}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewSpotifyClientWithURLs("id", "secret", server.URL+"/api/token", server.URL+"/v1")
	if _, err := c.ResolveEpisode(context.Background(), "ep-1"); err == nil {
		t.Error("ResolveEpisode() expected error for missing preview url")
	}
}
