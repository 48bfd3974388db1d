// Package source turns a user-supplied episode URL into a direct audio URL
// the decoder can fetch.
package source

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
)

// EpisodeResolver maps a streaming-platform episode page to its audio URL.
type EpisodeResolver interface {
	ResolveEpisode(ctx context.Context, episodeID string) (string, error)
}

// Resolver routes URLs: Spotify episode links go through the platform
// resolver, everything else is assumed to already be a direct audio URL.
type Resolver struct {
	spotify EpisodeResolver
}

func NewResolver(spotify EpisodeResolver) *Resolver {
	return &Resolver{spotify: spotify}
}

// Resolve returns the URL the decoder should fetch.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme: %s", parsed.Scheme)
	}

	episodeID, ok := spotifyEpisodeID(parsed)
	if !ok {
		return rawURL, nil
	}
	if r.spotify == nil {
		return "", fmt.Errorf("spotify url given but no spotify credentials configured")
	}

	log.Printf("source: resolving spotify episode %s", episodeID)
	audioURL, err := r.spotify.ResolveEpisode(ctx, episodeID)
	if err != nil {
		return "", fmt.Errorf("resolve spotify episode: %w", err)
	}
	return audioURL, nil
}

// spotifyEpisodeID extracts the episode ID from open.spotify.com links.
func spotifyEpisodeID(u *url.URL) (string, bool) {
	if !strings.EqualFold(u.Hostname(), "open.spotify.com") {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "episode" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
