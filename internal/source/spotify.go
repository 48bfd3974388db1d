package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/matteoferrigno/podsight/internal/resilience"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIURL   = "https://api.spotify.com/v1"
)

// SpotifyClient resolves episode preview URLs using the client-credentials
// flow. Tokens are cached until shortly before expiry.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	http         *http.Client
	retry        resilience.RetryConfig

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewSpotifyClient(clientID, clientSecret string) *SpotifyClient {
	return &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyTokenURL,
		apiURL:       spotifyAPIURL,
		http:         &http.Client{Timeout: 15 * time.Second},
		retry:        resilience.DefaultRetryConfig(),
	}
}

// NewSpotifyClientWithURLs overrides the endpoints, used by tests.
func NewSpotifyClientWithURLs(clientID, clientSecret, tokenURL, apiURL string) *SpotifyClient {
	c := NewSpotifyClient(clientID, clientSecret)
	c.tokenURL = tokenURL
	c.apiURL = apiURL
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type episodeResponse struct {
	AudioPreviewURL string `json:"audio_preview_url"`
}

// ResolveEpisode returns the preview audio URL for an episode.
func (c *SpotifyClient) ResolveEpisode(ctx context.Context, episodeID string) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", fmt.Errorf("spotify token: %w", err)
	}

	var episode episodeResponse
	err = resilience.Retry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.apiURL+"/episodes/"+url.PathEscape(episodeID), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("episode request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return &resilience.StatusError{Service: "spotify", Code: resp.StatusCode, Body: string(body)}
		}
		return json.Unmarshal(body, &episode)
	})
	if err != nil {
		return "", err
	}

	if episode.AudioPreviewURL == "" {
		return "", fmt.Errorf("episode %s has no audio preview", episodeID)
	}
	return episode.AudioPreviewURL, nil
}

func (c *SpotifyClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &resilience.StatusError{Service: "spotify", Code: resp.StatusCode, Body: string(body)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.accessToken = token.AccessToken
	// refresh a minute early
	c.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}
