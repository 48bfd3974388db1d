// Package reference looks up encyclopedia articles for extracted topics,
// deduplicating lookups within a listening session.
package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matteoferrigno/podsight/internal/resilience"
)

const DefaultEndpoint = "https://en.wikipedia.org/w/api.php"

// Reference is one resolved encyclopedia article.
type Reference struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Client queries the MediaWiki search API.
type Client struct {
	endpoint string
	http     *http.Client
	retry    resilience.RetryConfig
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		retry:    resilience.DefaultRetryConfig(),
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// Search returns the top-ranked article for query, or nil when nothing
// matches.
func (c *Client) Search(ctx context.Context, query string) (*Reference, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
		"format":   {"json"},
	}
	reqURL := c.endpoint + "?" + params.Encode()

	var parsed searchResponse
	err := resilience.Retry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("wikipedia request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return &resilience.StatusError{
				Service: "wikipedia",
				Code:    resp.StatusCode,
				Body:    string(body),
			}
		}
		return json.Unmarshal(body, &parsed)
	})
	if err != nil {
		return nil, err
	}

	if len(parsed.Query.Search) == 0 {
		return nil, nil
	}

	hit := parsed.Query.Search[0]
	return &Reference{
		Title:   hit.Title,
		URL:     articleURL(hit.Title),
		Snippet: stripHTML(hit.Snippet),
	}, nil
}

func articleURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// stripHTML removes markup tags from a search snippet. The API wraps match
// terms in spans; a full parser is not needed for that.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
