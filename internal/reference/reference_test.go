package reference

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubSearcher struct {
	ref   *Reference
	err   error
	calls int
}

func (s *stubSearcher) Search(ctx context.Context, query string) (*Reference, error) {
	s.calls++
	return s.ref, s.err
}

func TestResolver_DedupSuppressesRepeatLookups(t *testing.T) {
	searcher := &stubSearcher{ref: &Reference{Title: "Jazz", URL: "https://en.wikipedia.org/wiki/Jazz"}}
	r := NewResolver(searcher, true)

	first := r.Resolve(context.Background(), "Jazz")
	second := r.Resolve(context.Background(), "Jazz")

	if first == nil {
		t.Fatal("first Resolve() = nil, want reference")
	}
	if second != nil {
		t.Errorf("second Resolve() = %+v, want nil", second)
	}
	if searcher.calls != 1 {
		t.Errorf("search calls = %d, want 1", searcher.calls)
	}
}

func TestResolver_DedupDisabled(t *testing.T) {
	searcher := &stubSearcher{ref: &Reference{Title: "Jazz"}}
	r := NewResolver(searcher, false)

	r.Resolve(context.Background(), "Jazz")
	r.Resolve(context.Background(), "Jazz")

	if searcher.calls != 2 {
		t.Errorf("search calls = %d, want 2", searcher.calls)
	}
}

func TestResolver_EmptyTopicSkipsLookup(t *testing.T) {
	searcher := &stubSearcher{}
	r := NewResolver(searcher, true)

	if ref := r.Resolve(context.Background(), ""); ref != nil {
		t.Errorf("Resolve(\"\") = %+v, want nil", ref)
	}
	if searcher.calls != 0 {
		t.Errorf("search calls = %d, want 0", searcher.calls)
	}
}

func TestResolver_FailedLookupNotMarkedSeen(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("network down")}
	r := NewResolver(searcher, true)

	if ref := r.Resolve(context.Background(), "Jazz"); ref != nil {
		t.Errorf("Resolve() = %+v, want nil", ref)
	}

	// The topic stays eligible, so a later occurrence retries.
	searcher.err = nil
	searcher.ref = &Reference{Title: "Jazz"}
	if ref := r.Resolve(context.Background(), "Jazz"); ref == nil {
		t.Error("retry after failure returned nil, want reference")
	}
	if searcher.calls != 2 {
		t.Errorf("search calls = %d, want 2", searcher.calls)
	}
}

func TestResolver_EmptyResultNotMarkedSeen(t *testing.T) {
	searcher := &stubSearcher{}
	r := NewResolver(searcher, true)

	r.Resolve(context.Background(), "Obscurity")
	r.Resolve(context.Background(), "Obscurity")

	if searcher.calls != 2 {
		t.Errorf("search calls = %d, want 2", searcher.calls)
	}
}

func TestClient_Search(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("list") != "search" || q.Get("format") != "json" {
			t.Errorf("unexpected query params: %v", q)
		}
		if q.Get("srsearch") != "French Revolution" {
			t.Errorf("srsearch = %q", q.Get("srsearch"))
		}
		w.Write([]byte(`{"query":{"search":[
			{"title":"French Revolution","snippet":"The <span class=\"searchmatch\">French Revolution</span> was a period"}
		]}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	ref, err := c.Search(context.Background(), "French Revolution")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if ref == nil {
		t.Fatal("Search() = nil, want reference")
	}
	if ref.Title != "French Revolution" {
		t.Errorf("Title = %q", ref.Title)
	}
	if ref.URL != "https://en.wikipedia.org/wiki/French_Revolution" {
		t.Errorf("URL = %q", ref.URL)
	}
	if strings.Contains(ref.Snippet, "<") {
		t.Errorf("snippet contains markup: %q", ref.Snippet)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}
}

func TestClient_SearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"search":[]}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	ref, err := c.Search(context.Background(), "nothing matches this")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if ref != nil {
		t.Errorf("Search() = %+v, want nil", ref)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"query":{"search":[{"title":"Jazz","snippet":"music"}]}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	c.retry.BaseDelay = time.Millisecond
	c.retry.MaxDelay = 2 * time.Millisecond

	ref, err := c.Search(context.Background(), "Jazz")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if ref == nil || ref.Title != "Jazz" {
		t.Errorf("ref = %+v", ref)
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2", calls)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain text`, "plain text"},
		{`a <b>bold</b> claim`, "a bold claim"},
		{`<span class="searchmatch">Jazz</span> music`, "Jazz music"},
		{`  padded  `, "padded"},
		{``, ""},
	}
	for _, tt := range tests {
		if got := stripHTML(tt.in); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
