package reference

import (
	"context"
	"log"
)

// Searcher is the lookup backend, satisfied by Client.
type Searcher interface {
	Search(ctx context.Context, query string) (*Reference, error)
}

// Resolver wraps a Searcher with per-session topic deduplication. It is owned
// by a single pipeline goroutine and is not safe for concurrent use.
type Resolver struct {
	searcher Searcher
	dedup    bool
	seen     map[string]struct{}
}

func NewResolver(searcher Searcher, dedup bool) *Resolver {
	return &Resolver{
		searcher: searcher,
		dedup:    dedup,
		seen:     make(map[string]struct{}),
	}
}

// Resolve returns a reference for topic or nil. Empty and already-seen topics
// skip the network entirely. A topic is marked seen only after a successful
// lookup, so a failed lookup can be retried when the topic recurs.
func (r *Resolver) Resolve(ctx context.Context, topic string) *Reference {
	if topic == "" {
		return nil
	}
	if r.dedup {
		if _, ok := r.seen[topic]; ok {
			log.Printf("reference: topic %q already resolved this session, skipping", topic)
			return nil
		}
	}

	ref, err := r.searcher.Search(ctx, topic)
	if err != nil {
		log.Printf("reference: lookup for %q failed: %v", topic, err)
		return nil
	}
	if ref == nil {
		log.Printf("reference: no article found for %q", topic)
		return nil
	}

	if r.dedup {
		r.seen[topic] = struct{}{}
	}
	log.Printf("reference: resolved %q to %s", topic, ref.URL)
	return ref
}
