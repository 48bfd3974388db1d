package pipeline

import "sort"

// TopicTally pairs a topic label with how many segments produced it.
type TopicTally struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// TopicTracker keeps a bounded descending-count ranking of main topics.
// Owned by the coordinator goroutine; not safe for concurrent use.
type TopicTracker struct {
	limit   int
	tallies []TopicTally
}

func NewTopicTracker(limit int) *TopicTracker {
	if limit <= 0 {
		limit = 5
	}
	return &TopicTracker{limit: limit}
}

// Record bumps the tally for topic. The ranking is re-sorted stably so ties
// keep their prior relative order, then truncated to the limit. A topic that
// falls off the ranking loses its count.
func (t *TopicTracker) Record(topic string) {
	if topic == "" {
		return
	}

	found := false
	for i := range t.tallies {
		if t.tallies[i].Topic == topic {
			t.tallies[i].Count++
			found = true
			break
		}
	}
	if !found {
		t.tallies = append(t.tallies, TopicTally{Topic: topic, Count: 1})
	}

	sort.SliceStable(t.tallies, func(i, j int) bool {
		return t.tallies[i].Count > t.tallies[j].Count
	})
	if len(t.tallies) > t.limit {
		t.tallies = t.tallies[:t.limit]
	}
}

// Top returns a copy of the current ranking.
func (t *TopicTracker) Top() []TopicTally {
	out := make([]TopicTally, len(t.tallies))
	copy(out, t.tallies)
	return out
}
