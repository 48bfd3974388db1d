package pipeline

import (
	"time"

	"github.com/matteoferrigno/podsight/internal/reference"
)

// EventType names the kinds of updates the pipeline pushes to consumers.
type EventType string

const (
	EventStatus  EventType = "status"
	EventSegment EventType = "segment"
	EventSummary EventType = "summary"
	EventLog     EventType = "log"
)

// Stream phases reported through status events.
const (
	PhaseStarting   = "starting"
	PhaseDecoding   = "decoding"
	PhaseProcessing = "processing"
	PhaseComplete   = "complete"
	PhaseStopped    = "stopped"
	PhaseError      = "error"
)

// Status is a coarse stream-level state change.
type Status struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

// Segment is the enriched record for one audio window. A preliminary segment
// carries only the transcript; the finalized segment for the same index
// follows once enrichment completes.
type Segment struct {
	Index         int                  `json:"index"`
	Transcript    string               `json:"transcript"`
	Context       string               `json:"context,omitempty"`
	MainTopic     string               `json:"mainTopic,omitempty"`
	Wikipedia     *reference.Reference `json:"wikipedia,omitempty"`
	IsPreliminary bool                 `json:"isPreliminary"`
	IsFallback    bool                 `json:"isFallback"`
	StartSeconds  int                  `json:"startSeconds"`
	Timestamp     time.Time            `json:"timestamp"`
}

// Summary is a periodic rollup over the most recent segments.
type Summary struct {
	AfterSegments int          `json:"afterSegments"`
	Text          string       `json:"text"`
	TopTopics     []TopicTally `json:"topTopics"`
}

// Event is one item in the ordered stream delivered to the consumer.
// Exactly one payload field is set, selected by Type.
type Event struct {
	Type    EventType `json:"type"`
	Status  *Status   `json:"status,omitempty"`
	Segment *Segment  `json:"segment,omitempty"`
	Summary *Summary  `json:"summary,omitempty"`
	Log     string    `json:"log,omitempty"`
}

func statusEvent(phase, message string) Event {
	return Event{Type: EventStatus, Status: &Status{Phase: phase, Message: message}}
}

func segmentEvent(s Segment) Event {
	return Event{Type: EventSegment, Segment: &s}
}

func summaryEvent(s Summary) Event {
	return Event{Type: EventSummary, Summary: &s}
}

func logEvent(message string) Event {
	return Event{Type: EventLog, Log: message}
}
