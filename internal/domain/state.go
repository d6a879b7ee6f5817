package domain

import (
	"sort"
	"time"
)

// MessageRecord is the latest instance of a message type.
type MessageRecord struct {
	Origin Participant    `json:"origin"`
	Target *Participant   `json:"target,omitempty"`
	Fields map[string]any `json:"fields"`
}

// FreshnessEntry tracks arrival timing for a message type.
type FreshnessEntry struct {
	LastSeen    time.Time   `json:"last_seen"`
	FrequencyHz float64     `json:"frequency_hz"`
	Origin      Participant `json:"origin"`
}

// StreamRequest is one observed request from a peer to stream a message at a rate.
// FrequencyHz is nil when the requested interval could not be turned into a rate.
type StreamRequest struct {
	Requester   Participant `json:"requester"`
	Target      Participant `json:"target"`
	StreamID    uint32      `json:"stream_id"`
	StreamName  string      `json:"stream_name"`
	FrequencyHz *float64    `json:"frequency_hz"`
	ReceivedAt  time.Time   `json:"received_at"`
}

// Health is the classification of an actual rate against the expected one.
type Health string

const (
	HealthGood         Health = "good"
	HealthBad          Health = "bad"
	HealthUnclassified Health = "unclassified"
)

// TrackedMessage pairs a record with its freshness entry.
type TrackedMessage struct {
	Type      string         `json:"type"`
	Record    MessageRecord  `json:"record"`
	Freshness FreshnessEntry `json:"freshness"`
}

// StateView is a consistent copy of the shared state store.
type StateView struct {
	Participants   []Participant
	Messages       []TrackedMessage
	StreamRequests []StreamRequest
}

// MessageState is the per-type row of a snapshot.
type MessageState struct {
	Type        string         `json:"type"`
	LastSeen    time.Time      `json:"last_seen"`
	FrequencyHz float64        `json:"frequency_hz"`
	Origin      Participant    `json:"origin"`
	Target      *Participant   `json:"target,omitempty"`
	ExpectedHz  *float64       `json:"expected_hz"`
	Health      Health         `json:"health"`
	Fields      map[string]any `json:"fields"`
}

// Snapshot is the point-in-time view served to dashboards.
type Snapshot struct {
	TakenAt        time.Time               `json:"taken_at"`
	Participants   []Participant           `json:"detected_participants"`
	Messages       map[string]MessageState `json:"messages"`
	StreamRequests []StreamRequest         `json:"stream_requests"`
	Expected       map[string]float64      `json:"expected_messages"`
	Missing        []string                `json:"missing_messages"`
}

// SortedMessages returns the message states ordered by type tag.
func (s Snapshot) SortedMessages() []MessageState {
	out := make([]MessageState, 0, len(s.Messages))
	for _, m := range s.Messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
