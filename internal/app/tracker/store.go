package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/eziosoft/MavlinkStats/internal/domain"
)

// entry keeps a record and its freshness under one key so they are created,
// replaced and evicted together.
type entry struct {
	record    domain.MessageRecord
	freshness domain.FreshnessEntry
}

// Store is the shared state written by the ingestion loop and read by queries.
// Every mutation and every View runs inside one critical section.
type Store struct {
	mu           sync.RWMutex
	participants map[domain.Participant]struct{}
	entries      map[string]*entry
	requests     []domain.StreamRequest
}

func NewStore() *Store {
	return &Store{
		participants: make(map[domain.Participant]struct{}),
		entries:      make(map[string]*entry),
	}
}

// Observe records one arrival. req is appended to the stream-request log when non-nil.
func (s *Store) Observe(msg *domain.Message, req *domain.StreamRequest, now time.Time) {
	if msg == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants[msg.Origin] = struct{}{}

	var prev *domain.FreshnessEntry
	if e, ok := s.entries[msg.Type]; ok {
		prev = &e.freshness
	}
	s.entries[msg.Type] = &entry{
		record: domain.MessageRecord{
			Origin: msg.Origin,
			Target: msg.Target,
			Fields: msg.Fields,
		},
		freshness: advance(prev, msg.Origin, now),
	}

	if req != nil {
		s.requests = append(s.requests, *req)
	}
}

// Sweep evicts every type silent for longer than staleAfter and returns the
// evicted tags in sorted order.
func (s *Store) Sweep(now time.Time, staleAfter time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for typ, e := range s.entries {
		if isStale(e.freshness, now, staleAfter) {
			delete(s.entries, typ)
			evicted = append(evicted, typ)
		}
	}
	sort.Strings(evicted)
	return evicted
}

// Reset clears participants, tracked messages and stream requests at once.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = make(map[domain.Participant]struct{})
	s.entries = make(map[string]*entry)
	s.requests = nil
}

// View copies the store. Field maps are shared, not copied.
func (s *Store) View() domain.StateView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := domain.StateView{
		Participants:   make([]domain.Participant, 0, len(s.participants)),
		Messages:       make([]domain.TrackedMessage, 0, len(s.entries)),
		StreamRequests: make([]domain.StreamRequest, len(s.requests)),
	}
	for p := range s.participants {
		view.Participants = append(view.Participants, p)
	}
	for typ, e := range s.entries {
		view.Messages = append(view.Messages, domain.TrackedMessage{
			Type:      typ,
			Record:    e.record,
			Freshness: e.freshness,
		})
	}
	copy(view.StreamRequests, s.requests)

	sort.Slice(view.Participants, func(i, j int) bool {
		a, b := view.Participants[i], view.Participants[j]
		if a.SystemID != b.SystemID {
			return a.SystemID < b.SystemID
		}
		return a.ComponentID < b.ComponentID
	})
	sort.Slice(view.Messages, func(i, j int) bool { return view.Messages[i].Type < view.Messages[j].Type })
	return view
}

// Counts returns the number of tracked types and detected participants.
func (s *Store) Counts() (types, participants int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), len(s.participants)
}
