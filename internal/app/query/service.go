// Package query derives dashboard views from the tracker store and owns the
// destructive reset.
package query

import (
	"sort"
	"time"

	"github.com/eziosoft/MavlinkStats/internal/app/tracker"
	"github.com/eziosoft/MavlinkStats/internal/domain"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

type Service struct {
	store     *tracker.Store
	expected  map[string]float64
	tolerance float64
	now       func() time.Time
}

// NewService copies expected so later changes by the caller are not observed.
func NewService(store *tracker.Store, expected map[string]float64, tolerance float64, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	table := make(map[string]float64, len(expected))
	for k, v := range expected {
		table[k] = v
	}
	return &Service{
		store:     store,
		expected:  table,
		tolerance: tolerance,
		now:       now,
	}
}

func (s *Service) Snapshot() domain.Snapshot {
	view := s.store.View()

	snap := domain.Snapshot{
		TakenAt:        s.now(),
		Participants:   view.Participants,
		Messages:       make(map[string]domain.MessageState, len(view.Messages)),
		StreamRequests: view.StreamRequests,
		Expected:       s.Expected(),
	}

	for _, m := range view.Messages {
		state := domain.MessageState{
			Type:        m.Type,
			LastSeen:    m.Freshness.LastSeen,
			FrequencyHz: m.Freshness.FrequencyHz,
			Origin:      m.Record.Origin,
			Target:      m.Record.Target,
			Health:      Classify(s.expected, s.tolerance, m.Type, m.Freshness.FrequencyHz),
			Fields:      m.Record.Fields,
		}
		if want, ok := s.expected[m.Type]; ok {
			want := want
			state.ExpectedHz = &want
		}
		snap.Messages[m.Type] = state
	}

	snap.Missing = missing(s.expected, snap.Messages)
	return snap
}

func (s *Service) Reset() error {
	s.store.Reset()
	return nil
}

// Expected returns a copy of the expected-frequency table.
func (s *Service) Expected() map[string]float64 {
	out := make(map[string]float64, len(s.expected))
	for k, v := range s.expected {
		out[k] = v
	}
	return out
}

// MissingCount is the number of expected types currently absent.
func (s *Service) MissingCount() int {
	view := s.store.View()
	present := make(map[string]struct{}, len(view.Messages))
	for _, m := range view.Messages {
		present[m.Type] = struct{}{}
	}
	n := 0
	for typ := range s.expected {
		if _, ok := present[typ]; !ok {
			n++
		}
	}
	return n
}

func missing(expected map[string]float64, present map[string]domain.MessageState) []string {
	out := make([]string, 0)
	for typ := range expected {
		if _, ok := present[typ]; !ok {
			out = append(out, typ)
		}
	}
	sort.Strings(out)
	return out
}

var _ ports.StateService = (*Service)(nil)
