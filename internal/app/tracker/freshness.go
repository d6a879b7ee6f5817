package tracker

import (
	"time"

	"github.com/eziosoft/MavlinkStats/internal/domain"
)

// Frequency returns the instantaneous rate implied by two consecutive arrivals.
// A zero or negative gap yields 0.
func Frequency(prev, now time.Time) float64 {
	delta := now.Sub(prev).Seconds()
	if delta <= 0 {
		return 0
	}
	return 1 / delta
}

// advance moves a message type through absent → fresh → fresh.
func advance(prev *domain.FreshnessEntry, origin domain.Participant, now time.Time) domain.FreshnessEntry {
	if prev == nil {
		return domain.FreshnessEntry{LastSeen: now, FrequencyHz: 0, Origin: origin}
	}
	return domain.FreshnessEntry{
		LastSeen:    now,
		FrequencyHz: Frequency(prev.LastSeen, now),
		Origin:      origin,
	}
}

// isStale reports whether an entry has been silent for longer than staleAfter.
func isStale(e domain.FreshnessEntry, now time.Time, staleAfter time.Duration) bool {
	return now.Sub(e.LastSeen) > staleAfter
}
