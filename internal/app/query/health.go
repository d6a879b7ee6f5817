package query

import "github.com/eziosoft/MavlinkStats/internal/domain"

// DefaultTolerance allows ±20% around the expected rate.
const DefaultTolerance = 0.2

// Classify labels an actual rate against the expected table.
// Types outside the table, or expected at 0 Hz (event based), are unclassified.
func Classify(expected map[string]float64, tolerance float64, typ string, actualHz float64) domain.Health {
	want, ok := expected[typ]
	if !ok || want <= 0 {
		return domain.HealthUnclassified
	}
	lower := want * (1 - tolerance)
	upper := want * (1 + tolerance)
	if actualHz >= lower && actualHz <= upper {
		return domain.HealthGood
	}
	return domain.HealthBad
}
