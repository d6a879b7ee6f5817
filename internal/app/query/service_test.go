package query

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eziosoft/MavlinkStats/internal/app/tracker"
	"github.com/eziosoft/MavlinkStats/internal/domain"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var expected = map[string]float64{
	"ATTITUDE":     4,
	"SYS_STATUS":   1,
	"STATUSTEXT":   0,
	"LANDING_TARGET": 16,
}

func observe(s *tracker.Store, typ string, at time.Time) {
	s.Observe(&domain.Message{
		Type:   typ,
		Origin: domain.Participant{SystemID: 1, ComponentID: 1},
		Fields: map[string]any{},
	}, nil, at)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		typ    string
		actual float64
		want   domain.Health
	}{
		{"within band", "ATTITUDE", 3.3, domain.HealthGood},
		{"lower edge", "ATTITUDE", 3.2, domain.HealthGood},
		{"upper edge", "ATTITUDE", 4.8, domain.HealthGood},
		{"below band", "ATTITUDE", 3.0, domain.HealthBad},
		{"above band", "ATTITUDE", 5.0, domain.HealthBad},
		{"event based", "STATUSTEXT", 12, domain.HealthUnclassified},
		{"event based zero", "STATUSTEXT", 0, domain.HealthUnclassified},
		{"not expected", "VIBRATION", 2, domain.HealthUnclassified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(expected, DefaultTolerance, tc.typ, tc.actual))
		})
	}
}

func TestSnapshotDerivesHealthAndMissing(t *testing.T) {
	store := tracker.NewStore()
	observe(store, "ATTITUDE", t0)
	observe(store, "ATTITUDE", t0.Add(300*time.Millisecond))
	observe(store, "VIBRATION", t0)

	svc := NewService(store, expected, DefaultTolerance, func() time.Time { return t0.Add(time.Second) })
	snap := svc.Snapshot()

	require.Contains(t, snap.Messages, "ATTITUDE")
	att := snap.Messages["ATTITUDE"]
	assert.InDelta(t, 3.333, att.FrequencyHz, 0.001)
	assert.Equal(t, domain.HealthGood, att.Health)
	require.NotNil(t, att.ExpectedHz)
	assert.Equal(t, 4.0, *att.ExpectedHz)

	vib := snap.Messages["VIBRATION"]
	assert.Nil(t, vib.ExpectedHz)
	assert.Equal(t, domain.HealthUnclassified, vib.Health)

	assert.Equal(t, []string{"LANDING_TARGET", "STATUSTEXT", "SYS_STATUS"}, snap.Missing)
	assert.Equal(t, 3, svc.MissingCount())
	assert.Equal(t, t0.Add(time.Second), snap.TakenAt)
}

func TestEvictedTypeBecomesMissing(t *testing.T) {
	store := tracker.NewStore()
	observe(store, "SYS_STATUS", t0)
	svc := NewService(store, expected, DefaultTolerance, nil)

	assert.NotContains(t, svc.Snapshot().Missing, "SYS_STATUS")

	store.Sweep(t0.Add(6*time.Second), 5*time.Second)
	snap := svc.Snapshot()
	assert.NotContains(t, snap.Messages, "SYS_STATUS")
	assert.Contains(t, snap.Missing, "SYS_STATUS")
}

func TestResetThenSnapshotIsEmpty(t *testing.T) {
	store := tracker.NewStore()
	observe(store, "ATTITUDE", t0)
	store.Observe(&domain.Message{Type: domain.CommandLongType, Fields: map[string]any{}},
		&domain.StreamRequest{StreamID: 33}, t0)

	svc := NewService(store, expected, DefaultTolerance, nil)
	require.NoError(t, svc.Reset())

	snap := svc.Snapshot()
	assert.Empty(t, snap.Participants)
	assert.Empty(t, snap.Messages)
	assert.Empty(t, snap.StreamRequests)

	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, keys, snap.Missing)
}

func TestExpectedIsCopied(t *testing.T) {
	table := map[string]float64{"ATTITUDE": 4}
	svc := NewService(tracker.NewStore(), table, DefaultTolerance, nil)
	table["ATTITUDE"] = 100

	got := svc.Expected()
	assert.Equal(t, 4.0, got["ATTITUDE"])
	got["ATTITUDE"] = 7
	assert.Equal(t, 4.0, svc.Expected()["ATTITUDE"])
}
