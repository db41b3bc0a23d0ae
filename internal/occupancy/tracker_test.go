package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	sample int
	status Status
}

func feed(t *testing.T, tracker *Tracker, slotID string, samples []bool) []emitted {
	t.Helper()
	var out []emitted
	for i, s := range samples {
		if status, changed := tracker.Update(slotID, s); changed {
			out = append(out, emitted{sample: i + 1, status: status})
		}
	}
	return out
}

func TestTrackerDebouncing(t *testing.T) {
	t.Run("flicker does not confirm early", func(t *testing.T) {
		tracker := NewTracker(3)
		events := feed(t, tracker, "s1", []bool{true, false, true, true, true})

		require.Len(t, events, 1)
		assert.Equal(t, StatusOccupied, events[0].status)
		assert.Equal(t, 5, events[0].sample)
	})

	t.Run("single miss does not flip confirmed status", func(t *testing.T) {
		tracker := NewTracker(3)
		events := feed(t, tracker, "s1", []bool{true, true, true, false, true, true, true})

		// one occupied confirmation, never free, no duplicate occupied
		require.Len(t, events, 1)
		assert.Equal(t, StatusOccupied, events[0].status)
		assert.Equal(t, 3, events[0].sample)
	})

	t.Run("full transition emits both statuses once", func(t *testing.T) {
		tracker := NewTracker(3)
		events := feed(t, tracker, "s1", []bool{true, true, true, false, false, false})

		require.Len(t, events, 2)
		assert.Equal(t, emitted{sample: 3, status: StatusOccupied}, events[0])
		assert.Equal(t, emitted{sample: 6, status: StatusFree}, events[1])
	})

	t.Run("no emission while window is filling", func(t *testing.T) {
		tracker := NewTracker(3)
		events := feed(t, tracker, "s1", []bool{true, true})
		assert.Empty(t, events)

		_, confirmed := tracker.Confirmed("s1")
		assert.False(t, confirmed)
	})

	t.Run("initial all-free confirms free", func(t *testing.T) {
		tracker := NewTracker(3)
		events := feed(t, tracker, "s1", []bool{false, false, false, false})

		require.Len(t, events, 1)
		assert.Equal(t, emitted{sample: 3, status: StatusFree}, events[0])
	})
}

func TestTrackerDeterminism(t *testing.T) {
	samples := []bool{true, false, true, true, true, false, false, false, true, true, true}

	a := feed(t, NewTracker(3), "slot", samples)
	b := feed(t, NewTracker(3), "slot", samples)

	assert.Equal(t, a, b)
}

func TestTrackerSlotIsolation(t *testing.T) {
	tracker := NewTracker(2)

	_, changed := tracker.Update("a", true)
	assert.False(t, changed)
	_, changed = tracker.Update("b", false)
	assert.False(t, changed)

	status, changed := tracker.Update("a", true)
	assert.True(t, changed)
	assert.Equal(t, StatusOccupied, status)

	status, changed = tracker.Update("b", false)
	assert.True(t, changed)
	assert.Equal(t, StatusFree, status)
}

func TestTrackerWindowOfOne(t *testing.T) {
	tracker := NewTracker(1)

	status, changed := tracker.Update("s", true)
	assert.True(t, changed)
	assert.Equal(t, StatusOccupied, status)

	// same status again is not a change
	_, changed = tracker.Update("s", true)
	assert.False(t, changed)

	status, changed = tracker.Update("s", false)
	assert.True(t, changed)
	assert.Equal(t, StatusFree, status)
}

func TestTrackerInvalidWindowFallsBack(t *testing.T) {
	tracker := NewTracker(0)
	events := feed(t, tracker, "s", []bool{true, true, true})

	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].sample)
}
