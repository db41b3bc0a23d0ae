package occupancy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkvision/parking-backend-go/internal/geometry"
)

func rollupFixture(t *testing.T) (*Result, []SlotGeometry, []LotGeometry, map[string]string) {
	t.Helper()

	slots := []SlotGeometry{
		{ID: "s1", Name: "A1", Polygon: geometry.FromBBox(1, 1, 2, 2)},
		{ID: "s2", Name: "A2", Polygon: geometry.FromBBox(3, 1, 4, 2)},
	}
	lots := []LotGeometry{
		{ID: "lot1", Name: "North", Polygon: geometry.FromBBox(0, 0, 10, 10)},
	}

	var dets []Detection
	// s1 occupied in all 4 frames, s2 in one
	for frame := 0; frame < 4; frame++ {
		dets = append(dets, detAt(frame, geometry.FromBBox(1, 1, 2, 2)))
	}
	truck := detAt(2, geometry.FromBBox(3, 1, 4, 2))
	truck.ClassName = "truck"
	truck.Confidence = 0.7
	dets = append(dets, truck)

	result, err := Analyze(DefaultConfig(), slots, dets, nil)
	require.NoError(t, err)

	return result, slots, lots, ResolveLots(slots, lots, DefaultContainmentThreshold)
}

func TestBuildRollup(t *testing.T) {
	result, slots, lots, slotToLot := rollupFixture(t)
	rollup := BuildRollup(result, slots, lots, slotToLot)

	t.Run("slot statistics", func(t *testing.T) {
		require.Len(t, rollup.Slots, 2)
		// sorted by occupancy rate descending
		assert.Equal(t, "s1", rollup.Slots[0].SlotID)
		assert.InDelta(t, 1.0, rollup.Slots[0].OccupancyRate, 1e-9)
		assert.Equal(t, "busy", rollup.Slots[0].Status)

		assert.Equal(t, "s2", rollup.Slots[1].SlotID)
		assert.InDelta(t, 0.25, rollup.Slots[1].OccupancyRate, 1e-9)
		assert.Equal(t, "free", rollup.Slots[1].Status)
	})

	t.Run("lot statistics use equal slot weight", func(t *testing.T) {
		require.Len(t, rollup.Lots, 1)
		lot := rollup.Lots[0]
		assert.Equal(t, 2, lot.Capacity)
		// mean of 1.0 and 0.25, not detection weighted
		assert.InDelta(t, 0.625, lot.OccupancyRate, 1e-9)
		assert.Equal(t, "moderate", lot.Status)
	})

	t.Run("video summary", func(t *testing.T) {
		assert.Equal(t, 5, rollup.Summary.TotalDetections)
		assert.Equal(t, 4, rollup.Summary.FramesAnalyzed)
		// rates per frame: 0.5, 0.5, 1.0, 0.5
		assert.InDelta(t, 0.625, rollup.Summary.AverageOccupancyRate, 1e-9)
		assert.InDelta(t, 1.0, rollup.Summary.PeakOccupancyRate, 1e-9)
		assert.InDelta(t, 1.25, rollup.Summary.AverageVehiclesPerFrame, 1e-9)
	})

	t.Run("vehicle breakdown", func(t *testing.T) {
		require.Len(t, rollup.VehicleBreakdown, 2)
		assert.Equal(t, "car", rollup.VehicleBreakdown[0].ClassName)
		assert.Equal(t, 4, rollup.VehicleBreakdown[0].Count)
		assert.InDelta(t, 80.0, rollup.VehicleBreakdown[0].Percentage, 1e-9)
		assert.InDelta(t, 0.9, rollup.VehicleBreakdown[0].AvgConfidence, 1e-9)

		assert.Equal(t, "truck", rollup.VehicleBreakdown[1].ClassName)
		assert.InDelta(t, 0.7, rollup.VehicleBreakdown[1].AvgConfidence, 1e-9)
	})

	t.Run("current status is the latest frame", func(t *testing.T) {
		require.NotNil(t, rollup.Current)
		assert.Equal(t, 3, rollup.Current.FrameNumber)
	})
}

func TestBuildRollupIdempotent(t *testing.T) {
	result, slots, lots, slotToLot := rollupFixture(t)

	first := BuildRollup(result, slots, lots, slotToLot)
	second := BuildRollup(result, slots, lots, slotToLot)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("rollup not idempotent (-first +second):\n%s", diff)
	}
}

func TestBuildRollupContainedSlotCapacity(t *testing.T) {
	// 10x10 lot fully containing a 1x1 slot
	slot := SlotGeometry{ID: "s1", Polygon: geometry.FromBBox(2, 2, 3, 3)}
	lot := LotGeometry{ID: "lot1", Polygon: geometry.FromBBox(0, 0, 10, 10)}

	require.InDelta(t, 1.0, geometry.Coverage(slot.Polygon, lot.Polygon), 1e-9)

	mapping := ResolveLots([]SlotGeometry{slot}, []LotGeometry{lot}, DefaultContainmentThreshold)
	assert.Equal(t, "lot1", mapping["s1"])

	result, err := Analyze(DefaultConfig(), []SlotGeometry{slot}, nil, []int{0})
	require.NoError(t, err)

	rollup := BuildRollup(result, []SlotGeometry{slot}, []LotGeometry{lot}, mapping)
	require.Len(t, rollup.Lots, 1)
	assert.Equal(t, 1, rollup.Lots[0].Capacity)
}

func TestBuildRollupEmptyTimeline(t *testing.T) {
	result := &Result{Status: ResultNoDetections}
	rollup := BuildRollup(result, testSlots(), nil, nil)

	assert.Zero(t, rollup.Summary.AverageOccupancyRate)
	assert.Zero(t, rollup.Summary.PeakOccupancyRate)
	assert.Nil(t, rollup.Current)
	for _, slot := range rollup.Slots {
		assert.Zero(t, slot.OccupancyRate)
		assert.Equal(t, "free", slot.Status)
	}
}
