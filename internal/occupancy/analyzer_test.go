package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkvision/parking-backend-go/internal/geometry"
)

func testSlots() []SlotGeometry {
	return []SlotGeometry{
		{ID: "s1", Name: "A1", Polygon: geometry.FromGeoJSON(`{"coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`)},
		{ID: "s2", Name: "A2", Polygon: geometry.FromBBox(2, 0, 3, 1)},
	}
}

func detAt(frame int, poly geometry.Polygon) Detection {
	return Detection{
		FrameNumber:   frame,
		FrameTime:     time.Date(2025, 6, 1, 12, 0, frame, 0, time.UTC),
		OffsetSeconds: float64(frame),
		ClassName:     "car",
		Confidence:    0.9,
		Polygon:       poly,
	}
}

func TestAnalyzeCoincidentDetection(t *testing.T) {
	// detection bbox exactly coincident with the slot polygon
	result, err := Analyze(DefaultConfig(), testSlots(), []Detection{
		detAt(0, geometry.FromBBox(0, 0, 1, 1)),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, ResultOK, result.Status)
	require.Len(t, result.Timeline, 1)

	snapshot := result.Timeline[0]
	assert.Equal(t, []string{"s1"}, snapshot.OccupiedSlotIDs)
	assert.Equal(t, []string{"s2"}, snapshot.FreeSlotIDs)
	assert.Equal(t, 1, snapshot.TotalDetections)
	assert.InDelta(t, 0.5, snapshot.OccupancyRate, 1e-9)

	match, ok := MatchSlot(geometry.FromBBox(0, 0, 1, 1), testSlots(), DefaultIoUThreshold)
	require.True(t, ok)
	assert.Equal(t, "s1", match.SlotID)
	assert.InDelta(t, 1.0, match.IoU, 1e-9)
}

func TestAnalyzeNoSlots(t *testing.T) {
	result, err := Analyze(DefaultConfig(), nil, []Detection{detAt(0, geometry.FromBBox(0, 0, 1, 1))}, nil)
	require.NoError(t, err)

	assert.Equal(t, ResultNoSlots, result.Status)
	assert.Empty(t, result.Timeline)

	// rollups over the no-data result stay at zero without errors
	rollup := BuildRollup(result, nil, nil, nil)
	assert.Zero(t, rollup.Summary.TotalSlots)
	assert.Zero(t, rollup.Summary.AverageOccupancyRate)
}

func TestAnalyzeTemporalSmoothing(t *testing.T) {
	slots := testSlots()
	onSlot := geometry.FromBBox(0, 0, 1, 1)

	// s1 seen in frames 0,2,3,4 with a flicker miss at frame 1
	dets := []Detection{
		detAt(0, onSlot),
		detAt(2, onSlot),
		detAt(3, onSlot),
		detAt(4, onSlot),
	}

	result, err := Analyze(DefaultConfig(), slots, dets, []int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	require.Len(t, result.Timeline, 5)

	assert.Equal(t, ResultNoDetections, result.Timeline[1].Status)

	var s1Events []Event
	for _, ev := range result.Events {
		if ev.SlotID == "s1" {
			s1Events = append(s1Events, ev)
		}
	}
	require.Len(t, s1Events, 1)
	assert.Equal(t, StatusOccupied, s1Events[0].Status)
	assert.Equal(t, 4, s1Events[0].FrameNumber)

	// s2 was never occupied: confirmed free once the window filled
	var s2Events []Event
	for _, ev := range result.Events {
		if ev.SlotID == "s2" {
			s2Events = append(s2Events, ev)
		}
	}
	require.Len(t, s2Events, 1)
	assert.Equal(t, StatusFree, s2Events[0].Status)
	assert.Equal(t, 2, s2Events[0].FrameNumber)
}

func TestAnalyzeConfidenceFilter(t *testing.T) {
	lowConf := detAt(0, geometry.FromBBox(0, 0, 1, 1))
	lowConf.Confidence = 0.2

	result, err := Analyze(DefaultConfig(), testSlots(), []Detection{lowConf}, nil)
	require.NoError(t, err)

	require.Len(t, result.Timeline, 1)
	assert.Equal(t, ResultNoDetections, result.Timeline[0].Status)
	assert.Zero(t, result.TotalDetections)
	assert.Empty(t, result.Timeline[0].OccupiedSlotIDs)
}

func TestAnalyzeDetectionSpanningTwoSlots(t *testing.T) {
	slots := []SlotGeometry{
		{ID: "s1", Polygon: geometry.FromBBox(0, 0, 1, 1)},
		{ID: "s2", Polygon: geometry.FromBBox(1, 0, 2, 1)},
	}
	// a wide box covering both slots marks both occupied in the frame,
	// even though MatchSlot would associate it with only one
	wide := detAt(0, geometry.FromBBox(0, 0, 2, 1))

	result, err := Analyze(DefaultConfig(), slots, []Detection{wide}, nil)
	require.NoError(t, err)

	require.Len(t, result.Timeline, 1)
	assert.Equal(t, []string{"s1", "s2"}, result.Timeline[0].OccupiedSlotIDs)
}

func TestProcessFrameOrdering(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), testSlots())

	_, _, err := analyzer.ProcessFrame(FrameInput{FrameNumber: 5})
	require.NoError(t, err)

	t.Run("duplicate frame rejected", func(t *testing.T) {
		_, _, err := analyzer.ProcessFrame(FrameInput{FrameNumber: 5})
		assert.Error(t, err)
	})

	t.Run("regressing frame rejected", func(t *testing.T) {
		_, _, err := analyzer.ProcessFrame(FrameInput{FrameNumber: 3})
		assert.Error(t, err)
	})

	t.Run("gaps are fine", func(t *testing.T) {
		_, _, err := analyzer.ProcessFrame(FrameInput{FrameNumber: 35})
		assert.NoError(t, err)
	})
}

func TestAnalyzeEmptyDetections(t *testing.T) {
	result, err := Analyze(DefaultConfig(), testSlots(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, ResultNoDetections, result.Status)
	assert.Empty(t, result.Timeline)
}

func TestAnalyzerPartialTimelineStaysValid(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), testSlots())

	for frame := 0; frame < 3; frame++ {
		snapshot, _, err := analyzer.ProcessFrame(FrameInput{
			FrameNumber: frame,
			Detections:  []Detection{detAt(frame, geometry.FromBBox(0, 0, 1, 1))},
		})
		require.NoError(t, err)
		assert.Equal(t, snapshot.OccupiedCount+snapshot.FreeCount, len(testSlots()))
	}

	// abandoning the run here still leaves a consistent prefix
	result := analyzer.Result()
	assert.Len(t, result.Timeline, 3)
	for i, snapshot := range result.Timeline {
		assert.Equal(t, i, snapshot.FrameNumber)
	}
}
