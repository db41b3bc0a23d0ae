package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkvision/parking-backend-go/internal/geometry"
)

func TestMatchSlot(t *testing.T) {
	slots := []SlotGeometry{
		{ID: "a", Name: "A1", Polygon: geometry.FromBBox(0, 0, 1, 1)},
		{ID: "b", Name: "A2", Polygon: geometry.FromBBox(1, 0, 2, 1)},
		{ID: "c", Name: "A3", Polygon: geometry.FromBBox(2, 0, 3, 1)},
	}

	t.Run("exact overlap picks that slot", func(t *testing.T) {
		match, ok := MatchSlot(geometry.FromBBox(1, 0, 2, 1), slots, 0.3)
		require.True(t, ok)
		assert.Equal(t, "b", match.SlotID)
		assert.InDelta(t, 1.0, match.IoU, 1e-9)
	})

	t.Run("best slot wins among overlapping candidates", func(t *testing.T) {
		// 75% over slot b, 25% over slot c
		match, ok := MatchSlot(geometry.FromBBox(1.25, 0, 2.25, 1), slots, 0.3)
		require.True(t, ok)
		assert.Equal(t, "b", match.SlotID)

		// the winner's IoU dominates every other candidate
		for _, slot := range slots {
			assert.GreaterOrEqual(t, match.IoU, geometry.IoU(geometry.FromBBox(1.25, 0, 2.25, 1), slot.Polygon))
		}
	})

	t.Run("below threshold is no match", func(t *testing.T) {
		_, ok := MatchSlot(geometry.FromBBox(0.9, 0, 1.9, 1), slots, 0.9)
		assert.False(t, ok)
	})

	t.Run("tie breaks to lowest slot id", func(t *testing.T) {
		// detection centered on the a/b boundary overlaps both equally
		det := geometry.FromBBox(0.5, 0, 1.5, 1)
		match, ok := MatchSlot(det, slots, 0.1)
		require.True(t, ok)
		assert.Equal(t, "a", match.SlotID)

		// order of the input slice must not matter
		reversed := []SlotGeometry{slots[2], slots[1], slots[0]}
		match2, ok := MatchSlot(det, reversed, 0.1)
		require.True(t, ok)
		assert.Equal(t, match.SlotID, match2.SlotID)
	})

	t.Run("empty slot set", func(t *testing.T) {
		_, ok := MatchSlot(geometry.FromBBox(0, 0, 1, 1), nil, 0.3)
		assert.False(t, ok)
	})

	t.Run("degenerate detection polygon", func(t *testing.T) {
		_, ok := MatchSlot(geometry.Polygon{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}, slots, 0.3)
		assert.False(t, ok)
	})
}

func TestResolveLots(t *testing.T) {
	slots := []SlotGeometry{
		{ID: "s1", Polygon: geometry.FromBBox(1, 1, 2, 2)},
		{ID: "s2", Polygon: geometry.FromBBox(11, 1, 12, 2)},
		{ID: "s3", Polygon: geometry.FromBBox(50, 50, 51, 51)},
	}
	lots := []LotGeometry{
		{ID: "west", Polygon: geometry.FromBBox(0, 0, 10, 10)},
		{ID: "east", Polygon: geometry.FromBBox(10, 0, 20, 10)},
	}

	t.Run("containment assigns each slot to one lot", func(t *testing.T) {
		mapping := ResolveLots(slots, lots, 0.5)
		assert.Equal(t, "west", mapping["s1"])
		assert.Equal(t, "east", mapping["s2"])
	})

	t.Run("uncontained slot is unassigned", func(t *testing.T) {
		mapping := ResolveLots(slots, lots, 0.5)
		_, ok := mapping["s3"]
		assert.False(t, ok)
	})

	t.Run("first qualifying lot by id order wins", func(t *testing.T) {
		overlapping := []LotGeometry{
			{ID: "zone-b", Polygon: geometry.FromBBox(0, 0, 10, 10)},
			{ID: "zone-a", Polygon: geometry.FromBBox(0, 0, 10, 10)},
		}
		mapping := ResolveLots(slots[:1], overlapping, 0.5)
		assert.Equal(t, "zone-a", mapping["s1"])
	})

	t.Run("slot straddling a boundary follows the threshold", func(t *testing.T) {
		straddle := []SlotGeometry{{ID: "sx", Polygon: geometry.FromBBox(9.5, 1, 10.5, 2)}}
		// exactly half in each lot; coverage 0.5 meets the default threshold
		mapping := ResolveLots(straddle, lots, 0.5)
		assert.Equal(t, "east", mapping["sx"]) // "east" < "west"

		mapping = ResolveLots(straddle, lots, 0.6)
		assert.Empty(t, mapping)
	})

	t.Run("no lots defined", func(t *testing.T) {
		assert.Empty(t, ResolveLots(slots, nil, 0.5))
	})

	t.Run("concave lot resolves by true shape", func(t *testing.T) {
		// 20x20 square with the (10,10)-(20,20) quadrant cut away.
		lShaped := []LotGeometry{{ID: "row-l", Polygon: geometry.Polygon{
			{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10},
			{X: 10, Y: 10}, {X: 10, Y: 20}, {X: 0, Y: 20},
		}}}
		members := []SlotGeometry{
			{ID: "in-arm", Polygon: geometry.FromBBox(2, 12, 4, 14)},
			{ID: "in-notch", Polygon: geometry.FromBBox(12, 12, 14, 14)},
		}

		mapping := ResolveLots(members, lShaped, 0.5)
		assert.Equal(t, "row-l", mapping["in-arm"])
		_, ok := mapping["in-notch"]
		assert.False(t, ok)
	})
}
