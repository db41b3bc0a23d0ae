package occupancy

import (
	"sort"

	"github.com/parkvision/parking-backend-go/internal/geometry"
)

// SortSlots orders slots by ID ascending. Matching iterates slots in this
// order, which makes the tie-break deterministic: among slots sharing the
// maximum IoU the lowest ID wins.
func SortSlots(slots []SlotGeometry) []SlotGeometry {
	out := append([]SlotGeometry(nil), slots...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortLots orders lots by ID ascending, the stable iteration order used by
// lot membership resolution.
func SortLots(lots []LotGeometry) []LotGeometry {
	out := append([]LotGeometry(nil), lots...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MatchSlot picks the slot with the strictly greatest IoU against the
// detection polygon, accepting it only when that IoU reaches the threshold.
// A detection matches at most one slot; the choice is greedy per detection
// and independent of other detections in the frame.
func MatchSlot(det geometry.Polygon, slots []SlotGeometry, threshold float64) (Match, bool) {
	var best Match
	for _, slot := range SortSlots(slots) {
		iou := geometry.IoU(det, slot.Polygon)
		if iou > best.IoU {
			best = Match{SlotID: slot.ID, SlotName: slot.Name, IoU: iou}
		}
	}

	if best.SlotID == "" || best.IoU < threshold {
		return Match{}, false
	}
	return best, true
}
