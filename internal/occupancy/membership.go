package occupancy

import (
	"github.com/parkvision/parking-backend-go/internal/geometry"
)

// ResolveLots assigns each slot to at most one parking lot: the first lot,
// iterating lots by ID ascending, whose containment coverage of the slot
// reaches the threshold. Slots with no qualifying lot are absent from the
// returned map and excluded from lot-level rollups.
//
// The mapping is derived, never stored: callers recompute it whenever slot
// or lot geometry changes.
func ResolveLots(slots []SlotGeometry, lots []LotGeometry, threshold float64) map[string]string {
	orderedLots := SortLots(lots)

	slotToLot := make(map[string]string, len(slots))
	for _, slot := range slots {
		for _, lot := range orderedLots {
			if geometry.Coverage(slot.Polygon, lot.Polygon) >= threshold {
				slotToLot[slot.ID] = lot.ID
				break
			}
		}
	}

	return slotToLot
}
