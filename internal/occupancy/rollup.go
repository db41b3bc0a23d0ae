package occupancy

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Slot status labels, evaluated high to low so the ranges never overlap.
func SlotStatusLabel(rate float64) string {
	switch {
	case rate > 0.7:
		return "busy"
	case rate > 0.3:
		return "moderate"
	default:
		return "free"
	}
}

// Lot status labels add a "full" tier above busy.
func LotStatusLabel(rate float64) string {
	switch {
	case rate >= 0.95:
		return "full"
	case rate >= 0.7:
		return "busy"
	case rate >= 0.3:
		return "moderate"
	default:
		return "free"
	}
}

// SlotStats summarizes one slot over the analyzed timeline.
type SlotStats struct {
	SlotID         string  `json:"slot_id"`
	SlotName       string  `json:"slot_name"`
	OccupiedFrames int     `json:"occupied_frames"`
	TotalFrames    int     `json:"total_frames"`
	OccupancyRate  float64 `json:"occupancy_rate"`
	Status         string  `json:"status"`
}

// LotStats aggregates the slots resolved to one lot. The lot rate is the
// mean of member-slot occupancy rates, equal weight per slot.
type LotStats struct {
	LotID         string  `json:"lot_id"`
	LotName       string  `json:"lot_name"`
	Capacity      int     `json:"capacity"`
	OccupancyRate float64 `json:"occupancy_rate"`
	Status        string  `json:"status"`
}

// ClassBreakdown is the per-vehicle-class share of all analyzed detections.
type ClassBreakdown struct {
	ClassName     string  `json:"class_name"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// VideoSummary holds video-level aggregates over the whole timeline.
type VideoSummary struct {
	TotalDetections         int     `json:"total_detections"`
	FramesAnalyzed          int     `json:"frames_analyzed"`
	TotalSlots              int     `json:"total_slots"`
	TotalLots               int     `json:"total_lots"`
	AverageOccupancyRate    float64 `json:"average_occupancy_rate"`
	PeakOccupancyRate       float64 `json:"peak_occupancy_rate"`
	AverageVehiclesPerFrame float64 `json:"average_vehicles_per_frame"`
}

// Rollup is the full summary view over one analysis result: slot, lot and
// video level statistics plus the latest processed frame as current status.
type Rollup struct {
	Summary          VideoSummary     `json:"summary"`
	Slots            []SlotStats      `json:"slot_statistics"`
	Lots             []LotStats       `json:"lot_statistics"`
	VehicleBreakdown []ClassBreakdown `json:"vehicle_breakdown"`
	Current          *FrameSnapshot   `json:"current,omitempty"`
}

// BuildRollup computes slot, lot and video rollups from an immutable
// analysis result. It has no hidden state: calling it twice on the same
// result yields identical output. All rate computations guard division by
// zero; an empty timeline or slot set produces zero rates, not an error.
func BuildRollup(result *Result, slots []SlotGeometry, lots []LotGeometry, slotToLot map[string]string) *Rollup {
	orderedSlots := SortSlots(slots)
	totalFrames := len(result.Timeline)

	occupiedFrames := make(map[string]int, len(orderedSlots))
	rates := make([]float64, 0, totalFrames)
	for _, snapshot := range result.Timeline {
		for _, slotID := range snapshot.OccupiedSlotIDs {
			occupiedFrames[slotID]++
		}
		rates = append(rates, snapshot.OccupancyRate)
	}

	slotStats := make([]SlotStats, 0, len(orderedSlots))
	slotRate := make(map[string]float64, len(orderedSlots))
	for _, slot := range orderedSlots {
		rate := 0.0
		if totalFrames > 0 {
			rate = float64(occupiedFrames[slot.ID]) / float64(totalFrames)
		}
		slotRate[slot.ID] = rate
		slotStats = append(slotStats, SlotStats{
			SlotID:         slot.ID,
			SlotName:       slot.Name,
			OccupiedFrames: occupiedFrames[slot.ID],
			TotalFrames:    totalFrames,
			OccupancyRate:  rate,
			Status:         SlotStatusLabel(rate),
		})
	}
	sort.SliceStable(slotStats, func(i, j int) bool {
		return slotStats[i].OccupancyRate > slotStats[j].OccupancyRate
	})

	lotStats := buildLotStats(orderedSlots, lots, slotToLot, slotRate)

	breakdown := buildClassBreakdown(result)

	summary := VideoSummary{
		TotalDetections: result.TotalDetections,
		FramesAnalyzed:  totalFrames,
		TotalSlots:      len(orderedSlots),
		TotalLots:       len(lots),
	}
	if len(rates) > 0 {
		summary.AverageOccupancyRate = stat.Mean(rates, nil)
		summary.PeakOccupancyRate = floats.Max(rates)
	}
	if totalFrames > 0 {
		summary.AverageVehiclesPerFrame = float64(result.TotalDetections) / float64(totalFrames)
	}

	rollup := &Rollup{
		Summary:          summary,
		Slots:            slotStats,
		Lots:             lotStats,
		VehicleBreakdown: breakdown,
	}
	if totalFrames > 0 {
		current := result.Timeline[totalFrames-1]
		rollup.Current = &current
	}

	return rollup
}

func buildLotStats(slots []SlotGeometry, lots []LotGeometry, slotToLot map[string]string, slotRate map[string]float64) []LotStats {
	memberRates := make(map[string][]float64, len(lots))
	for _, slot := range slots {
		lotID, ok := slotToLot[slot.ID]
		if !ok {
			continue
		}
		memberRates[lotID] = append(memberRates[lotID], slotRate[slot.ID])
	}

	lotStats := make([]LotStats, 0, len(lots))
	for _, lot := range SortLots(lots) {
		members := memberRates[lot.ID]
		rate := 0.0
		if len(members) > 0 {
			rate = stat.Mean(members, nil)
		}
		lotStats = append(lotStats, LotStats{
			LotID:         lot.ID,
			LotName:       lot.Name,
			Capacity:      len(members),
			OccupancyRate: rate,
			Status:        LotStatusLabel(rate),
		})
	}
	sort.SliceStable(lotStats, func(i, j int) bool {
		return lotStats[i].OccupancyRate > lotStats[j].OccupancyRate
	})

	return lotStats
}

func buildClassBreakdown(result *Result) []ClassBreakdown {
	breakdown := make([]ClassBreakdown, 0, len(result.classTotals))
	for name, total := range result.classTotals {
		entry := ClassBreakdown{
			ClassName: name,
			Count:     total.Count,
		}
		if result.TotalDetections > 0 {
			entry.Percentage = float64(total.Count) / float64(result.TotalDetections) * 100
		}
		if total.Count > 0 {
			entry.AvgConfidence = total.SumConfidence / float64(total.Count)
		}
		breakdown = append(breakdown, entry)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].ClassName < breakdown[j].ClassName
	})

	return breakdown
}
