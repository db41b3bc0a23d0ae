// Package occupancy turns per-frame vehicle detections into parking slot
// occupancy: instantaneous per-frame snapshots, temporally smoothed status
// change events, and slot/lot/video level rollups. The package is storage
// agnostic; callers feed it plain data and persist what comes out.
package occupancy

import (
	"time"

	"github.com/parkvision/parking-backend-go/internal/geometry"
)

// Result status values surfaced at the aggregation boundary. Missing
// reference data is a result variant callers branch on, not an error.
const (
	ResultOK           = "ok"
	ResultNoSlots      = "no_slots"
	ResultNoDetections = "no_detections"
)

// Status is a confirmed slot state emitted by the Tracker.
type Status string

const (
	StatusOccupied Status = "occupied"
	StatusFree     Status = "free"
)

// SlotGeometry is one parking slot's polygon in the detection coordinate space.
type SlotGeometry struct {
	ID      string
	Name    string
	Polygon geometry.Polygon
}

// LotGeometry is a parking lot (zone) polygon that may contain several slots.
type LotGeometry struct {
	ID      string
	Name    string
	Polygon geometry.Polygon
}

// Detection is one vehicle observation from the external detector.
type Detection struct {
	FrameNumber   int
	FrameTime     time.Time
	OffsetSeconds float64
	ClassName     string
	Confidence    float64
	Polygon       geometry.Polygon
}

// Match is the slot association chosen for a single detection.
type Match struct {
	SlotID   string
	SlotName string
	IoU      float64
}

// FrameSnapshot is the per-frame occupancy verdict, immutable after
// construction. Frames sampled without any detection are reported with
// Status no_detections instead of being dropped.
type FrameSnapshot struct {
	FrameNumber     int            `json:"frame_number"`
	FrameTime       time.Time      `json:"frame_time"`
	OffsetSeconds   float64        `json:"offset_seconds"`
	Status          string         `json:"status"`
	OccupiedSlotIDs []string       `json:"occupied_slot_ids"`
	FreeSlotIDs     []string       `json:"free_slot_ids"`
	OccupiedCount   int            `json:"occupied_count"`
	FreeCount       int            `json:"free_count"`
	OccupancyRate   float64        `json:"occupancy_rate"`
	TotalDetections int            `json:"total_detections"`
	ClassCounts     map[string]int `json:"class_counts,omitempty"`
}

// Event is a confirmed status transition for one slot, suitable for
// persistence as an audit trail.
type Event struct {
	SlotID        string    `json:"slot_id"`
	FrameNumber   int       `json:"frame_number"`
	FrameTime     time.Time `json:"frame_time"`
	OffsetSeconds float64   `json:"offset_seconds"`
	Status        Status    `json:"status"`
}

// classTotal accumulates per-class detection counts for the rollup stage.
type classTotal struct {
	Count         int
	SumConfidence float64
}

// Result is the outcome of analyzing one video's detection sequence.
// Timeline is ordered by frame number and read-only after analysis.
type Result struct {
	Status          string          `json:"status"`
	Timeline        []FrameSnapshot `json:"timeline"`
	Events          []Event         `json:"events"`
	TotalDetections int             `json:"total_detections"`

	classTotals map[string]*classTotal
}
