package models

import "time"

// OccupancyEvent is a confirmed slot status transition, persisted as the
// audit trail of temporal smoothing.
type OccupancyEvent struct {
	ID            string    `json:"id" db:"id"`
	VideoID       string    `json:"video_id" db:"video_id"`
	CameraID      string    `json:"camera_id" db:"camera_id"`
	ParkingSlotID string    `json:"parking_slot_id" db:"parking_slot_id"`
	ParkingLotID  string    `json:"parking_lot_id,omitempty" db:"parking_lot_id"`
	FrameNumber   int       `json:"frame_number" db:"frame_number"`
	FrameTime     time.Time `json:"frame_time" db:"frame_time"`
	OffsetSeconds float64   `json:"offset_seconds" db:"offset_seconds"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Event status constants.
const (
	EventStatusOccupied = "occupied"
	EventStatusFree     = "free"
	EventStatusUnknown  = "unknown"
)

// EventFilter represents filter parameters for querying occupancy events.
type EventFilter struct {
	CameraID      string `form:"cameraId"`
	VideoID       string `form:"videoId"`
	ParkingLotID  string `form:"parkingLotId"`
	ParkingSlotID string `form:"parkingSlotId"`
	Status        string `form:"status"`
	Page          int    `form:"page"`
	PageSize      int    `form:"pageSize"`
}

// CurrentOccupancy is the latest-event summary across a slot set.
type CurrentOccupancy struct {
	TotalSlots    int       `json:"total_slots"`
	OccupiedSlots int       `json:"occupied_slots"`
	FreeSlots     int       `json:"free_slots"`
	UnknownSlots  int       `json:"unknown_slots"`
	OccupancyRate float64   `json:"occupancy_rate"`
	Timestamp     time.Time `json:"timestamp"`
}
