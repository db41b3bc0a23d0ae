package models

import "time"

// ParkingLot is a coarser parking zone that may contain several slots.
// Slot membership is derived from geometry, never stored.
type ParkingLot struct {
	ID       string `json:"id" db:"id"`
	CameraID string `json:"camera_id" db:"camera_id"`
	Name     string `json:"name" db:"name"`

	// Polygon is a GeoJSON Polygon geometry stored verbatim.
	Polygon string `json:"polygon" db:"polygon"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
