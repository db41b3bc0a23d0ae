package models

import "time"

// ParkingSlot is an individual parking space, drawn as a polygon in the
// same normalized coordinate space as detection boxes.
type ParkingSlot struct {
	ID       string `json:"id" db:"id"`
	CameraID string `json:"camera_id" db:"camera_id"`
	Name     string `json:"name" db:"name"`

	// Polygon is a GeoJSON Polygon geometry stored verbatim.
	Polygon string `json:"polygon" db:"polygon"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
