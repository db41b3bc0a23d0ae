package models

import "time"

// Camera represents a physical camera whose frames the detector analyzes.
// Slot and lot polygons are defined per camera in its image coordinate space.
type Camera struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
