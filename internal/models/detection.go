package models

import (
	"encoding/json"
	"time"
)

// BBox is an axis-aligned bounding box with top-left (x1,y1) and
// bottom-right (x2,y2) corners.
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// MarshalString serializes the box to its stored JSON form.
func (b BBox) MarshalString() string {
	raw, _ := json.Marshal(b)
	return string(raw)
}

// ParseBBox decodes a stored bbox JSON string. A malformed value yields the
// zero box, which downstream geometry resolves to zero overlap.
func ParseBBox(raw string) BBox {
	var b BBox
	_ = json.Unmarshal([]byte(raw), &b)
	return b
}

// Detection is one raw vehicle observation from the external detector,
// immutable once ingested.
type Detection struct {
	ID       string `json:"id" db:"id"`
	VideoID  string `json:"video_id" db:"video_id"`
	CameraID string `json:"camera_id" db:"camera_id"`

	// Time information
	FrameNumber   int       `json:"frame_number" db:"frame_number"`
	FrameTime     time.Time `json:"frame_time" db:"frame_time"`
	OffsetSeconds float64   `json:"offset_seconds" db:"offset_seconds"`

	// Detection information
	ClassID    int     `json:"class_id" db:"class_id"`
	ClassName  string  `json:"class_name" db:"class_name"`
	Confidence float64 `json:"confidence" db:"confidence"`

	// Bounding box in absolute pixels and normalized [0,1] coordinates.
	// The normalized box shares the slot polygons' coordinate space.
	BBox           BBox `json:"bbox" db:"bbox"`
	BBoxNormalized BBox `json:"bbox_normalized" db:"bbox_normalized"`

	// TrackID is set when the detector runs in tracking mode.
	TrackID *int `json:"track_id,omitempty" db:"track_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DetectionWithSlot is a detection annotated with its best-matching slot.
type DetectionWithSlot struct {
	Detection
	ParkingSlotID   string  `json:"parking_slot_id,omitempty"`
	ParkingSlotName string  `json:"parking_slot_name,omitempty"`
	IoU             float64 `json:"iou,omitempty"`
	IsInSlot        bool    `json:"is_in_slot"`
}

// FrameDetections groups one frame's detections for timeline playback.
type FrameDetections struct {
	FrameNumber   int                 `json:"frame_number"`
	FrameTime     time.Time           `json:"frame_time"`
	OffsetSeconds float64             `json:"offset_seconds"`
	Detections    []DetectionWithSlot `json:"detections"`
	TotalVehicles int                 `json:"total_vehicles"`
}

// ClassStats aggregates detections of one vehicle class.
type ClassStats struct {
	ClassName     string  `json:"class_name"`
	Count         int64   `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`
}

// DetectionFilter represents filter parameters for querying detections.
type DetectionFilter struct {
	VideoID       string  `form:"videoId"`
	CameraID      string  `form:"cameraId"`
	ClassName     string  `form:"className"`
	MinConfidence float64 `form:"minConfidence"`
	Page          int     `form:"page"`
	PageSize      int     `form:"pageSize"`
}
