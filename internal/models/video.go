package models

import "time"

// Video represents one uploaded video file and its processing lifecycle.
type Video struct {
	ID       string `json:"id" db:"id"`
	CameraID string `json:"camera_id" db:"camera_id"`
	Filename string `json:"filename" db:"filename"`

	UploadTime      time.Time  `json:"upload_time" db:"upload_time"`
	VideoStartTime  *time.Time `json:"video_start_time,omitempty" db:"video_start_time"`
	DurationSeconds float64    `json:"duration_seconds,omitempty" db:"duration_seconds"`
	FPS             float64    `json:"fps,omitempty" db:"fps"`

	// Processing status
	Processed            bool       `json:"processed" db:"processed"`
	ProcessingStartedAt  *time.Time `json:"processing_started_at,omitempty" db:"processing_started_at"`
	ProcessingFinishedAt *time.Time `json:"processing_finished_at,omitempty" db:"processing_finished_at"`
	ProcessingError      string     `json:"processing_error,omitempty" db:"processing_error"`
	RunID                string     `json:"run_id,omitempty" db:"run_id"`
}

// VideoProcessingStatus is the status view returned while an analysis run
// is pending or in flight.
type VideoProcessingStatus struct {
	VideoID              string     `json:"video_id"`
	Processed            bool       `json:"processed"`
	ProcessingStartedAt  *time.Time `json:"processing_started_at,omitempty"`
	ProcessingFinishedAt *time.Time `json:"processing_finished_at,omitempty"`
	ProcessingError      string     `json:"processing_error,omitempty"`
	RunID                string     `json:"run_id,omitempty"`
	RunState             string     `json:"run_state,omitempty"`
	DetectionCount       int64      `json:"detection_count"`
}
