package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/parkvision/parking-backend-go/internal/models"
)

// VideoRepository handles database operations for videos
type VideoRepository struct {
	db *sql.DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `id, camera_id, filename, upload_time, video_start_time,
	duration_seconds, fps, processed, processing_started_at,
	processing_finished_at, processing_error, run_id`

func scanVideo(row interface{ Scan(...any) error }) (*models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.CameraID, &v.Filename, &v.UploadTime, &v.VideoStartTime,
		&v.DurationSeconds, &v.FPS, &v.Processed, &v.ProcessingStartedAt,
		&v.ProcessingFinishedAt, &v.ProcessingError, &v.RunID)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create registers a new video
func (r *VideoRepository) Create(video *models.Video) error {
	query := `INSERT INTO videos (id, camera_id, filename, upload_time, video_start_time, duration_seconds, fps)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, video.ID, video.CameraID, video.Filename,
		video.UploadTime, video.VideoStartTime, video.DurationSeconds, video.FPS)
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// GetByID retrieves a video by ID, returning nil when not found
func (r *VideoRepository) GetByID(id string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`
	v, err := scanVideo(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return v, nil
}

// List retrieves videos, optionally restricted to one camera
func (r *VideoRepository) List(cameraID string) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos`
	var args []any
	if cameraID != "" {
		query += ` WHERE camera_id = ?`
		args = append(args, cameraID)
	}
	query += ` ORDER BY upload_time DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, *v)
	}

	return videos, rows.Err()
}

// MarkProcessingStarted records the start of an analysis run and clears any
// previous outcome so the status view reflects the run in flight.
func (r *VideoRepository) MarkProcessingStarted(id, runID string, at time.Time) error {
	query := `UPDATE videos SET processed = 0, processing_started_at = ?,
		processing_finished_at = NULL, processing_error = '', run_id = ? WHERE id = ?`
	result, err := r.db.Exec(query, at, runID, id)
	if err != nil {
		return fmt.Errorf("failed to mark processing started: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkProcessingFinished records the outcome of an analysis run. A non-empty
// processingError leaves the video unprocessed. The update is scoped to the
// run that did the work: once a newer run has claimed the video, the stale
// finish matches no row and returns sql.ErrNoRows instead of overwriting the
// newer run's state.
func (r *VideoRepository) MarkProcessingFinished(id, runID string, at time.Time, processingError string) error {
	processed := 0
	if processingError == "" {
		processed = 1
	}
	query := `UPDATE videos SET processed = ?, processing_finished_at = ?, processing_error = ?
		WHERE id = ? AND run_id = ?`
	result, err := r.db.Exec(query, processed, at, processingError, id, runID)
	if err != nil {
		return fmt.Errorf("failed to mark processing finished: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a video and, by cascade, its detections and events
func (r *VideoRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// LatestProcessedForCamera returns the most recently uploaded processed video
// of a camera, or nil when none has completed analysis.
func (r *VideoRepository) LatestProcessedForCamera(cameraID string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos
		WHERE camera_id = ? AND processed = 1 ORDER BY upload_time DESC LIMIT 1`
	v, err := scanVideo(r.db.QueryRow(query, cameraID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest processed video: %w", err)
	}
	return v, nil
}
