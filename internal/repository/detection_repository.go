package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/parkvision/parking-backend-go/internal/models"
)

// DetectionRepository handles database operations for vehicle detections
type DetectionRepository struct {
	db *sql.DB
}

// NewDetectionRepository creates a new detection repository
func NewDetectionRepository(db *sql.DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

const detectionColumns = `id, video_id, camera_id, frame_number, frame_time, offset_seconds,
	class_id, class_name, confidence, bbox, bbox_normalized, track_id, created_at`

func scanDetection(row interface{ Scan(...any) error }) (*models.Detection, error) {
	var d models.Detection
	var bbox, bboxNorm string
	err := row.Scan(&d.ID, &d.VideoID, &d.CameraID, &d.FrameNumber, &d.FrameTime,
		&d.OffsetSeconds, &d.ClassID, &d.ClassName, &d.Confidence,
		&bbox, &bboxNorm, &d.TrackID, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.BBox = models.ParseBBox(bbox)
	d.BBoxNormalized = models.ParseBBox(bboxNorm)
	return &d, nil
}

// CreateBatch inserts detections in a single transaction. An empty batch is
// a no-op.
func (r *DetectionRepository) CreateBatch(detections []models.Detection) error {
	if len(detections) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO detections
		(id, video_id, camera_id, frame_number, frame_time, offset_seconds,
		 class_id, class_name, confidence, bbox, bbox_normalized, track_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare detection insert: %w", err)
	}
	defer stmt.Close()

	for i := range detections {
		d := &detections[i]
		_, err := stmt.Exec(d.ID, d.VideoID, d.CameraID, d.FrameNumber, d.FrameTime,
			d.OffsetSeconds, d.ClassID, d.ClassName, d.Confidence,
			d.BBox.MarshalString(), d.BBoxNormalized.MarshalString(), d.TrackID)
		if err != nil {
			return fmt.Errorf("failed to insert detection %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit detections: %w", err)
	}
	return nil
}

// List retrieves detections matching the filter, newest frame first, with
// pagination. Returns the matching rows and the total count.
func (r *DetectionRepository) List(filter models.DetectionFilter) ([]models.Detection, int64, error) {
	var conditions []string
	var args []any

	if filter.VideoID != "" {
		conditions = append(conditions, "video_id = ?")
		args = append(args, filter.VideoID)
	}
	if filter.CameraID != "" {
		conditions = append(conditions, "camera_id = ?")
		args = append(args, filter.CameraID)
	}
	if filter.ClassName != "" {
		conditions = append(conditions, "class_name = ?")
		args = append(args, filter.ClassName)
	}
	if filter.MinConfidence > 0 {
		conditions = append(conditions, "confidence >= ?")
		args = append(args, filter.MinConfidence)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM detections`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count detections: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}

	query := `SELECT ` + detectionColumns + ` FROM detections` + where +
		` ORDER BY frame_number DESC, id ASC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var detections []models.Detection
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, *d)
	}

	return detections, total, rows.Err()
}

// ListByVideo retrieves all of a video's detections in ascending frame order,
// the order the analysis engine consumes them in.
func (r *DetectionRepository) ListByVideo(videoID string) ([]models.Detection, error) {
	query := `SELECT ` + detectionColumns + ` FROM detections
		WHERE video_id = ? ORDER BY frame_number ASC, id ASC`

	rows, err := r.db.Query(query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query video detections: %w", err)
	}
	defer rows.Close()

	var detections []models.Detection
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, *d)
	}

	return detections, rows.Err()
}

// ClassStats aggregates detection counts and confidence per vehicle class
func (r *DetectionRepository) ClassStats(videoID, cameraID string) ([]models.ClassStats, error) {
	var conditions []string
	var args []any
	if videoID != "" {
		conditions = append(conditions, "video_id = ?")
		args = append(args, videoID)
	}
	if cameraID != "" {
		conditions = append(conditions, "camera_id = ?")
		args = append(args, cameraID)
	}

	query := `SELECT class_name, COUNT(*), AVG(confidence), MIN(confidence), MAX(confidence)
		FROM detections`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` GROUP BY class_name ORDER BY COUNT(*) DESC, class_name ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query class stats: %w", err)
	}
	defer rows.Close()

	var stats []models.ClassStats
	for rows.Next() {
		var s models.ClassStats
		if err := rows.Scan(&s.ClassName, &s.Count, &s.AvgConfidence, &s.MinConfidence, &s.MaxConfidence); err != nil {
			return nil, fmt.Errorf("failed to scan class stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// CountByVideo returns the number of detections stored for a video
func (r *DetectionRepository) CountByVideo(videoID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM detections WHERE video_id = ?`, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count video detections: %w", err)
	}
	return count, nil
}
