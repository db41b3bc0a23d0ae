package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/parkvision/parking-backend-go/internal/database"
	"github.com/parkvision/parking-backend-go/internal/models"
)

// EventRepository handles database operations for occupancy events
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, video_id, camera_id, parking_slot_id, parking_lot_id,
	frame_number, frame_time, offset_seconds, status, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.OccupancyEvent, error) {
	var e models.OccupancyEvent
	err := row.Scan(&e.ID, &e.VideoID, &e.CameraID, &e.ParkingSlotID, &e.ParkingLotID,
		&e.FrameNumber, &e.FrameTime, &e.OffsetSeconds, &e.Status, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateBatch inserts events atomically. The analysis pipeline calls it once
// per frame batch so partial runs never leave a torn batch behind.
func (r *EventRepository) CreateBatch(events []models.OccupancyEvent) error {
	if len(events) == 0 {
		return nil
	}

	return database.TransactionOn(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO occupancy_events
			(id, video_id, camera_id, parking_slot_id, parking_lot_id,
			 frame_number, frame_time, offset_seconds, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare event insert: %w", err)
		}
		defer stmt.Close()

		for i := range events {
			e := &events[i]
			_, err := stmt.Exec(e.ID, e.VideoID, e.CameraID, e.ParkingSlotID, e.ParkingLotID,
				e.FrameNumber, e.FrameTime, e.OffsetSeconds, e.Status)
			if err != nil {
				return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// GetByID retrieves an occupancy event by ID, returning nil when not found
func (r *EventRepository) GetByID(id string) (*models.OccupancyEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM occupancy_events WHERE id = ?`
	e, err := scanEvent(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// List retrieves events matching the filter in frame order, with pagination.
// Returns the matching rows and the total count.
func (r *EventRepository) List(filter models.EventFilter) ([]models.OccupancyEvent, int64, error) {
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
	if filter.ParkingLotID != "" {
		conditions = append(conditions, "parking_lot_id = ?")
		args = append(args, filter.ParkingLotID)
	}
	if filter.ParkingSlotID != "" {
		conditions = append(conditions, "parking_slot_id = ?")
		args = append(args, filter.ParkingSlotID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM occupancy_events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}

	query := `SELECT ` + eventColumns + ` FROM occupancy_events` + where +
		` ORDER BY frame_number ASC, parking_slot_id ASC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.OccupancyEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}

	return events, total, rows.Err()
}

// LatestPerSlot returns each slot's most recent event from one video in a
// single query, keyed by slot ID. Slots with no events are absent. Scoping
// to a video keeps the current-status views anchored to the latest fully
// processed analysis instead of mixing runs across uploads.
func (r *EventRepository) LatestPerSlot(cameraID, videoID string) (map[string]models.OccupancyEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM occupancy_events e
		WHERE camera_id = ? AND video_id = ? AND NOT EXISTS (
			SELECT 1 FROM occupancy_events newer
			WHERE newer.parking_slot_id = e.parking_slot_id
			  AND newer.video_id = e.video_id
			  AND (newer.frame_time > e.frame_time
			       OR (newer.frame_time = e.frame_time AND newer.id > e.id))
		)`

	rows, err := r.db.Query(query, cameraID, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest events: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]models.OccupancyEvent)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		latest[e.ParkingSlotID] = *e
	}

	return latest, rows.Err()
}

// DeleteByVideo removes all events of one analysis source, used when a video
// is re-analyzed so stale transitions never mix with the fresh run.
func (r *EventRepository) DeleteByVideo(videoID string) error {
	if _, err := r.db.Exec(`DELETE FROM occupancy_events WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("failed to delete video events: %w", err)
	}
	return nil
}
