package repository

import (
	"database/sql"
	"fmt"

	"github.com/parkvision/parking-backend-go/internal/models"
)

// SlotRepository handles database operations for parking slots
type SlotRepository struct {
	db *sql.DB
}

// NewSlotRepository creates a new slot repository
func NewSlotRepository(db *sql.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Create inserts a new parking slot
func (r *SlotRepository) Create(slot *models.ParkingSlot) error {
	query := `INSERT INTO parking_slots (id, camera_id, name, polygon) VALUES (?, ?, ?, ?)`
	if _, err := r.db.Exec(query, slot.ID, slot.CameraID, slot.Name, slot.Polygon); err != nil {
		return fmt.Errorf("failed to create parking slot: %w", err)
	}
	return nil
}

// GetByID retrieves a parking slot by ID, returning nil when not found
func (r *SlotRepository) GetByID(id string) (*models.ParkingSlot, error) {
	query := `SELECT id, camera_id, name, polygon, created_at, updated_at FROM parking_slots WHERE id = ?`

	var s models.ParkingSlot
	err := r.db.QueryRow(query, id).Scan(&s.ID, &s.CameraID, &s.Name, &s.Polygon, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parking slot: %w", err)
	}
	return &s, nil
}

// ListByCamera retrieves a camera's slots ordered by ID for deterministic
// downstream matching.
func (r *SlotRepository) ListByCamera(cameraID string) ([]models.ParkingSlot, error) {
	query := `SELECT id, camera_id, name, polygon, created_at, updated_at
		FROM parking_slots WHERE camera_id = ? ORDER BY id ASC`

	rows, err := r.db.Query(query, cameraID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parking slots: %w", err)
	}
	defer rows.Close()

	var slots []models.ParkingSlot
	for rows.Next() {
		var s models.ParkingSlot
		if err := rows.Scan(&s.ID, &s.CameraID, &s.Name, &s.Polygon, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan parking slot: %w", err)
		}
		slots = append(slots, s)
	}

	return slots, rows.Err()
}

// Update modifies a slot's name and polygon
func (r *SlotRepository) Update(slot *models.ParkingSlot) error {
	query := `UPDATE parking_slots SET name = ?, polygon = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := r.db.Exec(query, slot.Name, slot.Polygon, slot.ID)
	if err != nil {
		return fmt.Errorf("failed to update parking slot: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a parking slot
func (r *SlotRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM parking_slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete parking slot: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
