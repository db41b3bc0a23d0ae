package repository

import (
	"database/sql"
	"fmt"

	"github.com/parkvision/parking-backend-go/internal/models"
)

// LotRepository handles database operations for parking lots
type LotRepository struct {
	db *sql.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *sql.DB) *LotRepository {
	return &LotRepository{db: db}
}

// Create inserts a new parking lot
func (r *LotRepository) Create(lot *models.ParkingLot) error {
	query := `INSERT INTO parking_lots (id, camera_id, name, polygon) VALUES (?, ?, ?, ?)`
	if _, err := r.db.Exec(query, lot.ID, lot.CameraID, lot.Name, lot.Polygon); err != nil {
		return fmt.Errorf("failed to create parking lot: %w", err)
	}
	return nil
}

// GetByID retrieves a parking lot by ID, returning nil when not found
func (r *LotRepository) GetByID(id string) (*models.ParkingLot, error) {
	query := `SELECT id, camera_id, name, polygon, created_at, updated_at FROM parking_lots WHERE id = ?`

	var l models.ParkingLot
	err := r.db.QueryRow(query, id).Scan(&l.ID, &l.CameraID, &l.Name, &l.Polygon, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parking lot: %w", err)
	}
	return &l, nil
}

// ListByCamera retrieves a camera's lots ordered by ID for deterministic
// membership resolution.
func (r *LotRepository) ListByCamera(cameraID string) ([]models.ParkingLot, error) {
	query := `SELECT id, camera_id, name, polygon, created_at, updated_at
		FROM parking_lots WHERE camera_id = ? ORDER BY id ASC`

	rows, err := r.db.Query(query, cameraID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parking lots: %w", err)
	}
	defer rows.Close()

	var lots []models.ParkingLot
	for rows.Next() {
		var l models.ParkingLot
		if err := rows.Scan(&l.ID, &l.CameraID, &l.Name, &l.Polygon, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan parking lot: %w", err)
		}
		lots = append(lots, l)
	}

	return lots, rows.Err()
}

// Update modifies a lot's name and polygon
func (r *LotRepository) Update(lot *models.ParkingLot) error {
	query := `UPDATE parking_lots SET name = ?, polygon = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := r.db.Exec(query, lot.Name, lot.Polygon, lot.ID)
	if err != nil {
		return fmt.Errorf("failed to update parking lot: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a parking lot
func (r *LotRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM parking_lots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete parking lot: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
