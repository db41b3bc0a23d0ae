package repository

import (
	"database/sql"
	"fmt"

	"github.com/parkvision/parking-backend-go/internal/models"
)

// CameraRepository handles database operations for cameras
type CameraRepository struct {
	db *sql.DB
}

// NewCameraRepository creates a new camera repository
func NewCameraRepository(db *sql.DB) *CameraRepository {
	return &CameraRepository{db: db}
}

// Create inserts a new camera
func (r *CameraRepository) Create(camera *models.Camera) error {
	query := `INSERT INTO cameras (id, name, description) VALUES (?, ?, ?)`
	if _, err := r.db.Exec(query, camera.ID, camera.Name, camera.Description); err != nil {
		return fmt.Errorf("failed to create camera: %w", err)
	}
	return nil
}

// GetByID retrieves a camera by ID, returning nil when not found
func (r *CameraRepository) GetByID(id string) (*models.Camera, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM cameras WHERE id = ?`

	var c models.Camera
	err := r.db.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get camera: %w", err)
	}
	return &c, nil
}

// List retrieves all cameras ordered by creation time
func (r *CameraRepository) List() ([]models.Camera, error) {
	rows, err := r.db.Query(`SELECT id, name, description, created_at, updated_at FROM cameras ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cameras: %w", err)
	}
	defer rows.Close()

	var cameras []models.Camera
	for rows.Next() {
		var c models.Camera
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		cameras = append(cameras, c)
	}

	return cameras, rows.Err()
}

// Update modifies a camera's name and description
func (r *CameraRepository) Update(camera *models.Camera) error {
	query := `UPDATE cameras SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := r.db.Exec(query, camera.Name, camera.Description, camera.ID)
	if err != nil {
		return fmt.Errorf("failed to update camera: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a camera and, by cascade, its geometry, videos and events
func (r *CameraRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM cameras WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete camera: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
