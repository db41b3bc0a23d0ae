package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/repository"
)

// CameraService handles camera business logic
type CameraService struct {
	cameraRepo *repository.CameraRepository
}

// NewCameraService creates a new camera service
func NewCameraService(cameraRepo *repository.CameraRepository) *CameraService {
	return &CameraService{cameraRepo: cameraRepo}
}

// Create registers a new camera
func (s *CameraService) Create(name, description string) (*models.Camera, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: camera name is required", ErrInvalidInput)
	}

	camera := &models.Camera{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.cameraRepo.Create(camera); err != nil {
		return nil, err
	}
	return s.cameraRepo.GetByID(camera.ID)
}

// Get retrieves a camera by ID
func (s *CameraService) Get(id string) (*models.Camera, error) {
	camera, err := s.cameraRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if camera == nil {
		return nil, fmt.Errorf("%w: camera %s", ErrNotFound, id)
	}
	return camera, nil
}

// List retrieves all cameras
func (s *CameraService) List() ([]models.Camera, error) {
	return s.cameraRepo.List()
}

// Update modifies a camera's name and description
func (s *CameraService) Update(id, name, description string) (*models.Camera, error) {
	camera, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		camera.Name = name
	}
	camera.Description = strings.TrimSpace(description)

	if err := s.cameraRepo.Update(camera); err != nil {
		return nil, err
	}
	return s.cameraRepo.GetByID(id)
}

// Delete removes a camera and all dependent data
func (s *CameraService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.cameraRepo.Delete(id)
}
