package service

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"github.com/parkvision/parking-backend-go/internal/geometry"
	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/repository"
)

// SlotService handles parking slot business logic
type SlotService struct {
	slotRepo   *repository.SlotRepository
	cameraRepo *repository.CameraRepository
}

// NewSlotService creates a new slot service
func NewSlotService(slotRepo *repository.SlotRepository, cameraRepo *repository.CameraRepository) *SlotService {
	return &SlotService{slotRepo: slotRepo, cameraRepo: cameraRepo}
}

// Create registers a parking slot for a camera
func (s *SlotService) Create(cameraID, name, polygon string) (*models.ParkingSlot, error) {
	camera, err := s.cameraRepo.GetByID(cameraID)
	if err != nil {
		return nil, err
	}
	if camera == nil {
		return nil, fmt.Errorf("%w: camera %s", ErrNotFound, cameraID)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: slot name is required", ErrInvalidInput)
	}
	if err := validatePolygon(polygon); err != nil {
		return nil, err
	}

	slot := &models.ParkingSlot{
		ID:       uuid.NewString(),
		CameraID: cameraID,
		Name:     name,
		Polygon:  polygon,
	}
	if err := s.slotRepo.Create(slot); err != nil {
		return nil, err
	}
	return s.slotRepo.GetByID(slot.ID)
}

// Get retrieves a parking slot by ID
func (s *SlotService) Get(id string) (*models.ParkingSlot, error) {
	slot, err := s.slotRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, fmt.Errorf("%w: parking slot %s", ErrNotFound, id)
	}
	return slot, nil
}

// ListByCamera retrieves a camera's slots
func (s *SlotService) ListByCamera(cameraID string) ([]models.ParkingSlot, error) {
	return s.slotRepo.ListByCamera(cameraID)
}

// Update modifies a slot's name and polygon
func (s *SlotService) Update(id, name, polygon string) (*models.ParkingSlot, error) {
	slot, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		slot.Name = name
	}
	if polygon != "" {
		if err := validatePolygon(polygon); err != nil {
			return nil, err
		}
		slot.Polygon = polygon
	}

	if err := s.slotRepo.Update(slot); err != nil {
		return nil, err
	}
	return s.slotRepo.GetByID(id)
}

// Delete removes a parking slot
func (s *SlotService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.slotRepo.Delete(id)
}

// SlotAtPoint returns the camera's slot containing the given point, or nil
// when the point falls outside every slot. Slots are checked in ID order so
// overlapping geometry resolves deterministically.
func (s *SlotService) SlotAtPoint(cameraID string, x, y float64) (*models.ParkingSlot, error) {
	slots, err := s.slotRepo.ListByCamera(cameraID)
	if err != nil {
		return nil, err
	}

	pt := r2.Point{X: x, Y: y}
	for i := range slots {
		if geometry.FromGeoJSON(slots[i].Polygon).Contains(pt) {
			return &slots[i], nil
		}
	}
	return nil, nil
}
