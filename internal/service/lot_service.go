package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/occupancy"
	"github.com/parkvision/parking-backend-go/internal/repository"
)

// LotService handles parking lot business logic
type LotService struct {
	lotRepo    *repository.LotRepository
	slotRepo   *repository.SlotRepository
	cameraRepo *repository.CameraRepository
	engineCfg  occupancy.Config
}

// NewLotService creates a new lot service
func NewLotService(lotRepo *repository.LotRepository, slotRepo *repository.SlotRepository,
	cameraRepo *repository.CameraRepository, engineCfg occupancy.Config) *LotService {
	return &LotService{
		lotRepo:    lotRepo,
		slotRepo:   slotRepo,
		cameraRepo: cameraRepo,
		engineCfg:  engineCfg.Normalized(),
	}
}

// Create registers a parking lot for a camera
func (s *LotService) Create(cameraID, name, polygon string) (*models.ParkingLot, error) {
	camera, err := s.cameraRepo.GetByID(cameraID)
	if err != nil {
		return nil, err
	}
	if camera == nil {
		return nil, fmt.Errorf("%w: camera %s", ErrNotFound, cameraID)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: lot name is required", ErrInvalidInput)
	}
	if err := validatePolygon(polygon); err != nil {
		return nil, err
	}

	lot := &models.ParkingLot{
		ID:       uuid.NewString(),
		CameraID: cameraID,
		Name:     name,
		Polygon:  polygon,
	}
	if err := s.lotRepo.Create(lot); err != nil {
		return nil, err
	}
	return s.lotRepo.GetByID(lot.ID)
}

// Get retrieves a parking lot by ID
func (s *LotService) Get(id string) (*models.ParkingLot, error) {
	lot, err := s.lotRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: parking lot %s", ErrNotFound, id)
	}
	return lot, nil
}

// ListByCamera retrieves a camera's lots
func (s *LotService) ListByCamera(cameraID string) ([]models.ParkingLot, error) {
	return s.lotRepo.ListByCamera(cameraID)
}

// Update modifies a lot's name and polygon
func (s *LotService) Update(id, name, polygon string) (*models.ParkingLot, error) {
	lot, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		lot.Name = name
	}
	if polygon != "" {
		if err := validatePolygon(polygon); err != nil {
			return nil, err
		}
		lot.Polygon = polygon
	}

	if err := s.lotRepo.Update(lot); err != nil {
		return nil, err
	}
	return s.lotRepo.GetByID(id)
}

// Delete removes a parking lot. Slot membership is derived, so no slot rows
// need touching.
func (s *LotService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.lotRepo.Delete(id)
}

// SlotMembership is one slot's derived lot assignment.
type SlotMembership struct {
	SlotID   string `json:"slot_id"`
	SlotName string `json:"slot_name"`
	LotID    string `json:"lot_id,omitempty"`
	LotName  string `json:"lot_name,omitempty"`
	Assigned bool   `json:"assigned"`
}

// SlotLotMapping resolves which lot each of a camera's slots belongs to,
// by geometric containment.
func (s *LotService) SlotLotMapping(cameraID string) ([]SlotMembership, error) {
	slots, err := s.slotRepo.ListByCamera(cameraID)
	if err != nil {
		return nil, err
	}
	lots, err := s.lotRepo.ListByCamera(cameraID)
	if err != nil {
		return nil, err
	}

	slotGeoms := slotGeometries(slots)
	lotGeoms := lotGeometries(lots)
	slotToLot := occupancy.ResolveLots(slotGeoms, lotGeoms, s.engineCfg.ContainmentThreshold)

	lotName := make(map[string]string, len(lots))
	for _, l := range lots {
		lotName[l.ID] = l.Name
	}

	memberships := make([]SlotMembership, 0, len(slots))
	for _, slot := range slots {
		m := SlotMembership{SlotID: slot.ID, SlotName: slot.Name}
		if lotID, ok := slotToLot[slot.ID]; ok {
			m.LotID = lotID
			m.LotName = lotName[lotID]
			m.Assigned = true
		}
		memberships = append(memberships, m)
	}
	return memberships, nil
}
