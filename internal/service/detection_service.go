package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/parkvision/parking-backend-go/internal/geometry"
	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/occupancy"
	"github.com/parkvision/parking-backend-go/internal/repository"
)

// DetectionService handles detection ingestion and timeline views
type DetectionService struct {
	detectionRepo *repository.DetectionRepository
	videoRepo     *repository.VideoRepository
	slotRepo      *repository.SlotRepository
	engineCfg     occupancy.Config
}

// NewDetectionService creates a new detection service
func NewDetectionService(detectionRepo *repository.DetectionRepository, videoRepo *repository.VideoRepository,
	slotRepo *repository.SlotRepository, engineCfg occupancy.Config) *DetectionService {
	return &DetectionService{
		detectionRepo: detectionRepo,
		videoRepo:     videoRepo,
		slotRepo:      slotRepo,
		engineCfg:     engineCfg.Normalized(),
	}
}

// DetectionPayload is one detector observation in an ingest request.
type DetectionPayload struct {
	FrameNumber   int         `json:"frame_number"`
	FrameTime     time.Time   `json:"frame_time"`
	OffsetSeconds float64     `json:"offset_seconds"`
	ClassID       int         `json:"class_id"`
	ClassName     string      `json:"class_name" binding:"required"`
	Confidence    float64     `json:"confidence"`
	BBox          models.BBox `json:"bbox"`
	BBoxNorm      models.BBox `json:"bbox_normalized"`
	TrackID       *int        `json:"track_id,omitempty"`
}

// IngestRequest is a batch of detections produced by the external detector
// for one video.
type IngestRequest struct {
	VideoID    string             `json:"video_id" binding:"required"`
	Detections []DetectionPayload `json:"detections" binding:"required"`
}

// Ingest stores a detector batch. Detections are immutable once written.
func (s *DetectionService) Ingest(req IngestRequest) (int, error) {
	video, err := s.videoRepo.GetByID(req.VideoID)
	if err != nil {
		return 0, err
	}
	if video == nil {
		return 0, fmt.Errorf("%w: video %s", ErrNotFound, req.VideoID)
	}

	detections := make([]models.Detection, 0, len(req.Detections))
	for _, p := range req.Detections {
		if p.FrameNumber < 0 {
			return 0, fmt.Errorf("%w: negative frame number %d", ErrInvalidInput, p.FrameNumber)
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			return 0, fmt.Errorf("%w: confidence %v out of range", ErrInvalidInput, p.Confidence)
		}
		detections = append(detections, models.Detection{
			ID:             uuid.NewString(),
			VideoID:        video.ID,
			CameraID:       video.CameraID,
			FrameNumber:    p.FrameNumber,
			FrameTime:      p.FrameTime,
			OffsetSeconds:  p.OffsetSeconds,
			ClassID:        p.ClassID,
			ClassName:      p.ClassName,
			Confidence:     p.Confidence,
			BBox:           p.BBox,
			BBoxNormalized: p.BBoxNorm,
			TrackID:        p.TrackID,
		})
	}

	if err := s.detectionRepo.CreateBatch(detections); err != nil {
		return 0, err
	}
	return len(detections), nil
}

// List retrieves detections matching the filter with pagination
func (s *DetectionService) List(filter models.DetectionFilter) ([]models.Detection, int64, error) {
	return s.detectionRepo.List(filter)
}

// ClassStats aggregates detection counts per vehicle class
func (s *DetectionService) ClassStats(videoID, cameraID string) ([]models.ClassStats, error) {
	return s.detectionRepo.ClassStats(videoID, cameraID)
}

// FrameTimeline groups a video's detections per frame, each annotated with
// its best-matching slot.
func (s *DetectionService) FrameTimeline(videoID string) ([]models.FrameDetections, error) {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
	}

	detections, err := s.detectionRepo.ListByVideo(videoID)
	if err != nil {
		return nil, err
	}
	slots, err := s.slotRepo.ListByCamera(video.CameraID)
	if err != nil {
		return nil, err
	}
	slotGeoms := occupancy.SortSlots(slotGeometries(slots))

	byFrame := make(map[int]*models.FrameDetections)
	for _, d := range detections {
		fd, ok := byFrame[d.FrameNumber]
		if !ok {
			fd = &models.FrameDetections{
				FrameNumber:   d.FrameNumber,
				FrameTime:     d.FrameTime,
				OffsetSeconds: d.OffsetSeconds,
			}
			byFrame[d.FrameNumber] = fd
		}

		annotated := models.DetectionWithSlot{Detection: d}
		box := geometry.FromBBox(d.BBoxNormalized.X1, d.BBoxNormalized.Y1, d.BBoxNormalized.X2, d.BBoxNormalized.Y2)
		if match, ok := occupancy.MatchSlot(box, slotGeoms, s.engineCfg.IoUThreshold); ok {
			annotated.ParkingSlotID = match.SlotID
			annotated.ParkingSlotName = match.SlotName
			annotated.IoU = match.IoU
			annotated.IsInSlot = true
		}
		fd.Detections = append(fd.Detections, annotated)
		fd.TotalVehicles++
	}

	frames := make([]models.FrameDetections, 0, len(byFrame))
	for _, fd := range byFrame {
		frames = append(frames, *fd)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].FrameNumber < frames[j].FrameNumber })
	return frames, nil
}
