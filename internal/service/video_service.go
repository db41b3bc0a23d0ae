package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/repository"
)

// VideoService handles video registration and lifecycle
type VideoService struct {
	videoRepo  *repository.VideoRepository
	cameraRepo *repository.CameraRepository
}

// NewVideoService creates a new video service
func NewVideoService(videoRepo *repository.VideoRepository, cameraRepo *repository.CameraRepository) *VideoService {
	return &VideoService{videoRepo: videoRepo, cameraRepo: cameraRepo}
}

// RegisterVideoInput is the payload for registering a processed video.
type RegisterVideoInput struct {
	CameraID        string     `json:"camera_id" binding:"required"`
	Filename        string     `json:"filename" binding:"required"`
	VideoStartTime  *time.Time `json:"video_start_time,omitempty"`
	DurationSeconds float64    `json:"duration_seconds,omitempty"`
	FPS             float64    `json:"fps,omitempty"`
}

// Register records a video whose frames the external detector has analyzed
// or is about to analyze.
func (s *VideoService) Register(in RegisterVideoInput) (*models.Video, error) {
	camera, err := s.cameraRepo.GetByID(in.CameraID)
	if err != nil {
		return nil, err
	}
	if camera == nil {
		return nil, fmt.Errorf("%w: camera %s", ErrNotFound, in.CameraID)
	}
	if strings.TrimSpace(in.Filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	if in.DurationSeconds < 0 || in.FPS < 0 {
		return nil, fmt.Errorf("%w: duration and fps must be non-negative", ErrInvalidInput)
	}

	video := &models.Video{
		ID:              uuid.NewString(),
		CameraID:        in.CameraID,
		Filename:        strings.TrimSpace(in.Filename),
		UploadTime:      time.Now().UTC(),
		VideoStartTime:  in.VideoStartTime,
		DurationSeconds: in.DurationSeconds,
		FPS:             in.FPS,
	}
	if err := s.videoRepo.Create(video); err != nil {
		return nil, err
	}
	return s.videoRepo.GetByID(video.ID)
}

// Get retrieves a video by ID
func (s *VideoService) Get(id string) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %s", ErrNotFound, id)
	}
	return video, nil
}

// List retrieves videos, optionally restricted to one camera
func (s *VideoService) List(cameraID string) ([]models.Video, error) {
	return s.videoRepo.List(cameraID)
}

// Delete removes a video and all detections and events derived from it
func (s *VideoService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.videoRepo.Delete(id)
}
