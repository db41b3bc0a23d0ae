package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parkvision/parking-backend-go/internal/geometry"
	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/occupancy"
	"github.com/parkvision/parking-backend-go/internal/repository"
)

// Run states reported while an analysis run is in flight.
const (
	RunStatePending   = "pending"
	RunStateRunning   = "running"
	RunStateCompleted = "completed"
	RunStateFailed    = "failed"
)

// eventBatchSize bounds how many confirmed events one transaction writes,
// so a crash mid-run loses at most one batch.
const eventBatchSize = 200

// AnalysisRun tracks one in-process occupancy analysis of a video.
type AnalysisRun struct {
	RunID      string     `json:"run_id"`
	VideoID    string     `json:"video_id"`
	State      string     `json:"state"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	EventCount int        `json:"event_count"`
}

// AnalysisService runs the occupancy engine over stored detections and
// persists what comes out. Runs execute on background goroutines; the
// in-memory registry answers status queries until the next restart, after
// which the videos table remains the durable record.
type AnalysisService struct {
	videoRepo     *repository.VideoRepository
	slotRepo      *repository.SlotRepository
	lotRepo       *repository.LotRepository
	detectionRepo *repository.DetectionRepository
	eventRepo     *repository.EventRepository
	engineCfg     occupancy.Config

	mu      sync.Mutex
	runs    map[string]*AnalysisRun // keyed by run ID
	byVideo map[string]string       // video ID -> active run ID
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(videoRepo *repository.VideoRepository, slotRepo *repository.SlotRepository,
	lotRepo *repository.LotRepository, detectionRepo *repository.DetectionRepository,
	eventRepo *repository.EventRepository, engineCfg occupancy.Config) *AnalysisService {
	return &AnalysisService{
		videoRepo:     videoRepo,
		slotRepo:      slotRepo,
		lotRepo:       lotRepo,
		detectionRepo: detectionRepo,
		eventRepo:     eventRepo,
		engineCfg:     engineCfg.Normalized(),
		runs:          make(map[string]*AnalysisRun),
		byVideo:       make(map[string]string),
	}
}

// Config returns the normalized engine configuration in use.
func (s *AnalysisService) Config() occupancy.Config {
	return s.engineCfg
}

// Start launches an analysis run for a video. At most one run per video may
// be in flight; a second request while one is active is a conflict.
func (s *AnalysisService) Start(videoID string) (*AnalysisRun, error) {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
	}

	s.mu.Lock()
	if activeID, ok := s.byVideo[videoID]; ok {
		active := s.runs[activeID]
		s.mu.Unlock()
		return active, fmt.Errorf("%w: analysis run %s already in flight for video %s", ErrConflict, activeID, videoID)
	}
	run := &AnalysisRun{
		RunID:     uuid.NewString(),
		VideoID:   videoID,
		State:     RunStatePending,
		StartedAt: time.Now().UTC(),
	}
	s.runs[run.RunID] = run
	s.byVideo[videoID] = run.RunID
	s.mu.Unlock()

	if err := s.videoRepo.MarkProcessingStarted(videoID, run.RunID, run.StartedAt); err != nil {
		s.clearRun(run, RunStateFailed, err.Error(), 0)
		return nil, err
	}

	go s.execute(run, video)

	return s.snapshotRun(run.RunID), nil
}

// Run returns a registry snapshot for a run ID, or nil when unknown.
func (s *AnalysisService) Run(runID string) *AnalysisRun {
	return s.snapshotRun(runID)
}

// Status reports a video's processing state, merging the durable video row
// with the in-memory run registry.
func (s *AnalysisService) Status(videoID string) (*models.VideoProcessingStatus, error) {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
	}

	detectionCount, err := s.detectionRepo.CountByVideo(videoID)
	if err != nil {
		return nil, err
	}

	status := &models.VideoProcessingStatus{
		VideoID:              video.ID,
		Processed:            video.Processed,
		ProcessingStartedAt:  video.ProcessingStartedAt,
		ProcessingFinishedAt: video.ProcessingFinishedAt,
		ProcessingError:      video.ProcessingError,
		RunID:                video.RunID,
		DetectionCount:       detectionCount,
	}
	if run := s.snapshotRun(video.RunID); run != nil {
		status.RunState = run.State
	}
	return status, nil
}

func (s *AnalysisService) snapshotRun(runID string) *AnalysisRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil
	}
	copied := *run
	return &copied
}

func (s *AnalysisService) clearRun(run *AnalysisRun, state, errMsg string, eventCount int) {
	now := time.Now().UTC()
	s.mu.Lock()
	run.State = state
	run.Error = errMsg
	run.EventCount = eventCount
	run.FinishedAt = &now
	delete(s.byVideo, run.VideoID)
	s.mu.Unlock()
}

// execute is the background body of one analysis run.
func (s *AnalysisService) execute(run *AnalysisRun, video *models.Video) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("analysis run %s panicked: %v", run.RunID, p)
			s.finish(run, video.ID, 0, fmt.Errorf("analysis panicked: %v", p))
		}
	}()

	s.mu.Lock()
	run.State = RunStateRunning
	s.mu.Unlock()

	eventCount, err := s.analyze(run, video)
	s.finish(run, video.ID, eventCount, err)
}

func (s *AnalysisService) finish(run *AnalysisRun, videoID string, eventCount int, runErr error) {
	errMsg := ""
	state := RunStateCompleted
	if runErr != nil {
		errMsg = runErr.Error()
		state = RunStateFailed
		log.Printf("analysis run %s for video %s failed: %v", run.RunID, videoID, runErr)
	} else {
		log.Printf("analysis run %s for video %s completed with %d events", run.RunID, videoID, eventCount)
	}

	// Clear the registry before the durable flag flips so a caller observing
	// the finished video can immediately start the next run. The finish write
	// is scoped to this run's ID; once a newer run has claimed the video it
	// matches no row, and the stale outcome is dropped rather than recorded.
	s.clearRun(run, state, errMsg, eventCount)
	err := s.videoRepo.MarkProcessingFinished(videoID, run.RunID, time.Now().UTC(), errMsg)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		log.Printf("analysis run %s for video %s superseded by a newer run", run.RunID, videoID)
	case err != nil:
		log.Printf("failed to record analysis outcome for video %s: %v", videoID, err)
	}
}

// analyze loads reference data and detections, runs the engine and persists
// confirmed events in fixed-size batches.
func (s *AnalysisService) analyze(run *AnalysisRun, video *models.Video) (int, error) {
	slots, err := s.slotRepo.ListByCamera(video.CameraID)
	if err != nil {
		return 0, err
	}
	lots, err := s.lotRepo.ListByCamera(video.CameraID)
	if err != nil {
		return 0, err
	}
	detections, err := s.detectionRepo.ListByVideo(video.ID)
	if err != nil {
		return 0, err
	}

	slotGeoms := slotGeometries(slots)
	lotGeoms := lotGeometries(lots)
	inputs := engineDetections(detections)

	result, err := occupancy.Analyze(s.engineCfg, slotGeoms, inputs, nil)
	if err != nil {
		return 0, err
	}
	if result.Status != occupancy.ResultOK {
		log.Printf("analysis run %s: video %s produced no events (%s)", run.RunID, video.ID, result.Status)
	}

	slotToLot := occupancy.ResolveLots(slotGeoms, lotGeoms, s.engineCfg.ContainmentThreshold)

	// Re-analysis replaces the previous run's trail wholesale.
	if err := s.eventRepo.DeleteByVideo(video.ID); err != nil {
		return 0, err
	}

	batch := make([]models.OccupancyEvent, 0, eventBatchSize)
	persisted := 0
	for _, ev := range result.Events {
		batch = append(batch, models.OccupancyEvent{
			ID:            uuid.NewString(),
			VideoID:       video.ID,
			CameraID:      video.CameraID,
			ParkingSlotID: ev.SlotID,
			ParkingLotID:  slotToLot[ev.SlotID],
			FrameNumber:   ev.FrameNumber,
			FrameTime:     ev.FrameTime,
			OffsetSeconds: ev.OffsetSeconds,
			Status:        string(ev.Status),
		})
		if len(batch) == eventBatchSize {
			if err := s.eventRepo.CreateBatch(batch); err != nil {
				return persisted, err
			}
			persisted += len(batch)
			batch = batch[:0]
		}
	}
	if err := s.eventRepo.CreateBatch(batch); err != nil {
		return persisted, err
	}
	persisted += len(batch)

	return persisted, nil
}

// VideoAnalytics is the full analytics view for one video.
type VideoAnalytics struct {
	VideoID  string            `json:"video_id"`
	CameraID string            `json:"camera_id"`
	Config   occupancy.Config  `json:"config"`
	Result   *occupancy.Result `json:"result"`
	Rollup   *occupancy.Rollup `json:"rollup"`
}

// Analytics recomputes the full occupancy analysis for a video. The engine
// pass is deterministic and cheap relative to storage, so views recompute
// from detections instead of persisting timelines.
func (s *AnalysisService) Analytics(videoID string) (*VideoAnalytics, error) {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
	}

	slots, err := s.slotRepo.ListByCamera(video.CameraID)
	if err != nil {
		return nil, err
	}
	lots, err := s.lotRepo.ListByCamera(video.CameraID)
	if err != nil {
		return nil, err
	}
	detections, err := s.detectionRepo.ListByVideo(videoID)
	if err != nil {
		return nil, err
	}

	slotGeoms := slotGeometries(slots)
	lotGeoms := lotGeometries(lots)

	result, err := occupancy.Analyze(s.engineCfg, slotGeoms, engineDetections(detections), nil)
	if err != nil {
		return nil, err
	}
	slotToLot := occupancy.ResolveLots(slotGeoms, lotGeoms, s.engineCfg.ContainmentThreshold)

	return &VideoAnalytics{
		VideoID:  video.ID,
		CameraID: video.CameraID,
		Config:   s.engineCfg,
		Result:   result,
		Rollup:   occupancy.BuildRollup(result, slotGeoms, lotGeoms, slotToLot),
	}, nil
}

// SlotCurrentStatus is one slot's latest confirmed state.
type SlotCurrentStatus struct {
	SlotID        string     `json:"slot_id"`
	SlotName      string     `json:"slot_name"`
	Status        string     `json:"status"`
	LotID         string     `json:"lot_id,omitempty"`
	FrameTime     *time.Time `json:"frame_time,omitempty"`
	OffsetSeconds float64    `json:"offset_seconds,omitempty"`
}

// CameraStatus is the camera-wide current occupancy view.
type CameraStatus struct {
	CameraID string                  `json:"camera_id"`
	Summary  models.CurrentOccupancy `json:"summary"`
	Slots    []SlotCurrentStatus     `json:"slots"`
}

// CurrentStatus reports each slot's latest confirmed state for a camera,
// taken from the most recently uploaded processed video. Slots with no
// persisted events yet, or cameras with no processed video, report status
// unknown.
func (s *AnalysisService) CurrentStatus(cameraID string) (*CameraStatus, error) {
	slots, err := s.slotRepo.ListByCamera(cameraID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latestConfirmed(cameraID)
	if err != nil {
		return nil, err
	}

	status := &CameraStatus{
		CameraID: cameraID,
		Slots:    make([]SlotCurrentStatus, 0, len(slots)),
	}
	status.Summary.TotalSlots = len(slots)
	status.Summary.Timestamp = time.Now().UTC()

	for _, slot := range slots {
		cur := SlotCurrentStatus{
			SlotID:   slot.ID,
			SlotName: slot.Name,
			Status:   models.EventStatusUnknown,
		}
		if ev, ok := latest[slot.ID]; ok {
			cur.Status = ev.Status
			cur.LotID = ev.ParkingLotID
			t := ev.FrameTime
			cur.FrameTime = &t
			cur.OffsetSeconds = ev.OffsetSeconds
		}
		switch cur.Status {
		case models.EventStatusOccupied:
			status.Summary.OccupiedSlots++
		case models.EventStatusFree:
			status.Summary.FreeSlots++
		default:
			status.Summary.UnknownSlots++
		}
		status.Slots = append(status.Slots, cur)
	}

	known := status.Summary.OccupiedSlots + status.Summary.FreeSlots
	if known > 0 {
		status.Summary.OccupancyRate = float64(status.Summary.OccupiedSlots) / float64(known)
	}
	return status, nil
}

// latestConfirmed loads the per-slot latest events from the camera's most
// recently uploaded processed video. With no processed video there is
// nothing confirmed to report, so every slot reads as unknown.
func (s *AnalysisService) latestConfirmed(cameraID string) (map[string]models.OccupancyEvent, error) {
	video, err := s.videoRepo.LatestProcessedForCamera(cameraID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return map[string]models.OccupancyEvent{}, nil
	}
	return s.eventRepo.LatestPerSlot(cameraID, video.ID)
}

// LotCurrentStatus is one lot's current occupancy derived from the latest
// per-slot events.
type LotCurrentStatus struct {
	LotID         string  `json:"lot_id"`
	LotName       string  `json:"lot_name"`
	Capacity      int     `json:"capacity"`
	OccupiedSlots int     `json:"occupied_slots"`
	FreeSlots     int     `json:"free_slots"`
	UnknownSlots  int     `json:"unknown_slots"`
	OccupancyRate float64 `json:"occupancy_rate"`
	Status        string  `json:"status"`
}

// LotsStatus reports current occupancy per lot. Unknown slots count toward
// capacity but not toward the rate.
func (s *AnalysisService) LotsStatus(cameraID string) ([]LotCurrentStatus, error) {
	slots, err := s.slotRepo.ListByCamera(cameraID)
	if err != nil {
		return nil, err
	}
	lots, err := s.lotRepo.ListByCamera(cameraID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latestConfirmed(cameraID)
	if err != nil {
		return nil, err
	}

	slotGeoms := slotGeometries(slots)
	lotGeoms := occupancy.SortLots(lotGeometries(lots))
	slotToLot := occupancy.ResolveLots(slotGeoms, lotGeoms, s.engineCfg.ContainmentThreshold)

	byLot := make(map[string]*LotCurrentStatus, len(lotGeoms))
	out := make([]LotCurrentStatus, 0, len(lotGeoms))
	for _, lot := range lotGeoms {
		byLot[lot.ID] = &LotCurrentStatus{LotID: lot.ID, LotName: lot.Name}
	}

	for _, slot := range slots {
		lotID, ok := slotToLot[slot.ID]
		if !ok {
			continue
		}
		ls := byLot[lotID]
		ls.Capacity++
		switch ev, ok := latest[slot.ID]; {
		case ok && ev.Status == models.EventStatusOccupied:
			ls.OccupiedSlots++
		case ok && ev.Status == models.EventStatusFree:
			ls.FreeSlots++
		default:
			ls.UnknownSlots++
		}
	}

	for _, lot := range lotGeoms {
		ls := byLot[lot.ID]
		if known := ls.OccupiedSlots + ls.FreeSlots; known > 0 {
			ls.OccupancyRate = float64(ls.OccupiedSlots) / float64(known)
		}
		ls.Status = occupancy.LotStatusLabel(ls.OccupancyRate)
		out = append(out, *ls)
	}
	return out, nil
}

// engineDetections converts stored detection rows to engine inputs. Boxes
// use the normalized coordinate space shared with slot polygons.
func engineDetections(detections []models.Detection) []occupancy.Detection {
	out := make([]occupancy.Detection, 0, len(detections))
	for _, d := range detections {
		out = append(out, occupancy.Detection{
			FrameNumber:   d.FrameNumber,
			FrameTime:     d.FrameTime,
			OffsetSeconds: d.OffsetSeconds,
			ClassName:     d.ClassName,
			Confidence:    d.Confidence,
			Polygon:       geometry.FromBBox(d.BBoxNormalized.X1, d.BBoxNormalized.Y1, d.BBoxNormalized.X2, d.BBoxNormalized.Y2),
		})
	}
	return out
}
