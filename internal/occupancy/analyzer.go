package occupancy

import (
	"fmt"
	"sort"
	"time"

	"github.com/parkvision/parking-backend-go/internal/geometry"
)

// FrameInput carries all detections observed in one sampled frame.
type FrameInput struct {
	FrameNumber   int
	FrameTime     time.Time
	OffsetSeconds float64
	Detections    []Detection
}

// Analyzer performs the sequential per-video occupancy pass: per-frame
// matching, snapshot construction and temporal smoothing. Frames must be
// processed in strictly ascending frame order; the tracker's window
// semantics depend on it, so a misordered frame is an error rather than a
// silently wrong answer.
type Analyzer struct {
	cfg       Config
	slots     []SlotGeometry
	tracker   *Tracker
	lastFrame int
	result    *Result
}

// NewAnalyzer creates an analyzer over a fixed slot set. Slot geometry is
// immutable for the duration of a run.
func NewAnalyzer(cfg Config, slots []SlotGeometry) *Analyzer {
	cfg = cfg.Normalized()
	return &Analyzer{
		cfg:       cfg,
		slots:     SortSlots(slots),
		tracker:   NewTracker(cfg.ConfirmFrames),
		lastFrame: -1,
		result: &Result{
			Status:      ResultOK,
			classTotals: make(map[string]*classTotal),
		},
	}
}

// ProcessFrame ingests one frame, appends its snapshot to the timeline and
// returns any confirmed status change events it produced.
func (a *Analyzer) ProcessFrame(frame FrameInput) (FrameSnapshot, []Event, error) {
	if frame.FrameNumber <= a.lastFrame {
		return FrameSnapshot{}, nil, fmt.Errorf(
			"frame %d not after frame %d: frames must be processed in ascending order",
			frame.FrameNumber, a.lastFrame)
	}
	a.lastFrame = frame.FrameNumber

	occupied := make(map[string]bool, len(a.slots))
	classCounts := make(map[string]int)
	analyzed := 0

	for _, det := range frame.Detections {
		if det.Confidence < a.cfg.ConfidenceThreshold {
			continue
		}
		analyzed++

		classCounts[det.ClassName]++
		total := a.result.classTotals[det.ClassName]
		if total == nil {
			total = &classTotal{}
			a.result.classTotals[det.ClassName] = total
		}
		total.Count++
		total.SumConfidence += det.Confidence

		// Every detection is checked against every slot independently:
		// one vehicle box straddling two slots can mark both occupied.
		for _, slot := range a.slots {
			if occupied[slot.ID] {
				continue
			}
			if geometry.IoU(det.Polygon, slot.Polygon) >= a.cfg.IoUThreshold {
				occupied[slot.ID] = true
			}
		}
	}

	snapshot := FrameSnapshot{
		FrameNumber:     frame.FrameNumber,
		FrameTime:       frame.FrameTime,
		OffsetSeconds:   frame.OffsetSeconds,
		Status:          ResultOK,
		TotalDetections: analyzed,
	}
	if analyzed == 0 {
		snapshot.Status = ResultNoDetections
	} else {
		snapshot.ClassCounts = classCounts
	}

	for _, slot := range a.slots {
		if occupied[slot.ID] {
			snapshot.OccupiedSlotIDs = append(snapshot.OccupiedSlotIDs, slot.ID)
		} else {
			snapshot.FreeSlotIDs = append(snapshot.FreeSlotIDs, slot.ID)
		}
	}
	snapshot.OccupiedCount = len(snapshot.OccupiedSlotIDs)
	snapshot.FreeCount = len(snapshot.FreeSlotIDs)
	if len(a.slots) > 0 {
		snapshot.OccupancyRate = float64(snapshot.OccupiedCount) / float64(len(a.slots))
	}

	var events []Event
	for _, slot := range a.slots {
		status, changed := a.tracker.Update(slot.ID, occupied[slot.ID])
		if !changed {
			continue
		}
		events = append(events, Event{
			SlotID:        slot.ID,
			FrameNumber:   frame.FrameNumber,
			FrameTime:     frame.FrameTime,
			OffsetSeconds: frame.OffsetSeconds,
			Status:        status,
		})
	}

	a.result.Timeline = append(a.result.Timeline, snapshot)
	a.result.Events = append(a.result.Events, events...)
	a.result.TotalDetections += analyzed

	return snapshot, events, nil
}

// Result returns the accumulated analysis outcome. Each snapshot in the
// timeline is independently consistent, so a run aborted between frames
// still leaves a valid partial timeline.
func (a *Analyzer) Result() *Result {
	if len(a.result.Timeline) == 0 && a.result.Status == ResultOK {
		a.result.Status = ResultNoDetections
	}
	return a.result
}

// Analyze runs the whole pipeline over a finite detection sequence.
// Detections are grouped by frame number and processed in ascending order.
// sampledFrames optionally lists every frame the upstream sampler visited,
// so frames where the detector saw nothing still appear in the timeline
// with an explicit no_detections status.
//
// An empty slot set yields a Result with Status no_slots; callers must
// branch on it rather than expect an error.
func Analyze(cfg Config, slots []SlotGeometry, detections []Detection, sampledFrames []int) (*Result, error) {
	if len(slots) == 0 {
		return &Result{Status: ResultNoSlots}, nil
	}

	byFrame := make(map[int][]Detection)
	for _, det := range detections {
		byFrame[det.FrameNumber] = append(byFrame[det.FrameNumber], det)
	}

	frameSet := make(map[int]bool, len(byFrame))
	for frame := range byFrame {
		frameSet[frame] = true
	}
	for _, frame := range sampledFrames {
		frameSet[frame] = true
	}

	frames := make([]int, 0, len(frameSet))
	for frame := range frameSet {
		frames = append(frames, frame)
	}
	sort.Ints(frames)

	analyzer := NewAnalyzer(cfg, slots)
	for _, frame := range frames {
		input := FrameInput{FrameNumber: frame, Detections: byFrame[frame]}
		if dets := byFrame[frame]; len(dets) > 0 {
			input.FrameTime = dets[0].FrameTime
			input.OffsetSeconds = dets[0].OffsetSeconds
		}
		if _, _, err := analyzer.ProcessFrame(input); err != nil {
			return nil, err
		}
	}

	return analyzer.Result(), nil
}
