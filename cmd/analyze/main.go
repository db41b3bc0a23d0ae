// Command analyze runs the occupancy engine without the HTTP layer: either
// over JSON exports for threshold tuning, or against the database to process
// stored videos (-db with -video or -pending).
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/parkvision/parking-backend-go/internal/database"
	"github.com/parkvision/parking-backend-go/internal/geometry"
	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/occupancy"
	"github.com/parkvision/parking-backend-go/internal/repository"
	"github.com/parkvision/parking-backend-go/internal/service"
)

type geometryFile struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Polygon json.RawMessage `json:"polygon"`
}

type detectionFile struct {
	FrameNumber   int         `json:"frame_number"`
	FrameTime     time.Time   `json:"frame_time"`
	OffsetSeconds float64     `json:"offset_seconds"`
	ClassName     string      `json:"class_name"`
	Confidence    float64     `json:"confidence"`
	BBoxNorm      models.BBox `json:"bbox_normalized"`
}

type output struct {
	Config    occupancy.Config  `json:"config"`
	SlotToLot map[string]string `json:"slot_to_lot,omitempty"`
	Result    *occupancy.Result `json:"result"`
	Rollup    *occupancy.Rollup `json:"rollup"`
}

func main() {
	var (
		slotsPath      = flag.String("slots", "", "path to slot geometry JSON")
		lotsPath       = flag.String("lots", "", "path to lot geometry JSON")
		detectionsPath = flag.String("detections", "", "path to detections JSON")
		dbPath         = flag.String("db", "", "sqlite database path (database mode)")
		videoID        = flag.String("video", "", "video ID to analyze (database mode)")
		pending        = flag.Bool("pending", false, "analyze every unprocessed video (database mode)")
		iou            = flag.Float64("iou", occupancy.DefaultIoUThreshold, "IoU threshold for slot occupancy")
		containment    = flag.Float64("containment", occupancy.DefaultContainmentThreshold, "containment threshold for lot membership")
		confirm        = flag.Int("confirm", occupancy.DefaultConfirmFrames, "consecutive frames to confirm a status change")
		confidence     = flag.Float64("confidence", occupancy.DefaultConfidenceThreshold, "minimum detector confidence")
	)
	flag.Parse()

	cfg := occupancy.Config{
		IoUThreshold:         *iou,
		ContainmentThreshold: *containment,
		ConfirmFrames:        *confirm,
		ConfidenceThreshold:  *confidence,
	}.Normalized()

	if *dbPath != "" {
		runDatabaseMode(*dbPath, *videoID, *pending, cfg)
		return
	}

	if *slotsPath == "" || *detectionsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	slots := loadSlots(*slotsPath)
	var lots []occupancy.LotGeometry
	if *lotsPath != "" {
		lots = loadLots(*lotsPath)
	}
	detections := loadDetections(*detectionsPath)

	result, err := occupancy.Analyze(cfg, slots, detections, nil)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}
	slotToLot := occupancy.ResolveLots(slots, lots, cfg.ContainmentThreshold)

	out := output{
		Config:    cfg,
		SlotToLot: slotToLot,
		Result:    result,
		Rollup:    occupancy.BuildRollup(result, slots, lots, slotToLot),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}
}

// runDatabaseMode analyzes stored videos through the same service path the
// server uses, then waits for the background runs to finish.
func runDatabaseMode(dbPath, videoID string, pending bool, cfg occupancy.Config) {
	if videoID == "" && !pending {
		log.Fatal("database mode needs -video or -pending")
	}

	if err := database.Init(database.Config{Path: dbPath}); err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()
	if err := database.NewMigrationManager(database.GetDB()).Migrate(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	db := database.GetDB()
	videoRepo := repository.NewVideoRepository(db)
	analysis := service.NewAnalysisService(
		videoRepo,
		repository.NewSlotRepository(db),
		repository.NewLotRepository(db),
		repository.NewDetectionRepository(db),
		repository.NewEventRepository(db),
		cfg,
	)

	var targets []string
	if videoID != "" {
		targets = append(targets, videoID)
	} else {
		videos, err := videoRepo.List("")
		if err != nil {
			log.Fatalf("failed to list videos: %v", err)
		}
		for _, v := range videos {
			if !v.Processed {
				targets = append(targets, v.ID)
			}
		}
		if len(targets) == 0 {
			log.Println("no unprocessed videos")
			return
		}
	}

	for _, id := range targets {
		run, err := analysis.Start(id)
		if err != nil {
			log.Fatalf("failed to start analysis for video %s: %v", id, err)
		}
		status := waitForRun(analysis, id)
		if status.ProcessingError != "" {
			log.Fatalf("video %s: analysis failed: %s", id, status.ProcessingError)
		}
		log.Printf("video %s: run %s completed", id, run.RunID)
	}
}

func waitForRun(analysis *service.AnalysisService, videoID string) *models.VideoProcessingStatus {
	for {
		status, err := analysis.Status(videoID)
		if err != nil {
			log.Fatalf("failed to read status for video %s: %v", videoID, err)
		}
		if status.ProcessingFinishedAt != nil {
			return status
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func loadSlots(path string) []occupancy.SlotGeometry {
	var raw []geometryFile
	readJSON(path, &raw)

	slots := make([]occupancy.SlotGeometry, 0, len(raw))
	for _, g := range raw {
		poly := geometry.FromGeoJSON(string(g.Polygon))
		if len(poly) < 3 {
			log.Fatalf("slot %s: polygon is not a valid GeoJSON Polygon", g.ID)
		}
		slots = append(slots, occupancy.SlotGeometry{ID: g.ID, Name: g.Name, Polygon: poly})
	}
	return slots
}

func loadLots(path string) []occupancy.LotGeometry {
	var raw []geometryFile
	readJSON(path, &raw)

	lots := make([]occupancy.LotGeometry, 0, len(raw))
	for _, g := range raw {
		poly := geometry.FromGeoJSON(string(g.Polygon))
		if len(poly) < 3 {
			log.Fatalf("lot %s: polygon is not a valid GeoJSON Polygon", g.ID)
		}
		lots = append(lots, occupancy.LotGeometry{ID: g.ID, Name: g.Name, Polygon: poly})
	}
	return lots
}

func loadDetections(path string) []occupancy.Detection {
	var raw []detectionFile
	readJSON(path, &raw)

	detections := make([]occupancy.Detection, 0, len(raw))
	for _, d := range raw {
		b := d.BBoxNorm
		detections = append(detections, occupancy.Detection{
			FrameNumber:   d.FrameNumber,
			FrameTime:     d.FrameTime,
			OffsetSeconds: d.OffsetSeconds,
			ClassName:     d.ClassName,
			Confidence:    d.Confidence,
			Polygon:       geometry.FromBBox(b.X1, b.Y1, b.X2, b.Y2),
		})
	}
	return detections
}

func readJSON(path string, v any) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Fatalf("failed to parse %s: %v", path, err)
	}
}
