package occupancy

// Default thresholds for the analysis pipeline.
const (
	DefaultIoUThreshold         = 0.3
	DefaultContainmentThreshold = 0.5
	DefaultConfirmFrames        = 3
	DefaultConfidenceThreshold  = 0.5
)

// Config holds the tunable thresholds of the occupancy engine.
type Config struct {
	// IoUThreshold is the minimum IoU between a detection box and a slot
	// polygon for the slot to count as occupied.
	IoUThreshold float64 `json:"iou_threshold"`

	// ContainmentThreshold is the minimum fraction of a slot's area that
	// must lie inside a lot for the slot to belong to that lot.
	ContainmentThreshold float64 `json:"containment_threshold"`

	// ConfirmFrames is the confirmation window: consecutive agreeing
	// samples required before a slot's reported status changes.
	ConfirmFrames int `json:"confirm_frames"`

	// ConfidenceThreshold drops detections below this detector confidence.
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		IoUThreshold:         DefaultIoUThreshold,
		ContainmentThreshold: DefaultContainmentThreshold,
		ConfirmFrames:        DefaultConfirmFrames,
		ConfidenceThreshold:  DefaultConfidenceThreshold,
	}
}

// Normalized replaces out-of-range values with defaults so a partially
// filled config never breaks an analysis run.
func (c Config) Normalized() Config {
	if c.IoUThreshold <= 0 || c.IoUThreshold > 1 {
		c.IoUThreshold = DefaultIoUThreshold
	}
	if c.ContainmentThreshold <= 0 || c.ContainmentThreshold > 1 {
		c.ContainmentThreshold = DefaultContainmentThreshold
	}
	if c.ConfirmFrames < 1 {
		c.ConfirmFrames = DefaultConfirmFrames
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		c.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	return c
}
