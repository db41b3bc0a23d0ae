package occupancy

// Tracker smooths per-slot instantaneous occupancy samples over a bounded
// window so single-frame detector flicker does not flip reported status.
// A status is confirmed only when the last ConfirmFrames samples all agree,
// and a confirmation is emitted once, on the update where the window first
// becomes uniform.
//
// Tracker state is scoped to one video-processing run and must not be
// shared or persisted across runs. It is not safe for concurrent use; the
// engine performs a single sequential pass per video.
type Tracker struct {
	confirmFrames int
	windows       map[string][]bool
	confirmed     map[string]Status
}

// NewTracker creates a tracker with the given confirmation window.
// Values below 1 fall back to the default window.
func NewTracker(confirmFrames int) *Tracker {
	if confirmFrames < 1 {
		confirmFrames = DefaultConfirmFrames
	}
	return &Tracker{
		confirmFrames: confirmFrames,
		windows:       make(map[string][]bool),
		confirmed:     make(map[string]Status),
	}
}

// Update appends one instantaneous sample for a slot and reports whether a
// confirmed status change occurred. While the window is still filling, or
// the samples are mixed, or the confirmed status is unchanged, the second
// return value is false.
func (t *Tracker) Update(slotID string, isOccupied bool) (Status, bool) {
	window := append(t.windows[slotID], isOccupied)
	if len(window) > t.confirmFrames {
		window = window[1:]
	}
	t.windows[slotID] = window

	if len(window) < t.confirmFrames {
		return "", false
	}

	allTrue, allFalse := true, true
	for _, v := range window {
		if v {
			allFalse = false
		} else {
			allTrue = false
		}
	}

	var next Status
	switch {
	case allTrue:
		next = StatusOccupied
	case allFalse:
		next = StatusFree
	default:
		return "", false
	}

	if t.confirmed[slotID] == next {
		return "", false
	}
	t.confirmed[slotID] = next
	return next, true
}

// Confirmed returns the last confirmed status for a slot, or false if none
// has been confirmed yet.
func (t *Tracker) Confirmed(slotID string) (Status, bool) {
	s, ok := t.confirmed[slotID]
	return s, ok
}
