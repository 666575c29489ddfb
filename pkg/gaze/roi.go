package gaze

import (
	"image"
	"time"
)

// ROITracker maintains a sticky square search window around the last
// known pupil position. Two states: Unlocked (search the full frame)
// and Locked (search only the window). A successful detection locks
// and recenters the window; a loss timeout of continuous misses
// unlocks it so a full-frame search can recover after a blink or a
// large eye movement. The window only translates, never resizes.
type ROITracker struct {
	halfSize int
	timeout  time.Duration

	locked   bool
	center   Point
	lastSeen time.Time
}

// NewROITracker creates a tracker with the given window half-size and
// loss timeout. A half-size of 0 disables locking entirely.
func NewROITracker(halfSize int, timeout time.Duration) *ROITracker {
	return &ROITracker{halfSize: halfSize, timeout: timeout}
}

// Window returns the active search window clamped to the frame bounds,
// and whether a window is active. Unlocked means full-frame search.
func (r *ROITracker) Window(frameW, frameH int) (image.Rectangle, bool) {
	if !r.locked {
		return image.Rectangle{}, false
	}
	cx, cy := int(r.center.X), int(r.center.Y)
	win := image.Rect(cx-r.halfSize, cy-r.halfSize, cx+r.halfSize, cy+r.halfSize)
	win = win.Intersect(image.Rect(0, 0, frameW, frameH))
	if win.Empty() {
		return image.Rectangle{}, false
	}
	return win, true
}

// Observe advances the state machine with this frame's outcome: a
// detected center (in full-frame coordinates) or nil for a miss, plus
// the frame timestamp. It returns true when a loss timeout expired on
// this observation, i.e. the tracker just gave up the window.
func (r *ROITracker) Observe(center *Point, ts time.Time) bool {
	if center != nil {
		if r.halfSize > 0 {
			r.locked = true
			r.center = *center
		}
		r.lastSeen = ts
		return false
	}

	if r.locked && ts.Sub(r.lastSeen) >= r.timeout {
		r.locked = false
		return true
	}
	return false
}

// Locked reports whether a search window is active.
func (r *ROITracker) Locked() bool {
	return r.locked
}

// Reset drops the window and returns to full-frame search.
func (r *ROITracker) Reset() {
	r.locked = false
	r.lastSeen = time.Time{}
}
