// Package gaze implements webcam pupil tracking with per-user gaze
// calibration. A Tracker runs the per-frame pipeline (ROI-restricted
// pupil detection, temporal smoothing), a Calibrator collects samples
// over five on-screen targets, and a Mapper converts pupil-space
// coordinates to screen-space via a least-squares affine fit.
package gaze

import (
	"image"
	"time"

	"gocv.io/x/gocv"
)

// Point is a 2D coordinate. Pupil-space points are in camera-frame
// pixels; screen-space points are in display pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the point translated by the given offsets.
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Detection is a single pupil candidate produced by the Detector.
// The center is relative to the region the detector searched.
type Detection struct {
	Center     Point
	Confidence float64 // roundness score in [0,1]
	Area       float64 // contour area in pixels
}

// Result is the per-frame output of the Tracker.
type Result struct {
	// Pupil is the smoothed pupil center in frame pixels, nil on a miss.
	Pupil *Point `json:"pupil,omitempty"`

	// Gaze is the mapped screen point, nil before calibration or on a miss.
	Gaze *Point `json:"gaze,omitempty"`

	// Confidence of the raw detection behind this result, 0 on a miss.
	Confidence float64 `json:"confidence"`

	// ROI is the active search window after this step, nil when the
	// tracker is searching the full frame.
	ROI *image.Rectangle `json:"roi,omitempty"`
}

// FrameSource supplies successive BGR frames. Next fills dst (owned by
// the caller, reused across calls) and returns the frame timestamp.
// The sequence is effectively infinite; a non-nil error is fatal to
// the session, transient misses are not errors.
type FrameSource interface {
	Next(dst *gocv.Mat) (time.Time, error)
}

// TargetDisplay is the UI boundary for calibration. The environment
// must keep the target visible until ClearTarget is called.
type TargetDisplay interface {
	ShowTarget(name string, screen Point)
	ClearTarget()
}
