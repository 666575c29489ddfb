package gaze

import (
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/debug"
)

// Tracker wires the per-frame pipeline: ROI window → pupil detection →
// temporal smoothing → (after calibration) gaze mapping. One frame at
// a time, strictly sequential; Step never blocks beyond the cost of
// the pipeline on the given frame.
//
// A Tracker owns its ROI window and smoothing buffer. It is not safe
// for concurrent use; callers sharing one instance across goroutines
// must synchronize externally.
type Tracker struct {
	cfg Config

	detector *Detector
	roi      *ROITracker
	smoother *Smoother
	mapper   *Mapper

	framesProcessed int
	framesDetected  int
}

// NewTracker creates a tracker with the given configuration. Call
// Close to release the detector's native resources.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:      cfg,
		detector: NewDetector(cfg),
		roi:      NewROITracker(cfg.ROIHalfSize, cfg.LossTimeout),
		smoother: NewSmoother(cfg.SmoothWindow),
		mapper:   NewMapper(),
	}
}

// Step processes one frame and returns the per-frame result. The frame
// is owned by the caller for the duration of the call and never
// retained. ts is the frame timestamp used for loss-timeout logic.
//
// A detection miss is an expected outcome, not an error: the result
// carries a nil Pupil and zero confidence.
func (t *Tracker) Step(frame gocv.Mat, ts time.Time) Result {
	t.framesProcessed++

	var window *image.Rectangle
	if win, ok := t.roi.Window(frame.Cols(), frame.Rows()); ok {
		window = &win
	}

	det, found := t.detector.Detect(frame, window)
	if !found {
		if t.roi.Observe(nil, ts) {
			// Sustained loss: drop stale smoothing history along
			// with the window so recovery starts clean.
			t.smoother.Reset()
			debug.PipeLog("ROI lock released after %v without detection\n", t.cfg.LossTimeout)
		}
		res := Result{}
		if win, ok := t.roi.Window(frame.Cols(), frame.Rows()); ok {
			res.ROI = &win
		}
		return res
	}

	t.framesDetected++

	// Detector coordinates are crop-relative; translate back.
	center := det.Center
	if window != nil {
		center = center.Add(float64(window.Min.X), float64(window.Min.Y))
	}

	smoothed := t.smoother.Push(&center)
	wasLocked := t.roi.Locked()
	t.roi.Observe(smoothed, ts)
	if !wasLocked && t.roi.Locked() {
		debug.PipeLog("ROI locked at (%.0f, %.0f)\n", smoothed.X, smoothed.Y)
	}

	res := Result{
		Pupil:      smoothed,
		Confidence: det.Confidence,
	}
	if win, ok := t.roi.Window(frame.Cols(), frame.Rows()); ok {
		res.ROI = &win
	}
	if t.mapper.Fitted() && smoothed != nil {
		if gz, err := t.mapper.Map(*smoothed); err == nil {
			res.Gaze = &gz
		}
	}
	return res
}

// Reset drops the ROI window and the smoothing history, forcing a
// full-frame search on the next frame. The fitted transform survives.
func (t *Tracker) Reset() {
	t.roi.Reset()
	t.smoother.Reset()
}

// ResetSmoothing clears only the temporal smoothing buffer. The
// calibrator uses it between targets so samples do not blend across
// target changes.
func (t *Tracker) ResetSmoothing() {
	t.smoother.Reset()
}

// Mapper returns the gaze mapper owned by this tracker.
func (t *Tracker) Mapper() *Mapper {
	return t.mapper
}

// Calibrated reports whether a successful affine fit exists.
func (t *Tracker) Calibrated() bool {
	return t.mapper.Fitted()
}

// DetectionRate returns the fraction of processed frames with a
// successful detection, 0 before the first frame.
func (t *Tracker) DetectionRate() float64 {
	if t.framesProcessed == 0 {
		return 0
	}
	return float64(t.framesDetected) / float64(t.framesProcessed)
}

// FramesProcessed returns the number of frames stepped so far.
func (t *Tracker) FramesProcessed() int {
	return t.framesProcessed
}

// Threshold exposes the detector's latest binary image for debug
// visualization. Valid until the next Step or Close.
func (t *Tracker) Threshold() gocv.Mat {
	return t.detector.Threshold()
}

// Close releases native resources.
func (t *Tracker) Close() {
	t.detector.Close()
}
