package gaze

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/jishaemilin2005-cyber/Gaze-mapping/internal/log"
)

// Target is one on-screen calibration point.
type Target struct {
	Name   string `json:"name"`
	Screen Point  `json:"screen"`
}

// DefaultTargets returns the five-point sequence {center, left, right,
// top, bottom} for the given screen size, with targets inset from the
// edges by the given margin in pixels.
func DefaultTargets(screenW, screenH float64, margin float64) []Target {
	cx, cy := screenW/2, screenH/2
	return []Target{
		{Name: "center", Screen: Point{X: cx, Y: cy}},
		{Name: "left", Screen: Point{X: margin, Y: cy}},
		{Name: "right", Screen: Point{X: screenW - margin, Y: cy}},
		{Name: "top", Screen: Point{X: cx, Y: margin}},
		{Name: "bottom", Screen: Point{X: cx, Y: screenH - margin}},
	}
}

// Sample pairs a collected pupil-space centroid with its screen-space
// target.
type Sample struct {
	Target string `json:"target"`
	Pupil  Point  `json:"pupil"`
	Screen Point  `json:"screen"`
	Count  int    `json:"count"` // accepted detections behind the centroid
}

// CalibrationResult is the outcome of a completed calibration session.
type CalibrationResult struct {
	SessionID string        `json:"session_id"`
	Samples   []Sample      `json:"samples"`
	Matrix    [3][3]float64 `json:"matrix"`
	Completed time.Time     `json:"completed"`
}

// Calibrator runs the fixed sequential target protocol: for each
// target it blocks the calling goroutine for the configured window of
// frame time, accumulating smoothed detections above the confidence
// floor, then collapses them to a centroid. After all targets it fits
// the tracker's affine mapper.
//
// Blocking per target is deliberate: the user must look steadily at a
// fixed point while samples accumulate.
type Calibrator struct {
	cfg     Config
	targets []Target
	display TargetDisplay
}

// NewCalibrator creates a calibrator over the given target sequence.
// display may be nil when no UI is attached (tests, headless runs).
func NewCalibrator(cfg Config, targets []Target, display TargetDisplay) *Calibrator {
	return &Calibrator{cfg: cfg, targets: targets, display: display}
}

// Targets returns the configured target sequence.
func (c *Calibrator) Targets() []Target {
	return c.targets
}

// CollectTarget gathers detections for a single target for the
// configured duration of frame time and collapses them to a centroid.
//
// A *InsufficientSamplesError means this target can simply be retried;
// any other error (frame source failure, cancellation) aborts the
// session. Smoothing history is cleared on entry so samples from the
// previous target cannot bleed into this one.
func (c *Calibrator) CollectTarget(ctx context.Context, src FrameSource, tracker *Tracker, target Target) (Sample, error) {
	if c.display != nil {
		c.display.ShowTarget(target.Name, target.Screen)
		defer c.display.ClearTarget()
	}
	tracker.ResetSmoothing()

	frame := gocv.NewMat()
	defer frame.Close()

	var start time.Time
	var pts []Point

	for {
		select {
		case <-ctx.Done():
			return Sample{}, ctx.Err()
		default:
		}

		ts, err := src.Next(&frame)
		if err != nil {
			return Sample{}, fmt.Errorf("calibration target %q: %w", target.Name, err)
		}
		if start.IsZero() {
			start = ts
		} else if ts.Sub(start) >= c.cfg.TargetDuration {
			break
		}

		res := tracker.Step(frame, ts)
		if res.Pupil != nil && res.Confidence >= c.cfg.MinConfidence {
			pts = append(pts, *res.Pupil)
		}
	}

	if len(pts) < c.cfg.MinSamples {
		return Sample{}, &InsufficientSamplesError{
			Target: target.Name,
			Got:    len(pts),
			Want:   c.cfg.MinSamples,
		}
	}

	var sum Point
	for _, p := range pts {
		sum.X += p.X
		sum.Y += p.Y
	}
	n := float64(len(pts))

	return Sample{
		Target: target.Name,
		Pupil:  Point{X: sum.X / n, Y: sum.Y / n},
		Screen: target.Screen,
		Count:  len(pts),
	}, nil
}

// Run executes the full protocol over all targets in order, then fits
// the tracker's mapper from the collected (pupil, screen) pairs.
//
// Failure modes are explicit outcomes, never silent: an
// *InsufficientSamplesError names the target to retry, ErrDegenerate
// means the whole session should be re-run.
func (c *Calibrator) Run(ctx context.Context, src FrameSource, tracker *Tracker) (*CalibrationResult, error) {
	session := uuid.NewString()
	log.Info("calibration started", "session", session, "targets", len(c.targets))

	samples := make([]Sample, 0, len(c.targets))
	for _, target := range c.targets {
		sample, err := c.CollectTarget(ctx, src, tracker, target)
		if err != nil {
			return nil, err
		}
		log.Info("calibration target collected",
			"target", sample.Target,
			"samples", sample.Count,
			"pupil_x", sample.Pupil.X,
			"pupil_y", sample.Pupil.Y)
		samples = append(samples, sample)
	}

	pupil := make([]Point, len(samples))
	screen := make([]Point, len(samples))
	for i, s := range samples {
		pupil[i] = s.Pupil
		screen[i] = s.Screen
	}

	if err := tracker.Mapper().Fit(pupil, screen); err != nil {
		return nil, err
	}

	log.Info("calibration complete", "session", session)
	return &CalibrationResult{
		SessionID: session,
		Samples:   samples,
		Matrix:    tracker.Mapper().Matrix(),
		Completed: time.Now(),
	}, nil
}
