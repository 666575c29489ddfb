package gaze

import (
	"image"
	"math"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func blankFrame(w, h int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(200, 200, 200, 0), h, w, gocv.MatTypeCV8UC3)
}

func TestTracker_StepDetectsAndLocks(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	defer tr.Close()

	frame := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer frame.Close()

	res := tr.Step(frame, time.Now())
	if res.Pupil == nil {
		t.Fatal("Expected a pupil on a clear frame")
	}
	if math.Abs(res.Pupil.X-320) > 2 || math.Abs(res.Pupil.Y-240) > 2 {
		t.Errorf("Expected pupil near (320, 240), got (%v, %v)", res.Pupil.X, res.Pupil.Y)
	}
	if res.Confidence <= 0 {
		t.Errorf("Expected positive confidence, got %v", res.Confidence)
	}
	if res.ROI == nil {
		t.Fatal("Expected an active search window after the first detection")
	}
	if pt := image.Pt(int(res.Pupil.X), int(res.Pupil.Y)); !pt.In(*res.ROI) {
		t.Errorf("Window %v does not contain the pupil %v", *res.ROI, pt)
	}
}

func TestTracker_TranslatesWindowCoordinates(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	defer tr.Close()

	t0 := time.Now()

	f1 := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer f1.Close()
	tr.Step(f1, t0)

	// Second frame is searched inside the window; the result must still
	// come back in full-frame coordinates (smoothed over both frames).
	f2 := eyeFrame(640, 480, image.Pt(330, 246), 20)
	defer f2.Close()
	res := tr.Step(f2, t0.Add(33*time.Millisecond))

	if res.Pupil == nil {
		t.Fatal("Expected a pupil inside the window")
	}
	if math.Abs(res.Pupil.X-325) > 3 || math.Abs(res.Pupil.Y-243) > 3 {
		t.Errorf("Expected smoothed full-frame pupil near (325, 243), got (%v, %v)",
			res.Pupil.X, res.Pupil.Y)
	}
}

func TestTracker_MissReturnsNilPupil(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	defer tr.Close()

	frame := blankFrame(640, 480)
	defer frame.Close()

	res := tr.Step(frame, time.Now())
	if res.Pupil != nil {
		t.Errorf("Expected nil pupil on a miss, got %v", res.Pupil)
	}
	if res.Confidence != 0 {
		t.Errorf("Expected zero confidence on a miss, got %v", res.Confidence)
	}
	if res.Gaze != nil {
		t.Error("Expected nil gaze on a miss")
	}
}

func TestTracker_WindowSurvivesShortLossThenReleases(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	defer tr.Close()

	t0 := time.Now()

	eye := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer eye.Close()
	blank := blankFrame(640, 480)
	defer blank.Close()

	tr.Step(eye, t0)

	// Misses inside the timeout keep the window (blink tolerance).
	res := tr.Step(blank, t0.Add(300*time.Millisecond))
	if res.ROI == nil {
		t.Fatal("Expected window to survive a short loss")
	}

	// At the timeout the window is released and search goes full-frame.
	res = tr.Step(blank, t0.Add(1100*time.Millisecond))
	if res.ROI != nil {
		t.Errorf("Expected window released after the loss timeout, got %v", *res.ROI)
	}

	// Recovery after release starts with a clean smoothing history:
	// the new position must not blend with pre-loss samples.
	far := eyeFrame(640, 480, image.Pt(100, 100), 20)
	defer far.Close()
	res = tr.Step(far, t0.Add(1200*time.Millisecond))
	if res.Pupil == nil {
		t.Fatal("Expected full-frame search to recover the pupil")
	}
	if math.Abs(res.Pupil.X-100) > 2 || math.Abs(res.Pupil.Y-100) > 2 {
		t.Errorf("Expected fresh pupil near (100, 100), got (%v, %v)",
			res.Pupil.X, res.Pupil.Y)
	}
}

func TestTracker_DetectionRate(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	defer tr.Close()

	if tr.DetectionRate() != 0 {
		t.Errorf("Expected rate 0 before any frames, got %v", tr.DetectionRate())
	}

	t0 := time.Now()
	eye := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer eye.Close()
	blank := blankFrame(640, 480)
	defer blank.Close()

	tr.Step(eye, t0)
	tr.Step(blank, t0.Add(33*time.Millisecond))

	if tr.FramesProcessed() != 2 {
		t.Errorf("Expected 2 frames processed, got %d", tr.FramesProcessed())
	}
	if tr.DetectionRate() != 0.5 {
		t.Errorf("Expected detection rate 0.5, got %v", tr.DetectionRate())
	}
}

func TestTracker_ResetDropsWindowKeepsCalibration(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	defer tr.Close()

	pupil := []Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}}
	screen := []Point{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 0, Y: 1000}}
	if err := tr.Mapper().Fit(pupil, screen); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	eye := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer eye.Close()
	tr.Step(eye, time.Now())

	tr.Reset()

	blank := blankFrame(640, 480)
	defer blank.Close()
	res := tr.Step(blank, time.Now())
	if res.ROI != nil {
		t.Error("Expected full-frame search after Reset")
	}
	if !tr.Calibrated() {
		t.Error("Reset must not discard the fitted transform")
	}
}

func TestTracker_GazeOnlyAfterCalibration(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	defer tr.Close()

	eye := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer eye.Close()

	res := tr.Step(eye, time.Now())
	if res.Gaze != nil {
		t.Error("Expected nil gaze before calibration")
	}

	// Identity-scale transform: screen = 2 * pupil.
	pupil := []Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}}
	screen := []Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 0, Y: 200}}
	if err := tr.Mapper().Fit(pupil, screen); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	tr.ResetSmoothing()
	res = tr.Step(eye, time.Now())
	if res.Gaze == nil {
		t.Fatal("Expected a gaze estimate after calibration")
	}
	if math.Abs(res.Gaze.X-640) > 6 || math.Abs(res.Gaze.Y-480) > 6 {
		t.Errorf("Expected gaze near (640, 480), got (%v, %v)", res.Gaze.X, res.Gaze.Y)
	}
}

func TestTracker_ThresholdDebugImage(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	defer tr.Close()

	eye := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer eye.Close()
	tr.Step(eye, time.Now())

	th := tr.Threshold()
	if th.Empty() {
		t.Error("Expected a populated threshold image after a step")
	}
	if th.Type() != gocv.MatTypeCV8U {
		t.Errorf("Expected single-channel 8-bit threshold image, got type %v", th.Type())
	}
}
