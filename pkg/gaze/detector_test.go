package gaze

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

// eyeFrame builds a synthetic BGR frame: light background with a dark
// filled circle standing in for the pupil.
func eyeFrame(w, h int, pupil image.Point, radius int) gocv.Mat {
	frame := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(200, 200, 200, 0), h, w, gocv.MatTypeCV8UC3)
	gocv.Circle(&frame, pupil, radius, color.RGBA{R: 20, G: 20, B: 20}, -1)
	return frame
}

func TestDetector_FindsDarkCircle(t *testing.T) {
	d := NewDetector(DefaultConfig())
	defer d.Close()

	frame := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer frame.Close()

	det, ok := d.Detect(frame, nil)
	if !ok {
		t.Fatal("Expected detection on a clear dark circle")
	}
	if math.Abs(det.Center.X-320) > 2 || math.Abs(det.Center.Y-240) > 2 {
		t.Errorf("Expected center near (320, 240), got (%v, %v)", det.Center.X, det.Center.Y)
	}
	if det.Area < 700 || det.Area > 3000 {
		t.Errorf("Area %v outside the plausible range for a radius-20 circle", det.Area)
	}
	if det.Confidence < 0.5 {
		t.Errorf("Expected high roundness for a circle, got %v", det.Confidence)
	}
}

func TestDetector_LargestBlobWins(t *testing.T) {
	d := NewDetector(DefaultConfig())
	defer d.Close()

	frame := eyeFrame(640, 480, image.Pt(200, 240), 25)
	defer frame.Close()
	gocv.Circle(&frame, image.Pt(440, 240), 12, color.RGBA{R: 20, G: 20, B: 20}, -1)

	det, ok := d.Detect(frame, nil)
	if !ok {
		t.Fatal("Expected detection")
	}
	if math.Abs(det.Center.X-200) > 3 || math.Abs(det.Center.Y-240) > 3 {
		t.Errorf("Expected the larger blob near (200, 240), got (%v, %v)",
			det.Center.X, det.Center.Y)
	}
}

func TestDetector_MinAreaFiltersCandidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinPupilArea = 5000 // radius-20 circle is ~1300 px²
	d := NewDetector(cfg)
	defer d.Close()

	frame := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer frame.Close()

	if _, ok := d.Detect(frame, nil); ok {
		t.Error("Expected a miss when every contour is below the area floor")
	}
}

func TestDetector_UniformFrameMisses(t *testing.T) {
	d := NewDetector(DefaultConfig())
	defer d.Close()

	cases := []struct {
		name  string
		value float64
	}{
		{"black (covered lens)", 0},
		{"gray (closed eye)", 200},
		{"saturated white", 255},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame := gocv.NewMatWithSizeFromScalar(
				gocv.NewScalar(tc.value, tc.value, tc.value, 0), 480, 640, gocv.MatTypeCV8UC3)
			defer frame.Close()

			if _, ok := d.Detect(frame, nil); ok {
				t.Error("Expected a miss on a featureless frame")
			}
		})
	}
}

func TestDetector_EmptyFrameMisses(t *testing.T) {
	d := NewDetector(DefaultConfig())
	defer d.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	if _, ok := d.Detect(frame, nil); ok {
		t.Error("Expected a miss on an empty Mat")
	}
}

func TestDetector_ROIRestrictsSearch(t *testing.T) {
	d := NewDetector(DefaultConfig())
	defer d.Close()

	// Two identical circles; only the one inside the window may win.
	frame := eyeFrame(640, 480, image.Pt(100, 100), 15)
	defer frame.Close()
	gocv.Circle(&frame, image.Pt(500, 400), 15, color.RGBA{R: 20, G: 20, B: 20}, -1)

	roi := image.Rect(400, 300, 600, 480)
	det, ok := d.Detect(frame, &roi)
	if !ok {
		t.Fatal("Expected detection inside the window")
	}

	// Center is crop-relative: (500, 400) minus the window origin.
	if math.Abs(det.Center.X-100) > 3 || math.Abs(det.Center.Y-100) > 3 {
		t.Errorf("Expected crop-relative center near (100, 100), got (%v, %v)",
			det.Center.X, det.Center.Y)
	}
}

func TestDetector_WindowTooSmallMisses(t *testing.T) {
	d := NewDetector(DefaultConfig())
	defer d.Close()

	frame := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer frame.Close()

	roi := image.Rect(0, 0, 8, 8) // below the threshold neighborhood
	if _, ok := d.Detect(frame, &roi); ok {
		t.Error("Expected a miss when the window is smaller than the threshold block")
	}
}

func TestDetector_WorksWithoutCLAHE(t *testing.T) {
	d := NewDetector(FastConfig())
	defer d.Close()

	frame := eyeFrame(640, 480, image.Pt(320, 240), 20)
	defer frame.Close()

	det, ok := d.Detect(frame, nil)
	if !ok {
		t.Fatal("Expected detection with CLAHE disabled")
	}
	if math.Abs(det.Center.X-320) > 2 || math.Abs(det.Center.Y-240) > 2 {
		t.Errorf("Expected center near (320, 240), got (%v, %v)", det.Center.X, det.Center.Y)
	}
}

func TestRoundness_Clamped(t *testing.T) {
	// Degenerate inputs must never escape [0, 1].
	pv := gocv.NewPointVectorFromPoints([]image.Point{{X: 0, Y: 0}})
	defer pv.Close()

	if r := roundness(pv, 100); r < 0 || r > 1 {
		t.Errorf("Expected roundness in [0,1], got %v", r)
	}
}
