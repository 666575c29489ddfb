package gaze

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Detector localizes the pupil in a single frame. It runs a fixed
// sequence of transforms: grayscale, optional CLAHE, Gaussian blur,
// mean adaptive threshold, morphological open/close, contour scan.
// The largest surviving contour is the pupil candidate; its centroid
// comes from image moments of the filled contour mask.
//
// A Detector owns reusable native scratch buffers and is not safe for
// concurrent use. Call Close to release OpenCV memory.
type Detector struct {
	cfg   Config
	block int

	clahe    gocv.CLAHE
	hasCLAHE bool
	kernel   gocv.Mat // 3x3 rect structuring element

	// Scratch Mats reused across frames.
	gray     gocv.Mat
	enhanced gocv.Mat
	blurred  gocv.Mat
	thresh   gocv.Mat
	mask     gocv.Mat
}

// NewDetector creates a pupil detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	d := &Detector{
		cfg:      cfg,
		block:    cfg.blockSize(),
		kernel:   gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
		gray:     gocv.NewMat(),
		enhanced: gocv.NewMat(),
		blurred:  gocv.NewMat(),
		thresh:   gocv.NewMat(),
		mask:     gocv.NewMat(),
	}
	if cfg.UseCLAHE {
		d.clahe = gocv.NewCLAHEWithParams(cfg.CLAHEClip, cfg.CLAHETile)
		d.hasCLAHE = true
	}
	return d
}

// Detect searches for the pupil in frame. When roi is non-nil the
// search is restricted to that sub-rectangle and the returned center
// is relative to the crop origin; the caller translates back to
// full-frame coordinates. The frame is only read, never retained.
//
// A miss (nothing detected) returns ok=false with a zero Detection;
// degenerate frames (empty, uniform, fully saturated) are misses, not
// errors.
func (d *Detector) Detect(frame gocv.Mat, roi *image.Rectangle) (Detection, bool) {
	if frame.Empty() || frame.Cols() < d.block || frame.Rows() < d.block {
		return Detection{}, false
	}

	src := frame
	if roi != nil {
		r := roi.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
		if r.Dx() < d.block || r.Dy() < d.block {
			return Detection{}, false
		}
		region := frame.Region(r)
		defer region.Close()
		src = region
	}

	d.binarize(src)

	contours := gocv.FindContours(d.thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	// Largest area wins. Ties keep the lowest contour index, i.e. the
	// first one in OpenCV scan order; deterministic but arbitrary.
	best := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area < d.cfg.MinPupilArea {
			continue
		}
		if area > bestArea {
			bestArea = area
			best = i
		}
	}
	if best < 0 {
		return Detection{}, false
	}

	center, ok := d.centroid(contours, best)
	if !ok {
		return Detection{}, false
	}

	return Detection{
		Center:     center,
		Confidence: roundness(contours.At(best), bestArea),
		Area:       bestArea,
	}, true
}

// binarize runs the preprocessing chain and leaves the binary image in
// d.thresh.
func (d *Detector) binarize(src gocv.Mat) {
	gocv.CvtColor(src, &d.gray, gocv.ColorBGRToGray)

	work := d.gray
	if d.hasCLAHE {
		d.clahe.Apply(d.gray, &d.enhanced)
		work = d.enhanced
	}

	gocv.GaussianBlur(work, &d.blurred, image.Pt(d.cfg.BlurKernel, d.cfg.BlurKernel), 0, 0, gocv.BorderDefault)

	// Local mean threshold: pupil-vs-iris contrast varies across the
	// frame under uneven lighting, so a single global cut fails.
	gocv.AdaptiveThreshold(d.blurred, &d.thresh, 255,
		gocv.AdaptiveThresholdMean, gocv.ThresholdBinaryInv,
		d.block, float32(d.cfg.ThreshC))

	if d.cfg.MorphOpenIter > 0 {
		gocv.MorphologyExWithParams(d.thresh, &d.thresh, gocv.MorphOpen,
			d.kernel, d.cfg.MorphOpenIter, gocv.BorderConstant)
	}
	if d.cfg.MorphCloseIter > 0 {
		gocv.MorphologyExWithParams(d.thresh, &d.thresh, gocv.MorphClose,
			d.kernel, d.cfg.MorphCloseIter, gocv.BorderConstant)
	}
}

// centroid computes the candidate's center of mass from image moments
// of the filled contour mask.
func (d *Detector) centroid(contours gocv.PointsVector, idx int) (Point, bool) {
	rows, cols := d.thresh.Rows(), d.thresh.Cols()
	if d.mask.Rows() != rows || d.mask.Cols() != cols {
		d.mask.Close()
		d.mask = gocv.Zeros(rows, cols, gocv.MatTypeCV8U)
	} else {
		d.mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
	}

	gocv.DrawContours(&d.mask, contours, idx, color.RGBA{R: 255, G: 255, B: 255}, -1)

	m := gocv.Moments(d.mask, true)
	m00 := m["m00"]
	if m00 == 0 {
		return Point{}, false
	}
	return Point{X: m["m10"] / m00, Y: m["m01"] / m00}, true
}

// Threshold returns the most recent binary image as a debug artifact.
// The Mat is owned by the detector and only valid until the next
// Detect or Close.
func (d *Detector) Threshold() gocv.Mat {
	return d.thresh
}

// Close releases the detector's native resources.
func (d *Detector) Close() {
	if d.hasCLAHE {
		d.clahe.Close()
		d.hasCLAHE = false
	}
	d.kernel.Close()
	d.gray.Close()
	d.enhanced.Close()
	d.blurred.Close()
	d.thresh.Close()
	d.mask.Close()
}

// roundness scores how circular a contour is: 4πA/P², clamped to
// [0,1]. A perfect circle scores 1.0, ragged or elongated blobs tend
// toward 0.
func roundness(contour gocv.PointVector, area float64) float64 {
	perimeter := gocv.ArcLength(contour, true)
	if perimeter <= 0 {
		return 0
	}
	c := 4 * math.Pi * area / (perimeter * perimeter)
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return c
}
