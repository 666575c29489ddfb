package gaze

import (
	"image"
	"time"
)

// Config holds all tunable parameters for the tracking pipeline.
type Config struct {
	// === Adaptive threshold ===
	ThreshBlock int     `json:"thresh_block"` // neighborhood size in pixels, odd, >1
	ThreshC     float64 `json:"thresh_c"`     // constant subtracted from the local mean

	// === Contour filter ===
	MinPupilArea float64 `json:"min_pupil_area"` // discard contours smaller than this (px²)

	// === Preprocessing ===
	UseCLAHE   bool        `json:"use_clahe"`   // local contrast enhancement before blur
	CLAHEClip  float64     `json:"clahe_clip"`  // CLAHE clip limit
	CLAHETile  image.Point `json:"clahe_tile"`  // CLAHE tile grid size
	BlurKernel int         `json:"blur_kernel"` // Gaussian kernel side, odd

	// === Morphology ===
	MorphOpenIter  int `json:"morph_open_iter"`  // opening iterations (speckle removal)
	MorphCloseIter int `json:"morph_close_iter"` // closing iterations (gap filling)

	// === Smoothing ===
	SmoothWindow int `json:"smooth_window"` // moving-average window, >=1

	// === ROI locking ===
	ROIHalfSize int           `json:"roi_half_size"` // search window half-size, 0 disables locking
	LossTimeout time.Duration `json:"loss_timeout"`  // continuous-miss duration before unlock

	// === Calibration ===
	TargetDuration time.Duration `json:"target_duration"` // frame time collected per target
	MinSamples     int           `json:"min_samples"`     // accepted samples required per target
	MinConfidence  float64       `json:"min_confidence"`  // quality floor for calibration samples
}

// DefaultConfig returns the recommended configuration for indoor
// webcam tracking. The pipeline values match the tuned defaults of the
// reference tracker.
func DefaultConfig() Config {
	return Config{
		ThreshBlock:  15,
		ThreshC:      7,
		MinPupilArea: 80,

		UseCLAHE:   true,
		CLAHEClip:  2.0,
		CLAHETile:  image.Pt(8, 8),
		BlurKernel: 7,

		MorphOpenIter:  1,
		MorphCloseIter: 1,

		SmoothWindow: 5,

		ROIHalfSize: 90,
		LossTimeout: time.Second,

		TargetDuration: 2 * time.Second,
		MinSamples:     10,
		MinConfidence:  0.2,
	}
}

// LowLightConfig returns a configuration for dim or uneven lighting:
// stronger local contrast and a wider threshold neighborhood.
func LowLightConfig() Config {
	cfg := DefaultConfig()
	cfg.CLAHEClip = 3.0
	cfg.ThreshBlock = 21
	cfg.ThreshC = 5
	cfg.MorphCloseIter = 2
	return cfg
}

// FastConfig returns a configuration that trades stability for
// latency: no CLAHE, lighter blur, shorter smoothing window.
func FastConfig() Config {
	cfg := DefaultConfig()
	cfg.UseCLAHE = false
	cfg.BlurKernel = 5
	cfg.SmoothWindow = 3
	return cfg
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.ThreshBlock <= 1 {
		errors = append(errors, "thresh_block must be > 1")
	}
	if c.MinPupilArea <= 0 {
		errors = append(errors, "min_pupil_area must be > 0")
	}
	if c.UseCLAHE {
		if c.CLAHEClip <= 0 {
			errors = append(errors, "clahe_clip must be > 0")
		}
		if c.CLAHETile.X < 1 || c.CLAHETile.Y < 1 {
			errors = append(errors, "clahe_tile sides must be >= 1")
		}
	}
	if c.BlurKernel < 1 || c.BlurKernel%2 == 0 {
		errors = append(errors, "blur_kernel must be odd and >= 1")
	}
	if c.MorphOpenIter < 0 || c.MorphCloseIter < 0 {
		errors = append(errors, "morphology iterations must be >= 0")
	}
	if c.SmoothWindow < 1 {
		errors = append(errors, "smooth_window must be >= 1")
	}
	if c.ROIHalfSize < 0 {
		errors = append(errors, "roi_half_size must be >= 0")
	}
	if c.LossTimeout <= 0 {
		errors = append(errors, "loss_timeout must be > 0")
	}
	if c.TargetDuration <= 0 {
		errors = append(errors, "target_duration must be > 0")
	}
	if c.MinSamples < 1 {
		errors = append(errors, "min_samples must be >= 1")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errors = append(errors, "min_confidence must be in [0,1]")
	}

	return errors
}

// blockSize returns the adaptive threshold neighborhood forced odd and
// at least 3, the form OpenCV requires.
func (c *Config) blockSize() int {
	b := c.ThreshBlock
	if b < 3 {
		return 3
	}
	return b | 1
}
