// Package camera provides webcam frame capture for the gaze tracker.
// It wraps gocv.VideoCapture behind the gaze.FrameSource contract and
// applies the session's frame preprocessing (mirror flip, downscale).
package camera

// Config holds all capture configuration parameters.
type Config struct {
	// Device is the capture device: an index ("0") or a path
	// ("/dev/video2"). Empty means try the Candidates list.
	Device string `json:"device"`

	// Candidates are devices tried in order when Device is empty.
	Candidates []string `json:"candidates,omitempty"`

	// Requested capture properties. Zero leaves the driver default.
	Width     int `json:"width"`
	Height    int `json:"height"`
	Framerate int `json:"framerate"`

	// HorizontalFlip mirrors frames so on-screen motion matches the
	// user's own, the natural orientation for a selfie camera.
	HorizontalFlip bool `json:"horizontal_flip"`

	// MaxHeight downscales frames taller than this before tracking.
	// 0 disables resizing.
	MaxHeight int `json:"max_height"`

	// Quality is the JPEG quality for encoded debug frames (1-100).
	Quality int `json:"quality"`
}

// DefaultConfig returns the recommended webcam configuration.
func DefaultConfig() Config {
	return Config{
		Candidates:     []string{"0"},
		Width:          1280,
		Height:         720,
		Framerate:      30,
		HorizontalFlip: true,
		MaxHeight:      720,
		Quality:        80,
	}
}

// VirtualCamConfig returns a configuration that prefers an OBS-style
// virtual camera and falls back to the default webcam.
func VirtualCamConfig() Config {
	cfg := DefaultConfig()
	cfg.Candidates = []string{"/dev/video2", "0"}
	return cfg
}

// LowResConfig returns a 640x480 configuration for constrained hosts.
func LowResConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	cfg.MaxHeight = 480
	return cfg
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device == "" && len(c.Candidates) == 0 {
		errors = append(errors, "device or candidates required")
	}
	if c.Width < 0 || c.Height < 0 {
		errors = append(errors, "width and height must be >= 0")
	}
	if c.Framerate < 0 || c.Framerate > 120 {
		errors = append(errors, "framerate must be between 0 and 120")
	}
	if c.MaxHeight < 0 {
		errors = append(errors, "max_height must be >= 0")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}

// devices returns the device list to try in order.
func (c *Config) devices() []string {
	if c.Device != "" {
		return []string{c.Device}
	}
	return c.Candidates
}
