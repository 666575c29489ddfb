package camera

import (
	"errors"
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/jishaemilin2005-cyber/Gaze-mapping/internal/log"
)

// Sentinel errors for capture failures.
var (
	// ErrDeviceUnavailable is returned when no capture device could
	// be opened. Fatal to the session; the core never retries.
	ErrDeviceUnavailable = errors.New("camera: no capture device available")

	// ErrFrameRead is returned when the device stops delivering frames.
	ErrFrameRead = errors.New("camera: frame read failed")

	// ErrClosed is returned when reading from a closed webcam.
	ErrClosed = errors.New("camera: capture closed")
)

// Webcam captures frames from a local video device. It implements
// gaze.FrameSource: Next fills the caller's Mat with a preprocessed
// BGR frame and stamps it with the capture time.
type Webcam struct {
	cap    *gocv.VideoCapture
	cfg    Config
	device string

	raw gocv.Mat // scratch buffer reused across reads
}

// Open opens the first available device from the configuration. Each
// candidate is tried in order; failure to open any of them is
// ErrDeviceUnavailable.
func Open(cfg Config) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: invalid config: %v", errs)
	}

	for _, dev := range cfg.devices() {
		cap, err := gocv.OpenVideoCapture(dev)
		if err != nil {
			log.Debug("capture device failed to open", "device", dev, "error", err)
			continue
		}
		if !cap.IsOpened() {
			cap.Close()
			continue
		}

		if cfg.Width > 0 {
			cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		}
		if cfg.Height > 0 {
			cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
		}
		if cfg.Framerate > 0 {
			cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
		}

		log.Info("camera opened", "device", dev)
		return &Webcam{cap: cap, cfg: cfg, device: dev, raw: gocv.NewMat()}, nil
	}

	return nil, fmt.Errorf("%w: tried %v", ErrDeviceUnavailable, cfg.devices())
}

// Device returns the device that was actually opened.
func (w *Webcam) Device() string {
	return w.device
}

// Next reads one frame into dst, applying the configured mirror flip
// and max-height downscale, and returns the capture timestamp.
func (w *Webcam) Next(dst *gocv.Mat) (time.Time, error) {
	if w.cap == nil {
		return time.Time{}, ErrClosed
	}
	if ok := w.cap.Read(&w.raw); !ok || w.raw.Empty() {
		return time.Time{}, fmt.Errorf("%w: device %s", ErrFrameRead, w.device)
	}
	ts := time.Now()

	if w.cfg.HorizontalFlip {
		gocv.Flip(w.raw, &w.raw, 1)
	}

	if w.cfg.MaxHeight > 0 && w.raw.Rows() > w.cfg.MaxHeight {
		scale := float64(w.cfg.MaxHeight) / float64(w.raw.Rows())
		width := int(float64(w.raw.Cols()) * scale)
		gocv.Resize(w.raw, dst, image.Pt(width, w.cfg.MaxHeight), 0, 0, gocv.InterpolationArea)
	} else {
		w.raw.CopyTo(dst)
	}

	return ts, nil
}

// Close releases the capture device and scratch buffers.
func (w *Webcam) Close() error {
	if w.cap == nil {
		return nil
	}
	w.raw.Close()
	err := w.cap.Close()
	w.cap = nil
	return err
}

// EncodeJPEG encodes a frame as JPEG at the given quality, for debug
// streaming to the dashboard.
func EncodeJPEG(frame gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame,
		[]int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("camera: jpeg encode: %w", err)
	}
	defer buf.Close()

	// Copy out: the buffer's backing memory is native and freed on Close.
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
