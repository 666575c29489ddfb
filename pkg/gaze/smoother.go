package gaze

// Smoother maintains a bounded FIFO history of recent pupil centers
// and produces their arithmetic mean. Capacity is the configured
// smoothing window; the oldest entry is evicted on overflow.
//
// An absent input propagates absence — "no gaze estimate this frame" —
// and leaves the history intact. Sustained loss is handled upstream:
// the Tracker resets the buffer when the ROI loss timeout fires.
type Smoother struct {
	buf []Point
	cap int
}

// NewSmoother creates a smoother with the given window size (minimum 1).
func NewSmoother(window int) *Smoother {
	if window < 1 {
		window = 1
	}
	return &Smoother{buf: make([]Point, 0, window), cap: window}
}

// Push records a detected center and returns the mean of the buffered
// history. A nil input returns nil without touching the buffer.
func (s *Smoother) Push(center *Point) *Point {
	if center == nil {
		return nil
	}

	if len(s.buf) == s.cap {
		copy(s.buf, s.buf[1:])
		s.buf = s.buf[:s.cap-1]
	}
	s.buf = append(s.buf, *center)

	var sum Point
	for _, p := range s.buf {
		sum.X += p.X
		sum.Y += p.Y
	}
	n := float64(len(s.buf))
	return &Point{X: sum.X / n, Y: sum.Y / n}
}

// Len returns the number of buffered centers.
func (s *Smoother) Len() int {
	return len(s.buf)
}

// Reset clears the history.
func (s *Smoother) Reset() {
	s.buf = s.buf[:0]
}
