package gaze

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotCalibrated is returned by Map before a successful fit.
	ErrNotCalibrated = errors.New("gaze: map called before a successful fit")

	// ErrDegenerate is returned when the calibration points are
	// collinear or duplicated and no unique affine solution exists.
	ErrDegenerate = errors.New("gaze: degenerate calibration points")

	// ErrPointCount is returned when fewer than 3 point pairs are
	// supplied to Fit, or the two sequences differ in length.
	ErrPointCount = errors.New("gaze: need at least 3 matched point pairs")
)

// InsufficientSamplesError reports a calibration target whose capture
// window yielded too few accepted samples. The caller may retry the
// named target; it is not fatal to the session.
type InsufficientSamplesError struct {
	Target string // target name ("center", "left", ...)
	Got    int    // accepted samples collected
	Want   int    // configured minimum
}

// Error implements the error interface.
func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("gaze: target %q: collected %d samples, need %d", e.Target, e.Got, e.Want)
}
