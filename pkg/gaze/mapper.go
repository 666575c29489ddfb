package gaze

import "math"

// Mapper holds a fitted 2D affine transform from pupil space to screen
// space as a 3x3 homogeneous matrix. The matrix is immutable between
// fits; Map is pure and mutates nothing.
type Mapper struct {
	a      [3][3]float64
	fitted bool
}

// NewMapper creates an unfitted mapper. Map returns ErrNotCalibrated
// until Fit succeeds.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Fit solves for the six affine parameters by least squares,
// minimizing the total squared screen-space residual. Exact systems
// (3 non-collinear pairs) and overdetermined systems (5 calibration
// pairs) go through the same path. Both slices must have equal length
// >= 3; collinear or duplicate pupil points yield ErrDegenerate and
// leave any previous fit untouched.
func (m *Mapper) Fit(pupil, screen []Point) error {
	if len(pupil) < 3 || len(pupil) != len(screen) {
		return ErrPointCount
	}

	// Normal equations: with P rows [x y 1] and S rows [sx sy],
	// solve (PᵀP) W = PᵀS for the 3x2 weight matrix W.
	var ptp [3][3]float64
	var pts [3][2]float64
	for i := range pupil {
		row := [3]float64{pupil[i].X, pupil[i].Y, 1}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				ptp[r][c] += row[r] * row[c]
			}
			pts[r][0] += row[r] * screen[i].X
			pts[r][1] += row[r] * screen[i].Y
		}
	}

	w, ok := solve3x2(ptp, pts)
	if !ok {
		return ErrDegenerate
	}

	m.a = [3][3]float64{
		{w[0][0], w[1][0], w[2][0]},
		{w[0][1], w[1][1], w[2][1]},
		{0, 0, 1},
	}
	m.fitted = true
	return nil
}

// Map applies the fitted transform to a pupil-space point and returns
// the screen-space result. Returns ErrNotCalibrated before the first
// successful fit.
func (m *Mapper) Map(p Point) (Point, error) {
	if !m.fitted {
		return Point{}, ErrNotCalibrated
	}
	return Point{
		X: m.a[0][0]*p.X + m.a[0][1]*p.Y + m.a[0][2],
		Y: m.a[1][0]*p.X + m.a[1][1]*p.Y + m.a[1][2],
	}, nil
}

// Fitted reports whether a successful fit exists.
func (m *Mapper) Fitted() bool {
	return m.fitted
}

// Matrix returns the homogeneous transform. The zero matrix is
// returned before a fit.
func (m *Mapper) Matrix() [3][3]float64 {
	return m.a
}

// solve3x2 solves A·X = B for a 3x3 symmetric A and 3x2 B using
// Gaussian elimination with partial pivoting. Returns ok=false when A
// is singular to working precision, which is how collinear calibration
// points surface.
func solve3x2(a [3][3]float64, b [3][2]float64) ([3][2]float64, bool) {
	// Relative pivot tolerance scaled by the largest input magnitude.
	scale := 0.0
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if v := math.Abs(a[r][c]); v > scale {
				scale = v
			}
		}
	}
	if scale == 0 {
		return [3][2]float64{}, false
	}
	tol := 1e-9 * scale

	for col := 0; col < 3; col++ {
		// Partial pivot.
		pivot := col
		for r := col + 1; r < 3; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < tol {
			return [3][2]float64{}, false
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}

		// Eliminate below.
		for r := col + 1; r < 3; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < 3; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r][0] -= f * b[col][0]
			b[r][1] -= f * b[col][1]
		}
	}

	// Back substitution.
	var x [3][2]float64
	for r := 2; r >= 0; r-- {
		for k := 0; k < 2; k++ {
			v := b[r][k]
			for c := r + 1; c < 3; c++ {
				v -= a[r][c] * x[c][k]
			}
			x[r][k] = v / a[r][r]
		}
	}
	return x, true
}
