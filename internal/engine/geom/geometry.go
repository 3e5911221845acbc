// Package geom provides the pure geometric primitives used by the form
// analyzers: joint angles, vertical deviation, midpoints, and left/right
// symmetry. All angle results are in degrees.
package geom

import (
	"math"

	"github.com/formsense-data/form.report/internal/pose"
)

// AngleAtVertex returns the angle at vertex b formed by the rays b→a and
// b→c, in degrees [0,180]. Returns false if any participating landmark is
// below minVisibility or the rays are degenerate (coincident points).
// Angles are computed in the camera plane (x,y); z is intentionally ignored
// because the pose estimator's relative depth is far noisier than its
// planar coordinates.
func AngleAtVertex(a, b, c pose.Landmark, minVisibility float64) (float64, bool) {
	if a.Visibility < minVisibility || b.Visibility < minVisibility || c.Visibility < minVisibility {
		return 0, false
	}

	bax := a.X - b.X
	bay := a.Y - b.Y
	bcx := c.X - b.X
	bcy := c.Y - b.Y

	lenBA := math.Hypot(bax, bay)
	lenBC := math.Hypot(bcx, bcy)
	if lenBA == 0 || lenBC == 0 {
		return 0, false
	}

	cos := (bax*bcx + bay*bcy) / (lenBA * lenBC)
	// Clamp for floating point drift before acos.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi, true
}

// Midpoint returns the point halfway between two landmarks. The returned
// landmark carries the lower of the two visibilities so downstream
// thresholding remains conservative.
func Midpoint(a, b pose.Landmark) pose.Landmark {
	vis := a.Visibility
	if b.Visibility < vis {
		vis = b.Visibility
	}
	return pose.Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Visibility: vis,
	}
}

// VerticalAngle returns the deviation of the segment top→bottom from the
// vertical axis, in degrees [0,90]. A perfectly upright segment returns 0.
// Returns false if either landmark is below minVisibility or the points
// coincide.
func VerticalAngle(top, bottom pose.Landmark, minVisibility float64) (float64, bool) {
	if top.Visibility < minVisibility || bottom.Visibility < minVisibility {
		return 0, false
	}
	dx := bottom.X - top.X
	dy := bottom.Y - top.Y
	if dx == 0 && dy == 0 {
		return 0, false
	}
	// Angle between the segment and the image vertical (y axis).
	deg := math.Atan2(math.Abs(dx), math.Abs(dy)) * 180 / math.Pi
	return deg, true
}

// Symmetry returns 1 − |a−b| / max(a,b), clamped to [0,1]. It measures the
// normalised closeness of a left/right measurement pair: identical inputs
// score 1, and the function is symmetric in its arguments. Symmetry(0,0)
// is defined as 1.
func Symmetry(a, b float64) float64 {
	a = math.Abs(a)
	b = math.Abs(b)
	max := math.Max(a, b)
	if max == 0 {
		return 1
	}
	s := 1 - math.Abs(a-b)/max
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
