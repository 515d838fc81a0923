package geom

import "math"

// Ray is a world-space ray with an origin and a direction. Dir does not
// need to be normalized for the operations in this package.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// PointAt returns the point Origin + t*Dir.
func (r Ray) PointAt(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Hit is the result of a successful raycast.
type Hit struct {
	// Point is the world-space intersection point.
	Point Vec3
	// Normal is the surface normal at the intersection.
	Normal Vec3
	// T is the ray parameter of the intersection, always >= 0.
	T float64
}

// IntersectHorizontalPlane casts the ray against the infinite horizontal
// plane at the given Y height. It reports false when the ray is parallel
// to the plane or the intersection lies behind the origin.
func (r Ray) IntersectHorizontalPlane(y float64) (Hit, bool) {
	if math.Abs(r.Dir.Y) < 1e-9 {
		return Hit{}, false
	}
	t := (y - r.Origin.Y) / r.Dir.Y
	if t < 0 {
		return Hit{}, false
	}
	return Hit{
		Point:  r.PointAt(t),
		Normal: Vec3{Y: 1},
		T:      t,
	}, true
}

// SnapYawDeg snaps the horizontal projection of dir to the nearest 90°
// increment and returns the result in [0, 360). A projection angle of 44°
// snaps to 0°, 46° snaps to 90°. Directions with no horizontal component
// snap to 0°.
//
// Postcondition: result is one of 0, 90, 180, 270.
func SnapYawDeg(dir Vec3) float64 {
	if dir.HorizontalLengthSq() < 1e-12 {
		return 0
	}
	deg := math.Atan2(dir.X, dir.Z) * 180 / math.Pi
	snapped := math.Round(deg/90) * 90
	return math.Mod(snapped+360, 360)
}
