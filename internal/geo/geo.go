package geo

import "math"

// Point is a 2-D position or displacement in field units.
type Point struct {
	X float64
	Y float64
}

func (p Point) Add(o Point) Point     { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Sub(o Point) Point     { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Rotate rotates the point about the origin by theta radians,
// counterclockwise positive.
func (p Point) Rotate(theta float64) Point {
	sin, cos := math.Sincos(theta)
	return Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

func (p Point) Distance(o Point) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// Bearing returns the field-frame angle from p to o.
func (p Point) Bearing(o Point) float64 {
	return math.Atan2(o.Y-p.Y, o.X-p.X)
}

func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Pose is a Point plus a heading in radians, kept in (-pi, pi].
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

func (p Pose) Point() Point { return Point{p.X, p.Y} }

func (p Pose) Add(o Point) Pose { return Pose{p.X + o.X, p.Y + o.Y, p.Theta} }
func (p Pose) Sub(o Point) Pose { return Pose{p.X - o.X, p.Y - o.Y, p.Theta} }

func (p Pose) Distance(o Point) float64 {
	return p.Point().Distance(o)
}

// AngleTo returns the bearing from the pose to the point relative to the
// pose's heading, wrapped to (-pi, pi].
func (p Pose) AngleTo(o Point) float64 {
	return WrapAngle(p.Point().Bearing(o) - p.Theta)
}

func ToRad(deg float64) float64 { return deg * math.Pi / 180 }
func ToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// WrapAngle normalizes an angle to the canonical (-pi, pi] range.
func WrapAngle(theta float64) float64 {
	wrapped := math.Mod(theta, 2*math.Pi)
	if wrapped > math.Pi {
		wrapped -= 2 * math.Pi
	} else if wrapped <= -math.Pi {
		wrapped += 2 * math.Pi
	}
	return wrapped
}
