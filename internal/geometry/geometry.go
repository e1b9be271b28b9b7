// Package geometry holds the 2-D primitives used by the exercise classifiers.
// Points live in normalized frame space: x and y in [0,1], origin top-left.
package geometry

import "math"

// Point is a position in normalized frame coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Angle returns the angle at vertex b between rays b->a and b->c, in degrees within [0,180].
func Angle(a, b, c Point) float64 {
	radians := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	angle := math.Abs(radians * 180.0 / math.Pi)
	if angle > 180.0 {
		angle = 360.0 - angle
	}
	return angle
}

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Sub returns the vector from q to p.
func Sub(p, q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// VectorAngle returns the angle between two vectors in degrees using the
// clipped arccos of their normalized dot product. A zero-length vector yields 0.
func VectorAngle(u, v Point) float64 {
	magU := math.Hypot(u.X, u.Y)
	magV := math.Hypot(v.X, v.Y)
	if magU == 0 || magV == 0 {
		return 0
	}
	cos := (u.X*v.X + u.Y*v.Y) / (magU * magV)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180.0 / math.Pi
}
