// Fixed point coordinates used by the polygon engine.
// All the boolean and offset operations work on integers scaled by Scale,
// floats are used only while converting Gerber values in and out.
package fixedpoint

import (
	"math"

	clipper "github.com/ctessum/go.clipper"
)

// Scale converts document units to the integer domain.
const Scale float64 = 1e9

// ToFixed returns round(Scale * x)
func ToFixed(x float64) clipper.CInt {
	return clipper.CInt(math.Round(x * Scale))
}

// ToFloat returns i / Scale
func ToFloat(i clipper.CInt) float64 {
	return float64(i) / Scale
}

// Pt makes an integer point from the document coordinates
func Pt(x, y float64) *clipper.IntPoint {
	return &clipper.IntPoint{X: ToFixed(x), Y: ToFixed(y)}
}

// XY returns the document coordinates of the point
func XY(p *clipper.IntPoint) (float64, float64) {
	return ToFloat(p.X), ToFloat(p.Y)
}

// Key is an exact integer coordinate pair usable as a map key
type Key struct {
	X, Y clipper.CInt
}

func KeyOf(p *clipper.IntPoint) Key {
	return Key{p.X, p.Y}
}

func Equal(a, b *clipper.IntPoint) bool {
	return a.X == b.X && a.Y == b.Y
}

// Close appends the first point to the path if it is not closed yet
func Close(p clipper.Path) clipper.Path {
	if len(p) < 2 {
		return p
	}
	if !Equal(p[0], p[len(p)-1]) {
		p = append(p, &clipper.IntPoint{X: p[0].X, Y: p[0].Y})
	}
	return p
}

// IsClosed reports whether the first and the last points coincide
func IsClosed(p clipper.Path) bool {
	return len(p) > 1 && Equal(p[0], p[len(p)-1])
}

// Clone makes a deep copy, the points are not shared
func Clone(p clipper.Path) clipper.Path {
	retVal := make(clipper.Path, len(p))
	for i := range p {
		retVal[i] = &clipper.IntPoint{X: p[i].X, Y: p[i].Y}
	}
	return retVal
}

func ClonePaths(ps clipper.Paths) clipper.Paths {
	retVal := make(clipper.Paths, len(ps))
	for i := range ps {
		retVal[i] = Clone(ps[i])
	}
	return retVal
}

// Reverse returns a copy of the path in the opposite order
func Reverse(p clipper.Path) clipper.Path {
	n := len(p)
	retVal := make(clipper.Path, n)
	for i := range p {
		retVal[n-1-i] = &clipper.IntPoint{X: p[i].X, Y: p[i].Y}
	}
	return retVal
}

func ReversePaths(ps clipper.Paths) clipper.Paths {
	retVal := make(clipper.Paths, len(ps))
	for i := range ps {
		retVal[i] = Reverse(ps[i])
	}
	return retVal
}

// Linearization controls how curves are split into straight segments
type Linearization struct {
	SegmentLength float64
	MinSegments   int
}

func (l Linearization) Count(r float64) int {
	return SegmentCount(r, l.SegmentLength, l.MinSegments)
}

// SegmentCount returns the number of straight segments used for a circle of radius r,
// max(minSegments, ceil(2*pi*r/minSegLen))
func SegmentCount(r, minSegLen float64, minSegments int) int {
	if minSegLen <= 0 || r <= 0 {
		return minSegments
	}
	z := math.Ceil(2.0 * math.Pi * r / minSegLen)
	if math.IsNaN(z) || math.IsInf(z, 0) || z < float64(minSegments) {
		return minSegments
	}
	// keep pathological inputs bounded
	if z > 1<<16 {
		return 1 << 16
	}
	return int(z)
}
