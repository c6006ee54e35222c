// Convex hull of integer point sets, Andrew's monotone chain.
package convexhull

import (
	"sort"

	clipper "github.com/ctessum/go.clipper"
)

// products of coordinates below this bound fit into int64
const safeDelta = 1 << 31

// Cross returns the sign of (a - o) x (b - o):
// 1 for a counter clockwise turn, -1 for a clockwise one, 0 when collinear.
func Cross(o, a, b *clipper.IntPoint) int {
	ax, ay := a.X-o.X, a.Y-o.Y
	bx, by := b.X-o.X, b.Y-o.Y
	if small(ax) && small(ay) && small(bx) && small(by) {
		c := ax*by - ay*bx
		switch {
		case c > 0:
			return 1
		case c < 0:
			return -1
		}
		return 0
	}
	return clipper.Int128Mul(ax, by).Cmp(clipper.Int128Mul(ay, bx))
}

func small(v clipper.CInt) bool {
	return v < safeDelta && v > -safeDelta
}

// Hull returns the counter clockwise hull of points without the closing point.
// Collinear points are dropped. Less than 3 points are returned for degenerate input.
func Hull(points clipper.Path) clipper.Path {
	pts := make(clipper.Path, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	// unique
	u := pts[:0]
	for i := range pts {
		if len(u) > 0 && u[len(u)-1].X == pts[i].X && u[len(u)-1].Y == pts[i].Y {
			continue
		}
		u = append(u, pts[i])
	}
	pts = u
	if len(pts) < 3 {
		return clone(pts)
	}

	hull := make(clipper.Path, 0, 2*len(pts))
	// lower
	for i := 0; i < len(pts); i++ {
		for len(hull) >= 2 && Cross(hull[len(hull)-2], hull[len(hull)-1], pts[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pts[i])
	}
	// upper
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		for len(hull) >= lower && Cross(hull[len(hull)-2], hull[len(hull)-1], pts[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pts[i])
	}
	// the last point repeats the first one
	return clone(hull[:len(hull)-1])
}

func clone(p clipper.Path) clipper.Path {
	retVal := make(clipper.Path, len(p))
	for i := range p {
		retVal[i] = &clipper.IntPoint{X: p[i].X, Y: p[i].Y}
	}
	return retVal
}
