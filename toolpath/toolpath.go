/*
Package toolpath turns the joined image into the cutter paths.

All the functions work on the fixed point paths and do not keep any state.
The radii are in the document units.
*/
package toolpath

import (
	"errors"
	"fmt"

	"github.com/akavel/polyclip-go"
	clipper "github.com/ctessum/go.clipper"
	"github.com/golang/glog"

	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
)

const (
	DefaultMiterLimit = 3.0
	DefaultZenCap     = 400

	eps = 1.0e-5
)

var ErrNoScanDirection = errors.New("toolpath: simple infill needs the horizontal or the vertical fill")

type FillType int

const (
	FillNone FillType = iota
	FillHorizontal
	FillVertical
	FillZenGarden
)

func (ft FillType) String() string {
	switch ft {
	case FillNone:
		return "no fill"
	case FillHorizontal:
		return "horizontal"
	case FillVertical:
		return "vertical"
	case FillZenGarden:
		return "zen garden"
	default:
	}
	return "unknown fill type"
}

// Params controls Build
type Params struct {
	Radius       float64
	FillRadius   float64 // <= 0 means Radius
	Fill         FillType
	Invert       bool
	SimpleInfill bool
	DrawOutline  bool
	Interleaved  bool // see Stripes
	ZenCap       int
}

func (prm Params) String() string {
	return fmt.Sprintf("radius %f, fill radius %f, fill %s, invert %v, simple infill %v, outline %v, interleaved %v",
		prm.Radius, prm.fillRadius(), prm.Fill, prm.Invert, prm.SimpleInfill, prm.DrawOutline, prm.Interleaved)
}

func (prm Params) stripes(inside bool) Stripes {
	return Stripes{Vertical: prm.Fill == FillVertical, Inside: inside, Interleaved: prm.Interleaved}
}

func (prm Params) fillRadius() float64 {
	if prm.FillRadius <= 0 {
		return prm.Radius
	}
	return prm.FillRadius
}

// Build runs the offset and fill stages over the joined image
func Build(src clipper.Paths, prm Params) (clipper.Paths, error) {
	fr := prm.fillRadius()
	zenCap := prm.ZenCap
	if zenCap <= 0 {
		zenCap = DefaultZenCap
	}

	if prm.SimpleInfill && fr > eps {
		switch prm.Fill {
		case FillVertical, FillHorizontal:
			return infill(src, prm.stripes(true), fr, prm.DrawOutline), nil
		default:
		}
		return nil, ErrNoScanDirection
	}

	if prm.Radius <= eps && fr <= eps {
		glog.V(1).Infoln("no offset, the image is exported as is")
		return src, nil
	}

	retVal := Offset(src, prm.Radius)
	base := retVal
	if prm.Invert {
		base = Invert(retVal)
	}
	switch prm.Fill {
	case FillZenGarden:
		retVal = append(retVal, ZenGarden(base, fr, zenCap)...)
	case FillVertical, FillHorizontal:
		retVal = append(retVal, prm.stripes(false).Fill(base, fr)...)
	default:
	}
	return retVal, nil
}

/*
 ************************** bounds ****************************
 */

func toPolygon(ps clipper.Paths) polyclip.Polygon {
	retVal := make(polyclip.Polygon, 0, len(ps))
	for _, p := range ps {
		if len(p) == 0 {
			continue
		}
		c := make(polyclip.Contour, len(p))
		for i, pt := range p {
			c[i] = polyclip.Point{X: float64(pt.X), Y: float64(pt.Y)}
		}
		retVal = append(retVal, c)
	}
	return retVal
}

// Bounds returns the corners of the bounding box grown by one unit,
// both are at the origin for an empty set
func Bounds(ps clipper.Paths) (minP, maxP clipper.IntPoint) {
	poly := toPolygon(ps)
	if len(poly) == 0 {
		return
	}
	bb := poly.BoundingBox()
	minP = clipper.IntPoint{X: clipper.CInt(bb.Min.X) - 1, Y: clipper.CInt(bb.Min.Y) - 1}
	maxP = clipper.IntPoint{X: clipper.CInt(bb.Max.X) + 1, Y: clipper.CInt(bb.Max.Y) + 1}
	return
}

func inside(p clipper.Path, minP, maxP clipper.IntPoint) bool {
	for _, pt := range p {
		if pt.X < minP.X || pt.Y < minP.Y || pt.X > maxP.X || pt.Y > maxP.Y {
			return false
		}
	}
	return true
}

func rect(x0, y0, x1, y1 clipper.CInt) clipper.Path {
	return clipper.Path{
		&clipper.IntPoint{X: x0, Y: y0},
		&clipper.IntPoint{X: x1, Y: y0},
		&clipper.IntPoint{X: x1, Y: y1},
		&clipper.IntPoint{X: x0, Y: y1},
	}
}

func execute(ct clipper.ClipType, subj, clip clipper.Paths) clipper.Paths {
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(subj, clipper.PtSubject, true)
	c.AddPaths(clip, clipper.PtClip, true)
	retVal, ok := c.Execute1(ct, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		glog.Errorln("boolean operation", ct, "failed")
		return nil
	}
	return retVal
}

/*
 ************************** offset ****************************
 */

// Offset grows the paths by the radius with the mitered joins,
// a negative radius shrinks them
func Offset(ps clipper.Paths, radius float64) clipper.Paths {
	co := clipper.NewClipperOffset()
	co.MiterLimit = DefaultMiterLimit
	co.AddPaths(ps, clipper.JtMiter, clipper.EtClosedPolygon)
	return co.Execute(fp.Scale * radius)
}

// ZenGarden offsets the paths again and again by the tool diameter.
// Every generation is kept while its paths stay inside the bounding box
// of the source, it stops when a generation has a single path or after
// maxGen generations.
func ZenGarden(src clipper.Paths, fillRadius float64, maxGen int) clipper.Paths {
	if len(src) == 0 {
		return nil
	}
	minP, maxP := Bounds(src)
	level := Offset(src, 2*fillRadius)
	retVal := fp.ClonePaths(level)
	gen := 1
	for ; len(level) > 1 && gen < maxGen; gen++ {
		level = Offset(level, 2*fillRadius)
		retVal = append(retVal, keep(level, minP, maxP)...)
	}
	glog.V(2).Infoln("zen garden:", gen, "generation(s),", len(retVal), "path(s)")
	return retVal
}

// keep drops the degenerate paths and the paths leaving the box
func keep(level clipper.Paths, minP, maxP clipper.IntPoint) clipper.Paths {
	var retVal clipper.Paths
	for _, p := range level {
		if len(p) > 2 && inside(p, minP, maxP) {
			retVal = append(retVal, p)
		}
	}
	return retVal
}

/*
 ************************** scan fills ****************************
 */

// Stripes describes a scan fill. The stripes are twice the tool diameter
// wide and tile the bounding box of the source. Interleaved stripes are one
// tool diameter wide and every other one is left out.
type Stripes struct {
	Vertical    bool
	Inside      bool // keep the parts inside the source
	Interleaved bool
}

func (st Stripes) String() string {
	retVal := "horizontal"
	if st.Vertical {
		retVal = "vertical"
	}
	if st.Inside {
		retVal += " infill"
	}
	if st.Interleaved {
		retVal += ", interleaved"
	}
	return retVal
}

// width and step of the stripes for the fill radius
func (st Stripes) width(fillRadius float64) (w, step clipper.CInt) {
	if st.Interleaved {
		w = clipper.CInt(2*fp.Scale*fillRadius) + 1
		return w, 2 * w
	}
	w = clipper.CInt(4*fp.Scale*fillRadius) + 1
	return w, w
}

// Fill cuts the stripes with the source
func (st Stripes) Fill(src clipper.Paths, fillRadius float64) clipper.Paths {
	if len(src) == 0 {
		return nil
	}
	w, step := st.width(fillRadius)
	minP, maxP := Bounds(src)
	var retVal clipper.Paths
	n := 0
	if st.Vertical {
		for x := minP.X; x < maxP.X; x += step {
			retVal = append(retVal, stripe(src, rect(x, minP.Y, x+w, maxP.Y), st.Inside)...)
			n++
		}
	} else {
		for y := minP.Y; y < maxP.Y; y += step {
			retVal = append(retVal, stripe(src, rect(minP.X, y, maxP.X, y+w), st.Inside)...)
			n++
		}
	}
	glog.V(2).Infoln(st, "fill:", n, "stripe(s),", len(retVal), "path(s)")
	return retVal
}

// Horizontal covers the bounding box with stripes and keeps the parts
// outside the source paths
func Horizontal(src clipper.Paths, fillRadius float64) clipper.Paths {
	return Stripes{}.Fill(src, fillRadius)
}

func Vertical(src clipper.Paths, fillRadius float64) clipper.Paths {
	return Stripes{Vertical: true}.Fill(src, fillRadius)
}

// HorizontalInfill keeps the parts of the stripes inside the source,
// the source itself is appended when outline is set
func HorizontalInfill(src clipper.Paths, fillRadius float64, outline bool) clipper.Paths {
	return infill(src, Stripes{Inside: true}, fillRadius, outline)
}

func VerticalInfill(src clipper.Paths, fillRadius float64, outline bool) clipper.Paths {
	return infill(src, Stripes{Vertical: true, Inside: true}, fillRadius, outline)
}

func infill(src clipper.Paths, st Stripes, fillRadius float64, outline bool) clipper.Paths {
	retVal := st.Fill(src, fillRadius)
	if outline {
		retVal = append(retVal, src...)
	}
	return retVal
}

func stripe(src clipper.Paths, line clipper.Path, inside bool) clipper.Paths {
	if inside {
		return execute(clipper.CtIntersection, src, clipper.Paths{line})
	}
	return execute(clipper.CtDifference, clipper.Paths{line}, src)
}

/*
 ************************** inversion ****************************
 */

// Invert returns the outer stencil of the paths followed by every path
// with the opposite winding
func Invert(src clipper.Paths) clipper.Paths {
	outer := make(clipper.Paths, 0, len(src))
	for _, p := range src {
		if clipper.Area(p) < 0 {
			p = fp.Reverse(p)
		}
		outer = append(outer, p)
	}
	retVal := execute(clipper.CtUnion, outer, nil)
	return append(retVal, fp.ReversePaths(src)...)
}
