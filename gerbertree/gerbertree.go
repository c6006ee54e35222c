// The parsed Gerber document.
//
// A document is a list of items. Aperture blocks and step and repeat blocks
// hold their own item lists, so the document is a tree. The item set is closed:
// only the types of this package implement Item.
package gerbertree

import (
	"fmt"
	"math"
	"strconv"

	"github.com/VasiliyTurchenko/gerber2ngc/amprocessor"
	"github.com/VasiliyTurchenko/gerber2ngc/apertures"
	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
	"github.com/VasiliyTurchenko/gerber2ngc/xy"
)

type Item interface {
	String() string
	item()
}

// Point is a position in the document units
type Point struct {
	X, Y float64
}

func (p Point) String() string {
	return "(" + strconv.FormatFloat(p.X, 'f', 6, 64) + "," + strconv.FormatFloat(p.Y, 'f', 6, 64) + ")"
}

func (p Point) Add(dx, dy float64) Point {
	return Point{p.X + dx, p.Y + dy}
}

type DirectiveKind int

const (
	DirPolarity DirectiveKind = iota + 1
	DirMirror
	DirRotation
	DirScale
	DirAperture
)

func (dk DirectiveKind) String() string {
	switch dk {
	case DirPolarity:
		return "polarity"
	case DirMirror:
		return "mirroring"
	case DirRotation:
		return "rotation"
	case DirScale:
		return "scale"
	case DirAperture:
		return "aperture select"
	default:
	}
	return "unknown directive"
}

// Directive changes the graphics state, only the field named by Kind is meaningful
type Directive struct {
	Kind     DirectiveKind
	Polarity PolType
	Mirror   MirrorType
	Rotation float64 // degrees, counterclockwise
	Scale    float64
	Aperture int
}

func (d *Directive) String() string {
	switch d.Kind {
	case DirPolarity:
		return d.Polarity.String()
	case DirMirror:
		return d.Mirror.String()
	case DirRotation:
		return "Rotation: " + strconv.FormatFloat(d.Rotation, 'f', 5, 64)
	case DirScale:
		return "Scale: " + strconv.FormatFloat(d.Scale, 'f', 5, 64)
	case DirAperture:
		return "Aperture: D" + strconv.Itoa(d.Aperture)
	default:
	}
	return d.Kind.String()
}

type ApertureDef struct {
	Def *apertures.Aperture
}

func (a *ApertureDef) String() string {
	return a.Def.String()
}

type MacroDef struct {
	Macro *amprocessor.ApertureMacro
}

func (m *MacroDef) String() string {
	return m.Macro.String()
}

// Segment is a linear D01 draw
type Segment struct {
	From, To Point
}

func (s *Segment) String() string {
	return "Segment " + s.From.String() + " -> " + s.To.String()
}

// Arc is a circular D01 draw with the center already resolved
type Arc struct {
	From, To, Center Point
	Mode             IPmode // IPModeCwC or IPModeCCwC
	Radius           float64 // distance from the center to From
	RadiusDeviation  float64 // distance to To minus Radius
	Begin            float64 // angle of From, radians
	Sweep            float64 // signed, positive is counterclockwise
}

func (a *Arc) String() string {
	return fmt.Sprintf("Arc %s -> %s, center %s, r=%.6f, sweep %.3f deg (%s)",
		a.From, a.To, a.Center, a.Radius, a.Sweep*180/math.Pi, a.Mode)
}

// Points linearizes the arc, both ends included.
// The radius changes linearly from the start to the end, the end point is
// taken as is to keep the contours closed.
func (a *Arc) Points(lin fp.Linearization) []Point {
	full := lin.Count(a.Radius)
	n := int(math.Ceil(float64(full) * math.Abs(a.Sweep) / (2 * math.Pi)))
	if n < 1 {
		n = 1
	}
	retVal := make([]Point, 0, n+1)
	retVal = append(retVal, a.From)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		ang := a.Begin + a.Sweep*t
		r := a.Radius + a.RadiusDeviation*t
		retVal = append(retVal, Point{a.Center.X + r*math.Cos(ang), a.Center.Y + r*math.Sin(ang)})
	}
	return append(retVal, a.To)
}

// Flash is a D03 of the current aperture
type Flash struct {
	At Point
}

func (f *Flash) String() string {
	return "Flash at " + f.At.String()
}

// Contour is one closed boundary of a region: segments and arcs
type Contour struct {
	Items []Item
}

// Points returns the boundary as a point stream, arcs are linearized
func (c *Contour) Points(lin fp.Linearization) []Point {
	retVal := make([]Point, 0, len(c.Items)+1)
	for _, it := range c.Items {
		switch v := it.(type) {
		case *Segment:
			if len(retVal) == 0 {
				retVal = append(retVal, v.From)
			}
			retVal = append(retVal, v.To)
		case *Arc:
			pts := v.Points(lin)
			if len(retVal) > 0 {
				pts = pts[1:]
			}
			retVal = append(retVal, pts...)
		}
	}
	return retVal
}

// Region is a G36/G37 statement, each D02 inside starts a new contour
type Region struct {
	Contours []*Contour
	Line     int // token number of G36
}

func (r *Region) String() string {
	n := 0
	for _, c := range r.Contours {
		n += len(c.Items)
	}
	return fmt.Sprintf("Region at %d: %d contour(s), %d segment(s)", r.Line, len(r.Contours), n)
}

type ApertureBlock struct {
	Code  int
	Items []Item
}

func (ab *ApertureBlock) String() string {
	return fmt.Sprintf("Aperture block D%d: %d item(s)", ab.Code, len(ab.Items))
}

type StepRepeat struct {
	NX, NY int
	DX, DY float64
	Items  []Item
}

func (sr *StepRepeat) String() string {
	return fmt.Sprintf("Step and repeat %dx%d, step (%.6f, %.6f): %d item(s)", sr.NX, sr.NY, sr.DX, sr.DY, len(sr.Items))
}

func (*Directive) item()     {}
func (*ApertureDef) item()   {}
func (*MacroDef) item()      {}
func (*Segment) item()       {}
func (*Arc) item()           {}
func (*Flash) item()         {}
func (*Region) item()        {}
func (*ApertureBlock) item() {}
func (*StepRepeat) item()    {}

// Document is the whole file
type Document struct {
	Format *xy.FormatSpec
	Units  Units
	Items  []Item
}

// Stats counts the items of the tree by kind
type Stats struct {
	Directives, ApertureDefs, MacroDefs int
	Segments, Arcs, Flashes, Regions    int
	Blocks, StepRepeats                 int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d directive(s), %d aperture(s), %d macro(s), %d segment(s), %d arc(s), %d flash(es), "+
		"%d region(s), %d aperture block(s), %d step and repeat block(s)",
		s.Directives, s.ApertureDefs, s.MacroDefs, s.Segments, s.Arcs, s.Flashes, s.Regions, s.Blocks, s.StepRepeats)
}

func (doc *Document) Stats() Stats {
	var s Stats
	Walk(doc.Items, func(it Item) {
		switch it.(type) {
		case *Directive:
			s.Directives++
		case *ApertureDef:
			s.ApertureDefs++
		case *MacroDef:
			s.MacroDefs++
		case *Segment:
			s.Segments++
		case *Arc:
			s.Arcs++
		case *Flash:
			s.Flashes++
		case *Region:
			s.Regions++
		case *ApertureBlock:
			s.Blocks++
		case *StepRepeat:
			s.StepRepeats++
		}
	})
	return s
}

// Walk visits the items depth first in the document order.
// The contents of the regions are not visited.
func Walk(items []Item, visit func(Item)) {
	for _, it := range items {
		visit(it)
		switch v := it.(type) {
		case *ApertureBlock:
			Walk(v.Items, visit)
		case *StepRepeat:
			Walk(v.Items, visit)
		}
	}
}
