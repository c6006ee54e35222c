/*
Package render joins the items of a Gerber document into one polygon set.

The items are processed strictly in the document order. Every item with
a geometry is added to or subtracted from the shared accumulator at once,
so a clear object removes only what was exposed before it.
*/
package render

import (
	"errors"
	"fmt"

	clipper "github.com/ctessum/go.clipper"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"

	"github.com/VasiliyTurchenko/gerber2ngc/apertures"
	"github.com/VasiliyTurchenko/gerber2ngc/convexhull"
	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
	"github.com/VasiliyTurchenko/gerber2ngc/gerbertree"
	"github.com/VasiliyTurchenko/gerber2ngc/regions"
)

var (
	ErrMissingAperture = errors.New("render: aperture is not defined")
	ErrRecursionDepth  = errors.New("render: blocks are nested too deep")
	ErrBlockDraw       = errors.New("render: aperture block can not draw")
)

// the additive paths are merged into the accumulator when there are this many
const pendingLimit = 512

/*
 ************************** accumulator ****************************
 */

// accumulator is the image built so far.
// Additions are collected and merged lazily, a subtraction merges them first.
type accumulator struct {
	paths   clipper.Paths
	pending clipper.Paths
}

func (acc *accumulator) add(ps clipper.Paths) {
	acc.pending = append(acc.pending, ps...)
	if len(acc.pending) > pendingLimit {
		acc.merge()
	}
}

func (acc *accumulator) subtract(ps clipper.Paths) {
	if len(ps) == 0 {
		return
	}
	acc.merge()
	acc.paths = execute(clipper.CtDifference, acc.paths, ps)
}

func (acc *accumulator) merge() {
	if len(acc.pending) == 0 {
		return
	}
	subj := append(acc.paths, acc.pending...)
	acc.paths = execute(clipper.CtUnion, subj, nil)
	acc.pending = nil
}

func (acc *accumulator) result() clipper.Paths {
	acc.merge()
	return acc.paths
}

// execute runs one boolean operation with the nonzero rule for both operands
func execute(ct clipper.ClipType, subj, clip clipper.Paths) clipper.Paths {
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(subj, clipper.PtSubject, true)
	if len(clip) > 0 {
		c.AddPaths(clip, clipper.PtClip, true)
	}
	retVal, ok := c.Execute1(ct, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		glog.Errorln("boolean operation", ct, "failed")
		return subj
	}
	return retVal
}

// Union merges the paths with the nonzero rule
func Union(ps clipper.Paths) clipper.Paths {
	return execute(clipper.CtUnion, ps, nil)
}

/*
 ************************** join context ****************************
 */

// JoinContext owns the accumulator and the definitions met so far
type JoinContext struct {
	Lin      fp.Linearization
	MaxDepth int

	realizer  *apertures.Realizer
	apertures map[int]*apertures.Aperture
	blocks    map[int]*gerbertree.ApertureBlock
	templates map[int]*apertures.Realization
	acc       accumulator

	//statistic
	FlashCounter      int
	BlockFlashCounter int
	SegmentCounter    int
	ArcCounter        int
	RegionCounter     int
	StepRepeatCounter int
	SkippedCounter    int
	MaxDepthMet       int
}

func NewJoinContext(lin fp.Linearization, maxDepth int) *JoinContext {
	retVal := new(JoinContext)
	retVal.Lin = lin
	retVal.MaxDepth = maxDepth
	retVal.realizer = apertures.NewRealizer(lin)
	retVal.apertures = make(map[int]*apertures.Aperture)
	retVal.blocks = make(map[int]*gerbertree.ApertureBlock)
	retVal.templates = make(map[int]*apertures.Realization)
	return retVal
}

func (jc *JoinContext) Statistic() string {
	return fmt.Sprintf("flashes: %d, block flashes: %d, segments: %d, arcs: %d, regions: %d, "+
		"step and repeat copies: %d, skipped strokes: %d, max nesting: %d",
		jc.FlashCounter, jc.BlockFlashCounter, jc.SegmentCounter, jc.ArcCounter, jc.RegionCounter,
		jc.StepRepeatCounter, jc.SkippedCounter, jc.MaxDepthMet)
}

// Join processes the whole document and returns the resulting image
func (jc *JoinContext) Join(doc *gerbertree.Document) (clipper.Paths, error) {
	if _, err := jc.JoinItems(doc.Items, NewScope()); err != nil {
		return nil, err
	}
	return jc.acc.result(), nil
}

// JoinItems processes the item list under the scope and returns the scope
// as the list leaves it
func (jc *JoinContext) JoinItems(items []gerbertree.Item, scope Scope) (Scope, error) {
	if scope.Depth > jc.MaxDepth {
		return scope, fmt.Errorf("%w: depth %d", ErrRecursionDepth, scope.Depth)
	}
	if scope.Depth > jc.MaxDepthMet {
		jc.MaxDepthMet = scope.Depth
	}
	var err error
	for _, it := range items {
		switch v := it.(type) {
		case *gerbertree.Directive:
			scope = scope.Apply(v)
		case *gerbertree.ApertureDef:
			jc.apertures[v.Def.Code] = v.Def
			delete(jc.blocks, v.Def.Code)
			delete(jc.templates, v.Def.Code)
		case *gerbertree.MacroDef:
			jc.realizer.Macros[v.Macro.Name] = v.Macro
		case *gerbertree.ApertureBlock:
			jc.blocks[v.Code] = v
			delete(jc.apertures, v.Code)
		case *gerbertree.Flash:
			err = jc.flash(v, scope)
		case *gerbertree.Segment:
			err = jc.segment(v, scope)
		case *gerbertree.Arc:
			err = jc.arc(v, scope)
		case *gerbertree.Region:
			err = jc.region(v, scope)
		case *gerbertree.StepRepeat:
			scope, err = jc.stepRepeat(v, scope)
		default:
			err = fmt.Errorf("render: unexpected item %s", it)
		}
		if err != nil {
			return scope, err
		}
	}
	return scope, nil
}

// apply adds or subtracts the paths according to the polarity
func (jc *JoinContext) apply(ps clipper.Paths, pol PolType) {
	if pol.Expose(true) {
		jc.acc.add(ps)
	} else {
		jc.acc.subtract(ps)
	}
}

// template returns the aperture realized under the dark polarity
func (jc *JoinContext) template(code int) (*apertures.Realization, error) {
	if tpl, ok := jc.templates[code]; ok {
		return tpl, nil
	}
	apert, ok := jc.apertures[code]
	if !ok {
		return nil, fmt.Errorf("%w: D%d", ErrMissingAperture, code)
	}
	tpl, err := jc.realizer.Realize(apert, PolTypeDark)
	if err != nil {
		return nil, err
	}
	jc.templates[code] = tpl
	return tpl, nil
}

func (jc *JoinContext) flash(f *gerbertree.Flash, scope Scope) error {
	if block, ok := jc.blocks[scope.Aperture]; ok {
		jc.BlockFlashCounter++
		_, err := jc.JoinItems(block.Items, scope.ForBlock(f.At))
		return err
	}
	tpl, err := jc.template(scope.Aperture)
	if err != nil {
		return err
	}
	if len(tpl.Paths) == 0 {
		glog.Warningln("flash of the empty aperture", scope.Aperture, "is skipped")
		jc.SkippedCounter++
		return nil
	}
	jc.FlashCounter++
	jc.apply(Compose(tpl, scope.Placement(f.At)), scope.Polarity)
	return nil
}

// Compose puts the template paths through the matrix and combines them in
// their order: an exposed path is added, a cleared one is subtracted
func Compose(tpl *apertures.Realization, m mgl64.Mat3) clipper.Paths {
	var retVal clipper.Paths
	for i, p := range tpl.Paths {
		tp := ccw(TransformPath(p, m))
		if tpl.Exposure[i] {
			retVal = execute(clipper.CtUnion, retVal, clipper.Paths{tp})
		} else {
			retVal = execute(clipper.CtDifference, retVal, clipper.Paths{tp})
		}
	}
	return retVal
}

// strokePoints returns the exposed template points placed at the point
func (jc *JoinContext) strokePoints(tpl *apertures.Realization, scope Scope, at gerbertree.Point) clipper.Path {
	m := scope.Placement(at)
	var retVal clipper.Path
	for i, p := range tpl.Paths {
		if tpl.Exposure[i] {
			retVal = append(retVal, TransformPath(p, m)...)
		}
	}
	return retVal
}

func (jc *JoinContext) strokeTemplate(scope Scope) (*apertures.Realization, error) {
	if _, ok := jc.blocks[scope.Aperture]; ok {
		return nil, fmt.Errorf("%w: D%d", ErrBlockDraw, scope.Aperture)
	}
	return jc.template(scope.Aperture)
}

// hull is the swept shape of the aperture between two points, nil when degenerate
func (jc *JoinContext) hull(tpl *apertures.Realization, scope Scope, from, to gerbertree.Point) clipper.Path {
	pts := append(jc.strokePoints(tpl, scope, from), jc.strokePoints(tpl, scope, to)...)
	h := convexhull.Hull(pts)
	if len(h) < 3 {
		return nil
	}
	return h
}

func (jc *JoinContext) segment(s *gerbertree.Segment, scope Scope) error {
	tpl, err := jc.strokeTemplate(scope)
	if err != nil {
		return err
	}
	h := jc.hull(tpl, scope, s.From, s.To)
	if h == nil {
		glog.Warningln("empty hull, the stroke is skipped:", s)
		jc.SkippedCounter++
		return nil
	}
	jc.SegmentCounter++
	jc.apply(clipper.Paths{h}, scope.Polarity)
	return nil
}

func (jc *JoinContext) arc(a *gerbertree.Arc, scope Scope) error {
	tpl, err := jc.strokeTemplate(scope)
	if err != nil {
		return err
	}
	pts := a.Points(jc.Lin)
	var hulls clipper.Paths
	for i := 1; i < len(pts); i++ {
		if h := jc.hull(tpl, scope, pts[i-1], pts[i]); h != nil {
			hulls = append(hulls, h)
		}
	}
	if len(hulls) == 0 {
		glog.Warningln("empty hull, the arc is skipped:", a)
		jc.SkippedCounter++
		return nil
	}
	jc.ArcCounter++
	jc.apply(Union(hulls), scope.Polarity)
	return nil
}

// regions are placed by the block transformation only,
// the aperture transformation parameters do not affect them
func (jc *JoinContext) region(r *gerbertree.Region, scope Scope) error {
	var all clipper.Paths
	for _, c := range r.Contours {
		pts := c.Points(jc.Lin)
		path := make(clipper.Path, 0, len(pts))
		for _, p := range pts {
			v := scope.Transform.Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
			path = append(path, fp.Pt(v[0], v[1]))
		}
		resolved, err := regions.Resolve(path, jc.MaxDepth)
		if errors.Is(err, regions.ErrEmptyRegion) {
			glog.Warningln("empty contour in the region at", r.Line)
			continue
		}
		if err != nil {
			return fmt.Errorf("region at %d: %w", r.Line, err)
		}
		all = append(all, resolved...)
	}
	if len(all) == 0 {
		jc.SkippedCounter++
		return nil
	}
	jc.RegionCounter++
	jc.apply(Union(all), scope.Polarity)
	return nil
}

func (jc *JoinContext) stepRepeat(sr *gerbertree.StepRepeat, scope Scope) (Scope, error) {
	last := scope
	for j := 0; j < sr.NY; j++ {
		for i := 0; i < sr.NX; i++ {
			jc.StepRepeatCounter++
			var err error
			last, err = jc.JoinItems(sr.Items, scope.ForStep(float64(i)*sr.DX, float64(j)*sr.DY))
			if err != nil {
				return scope, err
			}
		}
	}
	return scope.Escape(last), nil
}

/*
 ************************** path helpers ****************************
 */

// TransformPath applies the matrix to every point of the fixed point path
func TransformPath(p clipper.Path, m mgl64.Mat3) clipper.Path {
	retVal := make(clipper.Path, len(p))
	for i, pt := range p {
		x, y := fp.XY(pt)
		v := m.Mul3x1(mgl64.Vec3{x, y, 1})
		retVal[i] = fp.Pt(v[0], v[1])
	}
	return retVal
}

// ccw returns the path wound counter clockwise
func ccw(p clipper.Path) clipper.Path {
	if clipper.Orientation(p) {
		return p
	}
	return fp.Reverse(p)
}
