// Aperture Macros support
package amprocessor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	clipper "github.com/ctessum/go.clipper"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"

	"github.com/VasiliyTurchenko/gerber2ngc/calculator"
	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
)

// ErrPrimitive marks a primitive whose parameters describe no valid geometry.
// Such a primitive is skipped, the rest of the macro is still realized.
var ErrPrimitive = errors.New("amprocessor: bad primitive")

// Shape is one closed contour of a realized macro
type Shape struct {
	Path     clipper.Path
	Exposure bool
}

type AMPrimitive interface {
	// evaluates the modifiers using vars and returns the contours of the primitive
	Realize(vars []float64, lin fp.Linearization) ([]Shape, error)

	// returns a string representation of the primitive
	String() string
}

// creates and returns new object
func NewAMPrimitive(amp AMPrimitiveType, modifStrings []string) (AMPrimitive, error) {
	switch amp {
	case AMPrimitive_Circle:
		return AMPrimitiveCircle{AMPrimitive_Circle, modifStrings}, nil
	case AMPrimitive_VectLine:
		return AMPrimitiveVectLine{AMPrimitive_VectLine, modifStrings}, nil
	case AMPrimitive_CenterLine:
		return AMPrimitiveCenterLine{AMPrimitive_CenterLine, modifStrings}, nil
	case AMPRimitive_OutLine:
		return AMPrimitiveOutLine{AMPRimitive_OutLine, modifStrings}, nil
	case AMPrimitive_Polygon:
		return AMPrimitivePolygon{AMPrimitive_Polygon, modifStrings}, nil
	case AMPrimitive_Moire:
		return AMPrimitiveMoire{AMPrimitive_Moire, modifStrings}, nil
	case AMPrimitive_Thermal:
		return AMPrimitiveThermal{AMPrimitive_Thermal, modifStrings}, nil
	default:
	}
	return nil, fmt.Errorf("amprocessor: unknown aperture macro primitive type %d", int(amp))
}

type AMPrimitiveType int

func (amp AMPrimitiveType) String() string {
	var retVal string
	switch amp {
	case AMPrimitive_Comment:
		retVal = "comment"
	case AMPrimitive_Circle:
		retVal = "circle"
	case AMPrimitive_VectLine:
		retVal = "vector line"
	case AMPrimitive_CenterLine:
		retVal = "center line"
	case AMPRimitive_OutLine:
		retVal = "outline"
	case AMPrimitive_Polygon:
		retVal = "polygon"
	case AMPrimitive_Moire:
		retVal = "moire"
	case AMPrimitive_Thermal:
		retVal = "thermal"
	default:
		retVal = "unknown"
	}
	return retVal
}

const (
	AMPrimitive_Comment    AMPrimitiveType = 0
	AMPrimitive_Circle     AMPrimitiveType = 1
	AMPrimitive_VectLine   AMPrimitiveType = 20
	AMPrimitive_CenterLine AMPrimitiveType = 21
	AMPRimitive_OutLine    AMPrimitiveType = 4
	AMPrimitive_Polygon    AMPrimitiveType = 5
	AMPrimitive_Moire      AMPrimitiveType = 6
	AMPrimitive_Thermal    AMPrimitiveType = 7
)

// segments of the primitive circles are never less than this
const amCircleMinSegments = 32

func circleSegments(lin fp.Linearization, r float64) int {
	n := lin.Count(r)
	if n < amCircleMinSegments {
		n = amCircleMinSegments
	}
	return n
}

// segments of every thermal arc
const thermalArcSegments = 8

// ********************************************* CIRCLE *********************************************************
type AMPrimitiveCircle struct {
	PrimitiveType AMPrimitiveType
	AMModifiers   []string
}

func (amp AMPrimitiveCircle) String() string {
	retVal := "Aperture macro primitive:\t"
	retVal = retVal + amp.PrimitiveType.String() + "\n"
	retVal = retVal + ArrayInfo(amp.AMModifiers, []string{"Exposure", "Diameter", "Center X", "Center Y", "Rotation"})
	return retVal
}

func (amp AMPrimitiveCircle) Realize(vars []float64, lin fp.Linearization) ([]Shape, error) {
	p, err := evalModifiers(amp.AMModifiers, vars)
	if err != nil {
		return nil, err
	}
	if len(p) < 2 {
		return nil, fmt.Errorf("%w: circle needs at least 2 modifiers, got %d", ErrPrimitive, len(p))
	}
	r := p[1] / 2
	if r <= 0 {
		return nil, fmt.Errorf("%w: circle radius %v", ErrPrimitive, r)
	}
	cx, cy, rot := optional(p, 2), optional(p, 3), optional(p, 4)
	n := circleSegments(lin, r)
	pts := make([]mgl64.Vec2, n)
	for i := 0; i < n; i++ {
		a := 2.0 * math.Pi * float64(i) / float64(n)
		pts[i] = mgl64.Vec2{r*math.Cos(a) + cx, r*math.Sin(a) + cy}
	}
	return []Shape{{toPath(pts, rot), p[0] > 0.5}}, nil
}

// ***************************************** VECTOR LINE *****************************************************
type AMPrimitiveVectLine struct {
	PrimitiveType AMPrimitiveType
	AMModifiers   []string
}

func (amp AMPrimitiveVectLine) String() string {
	retVal := "Aperture macro primitive:\t"
	retVal = retVal + amp.PrimitiveType.String() + "\n"
	retVal = retVal + ArrayInfo(amp.AMModifiers, []string{"Exposure", "Width", "Start X", "Start Y", "End X", "End Y", "Rotation"})
	return retVal
}

func (amp AMPrimitiveVectLine) Realize(vars []float64, lin fp.Linearization) ([]Shape, error) {
	p, err := evalModifiers(amp.AMModifiers, vars)
	if err != nil {
		return nil, err
	}
	if len(p) < 7 {
		return nil, fmt.Errorf("%w: vector line needs 7 modifiers, got %d", ErrPrimitive, len(p))
	}
	width, sx, sy, ex, ey := p[1], p[2], p[3], p[4], p[5]
	vang := math.Atan2(ey-sy, ex-sx)
	d0 := mgl64.Vec2{math.Cos(vang + math.Pi/2), math.Sin(vang + math.Pi/2)}.Mul(width / 2)
	d1 := mgl64.Vec2{math.Cos(vang - math.Pi/2), math.Sin(vang - math.Pi/2)}.Mul(width / 2)
	s := mgl64.Vec2{sx, sy}
	e := mgl64.Vec2{ex, ey}
	pts := []mgl64.Vec2{s.Add(d0), s.Add(d1), e.Add(d1), e.Add(d0)}
	return []Shape{{toPath(pts, p[6]), p[0] > 0.5}}, nil
}

// ***************************************** CENTER LINE *****************************************************
type AMPrimitiveCenterLine struct {
	PrimitiveType AMPrimitiveType
	AMModifiers   []string
}

func (amp AMPrimitiveCenterLine) String() string {
	retVal := "Aperture macro primitive:\t"
	retVal = retVal + amp.PrimitiveType.String() + "\n"
	retVal = retVal + ArrayInfo(amp.AMModifiers, []string{"Exposure", "Width", "Hight", "Center X", "Center Y", "Rotation"})
	return retVal
}

func (amp AMPrimitiveCenterLine) Realize(vars []float64, lin fp.Linearization) ([]Shape, error) {
	p, err := evalModifiers(amp.AMModifiers, vars)
	if err != nil {
		return nil, err
	}
	if len(p) < 3 {
		return nil, fmt.Errorf("%w: center line needs at least 3 modifiers, got %d", ErrPrimitive, len(p))
	}
	w2, h2 := p[1]/2, p[2]/2
	cx, cy, rot := optional(p, 3), optional(p, 4), optional(p, 5)
	pts := []mgl64.Vec2{
		{cx + w2, cy + h2},
		{cx - w2, cy + h2},
		{cx - w2, cy - h2},
		{cx + w2, cy - h2},
	}
	return []Shape{{toPath(pts, rot), p[0] > 0.5}}, nil
}

// ***************************************** OUTLINE *****************************************************
type AMPrimitiveOutLine struct {
	PrimitiveType AMPrimitiveType
	AMModifiers   []string
}

func (amp AMPrimitiveOutLine) String() string {
	retVal := "Aperture macro primitive:\t"
	retVal = retVal + amp.PrimitiveType.String() + "\n"
	if len(amp.AMModifiers) < 5 {
		return retVal + ArrayInfo(amp.AMModifiers, []string{"Exposure", "# vertices", "Start X", "Start Y"})
	}
	//Exposure, # vertices, Start X, Start Y, Subsequent points..., Rotation
	retVal = retVal + ArrayInfo(amp.AMModifiers[:4], []string{"Exposure", "# vertices", "Start X", "Start Y"})
	numPairs := (len(amp.AMModifiers) - 5) / 2
	var i int
	for i = 0; i < numPairs; i++ {
		retVal = retVal + ArrayInfo(amp.AMModifiers[4+i*2:6+i*2], []string{"Vertice " + strconv.Itoa(i) + " X", "Vertice " + strconv.Itoa(i) + " Y"})
	}
	retVal = retVal + ArrayInfo(amp.AMModifiers[len(amp.AMModifiers)-1:], []string{"Rotation"})
	return retVal
}

func (amp AMPrimitiveOutLine) Realize(vars []float64, lin fp.Linearization) ([]Shape, error) {
	p, err := evalModifiers(amp.AMModifiers, vars)
	if err != nil {
		return nil, err
	}
	if len(p) < 9 {
		return nil, fmt.Errorf("%w: outline needs at least 9 modifiers, got %d", ErrPrimitive, len(p))
	}
	n := int(p[1])
	if 2*(n+1)+3 != len(p) {
		return nil, fmt.Errorf("%w: outline of %d vertices has %d modifiers", ErrPrimitive, n, len(p))
	}
	pts := make([]mgl64.Vec2, 0, n+1)
	for i := 2; i < len(p)-1; i += 2 {
		pts = append(pts, mgl64.Vec2{p[i], p[i+1]})
	}
	path := rotatePoints(pts, p[len(p)-1])
	if !fp.Equal(path[0], path[len(path)-1]) {
		return nil, fmt.Errorf("%w: outline is not closed", ErrPrimitive)
	}
	return []Shape{{path, p[0] > 0.5}}, nil
}

// ***************************************** POLYGON *****************************************************
type AMPrimitivePolygon struct {
	PrimitiveType AMPrimitiveType
	AMModifiers   []string
}

func (amp AMPrimitivePolygon) String() string {
	retVal := "Aperture macro primitive:\t"
	retVal = retVal + amp.PrimitiveType.String() + "\n"
	retVal = retVal + ArrayInfo(amp.AMModifiers, []string{"Exposure", "# vertices", "Center X", "Center Y", "Diameter", "Rotation"})
	return retVal
}

func (amp AMPrimitivePolygon) Realize(vars []float64, lin fp.Linearization) ([]Shape, error) {
	p, err := evalModifiers(amp.AMModifiers, vars)
	if err != nil {
		return nil, err
	}
	if len(p) < 6 {
		return nil, fmt.Errorf("%w: polygon needs 6 modifiers, got %d", ErrPrimitive, len(p))
	}
	nvert := int(p[1])
	if nvert < 3 || nvert > 12 {
		return nil, fmt.Errorf("%w: polygon with %d vertices", ErrPrimitive, nvert)
	}
	cx, cy, r := p[2], p[3], p[4]/2
	pts := make([]mgl64.Vec2, nvert)
	for i := 0; i < nvert; i++ {
		a := 2.0 * math.Pi * float64(i) / float64(nvert)
		pts[i] = mgl64.Vec2{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return []Shape{{toPath(pts, p[5]), p[0] > 0.5}}, nil
}

// ***************************************** MOIRE *****************************************************
type AMPrimitiveMoire struct {
	PrimitiveType AMPrimitiveType
	AMModifiers   []string
}

func (amp AMPrimitiveMoire) String() string {
	retVal := "Aperture macro primitive:\t"
	retVal = retVal + amp.PrimitiveType.String() + "\n"
	retVal = retVal + ArrayInfo(amp.AMModifiers,
		[]string{"Center X", "Center Y", "Outer diameter rings", "Ring thickness", "Gap", "Max # rings", "Crosshair thickness", "Crosshair length", "Rotation"})
	return retVal
}

func (amp AMPrimitiveMoire) Realize(vars []float64, lin fp.Linearization) ([]Shape, error) {
	p, err := evalModifiers(amp.AMModifiers, vars)
	if err != nil {
		return nil, err
	}
	if len(p) < 9 {
		return nil, fmt.Errorf("%w: moire needs 9 modifiers, got %d", ErrPrimitive, len(p))
	}
	cx, cy := p[0], p[1]
	outerDiam, ringThick, ringGap := p[2], p[3], p[4]
	maxRings := int(p[5])
	hairThick, hairLen, rot := p[6], p[7], p[8]
	switch {
	case outerDiam <= 0:
		return nil, fmt.Errorf("%w: moire outer diameter %v", ErrPrimitive, outerDiam)
	case ringThick <= 0:
		return nil, fmt.Errorf("%w: moire ring thickness %v", ErrPrimitive, ringThick)
	case ringGap <= 0:
		return nil, fmt.Errorf("%w: moire ring gap %v", ErrPrimitive, ringGap)
	case maxRings < 1:
		return nil, fmt.Errorf("%w: moire rings count %d", ErrPrimitive, maxRings)
	case hairThick <= 0:
		return nil, fmt.Errorf("%w: moire crosshair thickness %v", ErrPrimitive, hairThick)
	case hairLen <= 0:
		return nil, fmt.Errorf("%w: moire crosshair length %v", ErrPrimitive, hairLen)
	}

	rings := clipper.Paths{}
	r := outerDiam / 2
	for i := 0; i < maxRings && r > 0; i++ {
		outer := circleVec(cx, cy, r, circleSegments(lin, r), false)
		r -= ringThick
		if r <= 0 {
			// the last ring is a solid disc
			rings = append(rings, toPath(outer, rot))
			break
		}
		inner := circleVec(cx, cy, r, circleSegments(lin, r), true)
		c := clipper.NewClipper(clipper.IoNone)
		c.AddPath(toPath(outer, rot), clipper.PtSubject, true)
		c.AddPath(toPath(inner, rot), clipper.PtClip, true)
		ring, ok := c.Execute1(clipper.CtDifference, clipper.PftNonZero, clipper.PftNonZero)
		if !ok {
			return nil, errors.New("amprocessor: moire ring clipping failed")
		}
		rings = append(rings, ring...)
		r -= ringGap
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(rings, clipper.PtSubject, true)
	union, ok := c.Execute1(clipper.CtUnion, clipper.PftPositive, clipper.PftPositive)
	if !ok {
		return nil, errors.New("amprocessor: moire rings union failed")
	}

	c = clipper.NewClipper(clipper.IoNone)
	c.AddPaths(union, clipper.PtSubject, true)
	c.AddPath(toPath(rectVec(cx, cy, hairLen, hairThick), rot), clipper.PtClip, true)
	c.AddPath(toPath(rectVec(cx, cy, hairThick, hairLen), rot), clipper.PtClip, true)
	result, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return nil, errors.New("amprocessor: moire crosshair union failed")
	}
	retVal := make([]Shape, 0, len(result))
	for i := range result {
		if len(result[i]) < 2 {
			continue
		}
		retVal = append(retVal, Shape{fp.Close(result[i]), true})
	}
	return retVal, nil
}

// ***************************************** THERMAL *****************************************************
type AMPrimitiveThermal struct {
	PrimitiveType AMPrimitiveType
	AMModifiers   []string
}

func (amp AMPrimitiveThermal) String() string {
	retVal := "Aperture macro primitive:\t"
	retVal = retVal + amp.PrimitiveType.String() + "\n"
	retVal = retVal + ArrayInfo(amp.AMModifiers, []string{"Center X", "Center Y", "Outer diameter", "Inner diameter", "Gap", "Rotation"})
	return retVal
}

// Realize builds four quadrant contours. Each one is an outer arc followed
// by the inner arc running back, the gaps lie along the axes.
func (amp AMPrimitiveThermal) Realize(vars []float64, lin fp.Linearization) ([]Shape, error) {
	p, err := evalModifiers(amp.AMModifiers, vars)
	if err != nil {
		return nil, err
	}
	if len(p) != 6 {
		return nil, fmt.Errorf("%w: thermal needs 6 modifiers, got %d", ErrPrimitive, len(p))
	}
	cx, cy, outd, innd, gap, rot := p[0], p[1], p[2], p[3], p[4], p[5]
	if gap > math.Sqrt2*outd {
		return nil, fmt.Errorf("%w: thermal gap %v is wider than the pad", ErrPrimitive, gap)
	}
	outr := outd / 2
	innr := innd / 2
	gap2 := gap / 2
	// the inner circle can not be smaller than the gap corner
	if innr < math.Sqrt2*gap2 {
		innr = math.Sqrt2 * gap2
	}
	outdel, inndel := 0.0, 0.0
	if gap2 < outr {
		outdel = math.Sqrt(outr*outr - gap2*gap2)
	}
	if gap2 < innr {
		inndel = math.Sqrt(innr*innr - gap2*gap2)
	}

	// (outer begin, outer end, inner begin, inner end) as points, per quadrant
	quadrants := [4][4]mgl64.Vec2{
		// upper left
		{{-gap2, outdel}, {-outdel, gap2}, {-inndel, gap2}, {-gap2, inndel}},
		// lower left
		{{-outdel, -gap2}, {-gap2, -outdel}, {-gap2, -inndel}, {-inndel, -gap2}},
		// lower right
		{{outdel, -gap2}, {gap2, -outdel}, {gap2, -inndel}, {inndel, -gap2}},
		// upper right
		{{gap2, outdel}, {outdel, gap2}, {inndel, gap2}, {gap2, inndel}},
	}
	retVal := make([]Shape, 0, 4)
	for _, q := range quadrants {
		pts := make([]mgl64.Vec2, 0, 2*(thermalArcSegments+1))
		pts = thermalArc(pts, cx, cy, outr, angleOf(q[0]), angleOf(q[1]))
		pts = thermalArc(pts, cx, cy, innr, angleOf(q[2]), angleOf(q[3]))
		retVal = append(retVal, Shape{toPath(pts, rot), true})
	}
	return retVal, nil
}

func angleOf(v mgl64.Vec2) float64 {
	return math.Atan2(v.Y(), v.X())
}

// thermalArc appends an arc of at most pi/2 from beg to end
func thermalArc(pts []mgl64.Vec2, cx, cy, r, beg, end float64) []mgl64.Vec2 {
	if beg < 0 {
		beg += 2 * math.Pi
	}
	if end < 0 {
		end += 2 * math.Pi
	}
	if end-beg > math.Pi/2 {
		end -= 2 * math.Pi
	} else if beg-end > math.Pi/2 {
		beg -= 2 * math.Pi
	}
	for i := 0; i <= thermalArcSegments; i++ {
		a := beg + float64(i)*(end-beg)/thermalArcSegments
		pts = append(pts, mgl64.Vec2{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}

// ********************************************* AM container *************************************************
type AMVariable struct {
	Name           string
	Value          string
	PrimitiveIndex int // the statement is executed before this primitive
}

func (amv AMVariable) String() string {
	return amv.Name + "=" + amv.Value + " (primitive index=" + strconv.Itoa(amv.PrimitiveIndex) + ")"
}

type ApertureMacro struct {
	Name       string // name from source string
	Comments   []string
	Variables  []AMVariable
	Primitives []AMPrimitive
}

func (am ApertureMacro) String() string {
	retVal := "\nAperture macro name:\t" + am.Name + "\nComments:\n"
	for i := range am.Comments {
		retVal = retVal + "\t\t" + am.Comments[i] + "\n"
	}
	retVal = retVal + "Variables:\n"
	for i := range am.Variables {
		retVal = retVal + "\t\t" + am.Variables[i].String() + "\n"
	}
	retVal = retVal + "Primitives:\n"
	for i := range am.Primitives {
		retVal = retVal + "\t" + am.Primitives[i].String() + "\n"
	}
	return retVal
}

// NewApertureMacro parses the whole %AM...*% command
func NewApertureMacro(src string) (*ApertureMacro, error) {
	retVal := new(ApertureMacro)
	src = strings.TrimSpace(src)
	if !strings.HasPrefix(src, GerberApertureMacroDef) {
		return retVal, errors.New("aperture macro name not found")
	}
	if !strings.HasSuffix(src, "%") {
		return retVal, errors.New("aperture macro trailing % not found")
	}
	splittedStr := strings.Split(strings.TrimSuffix(src, "%"), "*")
	retVal.Name = strings.TrimSpace(splittedStr[0][len(GerberApertureMacroDef):])
	if len(retVal.Name) == 0 {
		return retVal, errors.New("aperture macro name is empty")
	}

	for _, s := range splittedStr[1:] {
		s = strings.TrimSpace(s)
		if len(s) == 0 {
			continue
		}
		if s == "0" || strings.HasPrefix(s, "0 ") {
			retVal.Comments = append(retVal.Comments, strings.TrimSpace(s[1:]))
			continue
		}

		if strings.HasPrefix(s, "$") {
			if !calculator.IsAssignment(s) {
				return retVal, errors.New("problem with variable: " + s)
			}
			eqSignPos := strings.Index(s, "=")
			prIndex := len(retVal.Primitives)
			retVal.Variables = append(retVal.Variables, AMVariable{s[1:eqSignPos], s[eqSignPos+1:], prIndex})
			continue
		}

		commaPos := strings.Index(s, ",")
		if commaPos < 1 || commaPos > 2 {
			return retVal, errors.New("bad aperture macro primitive: " + s)
		}
		primTypeI, err := strconv.Atoi(s[:commaPos])
		if err != nil {
			return retVal, err
		}
		// an odd primitive type fix:
		if primTypeI == 2 {
			primTypeI = 20
		}
		modifiersArr := strings.Split(s[commaPos+1:], ",")
		for i := range modifiersArr {
			modifiersArr[i] = strings.TrimSpace(modifiersArr[i])
		}
		prim, err := NewAMPrimitive(AMPrimitiveType(primTypeI), modifiersArr)
		if err != nil {
			return retVal, err
		}
		retVal.Primitives = append(retVal.Primitives, prim)
	}
	return retVal, nil
}

// Realize instantiates the macro with the parameters of an aperture definition.
// Variable statements run in the textual order on a copy of params.
// A primitive with bad geometry is reported and skipped, an expression error is returned.
func (am *ApertureMacro) Realize(params []float64, lin fp.Linearization) ([]Shape, error) {
	vars := make([]float64, len(params))
	copy(vars, params)
	retVal := make([]Shape, 0)
	vi := 0
	for i := range am.Primitives {
		for vi < len(am.Variables) && am.Variables[vi].PrimitiveIndex == i {
			var err error
			vars, err = calculator.Assign("$"+am.Variables[vi].Name+"="+am.Variables[vi].Value, vars)
			if err != nil {
				return nil, fmt.Errorf("amprocessor: macro %s: %w", am.Name, err)
			}
			vi++
		}
		shapes, err := am.Primitives[i].Realize(vars, lin)
		if errors.Is(err, ErrPrimitive) {
			glog.Warningln("macro", am.Name, "primitive", i, "skipped:", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("amprocessor: macro %s: %w", am.Name, err)
		}
		retVal = append(retVal, shapes...)
	}
	return retVal, nil
}

/*
	auxiliary functions
*/

func evalModifiers(mods []string, vars []float64) ([]float64, error) {
	retVal := make([]float64, len(mods))
	for i := range mods {
		v, err := calculator.CalcExpression(mods[i], vars)
		if err != nil {
			return nil, err
		}
		retVal[i] = v
	}
	return retVal, nil
}

func optional(p []float64, i int) float64 {
	if i < len(p) {
		return p[i]
	}
	return 0
}

// rotatePoints turns the points by rot degrees about the macro origin
func rotatePoints(pts []mgl64.Vec2, rot float64) clipper.Path {
	m := mgl64.Rotate2D(mgl64.DegToRad(rot))
	path := make(clipper.Path, len(pts))
	for i := range pts {
		v := m.Mul2x1(pts[i])
		path[i] = fp.Pt(v.X(), v.Y())
	}
	return path
}

// toPath rotates and closes the contour
func toPath(pts []mgl64.Vec2, rot float64) clipper.Path {
	return fp.Close(rotatePoints(pts, rot))
}

func circleVec(cx, cy, r float64, n int, cw bool) []mgl64.Vec2 {
	pts := make([]mgl64.Vec2, n)
	sign := 1.0
	if cw {
		sign = -1.0
	}
	for i := 0; i < n; i++ {
		a := sign * 2.0 * math.Pi * float64(i) / float64(n)
		pts[i] = mgl64.Vec2{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return pts
}

func rectVec(cx, cy, w, h float64) []mgl64.Vec2 {
	w2, h2 := w/2, h/2
	return []mgl64.Vec2{
		{cx + w2, cy + h2},
		{cx - w2, cy + h2},
		{cx - w2, cy - h2},
		{cx + w2, cy - h2},
	}
}

func ArrayInfo(inArray []string, itemNames []string) string {

	// each step constructs the sub-string
	// \t%itemName% = %itemValue%\n
	retVal := ""

	var limIn int = len(inArray)
	var limIt int = len(itemNames)
	var i int = 0

	for i < limIn || i < limIt {
		subStr1 := "\t"
		if i < limIt {
			subStr1 = subStr1 + itemNames[i]
		} else {
			subStr1 = subStr1 + "<unnamed>"
		}

		subStr2 := " = "
		if i < limIn {
			subStr2 = subStr2 + inArray[i] + "\n"
		} else {
			subStr2 = subStr2 + "<empty>\n"
		}
		retVal = retVal + subStr1 + subStr2
		i++
	}
	return retVal
}
