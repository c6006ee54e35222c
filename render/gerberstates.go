package render

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
	"github.com/VasiliyTurchenko/gerber2ngc/gerbertree"
)

// the parameters loaded by LS, LM, LR, LP commands
// affect the current aperture when flashing or drawing
type ApTransParameters struct {
	Polarity  PolType
	Mirroring MirrorType
	Rotation  float64 // degrees, counterclockwise
	Scale     float64
}

func (atp *ApTransParameters) String() string {
	return atp.Polarity.String() + "; " +
		atp.Mirroring.String() +
		"; Rotation=" + strconv.FormatFloat(atp.Rotation, 'f', 5, 64) + "deg.; Scale=" +
		strconv.FormatFloat(atp.Scale, 'f', 5, 64)
}

// Matrix is the aperture transformation: mirror first, then scale, then rotation
func (atp *ApTransParameters) Matrix() mgl64.Mat3 {
	mx, my := 1.0, 1.0
	switch atp.Mirroring {
	case MirrorX:
		mx = -1
	case MirrorY:
		my = -1
	case MirrorXY:
		mx, my = -1, -1
	}
	m := mgl64.Scale2D(mx, my)
	m = mgl64.Scale2D(atp.Scale, atp.Scale).Mul3(m)
	return mgl64.HomogRotate2D(mgl64.DegToRad(atp.Rotation)).Mul3(m)
}

// Scope is the graphics state seen by the items of one item list.
// It is passed by value: a nested list gets a derived copy and the caller
// keeps its own.
type Scope struct {
	ApTransParameters
	Aperture  int        // current D-code, 0 when none is selected
	Transform mgl64.Mat3 // placement of the list in the image
	Depth     int
}

func NewScope() Scope {
	return Scope{
		ApTransParameters: ApTransParameters{
			Polarity:  PolTypeDark,
			Mirroring: MirrorNone,
			Rotation:  0.0,
			Scale:     1.0},
		Transform: mgl64.Ident3(),
	}
}

func (s Scope) String() string {
	return s.ApTransParameters.String() + "; Aperture=D" + strconv.Itoa(s.Aperture) +
		"; Depth=" + strconv.Itoa(s.Depth)
}

// Apply returns the scope changed by the directive
func (s Scope) Apply(d *gerbertree.Directive) Scope {
	switch d.Kind {
	case gerbertree.DirPolarity:
		s.Polarity = d.Polarity
	case gerbertree.DirMirror:
		s.Mirroring = d.Mirror
	case gerbertree.DirRotation:
		s.Rotation = d.Rotation
	case gerbertree.DirScale:
		s.Scale = d.Scale
	case gerbertree.DirAperture:
		s.Aperture = d.Aperture
	}
	return s
}

// Placement is the matrix which puts the aperture origin to the point at
func (s Scope) Placement(at gerbertree.Point) mgl64.Mat3 {
	return s.Transform.Mul3(mgl64.Translate2D(at.X, at.Y)).Mul3(s.Matrix())
}

// ForBlock derives the scope of an aperture block flashed at the point.
// The block gets the polarity and the aperture of the caller, the aperture
// transformation is baked into its placement.
func (s Scope) ForBlock(at gerbertree.Point) Scope {
	retVal := NewScope()
	retVal.Polarity = s.Polarity
	retVal.Aperture = s.Aperture
	retVal.Transform = s.Placement(at)
	retVal.Depth = s.Depth + 1
	return retVal
}

// ForStep derives the scope of one copy of a step and repeat block
func (s Scope) ForStep(dx, dy float64) Scope {
	retVal := s
	retVal.Transform = s.Transform.Mul3(mgl64.Translate2D(dx, dy))
	retVal.Depth = s.Depth + 1
	return retVal
}

// Escape returns the caller's scope updated with the state a step and repeat
// block leaves behind: polarity, aperture, mirroring, rotation and scale
func (s Scope) Escape(inner Scope) Scope {
	s.ApTransParameters = inner.ApTransParameters
	s.Aperture = inner.Aperture
	return s
}
