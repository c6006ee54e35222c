package apertures

import (
	"errors"
	"flag"
	"math"
	"os"
	"testing"

	clipper "github.com/ctessum/go.clipper"
	"github.com/stretchr/testify/require"

	"github.com/VasiliyTurchenko/gerber2ngc/amprocessor"
	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
)

func TestMain(m *testing.M) {
	_ = flag.Set("logtostderr", "true")
	_ = flag.Set("stderrthreshold", "ERROR")
	os.Exit(m.Run())
}

func TestAperture_Init(t *testing.T) {
	var apert Aperture
	require.NoError(t, apert.Init("%ADD10C,0.5*%"))
	require.Equal(t, 10, apert.GetCode())
	require.Equal(t, AptypeCircle, apert.Type)
	require.Equal(t, 0.5, apert.Diameter)
	require.Empty(t, apert.Hole)

	apert = Aperture{}
	require.NoError(t, apert.Init("11R,1.2X0.8X0.3"))
	require.Equal(t, AptypeRectangle, apert.Type)
	require.Equal(t, 1.2, apert.XSize)
	require.Equal(t, 0.8, apert.YSize)
	require.Equal(t, []float64{0.3}, apert.Hole)

	apert = Aperture{}
	require.NoError(t, apert.Init("12O,1X2X0.2X0.4"))
	require.Equal(t, AptypeObround, apert.Type)
	require.Equal(t, []float64{0.2, 0.4}, apert.Hole)

	apert = Aperture{}
	require.NoError(t, apert.Init("13P,1X6X30X0.2"))
	require.Equal(t, AptypePoly, apert.Type)
	require.Equal(t, 6, apert.Vertices)
	require.Equal(t, 30.0, apert.RotAngle)
	require.Equal(t, []float64{0.2}, apert.Hole)

	apert = Aperture{}
	require.NoError(t, apert.Init("14THERMAL80,0.8X0.5"))
	require.Equal(t, AptypeMacro, apert.Type)
	require.Equal(t, "THERMAL80", apert.MacroName)
	require.Equal(t, []float64{0.8, 0.5}, apert.MacroParams)
	t.Log(apert.String())

	for _, bad := range []string{"C,1", "5C,1", "10", "10C", "10R,1", "10C,1Xa", "10P,1X3X0X0X0X0"} {
		apert = Aperture{}
		require.Error(t, apert.Init(bad), bad)
	}
}

var lin = fp.Linearization{SegmentLength: 0.1, MinSegments: 8}

func bounds(p clipper.Path) (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64
	for _, pt := range p {
		x, y := fp.XY(pt)
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	return
}

func TestRealize_Standard(t *testing.T) {
	rz := NewRealizer(lin)

	r, err := rz.Realize(&Aperture{Code: 10, Type: AptypeCircle, Diameter: 1}, PolTypeDark)
	require.NoError(t, err)
	require.Len(t, r.Paths, 1)
	require.True(t, r.Exposure[0])
	require.True(t, fp.IsClosed(r.Paths[0]))
	require.GreaterOrEqual(t, len(r.Paths[0]), 9)
	for _, pt := range r.Paths[0] {
		x, y := fp.XY(pt)
		require.InDelta(t, 0.5, math.Hypot(x, y), 1e-6)
	}
	require.True(t, clipper.Orientation(r.Paths[0]))

	r, err = rz.Realize(&Aperture{Code: 11, Type: AptypeRectangle, XSize: 2, YSize: 1, Hole: []float64{0.4}}, PolTypeDark)
	require.NoError(t, err)
	require.Len(t, r.Paths, 2)
	require.Equal(t, []bool{true, false}, r.Exposure)
	minX, minY, maxX, maxY := bounds(r.Paths[0])
	require.InDelta(t, -1.0, minX, 1e-9)
	require.InDelta(t, -0.5, minY, 1e-9)
	require.InDelta(t, 1.0, maxX, 1e-9)
	require.InDelta(t, 0.5, maxY, 1e-9)
	// the hole runs clockwise
	require.False(t, clipper.Orientation(r.Paths[1]))

	r, err = rz.Realize(&Aperture{Code: 12, Type: AptypeObround, XSize: 1, YSize: 3, Hole: []float64{0.2, 0.4}}, PolTypeDark)
	require.NoError(t, err)
	require.Len(t, r.Paths, 2)
	minX, minY, maxX, maxY = bounds(r.Paths[0])
	require.InDelta(t, -0.5, minX, 1e-6)
	require.InDelta(t, -1.5, minY, 1e-6)
	require.InDelta(t, 0.5, maxX, 1e-6)
	require.InDelta(t, 1.5, maxY, 1e-6)
	require.True(t, clipper.Orientation(r.Paths[0]))
	require.False(t, clipper.Orientation(r.Paths[1]))

	r, err = rz.Realize(&Aperture{Code: 13, Type: AptypeObround, XSize: 3, YSize: 1}, PolTypeDark)
	require.NoError(t, err)
	minX, minY, maxX, maxY = bounds(r.Paths[0])
	require.InDelta(t, -1.5, minX, 1e-6)
	require.InDelta(t, -0.5, minY, 1e-6)
	require.InDelta(t, 1.5, maxX, 1e-6)
	require.InDelta(t, 0.5, maxY, 1e-6)
	require.True(t, clipper.Orientation(r.Paths[0]))

	r, err = rz.Realize(&Aperture{Code: 14, Type: AptypePoly, Diameter: 2, Vertices: 4, RotAngle: 45}, PolTypeDark)
	require.NoError(t, err)
	require.Len(t, r.Paths[0], 5)
	x, y := fp.XY(r.Paths[0][0])
	require.InDelta(t, math.Sqrt2/2, x, 1e-9)
	require.InDelta(t, math.Sqrt2/2, y, 1e-9)

	// out of range vertex count gives an empty shape
	r, err = rz.Realize(&Aperture{Code: 15, Type: AptypePoly, Diameter: 2, Vertices: 13}, PolTypeDark)
	require.NoError(t, err)
	require.Empty(t, r.Paths)
}

func TestRealize_Polarity(t *testing.T) {
	rz := NewRealizer(lin)
	apert := &Aperture{Code: 10, Type: AptypeCircle, Diameter: 1, Hole: []float64{0.3}}
	dark, err := rz.Realize(apert, PolTypeDark)
	require.NoError(t, err)
	clear, err := rz.Realize(apert, PolTypeClear)
	require.NoError(t, err)
	require.Equal(t, len(dark.Exposure), len(clear.Exposure))
	for i := range dark.Exposure {
		require.NotEqual(t, dark.Exposure[i], clear.Exposure[i])
	}
}

func TestRealize_Macro(t *testing.T) {
	rz := NewRealizer(lin)
	am, err := amprocessor.NewApertureMacro("%AMDONUT*1,1,$1*1,0,$2*%")
	require.NoError(t, err)
	rz.Macros[am.Name] = am

	r, err := rz.Realize(&Aperture{Code: 20, Type: AptypeMacro, MacroName: "DONUT", MacroParams: []float64{1, 0.5}}, PolTypeDark)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, r.Exposure)

	_, err = rz.Realize(&Aperture{Code: 21, Type: AptypeMacro, MacroName: "NOPE"}, PolTypeDark)
	require.True(t, errors.Is(err, ErrMissingMacro))
}
