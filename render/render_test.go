package render

import (
	"flag"
	"math"
	"os"
	"testing"

	clipper "github.com/ctessum/go.clipper"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/VasiliyTurchenko/gerber2ngc/apertures"
	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
	lex "github.com/VasiliyTurchenko/gerber2ngc/geberlexer"
	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
	"github.com/VasiliyTurchenko/gerber2ngc/gerbertree"
	"github.com/VasiliyTurchenko/gerber2ngc/gerbparser"
)

func TestMain(m *testing.M) {
	_ = flag.Set("logtostderr", "true")
	_ = flag.Set("stderrthreshold", "ERROR")
	os.Exit(m.Run())
}

var lin = fp.Linearization{SegmentLength: 0.1, MinSegments: 8}

const header = "%FSLAX26Y26*%\n%MOMM*%\n"

func join(t *testing.T, src string) (clipper.Paths, *JoinContext, error) {
	t.Helper()
	doc, err := gerbparser.Parse(lex.Lex([]byte(header + src + "M02*\n")))
	require.NoError(t, err)
	jc := NewJoinContext(lin, 8)
	res, err := jc.Join(doc)
	return res, jc, err
}

func mustJoin(t *testing.T, src string) (clipper.Paths, *JoinContext) {
	t.Helper()
	res, jc, err := join(t, src)
	require.NoError(t, err)
	return res, jc
}

func area(ps clipper.Paths) float64 {
	s := 0.0
	for _, p := range ps {
		s += clipper.Area(p)
	}
	return s / (fp.Scale * fp.Scale)
}

func bounds(ps clipper.Paths) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range ps {
		for _, pt := range p {
			x, y := fp.XY(pt)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	return
}

func TestJoin_SinglePad(t *testing.T) {
	res, jc := mustJoin(t, "%ADD10C,1*%\nD10*\nX0Y0D03*\n")
	require.Len(t, res, 1)
	require.GreaterOrEqual(t, len(res[0]), 8)
	for _, pt := range res[0] {
		x, y := fp.XY(pt)
		require.InDelta(t, 0.5, math.Hypot(x, y), 1e-8)
	}
	require.True(t, clipper.Orientation(res[0]))
	require.Equal(t, 1, jc.FlashCounter)
	t.Log(jc.Statistic())
}

func TestJoin_PolarityOrder(t *testing.T) {
	defs := "%ADD10R,2X2*%\n%ADD11R,1X1*%\n%ADD12R,0.5X0.5*%\n"
	res, _ := mustJoin(t, defs+"D10*\nX0Y0D03*\n%LPC*%\nD11*\nX0Y0D03*\n%LPD*%\nD12*\nX0Y0D03*\n")
	require.InDelta(t, 4.0-1.0+0.25, area(res), 1e-9)

	// the same objects in the reverse order
	res, _ = mustJoin(t, defs+"D12*\nX0Y0D03*\n%LPC*%\nD11*\nX0Y0D03*\n%LPD*%\nD10*\nX0Y0D03*\n")
	require.InDelta(t, 4.0, area(res), 1e-9)

	// clear before anything is exposed removes nothing
	res, _ = mustJoin(t, defs+"%LPC*%\nD11*\nX0Y0D03*\n%LPD*%\nD12*\nX5000000Y0D03*\n")
	require.InDelta(t, 0.25, area(res), 1e-9)
}

func TestJoin_ExposureSymmetry(t *testing.T) {
	ring := new(apertures.Aperture)
	require.NoError(t, ring.Init("%ADD13C,1X0.5*%"))
	square := new(apertures.Aperture)
	require.NoError(t, square.Init("%ADD10R,2X2*%"))

	rz := apertures.NewRealizer(lin)
	dark, err := rz.Realize(ring, PolTypeDark)
	require.NoError(t, err)
	clear, err := rz.Realize(ring, PolTypeClear)
	require.NoError(t, err)
	require.Len(t, clear.Paths, len(dark.Paths))
	for i := range dark.Exposure {
		require.Equal(t, dark.Exposure[i], !clear.Exposure[i])
	}

	// the dark template subtracted as a whole
	res, _ := mustJoin(t, "%ADD10R,2X2*%\n%ADD13C,1X0.5*%\nD10*\nX0Y0D03*\n%LPC*%\nD13*\nX0Y0D03*\n")

	// the clear realization applied path by path
	sq, err := rz.Realize(square, PolTypeDark)
	require.NoError(t, err)
	var acc accumulator
	acc.add(Compose(sq, mgl64.Ident3()))
	for i, p := range clear.Paths {
		if clear.Exposure[i] {
			acc.add(clipper.Paths{ccw(p)})
		} else {
			acc.subtract(clipper.Paths{ccw(p)})
		}
	}
	require.InDelta(t, area(acc.result()), area(res), 1e-9)
	require.InDelta(t, 4.0-area(Compose(dark, mgl64.Ident3())), area(res), 1e-9)
}

func TestJoin_UnionIdempotence(t *testing.T) {
	once, _ := mustJoin(t, "%ADD10C,1*%\nD10*\nX0Y0D03*\n")
	twice, _ := mustJoin(t, "%ADD10C,1*%\nD10*\nX0Y0D03*\nX0Y0D03*\n")
	require.Len(t, twice, len(once))
	require.InDelta(t, area(once), area(twice), 1e-12)

	again := Union(append(fp.ClonePaths(once), once...))
	require.InDelta(t, area(once), area(again), 1e-12)
}

func TestJoin_RegionWinding(t *testing.T) {
	// 10x10 square with a 2x2 hole reached through a cut line
	res, jc := mustJoin(t, "G01*\nG36*\nX0Y0D02*\nX10000000Y0D01*\nX10000000Y10000000D01*\nX0Y10000000D01*\n"+
		"X0Y5000000D01*\nX4000000Y5000000D01*\nX4000000Y4000000D01*\nX6000000Y4000000D01*\n"+
		"X6000000Y6000000D01*\nX4000000Y6000000D01*\nX4000000Y5000000D01*\nX0Y5000000D01*\nX0Y0D01*\nG37*\n")
	require.Equal(t, 1, jc.RegionCounter)
	require.InDelta(t, 96.0, area(res), 1e-9)
	outer, holes := 0, 0
	for _, p := range res {
		if clipper.Orientation(p) {
			outer++
		} else {
			holes++
		}
	}
	require.Equal(t, 1, outer)
	require.Equal(t, 1, holes)
}

func TestJoin_Strokes(t *testing.T) {
	res, jc := mustJoin(t, "%ADD10C,1*%\nD10*\nX0Y0D02*\nG01X10000000Y0D01*\n")
	require.Equal(t, 1, jc.SegmentCounter)
	// 10x1 rectangle with two halves of a 32-gon
	require.InDelta(t, 10.0+16*0.25*math.Sin(2*math.Pi/32), area(res), 1e-6)

	res, jc = mustJoin(t, "%ADD10C,0.2*%\nD10*\nG75*\nX5000000Y0D02*\nG03X0Y5000000I-5000000J0D01*\n")
	require.Equal(t, 1, jc.ArcCounter)
	// the 0.2 circle is an octagon here, the quarter turn sweeps its mean
	// width perimeter/pi along the arc, the end caps add one octagon
	const r = 0.1
	perimeter := 16 * r * math.Sin(math.Pi/8)
	octagon := 2 * math.Sqrt2 * r * r
	require.InDelta(t, math.Pi/2*5*perimeter/math.Pi+octagon, area(res), 0.005)
}

func TestJoin_ApertureTransform(t *testing.T) {
	res, _ := mustJoin(t, "%ADD10R,2X1*%\n%LR90*%\nD10*\nX0Y0D03*\n")
	minX, minY, maxX, maxY := bounds(res)
	require.InDelta(t, -0.5, minX, 1e-8)
	require.InDelta(t, 0.5, maxX, 1e-8)
	require.InDelta(t, -1, minY, 1e-8)
	require.InDelta(t, 1, maxY, 1e-8)

	// mirroring keeps the winding
	res, _ = mustJoin(t, "%ADD10R,2X1*%\n%LMX*%\n%LS2*%\nD10*\nX0Y0D03*\n")
	require.InDelta(t, 8.0, area(res), 1e-9)
	require.True(t, clipper.Orientation(res[0]))
}

func TestJoin_BlockRestoresState(t *testing.T) {
	res, jc := mustJoin(t, "%ADD11R,2X2*%\n%ABD12*%\nD11*\nX0Y0D03*\n%LPC*%\n%AB*%\n"+
		"D12*\nX0Y0D03*\nX10000000Y0D03*\n")
	require.Equal(t, 2, jc.BlockFlashCounter)
	require.InDelta(t, 8.0, area(res), 1e-9)
	_, _, maxX, _ := bounds(res)
	require.InDelta(t, 11.0, maxX, 1e-8)
}

func TestJoin_BlockInheritsPolarity(t *testing.T) {
	const defs = "%ADD10R,1X1*%\n%ADD11R,4X4*%\n%ABD12*%\nD10*\nX0Y0D03*\n%AB*%\n" +
		"%ABD13*%\n%LPD*%\nD10*\nX0Y0D03*\n%AB*%\nD11*\nX0Y0D03*\n"

	// the block has no polarity of its own and clears under %LPC%
	res, jc := mustJoin(t, defs+"%LPC*%\nD12*\nX0Y0D03*\n")
	require.Equal(t, 1, jc.BlockFlashCounter)
	require.InDelta(t, 15.0, area(res), 1e-9)
	require.Len(t, res, 2)

	// its own %LPD% darkens and stays inside, the next flash clears again
	res, jc = mustJoin(t, defs+"%LPC*%\nD12*\nX0Y0D03*\nD13*\nX0Y0D03*\nD10*\nX1000000Y1000000D03*\n")
	require.Equal(t, 2, jc.BlockFlashCounter)
	require.InDelta(t, 15.0, area(res), 1e-9)
	_, _, maxX, maxY := bounds(res)
	require.InDelta(t, 2.0, maxX, 1e-8)
	require.InDelta(t, 2.0, maxY, 1e-8)
}

func TestJoin_StepRepeatEscapes(t *testing.T) {
	res, jc := mustJoin(t, "%ADD10R,1X1*%\n%ADD11R,2X2*%\nD11*\nX0Y0D03*\n"+
		"%SRX2Y1I5J0*%\n%LPC*%\nD10*\n%SR*%\nX0Y0D03*\n")
	require.Equal(t, 2, jc.StepRepeatCounter)
	require.InDelta(t, 3.0, area(res), 1e-9)

	res, jc = mustJoin(t, "%ADD10R,1X1*%\n%SRX3Y2I3J3*%\nD10*\nX0Y0D03*\n%SR*%\n")
	require.Equal(t, 6, jc.FlashCounter)
	require.Len(t, res, 6)
	require.InDelta(t, 6.0, area(res), 1e-9)
	minX, minY, maxX, maxY := bounds(res)
	require.InDelta(t, -0.5, minX, 1e-8)
	require.InDelta(t, -0.5, minY, 1e-8)
	require.InDelta(t, 6.5, maxX, 1e-8)
	require.InDelta(t, 3.5, maxY, 1e-8)
}

func TestJoin_Errors(t *testing.T) {
	_, _, err := join(t, "%ADD10R,1X1*%\nX0Y0D03*\n")
	require.ErrorIs(t, err, ErrMissingAperture)

	_, _, err = join(t, "%ADD10R,1X1*%\nD11*\nX0Y0D02*\nX1000000Y0D01*\n")
	require.ErrorIs(t, err, ErrMissingAperture)

	_, _, err = join(t, "%ADD10R,1X1*%\n%ABD12*%\nD12*\nX0Y0D03*\n%AB*%\nD12*\nX0Y0D03*\n")
	require.ErrorIs(t, err, ErrRecursionDepth)

	_, _, err = join(t, "%ADD10R,1X1*%\n%ABD12*%\nD10*\nX0Y0D03*\n%AB*%\nD12*\nX0Y0D02*\nX1000000Y0D01*\n")
	require.ErrorIs(t, err, ErrBlockDraw)
}

func TestJoin_EmptyHullIsSkipped(t *testing.T) {
	doc := &gerbertree.Document{Units: UnitsMM, Items: []gerbertree.Item{
		&gerbertree.ApertureDef{Def: &apertures.Aperture{Code: 10, Type: AptypeCircle}},
		&gerbertree.Directive{Kind: gerbertree.DirAperture, Aperture: 10},
		&gerbertree.Segment{From: gerbertree.Point{X: 1, Y: 1}, To: gerbertree.Point{X: 1, Y: 1}},
	}}
	jc := NewJoinContext(lin, 8)
	res, err := jc.Join(doc)
	require.NoError(t, err)
	require.Empty(t, res)
	require.Equal(t, 1, jc.SkippedCounter)
}
