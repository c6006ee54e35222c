package regions

import (
	"errors"
	"math"
	"testing"

	clipper "github.com/ctessum/go.clipper"
	"github.com/stretchr/testify/require"

	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
)

func TestRegion_IsRegionOpened(t *testing.T) {
	regPtr := NewRegion(100)
	a, err := regPtr.IsRegionOpened()
	if err != nil {
		t.Fatal("unexpected error")
	}
	if a != true {
		t.Fatal("region is opened")
	}
	regPtr.IncNumXY()
	if err = regPtr.Close(120); err != nil {
		t.Fatal("unexpected error")
	}
	a, err = regPtr.IsRegionOpened()
	if err != nil {
		t.Fatal("unexpected error")
	}
	if a == true {
		t.Fatal("region is not opened")
	}
	if regPtr.GetNumXY() != 1 {
		t.Fatal("one vertex expected")
	}
	t.Log(regPtr.String())

	regPtr = nil
	a, err = regPtr.IsRegionOpened()
	if err == nil {
		t.Fatal("must be an error")
	}
	if a == true {
		t.Fatal("region is not opened")
	}
	if regPtr.Close(1) == nil {
		t.Fatal("must be an error")
	}
}

func path(xy ...float64) clipper.Path {
	p := make(clipper.Path, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		p = append(p, fp.Pt(xy[i], xy[i+1]))
	}
	return p
}

func area(ps clipper.Paths) float64 {
	s := 0.0
	for _, p := range ps {
		s += clipper.Area(p)
	}
	return s / (fp.Scale * fp.Scale)
}

func TestSplit_OneHole(t *testing.T) {
	// A, B, C, D, B, E, F, A
	a, b, c, d, e, f := []float64{0, 0}, []float64{2, 2}, []float64{6, 2}, []float64{4, 6}, []float64{10, 0}, []float64{5, 10}
	var src []float64
	for _, v := range [][]float64{a, b, c, d, b, e, f, a} {
		src = append(src, v...)
	}
	outer, holes, err := Split(path(src...), 0)
	require.NoError(t, err)
	require.Len(t, holes, 1)
	require.Len(t, outer, 5)
	require.Len(t, holes[0], 4)
	require.True(t, fp.IsClosed(outer))
	require.True(t, fp.IsClosed(holes[0]))
	x, y := fp.XY(holes[0][0])
	require.Equal(t, 2.0, x)
	require.Equal(t, 2.0, y)
}

func TestResolve_CutLine(t *testing.T) {
	// square 10x10 with a 2x2 hole reached through a cut line
	src := path(
		0, 0, 10, 0, 10, 10, 0, 10, 0, 5, // outer
		4, 5, 4, 4, 6, 4, 6, 6, 4, 6, 4, 5, // hole
		0, 5, 0, 0)
	outer, holes, err := Split(src, 0)
	require.NoError(t, err)
	require.Len(t, holes, 1)
	require.Len(t, outer, 6)

	soln, err := Resolve(src, 0)
	require.NoError(t, err)
	require.Len(t, soln, 2)
	require.InDelta(t, 100.0-4.0, area(soln), 1e-9)
	positive := 0
	for _, p := range soln {
		if clipper.Orientation(p) {
			positive++
		}
	}
	require.Equal(t, 1, positive)
}

func TestResolve_NestedAndDuplicates(t *testing.T) {
	// the duplicated corners are dropped, the island inside the hole is kept
	src := path(
		0, 0, 0, 0, 20, 0, 20, 20, 0, 20, 0, 10,
		2, 10, 2, 2, 18, 2, 18, 18, 2, 18, 2, 10, // hole
		8, 10, 8, 8, 12, 8, 12, 12, 8, 12, 8, 10, // island
		2, 10,
		0, 10, 0, 0)
	soln, err := Resolve(src, 0)
	require.NoError(t, err)
	require.InDelta(t, 400.0-256.0+16.0, area(soln), 1e-9)

	_, _, err = Split(src, 1)
	require.True(t, errors.Is(err, ErrRecursionDepth))
}

func TestSplit_PointVisitedThreeTimes(t *testing.T) {
	// two holes hang on the same cut line point (2, 10)
	src := path(
		0, 0, 20, 0, 20, 20, 0, 20, 0, 10,
		2, 10, 4, 18, 8, 18, // upper hole
		2, 10, 8, 2, 4, 2, // lower hole
		2, 10,
		0, 10, 0, 0)
	outer, holes, err := Split(src, 0)
	require.NoError(t, err)
	require.Len(t, outer, 6)
	require.Len(t, holes, 2)
	for _, h := range holes {
		require.Len(t, h, 4)
		require.True(t, fp.IsClosed(h))
		x, y := fp.XY(h[0])
		require.Equal(t, 2.0, x)
		require.Equal(t, 10.0, y)
	}
	require.InDelta(t, 16.0, math.Abs(area(holes[:1])), 1e-9)
	require.InDelta(t, 16.0, math.Abs(area(holes[1:])), 1e-9)

	soln, err := Resolve(src, 0)
	require.NoError(t, err)
	require.InDelta(t, 400.0-32.0, area(soln), 1e-9)

	_, _, err = Split(src, 1)
	require.True(t, errors.Is(err, ErrRecursionDepth))

	// the island inside the hole is entered through the hole's own closing point
	src = path(
		0, 0, 20, 0, 20, 20, 0, 20, 0, 10,
		2, 10, 2, 2, 18, 2, 18, 18, 2, 18, 2, 10,
		8, 10, 8, 8, 12, 8, 12, 12, 8, 12, 8, 10,
		2, 10, 0, 10, 0, 0)
	outer, holes, err = Split(src, 0)
	require.NoError(t, err)
	require.Len(t, outer, 6)
	require.Len(t, holes, 2)
	soln, err = Resolve(src, 0)
	require.NoError(t, err)
	require.InDelta(t, 400.0-256.0+16.0, area(soln), 1e-9)
}

func TestResolve_Errors(t *testing.T) {
	_, err := Resolve(nil, 0)
	require.True(t, errors.Is(err, ErrEmptyRegion))
	_, err = Resolve(path(1, 1, 1, 1, 2, 2), 0)
	require.True(t, errors.Is(err, ErrEmptyRegion))

	// the loop started at B leaves through C before it is closed
	src := path(0, 0, 2, 2, 6, 2, 4, 6, 2, 2, 3, 9, 6, 2, 9, 0, 0, 0)
	_, err = Resolve(src, 0)
	require.True(t, errors.Is(err, ErrInconsistentHoles))
	src = path(0, 0, 2, 2, 6, 2, 4, 6, 7, 7, 2, 2, 9, 9, 4, 6, 9, 0, 0, 0)
	_, err = Resolve(src, 0)
	require.True(t, errors.Is(err, ErrInconsistentHoles))
}
