// Regions (G36/G37) support.
//
// A region contour can visit the same point twice. The loop between the two
// visits is a hole, the same applies recursively inside that loop.
// The outer contour and the holes are merged with the even-odd rule,
// so the contour start point does not have to lie on the outer boundary.
package regions

import (
	"errors"
	"fmt"
	"strconv"

	clipper "github.com/ctessum/go.clipper"

	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
)

var (
	ErrInconsistentHoles = errors.New("regions: inconsistent hole jumps")
	ErrRecursionDepth    = errors.New("regions: holes are nested too deep")
	ErrEmptyRegion       = errors.New("regions: empty contour")
)

// DefaultMaxDepth limits the nesting of the holes
const DefaultMaxDepth = 64

/*####################  regions ##################################
 */
// Region keeps the source lines of an open G36 ... G37 block while it is parsed
type Region struct {
	G36StringNumber int // number of the string with G36 cmd
	G37StringNumber int // number of the string with G37 cmd
	numberOfXY      int // number of entries
}

func (region *Region) String() string {
	if region == nil {
		return "<nil>"
	}
	return "Region:\n" +
		"\t\tcontains " + strconv.Itoa(region.numberOfXY) + " vertices\n" +
		"\t\tG36 command is at line " + strconv.Itoa(region.G36StringNumber) + "\n" +
		"\t\tG37 command is at line " + strconv.Itoa(region.G37StringNumber)
}

// creates and initialises a region object
func NewRegion(strNum int) *Region {
	retVal := new(Region)
	retVal.G36StringNumber = strNum
	retVal.numberOfXY = 0
	retVal.G37StringNumber = -1
	return retVal
}

// closes the region
func (region *Region) Close(strnum int) error {
	if region == nil {
		return errors.New("can not close the contour referenced by null pointer")
	}
	region.G37StringNumber = strnum
	return nil
}

// increments number of coordinate entries
func (region *Region) IncNumXY() int {
	region.numberOfXY++
	return region.numberOfXY
}

// returns the number of coordinate entries of the contour
func (region *Region) GetNumXY() int {
	return region.numberOfXY
}

// returns true if region is opened
func (region *Region) IsRegionOpened() (bool, error) {
	if region == nil {
		return false, errors.New("bad region referenced (by nil ptr)")
	}
	return region.G37StringNumber == -1, nil
}

/*####################  contour resolution ##################################
 */

// Resolve turns a contour point stream into the outer boundary and the holes
// merged with the even-odd rule
func Resolve(points clipper.Path, maxDepth int) (clipper.Paths, error) {
	outer, holes, err := Split(points, maxDepth)
	if err != nil {
		return nil, err
	}
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(outer, clipper.PtSubject, true)
	if len(holes) > 0 {
		c.AddPaths(holes, clipper.PtSubject, true)
	}
	soln, ok := c.Execute1(clipper.CtUnion, clipper.PftEvenOdd, clipper.PftEvenOdd)
	if !ok {
		return nil, errors.New("regions: union failed")
	}
	return soln, nil
}

// Split extracts the holes from the point stream.
// Contours of less than three points are dropped.
func Split(points clipper.Path, maxDepth int) (outer clipper.Path, holes clipper.Paths, err error) {
	p := dedupe(points)
	if len(p) == 0 {
		return nil, nil, ErrEmptyRegion
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	s := &splitter{p: p, jump: jumpPositions(p), maxDepth: maxDepth}
	outer, err = s.loop(0, len(p)-1, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(outer) < 3 {
		return nil, nil, fmt.Errorf("%w: %d point(s) left", ErrEmptyRegion, len(outer))
	}
	return fp.Close(outer), s.holes, nil
}

type splitter struct {
	p        clipper.Path
	jump     []int
	holes    clipper.Paths
	maxDepth int
}

// loop collects p[lo..hi] and moves every inner loop to the holes.
// hi is the own closing point of the range, a jump to it is not a hole.
func (s *splitter) loop(lo, hi, depth int) (clipper.Path, error) {
	if depth > s.maxDepth {
		return nil, fmt.Errorf("%w: more than %d levels", ErrRecursionDepth, s.maxDepth)
	}
	path := make(clipper.Path, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		path = append(path, s.p[i])
		if i == hi {
			// the onward jumps belong to the enclosing range
			break
		}
		// a point can be visited more than twice
		for {
			jp := s.jump[i]
			if jp < 0 || jp == hi {
				break
			}
			if jp > hi {
				return nil, fmt.Errorf("%w: point %d returns at %d, outside of %d..%d", ErrInconsistentHoles, i, jp, lo, hi)
			}
			hole, err := s.loop(i, jp, depth+1)
			if err != nil {
				return nil, err
			}
			if len(hole) > 3 {
				s.holes = append(s.holes, hole)
			}
			// p[jp] is p[i], already in the path
			i = jp
		}
	}
	return path, nil
}

// jumpPositions links every point to its next visit, -1 for the last one
func jumpPositions(p clipper.Path) []int {
	jump := make([]int, len(p))
	last := make(map[fp.Key]int, len(p))
	for i := range p {
		jump[i] = -1
		k := fp.KeyOf(p[i])
		if prev, ok := last[k]; ok {
			jump[prev] = i
		}
		last[k] = i
	}
	return jump
}

// dedupe drops consecutive equal points
func dedupe(points clipper.Path) clipper.Path {
	retVal := make(clipper.Path, 0, len(points))
	for i := range points {
		if len(retVal) > 0 && fp.Equal(retVal[len(retVal)-1], points[i]) {
			continue
		}
		retVal = append(retVal, points[i])
	}
	return retVal
}
