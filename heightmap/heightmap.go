// Package heightmap reads the probed surface of the board and interpolates
// the z offset at any point of it.
//
// The file is a list of "x y z" numbers separated by white space, the text
// after '#' up to the end of the line is a comment.
package heightmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

const (
	DefaultPower = 2.0
	DefaultEps   = 1.0e-9
)

var (
	ErrEmpty      = errors.New("heightmap: no samples")
	ErrIncomplete = errors.New("heightmap: the number of values is not a multiple of three")
)

type Sample struct {
	X, Y, Z float64
}

// HeightMap interpolates with the inverse distance weights
type HeightMap struct {
	Samples []Sample
	Power   float64
	Eps     float64 // a sample closer than Eps is taken as is
}

func (hm *HeightMap) String() string {
	return fmt.Sprintf("height map: %d sample(s), power %.2f", len(hm.Samples), hm.Power)
}

func Load(fileName string) (*HeightMap, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	retVal, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	glog.V(1).Infoln(fileName, retVal)
	return retVal, nil
}

func Read(r io.Reader) (*HeightMap, error) {
	var values []float64
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, field := range strings.Fields(text) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("heightmap: line %d: %w", line, err)
			}
			values = append(values, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	if len(values)%3 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrIncomplete, len(values))
	}
	retVal := &HeightMap{Power: DefaultPower, Eps: DefaultEps}
	retVal.Samples = make([]Sample, 0, len(values)/3)
	for i := 0; i < len(values); i += 3 {
		retVal.Samples = append(retVal.Samples, Sample{values[i], values[i+1], values[i+2]})
	}
	return retVal, nil
}

// Z returns the interpolated z offset at the point
func (hm *HeightMap) Z(x, y float64) float64 {
	var sumW, sumZ float64
	for _, s := range hm.Samples {
		d := math.Hypot(s.X-x, s.Y-y)
		if d <= hm.Eps {
			return s.Z
		}
		w := 1.0 / math.Pow(d, hm.Power)
		sumW += w
		sumZ += w * s.Z
	}
	if sumW == 0 {
		return 0
	}
	return sumZ / sumW
}
