//
// functions related to parsing gerber files
// Apertures support
package apertures

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	clipper "github.com/ctessum/go.clipper"
	"github.com/golang/glog"

	"github.com/VasiliyTurchenko/gerber2ngc/amprocessor"
	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
)

var ErrMissingMacro = errors.New("apertures: aperture macro is not defined")

// Aperture is the parsed %ADD command
type Aperture struct {
	Code         int
	SourceString string
	Type         GerberApType
	XSize        float64
	YSize        float64
	Diameter     float64
	Vertices     int
	RotAngle     float64
	Hole         []float64 // empty, diameter, or X and Y of a rectangular hole
	MacroName    string
	MacroParams  []float64
}

func (apert *Aperture) GetCode() int {
	return apert.Code
}

func (apert *Aperture) String() string {
	retVal := "Aperture:\t" + strconv.Itoa(apert.Code) + "\t"
	retVal = retVal + apert.SourceString + "\n"
	if apert.Type == AptypeMacro {
		retVal = retVal + fmt.Sprintf("\tMacro = %s\n\tParameters = %v\n", apert.MacroName, apert.MacroParams)
		return retVal
	}
	names := []string{"Type", "XSize", "YSize", "Diameter", "Hole", "#Vertices", "Rot.angle"}
	values := []interface{}{apert.Type, apert.XSize, apert.YSize, apert.Diameter, apert.Hole,
		apert.Vertices, apert.RotAngle}
	for i := range names {
		retVal = retVal + fmt.Sprintf("\t%s = %v\n", names[i], values[i])
	}
	return retVal
}

// Init parses the body of %ADD command, i.e. "10C,0.5X0.25" or "12BOX,1X2"
func (apert *Aperture) Init(sourceString string) error {
	sourceString = strings.TrimSpace(sourceString)
	sourceString = strings.TrimPrefix(sourceString, GerberApertureDef)
	sourceString = strings.TrimSuffix(strings.TrimSuffix(sourceString, "%"), "*")
	apert.SourceString = sourceString

	digits := 0
	for digits < len(sourceString) && sourceString[digits] >= '0' && sourceString[digits] <= '9' {
		digits++
	}
	var err error
	apert.Code, err = strconv.Atoi(sourceString[:digits])
	if err != nil {
		return errors.New("bad aperture number in " + sourceString)
	}
	if apert.Code < MinApertureCode {
		return fmt.Errorf("aperture number %d is reserved", apert.Code)
	}
	rest := sourceString[digits:]
	name, modifiers := rest, ""
	if commaPos := strings.Index(rest, ","); commaPos != -1 {
		name, modifiers = rest[:commaPos], rest[commaPos+1:]
	}
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return errors.New("aperture template name is empty in " + sourceString)
	}
	var params []float64
	if len(strings.TrimSpace(modifiers)) > 0 {
		for _, s := range strings.Split(modifiers, "X") {
			tmpVal, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return fmt.Errorf("bad aperture modifier %q in %s", s, sourceString)
			}
			params = append(params, tmpVal)
		}
	}

	switch name {
	case "C":
		apert.Type = AptypeCircle
		if len(params) < 1 || len(params) > 3 {
			return errors.New("bad number of parameters for circle aperture")
		}
		apert.Diameter = params[0]
		apert.Hole = params[1:]
	case "R":
		apert.Type = AptypeRectangle
		if len(params) < 2 || len(params) > 4 {
			return errors.New("bad number of parameters for rectangle aperture")
		}
		apert.XSize, apert.YSize = params[0], params[1]
		apert.Hole = params[2:]
	case "O":
		apert.Type = AptypeObround
		if len(params) < 2 || len(params) > 4 {
			return errors.New("bad number of parameters for obround aperture")
		}
		apert.XSize, apert.YSize = params[0], params[1]
		apert.Hole = params[2:]
	case "P":
		apert.Type = AptypePoly
		if len(params) < 2 || len(params) > 5 {
			return errors.New("bad number of parameters for polygon aperture")
		}
		apert.Diameter = params[0] // OuterDiameter
		apert.Vertices = int(params[1])
		if len(params) > 2 {
			apert.RotAngle = params[2]
		}
		if len(params) > 3 {
			apert.Hole = params[3:]
		}
	default:
		apert.Type = AptypeMacro
		apert.MacroName = name
		apert.MacroParams = params
	}
	return nil
}

// Realization is an aperture turned into closed contours around its origin.
// Exposure[i] tells whether Paths[i] adds or removes material.
type Realization struct {
	Code     int
	Type     GerberApType
	Paths    clipper.Paths
	Exposure []bool
}

func (r *Realization) add(p clipper.Path, exposure bool) {
	r.Paths = append(r.Paths, fp.Close(p))
	r.Exposure = append(r.Exposure, exposure)
}

// Realizer converts aperture definitions into polygons
type Realizer struct {
	Macros map[string]*amprocessor.ApertureMacro
	Lin    fp.Linearization
}

func NewRealizer(lin fp.Linearization) *Realizer {
	return &Realizer{Macros: make(map[string]*amprocessor.ApertureMacro), Lin: lin}
}

// Realize builds the contours of the aperture as seen under polarity pol
func (rz *Realizer) Realize(apert *Aperture, pol PolType) (*Realization, error) {
	retVal := &Realization{Code: apert.Code, Type: apert.Type}
	switch apert.Type {
	case AptypeCircle:
		retVal.add(rz.circle(apert.Diameter/2, false), pol.Expose(true))
	case AptypeRectangle:
		retVal.add(rect(apert.XSize/2, apert.YSize/2, false), pol.Expose(true))
	case AptypeObround:
		retVal.add(rz.obround(apert.XSize, apert.YSize), pol.Expose(true))
	case AptypePoly:
		if apert.Vertices < 3 || apert.Vertices > 12 {
			glog.Warningln("aperture", apert.Code, "polygon with", apert.Vertices, "vertices is ignored")
			return retVal, nil
		}
		retVal.add(polygon(apert.Diameter/2, apert.Vertices, apert.RotAngle), pol.Expose(true))
	case AptypeMacro:
		am, ok := rz.Macros[apert.MacroName]
		if !ok {
			return nil, fmt.Errorf("%w: %s (aperture %d)", ErrMissingMacro, apert.MacroName, apert.Code)
		}
		shapes, err := am.Realize(apert.MacroParams, rz.Lin)
		if err != nil {
			return nil, err
		}
		for _, s := range shapes {
			retVal.add(s.Path, pol.Expose(s.Exposure))
		}
		return retVal, nil
	default:
		return nil, fmt.Errorf("apertures: can not realize %s %d", apert.Type, apert.Code)
	}

	switch len(apert.Hole) {
	case 0:
	case 1:
		if apert.Hole[0] > 0 {
			retVal.add(rz.circle(apert.Hole[0]/2, true), pol.Expose(false))
		}
	default:
		if apert.Hole[0] > 0 && apert.Hole[1] > 0 {
			retVal.add(rect(apert.Hole[0]/2, apert.Hole[1]/2, true), pol.Expose(false))
		}
	}
	return retVal, nil
}

func (rz *Realizer) circle(r float64, cw bool) clipper.Path {
	n := rz.Lin.Count(r)
	path := make(clipper.Path, n)
	sign := 1.0
	if cw {
		sign = -1.0
	}
	for i := 0; i < n; i++ {
		a := sign * 2.0 * math.Pi * float64(i) / float64(n)
		path[i] = fp.Pt(r*math.Cos(a), r*math.Sin(a))
	}
	return path
}

func rect(x, y float64, cw bool) clipper.Path {
	if cw {
		return clipper.Path{fp.Pt(-x, -y), fp.Pt(-x, y), fp.Pt(x, y), fp.Pt(x, -y)}
	}
	return clipper.Path{fp.Pt(-x, -y), fp.Pt(x, -y), fp.Pt(x, y), fp.Pt(-x, y)}
}

// obround is a stadium, the round ends are on the shorter side
func (rz *Realizer) obround(xs, ys float64) clipper.Path {
	if xs == ys {
		return rz.circle(xs/2, false)
	}
	vertical := xs < ys
	r := ys / 2
	if vertical {
		r = xs / 2
	}
	n := rz.Lin.Count(r)
	if n%2 == 1 {
		n++
	}
	path := make(clipper.Path, 0, n+2)
	for i := 0; i <= n; i++ {
		a := 2.0 * math.Pi * float64(i) / float64(n)
		if vertical {
			// the upper half first, then the lower one
			dy := ys/2 - r
			if i > n/2 {
				dy = -dy
			}
			path = append(path, fp.Pt(r*math.Cos(a), r*math.Sin(a)+dy))
			if i == n/2 {
				path = append(path, fp.Pt(r*math.Cos(a), r*math.Sin(a)-dy))
			}
			continue
		}
		a -= math.Pi / 2
		dx := xs/2 - r
		if i > n/2 {
			dx = -dx
		}
		path = append(path, fp.Pt(r*math.Cos(a)+dx, r*math.Sin(a)))
		if i == n/2 {
			path = append(path, fp.Pt(r*math.Cos(a)-dx, r*math.Sin(a)))
		}
	}
	return dedupe(path)
}

func polygon(r float64, n int, rot float64) clipper.Path {
	path := make(clipper.Path, n)
	for i := 0; i < n; i++ {
		a := 2.0*math.Pi*float64(i)/float64(n) + rot*math.Pi/180.0
		path[i] = fp.Pt(r*math.Cos(a), r*math.Sin(a))
	}
	return path
}

// dedupe drops consecutive equal points
func dedupe(p clipper.Path) clipper.Path {
	retVal := p[:0]
	for i := range p {
		if len(retVal) > 0 && fp.Equal(retVal[len(retVal)-1], p[i]) {
			continue
		}
		retVal = append(retVal, p[i])
	}
	return retVal
}
