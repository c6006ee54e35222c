// Coordinate data of the Gerber commands.
// Values stay in the units of the document, no conversion is done here.
package xy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
)

const GerberFormatSpec string = "%FS"
const GerberMOIN string = "%MOIN*%"
const GerberMOMM string = "%MOMM*%"

// Function checks against non-number characters in the string
func isNumString(ins string) bool {
	v := []byte(ins)
	for _, c := range v {
		if (c < 0x30) || (c > 0x39) {
			return false
		}
	}
	return true
}

/*
############################ format specification #####################
*/

// Format specification object
type FormatSpec struct {
	Head          string
	MUString      string
	XI            int // digits in the integer part
	XD            int // digits in the fractional part
	YI            int
	YD            int
	Units         Units
	TrailingZeros bool // zeros are omitted at the end of the number (FST...)
}

func (fs *FormatSpec) String() string {
	zeros := "leading"
	if fs.TrailingZeros {
		zeros = "trailing"
	}
	return fmt.Sprintf("format %d.%d, %s zeros omitted, %s", fs.XI, fs.XD, zeros, fs.Units)
}

// false - unable to parse format string
// true - parsing was successfull
func (fs *FormatSpec) Init(ins, mu string) bool {
	var err error
	fs.XI = 0
	fs.XD = 0
	fs.YI = 0
	fs.YD = 0
	fs.Head = strings.ToUpper(strings.TrimSpace(ins))
	fs.MUString = strings.ToUpper(strings.TrimSpace(mu))

	var tmpxi, tmpxd, tmpyi, tmpyd int // temporary values
	var Xpos, Ypos, suffpos int        // delimiters postions

	switch fs.MUString {
	case GerberMOIN:
		fs.Units = UnitsInch
	case GerberMOMM:
		fs.Units = UnitsMM
	default:
		return false
	}

	if !strings.HasPrefix(fs.Head, GerberFormatSpec) || !strings.HasSuffix(fs.Head, "*%") {
		return false
	}
	mode := fs.Head[len(GerberFormatSpec):]
	switch {
	case strings.HasPrefix(mode, "LA"):
		fs.TrailingZeros = false
	case strings.HasPrefix(mode, "TA"):
		fs.TrailingZeros = true
	default:
		// incremental notation is not supported
		return false
	}
	Xpos = strings.IndexByte(fs.Head, 'X')
	Ypos = strings.LastIndexByte(fs.Head, 'Y')
	suffpos = strings.LastIndexByte(fs.Head, '*')

	if (Xpos == -1) || (Ypos == -1) || (Xpos+2 >= Ypos) || (Ypos+2 >= suffpos) {
		return false
	}
	if tmpxi, err = strconv.Atoi(fs.Head[Xpos+1 : Xpos+2]); err != nil {
		return false
	}
	if tmpxd, err = strconv.Atoi(fs.Head[Xpos+2 : Ypos]); err != nil {
		return false
	}
	if tmpyi, err = strconv.Atoi(fs.Head[Ypos+1 : Ypos+2]); err != nil {
		return false
	}
	if tmpyd, err = strconv.Atoi(fs.Head[Ypos+2 : suffpos]); err != nil {
		return false
	}
	if (tmpxi != tmpyi) || (tmpxd != tmpyd) {
		return false
	}
	// 4.1.1 gerber format conformance test
	if tmpxi > 6 {
		return false
	}
	if (tmpxd > 7) || (tmpxd < 3) {
		return false
	}
	fs.XI = tmpxi
	fs.XD = tmpxd
	fs.YI = tmpyi
	fs.YD = tmpyd
	return true
}

func (fs *FormatSpec) ReadXI() int {
	return fs.XI
}
func (fs *FormatSpec) ReadXD() int {
	return fs.XD
}
func (fs *FormatSpec) ReadYI() int {
	return fs.YI
}
func (fs *FormatSpec) ReadYD() int {
	return fs.YD
}

/*
######################### coordinates #########################################
*/
/*
 Coordinates base type
*/
type axisPoint struct {
	valFloat float64
}

func (ap *axisPoint) clear() {
	ap.valFloat = 0.0
}

// initializes the point on the axis ax
// n is the number of places for int part
// m is the number of places for frac part
// trailing is true when the trailing zeros are omitted
func (ap *axisPoint) init(ins string, n, m int, trailing bool) bool {
	var neg = false
	var ws string

	if strings.HasPrefix(ins, "-") {
		neg = true
		ws = strings.TrimPrefix(ins, "-")
	} else {
		ws = strings.TrimPrefix(ins, "+")
	}
	if len(ws) == 0 || len(ws) > (n+m) {
		return false
	}
	if isNumString(ws) == false {
		return false
	}
	ps := []byte(strings.Repeat("0", n+m))
	if trailing {
		copy(ps, ws)
	} else {
		copy(ps[len(ps)-len(ws):], ws)
	}

	var ipart int
	var fpart int
	var err error

	if ipart, err = strconv.Atoi((string)(ps[0:n])); n > 0 && err != nil {
		return false
	}
	if fpart, err = strconv.Atoi((string)(ps[n : m+n])); err != nil {
		return false
	}
	tmpfloat := float64(fpart) / math.Pow10(m)
	tmpfloat += float64(ipart)
	if neg {
		tmpfloat *= -1.0
	}
	ap.valFloat = tmpfloat
	return true
}

// returns axis point as float64 value
func (ap *axisPoint) getfval() float64 {
	return ap.valFloat
}

// XY is the coordinate data of one D01/D02/D03 command.
// X and Y are modal, I and J are not.
type XY struct {
	nodeNumber  uint32
	coordString string // string representation
	x           axisPoint
	y           axisPoint
	// offsets
	i axisPoint
	j axisPoint
}

func NewXY() *XY {
	retVal := new(XY)
	retVal.SetX(0)
	retVal.SetY(0)
	return retVal
}

func (xy *XY) String() string {
	// "XY object # nnn : (xxx, yyy)
	retVal := "XY object #" +
		strconv.Itoa(int(xy.nodeNumber)) +
		": x,y=(" +
		strconv.FormatFloat(xy.x.getfval(), 'f', 5, 64) +
		"," +
		strconv.FormatFloat(xy.y.getfval(), 'f', 5, 64) +
		") " +
		"i,j=(" +
		strconv.FormatFloat(xy.i.getfval(), 'f', 5, 64) +
		"," +
		strconv.FormatFloat(xy.j.getfval(), 'f', 5, 64) +
		")"
	return retVal
}

// tolerance is the radius of the circle around first point
// inisde of which another point will be treated as equal to the first one
func (xy *XY) Equals(another *XY, tolerance float64) bool {
	return (math.Hypot(xy.GetX()-another.GetX(), xy.GetY()-another.GetY())) < tolerance
}

func (xy *XY) GetX() float64 {
	return xy.x.valFloat
}

func (xy *XY) SetX(x float64) {
	xy.x.valFloat = x
}

func (xy *XY) GetY() float64 {
	return xy.y.valFloat
}

func (xy *XY) SetY(y float64) {
	xy.y.valFloat = y
}

func (xy *XY) GetI() float64 {
	return xy.i.valFloat
}

func (xy *XY) GetJ() float64 {
	return xy.j.valFloat
}

// Init parses "X...Y...I...J...Dnn", the missing X and Y are taken from prev.
// The D part is checked to be the last one but is not interpreted.
func (xy *XY) Init(sc string, fs *FormatSpec, prev *XY) bool {
	var result = false
	if prev == nil { // first node
		xy.nodeNumber = 0
		xy.x.clear()
		xy.y.clear()
	} else {
		*xy = *prev
		xy.nodeNumber = prev.nodeNumber + 1
	}
	// offsets are not modal
	xy.i.clear()
	xy.j.clear()
	xy.coordString = strings.ToUpper(sc)
	xi, xd := fs.ReadXI(), fs.ReadXD()
	yi, yd := fs.ReadYI(), fs.ReadYD()
	masks := []byte{'X', 'Y', 'I', 'J', 'D'}
	mpos := []int{-1, -1, -1, -1, -1}
	var found int = 0 // found signatures
	for i := range masks {
		mpos[i] = strings.IndexByte(xy.coordString, masks[i])
		if mpos[i] != -1 {
			found++
		}
	}
	if mpos[len(mpos)-1] == -1 {
		// eror in string, no trailing D symbol
		return result
	}
	if mpos[len(mpos)-1] > (len(xy.coordString) - 2) {
		// eror in string, D code is missing
		return result
	}
	m2 := make([]byte, found) // mask array contains only found LETTERS
	p2 := make([]int, found)  // and their positions
	j := 0
	for i := range masks {
		if mpos[i] != -1 {
			p2[j] = mpos[i]
			m2[j] = masks[i]
			j++
		}
	}
	// sort

	i := 0
	for {
		if i < j-1 {
			if p2[i] > p2[i+1] {
				p2[i], p2[i+1] = p2[i+1], p2[i]
				m2[i], m2[i+1] = m2[i+1], m2[i]
				if i != 0 {
					i--
				}
			} else {
				i++
			}
		} else {
			break
		}
	}
	if m2[len(m2)-1] != 'D' {
		return false
	}

L1:
	for i := range m2 {
		switch m2[i] {
		case 'X':
			// possibly X value detected
			if xy.x.init(xy.coordString[p2[i]+1:p2[i+1]], xi, xd, fs.TrailingZeros) == false {
				result = false
				break L1
			}
		case 'Y':
			// possibly Y value detected
			if xy.y.init(xy.coordString[p2[i]+1:p2[i+1]], yi, yd, fs.TrailingZeros) == false {
				result = false
				break L1
			}
		case 'I':
			// possibly I value detected
			if xy.i.init(xy.coordString[p2[i]+1:p2[i+1]], xi, xd, fs.TrailingZeros) == false {
				result = false
				break L1
			}
		case 'J':
			// possibly J value detected
			if xy.j.init(xy.coordString[p2[i]+1:p2[i+1]], yi, yd, fs.TrailingZeros) == false {
				result = false
				break L1
			}
		case 'D':
			// trailing symbol found
			result = true
			break L1
		default:
			// nothing was found
			result = false
			break L1
		}
	}
	if result == false {
		// clear all fields and links
		xy.x.clear()
		xy.y.clear()
		xy.i.clear()
		xy.j.clear()
		xy.coordString = ""
	}
	return result
}
