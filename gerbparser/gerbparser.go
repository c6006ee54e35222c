/*
Package gerbparser builds the document tree from the lexed Gerber tokens.

The tokens are processed one by one by a small state machine. The graphics
state directives (LP, LM, LR, LS, Dnn) are not applied here, they are kept
as items of the tree in the document order.
*/
package gerbparser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/VasiliyTurchenko/gerber2ngc/amprocessor"
	"github.com/VasiliyTurchenko/gerber2ngc/apertures"
	lex "github.com/VasiliyTurchenko/gerber2ngc/geberlexer"
	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
	"github.com/VasiliyTurchenko/gerber2ngc/gerbertree"
	"github.com/VasiliyTurchenko/gerber2ngc/regions"
	"github.com/VasiliyTurchenko/gerber2ngc/srblocks"
	stor "github.com/VasiliyTurchenko/gerber2ngc/strings_storage"
	"github.com/VasiliyTurchenko/gerber2ngc/xy"
)

var (
	ErrNoUnits     = errors.New("gerbparser: unit of measurements command not found")
	ErrNoFormat    = errors.New("gerbparser: format specification command not found")
	ErrSyntax      = errors.New("gerbparser: syntax error")
	ErrUnbalanced  = errors.New("gerbparser: unbalanced block")
	ErrArcCenter   = errors.New("gerbparser: arc center can not be resolved")
	ErrUnsupported = errors.New("gerbparser: unsupported command")
)

// angular tolerance of the single quadrant center search, radians
const angleEps = 1e-6

// a warning is issued when the end point is off the arc more than this part of the radius
const arcDeviationWarn = 0.01

// SearchMO looks for the units command, the read position is reset
func SearchMO(storage *stor.Storage) (string, error) {
	s, ok := storage.Find(func(s string) bool {
		return strings.HasPrefix(s, xy.GerberMOIN) || strings.HasPrefix(s, xy.GerberMOMM) ||
			s == "G70*" || s == "G71*"
	})
	storage.ResetPos()
	if !ok {
		return "", ErrNoUnits
	}
	switch s {
	case "G70*":
		return xy.GerberMOIN, nil
	case "G71*":
		return xy.GerberMOMM, nil
	}
	return s, nil
}

// SearchFS looks for the format specification command, the read position is reset
func SearchFS(storage *stor.Storage) (string, error) {
	s, ok := storage.Find(func(s string) bool {
		return strings.HasPrefix(s, xy.GerberFormatSpec)
	})
	storage.ResetPos()
	if !ok {
		return "", ErrNoFormat
	}
	if strings.HasPrefix(s, "%FSLI") || strings.HasPrefix(s, "%FSTI") {
		return s, fmt.Errorf("%w: incremental coordinates", ErrUnsupported)
	}
	return s, nil
}

type GerberStringProcessingResult int

const (
	SCResultNextString    GerberStringProcessingResult = iota + 1 // need next string to complete step
	SCResultSkipString                                            // string was skipped
	SCResultStepCompleted                                         // an item is added to the tree
	SCResultStop
)

func (r GerberStringProcessingResult) String() string {
	switch r {
	case SCResultNextString:
		return "next string"
	case SCResultSkipString:
		return "string skipped"
	case SCResultStepCompleted:
		return "step completed"
	case SCResultStop:
		return "stop"
	default:
	}
	return "unknown result"
}

// State is the modal state of the coordinate commands
type State struct {
	QMode  QuadMode
	IpMode IPmode
	Coord  *xy.XY
}

func (st *State) String() string {
	return st.QMode.String() + "; " + st.IpMode.String() + "; " + st.Coord.String()
}

// an open aperture block or step and repeat block
type frame struct {
	items   []gerbertree.Item
	block   *gerbertree.ApertureBlock
	srBlock *srblocks.SRBlock
}

type Parser struct {
	fs      *xy.FormatSpec
	state   State
	stack   []*frame
	region  *gerbertree.Region
	contour *gerbertree.Contour
	// the trackers of all the regions met, for the diagnostic output
	Regions []*regions.Region
}

func NewParser(fs *xy.FormatSpec) *Parser {
	retVal := new(Parser)
	retVal.fs = fs
	retVal.state.IpMode = IPModeLinear
	retVal.state.Coord = xy.NewXY()
	retVal.stack = []*frame{{}}
	return retVal
}

// Parse reads the whole storage and returns the document tree
func Parse(storage *stor.Storage) (*gerbertree.Document, error) {
	mo, err := SearchMO(storage)
	if err != nil {
		return nil, err
	}
	fsString, err := SearchFS(storage)
	if err != nil {
		return nil, err
	}
	fs := new(xy.FormatSpec)
	if !fs.Init(fsString, mo) {
		return nil, fmt.Errorf("%w: bad format specification %s", ErrSyntax, fsString)
	}
	glog.Infoln(fs.String())

	p := NewParser(fs)
	storage.ResetPos()
	for {
		pos := storage.PeekPos()
		s := storage.String()
		if len(s) == 0 {
			break
		}
		res, err := p.CreateStep(s, pos)
		if err != nil {
			return nil, fmt.Errorf("token %d %q: %w", pos, s, err)
		}
		if glog.V(3) {
			glog.Infoln(pos, s, res)
		}
		if res == SCResultStop {
			break
		}
	}
	items, err := p.Finish()
	if err != nil {
		return nil, err
	}
	return &gerbertree.Document{Format: fs, Units: fs.Units, Items: items}, nil
}

func (p *Parser) top() *frame {
	return p.stack[len(p.stack)-1]
}

func (p *Parser) add(it gerbertree.Item) GerberStringProcessingResult {
	f := p.top()
	f.items = append(f.items, it)
	if f.srBlock != nil {
		f.srBlock.IncNItems()
	}
	return SCResultStepCompleted
}

// Finish checks that all the blocks are closed and returns the top level items.
// A step and repeat block left open is closed, an open aperture block or region is an error.
func (p *Parser) Finish() ([]gerbertree.Item, error) {
	if p.region != nil {
		return nil, fmt.Errorf("%w: region opened at %d is not closed", ErrUnbalanced, p.region.Line)
	}
	for len(p.stack) > 1 {
		if p.top().srBlock == nil {
			return nil, fmt.Errorf("%w: aperture block D%d is not closed", ErrUnbalanced, p.top().block.Code)
		}
		glog.Warningln("step and repeat block is closed at the end of file")
		p.closeSR()
	}
	return p.stack[0].items, nil
}

// CreateStep processes one token, i is the token number
func (p *Parser) CreateStep(inString string, i int) (GerberStringProcessingResult, error) {
	cmd := lex.Classify(inString)
	switch cmd.Cmd {
	case lex.FS, lex.MO, lex.G70, lex.G71:
		// already processed
		return SCResultSkipString, nil
	case lex.G01:
		p.state.IpMode = IPModeLinear
		return SCResultNextString, nil
	case lex.G02:
		p.state.IpMode = IPModeCwC
		return SCResultNextString, nil
	case lex.G03:
		p.state.IpMode = IPModeCCwC
		return SCResultNextString, nil
	case lex.G74:
		p.state.QMode = QuadModeSingle
		return SCResultNextString, nil
	case lex.G75:
		p.state.QMode = QuadModeMulti
		return SCResultNextString, nil
	case lex.G91:
		return SCResultStop, fmt.Errorf("%w: incremental notation", ErrUnsupported)
	case lex.M00, lex.M02:
		return SCResultStop, nil
	case lex.AD:
		apert := new(apertures.Aperture)
		if err := apert.Init(inString); err != nil {
			return SCResultStop, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return p.add(&gerbertree.ApertureDef{Def: apert}), nil
	case lex.AM:
		am, err := amprocessor.NewApertureMacro(inString)
		if err != nil {
			return SCResultStop, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return p.add(&gerbertree.MacroDef{Macro: am}), nil
	case lex.AB:
		return p.apertureBlock(cmd)
	case lex.SR:
		return p.stepRepeat(inString)
	case lex.LP, lex.LM, lex.LR, lex.LS:
		d, err := directive(cmd)
		if err != nil {
			return SCResultStop, err
		}
		return p.add(d), nil
	case lex.D:
		code, err := strconv.Atoi(cmd.Body)
		if err != nil {
			return SCResultStop, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		if p.region != nil {
			glog.Warningln("aperture select inside a region:", inString)
		}
		return p.add(&gerbertree.Directive{Kind: gerbertree.DirAperture, Aperture: code}), nil
	case lex.G36:
		if p.region != nil {
			return SCResultStop, fmt.Errorf("%w: nested G36", ErrUnbalanced)
		}
		tracker := regions.NewRegion(i)
		p.Regions = append(p.Regions, tracker)
		p.region = &gerbertree.Region{Line: i}
		p.contour = nil
		return SCResultNextString, nil
	case lex.G37:
		if p.region == nil {
			return SCResultStop, fmt.Errorf("%w: G37 without G36", ErrUnbalanced)
		}
		tracker := p.Regions[len(p.Regions)-1]
		if opened, err := tracker.IsRegionOpened(); err != nil || !opened {
			return SCResultStop, fmt.Errorf("%w: region at %d is closed twice", ErrUnbalanced, p.region.Line)
		}
		if err := tracker.Close(i); err != nil {
			return SCResultStop, err
		}
		glog.V(2).Infoln("region closed,", tracker.GetNumXY(), "vertices")
		p.closeContour()
		reg := p.region
		p.region = nil
		if len(reg.Contours) == 0 {
			glog.Warningln("empty region at", reg.Line)
			return SCResultSkipString, nil
		}
		return p.add(reg), nil
	case lex.D01, lex.D02, lex.D03:
		return p.operation(cmd)
	}
	glog.Warningln("unknown command is skipped:", inString)
	return SCResultSkipString, nil
}

func directive(cmd lex.GerberCommand) (*gerbertree.Directive, error) {
	switch cmd.Cmd {
	case lex.LP:
		switch cmd.Body {
		case "D":
			return &gerbertree.Directive{Kind: gerbertree.DirPolarity, Polarity: PolTypeDark}, nil
		case "C":
			return &gerbertree.Directive{Kind: gerbertree.DirPolarity, Polarity: PolTypeClear}, nil
		}
	case lex.LM:
		m := map[string]MirrorType{"N": MirrorNone, "X": MirrorX, "Y": MirrorY, "XY": MirrorXY}
		if v, ok := m[cmd.Body]; ok {
			return &gerbertree.Directive{Kind: gerbertree.DirMirror, Mirror: v}, nil
		}
	case lex.LR:
		v, err := strconv.ParseFloat(cmd.Body, 64)
		if err == nil {
			return &gerbertree.Directive{Kind: gerbertree.DirRotation, Rotation: v}, nil
		}
	case lex.LS:
		v, err := strconv.ParseFloat(cmd.Body, 64)
		if err == nil && v > 0 {
			return &gerbertree.Directive{Kind: gerbertree.DirScale, Scale: v}, nil
		}
	}
	return nil, fmt.Errorf("%w: bad %s parameter %q", ErrSyntax, cmd.Cmd, cmd.Body)
}

// "%ABD10*%" opens a block, "%AB*%" closes it
func (p *Parser) apertureBlock(cmd lex.GerberCommand) (GerberStringProcessingResult, error) {
	if len(cmd.Body) == 0 {
		f := p.top()
		if f.block == nil {
			return SCResultStop, fmt.Errorf("%w: %%AB*%% without an open aperture block", ErrUnbalanced)
		}
		p.stack = p.stack[:len(p.stack)-1]
		f.block.Items = f.items
		glog.V(2).Infoln("aperture block closed:", f.block)
		return p.add(f.block), nil
	}
	if p.region != nil {
		return SCResultStop, fmt.Errorf("%w: aperture block inside a region", ErrSyntax)
	}
	code, err := strconv.Atoi(strings.TrimPrefix(cmd.Body, "D"))
	if err != nil || !strings.HasPrefix(cmd.Body, "D") {
		return SCResultStop, fmt.Errorf("%w: bad aperture block code %q", ErrSyntax, cmd.Body)
	}
	if code < MinApertureCode {
		return SCResultStop, fmt.Errorf("%w: aperture number %d is reserved", ErrSyntax, code)
	}
	p.stack = append(p.stack, &frame{block: &gerbertree.ApertureBlock{Code: code}})
	return SCResultNextString, nil
}

// a new %SR with parameters closes the open one
func (p *Parser) stepRepeat(inString string) (GerberStringProcessingResult, error) {
	sr := new(srblocks.SRBlock)
	if err := sr.Init(inString); err != nil {
		return SCResultStop, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if p.region != nil {
		return SCResultStop, fmt.Errorf("%w: step and repeat inside a region", ErrSyntax)
	}
	res := SCResultNextString
	if p.top().srBlock != nil {
		p.closeSR()
		res = SCResultStepCompleted
	} else if sr.IsClosing() {
		glog.Warningln("closing %SR without an open block is ignored")
		return SCResultSkipString, nil
	}
	if !sr.IsClosing() {
		glog.V(2).Infoln("step and repeat block opened:", sr)
		p.stack = append(p.stack, &frame{srBlock: sr})
	}
	return res, nil
}

func (p *Parser) closeSR() {
	f := p.top()
	p.stack = p.stack[:len(p.stack)-1]
	if f.srBlock.NItems() == 0 {
		glog.Warningln("empty step and repeat block:", f.srBlock)
	}
	p.add(&gerbertree.StepRepeat{
		NX:    f.srBlock.NumX(),
		NY:    f.srBlock.NumY(),
		DX:    f.srBlock.DX(),
		DY:    f.srBlock.DY(),
		Items: f.items,
	})
}

func (p *Parser) closeContour() {
	if p.contour != nil && len(p.contour.Items) > 0 {
		p.region.Contours = append(p.region.Contours, p.contour)
	}
	p.contour = nil
}

func point(c *xy.XY) gerbertree.Point {
	return gerbertree.Point{X: c.GetX(), Y: c.GetY()}
}

func (p *Parser) operation(cmd lex.GerberCommand) (GerberStringProcessingResult, error) {
	opcode := "D01"
	switch cmd.Cmd {
	case lex.D02:
		opcode = "D02"
	case lex.D03:
		opcode = "D03"
	}
	prev := p.state.Coord
	coord := xy.NewXY()
	if !coord.Init(cmd.Body+opcode, p.fs, prev) {
		return SCResultStop, fmt.Errorf("%w: bad coordinate data %q", ErrSyntax, cmd.Source)
	}
	p.state.Coord = coord
	from, to := point(prev), point(coord)

	switch cmd.Cmd {
	case lex.D02:
		if p.region != nil {
			p.closeContour()
		}
		return SCResultNextString, nil
	case lex.D03:
		if p.region != nil {
			return SCResultStop, fmt.Errorf("%w: flash inside a region", ErrSyntax)
		}
		return p.add(&gerbertree.Flash{At: to}), nil
	}

	var it gerbertree.Item
	if p.state.IpMode == IPModeLinear {
		it = &gerbertree.Segment{From: from, To: to}
	} else {
		arc, err := p.arc(prev, coord)
		switch {
		case err == nil:
			it = arc
		case p.region != nil:
			glog.Warningln("undefined region arc is replaced by a line:", cmd.Source, err)
			it = &gerbertree.Segment{From: from, To: to}
		default:
			return SCResultStop, err
		}
	}
	if p.region != nil {
		if p.contour == nil {
			p.contour = new(gerbertree.Contour)
		}
		p.contour.Items = append(p.contour.Items, it)
		p.Regions[len(p.Regions)-1].IncNumXY()
		return SCResultNextString, nil
	}
	return p.add(it), nil
}

// coordinate resolution of the document
func (p *Parser) eps() float64 {
	d := p.fs.ReadXD()
	if p.fs.ReadYD() > d {
		d = p.fs.ReadYD()
	}
	return math.Pow(10, -float64(d))
}

func angle(c, pt gerbertree.Point) float64 {
	return math.Atan2(pt.Y-c.Y, pt.X-c.X)
}

func dist(a, b gerbertree.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// normalizes the angle to (-pi, pi]
func normAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// singleQuadrantCenter tries the four signs of the unsigned offsets and keeps
// the centers whose sweep in the arc direction does not exceed a half turn,
// the one with the smallest radius deviation wins
func singleQuadrantCenter(from, to gerbertree.Point, i, j float64, ccw bool) (gerbertree.Point, bool) {
	i, j = math.Abs(i), math.Abs(j)
	candidates := [4]gerbertree.Point{from.Add(i, j), from.Add(-i, j), from.Add(i, -j), from.Add(-i, -j)}
	var retVal gerbertree.Point
	best := math.Inf(1)
	for _, c := range candidates {
		a := normAngle(angle(c, to) - angle(c, from))
		if ccw {
			if a <= -angleEps || a >= math.Pi+angleEps {
				continue
			}
		} else if a >= angleEps || a <= -(math.Pi + angleEps) {
			continue
		}
		dev := math.Abs(dist(c, from) - dist(c, to))
		if dev < best {
			best = dev
			retVal = c
		}
	}
	return retVal, !math.IsInf(best, 1)
}

func (p *Parser) arc(prev, coord *xy.XY) (*gerbertree.Arc, error) {
	from, to := point(prev), point(coord)
	i, j := coord.GetI(), coord.GetJ()
	ccw := p.state.IpMode == IPModeCCwC
	retVal := &gerbertree.Arc{From: from, To: to, Mode: p.state.IpMode}

	qMode := p.state.QMode
	if qMode == 0 {
		glog.Warningln("quadrant mode is not set, multi quadrant is assumed")
		p.state.QMode = QuadModeMulti
		qMode = QuadModeMulti
	}
	if qMode == QuadModeSingle {
		c, ok := singleQuadrantCenter(from, to, i, j, ccw)
		if !ok {
			return nil, fmt.Errorf("%w: from %s to %s, offsets %f %f", ErrArcCenter, from, to, i, j)
		}
		retVal.Center = c
	} else {
		retVal.Center = from.Add(i, j)
	}

	retVal.Radius = dist(retVal.Center, from)
	if retVal.Radius < p.eps() {
		return nil, fmt.Errorf("%w: zero radius", ErrArcCenter)
	}
	retVal.RadiusDeviation = dist(retVal.Center, to) - retVal.Radius
	if math.Abs(retVal.RadiusDeviation) > arcDeviationWarn*retVal.Radius+p.eps() {
		glog.Warningln("arc end point is off the circle by", retVal.RadiusDeviation)
	}
	retVal.Begin = angle(retVal.Center, from)
	sweep := angle(retVal.Center, to) - retVal.Begin
	if ccw && sweep < 0 {
		sweep += 2 * math.Pi
	}
	if !ccw && sweep > 0 {
		sweep -= 2 * math.Pi
	}
	if qMode == QuadModeMulti && coord.Equals(prev, p.eps()) {
		sweep = 2 * math.Pi
		if !ccw {
			sweep = -sweep
		}
	}
	retVal.Sweep = sweep
	return retVal, nil
}
