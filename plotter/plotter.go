/*
 Generates the G-code or the polygon text for the cutter paths
*/
package plotter

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	clipper "github.com/ctessum/go.clipper"
	"github.com/golang/glog"

	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
)

const (
	mmPerInch = 25.4

	// the height map step along a cut
	dsMM   = 0.125
	dsInch = 1.0 / 1024.0
)

// ZOffsetter returns the surface height at the point
type ZOffsetter interface {
	Z(x, y float64) float64
}

// Params are the machine settings, the lengths are in the output units
type Params struct {
	Feed, Seek       float64
	FeedSet, SeekSet bool // the F words are written only when set
	ZSafe, ZCut      float64
	Header, Footer   string
	Comments         bool
	HumanReadable    bool
	SourceUnits      Units
	OutputUnits      Units
	HeightMap        ZOffsetter
	HeightMapStep    float64 // 0 selects 0.125 mm or 1/1024 in
}

/*
	Plotter current status and statistic
*/
type PlotterParams struct {
	Params
	pathCmds        int
	rapidCmds       int
	cutCmds         int
	squeezed        int
	currentPosX     float64
	currentPosY     float64
	currentPosZ     float64
	conv            func(float64) float64
	ds              float64
	outStringBuffer []string
}

func NewPlotter(prm Params) *PlotterParams {
	retVal := new(PlotterParams)
	retVal.Params = prm
	retVal.Init()
	return retVal
}

/*
	Initializes Plotter object and selects the unit conversion
*/
func (plotter *PlotterParams) Init() {
	plotter.currentPosX = 0
	plotter.currentPosY = 0
	plotter.currentPosZ = math.NaN()
	plotter.outStringBuffer = make([]string, 0)
	if plotter.OutputUnits == 0 {
		plotter.OutputUnits = plotter.SourceUnits
	}
	plotter.conv = func(v float64) float64 { return v }
	switch {
	case plotter.SourceUnits == UnitsMM && plotter.OutputUnits == UnitsInch:
		plotter.conv = func(v float64) float64 { return v / mmPerInch }
	case plotter.SourceUnits == UnitsInch && plotter.OutputUnits == UnitsMM:
		plotter.conv = func(v float64) float64 { return v * mmPerInch }
	}
	plotter.ds = plotter.HeightMapStep
	if plotter.ds <= 0 {
		plotter.ds = dsInch
		if plotter.OutputUnits == UnitsMM {
			plotter.ds = dsMM
		}
	}
}

func (plotter *PlotterParams) Statistic() string {
	return fmt.Sprintf("paths: %d, rapid moves: %d, cuts: %d, squeezed: %d",
		plotter.pathCmds, plotter.rapidCmds, plotter.cutCmds, plotter.squeezed)
}

func (plotter *PlotterParams) emit(s string) {
	plotter.outStringBuffer = append(plotter.outStringBuffer, s)
}

func (plotter *PlotterParams) point(pt *clipper.IntPoint) (float64, float64) {
	x, y := fp.XY(pt)
	return plotter.conv(x), plotter.conv(y)
}

// word formats one axis word in the selected style
func (plotter *PlotterParams) word(axis byte, v float64) string {
	if plotter.HumanReadable {
		return fmt.Sprintf(" %c%.6f", axis, v)
	}
	return fmt.Sprintf("%c%.6f", axis-'a'+'A', v)
}

func (plotter *PlotterParams) move(cmd, humanCmd string, rate float64, rateSet bool, axes string, coords ...float64) string {
	var sb strings.Builder
	if plotter.HumanReadable {
		sb.WriteString(humanCmd)
	} else {
		sb.WriteString(cmd)
	}
	for i := range axes {
		sb.WriteString(plotter.word(axes[i], coords[i]))
	}
	if rateSet {
		if plotter.HumanReadable {
			sb.WriteString(fmt.Sprintf(" f%f", rate))
		} else {
			sb.WriteString(fmt.Sprintf(" F%f", rate))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// Rapid is a G00 move, axes names the coordinates given
func (plotter *PlotterParams) Rapid(axes string, coords ...float64) string {
	retVal := plotter.move("G00", "g0", plotter.Seek, plotter.SeekSet, axes, coords...)
	plotter.track(axes, coords)
	plotter.rapidCmds++
	plotter.emit(retVal)
	return retVal
}

// Cut is a G01 move
func (plotter *PlotterParams) Cut(axes string, coords ...float64) string {
	retVal := plotter.move("G01", "g1", plotter.Feed, plotter.FeedSet, axes, coords...)
	plotter.track(axes, coords)
	plotter.cutCmds++
	plotter.emit(retVal)
	return retVal
}

func (plotter *PlotterParams) track(axes string, coords []float64) {
	for i := range axes {
		switch axes[i] {
		case 'x':
			plotter.currentPosX = coords[i]
		case 'y':
			plotter.currentPosY = coords[i]
		case 'z':
			plotter.currentPosZ = coords[i]
		}
	}
}

// cutTo cuts a straight line from the current position, with a height map
// the line is split and every point follows the surface
func (plotter *PlotterParams) cutTo(x, y float64) {
	if plotter.HeightMap == nil {
		plotter.Cut("xy", x, y)
		return
	}
	x0, y0 := plotter.currentPosX, plotter.currentPosY
	n := int(math.Hypot(x-x0, y-y0) / plotter.ds)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		px, py := x0+t*(x-x0), y0+t*(y-y0)
		plotter.Cut("xyz", px, py, plotter.zCut(px, py))
	}
	plotter.Cut("xyz", x, y, plotter.zCut(x, y))
}

func (plotter *PlotterParams) zCut(x, y float64) float64 {
	return plotter.ZCut + plotter.HeightMap.Z(x, y)
}

/*
	Writes the units and the absolute mode commands
*/
func (plotter *PlotterParams) Start() string {
	cmd := "G20"
	if plotter.OutputUnits == UnitsMM {
		cmd = "G21"
	}
	retVal := cmd + "\nG90\n"
	if plotter.HumanReadable {
		retVal = strings.ToLower(retVal)
	}
	plotter.emit(retVal)
	return retVal
}

// GCode writes the paths, each one is cut as a closed loop
func (plotter *PlotterParams) GCode(paths clipper.Paths) {
	if len(plotter.Header) > 0 {
		plotter.emit(plotter.Header + "\n")
	}
	plotter.Cut("z", plotter.ZSafe)
	if plotter.HumanReadable {
		plotter.emit("\n")
	}
	if plotter.Comments {
		plotter.emit(fmt.Sprintf("\n( feed %d seek %d zsafe %f, zcut %f )\n",
			int(plotter.Feed), int(plotter.Seek), plotter.ZSafe, plotter.ZCut))
	}

	for i, p := range paths {
		if plotter.HumanReadable {
			plotter.emit("\n\n")
		}
		if plotter.Comments {
			plotter.emit(fmt.Sprintf("( path %d )\n", i))
		}
		if len(p) < 1 {
			continue
		}
		plotter.pathCmds++
		startX, startY := plotter.point(p[0])
		plotter.Rapid("xy", startX, startY)
		if plotter.HeightMap == nil {
			plotter.Cut("z", plotter.ZCut)
		} else {
			plotter.Cut("xyz", startX, startY, plotter.zCut(startX, startY))
		}
		for _, pt := range p[1:] {
			plotter.cutTo(plotter.point(pt))
		}
		// back to the start
		plotter.cutTo(startX, startY)
		plotter.Cut("z", plotter.ZSafe)
	}

	if plotter.HumanReadable {
		plotter.emit("\n\n")
	}
	if len(plotter.Footer) > 0 {
		plotter.emit(plotter.Footer + "\n")
	}
	plotter.squeeze()
}

// Polygons writes every path as "x y" lines with the first point repeated
func (plotter *PlotterParams) Polygons(paths clipper.Paths) {
	for i, p := range paths {
		plotter.emit("\n")
		if plotter.Comments {
			plotter.emit(fmt.Sprintf("( path %d )\n", i))
		}
		if len(p) < 1 {
			continue
		}
		plotter.pathCmds++
		for _, pt := range p {
			x, y := plotter.point(pt)
			plotter.emit(fmt.Sprintf("%0.8f %0.8f\n", x, y))
		}
		x, y := plotter.point(p[0])
		plotter.emit(fmt.Sprintf("%0.8f %0.8f\n", x, y))
	}
}

/*
	Deletes the repeated cut commands
*/
func (plotter *PlotterParams) squeeze() {
	tmpString := make([]string, 0, len(plotter.outStringBuffer))
	var last string
	for _, s := range plotter.outStringBuffer {
		if s == last && (strings.HasPrefix(s, "G01") || strings.HasPrefix(s, "g1 ")) {
			plotter.squeezed++
			continue
		}
		tmpString = append(tmpString, s)
		last = s
	}
	plotter.outStringBuffer = tmpString
}

func (plotter *PlotterParams) String() string {
	return strings.Join(plotter.outStringBuffer, "")
}

func (plotter *PlotterParams) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var retVal int64
	for _, s := range plotter.outStringBuffer {
		n, err := bw.WriteString(s)
		retVal += int64(n)
		if err != nil {
			return retVal, err
		}
	}
	return retVal, bw.Flush()
}

/*
	Finalizes command stream and writes the file, an empty name is the standard output
*/
func (plotter *PlotterParams) Stop(outFileName string) error {
	if len(outFileName) == 0 {
		_, err := plotter.WriteTo(os.Stdout)
		return err
	}
	outputFile, err := os.OpenFile(outFileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err = plotter.WriteTo(outputFile); err != nil {
		outputFile.Close()
		return err
	}
	if err = outputFile.Sync(); err != nil {
		glog.Warningln(outFileName, err)
	}
	if err = outputFile.Close(); err != nil {
		return err
	}
	plotter.outStringBuffer = nil
	return nil
}
