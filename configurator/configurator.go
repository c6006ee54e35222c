package configurator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
)

const (
	CfgIOInput  string = "io.Input"
	CfgIOOutput string = "io.Output"

	CfgToolRadius     string = "tool.Radius"
	CfgToolFillRadius string = "tool.FillRadius"

	CfgGCodeFeed          string = "gcode.Feed"
	CfgGCodeSeek          string = "gcode.Seek"
	CfgGCodeZSafe         string = "gcode.ZSafe"
	CfgGCodeZCut          string = "gcode.ZCut"
	CfgGCodeHeader        string = "gcode.Header"
	CfgGCodeFooter        string = "gcode.Footer"
	CfgGCodeComments      string = "gcode.Comments"
	CfgGCodeHumanReadable string = "gcode.HumanReadable"

	CfgGeometrySegmentLength string = "geometry.SegmentLength"
	CfgGeometryMinSegments   string = "geometry.MinSegments"
	CfgGeometryMaxDepth      string = "geometry.MaxDepth"

	CfgFillHorizontal   string = "fill.Horizontal"
	CfgFillVertical     string = "fill.Vertical"
	CfgFillZenGarden    string = "fill.ZenGarden"
	CfgFillInvert       string = "fill.Invert"
	CfgFillSimpleInfill string = "fill.SimpleInfill"
	CfgFillDrawOutline  string = "fill.DrawOutline"
	CfgFillInterleaved  string = "fill.Interleaved"
	CfgFillZenCap       string = "fill.ZenCap"

	CfgOutputMetric  string = "output.Metric"
	CfgOutputInches  string = "output.Inches"
	CfgOutputPolygon string = "output.Polygon"

	CfgHeightMapFile string = "heightmap.File"

	CfgCommonPrintStatistic  string = "common.PrintStatistic"
	CfgCommonPrintMemoryInfo string = "common.PrintMemoryInfo"
)

const eps = 1.0e-5

var (
	ErrFillRadius   = errors.New("configurator: the radius or the fill radius must be set for the fill options")
	ErrInfillRadius = errors.New("configurator: the offset radius can not be set for a simple infill")
	ErrInfillZen    = errors.New("configurator: a simple infill supports the horizontal and the vertical fill only")
	ErrOutputUnits  = errors.New("configurator: both metric and inch output are requested")
	ErrNoInput      = errors.New("configurator: no input file")
)

func SetDefaults(v *viper.Viper) {
	v.SetConfigName("config") // no need to include file extension
	v.AddConfigPath(".")      // set the path of your config file
	v.SetConfigType("toml")

	v.SetDefault(CfgIOInput, "")
	v.SetDefault(CfgIOOutput, "")

	v.SetDefault(CfgToolRadius, 0.0)
	v.SetDefault(CfgToolFillRadius, -1.0)

	v.SetDefault(CfgGCodeFeed, 10.0)
	v.SetDefault(CfgGCodeSeek, 100.0)
	v.SetDefault(CfgGCodeZSafe, 0.1)
	v.SetDefault(CfgGCodeZCut, -0.05)
	v.SetDefault(CfgGCodeHeader, "")
	v.SetDefault(CfgGCodeFooter, "")
	v.SetDefault(CfgGCodeComments, true)
	v.SetDefault(CfgGCodeHumanReadable, false)

	// 0 selects 0.1 mm or 0.004 in
	v.SetDefault(CfgGeometrySegmentLength, 0.0)
	v.SetDefault(CfgGeometryMinSegments, 8)
	v.SetDefault(CfgGeometryMaxDepth, 64)

	v.SetDefault(CfgFillHorizontal, false)
	v.SetDefault(CfgFillVertical, false)
	v.SetDefault(CfgFillZenGarden, false)
	v.SetDefault(CfgFillInvert, false)
	v.SetDefault(CfgFillSimpleInfill, false)
	v.SetDefault(CfgFillDrawOutline, true)
	v.SetDefault(CfgFillInterleaved, false)
	v.SetDefault(CfgFillZenCap, 400)

	v.SetDefault(CfgOutputMetric, false)
	v.SetDefault(CfgOutputInches, false)
	v.SetDefault(CfgOutputPolygon, false)

	v.SetDefault(CfgHeightMapFile, "")

	// diagnostic messages
	v.SetDefault(CfgCommonPrintStatistic, true)
	v.SetDefault(CfgCommonPrintMemoryInfo, false)
}

func ProcessConfigFile(v *viper.Viper) error {
	return v.ReadInConfig()
}

type flagDef struct {
	key       string
	name      string
	shorthand string
	usage     string
}

var flagDefs = []flagDef{
	{CfgIOInput, "input", "i", "input Gerber file"},
	{CfgIOOutput, "output", "o", "output file, the standard output when empty"},
	{CfgToolRadius, "radius", "r", "tool radius"},
	{CfgToolFillRadius, "fillradius", "F", "fill tool radius, the tool radius when not set"},
	{CfgGCodeFeed, "feed", "f", "feed rate"},
	{CfgGCodeSeek, "seek", "s", "seek rate"},
	{CfgGCodeZSafe, "zsafe", "z", "z safe height"},
	{CfgGCodeZCut, "zcut", "Z", "z cut height"},
	{CfgGCodeHeader, "gcode-header", "", "text put before the G-code"},
	{CfgGCodeFooter, "gcode-footer", "", "text put after the G-code"},
	{CfgGCodeComments, "comments", "", "write comments into the G-code"},
	{CfgGCodeHumanReadable, "human-readable", "", "lower case spaced G-code"},
	{CfgGeometrySegmentLength, "segment-length", "l", "arc and circle segment length, 0 selects by the units"},
	{CfgGeometryMaxDepth, "max-depth", "", "nesting limit of the blocks and the region holes"},
	{CfgFillHorizontal, "horizontal", "H", "horizontal scan line fill"},
	{CfgFillVertical, "vertical", "V", "vertical scan line fill"},
	{CfgFillZenGarden, "zengarden", "G", "zen garden fill"},
	{CfgFillInvert, "invertfill", "", "invert the fill pattern"},
	{CfgFillSimpleInfill, "simple-infill", "", "fill the inside of the polygons only"},
	{CfgFillDrawOutline, "outline", "", "cut the outline of a simple infill"},
	{CfgFillInterleaved, "interleaved", "", "scan stripes of one tool diameter, every other one"},
	{CfgOutputMetric, "metric", "M", "output in millimeters"},
	{CfgOutputInches, "inches", "I", "output in inches"},
	{CfgOutputPolygon, "print-polygon", "P", "write the polygons instead of the G-code"},
	{CfgHeightMapFile, "height-file", "", "height map file, x y z per line"},
}

// NewFlagSet defines the command line flags, the defaults are taken from v
func NewFlagSet(name string, v *viper.Viper) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	for _, fd := range flagDefs {
		switch def := v.Get(fd.key).(type) {
		case bool:
			fs.BoolP(fd.name, fd.shorthand, def, fd.usage)
		case string:
			fs.StringP(fd.name, fd.shorthand, def, fd.usage)
		case int:
			fs.IntP(fd.name, fd.shorthand, def, fd.usage)
		default:
			fs.Float64P(fd.name, fd.shorthand, v.GetFloat64(fd.key), fd.usage)
		}
	}
	return fs
}

// BindFlags makes the flags of fs override the keys of v
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fd := range flagDefs {
		f := fs.Lookup(fd.name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fd.key, f); err != nil {
			return fmt.Errorf("configurator: %s: %w", fd.key, err)
		}
	}
	return nil
}

// Config is the whole configuration of one conversion
type Config struct {
	Input, Output string

	Radius     float64
	FillRadius float64 // <= 0 means Radius

	Feed, Seek       float64
	FeedSet, SeekSet bool
	ZSafe, ZCut      float64
	Header, Footer   string
	Comments         bool
	HumanReadable    bool

	SegmentLength float64 // <= 0 selects by the units
	MinSegments   int
	MaxDepth      int

	Horizontal, Vertical, ZenGarden bool
	Invert, SimpleInfill            bool
	DrawOutline, Interleaved        bool
	ZenCap                          int

	OutputUnits Units // 0 keeps the document units
	Polygon     bool

	HeightMapFile string

	PrintStatistic  bool
	PrintMemoryInfo bool
}

// Load reads the configuration from v. The feed and seek rates count as set
// when they come from the configuration file or from a changed flag of fs,
// fs may be nil.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	retVal := &Config{
		Input:           v.GetString(CfgIOInput),
		Output:          v.GetString(CfgIOOutput),
		Radius:          v.GetFloat64(CfgToolRadius),
		FillRadius:      v.GetFloat64(CfgToolFillRadius),
		Feed:            v.GetFloat64(CfgGCodeFeed),
		Seek:            v.GetFloat64(CfgGCodeSeek),
		ZSafe:           v.GetFloat64(CfgGCodeZSafe),
		ZCut:            v.GetFloat64(CfgGCodeZCut),
		Header:          v.GetString(CfgGCodeHeader),
		Footer:          v.GetString(CfgGCodeFooter),
		Comments:        v.GetBool(CfgGCodeComments),
		HumanReadable:   v.GetBool(CfgGCodeHumanReadable),
		SegmentLength:   v.GetFloat64(CfgGeometrySegmentLength),
		MinSegments:     v.GetInt(CfgGeometryMinSegments),
		MaxDepth:        v.GetInt(CfgGeometryMaxDepth),
		Horizontal:      v.GetBool(CfgFillHorizontal),
		Vertical:        v.GetBool(CfgFillVertical),
		ZenGarden:       v.GetBool(CfgFillZenGarden),
		Invert:          v.GetBool(CfgFillInvert),
		SimpleInfill:    v.GetBool(CfgFillSimpleInfill),
		DrawOutline:     v.GetBool(CfgFillDrawOutline),
		Interleaved:     v.GetBool(CfgFillInterleaved),
		ZenCap:          v.GetInt(CfgFillZenCap),
		Polygon:         v.GetBool(CfgOutputPolygon),
		HeightMapFile:   v.GetString(CfgHeightMapFile),
		PrintStatistic:  v.GetBool(CfgCommonPrintStatistic),
		PrintMemoryInfo: v.GetBool(CfgCommonPrintMemoryInfo),
	}
	retVal.FeedSet = v.InConfig(CfgGCodeFeed) || (fs != nil && fs.Changed("feed"))
	retVal.SeekSet = v.InConfig(CfgGCodeSeek) || (fs != nil && fs.Changed("seek"))

	metric, inches := v.GetBool(CfgOutputMetric), v.GetBool(CfgOutputInches)
	switch {
	case metric && inches:
		return nil, ErrOutputUnits
	case metric:
		retVal.OutputUnits = UnitsMM
	case inches:
		retVal.OutputUnits = UnitsInch
	}
	if err := retVal.Check(); err != nil {
		return nil, err
	}
	return retVal, nil
}

// Check rejects the option combinations that can not produce a tool path
func (cfg *Config) Check() error {
	fill := cfg.Horizontal || cfg.Vertical || cfg.ZenGarden
	fr := cfg.FillRadius
	if fr <= 0 {
		fr = cfg.Radius
	}
	if fill && cfg.Radius < eps && fr < eps {
		return ErrFillRadius
	}
	if cfg.SimpleInfill && cfg.Radius >= eps {
		return ErrInfillRadius
	}
	if cfg.SimpleInfill && cfg.ZenGarden {
		return ErrInfillZen
	}
	return nil
}

// SegmentLengthFor returns the segment length for the document units
func (cfg *Config) SegmentLengthFor(u Units) float64 {
	if cfg.SegmentLength > 0 {
		return cfg.SegmentLength
	}
	if u == UnitsMM {
		return 0.1
	}
	return 0.004
}

func DiagnosticAllCfgPrint(v *viper.Viper) string {
	keys := v.AllKeys()
	sort.Strings(keys)
	retVal := ""
	for _, key := range keys {
		retVal += fmt.Sprintln(key, ":", v.Get(key))
	}
	return retVal
}
