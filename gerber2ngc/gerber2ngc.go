// Copyright 2018 Vasily Turchenko <turchenkov@gmail.com>. All rights reserved.
// Use of this source code is free

package gerber2ngc

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/VasiliyTurchenko/gerber2ngc/configurator"
	fp "github.com/VasiliyTurchenko/gerber2ngc/fixedpoint"
	lex "github.com/VasiliyTurchenko/gerber2ngc/geberlexer"
	"github.com/VasiliyTurchenko/gerber2ngc/gerbparser"
	"github.com/VasiliyTurchenko/gerber2ngc/heightmap"
	"github.com/VasiliyTurchenko/gerber2ngc/plotter"
	"github.com/VasiliyTurchenko/gerber2ngc/render"
	"github.com/VasiliyTurchenko/gerber2ngc/toolpath"
)

var (
	// configuration base
	viperConfig *viper.Viper

	// the start of the conversion, for the time stamps
	timeStamp time.Time
)

func Main() {
	os.Exit(run(os.Args[0], os.Args[1:]))
}

func run(name string, args []string) int {
	defer glog.Flush()

	viperConfig = viper.New()
	configurator.SetDefaults(viperConfig)

	cfgFileError := configurator.ProcessConfigFile(viperConfig)
	if cfgFileError != nil {
		glog.Warningln("configuration file:", cfgFileError, "using built-in defaults")
	}

	fs := configurator.NewFlagSet(name, viperConfig)
	fs.AddGoFlagSet(flag.CommandLine)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		glog.Errorln(err)
		return 2
	}
	// glog wants the go flags parsed
	_ = flag.CommandLine.Parse(nil)

	fmt.Println(returnAppInfo(verbLevel()))

	if err := configurator.BindFlags(viperConfig, fs); err != nil {
		glog.Errorln(err)
		return 1
	}
	if len(viperConfig.GetString(configurator.CfgIOInput)) == 0 && fs.NArg() > 0 {
		viperConfig.Set(configurator.CfgIOInput, fs.Arg(0))
	}
	if glog.V(2) {
		glog.Infoln("configuration:\n" + configurator.DiagnosticAllCfgPrint(viperConfig))
	}

	cfg, err := configurator.Load(viperConfig, fs)
	if err != nil {
		glog.Errorln(err)
		return 1
	}
	if len(cfg.Input) == 0 {
		glog.Errorln(configurator.ErrNoInput)
		fmt.Fprintln(os.Stderr, "Usage:")
		fs.PrintDefaults()
		return 1
	}

	timeStamp = time.Now()
	glog.Infoln(timeInfo(timeStamp), "input file:", cfg.Input)
	content, err := os.ReadFile(cfg.Input)
	if err != nil {
		glog.Errorln(err)
		return 1
	}

	out, err := Convert(content, cfg)
	if err != nil {
		glog.Errorln(cfg.Input+":", err)
		return 1
	}
	if err = out.Stop(cfg.Output); err != nil {
		glog.Errorln(err)
		return 1
	}
	glog.Infoln(timeInfo(timeStamp), "done")
	return 0
}

func verbLevel() int {
	if glog.V(2) {
		return 3
	}
	if glog.V(1) {
		return 2
	}
	return 1
}

// Convert turns the Gerber source into the G-code or the polygon text
func Convert(src []byte, cfg *configurator.Config) (*plotter.PlotterParams, error) {
	printMemUsage(cfg, "Memory usage before parsing:")
	storage := lex.Lex(src)
	glog.V(1).Infoln(storage.Len(), "command(s) after lexing")
	if glog.V(3) {
		for i, s := range storage.ToArray() {
			glog.Infoln(i, s)
		}
	}

	doc, err := gerbparser.Parse(storage)
	// the tokens are not needed any more
	storage.Empty()
	if err != nil {
		return nil, err
	}
	if cfg.PrintStatistic {
		glog.Infoln(timeInfo(timeStamp), "parsed:", doc.Stats())
	}

	lin := fp.Linearization{SegmentLength: cfg.SegmentLengthFor(doc.Units), MinSegments: cfg.MinSegments}
	jc := render.NewJoinContext(lin, cfg.MaxDepth)
	joined, err := jc.Join(doc)
	if err != nil {
		return nil, err
	}
	if cfg.PrintStatistic {
		glog.Infoln(timeInfo(timeStamp), "joined:", jc.Statistic(), "paths:", len(joined))
	}
	printMemUsage(cfg, "Memory usage after joining:")

	tpp := ToolpathParams(cfg)
	glog.V(1).Infoln(tpp)
	paths, err := toolpath.Build(joined, tpp)
	if err != nil {
		return nil, err
	}

	prm := PlotterParams(cfg)
	prm.SourceUnits = doc.Units
	if len(cfg.HeightMapFile) > 0 {
		hm, err := heightmap.Load(cfg.HeightMapFile)
		if err != nil {
			return nil, err
		}
		prm.HeightMap = hm
	}
	retVal := plotter.NewPlotter(prm)
	if cfg.Polygon {
		retVal.Polygons(paths)
	} else {
		retVal.Start()
		retVal.GCode(paths)
	}
	if cfg.PrintStatistic {
		glog.Infoln(timeInfo(timeStamp), "exported:", retVal.Statistic())
	}
	return retVal, nil
}

// ToolpathParams selects the offset and fill stages, the zen garden wins
// over the vertical fill and the vertical over the horizontal
func ToolpathParams(cfg *configurator.Config) toolpath.Params {
	retVal := toolpath.Params{
		Radius:       cfg.Radius,
		FillRadius:   cfg.FillRadius,
		Invert:       cfg.Invert,
		SimpleInfill: cfg.SimpleInfill,
		DrawOutline:  cfg.DrawOutline,
		Interleaved:  cfg.Interleaved,
		ZenCap:       cfg.ZenCap,
	}
	switch {
	case cfg.ZenGarden:
		retVal.Fill = toolpath.FillZenGarden
	case cfg.Vertical:
		retVal.Fill = toolpath.FillVertical
	case cfg.Horizontal:
		retVal.Fill = toolpath.FillHorizontal
	}
	return retVal
}

// PlotterParams copies the machine settings, the source units are
// known after parsing only
func PlotterParams(cfg *configurator.Config) plotter.Params {
	return plotter.Params{
		Feed:          cfg.Feed,
		Seek:          cfg.Seek,
		FeedSet:       cfg.FeedSet,
		SeekSet:       cfg.SeekSet,
		ZSafe:         cfg.ZSafe,
		ZCut:          cfg.ZCut,
		Header:        cfg.Header,
		Footer:        cfg.Footer,
		Comments:      cfg.Comments,
		HumanReadable: cfg.HumanReadable,
		OutputUnits:   cfg.OutputUnits,
	}
}

// this function returns application info
func returnAppInfo(verbLevel int) string {
	var header = "Gerber to G-code translation tool\n"
	var version = "Version 0.2.0\n"
	var progDate = "19-Oct-2026\n"
	var retVal = "\n"
	switch verbLevel {
	case 3:
		retVal = header + version + progDate
	case 2:
		retVal = header + version
	case 1:
		retVal = header
	default:
		retVal = "\n"
	}
	return retVal
}

// printMemUsage outputs the current, total and OS memory being used. As well as the number
// of garbage collection cycles completed.
func printMemUsage(cfg *configurator.Config, header string) {
	if !cfg.PrintMemoryInfo {
		return
	}
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	glog.Infof("%s Alloc = %v KB\tTotalAlloc = %v KB\tSys = %v KB\tNumGC = %v", header,
		bToKb(memStats.Alloc), bToKb(memStats.TotalAlloc), bToKb(memStats.Sys), memStats.NumGC)
}

func bToKb(b uint64) uint64 {
	return b / 1024
}

/*
	"[23:59:04 +2.000] "
*/
func timeInfo(prev time.Time) string {
	now := time.Now()
	elapsed := time.Since(prev)
	out := "[" + now.Format("15:04:05") + " +"
	elapsedSec := float64(elapsed.Milliseconds()) / 1000.0
	out = out + strconv.FormatFloat(elapsedSec, 'f', 3, 64) + "]"
	return out
}
