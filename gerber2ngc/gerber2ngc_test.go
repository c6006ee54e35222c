package gerber2ngc

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/VasiliyTurchenko/gerber2ngc/configurator"
	"github.com/VasiliyTurchenko/gerber2ngc/toolpath"
)

func TestMain(m *testing.M) {
	_ = flag.Set("logtostderr", "true")
	_ = flag.Set("stderrthreshold", "ERROR")
	os.Exit(m.Run())
}

const singlePad = "%FSLAX26Y26*%\n%MOMM*%\n%ADD10C,1*%\nD10*\nX0Y0D03*\nM02*\n"

const board = "%FSLAX26Y26*%\n%MOMM*%\n%ADD10C,0.5*%\n%ADD11R,2X2*%\n" +
	"D11*\nX0Y0D03*\nX10000000Y0D03*\nD10*\nX0Y0D02*\nG01X10000000Y0D01*\nM02*\n"

func defaultConfig(t *testing.T, set map[string]interface{}) *configurator.Config {
	t.Helper()
	v := viper.New()
	configurator.SetDefaults(v)
	for k, val := range set {
		v.Set(k, val)
	}
	cfg, err := configurator.Load(v, nil)
	require.NoError(t, err)
	cfg.PrintMemoryInfo = true
	return cfg
}

func TestConvert_SinglePad(t *testing.T) {
	cfg := defaultConfig(t, map[string]interface{}{configurator.CfgOutputPolygon: true})
	out, err := Convert([]byte(singlePad), cfg)
	require.NoError(t, err)
	text := out.String()
	require.Equal(t, 1, strings.Count(text, "( path "))
	lines := strings.Split(strings.TrimSpace(text), "\n")
	// the comment, at least 8 vertices and the first one repeated
	require.GreaterOrEqual(t, len(lines), 1+8+1)
	require.Equal(t, lines[1], lines[len(lines)-1])
}

func TestConvert_GCode(t *testing.T) {
	cfg := defaultConfig(t, map[string]interface{}{
		configurator.CfgToolRadius:    0.1,
		configurator.CfgFillZenGarden: true,
		configurator.CfgOutputInches:  true,
	})
	out, err := Convert([]byte(board), cfg)
	require.NoError(t, err)
	text := out.String()
	require.True(t, strings.HasPrefix(text, "G20\nG90\n"))
	require.Contains(t, text, "( feed 10 seek 100 zsafe 0.100000, zcut -0.050000 )")
	require.Contains(t, text, "( path 0 )")
	require.NotContains(t, text, " F")
	t.Log(out.Statistic())
}

func TestConvert_Errors(t *testing.T) {
	cfg := defaultConfig(t, nil)
	_, err := Convert([]byte("%MOMM*%\nM02*\n"), cfg)
	require.Error(t, err)

	_, err = Convert([]byte("%FSLAX26Y26*%\n%MOMM*%\nD10*\nX0Y0D03*\nM02*\n"), cfg)
	require.Error(t, err)

	cfg.HeightMapFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = Convert([]byte(singlePad), cfg)
	require.Error(t, err)

	cfg = defaultConfig(t, map[string]interface{}{
		configurator.CfgToolFillRadius:   0.1,
		configurator.CfgFillSimpleInfill: true,
	})
	_, err = Convert([]byte(board), cfg)
	require.ErrorIs(t, err, toolpath.ErrNoScanDirection)
}

func TestToolpathParams(t *testing.T) {
	cfg := defaultConfig(t, map[string]interface{}{
		configurator.CfgToolRadius:      0.1,
		configurator.CfgFillVertical:    true,
		configurator.CfgFillHorizontal:  true,
		configurator.CfgFillInvert:      true,
		configurator.CfgFillInterleaved: true,
	})
	prm := ToolpathParams(cfg)
	require.Equal(t, toolpath.FillVertical, prm.Fill)
	require.True(t, prm.Invert)
	require.True(t, prm.Interleaved)
	require.Equal(t, 400, prm.ZenCap)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "board.gbr")
	out := filepath.Join(dir, "board.ngc")
	surface := filepath.Join(dir, "surface.txt")
	require.NoError(t, os.WriteFile(in, []byte(board), 0o644))
	require.NoError(t, os.WriteFile(surface, []byte("-5 -5 0\n15 -5 0.01\n-5 5 0\n15 5 0.01\n"), 0o644))

	require.Equal(t, 0, run("gerber2ngc", []string{"-r", "0.1", "-H", "--feed", "50", "--height-file", surface, "-o", out, in}))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(got), "G21\nG90\n"))
	require.Contains(t, string(got), " F50.000000\n")

	require.Equal(t, 1, run("gerber2ngc", []string{"-o", out}))
	require.Equal(t, 1, run("gerber2ngc", []string{filepath.Join(dir, "missing.gbr")}))
	require.Equal(t, 2, run("gerber2ngc", []string{"--no-such-flag"}))
}

func TestReturnAppInfo(t *testing.T) {
	require.True(t, strings.HasPrefix(returnAppInfo(3), "Gerber to G-code"))
	require.Equal(t, "\n", returnAppInfo(0))
	require.True(t, strings.HasPrefix(timeInfo(timeStamp), "["))
}
