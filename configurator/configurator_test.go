package configurator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	. "github.com/VasiliyTurchenko/gerber2ngc/gerberbasetypes"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	v := newViper()
	cfg, err := Load(v, nil)
	require.NoError(t, err)
	require.Equal(t, 10.0, cfg.Feed)
	require.Equal(t, 100.0, cfg.Seek)
	require.False(t, cfg.FeedSet)
	require.False(t, cfg.SeekSet)
	require.Equal(t, 0.1, cfg.ZSafe)
	require.Equal(t, -0.05, cfg.ZCut)
	require.Equal(t, -1.0, cfg.FillRadius)
	require.Equal(t, 8, cfg.MinSegments)
	require.Equal(t, 64, cfg.MaxDepth)
	require.Equal(t, 400, cfg.ZenCap)
	require.True(t, cfg.DrawOutline)
	require.False(t, cfg.Interleaved)
	require.True(t, cfg.Comments)
	require.Equal(t, Units(0), cfg.OutputUnits)
	require.Equal(t, 0.1, cfg.SegmentLengthFor(UnitsMM))
	require.Equal(t, 0.004, cfg.SegmentLengthFor(UnitsInch))
	require.Contains(t, DiagnosticAllCfgPrint(v), "gcode.zsafe : 0.1")
}

func TestLoad_Flags(t *testing.T) {
	v := newViper()
	fs := NewFlagSet("gerber2ngc", v)
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"-r", "0.2", "-G", "--feed", "20", "-M", "--interleaved", "--height-file", "surface.txt", "board.gbr"}))

	cfg, err := Load(v, fs)
	require.NoError(t, err)
	require.Equal(t, 0.2, cfg.Radius)
	require.True(t, cfg.ZenGarden)
	require.Equal(t, 20.0, cfg.Feed)
	require.True(t, cfg.FeedSet)
	require.False(t, cfg.SeekSet)
	require.Equal(t, UnitsMM, cfg.OutputUnits)
	require.Equal(t, "surface.txt", cfg.HeightMapFile)
	require.True(t, cfg.Interleaved)
	require.Equal(t, []string{"board.gbr"}, fs.Args())
	// untouched flags keep the defaults
	require.Equal(t, 100.0, cfg.Seek)
	require.Equal(t, 0.1, cfg.ZSafe)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	toml := "[gcode]\nSeek = 50.0\nHumanReadable = true\n[tool]\nRadius = 0.1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	v := newViper()
	v.AddConfigPath(dir)
	require.NoError(t, ProcessConfigFile(v))
	cfg, err := Load(v, nil)
	require.NoError(t, err)
	require.Equal(t, 50.0, cfg.Seek)
	require.True(t, cfg.SeekSet)
	require.False(t, cfg.FeedSet)
	require.True(t, cfg.HumanReadable)
	require.Equal(t, 0.1, cfg.Radius)

	v = newViper()
	v.SetConfigName("missing")
	v.AddConfigPath(dir)
	require.Error(t, ProcessConfigFile(v))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]interface{}
		want error
	}{
		{"fill without radius", map[string]interface{}{CfgFillHorizontal: true}, ErrFillRadius},
		{"infill with radius", map[string]interface{}{CfgFillSimpleInfill: true, CfgToolRadius: 0.1}, ErrInfillRadius},
		{"zen infill", map[string]interface{}{CfgFillSimpleInfill: true, CfgFillZenGarden: true, CfgToolFillRadius: 0.1}, ErrInfillZen},
		{"both units", map[string]interface{}{CfgOutputMetric: true, CfgOutputInches: true}, ErrOutputUnits},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.name, " ", "_"), func(t *testing.T) {
			v := newViper()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v, nil)
			require.ErrorIs(t, err, tt.want)
		})
	}

	// the fill radius alone is enough
	v := newViper()
	v.Set(CfgFillVertical, true)
	v.Set(CfgToolFillRadius, 0.2)
	_, err := Load(v, nil)
	require.NoError(t, err)
}
