package heightmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const samples = `# measured at 20 C
0 0 0.0
10 0 0.1   # right
0 10 0.2
10 10 0.3
`

func TestRead(t *testing.T) {
	hm, err := Read(strings.NewReader(samples))
	require.NoError(t, err)
	require.Len(t, hm.Samples, 4)
	require.Equal(t, Sample{10, 0, 0.1}, hm.Samples[1])
	t.Log(hm)

	_, err = Read(strings.NewReader("# nothing\n"))
	require.ErrorIs(t, err, ErrEmpty)
	_, err = Read(strings.NewReader("1 2 3 4"))
	require.ErrorIs(t, err, ErrIncomplete)
	_, err = Read(strings.NewReader("1 2 z"))
	require.Error(t, err)
}

func TestZ(t *testing.T) {
	hm, err := Read(strings.NewReader(samples))
	require.NoError(t, err)

	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"exact hit", 10, 0, 0.1},
		{"center", 5, 5, 0.15},
		{"edge middle", 5, 0, (0.0+0.1)*5/12 + (0.2+0.3)/12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, hm.Z(tt.x, tt.y), 1e-12)
		})
	}

	// close to a sample the value tends to it
	require.InDelta(t, 0.3, hm.Z(10-1e-4, 10), 1e-6)
}

func TestLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "surface.txt")
	require.NoError(t, os.WriteFile(fn, []byte(samples), 0o644))
	hm, err := Load(fn)
	require.NoError(t, err)
	require.Len(t, hm.Samples, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
