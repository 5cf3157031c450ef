package pipeline

import(
	"context"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/fishflow/pkg/emath"
	"github.com/abworrall/fishflow/pkg/fishflow"
	"github.com/abworrall/fishflow/pkg/store"
)

func init() {
	fishflow.SetLogger(nil)
}

// writeMovingFrames writes n frames of a texture drifting right by one
// pixel per frame.
func writeMovingFrames(t *testing.T, dir string, n int) {
	t.Helper()
	for i:=0; i<n; i++ {
		img := image.NewGray(image.Rect(0, 0, 64, 48))
		for y:=0; y<48; y++ {
			for x:=0; x<64; x++ {
				fx := float64(x - i)
				v := 128 + 40*math.Sin(2*math.Pi*fx/32) + 40*math.Sin(2*math.Pi*float64(y)/24)
				img.Pix[y*img.Stride + x] = uint8(math.Floor(v + 0.5))
			}
		}
		require.NoError(t, emath.WritePNG(img, filepath.Join(dir, fmt.Sprintf("f%04d.png", i))))
	}
}

func testConfig(t *testing.T) fishflow.Config {
	in := t.TempDir()
	writeMovingFrames(t, in, 4)

	cfg := fishflow.NewConfig()
	cfg.Input.Path = in
	cfg.Output.Width = 8
	cfg.Output.Height = 6
	cfg.Calc.WindowSize = 7
	return cfg
}

func TestStorePath(t *testing.T) {
	cfg := fishflow.NewConfig()
	cfg.Input.Path = "/data/clip"
	assert.Equal(t, "/data/clip.sqlite", StorePath(cfg))

	cfg.Output.Video.Density = "plots"
	assert.Equal(t, "", StorePath(cfg))

	cfg.Output.File = "out.sqlite"
	assert.Equal(t, "out.sqlite", StorePath(cfg))
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	out := t.TempDir()
	cfg.Output.File = filepath.Join(out, "flow.sqlite")
	cfg.Output.Video.VelocityDensity = filepath.Join(out, "vd")

	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Steps)
	assert.Equal(t, 1, sum.Plots)
	assert.False(t, sum.Interrupted)
	assert.FileExists(t, filepath.Join(out, "vd", "frame-000001.png"))
	assert.FileExists(t, filepath.Join(out, "vd", "frame-000002.png"))

	st, err := store.Open(cfg.Output.File)
	require.NoError(t, err)
	defer st.Close()

	run := store.Run{ID: sum.RunID, Nx: 8, Ny: 6}
	n, err := st.FrameCount(run)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	vf, _, err := st.FrameVelocity(run, 1)
	require.NoError(t, err)
	v := vf.At(3, 3)
	assert.Greater(t, v.X, 5.0, "moving right at about 100/8 per frame")
	assert.InDelta(t, 0.0, v.Y, 3.0)
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.File = filepath.Join(t.TempDir(), "flow.sqlite")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := Run(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, sum.Interrupted)
	assert.Equal(t, 0, sum.Steps)
	assert.Contains(t, sum.String(), "interrupted")
}

func TestRunBadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Width = 0
	_, err := Run(context.Background(), cfg)
	assert.ErrorIs(t, err, fishflow.ErrInvalidConfiguration)
}
