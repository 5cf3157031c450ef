package render

import(
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/fishflow/pkg/fishflow"
)

// testResult is a 40x40 crop on a 4x4 grid, every cell occupied and
// moving 10 pixels to the right.
func testResult() fishflow.Result {
	orig := image.NewGray(image.Rect(0, 0, 40, 40))
	density := image.NewGray(image.Rect(0, 0, 40, 40))
	for i := range orig.Pix {
		orig.Pix[i] = 100
		density.Pix[i] = 255
	}

	vf := fishflow.NewVelocityField(4, 4)
	for n := range vf.V {
		vf.V[n] = fishflow.Vec2{X: 10}
		vf.Solved[n] = true
	}

	mask := fishflow.NewMask(4, 4)
	for n := range mask.Valid {
		mask.Valid[n] = true
	}

	return fishflow.Result{
		Original: orig,
		Density:  density,
		Mask:     mask,
		Velocity: vf,
	}
}

func isRed(c color.RGBA) bool   { return c.R > 200 && c.G < 60 && c.B < 60 }
func isBlack(c color.RGBA) bool { return c.R == 0 && c.G == 0 && c.B == 0 }

func countRed(img *image.RGBA) int {
	n := 0
	b := img.Bounds()
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			if isRed(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func TestColorize(t *testing.T) {
	assert.Equal(t, color.RGBA{0, 0, 127, 255}, Colorize(0))
	assert.Equal(t, color.RGBA{0, 1, 255, 255}, Colorize(32))
	assert.Equal(t, color.RGBA{2, 255, 253, 255}, Colorize(96))
	assert.Equal(t, color.RGBA{255, 252, 0, 255}, Colorize(160))
	assert.Equal(t, color.RGBA{127, 0, 0, 255}, Colorize(255))
}

func TestPlotTypeString(t *testing.T) {
	assert.Equal(t, "velocity+original", (Original|Velocity).String())
	assert.Equal(t, "velocity+density+original", (Velocity|Density|Original).String())
	assert.Equal(t, "density", Density.String())
}

func TestComposeVelocity(t *testing.T) {
	r := Renderer{Config: fishflow.NewConfig()}
	res := testResult()

	img := r.Compose(Velocity, res)
	// the arrow from cell (1,1) starts at (10,10) and ends at (20,10)
	assert.True(t, isRed(img.RGBAAt(15, 10)), "%v", img.RGBAAt(15, 10))
	assert.True(t, isRed(img.RGBAAt(35, 30)), "%v", img.RGBAAt(35, 30))
	assert.True(t, isBlack(img.RGBAAt(5, 25)))

	// only cell (1,1) is occupied
	res.Mask = fishflow.NewMask(4, 4)
	res.Mask.Valid[1*4 + 1] = true
	img = r.Compose(Velocity, res)
	assert.True(t, isRed(img.RGBAAt(15, 10)))
	assert.True(t, isBlack(img.RGBAAt(35, 30)))
}

func TestVelocityPlotsFollowMask(t *testing.T) {
	r := Renderer{Config: fishflow.NewConfig()}

	for _, pt := range []PlotType{Velocity, Original|Velocity, Velocity|Density, Velocity|Density|Original} {
		t.Run(pt.String(), func(t *testing.T) {
			res := testResult()
			assert.Greater(t, countRed(r.Compose(pt, res)), 0)

			res.Mask = fishflow.NewMask(4, 4)
			assert.Equal(t, 0, countRed(r.Compose(pt, res)))
		})
	}
}

func TestComposeNoOverlap(t *testing.T) {
	cfg := fishflow.NewConfig()
	cfg.Plot.Style.Arrow.Overlap = false
	r := Renderer{Config: cfg}
	res := testResult()
	for n := range res.Velocity.V {
		res.Velocity.V[n].X = 30
	}

	// arrows are clipped to one cell, 10 pixels
	img := r.Compose(Velocity, res)
	assert.True(t, isRed(img.RGBAAt(15, 10)))
	assert.True(t, isBlack(img.RGBAAt(25, 10)))

	r.Config.Plot.Style.Arrow.Overlap = true
	img = r.Compose(Velocity, res)
	assert.True(t, isRed(img.RGBAAt(25, 10)))
}

func TestComposeDensity(t *testing.T) {
	r := Renderer{Config: fishflow.NewConfig()}
	res := testResult()

	img := r.Compose(Density, res)
	assert.Equal(t, Colorize(255), img.RGBAAt(5, 5))

	// half the original gray (100), half dark red
	img = r.Compose(Density|Original, res)
	c := img.RGBAAt(5, 5)
	assert.InDelta(t, 114, int(c.R), 2)
	assert.InDelta(t, 50, int(c.G), 2)
	assert.InDelta(t, 50, int(c.B), 2)
}

func TestComposeOriginal(t *testing.T) {
	r := Renderer{Config: fishflow.NewConfig()}
	img := r.Compose(Original, testResult())
	assert.Equal(t, color.RGBA{100, 100, 100, 255}, img.RGBAAt(0, 0))
}

func TestRenderWritesFrames(t *testing.T) {
	dir := t.TempDir()
	cfg := fishflow.NewConfig()
	cfg.Output.Video.VelocityOriginal = filepath.Join(dir, "vo")
	cfg.Output.Video.Density = filepath.Join(dir, "d")

	r, err := New(cfg)
	require.NoError(t, err)
	require.Len(t, r.Plots, 2)
	assert.Equal(t, Density, r.Plots[0].Type)
	assert.Equal(t, Original|Velocity, r.Plots[1].Type)

	res := testResult()
	res.Frame = 6
	require.NoError(t, r.Render(res))
	assert.FileExists(t, filepath.Join(dir, "vo", "frame-000007.png"))
	assert.FileExists(t, filepath.Join(dir, "d", "frame-000007.png"))
}
