package fishflow

import(
	"fmt"
	"image"

	"github.com/abworrall/fishflow/pkg/emath"
)

// A Calc turns frame pairs into Results, for one run. The background is
// fixed when the Calc is built; each Step is independent of the others.
type Calc struct {
	Config     Config
	Background *image.Gray
	Aligner    Aligner
}

// UniformBackground is the background to use when none is supplied.
func UniformBackground(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// NewCalc finalizes the config and checks it against the background,
// whose size is the crop size of the run.
func NewCalc(cfg Config, background *image.Gray) (*Calc, error) {
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("new calc: %w", err)
	}
	if background == nil {
		return nil, fmt.Errorf("new calc: no background: %w", ErrInvalidConfiguration)
	}

	b := background.Bounds()
	if b.Dx() < cfg.Output.Width || b.Dy() < cfg.Output.Height {
		return nil, fmt.Errorf("new calc: crop %dx%d smaller than grid %dx%d: %w", b.Dx(), b.Dy(),
			cfg.Output.Width, cfg.Output.Height, ErrInvalidConfiguration)
	}

	aligner, err := NewAligner(cfg.Calc.Alignment)
	if err != nil {
		return nil, fmt.Errorf("new calc: %w", err)
	}

	c := Calc{
		Config:     cfg,
		Background: emath.ToGray(background),
		Aligner:    aligner,
	}

	c.Config.LogAt(Normal, "fishflow: crop %dx%d, grid %dx%d, window %d, scale %.1f, alignment %s\n",
		b.Dx(), b.Dy(), cfg.Output.Width, cfg.Output.Height, cfg.Calc.WindowSize, cfg.Calc.Scale, aligner.Name())

	return &c, nil
}

func (c *Calc)checkSize(name string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%s frame missing: %w", name, ErrDimensionMismatch)
	}
	if got, want := img.Bounds().Size(), c.Background.Bounds().Size(); got != want {
		return fmt.Errorf("%s frame is %v, background is %v: %w", name, got, want, ErrDimensionMismatch)
	}
	return nil
}

// Step computes the Result for one pair of frames; step numbers the
// Result, and is 0 for the first pair of a run. Step only reads the Calc,
// so it can be called from several goroutines.
func (c *Calc)Step(step int, frames FramePair) (Result, error) {
	if err := c.checkSize("old", frames.Old); err != nil {
		return Result{}, fmt.Errorf("step %d: %w", step, err)
	}
	if err := c.checkSize("current", frames.Current); err != nil {
		return Result{}, fmt.Errorf("step %d: %w", step, err)
	}

	cfg := c.Config
	old := Normalise(emath.ToGray(frames.Old), c.Background)
	cur := Normalise(emath.ToGray(frames.Current), c.Background)

	r := Result{
		Frame:     step,
		Original:  cloneImage(frames.Current),
		Density:   DensityMap(cur),
		Mask:      DensityMask(cur, cfg.Output.Width, cfg.Output.Height),
		Alignment: c.Aligner.Align(old, cur),
	}

	tensor := structureTensor(old, cur, cfg.Calc.WindowSize)
	r.Velocity = velocityField(tensor, cfg.Output.Width, cfg.Output.Height, cfg.Calc.Scale,
		cfg.Calc.MaxCondition, cfg.Calc.Workers)

	if cfg.Verbosity >= High {
		Logf("%s %s\n", r, velocityStats(r.Velocity))
	}
	if cfg.Verbosity >= Debug {
		Logf("density histogram: %v\n", densityHistogram(r.Density))
		if cfg.Calc.DumpDir != "" {
			if err := dumpStep(cfg.Calc.DumpDir, r.Frame, tensor, r.Density); err != nil {
				Logf("dump step %d: %v\n", r.Frame, err)
			}
		}
	}

	return r, nil
}
