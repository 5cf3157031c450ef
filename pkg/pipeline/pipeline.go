package pipeline

import(
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/abworrall/fishflow/pkg/fishflow"
	"github.com/abworrall/fishflow/pkg/framesrc"
	"github.com/abworrall/fishflow/pkg/render"
	"github.com/abworrall/fishflow/pkg/store"
)

// A Summary says what a run did.
type Summary struct {
	Steps       int
	RunID       string
	StorePath   string
	Plots       int
	Interrupted bool
}

func (s Summary)String() string {
	str := fmt.Sprintf("%d steps, %d plots", s.Steps, s.Plots)
	if s.StorePath != "" {
		str += fmt.Sprintf(", run %s in %s", s.RunID, s.StorePath)
	}
	if s.Interrupted {
		str += " (interrupted)"
	}
	return str
}

// StorePath is where results get written: output.file if set, else a
// default next to the input, but only when there are no plots.
func StorePath(cfg fishflow.Config) string {
	if cfg.Output.File != "" {
		return cfg.Output.File
	}
	v := cfg.Output.Video
	if v == (fishflow.VideoOutput{}) {
		return store.DefaultPath(cfg.Input.Path)
	}
	return ""
}

// Run reads the input, computes a Result for every pair of frames, and
// writes them to the store and the plots. Cancelling ctx stops it
// between frames; everything written so far is kept.
func Run(ctx context.Context, cfg fishflow.Config) (Summary, error) {
	sum := Summary{}
	if err := cfg.Finalize(); err != nil {
		return sum, err
	}

	src, err := framesrc.Open(cfg)
	if err != nil {
		return sum, err
	}
	cfg.LogAt(fishflow.Normal, "input: %s\n", src.Info())

	if bgOut := cfg.Output.Background; bgOut.File != "" {
		if err := src.ComputeBackground(bgOut.File, bgOut.Cropped); err != nil {
			return sum, err
		}
	}

	bg, err := src.Background()
	if err != nil {
		return sum, err
	}

	calc, err := fishflow.NewCalc(cfg, bg)
	if err != nil {
		return sum, err
	}

	plots, err := render.New(cfg)
	if err != nil {
		return sum, err
	}
	sum.Plots = len(plots.Plots)

	var st *store.Store
	var run store.Run
	if sum.StorePath = StorePath(cfg); sum.StorePath != "" {
		if st, err = store.Open(sum.StorePath); err != nil {
			return sum, err
		}
		defer st.Close()
		if run, err = st.NewRun(calc.Config, src.Crop); err != nil {
			return sum, err
		}
		sum.RunID = run.ID
	}

	for {
		select {
		case <-ctx.Done():
			sum.Interrupted = true
			cfg.LogAt(fishflow.Low, "stopping after %d steps: %v\n", sum.Steps, ctx.Err())
			return sum, nil
		default:
		}

		pair, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return sum, err
		}

		res, err := calc.Step(pair.Step, pair.FramePair)
		if err != nil {
			return sum, fmt.Errorf("frame %d '%s': %w", pair.Index, pair.Filename, err)
		}

		if st != nil {
			if err := st.WriteResult(run, res, pair.Index, pair.Time); err != nil {
				return sum, err
			}
		}
		if err := plots.Render(res); err != nil {
			return sum, err
		}

		sum.Steps++
	}

	return sum, nil
}
