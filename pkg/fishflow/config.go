package fishflow

import(
	"fmt"
	"io/ioutil"
	"log"
	"math"
	"runtime"

	"gopkg.in/yaml.v2"
)

/* Example config file ...

verbosity: Normal
input:
  path: /data/school-0412/
  background: /data/school-0412-bg.png
frame:
  from: 1
  count: 500
crop:
  xmin: 200
  ymin: 100
  width: 1024
  height: 512
calc:
  scale: 100
  window_size: 45
output:
  width: 128
  height: 64
  file: school-0412.sqlite
  video:
    velocity+density: plots/veldens

*/

type InputConfig struct {
	Path       string `yaml:"path"`       // directory of frames, or a single image file
	Background string `yaml:"background"` // optional; uniform 255 if empty
}

// FrameConfig picks frames out of the input sequence. Zero means unset.
type FrameConfig struct {
	From  int `yaml:"from"`
	To    int `yaml:"to"`
	Count int `yaml:"count"`
	By    int `yaml:"by"`
}

// CropConfig selects the part of each frame that gets processed. Zero
// means unset; see framesrc.ResolveCrop for how the fields combine.
type CropConfig struct {
	XMin   int `yaml:"xmin"`
	YMin   int `yaml:"ymin"`
	XMax   int `yaml:"xmax"`
	YMax   int `yaml:"ymax"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CalcConfig struct {
	Scale        float64 `yaml:"scale"`
	WindowSize   int     `yaml:"window_size"`
	MaxCondition float64 `yaml:"max_condition"` // above this, a cell's tensor counts as singular
	Alignment    string  `yaml:"alignment"`
	Workers      int     `yaml:"workers"`
	DumpDir      string  `yaml:"dump_dir"`      // where Debug verbosity writes tensor maps
}

type BackgroundOutput struct {
	File    string `yaml:"file"`
	Cropped bool   `yaml:"cropped"`
}

// VideoOutput names a directory per plot type; empty means don't plot it.
type VideoOutput struct {
	Velocity                string `yaml:"velocity"`
	Density                 string `yaml:"density"`
	VelocityOriginal        string `yaml:"velocity+original"`
	DensityOriginal         string `yaml:"density+original"`
	VelocityDensity         string `yaml:"velocity+density"`
	VelocityDensityOriginal string `yaml:"velocity+density+original"`
}

type OutputConfig struct {
	Width      int              `yaml:"width"`  // grid columns, nx
	Height     int              `yaml:"height"` // grid rows, ny
	File       string           `yaml:"file"`
	Background BackgroundOutput `yaml:"background"`
	Video      VideoOutput      `yaml:"video"`
}

type ArrowStyle struct {
	Thickness float64 `yaml:"thickness"`
	HeadSize  float64 `yaml:"head_size"`
	Overlap   bool    `yaml:"overlap"`
}

type PlotStyle struct {
	Arrow ArrowStyle `yaml:"arrow"`
}

type PlotConfig struct {
	Style PlotStyle `yaml:"style"`
}

type Config struct {
	Verbosity Verbosity    `yaml:"verbosity"`
	Input     InputConfig  `yaml:"input"`
	Frame     FrameConfig  `yaml:"frame"`
	Crop      CropConfig   `yaml:"crop"`
	Calc      CalcConfig   `yaml:"calc"`
	Output    OutputConfig `yaml:"output"`
	Plot      PlotConfig   `yaml:"plot"`
}

func NewConfig() Config {
	return Config{
		Frame: FrameConfig{From: 1, By: 1},
		Calc: CalcConfig{
			Scale:        100,
			WindowSize:   45,
			MaxCondition: 1e8,
			Alignment:    "none",
		},
		Output: OutputConfig{Width: 128, Height: 64},
		Plot: PlotConfig{
			Style: PlotStyle{
				Arrow: ArrowStyle{Thickness: 2, HeadSize: 4, Overlap: true},
			},
		},
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

// LoadConfig reads a yaml file over the defaults. It isn't finalized,
// so that command line flags can still be applied.
func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return NewConfig(), fmt.Errorf("read '%s': %v", filename, err)
	}
	c, err := newConfigFromYaml(contents)
	if err != nil {
		return c, fmt.Errorf("parse '%s': %v", filename, err)
	}
	return c, nil
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// Finalize fills in derived values and does the sanity checks. It is
// safe to call more than once.
func (c *Config)Finalize() error {
	c.Calc.WindowSize |= 1

	if c.Calc.Alignment == "" {
		c.Calc.Alignment = "none"
	}
	if c.Calc.MaxCondition == 0 {
		c.Calc.MaxCondition = 1e8
	}
	if c.Calc.Workers <= 0 {
		c.Calc.Workers = runtime.NumCPU()
	}

	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("output grid %dx%d: %w", c.Output.Width, c.Output.Height, ErrInvalidConfiguration)
	}
	if c.Calc.WindowSize < 1 {
		return fmt.Errorf("window_size %d: %w", c.Calc.WindowSize, ErrInvalidConfiguration)
	}
	if c.Calc.Scale <= 0 || math.IsInf(c.Calc.Scale, 0) || math.IsNaN(c.Calc.Scale) {
		return fmt.Errorf("scale %v: %w", c.Calc.Scale, ErrInvalidConfiguration)
	}
	if c.Calc.MaxCondition < 1 || math.IsNaN(c.Calc.MaxCondition) {
		return fmt.Errorf("max_condition %v: %w", c.Calc.MaxCondition, ErrInvalidConfiguration)
	}
	if _, err := NewAligner(c.Calc.Alignment); err != nil {
		return err
	}

	return nil
}
