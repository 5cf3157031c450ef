package render

import(
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/abworrall/fishflow/pkg/emath"
	"github.com/abworrall/fishflow/pkg/fishflow"
)

// A PlotType is a set of layers to draw, bottom to top.
type PlotType int

const(
	Original PlotType = 1 << iota  // the frame itself; other layers are blended over it
	Density
	Velocity                       // arrows, only in cells the mask says are occupied
)

func (pt PlotType)String() string {
	str := ""
	for _, f := range []struct{ bit PlotType; name string }{
		{Velocity, "velocity"}, {Density, "density"}, {Original, "original"},
	} {
		if pt&f.bit != 0 {
			if str != "" {
				str += "+"
			}
			str += f.name
		}
	}
	return str
}

// A Plot is one output image sequence.
type Plot struct {
	Type PlotType
	Dir  string
}

type Renderer struct {
	Config fishflow.Config
	Plots  []Plot
}

// New sets up a plot for every video configured in cfg.Output.Video,
// creating their directories.
func New(cfg fishflow.Config) (*Renderer, error) {
	v := cfg.Output.Video
	r := Renderer{Config: cfg}

	for _, p := range []Plot{
		{Velocity, v.Velocity},
		{Density, v.Density},
		{Original|Velocity, v.VelocityOriginal},
		{Original|Density, v.DensityOriginal},
		{Velocity|Density, v.VelocityDensity},
		{Velocity|Density|Original, v.VelocityDensityOriginal},
	} {
		if p.Dir == "" {
			continue
		}
		if err := os.MkdirAll(p.Dir, 0755); err != nil {
			return nil, fmt.Errorf("plot %s: %v", p.Type, err)
		}
		r.Plots = append(r.Plots, p)
	}

	return &r, nil
}

// Render draws every plot for one result, and writes each into its dir
// as frame-NNNNNN.png, numbered from 1.
func (r *Renderer)Render(res fishflow.Result) error {
	for _, p := range r.Plots {
		img := r.Compose(p.Type, res)
		filename := filepath.Join(p.Dir, fmt.Sprintf("frame-%06d.png", res.Frame+1))
		if err := emath.WritePNG(img, filename); err != nil {
			return fmt.Errorf("render %s: %v", p.Type, err)
		}
	}
	return nil
}

// Compose builds the image for one plot type. It is the size of the crop.
func (r *Renderer)Compose(pt PlotType, res fishflow.Result) *image.RGBA {
	bounds := res.Density.Bounds()
	img := image.NewRGBA(bounds)
	transparent := pt&Original != 0

	if transparent {
		draw.Draw(img, bounds, res.Original, res.Original.Bounds().Min, draw.Src)
	} else {
		draw.Draw(img, bounds, image.Black, image.Point{}, draw.Src)
	}

	if pt&Density != 0 {
		plotDensity(img, res.Density, transparent)
	}

	if pt&Velocity != 0 {
		r.plotVelocity(img, res.Velocity, res.Mask)
	}

	return img
}

// Colorize maps a density value onto a jet-like scale, from dark blue
// for empty through green to dark red for crowded.
func Colorize(c uint8) color.RGBA {
	v, m := int(c), 255
	switch v * 8 / m {
	case 0:    return color.RGBA{0, 0, uint8(4*v + m/2), 0xff}
	case 1, 2: return color.RGBA{0, uint8(4*v - m/2), uint8(m), 0xff}
	case 3, 4: return color.RGBA{uint8(4*v - 3*m/2), uint8(m), uint8(5*m/2 - 4*v), 0xff}
	case 5, 6: return color.RGBA{uint8(m), uint8(7*m/2 - 4*v), 0, 0xff}
	default:   return color.RGBA{uint8(9*m/2 - 4*v), 0, 0, 0xff}
	}
}

func plotDensity(img *image.RGBA, density *image.Gray, transparent bool) {
	b := density.Bounds()
	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			c := Colorize(density.Pix[y*density.Stride + x])
			if transparent {
				under, _ := colorful.MakeColor(img.RGBAAt(x, y))
				over, _ := colorful.MakeColor(c)
				cr, cg, cb := under.BlendRgb(over, 0.5).RGB255()
				c = color.RGBA{cr, cg, cb, 0xff}
			}
			img.SetRGBA(x, y, c)
		}
	}
}

// plotVelocity draws an arrow for every other cell in each direction,
// starting from the second, skipping cells outside the mask; arrows start
// at the cell's sample point.
func (r *Renderer)plotVelocity(img *image.RGBA, vf fishflow.VelocityField, mask fishflow.Mask) {
	style := r.Config.Plot.Style.Arrow
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	nx, ny := vf.Nx &^ 1, vf.Ny &^ 1
	if nx == 0 || ny == 0 {
		return
	}

	dc := gg.NewContextForRGBA(img)
	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(style.Thickness)

	for i:=0; i<ny/2; i++ {
		for j:=0; j<nx/2; j++ {
			ci, cj := 2*i+1, 2*j+1
			if !mask.At(ci, cj) {
				continue
			}

			x1, y1 := w*cj/nx, h*ci/ny
			v := vf.At(ci, cj)
			vx, vy := emath.RoundHalfAway(v.X), emath.RoundHalfAway(v.Y)
			if !style.Overlap {
				vx = emath.Clamp(vx, -w/nx, w/nx)
				vy = emath.Clamp(vy, -h/ny, h/ny)
			}

			drawArrow(dc, x1, y1, x1+vx, y1+vy, style.HeadSize)
		}
	}
}

func drawArrow(dc *gg.Context, x1, y1, x2, y2 int, headSize float64) {
	dc.DrawLine(float64(x1), float64(y1), float64(x2), float64(y2))
	dc.Stroke()
	if x1 == x2 && y1 == y2 {
		return
	}

	theta := math.Atan2(float64(y2-y1), float64(x2-x1))
	for _, phi := range []float64{theta + math.Pi/4, theta - math.Pi/4} {
		hx := x2 - emath.RoundHalfAway(headSize*math.Cos(phi))
		hy := y2 - emath.RoundHalfAway(headSize*math.Sin(phi))
		dc.DrawLine(float64(hx), float64(hy), float64(x2), float64(y2))
		dc.Stroke()
	}
}
