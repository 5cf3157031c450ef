package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
	"gonum.org/v1/gonum/floats"
)

// A FloatGrid is a grid of floats, with some operations. Rows are
// stored contiguously; (x,y) is (column,row).
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// FloatGridFromGray copies the 8 bit pixels of img into a new grid. The
// grid origin is img.Bounds().Min.
func FloatGridFromGray(img *image.Gray) FloatGrid {
	b := img.Bounds()
	fg := NewFloatGrid(b.Dx(), b.Dy())
	for y:=0; y<b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride + b.Dx()]
		for x, v := range row {
			fg.values[y*fg.stride + x] = float64(v)
		}
	}
	return fg
}

func (g1 *FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Values() []float64       { return fg.values }
func (fg *FloatGrid)Bounds() image.Rectangle { return image.Rect(0, 0, fg.Dx(), fg.Dy()) }

func (fg *FloatGrid)Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (g1 *FloatGrid)Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values:make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

// Sub returns g1 - g2, elementwise. The grids must be the same size.
func (g1 *FloatGrid)Sub(g2 *FloatGrid) FloatGrid {
	g3 := g1.NewFromThis()
	floats.SubTo(g3.values, g1.values, g2.values)
	return g3
}

// Add returns g1 + g2, elementwise.
func (g1 *FloatGrid)Add(g2 *FloatGrid) FloatGrid {
	g3 := g1.NewFromThis()
	floats.AddTo(g3.values, g1.values, g2.values)
	return g3
}

// Mul returns the elementwise product of g1 and g2.
func (g1 *FloatGrid)Mul(g2 *FloatGrid) FloatGrid {
	g3 := g1.NewFromThis()
	floats.MulTo(g3.values, g1.values, g2.values)
	return g3
}

// Scale multiplies every value in place.
func (fg *FloatGrid)Scale(f float64) { floats.Scale(f, fg.values) }

// GaussianBlur smooths the grid with a separable ksize x ksize Gaussian,
// with sigma derived from ksize (see GaussianKernel). Borders are
// reflected without repeating the edge value (...cba|abcd|dcb...).
func (g1 FloatGrid)GaussianBlur(ksize int) FloatGrid {
	kernel := GaussianKernel(ksize, 0)
	width := g1.Dx()
	height := g1.Dy()
	g2 := g1.NewFromThis()
	T  := g1.NewFromThis()
	r := len(kernel) / 2

	//--- X blur, build up in T
	for y:=0; y<height; y++ {
		row := g1.values[y*width : (y+1)*width]
		for x:=0; x<width; x++ {
			t := 0.0
			for k:=-r; k<=r; k++ {
				t += kernel[k+r] * row[Reflect101(x+k, width)]
			}
			T.values[y*width + x] = t
		}
	}

	//--- Y blur, read from T and generate output
	for y:=0; y<height; y++ {
		out := g2.values[y*width : (y+1)*width]
		for k:=-r; k<=r; k++ {
			w := kernel[k+r]
			src := T.values[Reflect101(y+k, height)*width:]
			for x:=0; x<width; x++ {
				out[x] += w * src[x]
			}
		}
	}

	return g2
}

// Sobel returns the unnormalised 3x3 Sobel derivative of the grid,
// along x (horizontal) or along y. A unit slope comes out as 8.
func (H *FloatGrid)Sobel(alongX bool) FloatGrid {
	G := H.NewFromThis()
	width := H.Dx()
	height := H.Dy()

	for y:=0; y<height; y++ {
		n := Reflect101(y-1, height)
		s := Reflect101(y+1, height)
		for x:=0; x<width; x++ {
			w := Reflect101(x-1, width)
			e := Reflect101(x+1, width)

			var g float64
			if alongX {
				g  =     (H.Get(e,n) - H.Get(w,n))
				g += 2 * (H.Get(e,y) - H.Get(w,y))
				g +=     (H.Get(e,s) - H.Get(w,s))
			} else {
				g  =     (H.Get(w,s) - H.Get(w,n))
				g += 2 * (H.Get(x,s) - H.Get(x,n))
				g +=     (H.Get(e,s) - H.Get(e,n))
			}
			G.Set(x, y, g)
		}
	}

	return G
}

// ToGray rounds each value to the nearest integer (ties to even) and
// saturates it into [0,255].
func (fg *FloatGrid)ToGray() *image.Gray {
	img := image.NewGray(fg.Bounds())
	for i, v := range fg.values {
		img.Pix[i] = SaturateU8(v)
	}
	return img
}

func SaturateU8(v float64) uint8 {
	v = math.RoundToEven(v)
	if v < 0 {
		return 0
	} else if v > 255 {
		return 255
	}
	return uint8(v)
}

func (fg *FloatGrid)Stats() string {
	if len(fg.values) == 0 {
		return "fg[0x0]"
	}
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), floats.Min(fg.values), floats.Max(fg.values))
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision
func (fg *FloatGrid)ToImg(title, filename string) error {
	if len(fg.values) == 0 {
		return fmt.Errorf("ToImg '%s': empty grid", filename)
	}
	min, max := floats.Min(fg.values), floats.Max(fg.values)
	if max == min {
		max = min + 1
	}

	img := image.NewRGBA64(image.Rectangle{Max:image.Point{fg.Dx(), fg.Dy()}})
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			lum := fg.Get(x,y)
			gray := GammaExpand_F64 ((lum - min) / (max - min))
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1,0,0)
	dc.DrawString(title, 10, 20)
	return dc.SavePNG(filename)
}
