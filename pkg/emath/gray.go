package emath

// Helpers for 8 bit single channel images (image.Gray), the format
// frames and masks travel in.

import(
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// ToGray converts any image into a new *image.Gray whose bounds start at
// the origin, using the standard luma weights.
func ToGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Threshold is a binary threshold: pixels strictly above thresh become
// maxval, the rest become 0.
func Threshold(src *image.Gray, thresh, maxval uint8) *image.Gray {
	dst := image.NewGray(src.Bounds())
	forEachPix(src, dst, func(v uint8) uint8 {
		if v > thresh {
			return maxval
		}
		return 0
	})
	return dst
}

// Invert returns 255-v for every pixel.
func Invert(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Bounds())
	forEachPix(src, dst, func(v uint8) uint8 { return 255 - v })
	return dst
}

func forEachPix(src, dst *image.Gray, f func(uint8) uint8) {
	b := src.Bounds()
	for y:=0; y<b.Dy(); y++ {
		s := src.Pix[y*src.Stride : y*src.Stride + b.Dx()]
		d := dst.Pix[y*dst.Stride : y*dst.Stride + b.Dx()]
		for x, v := range s {
			d[x] = f(v)
		}
	}
}

// A StructuringElement is a binary mask for morphology, anchored at its center.
type StructuringElement [][]bool

// Disk5 is the 5x5 disk with its corners cut.
var Disk5 = StructuringElement{
	{false, true, true, true, false},
	{true,  true, true, true, true },
	{true,  true, true, true, true },
	{true,  true, true, true, true },
	{false, true, true, true, false},
}

// Erode replaces every pixel with the minimum under the structuring
// element, repeated `iterations` times. Pixels outside the image are
// ignored, so they never pull the minimum down.
func Erode(src *image.Gray, se StructuringElement, iterations int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	cy, cx := len(se)/2, len(se[0])/2

	cur := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(cur, cur.Bounds(), src, b.Min, draw.Src)

	for it:=0; it<iterations; it++ {
		next := image.NewGray(cur.Bounds())
		for y:=0; y<h; y++ {
			for x:=0; x<w; x++ {
				min := uint8(255)
				for ky, row := range se {
					yy := y + ky - cy
					if yy < 0 || yy >= h {
						continue
					}
					for kx, on := range row {
						xx := x + kx - cx
						if !on || xx < 0 || xx >= w {
							continue
						}
						if v := cur.Pix[yy*cur.Stride + xx]; v < min {
							min = v
						}
					}
				}
				next.Pix[y*next.Stride + x] = min
			}
		}
		cur = next
	}

	return cur
}

// ResizeNearest scales src to w x h picking the nearest source pixel.
func ResizeNearest(src *image.Gray, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ResizeBilinear scales src to w x h with bilinear interpolation.
func ResizeBilinear(src *image.Gray, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}
