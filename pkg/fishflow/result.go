package fishflow

import(
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// A FramePair is two consecutive frames, both at crop size. They may be
// colour; they're converted to gray before anything is computed.
type FramePair struct {
	Old     image.Image
	Current image.Image
}

// A Result is everything computed for one step. Nothing in it is shared
// with other steps.
type Result struct {
	Frame     int         // step number, from 0
	Original  image.Image // copy of the current frame, as supplied
	Density   *image.Gray // crop resolution
	Mask      Mask
	Velocity  VelocityField
	Alignment Alignment
}

func (r Result)String() string {
	return fmt.Sprintf("Result[frame %d, %s, %dx%d grid, %d/%d valid, %s]", r.Frame,
		r.Original.Bounds().Size(), r.Velocity.Nx, r.Velocity.Ny, r.Mask.Count(), len(r.Mask.Valid),
		r.Alignment)
}

// cloneImage makes a deep copy, with bounds starting at the origin.
func cloneImage(src image.Image) image.Image {
	b := src.Bounds()
	r := image.Rect(0, 0, b.Dx(), b.Dy())
	switch src.(type) {
	case *image.Gray:
		dst := image.NewGray(r)
		draw.Draw(dst, r, src, b.Min, draw.Src)
		return dst
	case *image.Gray16:
		dst := image.NewGray16(r)
		draw.Draw(dst, r, src, b.Min, draw.Src)
		return dst
	default:
		dst := image.NewRGBA(r)
		draw.Draw(dst, r, src, b.Min, draw.Src)
		return dst
	}
}
