package fishflow

import(
	"image"

	"github.com/abworrall/fishflow/pkg/emath"
)

const(
	occupancyThreshold = 200 // normalised values above this are background
	densityKernelSize  = 101
	densityGain        = 4

	maskErodeIterations = 10
)

// Normalise subtracts the background from a frame, so that anything
// matching the background comes out white (255) and darker objects keep
// their contrast: clamp(frame - background + 255). The two must be the
// same size.
func Normalise(frame, background *image.Gray) *image.Gray {
	b := frame.Bounds()
	bb := background.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y:=0; y<b.Dy(); y++ {
		f := frame.Pix[y*frame.Stride : y*frame.Stride + b.Dx()]
		g := background.Pix[y*background.Stride : y*background.Stride + bb.Dx()]
		o := out.Pix[y*out.Stride : y*out.Stride + b.Dx()]
		for x := range f {
			o[x] = uint8(emath.Clamp(int(f[x]) - int(g[x]) + 255, 0, 255))
		}
	}
	return out
}

// DensityMap turns a normalised frame into a smooth occupancy map: dark
// (occupied) pixels are picked out, spread with a wide Gaussian, and
// the result inverted and amplified so crowded areas come out bright.
func DensityMap(normalised *image.Gray) *image.Gray {
	bin := emath.Threshold(normalised, occupancyThreshold, 255)
	fg := emath.FloatGridFromGray(bin)
	smooth := fg.GaussianBlur(densityKernelSize)
	blurred := smooth.ToGray()

	for i, v := range blurred.Pix {
		blurred.Pix[i] = emath.SaturateU8(float64(255 - int(v)) * densityGain)
	}
	return blurred
}

// DensityMask works out which output cells are occupied. Dark regions of
// the thresholded frame are grown by eroding the white background, then
// the result is inverted and shrunk to the grid.
func DensityMask(normalised *image.Gray, nx, ny int) Mask {
	bin := emath.Threshold(normalised, occupancyThreshold, 255)
	eroded := emath.Erode(bin, emath.Disk5, maskErodeIterations)
	small := emath.ResizeNearest(emath.Invert(eroded), nx, ny)

	m := NewMask(nx, ny)
	for i:=0; i<ny; i++ {
		for j:=0; j<nx; j++ {
			m.Valid[i*nx + j] = small.Pix[i*small.Stride + j] != 0
		}
	}
	return m
}
