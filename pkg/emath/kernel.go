package emath

import "math"

// Fixed kernels for the small sizes, used when no sigma is given. These
// match what the usual vision libraries do, so results line up with
// them for tiny windows.
var smallGaussianKernels = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// SigmaForKernelSize is the sigma implied by a kernel size when none is given.
func SigmaForKernelSize(ksize int) float64 {
	return 0.3*((float64(ksize)-1)*0.5-1) + 0.8
}

// GaussianKernel returns a normalised 1D Gaussian of ksize taps (ksize
// must be odd). If sigma <= 0 it is derived from ksize.
func GaussianKernel(ksize int, sigma float64) []float64 {
	if sigma <= 0 {
		if k, exists := smallGaussianKernels[ksize]; exists {
			return append([]float64{}, k...)
		}
		sigma = SigmaForKernelSize(ksize)
	}

	kernel := make([]float64, ksize)
	scale := -0.5 / (sigma * sigma)
	sum := 0.0
	for i := range kernel {
		x := float64(i - (ksize-1)/2)
		kernel[i] = math.Exp(scale * x * x)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// Reflect101 maps an out of range index back into [0,n), reflecting
// about the edge pixels without repeating them: -1 -> 1, n -> n-2.
func Reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
