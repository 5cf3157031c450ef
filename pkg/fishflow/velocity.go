package fishflow

import(
	"image"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/fishflow/pkg/emath"
)

// The smoothed products that make up the structure tensor at each pixel.
const(
	tIxIy = iota
	tIxIt
	tIyIt
	tIxIx
	tIyIy
	nTensorMaps
)

var tensorMapNames = [nTensorMaps]string{"IxIy", "IxIt", "IyIt", "IxIx", "IyIy"}

type tensorMaps [nTensorMaps]emath.FloatGrid

// structureTensor computes the spatial gradients of old and the temporal
// difference to current, forms the five products, and smooths each over
// a ksize window. The smoothing passes run concurrently.
func structureTensor(old, current *image.Gray, ksize int) tensorMaps {
	o := emath.FloatGridFromGray(old)
	c := emath.FloatGridFromGray(current)

	It := c.Sub(&o)
	Ix := o.Sobel(true)
	Iy := o.Sobel(false)

	var products tensorMaps
	products[tIxIy] = Ix.Mul(&Iy)
	products[tIxIt] = Ix.Mul(&It)
	products[tIyIt] = Iy.Mul(&It)
	products[tIxIx] = Ix.Mul(&Ix)
	products[tIyIy] = Iy.Mul(&Iy)

	var smoothed tensorMaps
	var wg sync.WaitGroup
	for n := range products {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			smoothed[n] = products[n].GaussianBlur(ksize)
		}(n)
	}
	wg.Wait()

	return smoothed
}

// solveCell solves the 2x2 system for one cell. If the tensor is too
// badly conditioned it gives up, returning the zero vector and false.
func solveCell(ixiy, ixit, iyit, ixix, iyiy, maxCondition float64) (Vec2, bool) {
	var lu mat.LU
	lu.Factorize(mat.NewDense(2, 2, []float64{ixix, ixiy, ixiy, iyiy}))

	if cond := lu.Cond(); math.IsNaN(cond) || cond > maxCondition {
		return Vec2{}, false
	}

	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, mat.NewVecDense(2, []float64{-ixit, -iyit})); err != nil {
		return Vec2{}, false
	}
	return Vec2{x.AtVec(0), x.AtVec(1)}, true
}

// velocityField samples the smoothed tensor at the centre of each output
// cell and solves it. Rows of cells are shared out to a pool of workers.
func velocityField(t tensorMaps, nx, ny int, scale, maxCondition float64, nWorkers int) VelocityField {
	vf := NewVelocityField(nx, ny)
	width, height := t[0].Dx(), t[0].Dy()

	if nWorkers < 1 {
		nWorkers = 1
	}

	var wg sync.WaitGroup
	rowsChan := make(chan int, ny)

	for w:=0; w<nWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rowsChan {
				for j:=0; j<nx; j++ {
					row, col := cellSample(i, j, nx, ny, width, height)
					v, ok := solveCell(t[tIxIy].Get(col,row), t[tIxIt].Get(col,row), t[tIyIt].Get(col,row),
						t[tIxIx].Get(col,row), t[tIyIy].Get(col,row), maxCondition)
					vf.V[i*nx + j] = Vec2{scale * v.X, scale * v.Y}
					vf.Solved[i*nx + j] = ok
				}
			}
		}()
	}

	for i:=0; i<ny; i++ {
		rowsChan<- i
	}
	close(rowsChan)
	wg.Wait()

	return vf
}

// Velocity estimates the motion between two normalised frames of the
// same size, at nx x ny cells, using a window x window neighbourhood.
func Velocity(old, current *image.Gray, nx, ny, window int, scale, maxCondition float64, nWorkers int) VelocityField {
	return velocityField(structureTensor(old, current, window|1), nx, ny, scale, maxCondition, nWorkers)
}
