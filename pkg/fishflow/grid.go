package fishflow

import "github.com/abworrall/fishflow/pkg/emath"

// A Vec2 is a velocity, in scaled pixels per frame; X grows rightwards
// and Y grows downwards, as in the image.
type Vec2 struct {
	X, Y float64
}

// A Mask is a coarse boolean grid, one entry per output cell, true where
// the cell is occupied enough to trust its velocity.
type Mask struct {
	Nx, Ny int
	Valid  []bool // row major, Ny rows of Nx
}

func NewMask(nx, ny int) Mask { return Mask{Nx: nx, Ny: ny, Valid: make([]bool, nx*ny)} }

// At reports the cell at grid row i, column j.
func (m Mask)At(i, j int) bool { return m.Valid[i*m.Nx + j] }

func (m Mask)Count() int {
	n := 0
	for _, v := range m.Valid {
		if v {
			n++
		}
	}
	return n
}

// A VelocityField holds one velocity per output cell. Solved is false for
// cells whose structure tensor was too close to singular; their velocity
// is zero.
type VelocityField struct {
	Nx, Ny int
	V      []Vec2
	Solved []bool
}

func NewVelocityField(nx, ny int) VelocityField {
	return VelocityField{Nx: nx, Ny: ny, V: make([]Vec2, nx*ny), Solved: make([]bool, nx*ny)}
}

// At returns the velocity at grid row i, column j.
func (vf VelocityField)At(i, j int) Vec2 { return vf.V[i*vf.Nx + j] }

// cellSample maps output cell (i,j) to the pixel at its centre, in a
// width x height image. Halves round away from zero.
func cellSample(i, j, nx, ny, width, height int) (row, col int) {
	row = emath.RoundHalfAway(float64(height) * (float64(i) + 0.5) / float64(ny))
	col = emath.RoundHalfAway(float64(width) * (float64(j) + 0.5) / float64(nx))
	return emath.Clamp(row, 0, height-1), emath.Clamp(col, 0, width-1)
}
