package emath

import(
	"fmt"
	"golang.org/x/image/math/f64"
)

// Aff3 is the transform a frame aligner records; a local type so we can
// hang methods off it.
type Aff3 f64.Aff3

func Identity() Aff3 {
	return Aff3{1, 0, 0,   0, 1, 0}
}

func (m Aff3)IsIdentity() bool { return m == Identity() }

func (m Aff3)String() string {
	return fmt.Sprintf("[%6.3f %6.3f %8.3f | %6.3f %6.3f %8.3f]", m[0], m[1], m[2], m[3], m[4], m[5])
}
