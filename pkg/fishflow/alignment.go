package fishflow

import(
	"fmt"
	"image"

	"github.com/abworrall/fishflow/pkg/emath"
)

// An Alignment says how the current frame was registered against the
// old one before velocities were computed. Transform maps a pixel in the
// current frame to the old frame; it is only meaningful when Computed.
type Alignment struct {
	Strategy  string
	Computed  bool
	Transform emath.Aff3
}

func (a Alignment)String() string {
	if !a.Computed {
		return fmt.Sprintf("Align[%s, not computed]", a.Strategy)
	}
	return fmt.Sprintf("Align[%s %s]", a.Strategy, a.Transform)
}

// An Aligner works out the Alignment between two normalised frames.
type Aligner interface {
	Name() string
	Align(old, current *image.Gray) Alignment
}

// NoAlignment is the default; frames are assumed registered already.
type NoAlignment struct{}

func (NoAlignment)Name() string { return "none" }

func (NoAlignment)Align(old, current *image.Gray) Alignment {
	return Alignment{Strategy: "none", Transform: emath.Identity()}
}

// NewAligner looks up an alignment strategy by its config name.
func NewAligner(name string) (Aligner, error) {
	switch name {
	case "", "none": return NoAlignment{}, nil
	default:
		return nil, fmt.Errorf("no alignment strategy named '%s': %w", name, ErrInvalidConfiguration)
	}
}
