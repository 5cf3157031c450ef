package emath

import(
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/mdouchement/hdr/tmo"
)

// signedHDR presents a FloatGrid as an hdr.Image. RGBE can't hold
// negative values, so positive values go in red and negative ones in blue.
type signedHDR struct {
	fg *FloatGrid
}

// Implement golang's image.Image interface
func (s signedHDR)ColorModel() color.Model { return hdrcolor.RGBModel }
func (s signedHDR)Bounds() image.Rectangle { return s.fg.Bounds() }
func (s signedHDR)At(x, y int) color.Color { return s.HDRAt(x,y) }

// Implement hdr.Image interface
func (s signedHDR)Size() int { return s.fg.Dx() * s.fg.Dy() }
func (s signedHDR)HDRAt(x, y int) hdrcolor.Color {
	v := s.fg.Get(x, y)
	if v < 0 {
		return hdrcolor.RGB{R: 0, G: 0, B: -v}
	}
	return hdrcolor.RGB{R: v, G: 0, B: 0}
}

// WriteHDR dumps the grid at full float precision, as a Radiance RGBE file.
func (fg *FloatGrid)WriteHDR(filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return rgbe.Encode(writer, signedHDR{fg})
	}
}

// WriteToneMapped squeezes the grid's range into a viewable PNG, with
// the same red/blue split as WriteHDR.
func (fg *FloatGrid)WriteToneMapped(filename string) error {
	op := tmo.NewDefaultReinhard05(signedHDR{fg})
	return WritePNG(op.Perform(), filename)
}
