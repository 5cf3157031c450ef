package fishflow

import(
	"fmt"
	"image"
	"math"
	"path/filepath"

	"github.com/skypies/util/histogram"

	"github.com/abworrall/fishflow/pkg/emath"
)

func densityHistogram(density *image.Gray) histogram.Histogram {
	h := histogram.Histogram{NumBuckets:256, ValMin:0, ValMax:256}
	for _, v := range density.Pix {
		h.Add(histogram.ScalarVal(int(v)))
	}
	return h
}

// velocityStats summarises a field, for logging.
func velocityStats(vf VelocityField) string {
	solved, maxSpeed, sumSpeed := 0, 0.0, 0.0
	for n, v := range vf.V {
		if !vf.Solved[n] {
			continue
		}
		solved++
		speed := math.Hypot(v.X, v.Y)
		sumSpeed += speed
		maxSpeed = math.Max(maxSpeed, speed)
	}
	mean := 0.0
	if solved > 0 {
		mean = sumSpeed / float64(solved)
	}
	return fmt.Sprintf("vel[solved %d/%d, mean %.2f, max %.2f]", solved, len(vf.V), mean, maxSpeed)
}

// dumpStep writes the smoothed tensor maps and the density map into dir,
// as annotated PNGs, as HDR files that keep the float values, and
// tone mapped.
func dumpStep(dir string, frame int, t tensorMaps, density *image.Gray) error {
	for n, name := range tensorMapNames {
		stem := filepath.Join(dir, fmt.Sprintf("%06d-%s", frame, name))
		title := fmt.Sprintf("frame %d %s %s", frame, name, t[n].Stats())
		if err := t[n].ToImg(title, stem+".png"); err != nil {
			return err
		}
		if err := t[n].WriteHDR(stem+".hdr"); err != nil {
			return err
		}
		if err := t[n].WriteToneMapped(stem+"-tm.png"); err != nil {
			return err
		}
	}

	fg := emath.FloatGridFromGray(density)
	return fg.ToImg(fmt.Sprintf("frame %d density", frame), filepath.Join(dir, fmt.Sprintf("%06d-density.png", frame)))
}
