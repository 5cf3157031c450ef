package framesrc

import(
	"errors"
	"fmt"
	"image"

	"github.com/abworrall/fishflow/pkg/fishflow"
)

var (
	// ErrNotEnoughFrames means the frame selection holds fewer than the
	// two frames needed to see any motion.
	ErrNotEnoughFrames = errors.New("not enough frames")

	// ErrBadBackground means the background image is neither the size
	// of a frame nor the size of the crop.
	ErrBadBackground = errors.New("bad background")
)

// A FrameRange is a resolved frame selection: frames From, From+By, ...
// up to but not including To. Count is (To-From)/By.
type FrameRange struct {
	From, To, Count, By int
}

func (fr FrameRange)String() string {
	return fmt.Sprintf("frames[%d..%d by %d, count %d]", fr.From, fr.To, fr.By, fr.Count)
}

// Indexes lists the frames in the range.
func (fr FrameRange)Indexes() []int {
	idx := []int{}
	for i:=fr.From; i<fr.To; i+=fr.By {
		idx = append(idx, i)
	}
	return idx
}

// ResolveFrames reconciles the frame settings against a sequence of
// maxCount frames. Zero To or Count means unset. When To and Count
// disagree the shorter selection wins, with a warning.
func ResolveFrames(cfg fishflow.Config, maxCount int) (FrameRange, error) {
	fc := cfg.Frame
	from, by := fc.From, fc.By
	to, count := maxCount, maxCount - 1
	if fc.To > 0 {
		to = fc.To
	}
	if fc.Count > 0 {
		count = fc.Count
	}

	switch {
	case from <= 0:
		return FrameRange{}, fmt.Errorf("frame.from must be > 0, is %d: %w", from, fishflow.ErrInvalidConfiguration)
	case by < 1:
		return FrameRange{}, fmt.Errorf("frame.by must be >= 1, is %d: %w", by, fishflow.ErrInvalidConfiguration)
	case from > to:
		return FrameRange{}, fmt.Errorf("frame.from %d > frame.to %d: %w", from, to, fishflow.ErrInvalidConfiguration)
	case to > maxCount:
		return FrameRange{}, fmt.Errorf("frame.to %d is past the last frame (%d): %w", to, maxCount, fishflow.ErrInvalidConfiguration)
	}

	if (to-from)/by != count {
		if fc.To > 0 && fc.Count > 0 {
			if (to-from)/by > count {
				to = from + count*by
				cfg.LogAt(fishflow.Low, "warning: frame.to > frame.from + frame.count * frame.by; using %d\n", to)
			} else {
				count = (to-from)/by
				cfg.LogAt(fishflow.Low, "warning: frame.count > (frame.to - frame.from) / frame.by; using %d\n", count)
			}
		} else if fc.Count > 0 {
			to = from + count*by
		} else {
			count = (to-from)/by
		}
	}

	if from == to {
		return FrameRange{}, fmt.Errorf("frame.from == frame.to (%d), two frames are needed: %w", from, ErrNotEnoughFrames)
	}

	if to > maxCount {
		cfg.LogAt(fishflow.Low, "warning: frame.to %d is past the last frame; using %d\n", to, maxCount)
		to = maxCount
		count = (to-from)/by
	}

	fr := FrameRange{From: from, To: to, Count: count, By: by}
	if len(fr.Indexes()) < 2 {
		return fr, fmt.Errorf("%s: %w", fr, ErrNotEnoughFrames)
	}
	return fr, nil
}

// ResolveCrop works out the crop rectangle within a frame of size
// max. Zero XMax, YMax, Width or Height means unset. If the extent and
// the size disagree the smaller one wins; a rectangle that runs off the
// frame is clamped.
func ResolveCrop(cfg fishflow.Config, max image.Point) (image.Rectangle, error) {
	cc := cfg.Crop
	xmin, ymin := cc.XMin, cc.YMin
	xmax, ymax := max.X, max.Y
	width, height := max.X - xmin, max.Y - ymin

	if cc.XMax > 0 {
		xmax = cc.XMax
	}
	if cc.YMax > 0 {
		ymax = cc.YMax
	}
	if cc.Width > 0 {
		width = cc.Width
	}
	if cc.Height > 0 {
		height = cc.Height
	}

	switch {
	case xmin < 0 || ymin < 0:
		return image.Rectangle{}, fmt.Errorf("crop min (%d,%d) is negative: %w", xmin, ymin, fishflow.ErrInvalidConfiguration)
	case xmin >= xmax:
		return image.Rectangle{}, fmt.Errorf("crop xmin %d >= xmax %d: %w", xmin, xmax, fishflow.ErrInvalidConfiguration)
	case ymin >= ymax:
		return image.Rectangle{}, fmt.Errorf("crop ymin %d >= ymax %d: %w", ymin, ymax, fishflow.ErrInvalidConfiguration)
	case width <= 0:
		return image.Rectangle{}, fmt.Errorf("crop width is %d: %w", width, fishflow.ErrInvalidConfiguration)
	case height <= 0:
		return image.Rectangle{}, fmt.Errorf("crop height is %d: %w", height, fishflow.ErrInvalidConfiguration)
	}

	if xmax - xmin > width {
		xmax = xmin + width
		if cc.XMax > 0 {
			cfg.LogAt(fishflow.Low, "warning: crop xmax - xmin > width; using xmax %d\n", xmax)
		}
	} else if xmax - xmin < width && cc.Width > 0 {
		cfg.LogAt(fishflow.Low, "warning: crop xmax - xmin < width; using width %d\n", xmax - xmin)
	}

	if ymax - ymin > height {
		ymax = ymin + height
		if cc.YMax > 0 {
			cfg.LogAt(fishflow.Low, "warning: crop ymax - ymin > height; using ymax %d\n", ymax)
		}
	} else if ymax - ymin < height && cc.Height > 0 {
		cfg.LogAt(fishflow.Low, "warning: crop ymax - ymin < height; using height %d\n", ymax - ymin)
	}

	if xmax > max.X {
		cfg.LogAt(fishflow.Low, "warning: crop xmax %d is wider than the frame; using %d\n", xmax, max.X)
		xmax = max.X
	}
	if ymax > max.Y {
		cfg.LogAt(fishflow.Low, "warning: crop ymax %d is taller than the frame; using %d\n", ymax, max.Y)
		ymax = max.Y
	}

	if xmin >= xmax || ymin >= ymax {
		return image.Rectangle{}, fmt.Errorf("crop min (%d,%d) is outside the %v frame: %w", xmin, ymin, max,
			fishflow.ErrInvalidConfiguration)
	}
	return image.Rect(xmin, ymin, xmax, ymax), nil
}
