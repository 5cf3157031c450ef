package framesrc

import(
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/abworrall/fishflow/pkg/emath"
	"github.com/abworrall/fishflow/pkg/fishflow"
)

// A Source reads a video, exported as a sequence of image files, and
// hands out cropped frames as sliding pairs.
type Source struct {
	Config    fishflow.Config
	Files     []string
	FrameSize image.Point       // of the uncropped frames
	Crop      image.Rectangle
	Frames    FrameRange

	Progress  io.Writer         // nil for no progress display

	indexes   []int
	next      int               // position in indexes of the next current frame
	old       image.Image
}

// A Pair is what Next returns: two frames, plus where the current one
// came from.
type Pair struct {
	fishflow.FramePair
	Step     int
	Index    int               // frame number of the current frame
	Filename string
	Time     time.Time
}

type Info struct {
	Path       string
	NumFrames  int
	FrameSize  image.Point
	Crop       image.Rectangle
	Frames     FrameRange
}

func (i Info)String() string {
	return fmt.Sprintf("%s: %d frames of %dx%d, crop %v, %s, %d steps", i.Path, i.NumFrames,
		i.FrameSize.X, i.FrameSize.Y, i.Crop, i.Frames, len(i.Frames.Indexes())-1)
}

// Open lists the frames in cfg.Input.Path, checks the first one for
// size, and resolves the frame range and the crop.
func Open(cfg fishflow.Config) (*Source, error) {
	if cfg.Input.Path == "" {
		return nil, fmt.Errorf("open: no input path: %w", fishflow.ErrInvalidConfiguration)
	}

	files, err := ListFrames(cfg.Input.Path)
	if err != nil {
		return nil, fmt.Errorf("open: %v", err)
	} else if len(files) == 0 {
		return nil, fmt.Errorf("open %s: no frames: %w", cfg.Input.Path, ErrNotEnoughFrames)
	}

	first, err := LoadImage(files[0])
	if err != nil {
		return nil, fmt.Errorf("open: %v", err)
	}

	s := Source{
		Config:    cfg,
		Files:     files,
		FrameSize: first.Bounds().Size(),
	}

	if s.Frames, err = ResolveFrames(cfg, len(files)); err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Input.Path, err)
	}
	if s.Crop, err = ResolveCrop(cfg, s.FrameSize); err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Input.Path, err)
	}
	s.indexes = s.Frames.Indexes()

	if cfg.Verbosity >= fishflow.Normal {
		s.Progress = os.Stdout
	}

	return &s, nil
}

func (s *Source)Info() Info {
	return Info{
		Path:      s.Config.Input.Path,
		NumFrames: len(s.Files),
		FrameSize: s.FrameSize,
		Crop:      s.Crop,
		Frames:    s.Frames,
	}
}

// Steps is how many pairs Next will hand out in total.
func (s *Source)Steps() int { return len(s.indexes) - 1 }

func (s *Source)loadCropped(index int) (image.Image, error) {
	img, err := LoadImage(s.Files[index])
	if err != nil {
		return nil, err
	}
	if img.Bounds().Size() != s.FrameSize {
		return nil, fmt.Errorf("frame %d '%s' is %v, not %v: %w", index, s.Files[index], img.Bounds().Size(),
			s.FrameSize, fishflow.ErrDimensionMismatch)
	}
	return Crop(img, s.Crop), nil
}

// Next returns the next pair of frames. The old frame of each pair is
// the current frame of the one before. It returns io.EOF when the
// selection is used up.
func (s *Source)Next() (Pair, error) {
	if s.old == nil {
		if len(s.indexes) < 2 {
			return Pair{}, io.EOF
		}
		img, err := s.loadCropped(s.indexes[0])
		if err != nil {
			return Pair{}, fmt.Errorf("next: %v", err)
		}
		s.old = img
		s.next = 1
	}

	if s.next >= len(s.indexes) {
		return Pair{}, io.EOF
	}

	index := s.indexes[s.next]
	cur, err := s.loadCropped(index)
	if err != nil {
		return Pair{}, fmt.Errorf("next: %v", err)
	}

	t, err := FrameTime(s.Files[index])
	if err != nil {
		return Pair{}, fmt.Errorf("next: %v", err)
	}

	p := Pair{
		FramePair: fishflow.FramePair{Old: s.old, Current: cur},
		Step:      s.next - 1,
		Index:     index,
		Filename:  s.Files[index],
		Time:      t,
	}

	s.old = cur
	s.next++
	s.showProgress()

	return p, nil
}

// Background loads cfg.Input.Background, as gray. It may be the size of
// a whole frame, in which case it is cropped, or the size of the crop.
// With no background configured it is uniform white.
func (s *Source)Background() (*image.Gray, error) {
	filename := s.Config.Input.Background
	if filename == "" {
		return fishflow.UniformBackground(s.Crop.Dx(), s.Crop.Dy()), nil
	}

	img, err := LoadImage(filename)
	if err != nil {
		return nil, fmt.Errorf("background: %v", err)
	}

	switch img.Bounds().Size() {
	case s.FrameSize:
		return emath.ToGray(Crop(img, s.Crop)), nil
	case s.Crop.Size():
		return emath.ToGray(img), nil
	default:
		return nil, fmt.Errorf("background '%s' is %v; frames are %v, crop is %v: %w", filename,
			img.Bounds().Size(), s.FrameSize, s.Crop.Size(), ErrBadBackground)
	}
}

// ComputeBackground averages every frame in the sequence (or just the
// crop of each) and writes the result as a PNG.
func (s *Source)ComputeBackground(filename string, cropped bool) error {
	r := image.Rectangle{Max: s.FrameSize}
	if cropped {
		r = s.Crop
	}

	sum := emath.NewFloatGrid(r.Dx(), r.Dy())
	for i, file := range s.Files {
		img, err := LoadImage(file)
		if err != nil {
			return fmt.Errorf("compute background: %v", err)
		} else if img.Bounds().Size() != s.FrameSize {
			return fmt.Errorf("compute background: frame %d is %v, not %v: %w", i, img.Bounds().Size(),
				s.FrameSize, fishflow.ErrDimensionMismatch)
		}

		g := emath.FloatGridFromGray(emath.ToGray(Crop(img, r)))
		sum = sum.Add(&g)
	}

	sum.Scale(1.0 / float64(len(s.Files)))
	s.Config.LogAt(fishflow.Normal, "background: averaged %d frames into %s %s\n", len(s.Files), filename, sum.Stats())

	return emath.WritePNG(sum.ToGray(), filename)
}
