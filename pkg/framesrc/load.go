package framesrc

import(
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

var frameExtensions = map[string]bool{".tif": true, ".tiff": true, ".png": true, ".jpg": true, ".jpeg": true}

func isFrameFile(filename string) bool {
	return frameExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ListFrames finds the frame files under the given files and dirs,
// sorted by name. Dirs are not recursed into.
func ListFrames(args ...string) ([]string, error) {
	files := []string{}
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {
		case err != nil:
			return nil, fmt.Errorf("list %s: %v", arg, err)

		case item.IsDir():
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return nil, fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if !content.IsDir() && isFrameFile(content.Name()) {
					files = append(files, filepath.Join(arg, content.Name()))
				}
			}

		case isFrameFile(arg):
			files = append(files, arg)

		default:
			return nil, fmt.Errorf("list %s: not an image file", arg)
		}
	}

	sort.Strings(files)
	return files, nil
}

// LoadImage decodes a frame (TIFF, PNG or JPEG).
func LoadImage(filename string) (image.Image, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r '%s': %v", filename, err)
	}
	defer reader.Close()

	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("decode '%s': %v", filename, err)
	}
	return img, nil
}

// FrameTime is when the frame was taken: the EXIF DateTime if the file
// has one, else its modification time.
func FrameTime(filename string) (time.Time, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return time.Time{}, fmt.Errorf("open+r exif '%s': %v", filename, err)
	}
	defer reader.Close()

	if ex, err := exif.Decode(reader); err == nil {
		if t, err := ex.DateTime(); err == nil {
			return t, nil
		}
	}

	item, err := reader.Stat()
	if err != nil {
		return time.Time{}, fmt.Errorf("stat '%s': %v", filename, err)
	}
	return item.ModTime(), nil
}

// Crop copies the part of img inside r into a new image whose bounds
// start at the origin. Gray images stay gray.
func Crop(img image.Image, r image.Rectangle) image.Image {
	r = r.Add(img.Bounds().Min)
	dr := image.Rect(0, 0, r.Dx(), r.Dy())

	var dst draw.Image
	switch img.(type) {
	case *image.Gray:  dst = image.NewGray(dr)
	case *image.Gray16:dst = image.NewGray16(dr)
	default:           dst = image.NewRGBA(dr)
	}
	draw.Draw(dst, dr, img, r.Min, draw.Src)
	return dst
}
