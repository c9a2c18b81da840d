// Package render is the reference rendering engine of the viewer. It decodes
// uncompressed single-frame images with github.com/suyashkumar/dicom and
// rasterises them onto in-memory grayscale canvases.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"strconv"
	"strings"

	dcmio "github.com/mrsinham/dicomview/internal/dicom"
	"github.com/mrsinham/dicomview/internal/viewer"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoPixelData is returned for files without an image.
	ErrNoPixelData = errors.New("no pixel data")
	// ErrUnsupported is returned for pixel data this engine cannot decode.
	ErrUnsupported = errors.New("unsupported pixel data")
)

// Image is a decoded frame in modality units. It implements viewer.Image.
type Image struct {
	width, height int
	// pixels holds rescaled values, row-major.
	pixels []float64

	rowSpacing, colSpacing float64
	hasSpacing             bool

	windowCenter, windowWidth float64

	tags *dcmio.TagDictionary
}

// Size returns the image dimensions in pixels.
func (img *Image) Size() (int, int) { return img.width, img.height }

// PixelSpacing returns the spacing read from PixelSpacing, if present.
func (img *Image) PixelSpacing() (float64, float64, bool) {
	return img.rowSpacing, img.colSpacing, img.hasSpacing
}

// Tags returns the full tag dictionary of the file.
func (img *Image) Tags() viewer.TagLookup {
	if img.tags == nil {
		return nil
	}
	return img.tags
}

// DefaultWindow returns the window from the file, or one computed from the
// pixel statistics.
func (img *Image) DefaultWindow() (center, width float64) {
	return img.windowCenter, img.windowWidth
}

// At returns the rescaled value of pixel (x, y).
func (img *Image) At(x, y int) float64 { return img.pixels[y*img.width+x] }

// NewImage builds an image from rescaled values. Spacing and window are
// optional; a zero window is computed from the values.
func NewImage(width, height int, pixels []float64) (*Image, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return nil, fmt.Errorf("image %dx%d with %d pixels: %w", width, height, len(pixels), ErrUnsupported)
	}
	img := &Image{width: width, height: height, pixels: pixels}
	img.windowCenter, img.windowWidth = AutoWindow(pixels)
	return img, nil
}

// LoadFile fully parses path and decodes its first frame.
func LoadFile(ctx context.Context, path string) (img *Image, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("decode %s: %v", path, r)
		}
	}()

	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return decode(ds)
}

func decode(ds dicom.Dataset) (*Image, error) {
	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, ErrNoPixelData
	}
	info := dicom.MustGetPixelDataInfo(elem.Value)
	if len(info.Frames) == 0 {
		return nil, ErrNoPixelData
	}
	fr := info.Frames[0]
	if fr.Encapsulated {
		return nil, fmt.Errorf("encapsulated frame: %w", ErrUnsupported)
	}
	src, err := fr.GetImage()
	if err != nil {
		return nil, fmt.Errorf("frame image: %w", err)
	}

	tags := dcmio.NewTagDictionary(ds)
	slope := tagFloat(tags, tag.RescaleSlope, 1)
	intercept := tagFloat(tags, tag.RescaleIntercept, 0)

	b := src.Bounds()
	pixels := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pixels = append(pixels, storedValue(src, x, y)*slope+intercept)
		}
	}

	img, err := NewImage(b.Dx(), b.Dy(), pixels)
	if err != nil {
		return nil, err
	}
	img.tags = tags
	if raw, ok := tags.Lookup(tag.PixelSpacing); ok {
		img.rowSpacing, img.colSpacing, img.hasSpacing = viewer.ParseSpacing(raw)
	}
	center := tagFloat(tags, tag.WindowCenter, 0)
	width := tagFloat(tags, tag.WindowWidth, 0)
	if width >= 1 {
		img.windowCenter, img.windowWidth = center, width
	}
	return img, nil
}

func storedValue(src image.Image, x, y int) float64 {
	switch s := src.(type) {
	case *image.Gray16:
		return float64(s.Gray16At(x, y).Y)
	case *image.Gray:
		return float64(s.GrayAt(x, y).Y)
	}
	r, g, b, _ := src.At(x, y).RGBA()
	return float64(r+g+b) / 3
}

// tagFloat parses the first value of t, fallback when absent or invalid.
func tagFloat(d viewer.TagLookup, t tag.Tag, fallback float64) float64 {
	raw, ok := d.Lookup(t)
	if !ok {
		return fallback
	}
	if i := strings.IndexByte(raw, '\\'); i >= 0 {
		raw = raw[:i]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return v
}

// AutoWindow derives a window from pixel statistics: centred on the mean,
// four standard deviations wide, clipped to the value range.
func AutoWindow(pixels []float64) (center, width float64) {
	if len(pixels) == 0 {
		return 0, 1
	}
	lo, hi := floats.Min(pixels), floats.Max(pixels)
	mean, std := stat.MeanStdDev(pixels, nil)
	if math.IsNaN(std) {
		std = 0
	}
	width = 4 * std
	if span := hi - lo; width > span {
		width = span
	}
	if width < 1 {
		width = 1
	}
	return mean, width
}
