// Package export renders the displayed image of a session to PNG or JPEG,
// optionally with its measurements and a "not for diagnostic use" banner.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrsinham/dicomview/internal/render"
	"github.com/mrsinham/dicomview/internal/viewer"
	"golang.org/x/image/draw"
)

// Format is an output encoding.
type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
)

// Defaults applied by DefaultOptions.
const (
	DefaultSize        = 1024
	DefaultFilename    = "Image"
	DefaultQuality     = 95
	DefaultWarningText = "Not for diagnostic use"
)

var (
	// ErrNoImage is returned when nothing is displayed.
	ErrNoImage = errors.New("no image to export")
	// ErrUnsupportedImage is returned for images the reference engine did not decode.
	ErrUnsupportedImage = errors.New("image cannot be exported")
)

// ParseFormat accepts jpg, jpeg and png in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unknown export format %q, valid formats: jpg, png", s)
}

// Options controls an export.
type Options struct {
	Width, Height int
	Filename      string
	Format        Format
	Annotations   bool
	Warning       bool
	WarningText   string
	Quality       int // JPEG only
}

// DefaultOptions returns a 1024x1024 JPEG export named "Image" with
// annotations and the warning banner.
func DefaultOptions() Options {
	return Options{
		Width:       DefaultSize,
		Height:      DefaultSize,
		Filename:    DefaultFilename,
		Format:      FormatJPEG,
		Annotations: true,
		Warning:     true,
		WarningText: DefaultWarningText,
		Quality:     DefaultQuality,
	}
}

// normalized fills zero fields with defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if strings.TrimSpace(o.Filename) == "" {
		o.Filename = d.Filename
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.WarningText == "" {
		o.WarningText = d.WarningText
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = d.Quality
	}
	return o
}

// FileName returns the output file name with its extension.
func (o Options) FileName() string {
	o = o.normalized()
	return o.Filename + "." + string(o.Format)
}

// Request is what gets exported: an image, the presentation of the main
// viewport and the measurements shown on it.
type Request struct {
	Image        viewer.Image
	Viewport     viewer.ViewportState
	Measurements []viewer.Measurement
	Calibration  viewer.Calibration
}

// FromSession captures the current image of s.
func FromSession(s *viewer.Session) (Request, error) {
	surface := s.Surface()
	if surface == nil || surface.Image() == nil {
		return Request{}, ErrNoImage
	}
	vp, err := s.Viewport()
	if err != nil {
		return Request{}, err
	}
	return Request{
		Image:        surface.Image(),
		Viewport:     vp,
		Measurements: s.Measurements(),
		Calibration:  s.Calibration(),
	}, nil
}

// Render draws req on a fresh canvas of the requested size. The image is
// fitted to the canvas; window, level and inversion come from the request.
func Render(req Request, opts Options) (*image.RGBA, error) {
	opts = opts.normalized()
	if req.Image == nil {
		return nil, ErrNoImage
	}
	if _, ok := req.Image.(*render.Image); !ok {
		return nil, fmt.Errorf("%T: %w", req.Image, ErrUnsupportedImage)
	}

	surface := render.NewSurface(opts.Width, opts.Height)
	surface.Display(req.Image)
	vp := surface.Viewport()
	vp.WindowCenter = req.Viewport.WindowCenter
	vp.WindowWidth = req.Viewport.WindowWidth
	vp.Invert = req.Viewport.Invert
	surface.SetViewport(vp)

	canvas := surface.Canvas()
	out := image.NewRGBA(canvas.Bounds())
	draw.Draw(out, out.Bounds(), canvas, image.Point{}, draw.Src)

	if opts.Annotations {
		for _, m := range req.Measurements {
			drawMeasurement(out, surface.PixelToCanvas(m.Start), surface.PixelToCanvas(m.End), m.Label(req.Calibration))
		}
	}
	if opts.Warning {
		drawWarning(out, opts.WarningText)
	}
	return out, nil
}

// Encode writes img in the requested format.
func Encode(w io.Writer, img image.Image, opts Options) error {
	opts = opts.normalized()
	switch opts.Format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: opts.Quality})
	}
	return fmt.Errorf("unknown export format %q", opts.Format)
}

// WriteFile renders req and writes it to dir. It returns the written path.
func WriteFile(dir string, req Request, opts Options) (string, error) {
	img, err := Render(req, opts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, opts.FileName())
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Encode(f, img, opts); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

var (
	annotationGreen = color.RGBA{0x00, 0xff, 0x00, 0xff}
	labelBackground = color.RGBA{0x00, 0x00, 0x00, 0x99}
	warningRed      = color.RGBA{0xff, 0x44, 0x44, 0xff}
	warningBack     = color.RGBA{0x00, 0x00, 0x00, 0xb3}
)
