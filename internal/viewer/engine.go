// Package viewer implements the navigation and annotation controller of the
// image viewer: instance resolution with fallback, gesture interpretation,
// ruler measurements and the lifecycle of the rendering surface.
//
// Pixel decoding and drawing are delegated to an Engine, metadata parsing to
// a Parser. Both are consumed through the interfaces declared here.
package viewer

import (
	"context"
	"io"

	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/spatial/r2"
)

// ImageRef is an opaque image reference understood by the Engine.
type ImageRef string

// Source reopens the original bytes of an instance for re-parsing.
type Source interface {
	Open() (io.ReadCloser, error)
	Name() string
}

// TagEntry is one string-valued element of a parsed instance.
type TagEntry struct {
	Tag    tag.Tag
	Value  string
	Length int // raw value length in bytes
}

// TagLookup resolves a tag to its string value.
type TagLookup interface {
	Lookup(t tag.Tag) (string, bool)
}

// TagDictionary is the result of parsing an instance's metadata.
type TagDictionary interface {
	TagLookup
	Entries() []TagEntry
}

// Parser parses the metadata of an instance.
type Parser interface {
	Parse(ctx context.Context, src Source) (TagDictionary, error)
}

// Image is a decoded instance as reported by the Engine.
type Image interface {
	Size() (width, height int)
	// PixelSpacing returns the physical row (Y) and column (X) spacing the
	// engine derived for the image, if any.
	PixelSpacing() (row, col float64, ok bool)
	// Tags returns the metadata dictionary of the image, nil when the engine
	// does not expose one.
	Tags() TagLookup
}

// ViewportState is the engine-owned presentation state of a surface.
type ViewportState struct {
	Scale        float64
	Translation  r2.Vec
	WindowWidth  float64
	WindowCenter float64
	Invert       bool
}

// Painted is closed once the surface has finished repainting.
type Painted <-chan struct{}

// Surface is a rendering target allocated by the Engine.
type Surface interface {
	Display(img Image) Painted
	Image() Image
	Viewport() ViewportState
	SetViewport(v ViewportState) Painted
	// Reset restores the default viewport for the displayed image.
	Reset() Painted
	PixelToCanvas(p r2.Vec) r2.Vec
	CanvasToPixel(p r2.Vec) r2.Vec
}

// Engine decodes images and allocates rendering surfaces.
type Engine interface {
	Load(ctx context.Context, ref ImageRef) (Image, error)
	Enable() (Surface, error)
	// Disable releases a surface. Disabling twice is not an error.
	Disable(s Surface) error
}
