package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mrsinham/dicomview/internal/viewer"
)

// ErrForeignSurface is returned when disabling a surface this engine did
// not allocate.
var ErrForeignSurface = errors.New("surface not owned by this engine")

// Default canvas size.
const (
	DefaultWidth  = 512
	DefaultHeight = 512
)

// Engine loads files from disk and allocates Surfaces. It implements
// viewer.Engine; references are file paths.
type Engine struct {
	width, height int

	mu      sync.Mutex
	enabled map[*Surface]bool
}

// NewEngine returns an engine whose surfaces are width x height. Zero
// sizes use the defaults.
func NewEngine(width, height int) *Engine {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Engine{width: width, height: height, enabled: make(map[*Surface]bool)}
}

// Load decodes the first frame of the file at ref.
func (e *Engine) Load(ctx context.Context, ref viewer.ImageRef) (viewer.Image, error) {
	img, err := LoadFile(ctx, string(ref))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Enable allocates a surface.
func (e *Engine) Enable() (viewer.Surface, error) {
	s := NewSurface(e.width, e.height)
	e.mu.Lock()
	e.enabled[s] = true
	e.mu.Unlock()
	return s, nil
}

// Disable releases s. Releasing a surface twice is a no-op.
func (e *Engine) Disable(s viewer.Surface) error {
	surface, ok := s.(*Surface)
	if !ok || surface == nil {
		return fmt.Errorf("disable %T: %w", s, ErrForeignSurface)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.enabled[surface] {
		if surface.Disabled() {
			return nil
		}
		return ErrForeignSurface
	}
	delete(e.enabled, surface)
	surface.disable()
	return nil
}

// Enabled returns the number of live surfaces.
func (e *Engine) Enabled() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.enabled)
}
