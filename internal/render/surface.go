package render

import (
	"image"
	"math"
	"sync"

	"github.com/mrsinham/dicomview/internal/viewer"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/spatial/r2"
)

// Surface is an in-memory canvas. It implements viewer.Surface. Painting
// is synchronous, so every returned Painted is already closed.
type Surface struct {
	mu       sync.Mutex
	width    int
	height   int
	canvas   *image.Gray
	img      viewer.Image
	vp       viewer.ViewportState
	paints   int
	disabled bool
}

// NewSurface returns a blank canvas of the given size.
func NewSurface(width, height int) *Surface {
	return &Surface{
		width:  width,
		height: height,
		canvas: image.NewGray(image.Rect(0, 0, width, height)),
		vp:     viewer.ViewportState{Scale: 1, WindowWidth: 1},
	}
}

func donePaint() viewer.Painted {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Display shows img with its default viewport.
func (s *Surface) Display(img viewer.Image) viewer.Painted {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return donePaint()
	}
	s.img = img
	s.vp = s.fitLocked()
	s.paintLocked()
	return donePaint()
}

// Image returns the displayed image.
func (s *Surface) Image() viewer.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// Viewport returns the current viewport.
func (s *Surface) Viewport() viewer.ViewportState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp
}

// SetViewport repaints with v. Scale must be positive and the window at
// least one unit wide; other values are clamped.
func (s *Surface) SetViewport(v viewer.ViewportState) viewer.Painted {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return donePaint()
	}
	if v.Scale <= 0 || math.IsNaN(v.Scale) {
		v.Scale = s.vp.Scale
	}
	if v.WindowWidth < 1 {
		v.WindowWidth = 1
	}
	s.vp = v
	s.paintLocked()
	return donePaint()
}

// Reset fits the image again and restores its default window.
func (s *Surface) Reset() viewer.Painted {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return donePaint()
	}
	s.vp = s.fitLocked()
	s.paintLocked()
	return donePaint()
}

// PixelToCanvas maps image pixel coordinates to canvas coordinates.
func (s *Surface) PixelToCanvas(p r2.Vec) r2.Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r2.Add(r2.Scale(s.vp.Scale, p), s.vp.Translation)
}

// CanvasToPixel maps canvas coordinates to image pixel coordinates.
func (s *Surface) CanvasToPixel(p r2.Vec) r2.Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r2.Scale(1/s.vp.Scale, r2.Sub(p, s.vp.Translation))
}

// Size returns the canvas size.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// Canvas returns a copy of the last painted canvas.
func (s *Surface) Canvas() *image.Gray {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewGray(s.canvas.Rect)
	copy(out.Pix, s.canvas.Pix)
	return out
}

// Paints returns how many times the canvas was repainted.
func (s *Surface) Paints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paints
}

// Disabled reports whether the surface was released.
func (s *Surface) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

func (s *Surface) disable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return false
	}
	s.disabled = true
	s.img = nil
	return true
}

// fitLocked centres the image and scales it to fit the canvas.
func (s *Surface) fitLocked() viewer.ViewportState {
	vp := viewer.ViewportState{Scale: 1, WindowWidth: 1}
	if s.img == nil {
		return vp
	}
	w, h := s.img.Size()
	if w <= 0 || h <= 0 {
		return vp
	}
	vp.Scale = math.Min(float64(s.width)/float64(w), float64(s.height)/float64(h))
	vp.Translation = r2.Vec{
		X: (float64(s.width) - float64(w)*vp.Scale) / 2,
		Y: (float64(s.height) - float64(h)*vp.Scale) / 2,
	}
	if img, ok := s.img.(*Image); ok {
		vp.WindowCenter, vp.WindowWidth = img.DefaultWindow()
	}
	return vp
}

func (s *Surface) paintLocked() {
	s.paints++
	clear(s.canvas.Pix)
	img, ok := s.img.(*Image)
	if !ok {
		return
	}
	src := ApplyVOI(img, s.vp.WindowCenter, s.vp.WindowWidth, s.vp.Invert)
	Project(s.canvas, src, s.vp.Scale, s.vp.Translation)
}

// ApplyVOI maps img through a linear window into 8-bit gray levels.
func ApplyVOI(img *Image, center, width float64, invert bool) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.width, img.height))
	for i, v := range img.pixels {
		out.Pix[i] = WindowLevel(v, center, width, invert)
	}
	return out
}

// WindowLevel applies the linear VOI function to one value.
func WindowLevel(v, center, width float64, invert bool) uint8 {
	if width < 1 {
		width = 1
	}
	var y float64
	switch lo, hi := center-0.5-(width-1)/2, center-0.5+(width-1)/2; {
	case v <= lo:
		y = 0
	case v > hi:
		y = 255
	default:
		y = ((v-(center-0.5))/(width-1) + 0.5) * 255
	}
	if invert {
		y = 255 - y
	}
	return uint8(math.Round(math.Max(0, math.Min(255, y))))
}

// Project draws src onto dst scaled by scale and shifted by t.
func Project(dst draw.Image, src image.Image, scale float64, t r2.Vec) {
	m := f64.Aff3{
		scale, 0, t.X,
		0, scale, t.Y,
	}
	draw.ApproxBiLinear.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
}
