package render

import (
	"context"
	"errors"
	"math"
	"testing"

	dcmio "github.com/mrsinham/dicomview/internal/dicom"
	"github.com/mrsinham/dicomview/internal/dicom/modalities"
	"github.com/mrsinham/dicomview/internal/viewer"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestWindowLevel(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		center float64
		width  float64
		invert bool
		want   uint8
	}{
		{"below window", -200, 40, 400, false, 0},
		{"above window", 300, 40, 400, false, 255},
		{"centre", 40, 40, 400, false, 128},
		{"centre inverted", 40, 40, 400, true, 127},
		{"below inverted", -1000, 40, 400, true, 255},
		{"degenerate width", 100, 100, 0, false, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WindowLevel(tt.v, tt.center, tt.width, tt.invert); got != tt.want {
				t.Errorf("WindowLevel(%v, %v, %v, %v) = %d, want %d", tt.v, tt.center, tt.width, tt.invert, got, tt.want)
			}
		})
	}
}

func TestAutoWindow(t *testing.T) {
	center, width := AutoWindow([]float64{0, 10, 20, 30})
	if center != 15 || width != 30 {
		t.Errorf("AutoWindow() = %v/%v, want 15/30", center, width)
	}

	center, width = AutoWindow([]float64{7})
	if center != 7 || width != 1 {
		t.Errorf("AutoWindow(single) = %v/%v, want 7/1", center, width)
	}

	if _, width := AutoWindow(nil); width != 1 {
		t.Errorf("AutoWindow(nil) width = %v, want 1", width)
	}
}

func uniformImage(t *testing.T, w, h int, v float64) *Image {
	t.Helper()
	pixels := make([]float64, w*h)
	for i := range pixels {
		pixels[i] = v
	}
	img, err := NewImage(w, h, pixels)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	return img
}

func TestNewImage_Errors(t *testing.T) {
	if _, err := NewImage(2, 2, []float64{1, 2, 3}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("NewImage() error = %v, want ErrUnsupported", err)
	}
	if _, err := NewImage(0, 2, nil); err == nil {
		t.Error("expected an error for an empty image")
	}
}

func TestSurface_DisplayFits(t *testing.T) {
	s := NewSurface(100, 100)
	s.Display(uniformImage(t, 10, 20, 50))

	vp := s.Viewport()
	if vp.Scale != 5 {
		t.Errorf("Scale = %v, want 5", vp.Scale)
	}
	if vp.Translation != (r2.Vec{X: 25, Y: 0}) {
		t.Errorf("Translation = %v, want (25, 0)", vp.Translation)
	}

	p := r2.Vec{X: 3, Y: 7}
	c := s.PixelToCanvas(p)
	if c != (r2.Vec{X: 40, Y: 35}) {
		t.Errorf("PixelToCanvas(%v) = %v", p, c)
	}
	if back := s.CanvasToPixel(c); math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Errorf("CanvasToPixel(PixelToCanvas(p)) = %v, want %v", back, p)
	}
}

func TestSurface_Paint(t *testing.T) {
	s := NewSurface(100, 100)
	img := uniformImage(t, 10, 20, 100)

	<-s.Display(img)
	vp := s.Viewport()
	vp.WindowCenter, vp.WindowWidth = 0, 10
	<-s.SetViewport(vp)

	if s.Paints() != 2 {
		t.Errorf("Paints() = %d, want 2", s.Paints())
	}
	canvas := s.Canvas()
	if got := canvas.GrayAt(50, 50).Y; got != 255 {
		t.Errorf("centre pixel = %d, want 255", got)
	}
	if got := canvas.GrayAt(5, 50).Y; got != 0 {
		t.Errorf("letterbox pixel = %d, want 0", got)
	}

	vp.Invert = true
	s.SetViewport(vp)
	if got := s.Canvas().GrayAt(50, 50).Y; got != 0 {
		t.Errorf("inverted centre pixel = %d, want 0", got)
	}

	s.Reset()
	if got := s.Viewport(); got.Invert || got.Scale != 5 {
		t.Errorf("Reset() viewport = %+v", got)
	}
}

func TestSurface_SetViewportClamps(t *testing.T) {
	s := NewSurface(10, 10)
	s.Display(uniformImage(t, 10, 10, 1))
	s.SetViewport(viewer.ViewportState{Scale: -1, WindowWidth: 0})
	vp := s.Viewport()
	if vp.Scale != 1 || vp.WindowWidth != 1 {
		t.Errorf("SetViewport did not clamp: %+v", vp)
	}
}

type otherSurface struct{ viewer.Surface }

func TestEngine_EnableDisable(t *testing.T) {
	e := NewEngine(0, 0)
	s, err := e.Enable()
	if err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if w, h := s.(*Surface).Size(); w != DefaultWidth || h != DefaultHeight {
		t.Errorf("surface size = %dx%d", w, h)
	}
	if e.Enabled() != 1 {
		t.Errorf("Enabled() = %d, want 1", e.Enabled())
	}

	for i := 0; i < 2; i++ {
		if err := e.Disable(s); err != nil {
			t.Errorf("Disable #%d failed: %v", i+1, err)
		}
	}
	if e.Enabled() != 0 {
		t.Errorf("Enabled() = %d after disable", e.Enabled())
	}

	paints := s.(*Surface).Paints()
	s.Display(uniformImage(t, 4, 4, 1))
	if s.(*Surface).Paints() != paints || s.Image() != nil {
		t.Error("a disabled surface kept painting")
	}

	if err := e.Disable(otherSurface{}); !errors.Is(err, ErrForeignSurface) {
		t.Errorf("Disable(foreign) error = %v, want ErrForeignSurface", err)
	}
	if err := e.Disable(NewSurface(1, 1)); !errors.Is(err, ErrForeignSurface) {
		t.Errorf("Disable(unknown) error = %v, want ErrForeignSurface", err)
	}
}

func TestEngine_LoadSynthesized(t *testing.T) {
	dir := t.TempDir()
	files, err := dcmio.Synthesize(dcmio.SynthOptions{
		OutputDir: dir, Seed: 3, Width: 32, Height: 24, Quiet: true,
		Series: []dcmio.SeriesSpec{
			{Description: "CT", Modality: modalities.CT, Images: 2, Bad: []int{2}},
			{Description: "DX", Modality: modalities.DX, Images: 1},
			{Description: "SR", Modality: modalities.SR, Images: 1},
		},
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	e := NewEngine(64, 64)
	ctx := context.Background()

	t.Run("calibrated CT", func(t *testing.T) {
		img, err := e.Load(ctx, viewer.ImageRef(files[0].Path))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if w, h := img.Size(); w != 32 || h != 24 {
			t.Errorf("Size() = %dx%d, want 32x24", w, h)
		}
		if _, _, ok := img.PixelSpacing(); !ok {
			t.Error("CT image has no spacing")
		}
		ri := img.(*Image)
		for y := 0; y < 24; y++ {
			for x := 0; x < 32; x++ {
				if v := ri.At(x, y); v < -1024 || v > 3071 {
					t.Fatalf("pixel (%d,%d) = %v outside the rescaled range", x, y, v)
				}
			}
		}
		if _, width := ri.DefaultWindow(); width < 1 {
			t.Errorf("default window width = %v", width)
		}
	})

	t.Run("truncated pixel data", func(t *testing.T) {
		if _, err := e.Load(ctx, viewer.ImageRef(files[1].Path)); err == nil {
			t.Error("expected a decode error")
		}
	})

	t.Run("imager spacing only", func(t *testing.T) {
		img, err := e.Load(ctx, viewer.ImageRef(files[2].Path))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if _, _, ok := img.PixelSpacing(); ok {
			t.Error("engine reported PixelSpacing for a DX image")
		}
		if cal := viewer.ResolveSpacing(img); cal.Estimated {
			t.Error("ImagerPixelSpacing was not picked up from the tags")
		}
	})

	t.Run("report", func(t *testing.T) {
		if _, err := e.Load(ctx, viewer.ImageRef(files[3].Path)); !errors.Is(err, ErrNoPixelData) {
			t.Errorf("Load(SR) error = %v, want ErrNoPixelData", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := e.Load(ctx, "does-not-exist.dcm"); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}
