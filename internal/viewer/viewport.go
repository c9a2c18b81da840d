package viewer

import "fmt"

// Mode is the lifecycle state of the display area.
type Mode int

const (
	// ModeUninitialized means no instance has been shown since the last
	// series selection.
	ModeUninitialized Mode = iota
	// ModePixel means an image is displayed on a live surface.
	ModePixel
	// ModeTextual means the surface is gone and a document is shown.
	ModeTextual
)

// String returns a human readable mode name.
func (m Mode) String() string {
	switch m {
	case ModePixel:
		return "pixel"
	case ModeTextual:
		return "textual"
	default:
		return "uninitialized"
	}
}

// lifecycle owns the single active surface. Session holds its lock while
// calling into it.
type lifecycle struct {
	engine   Engine
	gestures *Interpreter

	mode    Mode
	surface Surface
	// paints counts Display/SetViewport/Reset calls so a late paint
	// completion can tell whether it is still the latest one.
	paints uint64
}

func newLifecycle(engine Engine, gestures *Interpreter) *lifecycle {
	return &lifecycle{engine: engine, gestures: gestures}
}

// prepare discards the current surface and enables a fresh one with the
// gesture interpreter attached.
func (l *lifecycle) prepare() error {
	l.teardown()
	s, err := l.engine.Enable()
	if err != nil {
		return fmt.Errorf("enable surface: %w", err)
	}
	l.surface = s
	l.gestures.Attach(s)
	l.mode = ModeUninitialized
	return nil
}

// teardown disables the current surface. Errors and panics from the engine
// are ignored: the surface is dropped either way.
func (l *lifecycle) teardown() {
	l.gestures.Attach(nil)
	s := l.surface
	l.surface = nil
	if s == nil {
		return
	}
	func() {
		defer func() { _ = recover() }()
		_ = l.engine.Disable(s)
	}()
}

// display shows img, allocating a surface when coming back from textual
// mode.
func (l *lifecycle) display(img Image) (Painted, error) {
	if l.surface == nil {
		if err := l.prepare(); err != nil {
			return nil, err
		}
	}
	l.mode = ModePixel
	l.paints++
	return l.surface.Display(img), nil
}

// track records a viewport repaint triggered outside display.
func (l *lifecycle) track(p Painted) Painted {
	l.paints++
	return p
}

// enterTextual drops the surface in favour of the document view.
func (l *lifecycle) enterTextual() {
	l.teardown()
	l.mode = ModeTextual
}
