package viewer

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// GestureConfig holds the thresholds and sensitivities of the interpreter.
type GestureConfig struct {
	StackScrollThreshold    float64
	WheelThreshold          float64
	WheelCooldown           time.Duration
	WindowWidthSensitivity  float64
	WindowCenterSensitivity float64
	ZoomStep                float64
	ZoomMin                 float64
	ZoomMax                 float64
}

// DefaultGestureConfig returns the stock interaction settings.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		StackScrollThreshold:    30,
		WheelThreshold:          150,
		WheelCooldown:           30 * time.Millisecond,
		WindowWidthSensitivity:  2,
		WindowCenterSensitivity: 1,
		ZoomStep:                0.01,
		ZoomMin:                 0.1,
		ZoomMax:                 10,
	}
}

// Clock returns the current time.
type Clock func() time.Time

// toolHandler describes how one tool reacts to a drag to canvas point p,
// d away from the previous point. drag returns a navigation step, zero when
// none.
type toolHandler struct {
	drag func(g *Interpreter, p, d r2.Vec) int
}

var toolHandlers = map[Tool]toolHandler{
	ToolWindowLevel: {drag: func(g *Interpreter, _, d r2.Vec) int {
		g.adjustViewport(func(v *ViewportState) {
			v.WindowWidth += d.X * g.cfg.WindowWidthSensitivity
			v.WindowCenter += d.Y * g.cfg.WindowCenterSensitivity
		})
		return 0
	}},
	ToolPan: {drag: func(g *Interpreter, _, d r2.Vec) int {
		g.adjustViewport(func(v *ViewportState) {
			v.Translation = r2.Add(v.Translation, d)
		})
		return 0
	}},
	ToolZoom: {drag: func(g *Interpreter, _, d r2.Vec) int {
		g.adjustViewport(func(v *ViewportState) {
			v.Scale = clamp(v.Scale+d.Y*g.cfg.ZoomStep, g.cfg.ZoomMin, g.cfg.ZoomMax)
		})
		return 0
	}},
	ToolStackScroll: {drag: func(g *Interpreter, _, d r2.Vec) int {
		g.stackAcc += d.Y
		return g.release(&g.stackAcc, g.cfg.StackScrollThreshold)
	}},
	ToolRuler: {drag: func(g *Interpreter, p, _ r2.Vec) int {
		if _, drawing := g.store.InProgress(); drawing {
			g.store.Update(g.surface.CanvasToPixel(p))
		}
		return 0
	}},
}

// Interpreter turns pointer and wheel events into viewport changes,
// measurement edits and navigation steps. It never navigates itself: the
// step is returned to the caller. Not safe for concurrent use.
type Interpreter struct {
	cfg   GestureConfig
	clock Clock

	tool    Tool
	surface Surface
	store   *AnnotationStore

	instanceIndex int
	seriesID      string

	dragging     bool
	last         r2.Vec
	stackAcc     float64
	wheelAcc     float64
	blockedUntil time.Time

	painted Painted
}

// NewInterpreter returns an interpreter writing measurements to store.
func NewInterpreter(cfg GestureConfig, store *AnnotationStore, clock Clock) *Interpreter {
	if clock == nil {
		clock = time.Now
	}
	return &Interpreter{
		cfg:   cfg,
		clock: clock,
		tool:  ToolWindowLevel,
		store: store,
	}
}

// Tool returns the active tool.
func (g *Interpreter) Tool() Tool { return g.tool }

// SetTool changes the active tool. ToolReset is never stored.
func (g *Interpreter) SetTool(t Tool) {
	if t == ToolReset {
		return
	}
	g.tool = t
}

// Attach binds the interpreter to a fresh surface, or detaches it when s is
// nil, and drops any drag in progress.
func (g *Interpreter) Attach(s Surface) {
	g.surface = s
	g.dragging = false
	g.stackAcc = 0
}

// SetPosition records the instance that new measurements are anchored to.
func (g *Interpreter) SetPosition(instanceIndex int, seriesID string) {
	g.instanceIndex = instanceIndex
	g.seriesID = seriesID
}

// PointerDown starts a gesture at canvas point p.
func (g *Interpreter) PointerDown(p r2.Vec) {
	if g.surface == nil {
		return
	}
	if g.tool == ToolRuler {
		g.store.Begin(g.surface.CanvasToPixel(p), g.instanceIndex, g.seriesID)
	}
	g.dragging = true
	g.last = p
}

// PointerMove continues a gesture and returns a navigation step.
func (g *Interpreter) PointerMove(p r2.Vec) int {
	if g.surface == nil {
		return 0
	}
	if !g.dragging {
		return 0
	}
	d := r2.Sub(p, g.last)
	g.last = p
	handler, ok := toolHandlers[g.tool]
	if !ok {
		return 0
	}
	return handler.drag(g, p, d)
}

// PointerUp ends a gesture. With the ruler it commits the measurement.
func (g *Interpreter) PointerUp() (Measurement, bool) {
	g.dragging = false
	g.stackAcc = 0
	if g.tool == ToolRuler {
		return g.store.Commit()
	}
	return Measurement{}, false
}

// PointerLeave ends a gesture without committing anything.
func (g *Interpreter) PointerLeave() {
	g.dragging = false
	g.stackAcc = 0
	g.store.Cancel()
}

// Wheel accumulates a wheel delta and returns a navigation step. Events
// received during the cooldown after a step are discarded.
func (g *Interpreter) Wheel(deltaY float64) int {
	now := g.clock()
	if now.Before(g.blockedUntil) {
		return 0
	}
	g.wheelAcc += deltaY
	step := g.release(&g.wheelAcc, g.cfg.WheelThreshold)
	if step != 0 {
		g.blockedUntil = now.Add(g.cfg.WheelCooldown)
	}
	return step
}

// ResetWheel clears the wheel accumulator and cooldown.
func (g *Interpreter) ResetWheel() {
	g.wheelAcc = 0
	g.blockedUntil = time.Time{}
}

// release emits one step when |*acc| reaches threshold and resets it.
func (g *Interpreter) release(acc *float64, threshold float64) int {
	if math.Abs(*acc) < threshold {
		return 0
	}
	step := 1
	if *acc < 0 {
		step = -1
	}
	*acc = 0
	return step
}

func (g *Interpreter) adjustViewport(fn func(v *ViewportState)) {
	v := g.surface.Viewport()
	fn(&v)
	g.painted = g.surface.SetViewport(v)
}

// TakePainted returns the paint future of the last viewport change, nil
// when the viewport was not touched since the previous call.
func (g *Interpreter) TakePainted() Painted {
	p := g.painted
	g.painted = nil
	return p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
