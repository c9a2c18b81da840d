package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrUnknownStudy  = errors.New("unknown study")
	ErrUnknownSeries = errors.New("unknown series")
	ErrNoSurface     = errors.New("no image displayed")
)

// Options configures a Session.
type Options struct {
	Engine   Engine
	Parser   Parser
	Gestures GestureConfig
	// Clock drives the wheel cooldown. Defaults to time.Now.
	Clock       Clock
	DefaultTool Tool
	// Placeholder replaces the position indicator when no image is shown.
	Placeholder string
	// Log receives progress lines. Nil keeps the session quiet.
	Log io.Writer
	// Dispatch runs navigation requested by gestures. Nil runs it inline
	// on the calling goroutine.
	Dispatch func(task func())
}

// Session is the navigation and annotation controller for one collection.
// Its methods are safe for concurrent use; engine loads never run under the
// session lock.
type Session struct {
	mu sync.Mutex

	engine   Engine
	parser   Parser
	dispatch func(task func())
	log      io.Writer

	studies []*Study
	study   *Study
	series  *Series
	// docSeries marks series opened directly as documents.
	docSeries bool

	index int
	bad   map[int]bool
	epoch uint64
	seq   uint64

	life     *lifecycle
	store    *AnnotationStore
	gestures *Interpreter

	placeholder string
	calibration Calibration
	metadata    Metadata
	document    *Document
	overlay     Overlay
	nav         NavStatus
}

// NewSession creates a session over studies. No series is selected.
func NewSession(studies []*Study, opts Options) (*Session, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("session requires an engine")
	}
	if opts.Gestures == (GestureConfig{}) {
		opts.Gestures = DefaultGestureConfig()
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	store := NewAnnotationStore()
	gestures := NewInterpreter(opts.Gestures, store, opts.Clock)
	gestures.SetTool(opts.DefaultTool)

	s := &Session{
		engine:      opts.Engine,
		parser:      opts.Parser,
		dispatch:    opts.Dispatch,
		log:         opts.Log,
		studies:     studies,
		bad:         make(map[int]bool),
		store:       store,
		gestures:    gestures,
		life:        newLifecycle(opts.Engine, gestures),
		placeholder: opts.Placeholder,
		calibration: Uncalibrated,
	}
	s.nav = computeNavStatus(0, 0, false, s.bad, s.placeholder)
	return s, nil
}

// Studies returns the studies of the collection.
func (s *Session) Studies() []*Study {
	return s.studies
}

// SelectSeries makes a series current and shows its first displayable
// instance. Document series open directly in textual mode.
func (s *Session) SelectSeries(ctx context.Context, studyIndex int, seriesID string) error {
	s.mu.Lock()
	if studyIndex < 0 || studyIndex >= len(s.studies) {
		s.mu.Unlock()
		return fmt.Errorf("select series: study %d: %w", studyIndex, ErrUnknownStudy)
	}
	study := s.studies[studyIndex]
	series := study.SeriesByID(seriesID)
	if series == nil {
		s.mu.Unlock()
		return fmt.Errorf("select series %q: %w", seriesID, ErrUnknownSeries)
	}

	s.epoch++
	s.study = study
	s.series = series
	s.docSeries = series.IsDocument()
	s.index = 0
	s.bad = make(map[int]bool)
	s.document = nil
	s.overlay = Overlay{}
	s.calibration = Uncalibrated
	s.metadata = Metadata{}
	s.store.Cancel()
	s.gestures.ResetWheel()
	req := s.newRequest()
	s.logf("selected series %s (%s, %d instances)\n", series.ID, series.Modality, series.Len())

	if s.docSeries || series.Len() == 0 {
		s.life.enterTextual()
		s.refreshNav()
		s.mu.Unlock()
		s.showDocument(ctx, req, 0, DocumentTitleReport)
		return nil
	}

	if err := s.life.prepare(); err != nil {
		s.logf("%v\n", err)
	}
	s.refreshNav()
	s.mu.Unlock()

	s.loadFirstValid(ctx, req)
	return nil
}

// Navigate moves dir instances from the current one. Out of range targets
// are ignored.
func (s *Session) Navigate(ctx context.Context, dir int) {
	s.mu.Lock()
	if s.series == nil || s.docSeries || dir == 0 {
		s.mu.Unlock()
		return
	}
	target := s.index + dir
	if target < 0 || target >= s.series.Len() {
		s.mu.Unlock()
		return
	}
	req := s.newRequest()
	s.mu.Unlock()

	s.goTo(ctx, req, target, sign(dir))
}

// Seek jumps to the instance at fraction frac of the stack, as done by
// dragging the scrollbar.
func (s *Session) Seek(ctx context.Context, frac float64) {
	s.mu.Lock()
	if s.series == nil || s.docSeries || s.series.Len() < 2 {
		s.mu.Unlock()
		return
	}
	frac = clamp(frac, 0, 1)
	target := int(math.Round(frac * float64(s.series.Len()-1)))
	if target == s.index && s.life.mode == ModePixel {
		s.mu.Unlock()
		return
	}
	req := s.newRequest()
	s.mu.Unlock()

	s.goTo(ctx, req, target, 1)
}

// SetActiveTool selects the drag tool. ToolReset resets the view instead.
func (s *Session) SetActiveTool(t Tool) {
	if t == ToolReset {
		s.ResetView()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Cancel()
	s.gestures.SetTool(t)
	s.relayout()
}

// ActiveTool returns the selected drag tool.
func (s *Session) ActiveTool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gestures.Tool()
}

// ResetView restores the default viewport and clears the measurements of
// the current instance.
func (s *Session) ResetView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life.surface == nil {
		return
	}
	s.store.ClearFor(s.index, s.seriesIDLocked())
	s.chainRedraw(s.life.track(s.life.surface.Reset()))
}

// AddMeasurement stores m. A measurement without a series belongs to the
// current series, and one without any anchor to the current instance.
func (s *Session) AddMeasurement(m Measurement) Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.SeriesID == "" {
		if m.InstanceIndex == 0 {
			m.InstanceIndex = s.index
		}
		m.SeriesID = s.seriesIDLocked()
	}
	m = s.store.Add(m)
	s.relayout()
	return m
}

// RemoveMeasurement deletes the measurement with the given ID.
func (s *Session) RemoveMeasurement(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.store.Remove(id)
	if removed {
		s.relayout()
	}
	return removed
}

// ClearMeasurements deletes the measurements of the current instance.
func (s *Session) ClearMeasurements() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.store.ClearFor(s.index, s.seriesIDLocked())
	s.relayout()
	return n
}

// Measurements returns the measurements visible on the current instance,
// the one being drawn included.
func (s *Session) Measurements() []Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.VisibleFor(s.index, s.seriesIDLocked())
}

// PointerDown handles a press at canvas point p. A press on a delete
// affordance removes the measurement and starts no gesture.
func (s *Session) PointerDown(p r2.Vec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life.surface == nil {
		return
	}
	if id, hit := s.overlay.HitDelete(p); hit {
		s.store.Remove(id)
		s.relayout()
		return
	}
	s.gestures.PointerDown(p)
	s.relayout()
}

// PointerMove handles pointer motion at canvas point p.
func (s *Session) PointerMove(p r2.Vec) {
	s.mu.Lock()
	step := s.gestures.PointerMove(p)
	if painted := s.gestures.TakePainted(); painted != nil {
		s.chainRedraw(s.life.track(painted))
	} else if s.gestures.Tool() == ToolRuler {
		s.relayout()
	}
	s.mu.Unlock()

	s.requestNavigate(step)
}

// PointerUp ends the current gesture.
func (s *Session) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.gestures.PointerUp(); ok {
		s.logf("measurement %s: %s\n", m.ID, m.Label(s.calibration))
	}
	s.relayout()
}

// PointerLeave aborts the current gesture.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gestures.PointerLeave()
	s.relayout()
}

// Wheel handles a wheel delta. It is ignored while the series has no
// navigable instances.
func (s *Session) Wheel(deltaY float64) {
	s.mu.Lock()
	if s.totalLocked() == 0 {
		s.mu.Unlock()
		return
	}
	step := s.gestures.Wheel(deltaY)
	s.mu.Unlock()

	s.requestNavigate(step)
}

func (s *Session) requestNavigate(step int) {
	if step == 0 {
		return
	}
	task := func() { s.Navigate(context.Background(), step) }
	if s.dispatch != nil {
		s.dispatch(task)
		return
	}
	task()
}

// CurrentIndex returns the index of the displayed instance.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Total returns the number of navigable instances.
func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

// IsEstimatedSpacing reports whether distances use the 1 mm fallback.
func (s *Session) IsEstimatedSpacing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calibration.Estimated
}

// Calibration returns the spacing of the displayed image.
func (s *Session) Calibration() Calibration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calibration
}

// Mode returns the display mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.life.mode
}

// NavStatus returns the navigation controls.
func (s *Session) NavStatus() NavStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav
}

// Metadata returns the information panel of the current instance.
func (s *Session) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

// Document returns the document shown in textual mode.
func (s *Session) Document() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.document == nil {
		return Document{}, false
	}
	return *s.document, true
}

// Overlay returns the annotation layer laid out after the last paint.
func (s *Session) Overlay() Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// Surface returns the active surface, nil in textual mode.
func (s *Session) Surface() Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.life.surface
}

// Viewport returns the viewport of the active surface.
func (s *Session) Viewport() (ViewportState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life.surface == nil || s.life.mode != ModePixel {
		return ViewportState{}, ErrNoSurface
	}
	return s.life.surface.Viewport(), nil
}

// Selection returns the selected study and series.
func (s *Session) Selection() (*Study, *Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.study, s.series
}

// BadIndices returns the instances known to fail decoding.
func (s *Session) BadIndices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for i := 0; i < s.series.Len(); i++ {
		if s.bad[i] {
			out = append(out, i)
		}
	}
	return out
}

// Close releases the active surface.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.life.teardown()
}

func (s *Session) totalLocked() int {
	if s.docSeries {
		return 0
	}
	return s.series.Len()
}

func (s *Session) seriesIDLocked() string {
	if s.series == nil {
		return ""
	}
	return s.series.ID
}

// chainRedraw lays the overlay out once p resolves. A completion that is
// not the latest paint of the same surface is dropped. Caller holds s.mu.
func (s *Session) chainRedraw(p Painted) {
	if p == nil {
		s.relayout()
		return
	}
	select {
	case <-p:
		s.relayout()
		return
	default:
	}
	surface, paints := s.life.surface, s.life.paints
	go func() {
		<-p
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.life.surface == surface && s.life.paints == paints {
			s.relayout()
		}
	}()
}

// relayout recomputes the overlay. Caller holds s.mu.
func (s *Session) relayout() {
	if s.life.surface == nil || s.life.mode != ModePixel {
		s.overlay = Overlay{}
		return
	}
	seriesID := s.seriesIDLocked()
	visible := s.store.VisibleFor(s.index, seriesID)
	committed := make(map[uuid.UUID]bool, len(visible))
	for _, m := range s.store.All() {
		committed[m.ID] = true
	}
	s.overlay = Layout(s.life.surface, visible, committed, s.calibration)
}

func (s *Session) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	fmt.Fprintf(s.log, format, args...)
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
