package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/spatial/r2"
)

var errDecode = errors.New("decode failed")

type fakeTags map[tag.Tag]string

func (f fakeTags) Lookup(t tag.Tag) (string, bool) {
	v, ok := f[t]
	return v, ok
}

func (f fakeTags) Entries() []TagEntry {
	var out []TagEntry
	for t, v := range f {
		out = append(out, TagEntry{Tag: t, Value: v, Length: len(v)})
	}
	return out
}

type panicTags struct{}

func (panicTags) Lookup(tag.Tag) (string, bool) { panic("corrupt dictionary") }

type fakeImage struct {
	width, height int
	row, col      float64
	hasSpacing    bool
	tags          TagLookup
}

func (f *fakeImage) Size() (int, int) { return f.width, f.height }

func (f *fakeImage) PixelSpacing() (float64, float64, bool) {
	return f.row, f.col, f.hasSpacing
}

func (f *fakeImage) Tags() TagLookup { return f.tags }

func closedPaint() Painted {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// fakeSurface maps pixels to canvas with canvas = pixel*Scale + Translation.
type fakeSurface struct {
	id       int
	img      Image
	vp       ViewportState
	disabled bool
}

func defaultViewport() ViewportState {
	return ViewportState{Scale: 1, WindowWidth: 400, WindowCenter: 40}
}

func (s *fakeSurface) Display(img Image) Painted {
	s.img = img
	s.vp = defaultViewport()
	return closedPaint()
}

func (s *fakeSurface) Image() Image             { return s.img }
func (s *fakeSurface) Viewport() ViewportState  { return s.vp }
func (s *fakeSurface) Reset() Painted           { s.vp = defaultViewport(); return closedPaint() }
func (s *fakeSurface) SetViewport(v ViewportState) Painted {
	s.vp = v
	return closedPaint()
}

func (s *fakeSurface) PixelToCanvas(p r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(s.vp.Scale, p), s.vp.Translation)
}

func (s *fakeSurface) CanvasToPixel(p r2.Vec) r2.Vec {
	return r2.Scale(1/s.vp.Scale, r2.Sub(p, s.vp.Translation))
}

type fakeEngine struct {
	mu         sync.Mutex
	images     map[ImageRef]Image
	fail       map[ImageRef]bool
	gates      map[ImageRef]chan struct{}
	loads      []ImageRef
	surfaces   []*fakeSurface
	disabled   int
	disableErr error
	enableErr  error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		images: make(map[ImageRef]Image),
		fail:   make(map[ImageRef]bool),
		gates:  make(map[ImageRef]chan struct{}),
	}
}

func (e *fakeEngine) Load(ctx context.Context, ref ImageRef) (Image, error) {
	e.mu.Lock()
	e.loads = append(e.loads, ref)
	gate := e.gates[ref]
	e.mu.Unlock()

	if gate != nil {
		<-gate
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail[ref] {
		return nil, fmt.Errorf("load %s: %w", ref, errDecode)
	}
	if img, ok := e.images[ref]; ok {
		return img, nil
	}
	return &fakeImage{width: 64, height: 64, row: 0.5, col: 0.5, hasSpacing: true}, nil
}

func (e *fakeEngine) Enable() (Surface, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.enableErr != nil {
		return nil, e.enableErr
	}
	s := &fakeSurface{id: len(e.surfaces), vp: defaultViewport()}
	e.surfaces = append(e.surfaces, s)
	return s, nil
}

func (e *fakeEngine) Disable(s Surface) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	fs := s.(*fakeSurface)
	if !fs.disabled {
		fs.disabled = true
		e.disabled++
	}
	return e.disableErr
}

func (e *fakeEngine) loadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.loads)
}

func (e *fakeEngine) hold(ref ImageRef) chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	gate := make(chan struct{})
	e.gates[ref] = gate
	return gate
}

type fakeSource struct {
	name string
}

func (s fakeSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.name)), nil
}

func (s fakeSource) Name() string { return s.name }

type fakeParser struct {
	docs  map[string]fakeTags
	fail  map[string]error
	panic bool
}

func (p *fakeParser) Parse(ctx context.Context, src Source) (TagDictionary, error) {
	if p.panic {
		panic("parser exploded")
	}
	if err := p.fail[src.Name()]; err != nil {
		return nil, err
	}
	if doc, ok := p.docs[src.Name()]; ok {
		return doc, nil
	}
	return fakeTags{}, nil
}

func ref(seriesID string, i int) ImageRef {
	return ImageRef(fmt.Sprintf("%s/%d", seriesID, i))
}

func newSeries(id, modality string, n int) *Series {
	s := &Series{ID: id, Description: id, Modality: modality}
	for i := 0; i < n; i++ {
		r := ref(id, i)
		s.Instances = append(s.Instances, &Instance{
			Ref:    r,
			Source: fakeSource{name: string(r)},
			Number: i + 1,
		})
	}
	return s
}

func newTestSession(t *testing.T, engine *fakeEngine, parser *fakeParser, series ...*Series) *Session {
	t.Helper()
	study := &Study{ID: "study-1", Description: "Study", Modality: "MR", Series: series}
	s, err := NewSession([]*Study{study}, Options{Engine: engine, Parser: parser})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}
