package viewer

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// Measurement is a ruler segment anchored in image-pixel coordinates.
type Measurement struct {
	ID            uuid.UUID
	Start         r2.Vec
	End           r2.Vec
	InstanceIndex int
	SeriesID      string
}

// Distance returns the physical length of the measurement.
func (m Measurement) Distance(cal Calibration) float64 {
	d := r2.Sub(m.End, m.Start)
	return r2.Norm(r2.Vec{X: d.X * cal.X, Y: d.Y * cal.Y})
}

// Label formats the measurement length, prefixed with "~" when the
// calibration is estimated.
func (m Measurement) Label(cal Calibration) string {
	prefix := ""
	if cal.Estimated {
		prefix = "~"
	}
	return fmt.Sprintf("%s%.1f mm", prefix, m.Distance(cal))
}

// Midpoint returns the centre of the segment in image pixels.
func (m Measurement) Midpoint() r2.Vec {
	return r2.Scale(0.5, r2.Add(m.Start, m.End))
}

// matches reports whether m belongs to the given instance of the given
// series.
func (m Measurement) matches(instanceIndex int, seriesID string) bool {
	return m.InstanceIndex == instanceIndex && m.SeriesID == seriesID
}

// AnnotationStore holds committed measurements and at most one measurement
// being drawn. It is not safe for concurrent use; Session guards it.
type AnnotationStore struct {
	committed  []Measurement
	inProgress *Measurement
}

// NewAnnotationStore returns an empty store.
func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{}
}

// Begin starts a new measurement at p. It is a no-op while another
// measurement is in progress.
func (a *AnnotationStore) Begin(p r2.Vec, instanceIndex int, seriesID string) {
	if a.inProgress != nil {
		return
	}
	a.inProgress = &Measurement{
		ID:            uuid.New(),
		Start:         p,
		End:           p,
		InstanceIndex: instanceIndex,
		SeriesID:      seriesID,
	}
}

// Update moves the end point of the in-progress measurement.
func (a *AnnotationStore) Update(p r2.Vec) {
	if a.inProgress == nil {
		return
	}
	a.inProgress.End = p
}

// Commit stores a copy of the in-progress measurement.
func (a *AnnotationStore) Commit() (Measurement, bool) {
	if a.inProgress == nil {
		return Measurement{}, false
	}
	m := *a.inProgress
	a.committed = append(a.committed, m)
	a.inProgress = nil
	return m, true
}

// Cancel drops the in-progress measurement without committing it.
func (a *AnnotationStore) Cancel() {
	a.inProgress = nil
}

// InProgress returns the measurement currently being drawn.
func (a *AnnotationStore) InProgress() (Measurement, bool) {
	if a.inProgress == nil {
		return Measurement{}, false
	}
	return *a.inProgress, true
}

// Add stores an already complete measurement.
func (a *AnnotationStore) Add(m Measurement) Measurement {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	a.committed = append(a.committed, m)
	return m
}

// Remove deletes the committed measurement with the given ID.
func (a *AnnotationStore) Remove(id uuid.UUID) bool {
	for i, m := range a.committed {
		if m.ID == id {
			a.committed = append(a.committed[:i], a.committed[i+1:]...)
			return true
		}
	}
	return false
}

// ClearFor removes every committed measurement of one instance and returns
// how many were removed.
func (a *AnnotationStore) ClearFor(instanceIndex int, seriesID string) int {
	kept := a.committed[:0]
	for _, m := range a.committed {
		if !m.matches(instanceIndex, seriesID) {
			kept = append(kept, m)
		}
	}
	removed := len(a.committed) - len(kept)
	a.committed = kept
	return removed
}

// VisibleFor returns the committed measurements of one instance followed by
// the in-progress measurement when it belongs to the same instance.
func (a *AnnotationStore) VisibleFor(instanceIndex int, seriesID string) []Measurement {
	var visible []Measurement
	for _, m := range a.committed {
		if m.matches(instanceIndex, seriesID) {
			visible = append(visible, m)
		}
	}
	if a.inProgress != nil && a.inProgress.matches(instanceIndex, seriesID) {
		visible = append(visible, *a.inProgress)
	}
	return visible
}

// All returns a copy of every committed measurement.
func (a *AnnotationStore) All() []Measurement {
	return append([]Measurement(nil), a.committed...)
}
