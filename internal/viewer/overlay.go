package viewer

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// labelCharWidth approximates the width of one label glyph in canvas pixels.
	labelCharWidth = 7
	labelPadding   = 10
	deleteOffset   = 10
	deleteLift     = 11
	deleteRadius   = 8
)

// OverlayItem is one measurement laid out in canvas coordinates.
type OverlayItem struct {
	MeasurementID uuid.UUID
	Start         r2.Vec
	End           r2.Vec
	Label         string
	LabelAt       r2.Vec
	LabelWidth    float64
	Estimated     bool
	// Deletable is false for the measurement being drawn.
	Deletable bool
	DeleteAt  r2.Vec
}

// Overlay is the annotation layer of the current instance.
type Overlay struct {
	Items []OverlayItem
}

// Layout maps measurements through the surface transform. committed lists
// the IDs that get a delete affordance.
func Layout(s Surface, measurements []Measurement, committed map[uuid.UUID]bool, cal Calibration) Overlay {
	var o Overlay
	if s == nil {
		return o
	}
	for _, m := range measurements {
		start := s.PixelToCanvas(m.Start)
		end := s.PixelToCanvas(m.End)
		mid := r2.Scale(0.5, r2.Add(start, end))
		label := m.Label(cal)
		width := float64(len(label)*labelCharWidth + labelPadding)
		item := OverlayItem{
			MeasurementID: m.ID,
			Start:         start,
			End:           end,
			Label:         label,
			LabelAt:       mid,
			LabelWidth:    width,
			Estimated:     cal.Estimated,
			Deletable:     committed[m.ID],
		}
		if item.Deletable {
			item.DeleteAt = r2.Vec{X: mid.X + width/2 + deleteOffset, Y: mid.Y - deleteLift}
		}
		o.Items = append(o.Items, item)
	}
	return o
}

// HitDelete returns the measurement whose delete affordance contains the
// canvas point p.
func (o Overlay) HitDelete(p r2.Vec) (uuid.UUID, bool) {
	for i := len(o.Items) - 1; i >= 0; i-- {
		item := o.Items[i]
		if !item.Deletable {
			continue
		}
		if r2.Norm(r2.Sub(p, item.DeleteAt)) <= deleteRadius {
			return item.MeasurementID, true
		}
	}
	return uuid.Nil, false
}
