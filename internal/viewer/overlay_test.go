package viewer

import (
	"testing"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestLayout_PlacesDeleteAffordance(t *testing.T) {
	surface := &fakeSurface{vp: ViewportState{Scale: 2, Translation: r2.Vec{X: 10, Y: 20}}}
	m := Measurement{
		ID:    uuid.New(),
		Start: r2.Vec{X: 0, Y: 0},
		End:   r2.Vec{X: 20, Y: 0},
	}
	cal := Calibration{X: 0.5, Y: 0.5}

	o := Layout(surface, []Measurement{m}, map[uuid.UUID]bool{m.ID: true}, cal)
	if len(o.Items) != 1 {
		t.Fatalf("Layout() returned %d items, want 1", len(o.Items))
	}
	item := o.Items[0]

	if item.Start != (r2.Vec{X: 10, Y: 20}) || item.End != (r2.Vec{X: 50, Y: 20}) {
		t.Errorf("canvas endpoints = %v %v, want (10,20) (50,20)", item.Start, item.End)
	}
	if item.Label != "10.0 mm" {
		t.Errorf("Label = %q, want %q", item.Label, "10.0 mm")
	}
	wantWidth := float64(len("10.0 mm")*7 + 10)
	if item.LabelWidth != wantWidth {
		t.Errorf("LabelWidth = %v, want %v", item.LabelWidth, wantWidth)
	}
	wantDelete := r2.Vec{X: 30 + wantWidth/2 + 10, Y: 20 - 11}
	if !item.Deletable || item.DeleteAt != wantDelete {
		t.Errorf("DeleteAt = %v (deletable %v), want %v", item.DeleteAt, item.Deletable, wantDelete)
	}
}

func TestOverlay_HitDelete(t *testing.T) {
	surface := &fakeSurface{vp: ViewportState{Scale: 1}}
	committed := Measurement{ID: uuid.New(), Start: r2.Vec{X: 0, Y: 100}, End: r2.Vec{X: 100, Y: 100}}
	drawing := Measurement{ID: uuid.New(), Start: r2.Vec{X: 0, Y: 300}, End: r2.Vec{X: 100, Y: 300}}

	o := Layout(surface, []Measurement{committed, drawing}, map[uuid.UUID]bool{committed.ID: true}, Uncalibrated)
	target := o.Items[0].DeleteAt

	tests := []struct {
		name string
		p    r2.Vec
		hit  bool
	}{
		{"centre", target, true},
		{"inside radius", r2.Add(target, r2.Vec{X: 5, Y: 5}), true},
		{"outside radius", r2.Add(target, r2.Vec{X: 9, Y: 0}), false},
		{"on the segment", r2.Vec{X: 50, Y: 100}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, hit := o.HitDelete(tc.p)
			if hit != tc.hit {
				t.Fatalf("HitDelete(%v) = %v, want %v", tc.p, hit, tc.hit)
			}
			if hit && id != committed.ID {
				t.Errorf("HitDelete returned %v, want %v", id, committed.ID)
			}
		})
	}

	if o.Items[1].Deletable {
		t.Error("measurement being drawn must not be deletable")
	}
}

func TestLayout_NilSurface(t *testing.T) {
	o := Layout(nil, []Measurement{{ID: uuid.New()}}, nil, Uncalibrated)
	if len(o.Items) != 0 {
		t.Errorf("Layout(nil) returned %d items, want 0", len(o.Items))
	}
}
