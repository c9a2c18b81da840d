package viewer

import (
	"testing"

	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestResolveSpacing(t *testing.T) {
	tests := []struct {
		name string
		img  Image
		want Calibration
	}{
		{
			name: "nil image",
			img:  nil,
			want: Uncalibrated,
		},
		{
			name: "engine spacing wins over tags",
			img: &fakeImage{row: 0.7, col: 0.4, hasSpacing: true, tags: fakeTags{
				tag.PixelSpacing: `0.1\0.1`,
			}},
			want: Calibration{X: 0.4, Y: 0.7},
		},
		{
			name: "pixel spacing tag row then column",
			img:  &fakeImage{tags: fakeTags{tag.PixelSpacing: `0.8\0.6`}},
			want: Calibration{X: 0.6, Y: 0.8},
		},
		{
			name: "imager spacing when pixel spacing missing",
			img:  &fakeImage{tags: fakeTags{tag.ImagerPixelSpacing: `0.143\0.143`}},
			want: Calibration{X: 0.143, Y: 0.143},
		},
		{
			name: "malformed pixel spacing falls through to imager spacing",
			img: &fakeImage{tags: fakeTags{
				tag.PixelSpacing:       `abc\def`,
				tag.ImagerPixelSpacing: `0.2\0.3`,
			}},
			want: Calibration{X: 0.3, Y: 0.2},
		},
		{
			name: "zero engine spacing ignored",
			img:  &fakeImage{row: 0, col: 0.5, hasSpacing: true, tags: fakeTags{tag.PixelSpacing: `1.5\1.5`}},
			want: Calibration{X: 1.5, Y: 1.5},
		},
		{
			name: "negative tag spacing",
			img:  &fakeImage{tags: fakeTags{tag.PixelSpacing: `-0.5\0.5`}},
			want: Uncalibrated,
		},
		{
			name: "single value",
			img:  &fakeImage{tags: fakeTags{tag.PixelSpacing: `0.5`}},
			want: Uncalibrated,
		},
		{
			name: "no tags at all",
			img:  &fakeImage{},
			want: Uncalibrated,
		},
		{
			name: "panicking dictionary",
			img:  &fakeImage{tags: panicTags{}},
			want: Uncalibrated,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveSpacing(tc.img)
			if got != tc.want {
				t.Errorf("ResolveSpacing() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseSpacing(t *testing.T) {
	tests := []struct {
		raw      string
		row, col float64
		ok       bool
	}{
		{`0.5\0.25`, 0.5, 0.25, true},
		{` 1 \ 2 `, 1, 2, true},
		{`0.5\0.25\9`, 0.5, 0.25, true},
		{`0\1`, 0, 0, false},
		{`1\Inf`, 0, 0, false},
		{`NaN\1`, 0, 0, false},
		{``, 0, 0, false},
		{`1,2`, 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			row, col, ok := ParseSpacing(tc.raw)
			if ok != tc.ok || row != tc.row || col != tc.col {
				t.Errorf("ParseSpacing(%q) = (%v, %v, %v), want (%v, %v, %v)",
					tc.raw, row, col, ok, tc.row, tc.col, tc.ok)
			}
		})
	}
}
