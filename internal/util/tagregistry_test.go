package util

import (
	"strings"
	"testing"

	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestGetTagByName(t *testing.T) {
	tests := []struct {
		input string
		name  string
		tag   tag.Tag
		scope TagScope
		kind  ValueKind
	}{
		{"PatientName", "PatientName", tag.PatientName, ScopePatient, KindText},
		{"patientbirthdate", "PatientBirthDate", tag.PatientBirthDate, ScopePatient, KindDate},
		{"  Modality ", "Modality", tag.Modality, ScopeStudy, KindText},
		{"STUDYDATE", "StudyDate", tag.StudyDate, ScopeStudy, KindDate},
		{"seriesInstanceUID", "SeriesInstanceUID", tag.SeriesInstanceUID, ScopeSeries, KindText},
		{"SeriesNumber", "SeriesNumber", tag.SeriesNumber, ScopeSeries, KindNumber},
		{"windowcenter", "WindowCenter", tag.WindowCenter, ScopeImage, KindNumber},
		{"PixelSpacing", "PixelSpacing", tag.PixelSpacing, ScopeImage, KindText},
		{"imagerpixelspacing", "ImagerPixelSpacing", tag.ImagerPixelSpacing, ScopeImage, KindText},
		{"InstanceNumber", "InstanceNumber", tag.InstanceNumber, ScopeImage, KindNumber},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			info, err := GetTagByName(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.Name != tt.name || info.Tag != tt.tag {
				t.Errorf("got %s %v, want %s %v", info.Name, info.Tag, tt.name, tt.tag)
			}
			if info.Scope != tt.scope {
				t.Errorf("scope = %v, want %v", info.Scope, tt.scope)
			}
			if info.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", info.Kind, tt.kind)
			}
		})
	}
}

func TestGetTagByName_Unknown(t *testing.T) {
	tests := []struct {
		input   string
		suggest string // empty when no suggestion is expected
	}{
		{"PatinetName", "PatientName"},
		{"StudyDescripton", "StudyDescription"},
		{"WindowCentre", "WindowCenter"},
		{"PixelSpacng", "PixelSpacing"},
		{"Manufacurer", "Manufacturer"},
		{"CompletelyUnrelatedAttribute", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := GetTagByName(tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			msg := err.Error()
			if !strings.HasPrefix(msg, "unknown tag") {
				t.Errorf("error = %q", msg)
			}
			if tt.suggest == "" {
				if strings.Contains(msg, "did you mean") {
					t.Errorf("unexpected suggestion in %q", msg)
				}
				return
			}
			if !strings.Contains(msg, `did you mean "`+tt.suggest+`"`) {
				t.Errorf("error %q does not suggest %s", msg, tt.suggest)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"rows", "", 4},
		{"", "modality", 8},
		{"columns", "columns", 0},
		{"columns", "column", 1},
		{"kitten", "sitting", 3},
		{"windowwidth", "windowidth", 1},
		{"patientname", "patinetname", 2},
	}

	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTagScope_String(t *testing.T) {
	want := map[TagScope]string{
		ScopePatient: "Patient",
		ScopeStudy:   "Study",
		ScopeSeries:  "Series",
		ScopeImage:   "Image",
		TagScope(42): "Unknown",
	}
	for scope, s := range want {
		if scope.String() != s {
			t.Errorf("%d.String() = %q, want %q", int(scope), scope.String(), s)
		}
	}
}

func TestDisplayFields(t *testing.T) {
	fields := DisplayFields()
	if len(fields) == 0 {
		t.Fatal("no display fields")
	}

	// Patient rows come first, image rows last.
	for i := 1; i < len(fields); i++ {
		if fields[i].Scope < fields[i-1].Scope {
			t.Errorf("%s (%v) listed after %s (%v)", fields[i].Name, fields[i].Scope, fields[i-1].Name, fields[i-1].Scope)
		}
	}

	for _, f := range fields {
		if f.Label == "" {
			t.Errorf("%s has no label", f.Name)
		}
		info, err := GetTagByName(f.Name)
		if err != nil || info.Tag != f.Tag {
			t.Errorf("%s does not resolve to its own tag: %v", f.Name, err)
		}
	}

	fields[0].Label = "changed"
	if DisplayFields()[0].Label == "changed" {
		t.Error("DisplayFields exposes the package slice")
	}
}
