package dicom

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrsinham/dicomview/internal/dicom/modalities"
	"github.com/mrsinham/dicomview/internal/viewer"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func parseFile(t *testing.T, path string) viewer.TagDictionary {
	t.Helper()
	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource failed: %v", err)
	}
	dict, err := Parser{}.Parse(context.Background(), src)
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", path, err)
	}
	return dict
}

func TestParser_IntactFile(t *testing.T) {
	_, files := synthesizeSample(t)
	var target GeneratedFile
	for _, f := range files {
		if f.Modality == modalities.CT && !f.Bad {
			target = f
			break
		}
	}

	dict := parseFile(t, target.Path)

	if v, ok := dict.Lookup(tag.SOPInstanceUID); !ok || v != target.SOPInstanceUID {
		t.Errorf("SOPInstanceUID = %q, want %q", v, target.SOPInstanceUID)
	}
	if v, _ := dict.Lookup(tag.Rows); v != "64" {
		t.Errorf("Rows = %q, want 64", v)
	}
	if v, _ := dict.Lookup(tag.PixelSpacing); !strings.Contains(v, `\`) {
		t.Errorf("PixelSpacing = %q, want two values", v)
	}
	if _, ok := dict.Lookup(tag.ImagerPixelSpacing); ok {
		t.Error("CT file unexpectedly carries ImagerPixelSpacing")
	}
}

func TestParser_DamagedFileKeepsHeader(t *testing.T) {
	_, files := synthesizeSample(t)
	for _, f := range files {
		if !f.Bad {
			continue
		}
		dict := parseFile(t, f.Path)
		if v, ok := dict.Lookup(tag.SeriesInstanceUID); !ok || v != f.SeriesUID {
			t.Errorf("%s: SeriesInstanceUID = %q, want %q", f.Path, v, f.SeriesUID)
		}
	}
}

func TestParser_ReportEntries(t *testing.T) {
	_, files := synthesizeSample(t)
	var report GeneratedFile
	for _, f := range files {
		if f.Modality == modalities.SR {
			report = f
		}
	}

	dict := parseFile(t, report.Path)
	var found bool
	for _, e := range dict.Entries() {
		if e.Tag == tag.ImageComments {
			found = true
			if !strings.HasPrefix(e.Value, "Findings for ") {
				t.Errorf("ImageComments = %q", e.Value)
			}
			if e.Length < len(e.Value) {
				t.Errorf("Length %d shorter than value %q", e.Length, e.Value)
			}
		}
	}
	if !found {
		t.Error("report text missing from entries")
	}
}

func TestParser_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage")
	if err := os.WriteFile(garbage, []byte("definitely not DICOM"), 0644); err != nil {
		t.Fatal(err)
	}
	src, err := NewFileSource(garbage)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := (Parser{}).Parse(context.Background(), src); err == nil {
		t.Error("expected an error for a non-DICOM file")
	}
	if _, err := (Parser{}).Parse(context.Background(), nil); err == nil {
		t.Error("expected an error for a nil source")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Parser{}).Parse(ctx, src); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestTagDictionary_Lookup(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(tag.PatientName, []string{"DOE^JANE"}),
		mustNewElement(tag.PixelSpacing, []string{"0.5", "0.25"}),
		mustNewElement(tag.Rows, []int{256}),
		mustNewElement(tag.PatientName, []string{"SECOND^ENTRY"}),
	}}
	dict := NewTagDictionary(ds)

	tests := []struct {
		tag  tag.Tag
		want string
		ok   bool
	}{
		{tag.PatientName, "DOE^JANE", true},
		{tag.PixelSpacing, `0.5\0.25`, true},
		{tag.Rows, "256", true},
		{tag.Columns, "", false},
	}
	for _, tt := range tests {
		got, ok := dict.Lookup(tt.tag)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%v) = %q, %v; want %q, %v", tt.tag, got, ok, tt.want, tt.ok)
		}
	}
	if dict.Len() != 4 {
		t.Errorf("Len() = %d, want 4", dict.Len())
	}
}
