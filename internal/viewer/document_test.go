package viewer

import (
	"context"
	"strings"
	"testing"

	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestReadableText(t *testing.T) {
	tests := []struct {
		name  string
		entry TagEntry
		keep  bool
	}{
		{"prose", TagEntry{Value: "No focal lesion identified.", Length: 27}, true},
		{"three letters", TagEntry{Value: "ABC", Length: 3}, true},
		{"two letters", TagEntry{Value: "MR", Length: 2}, false},
		{"padded short value", TagEntry{Value: " M ", Length: 3}, false},
		{"decimal number", TagEntry{Value: "0.488281", Length: 8}, false},
		{"no letters", TagEntry{Value: "2024-01-01 12:00", Length: 16}, false},
		{"hash like", TagEntry{Value: strings.Repeat("A1", 32), Length: 64}, false},
		{"oversized", TagEntry{Value: "Long embedded text", Length: 10000}, false},
		{"uid with letters kept short", TagEntry{Value: "1.2.3.ABC", Length: 9}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ReadableText([]TagEntry{tc.entry})
			if kept := len(got) == 1; kept != tc.keep {
				t.Errorf("ReadableText(%q) kept = %v, want %v", tc.entry.Value, kept, tc.keep)
			}
		})
	}
}

func TestBuildDocument(t *testing.T) {
	src := fakeSource{name: "report.dcm"}

	t.Run("text found", func(t *testing.T) {
		parser := &fakeParser{docs: map[string]fakeTags{
			"report.dcm": {tag.ImageComments: "Conclusion: normal study.", tag.PatientName: "DOE^JANE"},
		}}
		doc := BuildDocument(context.Background(), parser, src, DocumentTitleReport)
		if doc.Err != nil {
			t.Fatalf("unexpected error: %v", doc.Err)
		}
		if !strings.Contains(doc.Message(), "Conclusion: normal study.") {
			t.Errorf("Message() = %q", doc.Message())
		}
		if name, _ := doc.Metadata.Get("PatientName"); name != "DOE JANE" {
			t.Errorf("PatientName = %q, want %q", name, "DOE JANE")
		}
	})

	t.Run("nothing readable", func(t *testing.T) {
		parser := &fakeParser{docs: map[string]fakeTags{"report.dcm": {tag.Rows: "512"}}}
		doc := BuildDocument(context.Background(), parser, src, DocumentTitleFallback)
		if doc.Err != nil || doc.Message() != noReadableText {
			t.Errorf("Message() = %q, err %v", doc.Message(), doc.Err)
		}
	})

	t.Run("parser panic", func(t *testing.T) {
		doc := BuildDocument(context.Background(), &fakeParser{panic: true}, src, DocumentTitleFallback)
		if doc.Err == nil || !strings.Contains(doc.Message(), "parser exploded") {
			t.Errorf("Message() = %q, want the panic inline", doc.Message())
		}
	})

	t.Run("no source", func(t *testing.T) {
		doc := BuildDocument(context.Background(), &fakeParser{}, nil, DocumentTitleFallback)
		if doc.Err == nil {
			t.Error("expected an error without a source")
		}
	})
}
