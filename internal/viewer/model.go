package viewer

import "strings"

// Instance is a single image (or document) of a series.
type Instance struct {
	Ref    ImageRef
	Source Source
	Number int
}

// Series is an ordered stack of instances.
type Series struct {
	ID          string
	Description string
	Modality    string
	Instances   []*Instance
}

// Study groups the series of one examination.
type Study struct {
	ID          string
	Description string
	Modality    string
	Series      []*Series
}

// SeriesByID returns the series with the given ID, or nil.
func (s *Study) SeriesByID(id string) *Series {
	for _, series := range s.Series {
		if series.ID == id {
			return series
		}
	}
	return nil
}

// documentModalities open directly as text, without pixel resolution.
var documentModalities = map[string]bool{
	"SR":  true,
	"DOC": true,
	"KO":  true,
}

// IsDocument reports whether the series holds documents rather than images.
func (s *Series) IsDocument() bool {
	return documentModalities[strings.ToUpper(strings.TrimSpace(s.Modality))]
}

// Len returns the number of instances in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Instances)
}
