package modalities

import (
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// mustNewElement creates a new DICOM element, panicking on error.
func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// floatToDS converts a float64 to a DICOM Decimal String.
func floatToDS(f float64) string {
	return fmt.Sprintf("%.6g", f)
}

// spacingElements returns the spacing tag selected by params, if any.
func spacingElements(params SeriesParams) []*dicom.Element {
	value := []string{floatToDS(params.PixelSpacing), floatToDS(params.PixelSpacing)}
	switch params.Spacing {
	case SpacingPixel:
		return []*dicom.Element{mustNewElement(tag.PixelSpacing, value)}
	case SpacingImager:
		return []*dicom.Element{mustNewElement(tag.ImagerPixelSpacing, value)}
	}
	return nil
}

// windowElements returns the VOI window of params.
func windowElements(params SeriesParams) []*dicom.Element {
	return []*dicom.Element{
		mustNewElement(tag.WindowCenter, []string{floatToDS(params.WindowCenter)}),
		mustNewElement(tag.WindowWidth, []string{floatToDS(params.WindowWidth)}),
	}
}
