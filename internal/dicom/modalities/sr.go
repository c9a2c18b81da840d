package modalities

import (
	"math/rand/v2"

	"github.com/suyashkumar/dicom"
)

// SRGenerator generates structured report metadata. Reports carry text and
// no pixel data.
type SRGenerator struct{}

// Modality returns the SR modality type.
func (g *SRGenerator) Modality() Modality {
	return SR
}

// SOPClassUID returns the Basic Text SR Storage UID.
func (g *SRGenerator) SOPClassUID() string {
	return "1.2.840.10008.5.1.4.1.1.88.11"
}

// Scanners returns the reporting systems.
func (g *SRGenerator) Scanners() []Scanner {
	return []Scanner{{Manufacturer: "DICOMVIEW", Model: "Report Writer"}}
}

// GenerateSeriesParams returns report parameters.
func (g *SRGenerator) GenerateSeriesParams(scanner Scanner, rng *rand.Rand) SeriesParams {
	return SeriesParams{Modality: SR, Scanner: scanner, Spacing: SpacingNone}
}

// PixelConfig returns the zero configuration.
func (g *SRGenerator) PixelConfig() PixelConfig {
	return PixelConfig{}
}

// AppendModalityElements adds nothing; report text is written by the caller.
func (g *SRGenerator) AppendModalityElements(ds *dicom.Dataset, params SeriesParams) error {
	return nil
}
