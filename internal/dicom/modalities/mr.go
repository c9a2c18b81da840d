package modalities

import (
	"math/rand/v2"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// MRGenerator generates MR (Magnetic Resonance) specific metadata.
type MRGenerator struct{}

// Modality returns the MR modality type.
func (g *MRGenerator) Modality() Modality {
	return MR
}

// SOPClassUID returns the MR Image Storage SOP Class UID.
func (g *MRGenerator) SOPClassUID() string {
	return "1.2.840.10008.5.1.4.1.1.4"
}

// Scanners returns available MR scanner configurations.
func (g *MRGenerator) Scanners() []Scanner {
	return []Scanner{
		{Manufacturer: "SIEMENS", Model: "Skyra"},
		{Manufacturer: "GE MEDICAL SYSTEMS", Model: "Discovery MR750"},
		{Manufacturer: "PHILIPS", Model: "Ingenia"},
	}
}

// GenerateSeriesParams generates MR-specific parameters for a series.
func (g *MRGenerator) GenerateSeriesParams(scanner Scanner, rng *rand.Rand) SeriesParams {
	sequences := []string{"T1_MPRAGE", "T1_SE", "T2_FSE", "T2_FLAIR"}
	return SeriesParams{
		Modality:     MR,
		Scanner:      scanner,
		PixelSpacing: 0.5 + rng.Float64()*1.5, // 0.5-2.0 mm
		Spacing:      SpacingPixel,
		SequenceName: sequences[rng.IntN(len(sequences))],
		WindowCenter: 2048,
		WindowWidth:  4096,
		RescaleSlope: 1,
	}
}

// PixelConfig returns MR pixel data configuration.
func (g *MRGenerator) PixelConfig() PixelConfig {
	return PixelConfig{
		BitsAllocated: 16,
		BitsStored:    12,
		HighBit:       11,
		MinValue:      0,
		MaxValue:      4095,
		BaseValue:     2048,
	}
}

// AppendModalityElements appends MR-specific DICOM elements to a dataset.
func (g *MRGenerator) AppendModalityElements(ds *dicom.Dataset, params SeriesParams) error {
	ds.Elements = append(ds.Elements, spacingElements(params)...)
	ds.Elements = append(ds.Elements, windowElements(params)...)
	if params.SequenceName != "" {
		ds.Elements = append(ds.Elements, mustNewElement(tag.SequenceName, []string{params.SequenceName}))
	}
	return nil
}
