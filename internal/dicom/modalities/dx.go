package modalities

import (
	"math/rand/v2"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// DXGenerator generates projection radiography metadata. The pixel size is
// only known at the detector plane, so PixelSpacing is never written.
type DXGenerator struct{}

// Modality returns the DX modality type.
func (g *DXGenerator) Modality() Modality {
	return DX
}

// SOPClassUID returns the Digital X-Ray Image Storage (for presentation) UID.
func (g *DXGenerator) SOPClassUID() string {
	return "1.2.840.10008.5.1.4.1.1.1.1"
}

// Scanners returns available radiography systems.
func (g *DXGenerator) Scanners() []Scanner {
	return []Scanner{
		{Manufacturer: "CARESTREAM", Model: "DRX-Evolution"},
		{Manufacturer: "FUJIFILM", Model: "FDR Smart X"},
	}
}

// GenerateSeriesParams generates DX-specific parameters for a series.
func (g *DXGenerator) GenerateSeriesParams(scanner Scanner, rng *rand.Rand) SeriesParams {
	return SeriesParams{
		Modality:     DX,
		Scanner:      scanner,
		PixelSpacing: 0.1 + rng.Float64()*0.1, // 0.1-0.2 mm
		Spacing:      SpacingImager,
		KVP:          70 + float64(rng.IntN(5))*10,
		WindowCenter: 2048,
		WindowWidth:  4096,
		RescaleSlope: 1,
	}
}

// PixelConfig returns DX pixel data configuration.
func (g *DXGenerator) PixelConfig() PixelConfig {
	return PixelConfig{
		BitsAllocated: 16,
		BitsStored:    12,
		HighBit:       11,
		MinValue:      0,
		MaxValue:      4095,
		BaseValue:     1600,
	}
}

// AppendModalityElements appends DX-specific DICOM elements to a dataset.
func (g *DXGenerator) AppendModalityElements(ds *dicom.Dataset, params SeriesParams) error {
	ds.Elements = append(ds.Elements, spacingElements(params)...)
	ds.Elements = append(ds.Elements, windowElements(params)...)
	ds.Elements = append(ds.Elements, mustNewElement(tag.KVP, []string{floatToDS(params.KVP)}))
	return nil
}
