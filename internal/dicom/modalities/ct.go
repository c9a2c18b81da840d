package modalities

import (
	"math/rand/v2"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// CTGenerator generates CT (Computed Tomography) specific metadata.
type CTGenerator struct{}

// Modality returns the CT modality type.
func (g *CTGenerator) Modality() Modality {
	return CT
}

// SOPClassUID returns the CT Image Storage SOP Class UID.
func (g *CTGenerator) SOPClassUID() string {
	return "1.2.840.10008.5.1.4.1.1.2"
}

// Scanners returns available CT scanner configurations.
func (g *CTGenerator) Scanners() []Scanner {
	return []Scanner{
		{Manufacturer: "SIEMENS", Model: "SOMATOM Force"},
		{Manufacturer: "GE MEDICAL SYSTEMS", Model: "Revolution CT"},
		{Manufacturer: "CANON", Model: "Aquilion ONE"},
	}
}

// GenerateSeriesParams generates CT-specific parameters for a series. The
// window follows the reconstruction kernel.
func (g *CTGenerator) GenerateSeriesParams(scanner Scanner, rng *rand.Rand) SeriesParams {
	kvpOptions := []float64{80, 100, 120, 140}
	kernels := []string{"SOFT", "STANDARD", "BONE", "LUNG"}
	kernel := kernels[rng.IntN(len(kernels))]

	var windowCenter, windowWidth float64
	switch kernel {
	case "BONE":
		windowCenter, windowWidth = 400, 2000
	case "LUNG":
		windowCenter, windowWidth = -600, 1500
	default:
		windowCenter, windowWidth = 40, 400
	}

	return SeriesParams{
		Modality:          CT,
		Scanner:           scanner,
		PixelSpacing:      0.5 + rng.Float64()*0.5, // 0.5-1.0 mm
		Spacing:           SpacingPixel,
		KVP:               kvpOptions[rng.IntN(len(kvpOptions))],
		ConvolutionKernel: kernel,
		RescaleIntercept:  -1024,
		RescaleSlope:      1,
		WindowCenter:      windowCenter,
		WindowWidth:       windowWidth,
	}
}

// PixelConfig returns CT pixel data configuration. Values are stored
// unsigned and shifted into Hounsfield units by the rescale intercept.
func (g *CTGenerator) PixelConfig() PixelConfig {
	return PixelConfig{
		BitsAllocated: 16,
		BitsStored:    12,
		HighBit:       11,
		MinValue:      0,
		MaxValue:      4095,
		BaseValue:     1024,
	}
}

// AppendModalityElements appends CT-specific DICOM elements to a dataset.
func (g *CTGenerator) AppendModalityElements(ds *dicom.Dataset, params SeriesParams) error {
	ds.Elements = append(ds.Elements, spacingElements(params)...)
	ds.Elements = append(ds.Elements, windowElements(params)...)
	ds.Elements = append(ds.Elements,
		mustNewElement(tag.KVP, []string{floatToDS(params.KVP)}),
		mustNewElement(tag.ConvolutionKernel, []string{params.ConvolutionKernel}),
		mustNewElement(tag.RescaleIntercept, []string{floatToDS(params.RescaleIntercept)}),
		mustNewElement(tag.RescaleSlope, []string{floatToDS(params.RescaleSlope)}),
		mustNewElement(tag.RescaleType, []string{"HU"}),
	)
	return nil
}
