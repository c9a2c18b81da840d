// Package modalities provides modality-specific metadata for synthetic series.
package modalities

import (
	"math/rand/v2"

	"github.com/suyashkumar/dicom"
)

// Modality represents a DICOM imaging modality type.
type Modality string

const (
	MR Modality = "MR" // Magnetic Resonance
	CT Modality = "CT" // Computed Tomography
	DX Modality = "DX" // Digital Radiography
	SR Modality = "SR" // Structured Report
)

// AllModalities returns all supported modalities.
func AllModalities() []Modality {
	return []Modality{MR, CT, DX, SR}
}

// IsValid checks if a modality string is valid.
func IsValid(m string) bool {
	for _, valid := range AllModalities() {
		if string(valid) == m {
			return true
		}
	}
	return false
}

// SpacingSource says which tag carries the pixel size of a series.
type SpacingSource int

const (
	// SpacingPixel writes PixelSpacing.
	SpacingPixel SpacingSource = iota
	// SpacingImager writes only ImagerPixelSpacing, as projection radiography does.
	SpacingImager
	// SpacingNone writes no spacing at all.
	SpacingNone
)

// Scanner represents an imaging device configuration.
type Scanner struct {
	Manufacturer string
	Model        string
}

// SeriesParams holds modality-specific parameters for a series.
type SeriesParams struct {
	Modality     Modality
	Scanner      Scanner
	WindowCenter float64
	WindowWidth  float64

	RescaleIntercept float64
	RescaleSlope     float64

	PixelSpacing float64
	Spacing      SpacingSource

	// MR
	SequenceName string
	// CT and DX
	KVP               float64
	ConvolutionKernel string
}

// PixelConfig holds pixel data configuration for a modality. A zero
// BitsAllocated means the modality carries no pixel data.
type PixelConfig struct {
	BitsAllocated uint16
	BitsStored    uint16
	HighBit       uint16
	MinValue      int
	MaxValue      int
	BaseValue     int
}

// HasPixels reports whether instances carry an image.
func (c PixelConfig) HasPixels() bool { return c.BitsAllocated > 0 }

// Generator defines the interface for modality-specific generators.
type Generator interface {
	// Modality returns the modality type.
	Modality() Modality

	// SOPClassUID returns the SOP Class UID for this modality.
	SOPClassUID() string

	// Scanners returns available scanner configurations.
	Scanners() []Scanner

	// GenerateSeriesParams generates modality-specific parameters for a series.
	GenerateSeriesParams(scanner Scanner, rng *rand.Rand) SeriesParams

	// PixelConfig returns pixel data configuration.
	PixelConfig() PixelConfig

	// AppendModalityElements appends modality-specific DICOM elements to a dataset.
	AppendModalityElements(ds *dicom.Dataset, params SeriesParams) error
}

// GetGenerator returns the generator for the specified modality.
func GetGenerator(m Modality) Generator {
	switch m {
	case CT:
		return &CTGenerator{}
	case DX:
		return &DXGenerator{}
	case SR:
		return &SRGenerator{}
	case MR:
		fallthrough
	default:
		return &MRGenerator{}
	}
}
