package viewer

import (
	"math"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// Calibration is the physical size of one image pixel along each axis.
type Calibration struct {
	X         float64 // column spacing
	Y         float64 // row spacing
	Estimated bool
}

// Uncalibrated is used when no physical spacing is available.
var Uncalibrated = Calibration{X: 1, Y: 1, Estimated: true}

// spacingTags are consulted in order when the engine reports no spacing.
var spacingTags = []tag.Tag{
	tag.PixelSpacing,
	tag.ImagerPixelSpacing,
}

// ResolveSpacing determines the pixel spacing of img. It never fails: any
// missing or malformed source falls through to the next one and finally to
// Uncalibrated.
func ResolveSpacing(img Image) Calibration {
	if img == nil {
		return Uncalibrated
	}
	if cal, ok := engineSpacing(img); ok {
		return cal
	}
	tags := safeTags(img)
	if tags == nil {
		return Uncalibrated
	}
	for _, t := range spacingTags {
		if cal, ok := tagSpacing(tags, t); ok {
			return cal
		}
	}
	return Uncalibrated
}

func engineSpacing(img Image) (cal Calibration, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	row, col, found := img.PixelSpacing()
	if !found || !validSpacing(row) || !validSpacing(col) {
		return Calibration{}, false
	}
	return Calibration{X: col, Y: row}, true
}

func safeTags(img Image) (tags TagLookup) {
	defer func() {
		if recover() != nil {
			tags = nil
		}
	}()
	return img.Tags()
}

func tagSpacing(tags TagLookup, t tag.Tag) (cal Calibration, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	raw, found := tags.Lookup(t)
	if !found {
		return Calibration{}, false
	}
	row, col, parsed := ParseSpacing(raw)
	if !parsed {
		return Calibration{}, false
	}
	return Calibration{X: col, Y: row}, true
}

// ParseSpacing parses a "row\column" spacing string. Both values must be
// finite and strictly positive.
func ParseSpacing(raw string) (row, col float64, ok bool) {
	parts := strings.Split(raw, `\`)
	if len(parts) < 2 {
		return 0, 0, false
	}
	row, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || !validSpacing(row) {
		return 0, 0, false
	}
	col, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || !validSpacing(col) {
		return 0, 0, false
	}
	return row, col, true
}

func validSpacing(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
