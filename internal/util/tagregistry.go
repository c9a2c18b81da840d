// Package util provides helpers shared by the viewer packages.
package util

import (
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// TagScope represents the DICOM hierarchy level a tag describes.
type TagScope int

const (
	// ScopePatient indicates tags describing the patient.
	ScopePatient TagScope = iota
	// ScopeStudy indicates tags describing the study.
	ScopeStudy
	// ScopeSeries indicates tags describing the series.
	ScopeSeries
	// ScopeImage indicates tags that vary per image.
	ScopeImage
)

// String returns the string representation of a TagScope.
func (s TagScope) String() string {
	switch s {
	case ScopePatient:
		return "Patient"
	case ScopeStudy:
		return "Study"
	case ScopeSeries:
		return "Series"
	case ScopeImage:
		return "Image"
	default:
		return "Unknown"
	}
}

// ValueKind tells how a tag value is rendered for display.
type ValueKind int

const (
	KindText ValueKind = iota
	KindDate
	KindNumber
)

// TagInfo contains information about a displayable DICOM tag.
type TagInfo struct {
	Name  string
	Label string
	Tag   tag.Tag
	Scope TagScope
	Kind  ValueKind
}

// displayFields lists the tags of the information panel in display order.
var displayFields = []TagInfo{
	{Name: "PatientName", Label: "Name", Tag: tag.PatientName, Scope: ScopePatient},
	{Name: "PatientID", Label: "ID", Tag: tag.PatientID, Scope: ScopePatient},
	{Name: "PatientBirthDate", Label: "Birth date", Tag: tag.PatientBirthDate, Scope: ScopePatient, Kind: KindDate},
	{Name: "PatientSex", Label: "Sex", Tag: tag.PatientSex, Scope: ScopePatient},

	{Name: "StudyDate", Label: "Date", Tag: tag.StudyDate, Scope: ScopeStudy, Kind: KindDate},
	{Name: "StudyDescription", Label: "Description", Tag: tag.StudyDescription, Scope: ScopeStudy},
	{Name: "Modality", Label: "Modality", Tag: tag.Modality, Scope: ScopeStudy},
	{Name: "InstitutionName", Label: "Institution", Tag: tag.InstitutionName, Scope: ScopeStudy},

	{Name: "SeriesDescription", Label: "Description", Tag: tag.SeriesDescription, Scope: ScopeSeries},
	{Name: "SeriesNumber", Label: "Number", Tag: tag.SeriesNumber, Scope: ScopeSeries, Kind: KindNumber},

	{Name: "Rows", Label: "Rows", Tag: tag.Rows, Scope: ScopeImage, Kind: KindNumber},
	{Name: "Columns", Label: "Columns", Tag: tag.Columns, Scope: ScopeImage, Kind: KindNumber},
	{Name: "BitsStored", Label: "Bits", Tag: tag.BitsStored, Scope: ScopeImage, Kind: KindNumber},
	{Name: "WindowCenter", Label: "WC", Tag: tag.WindowCenter, Scope: ScopeImage, Kind: KindNumber},
	{Name: "WindowWidth", Label: "WW", Tag: tag.WindowWidth, Scope: ScopeImage, Kind: KindNumber},
}

// lookupOnly are resolvable by name but not part of the panel.
var lookupOnly = []TagInfo{
	{Name: "InstanceNumber", Label: "Instance", Tag: tag.InstanceNumber, Scope: ScopeImage, Kind: KindNumber},
	{Name: "PixelSpacing", Label: "Pixel spacing", Tag: tag.PixelSpacing, Scope: ScopeImage},
	{Name: "ImagerPixelSpacing", Label: "Imager pixel spacing", Tag: tag.ImagerPixelSpacing, Scope: ScopeImage},
	{Name: "StudyInstanceUID", Label: "Study UID", Tag: tag.StudyInstanceUID, Scope: ScopeStudy},
	{Name: "SeriesInstanceUID", Label: "Series UID", Tag: tag.SeriesInstanceUID, Scope: ScopeSeries},
	{Name: "Manufacturer", Label: "Manufacturer", Tag: tag.Manufacturer, Scope: ScopeSeries},
	{Name: "BodyPartExamined", Label: "Body part", Tag: tag.BodyPartExamined, Scope: ScopeSeries},
	{Name: "ImageComments", Label: "Comments", Tag: tag.ImageComments, Scope: ScopeImage},
}

// tagRegistry maps lowercase tag names to their TagInfo.
var tagRegistry = buildRegistry()

func buildRegistry() map[string]TagInfo {
	registry := make(map[string]TagInfo, len(displayFields)+len(lookupOnly))
	for _, info := range displayFields {
		registry[strings.ToLower(info.Name)] = info
	}
	for _, info := range lookupOnly {
		registry[strings.ToLower(info.Name)] = info
	}
	return registry
}

// DisplayFields returns the information panel fields in display order.
func DisplayFields() []TagInfo {
	return append([]TagInfo(nil), displayFields...)
}

// GetTagByName returns TagInfo for a given tag name.
// The lookup is case-insensitive. If the tag is not found, an error is returned
// with a suggestion for the closest matching tag name (using Levenshtein distance).
func GetTagByName(name string) (TagInfo, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))

	if info, ok := tagRegistry[normalizedName]; ok {
		return info, nil
	}

	suggestion := findClosestTagName(normalizedName)
	if suggestion != "" {
		return TagInfo{}, fmt.Errorf("unknown tag %q, did you mean %q?", name, suggestion)
	}

	return TagInfo{}, fmt.Errorf("unknown tag %q", name)
}

// findClosestTagName finds the closest matching tag name using Levenshtein distance.
// Returns empty string if no close match is found (distance > 5).
func findClosestTagName(input string) string {
	const maxDistance = 5
	bestDistance := maxDistance + 1
	var bestMatch string

	for key, info := range tagRegistry {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance || (distance == bestDistance && info.Name < bestMatch) {
			bestDistance = distance
			bestMatch = info.Name
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance calculates the minimum number of single-character
// edits required to change one string into the other.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
