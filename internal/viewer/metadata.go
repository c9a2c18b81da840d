package viewer

import (
	"strings"

	"github.com/mrsinham/dicomview/internal/util"
)

const (
	unknownValue  = "Unknown"
	notAvailValue = "N/A"
)

// MetadataField is one line of the information panel.
type MetadataField struct {
	Scope util.TagScope
	Name  string
	Label string
	Value string
}

// Metadata is the information panel of the current instance.
type Metadata struct {
	Fields []MetadataField
}

// Get returns the value of the named field.
func (m Metadata) Get(name string) (string, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// BuildMetadata fills the information panel from tags. Missing values are
// shown as placeholders, never as errors. A nil lookup yields placeholders
// for every field.
func BuildMetadata(tags TagLookup) Metadata {
	fields := util.DisplayFields()
	md := Metadata{Fields: make([]MetadataField, 0, len(fields))}
	for _, info := range fields {
		value := placeholderFor(info)
		if raw, ok := lookupSafe(tags, info); ok && strings.TrimSpace(raw) != "" {
			value = formatValue(info, raw)
		}
		md.Fields = append(md.Fields, MetadataField{
			Scope: info.Scope,
			Name:  info.Name,
			Label: info.Label,
			Value: value,
		})
	}
	return md
}

func lookupSafe(tags TagLookup, info util.TagInfo) (value string, ok bool) {
	if tags == nil {
		return "", false
	}
	defer func() {
		if recover() != nil {
			value, ok = "", false
		}
	}()
	return tags.Lookup(info.Tag)
}

func placeholderFor(info util.TagInfo) string {
	if info.Scope == util.ScopeImage {
		return notAvailValue
	}
	return unknownValue
}

func formatValue(info util.TagInfo, raw string) string {
	raw = strings.TrimSpace(raw)
	switch info.Kind {
	case util.KindDate:
		return FormatDate(raw)
	case util.KindNumber:
		// Multi-valued numbers (window presets) show the first value.
		if first, _, found := strings.Cut(raw, `\`); found {
			return strings.TrimSpace(first)
		}
		return raw
	default:
		return strings.ReplaceAll(raw, "^", " ")
	}
}

// FormatDate renders a DICOM YYYYMMDD date as DD/MM/YYYY. Other inputs are
// returned unchanged.
func FormatDate(raw string) string {
	if len(raw) != 8 {
		return raw
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return raw
		}
	}
	return raw[6:8] + "/" + raw[4:6] + "/" + raw[0:4]
}
