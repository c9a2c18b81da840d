// Package dicom reads DICOM collections from disk for the viewer: a tolerant
// tag parser, directory ingestion into studies and series, and a writer for
// synthetic collections.
package dicom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrsinham/dicomview/internal/viewer"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrNoElements is returned when not a single element could be parsed.
var ErrNoElements = errors.New("no elements parsed")

// sizedSource is implemented by sources that know their length up front.
type sizedSource interface {
	Size() int64
}

// Parser reads the header of a file into a TagDictionary. It never decodes
// pixel data and keeps every element parsed before the first error.
type Parser struct{}

// Parse implements viewer.Parser.
func (Parser) Parse(ctx context.Context, src viewer.Source) (viewer.TagDictionary, error) {
	if src == nil {
		return nil, fmt.Errorf("parse: nil source")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer func() { _ = rc.Close() }()

	var (
		r    io.Reader = rc
		size int64
	)
	if sized, ok := src.(sizedSource); ok {
		size = sized.Size()
	} else {
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Name(), err)
		}
		r, size = bytes.NewReader(data), int64(len(data))
	}

	ds, err := parseTolerant(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name(), err)
	}
	return NewTagDictionary(ds), nil
}

// parseTolerant parses element by element and stops quietly at the first
// malformed element, returning what was collected so far.
func parseTolerant(r io.Reader, size int64) (ds dicom.Dataset, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parser panic: %v", rec)
		}
	}()

	p, err := dicom.NewParser(r, size, nil, dicom.SkipPixelData())
	if err != nil {
		return dicom.Dataset{}, err
	}

	var elements []*dicom.Element
	for {
		elem, err := p.Next()
		if err != nil {
			break
		}
		elements = append(elements, elem)
	}

	meta := p.GetMetadata()
	elements = append(meta.Elements, elements...)
	if len(elements) == 0 {
		return dicom.Dataset{}, ErrNoElements
	}
	return dicom.Dataset{Elements: elements}, nil
}

// TagDictionary exposes a parsed dataset as string values. It implements
// viewer.TagDictionary.
type TagDictionary struct {
	elements []*dicom.Element
	index    map[tag.Tag]*dicom.Element
}

// NewTagDictionary indexes ds. The first occurrence of a tag wins.
func NewTagDictionary(ds dicom.Dataset) *TagDictionary {
	d := &TagDictionary{index: make(map[tag.Tag]*dicom.Element, len(ds.Elements))}
	for _, elem := range ds.Elements {
		if elem == nil {
			continue
		}
		d.elements = append(d.elements, elem)
		if _, seen := d.index[elem.Tag]; !seen {
			d.index[elem.Tag] = elem
		}
	}
	return d
}

// Lookup returns the value of t. Multiple values are joined with a backslash.
func (d *TagDictionary) Lookup(t tag.Tag) (string, bool) {
	elem, ok := d.index[t]
	if !ok {
		return "", false
	}
	return elementString(elem)
}

// Entries lists every string-valued element with its encoded length.
func (d *TagDictionary) Entries() []viewer.TagEntry {
	var out []viewer.TagEntry
	for _, elem := range d.elements {
		if elem.Value == nil || elem.Value.ValueType() != dicom.Strings {
			continue
		}
		v, ok := elementString(elem)
		if !ok {
			continue
		}
		out = append(out, viewer.TagEntry{Tag: elem.Tag, Value: v, Length: int(elem.ValueLength)})
	}
	return out
}

// Len returns the number of parsed elements.
func (d *TagDictionary) Len() int { return len(d.elements) }

func elementString(elem *dicom.Element) (string, bool) {
	if elem == nil || elem.Value == nil {
		return "", false
	}
	switch elem.Value.ValueType() {
	case dicom.Strings:
		vals, ok := elem.Value.GetValue().([]string)
		if !ok {
			return "", false
		}
		trimmed := make([]string, len(vals))
		for i, v := range vals {
			trimmed[i] = strings.TrimRight(v, " \x00")
		}
		return strings.Join(trimmed, `\`), true
	case dicom.Ints:
		vals, ok := elem.Value.GetValue().([]int)
		if !ok {
			return "", false
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, `\`), true
	case dicom.Floats:
		vals, ok := elem.Value.GetValue().([]float64)
		if !ok {
			return "", false
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return strings.Join(parts, `\`), true
	}
	return "", false
}
