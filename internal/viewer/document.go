package viewer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	// maxTextLength skips bulk values such as embedded binaries.
	maxTextLength = 10000
	minTextLength = 3

	DocumentTitleReport   = "Structured Report (SR)"
	DocumentTitleFallback = "DICOM document (no image)"
	noReadableText        = "This document contains no directly readable text."
)

var (
	numericOnly = regexp.MustCompile(`^[0-9.]+$`)
	uidLike     = regexp.MustCompile(`^[A-Z0-9]{64}$`)
)

// Document is the textual rendering of an instance that has no displayable
// pixels.
type Document struct {
	Title      string
	Source     string
	Paragraphs []string
	Metadata   Metadata
	// Err is set when the instance could not be read. The view shows it
	// inline instead of the paragraphs.
	Err error
}

// Message returns the body shown to the user.
func (d Document) Message() string {
	if d.Err != nil {
		return fmt.Sprintf("Could not read document: %v", d.Err)
	}
	if len(d.Paragraphs) == 0 {
		return noReadableText
	}
	return strings.Join(d.Paragraphs, "\n\n")
}

// ReadableText keeps the entries that look like human prose.
func ReadableText(entries []TagEntry) []string {
	var out []string
	for _, e := range entries {
		if e.Length >= maxTextLength {
			continue
		}
		text := strings.TrimSpace(e.Value)
		if isReadable(text) {
			out = append(out, text)
		}
	}
	return out
}

func isReadable(text string) bool {
	if len(text) < minTextLength {
		return false
	}
	if !strings.ContainsFunc(text, unicode.IsLetter) {
		return false
	}
	return !numericOnly.MatchString(text) && !uidLike.MatchString(text)
}

// BuildDocument parses src and extracts its readable text. Failures,
// including panics raised by the parser, are captured in Document.Err.
func BuildDocument(ctx context.Context, parser Parser, src Source, title string) (doc Document) {
	doc = Document{Title: title}
	if src != nil {
		doc.Source = src.Name()
	}
	defer func() {
		if r := recover(); r != nil {
			doc.Paragraphs = nil
			doc.Err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	if parser == nil || src == nil {
		doc.Err = fmt.Errorf("no source to read")
		return doc
	}
	dict, err := parser.Parse(ctx, src)
	if err != nil {
		doc.Err = err
		return doc
	}
	doc.Metadata = BuildMetadata(dict)
	doc.Paragraphs = ReadableText(dict.Entries())
	return doc
}
