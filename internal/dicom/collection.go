package dicom

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mrsinham/dicomview/internal/viewer"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Defaults used when a file does not carry the grouping tags.
const (
	UnknownStudy       = "UnknownStudy"
	UnknownSeries      = "UnknownSeries"
	DefaultStudyTitle  = "Study"
	DefaultModality    = "OT"
	dicomdirName       = "DICOMDIR"
	dicomFileExtension = ".dcm"
)

// FileSource is a file on disk. It implements viewer.Source.
type FileSource struct {
	Path string
	size int64
}

// Open opens the file for reading.
func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(f.Path) }

// Name returns the file path.
func (f FileSource) Name() string { return f.Path }

// Size returns the size recorded when the file was ingested.
func (f FileSource) Size() int64 { return f.size }

// NewFileSource stats path and returns a source for it.
func NewFileSource(path string) (FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileSource{}, err
	}
	return FileSource{Path: path, size: info.Size()}, nil
}

// Collection is the result of ingesting a set of files.
type Collection struct {
	Studies []*viewer.Study
	// Files is the number of files that were grouped.
	Files int
	// Skipped lists the accepted files that could not be parsed.
	Skipped []string
}

// Accept reports whether a file name looks like a DICOM file: a .dcm
// extension in any case, or no extension at all. DICOMDIR indexes are
// not images and are left out.
func Accept(name string) bool {
	base := filepath.Base(name)
	if strings.EqualFold(base, dicomdirName) {
		return false
	}
	lower := strings.ToLower(base)
	return strings.HasSuffix(lower, dicomFileExtension) || !strings.Contains(lower, ".")
}

// IngestDir walks dir and ingests every accepted file below it.
func IngestDir(ctx context.Context, dir string, log io.Writer) (*Collection, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Accept(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return Ingest(ctx, paths, log)
}

// Ingest parses the header of each path and groups the files into studies
// and series in first-seen order. Instances are stably sorted by instance
// number. Files rejected by Accept are ignored; files that fail to parse
// are listed in Skipped.
func Ingest(ctx context.Context, paths []string, log io.Writer) (*Collection, error) {
	if log == nil {
		log = io.Discard
	}
	parser := Parser{}
	coll := &Collection{}
	studies := make(map[string]*viewer.Study)
	series := make(map[string]*viewer.Series)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !Accept(path) {
			continue
		}
		src, err := NewFileSource(path)
		if err != nil {
			coll.Skipped = append(coll.Skipped, path)
			_, _ = fmt.Fprintf(log, "skipping %s: %v\n", path, err)
			continue
		}
		dict, err := parser.Parse(ctx, src)
		if err != nil {
			coll.Skipped = append(coll.Skipped, path)
			_, _ = fmt.Fprintf(log, "skipping %s: %v\n", path, err)
			continue
		}

		studyUID := valueOr(dict, tag.StudyInstanceUID, UnknownStudy)
		seriesUID := valueOr(dict, tag.SeriesInstanceUID, UnknownSeries)
		modality := valueOr(dict, tag.Modality, DefaultModality)

		study, ok := studies[studyUID]
		if !ok {
			study = &viewer.Study{
				ID:          studyUID,
				Description: valueOr(dict, tag.StudyDescription, DefaultStudyTitle),
				Modality:    modality,
			}
			studies[studyUID] = study
			coll.Studies = append(coll.Studies, study)
		}

		key := studyUID + "|" + seriesUID
		s, ok := series[key]
		if !ok {
			s = &viewer.Series{
				ID:          seriesUID,
				Description: valueOr(dict, tag.SeriesDescription, ""),
				Modality:    modality,
			}
			series[key] = s
			study.Series = append(study.Series, s)
		}

		s.Instances = append(s.Instances, &viewer.Instance{
			Ref:    viewer.ImageRef(path),
			Source: src,
			Number: instanceNumber(dict),
		})
		coll.Files++
	}

	for _, s := range series {
		sort.SliceStable(s.Instances, func(i, j int) bool {
			return s.Instances[i].Number < s.Instances[j].Number
		})
	}
	return coll, nil
}

func valueOr(d viewer.TagLookup, t tag.Tag, fallback string) string {
	v, ok := d.Lookup(t)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return fallback
	}
	return v
}

// instanceNumber parses InstanceNumber, 0 when absent or invalid.
func instanceNumber(d viewer.TagLookup) int {
	v, ok := d.Lookup(tag.InstanceNumber)
	if !ok {
		return 0
	}
	if i := strings.IndexByte(v, '\\'); i >= 0 {
		v = v[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
