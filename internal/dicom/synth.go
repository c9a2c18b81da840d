package dicom

import (
	"fmt"
	"hash/fnv"
	"io"
	"math"
	randv2 "math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/mrsinham/dicomview/internal/dicom/modalities"
	"github.com/mrsinham/dicomview/internal/util"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

const (
	defaultSynthSize    = 128
	explicitVRLittle    = "1.2.840.10008.1.2.1"
	defaultStudyDescrip = "SYNTHETIC STUDY"
)

// SeriesSpec describes one synthetic series.
type SeriesSpec struct {
	Description string
	Modality    modalities.Modality
	Images      int
	// NoSpacing drops every spacing tag from the series.
	NoSpacing bool
	// Bad lists 1-based instance numbers written with truncated pixel data.
	Bad []int
	// ReportText is the text of report instances; generated when empty.
	ReportText string
}

// SynthOptions configures Synthesize.
type SynthOptions struct {
	OutputDir        string
	Seed             int64
	Width, Height    int
	StudyDescription string
	Series           []SeriesSpec
	Workers          int // 0 = one per CPU

	Quiet bool
	Out   io.Writer // progress output, stdout when nil
}

// GeneratedFile describes a file written by Synthesize.
type GeneratedFile struct {
	Path           string
	StudyUID       string
	SeriesUID      string
	SOPInstanceUID string
	Modality       modalities.Modality
	SeriesNumber   int
	InstanceNumber int
	Bad            bool
}

// DefaultSeries returns a study layout covering the viewer's cases: a
// calibrated MR stack with undecodable leading slices, a CT stack, a
// radiograph calibrated through ImagerPixelSpacing, an uncalibrated
// stack, a series with no decodable image and a structured report.
func DefaultSeries(images int) []SeriesSpec {
	if images < 3 {
		images = 3
	}
	return []SeriesSpec{
		{Description: "T1 AXIAL", Modality: modalities.MR, Images: images, Bad: []int{1, 2}},
		{Description: "CHEST CT", Modality: modalities.CT, Images: images},
		{Description: "CHEST PA", Modality: modalities.DX, Images: 1},
		{Description: "SCOUT", Modality: modalities.MR, Images: 2, NoSpacing: true},
		{Description: "DAMAGED", Modality: modalities.CT, Images: 2, Bad: []int{1, 2},
			ReportText: "Acquisition interrupted, images could not be reconstructed."},
		{Description: "REPORT", Modality: modalities.SR, Images: 1},
	}
}

// imageTask contains all data needed to write a single file.
type imageTask struct {
	index       int
	width       int
	height      int
	pixelSeed   uint64
	pixelConfig modalities.PixelConfig
	textOverlay string
	metadata    []*dicom.Element
	bad         bool
	file        GeneratedFile
}

// Synthesize writes one study made of opts.Series under opts.OutputDir.
// The same directory and seed always produce the same UIDs and pixels.
func Synthesize(opts SynthOptions) ([]GeneratedFile, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Quiet {
		out = io.Discard
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if opts.Width <= 0 {
		opts.Width = defaultSynthSize
	}
	if opts.Height <= 0 {
		opts.Height = defaultSynthSize
	}
	if len(opts.Series) == 0 {
		opts.Series = DefaultSeries(5)
	}
	opts.Series = append([]SeriesSpec(nil), opts.Series...)
	if opts.StudyDescription == "" {
		opts.StudyDescription = defaultStudyDescrip
	}
	for i, s := range opts.Series {
		if s.Images <= 0 {
			return nil, fmt.Errorf("series %d (%s): number of images must be > 0, got %d", i+1, s.Description, s.Images)
		}
		if s.Modality == "" {
			opts.Series[i].Modality = modalities.MR
		} else if !modalities.IsValid(string(s.Modality)) {
			return nil, fmt.Errorf("series %d: unknown modality %q", i+1, s.Modality)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		h := fnv.New64a()
		_, _ = h.Write([]byte(opts.OutputDir)) // hash.Write never returns an error
		seed = int64(h.Sum64())
		_, _ = fmt.Fprintf(out, "Auto-generated seed from '%s': %d\n", opts.OutputDir, seed)
	} else {
		_, _ = fmt.Fprintf(out, "Using seed: %d\n", seed)
	}
	rng := randv2.New(randv2.NewPCG(uint64(seed), uint64(seed)))

	tasks := buildTasks(opts, seed, rng)
	_, _ = fmt.Fprintf(out, "Writing %d files in %d series (%dx%d)\n", len(tasks), len(opts.Series), opts.Width, opts.Height)

	if err := runTasks(tasks, opts.Workers, out); err != nil {
		return nil, err
	}

	files := make([]GeneratedFile, len(tasks))
	for i, task := range tasks {
		files[i] = task.file
	}
	_, _ = fmt.Fprintf(out, "✓ %d DICOM files created in: %s/\n", len(files), opts.OutputDir)
	return files, nil
}

func buildTasks(opts SynthOptions, seed int64, rng *randv2.Rand) []imageTask {
	sex := "F"
	if rng.IntN(2) == 0 {
		sex = "M"
	}
	patientName := util.GeneratePatientName(sex, rng)
	patientID := fmt.Sprintf("PID%06d", rng.IntN(1000000))
	birthDate := fmt.Sprintf("%04d%02d%02d", 1940+rng.IntN(60), 1+rng.IntN(12), 1+rng.IntN(28))
	studyDate := time.Date(2020+rng.IntN(5), time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC).Format("20060102")

	studyUID := util.DeterministicUID(fmt.Sprintf("%s_%d_study", opts.OutputDir, seed))

	var tasks []imageTask
	for si, spec := range opts.Series {
		seriesNumber := si + 1
		gen := modalities.GetGenerator(spec.Modality)
		scanners := gen.Scanners()
		scanner := scanners[rng.IntN(len(scanners))]
		params := gen.GenerateSeriesParams(scanner, rng)
		if spec.NoSpacing {
			params.Spacing = modalities.SpacingNone
		}
		pixelConfig := gen.PixelConfig()
		seriesUID := util.DeterministicUID(fmt.Sprintf("%s_%d_series_%d", opts.OutputDir, seed, seriesNumber))
		seriesDir := filepath.Join(opts.OutputDir, fmt.Sprintf("SE%03d", seriesNumber))

		bad := make(map[int]bool, len(spec.Bad))
		for _, n := range spec.Bad {
			bad[n] = true
		}
		report := spec.ReportText
		if report == "" && !pixelConfig.HasPixels() {
			report = util.GenerateReportText(opts.StudyDescription, rng)
		}

		for i := 1; i <= spec.Images; i++ {
			sopUID := util.DeterministicUID(fmt.Sprintf("%s_%d_series_%d_image_%d", opts.OutputDir, seed, seriesNumber, i))
			metadata := []*dicom.Element{
				mustNewElement(tag.TransferSyntaxUID, []string{explicitVRLittle}),
				mustNewElement(tag.MediaStorageSOPClassUID, []string{gen.SOPClassUID()}),
				mustNewElement(tag.MediaStorageSOPInstanceUID, []string{sopUID}),
				mustNewElement(tag.SOPClassUID, []string{gen.SOPClassUID()}),
				mustNewElement(tag.SOPInstanceUID, []string{sopUID}),
				mustNewElement(tag.StudyDate, []string{studyDate}),
				mustNewElement(tag.Modality, []string{string(spec.Modality)}),
				mustNewElement(tag.Manufacturer, []string{scanner.Manufacturer}),
				mustNewElement(tag.InstitutionName, []string{"DICOMVIEW GENERAL HOSPITAL"}),
				mustNewElement(tag.StudyDescription, []string{opts.StudyDescription}),
				mustNewElement(tag.SeriesDescription, []string{spec.Description}),
				mustNewElement(tag.ManufacturerModelName, []string{scanner.Model}),
				mustNewElement(tag.PatientName, []string{patientName}),
				mustNewElement(tag.PatientID, []string{patientID}),
				mustNewElement(tag.PatientBirthDate, []string{birthDate}),
				mustNewElement(tag.PatientSex, []string{sex}),
				mustNewElement(tag.StudyInstanceUID, []string{studyUID}),
				mustNewElement(tag.SeriesInstanceUID, []string{seriesUID}),
				mustNewElement(tag.StudyID, []string{"1"}),
				mustNewElement(tag.SeriesNumber, []string{fmt.Sprintf("%d", seriesNumber)}),
				mustNewElement(tag.InstanceNumber, []string{fmt.Sprintf("%d", i)}),
			}
			if report != "" {
				metadata = append(metadata, mustNewElement(tag.ImageComments, []string{report}))
			}
			if pixelConfig.HasPixels() {
				metadata = append(metadata,
					mustNewElement(tag.SamplesPerPixel, []int{1}),
					mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
					mustNewElement(tag.Rows, []int{opts.Height}),
					mustNewElement(tag.Columns, []int{opts.Width}),
					mustNewElement(tag.BitsAllocated, []int{int(pixelConfig.BitsAllocated)}),
					mustNewElement(tag.BitsStored, []int{int(pixelConfig.BitsStored)}),
					mustNewElement(tag.HighBit, []int{int(pixelConfig.HighBit)}),
					mustNewElement(tag.PixelRepresentation, []int{0}),
				)
			}
			ds := dicom.Dataset{Elements: metadata}
			if err := gen.AppendModalityElements(&ds, params); err != nil {
				panic(fmt.Sprintf("append %s elements: %v", spec.Modality, err))
			}

			tasks = append(tasks, imageTask{
				index:       len(tasks),
				width:       opts.Width,
				height:      opts.Height,
				pixelSeed:   rng.Uint64(),
				pixelConfig: pixelConfig,
				textOverlay: fmt.Sprintf("File %d/%d", i, spec.Images),
				metadata:    ds.Elements,
				bad:         bad[i] && pixelConfig.HasPixels(),
				file: GeneratedFile{
					Path:           filepath.Join(seriesDir, fmt.Sprintf("IM%04d.dcm", i)),
					StudyUID:       studyUID,
					SeriesUID:      seriesUID,
					SOPInstanceUID: sopUID,
					Modality:       spec.Modality,
					SeriesNumber:   seriesNumber,
					InstanceNumber: i,
					Bad:            bad[i] && pixelConfig.HasPixels(),
				},
			})
		}
	}
	return tasks
}

// runTasks writes the files with a pool of workers.
func runTasks(tasks []imageTask, workers int, out io.Writer) error {
	if len(tasks) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	type result struct {
		index int
		err   error
	}
	taskChan := make(chan imageTask, len(tasks))
	resultChan := make(chan result, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				resultChan <- result{task.index, writeTask(task)}
			}
		}()
	}
	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	completed := 0
	var firstErr error
	for r := range resultChan {
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("write image %d: %w", r.index, r.err)
		}
		completed++
		if completed%10 == 0 || completed == len(tasks) {
			_, _ = fmt.Fprintf(out, "  Progress: %d/%d (%.0f%%)\n", completed, len(tasks), float64(completed)/float64(len(tasks))*100)
		}
	}
	return firstErr
}

// writeTask renders the pixels of one task and writes its file.
func writeTask(task imageTask) error {
	if err := os.MkdirAll(filepath.Dir(task.file.Path), 0755); err != nil {
		return err
	}

	elements := append([]*dicom.Element(nil), task.metadata...)
	if task.pixelConfig.HasPixels() {
		nativeFrame := synthesizeFrame(task)
		drawTextOnFrame16(nativeFrame, task.width, task.height, task.textOverlay, uint16(task.pixelConfig.MaxValue))
		elements = append(elements, mustNewElement(tag.PixelData, dicom.PixelDataInfo{
			Frames: []*frame.Frame{{Encapsulated: false, NativeData: nativeFrame}},
		}))
	}
	sortElements(elements)

	if err := writeDatasetToFile(task.file.Path, dicom.Dataset{Elements: elements}); err != nil {
		return err
	}
	if task.bad {
		if err := TruncatePixelData(task.file.Path); err != nil {
			return fmt.Errorf("damage pixel data: %w", err)
		}
	}
	return nil
}

// synthesizeFrame fills a frame with a radial gradient and noise, in the
// value range of the modality.
func synthesizeFrame(task imageTask) *frame.NativeFrame[uint16] {
	width, height := task.width, task.height
	cfg := task.pixelConfig
	rng := randv2.New(randv2.NewPCG(task.pixelSeed, task.pixelSeed))

	nativeFrame := frame.NewNativeFrame[uint16](16, height, width, width*height, 1)
	valueRange := float64(cfg.MaxValue - cfg.MinValue)
	centerX, centerY := float64(width)/2, float64(height)/2
	maxDist := math.Hypot(centerX, centerY)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dist := math.Hypot(float64(x)-centerX, float64(y)-centerY) / maxDist
			intensity := float64(cfg.BaseValue) + (1-dist)*valueRange*0.3
			intensity += (rng.Float64() - 0.5) * valueRange * 0.15
			clamped := math.Max(float64(cfg.MinValue), math.Min(float64(cfg.MaxValue), intensity))
			nativeFrame.RawData[y*width+x] = uint16(clamped)
		}
	}
	return nativeFrame
}

// sortElements orders the dataset by tag with the meta group first.
func sortElements(elements []*dicom.Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := elements[i].Tag, elements[j].Tag
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Element < b.Element
	})
}

// writeDatasetToFile writes a DICOM dataset to a file
func writeDatasetToFile(filename string, ds dicom.Dataset, opts ...dicom.WriteOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds, opts...)
}

// mustNewElement creates a new DICOM element, panicking on error.
func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}
