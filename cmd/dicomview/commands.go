package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mrsinham/dicomview/internal/config"
	"github.com/mrsinham/dicomview/internal/export"
	"github.com/mrsinham/dicomview/internal/util"
	"github.com/mrsinham/dicomview/internal/viewer"

	dcmio "github.com/mrsinham/dicomview/internal/dicom"
)

// runInfo lists studies and series with the first displayable instance of
// each series, or "textual" when none has pixels.
func runInfo(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tagList := fs.String("tags", "", "Comma-separated tag names to print for each series (e.g. PatientName,Modality)")
	verbose := fs.Bool("verbose", false, "Print progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info: expected one directory")
	}

	tags, err := parseTagNames(*tagList)
	if err != nil {
		return err
	}

	var log io.Writer
	if *verbose {
		log = stderr
	}
	coll, err := ingest(ctx, fs.Arg(0), log)
	if err != nil {
		return err
	}
	session, err := newSession(config.Default(), coll, log)
	if err != nil {
		return err
	}
	defer session.Close()

	for i, study := range coll.Studies {
		fmt.Fprintf(stdout, "Study %s (%s)\n", study.Description, study.ID)
		for _, series := range study.Series {
			if err := session.SelectSeries(ctx, i, series.ID); err != nil {
				return err
			}
			shown := "textual"
			if session.Mode() == viewer.ModePixel {
				shown = fmt.Sprintf("first image #%d", session.CurrentIndex()+1)
			}
			desc := series.Description
			if desc == "" {
				desc = "-"
			}
			fmt.Fprintf(stdout, "  %s %s: %d instance(s), %s\n", series.Modality, desc, series.Len(), shown)
			fmt.Fprintf(stdout, "    UID %s\n", series.ID)
			if bad := session.BadIndices(); len(bad) > 0 {
				fmt.Fprintf(stdout, "    undecodable: %s\n", joinIndices(bad))
			}
			if len(tags) > 0 {
				printTags(ctx, stdout, series, tags)
			}
		}
	}
	if len(coll.Skipped) > 0 {
		fmt.Fprintf(stdout, "%d unreadable file(s) skipped\n", len(coll.Skipped))
	}
	return nil
}

func parseTagNames(list string) ([]util.TagInfo, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var out []util.TagInfo
	for _, name := range strings.Split(list, ",") {
		info, err := util.GetTagByName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// printTags prints the requested tags of the first instance of series.
func printTags(ctx context.Context, w io.Writer, series *viewer.Series, tags []util.TagInfo) {
	if series.Len() == 0 {
		return
	}
	dict, err := dcmio.Parser{}.Parse(ctx, series.Instances[0].Source)
	if err != nil {
		fmt.Fprintf(w, "    tags unavailable: %v\n", err)
		return
	}
	for _, info := range tags {
		value, ok := dict.Lookup(info.Tag)
		if !ok {
			value = "N/A"
		}
		fmt.Fprintf(w, "    %s: %s\n", info.Name, value)
	}
}

func joinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("#%d", idx+1)
	}
	return strings.Join(parts, ", ")
}

// runExport renders one instance to an image file without the terminal UI.
func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Load configuration from YAML file")
	seriesID := fs.String("series", "", "Series instance UID (required)")
	instance := fs.Int("instance", 0, "Instance number in the series, 1-based (default: first displayable)")
	outDir := fs.String("out", ".", "Output directory")
	filename := fs.String("filename", "", "File name without extension")
	width := fs.Int("width", 0, "Width in pixels")
	height := fs.Int("height", 0, "Height in pixels")
	format := fs.String("format", "", "Image format: jpg or png")
	annotations := fs.Bool("annotations", true, "Draw measurements")
	warning := fs.Bool("warning", true, "Draw the 'not for diagnostic use' banner")
	verbose := fs.Bool("verbose", false, "Print progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("export: expected one directory")
	}
	if *seriesID == "" {
		return fmt.Errorf("export: --series is required")
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	opts := cfg.ExportOptions()
	// Only flags given on the command line override the configuration.
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "filename":
			opts.Filename = *filename
		case "width":
			opts.Width = *width
		case "height":
			opts.Height = *height
		case "format":
			if opts.Format, err = export.ParseFormat(*format); err != nil {
				flagErr = err
			}
		case "annotations":
			opts.Annotations = *annotations
		case "warning":
			opts.Warning = *warning
		}
	})
	if flagErr != nil {
		return flagErr
	}

	var log io.Writer
	if *verbose {
		log = stderr
	}
	coll, err := ingest(ctx, fs.Arg(0), log)
	if err != nil {
		return err
	}
	session, err := newSession(cfg, coll, log)
	if err != nil {
		return err
	}
	defer session.Close()

	studyIndex, series := findSeries(coll, *seriesID)
	if series == nil {
		return fmt.Errorf("series %q: %w", *seriesID, viewer.ErrUnknownSeries)
	}
	if err := session.SelectSeries(ctx, studyIndex, series.ID); err != nil {
		return err
	}
	if *instance > 0 {
		if *instance > series.Len() {
			return fmt.Errorf("instance %d out of range, series has %d", *instance, series.Len())
		}
		if series.Len() > 1 {
			session.Seek(ctx, float64(*instance-1)/float64(series.Len()-1))
		}
		if session.Mode() != viewer.ModePixel || session.CurrentIndex() != *instance-1 {
			return fmt.Errorf("instance %d cannot be displayed", *instance)
		}
	}

	req, err := export.FromSession(session)
	if err != nil {
		return fmt.Errorf("series %s: %w", series.ID, err)
	}
	path, err := export.WriteFile(*outDir, req, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Exported instance %d of %s to %s\n", session.CurrentIndex()+1, series.ID, path)
	return nil
}

func findSeries(coll *dcmio.Collection, id string) (int, *viewer.Series) {
	for i, study := range coll.Studies {
		if s := study.SeriesByID(id); s != nil {
			return i, s
		}
	}
	return -1, nil
}

// runSample writes a synthetic collection exercising every viewer path:
// calibrated and uncalibrated images, damaged instances and reports.
func runSample(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(stderr)
	images := fs.Int("images", 5, "Images per stack series")
	seed := fs.Int64("seed", 0, "Seed for reproducibility (optional, derived from the directory if not specified)")
	size := fs.Int("size", 128, "Image width and height in pixels")
	workers := fs.Int("workers", 0, "Number of parallel workers (default: CPU cores)")
	quiet := fs.Bool("quiet", false, "Do not print progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("sample: expected one output directory")
	}
	if *images <= 0 {
		return fmt.Errorf("--images must be > 0")
	}

	fmt.Fprintln(stdout, "dicomview sample")
	fmt.Fprintln(stdout, "================")
	files, err := dcmio.Synthesize(dcmio.SynthOptions{
		OutputDir: fs.Arg(0),
		Seed:      *seed,
		Width:     *size,
		Height:    *size,
		Series:    dcmio.DefaultSeries(*images),
		Workers:   *workers,
		Quiet:     *quiet,
		Out:       stdout,
	})
	if err != nil {
		return fmt.Errorf("generating sample: %w", err)
	}

	bad := 0
	for _, f := range files {
		if f.Bad {
			bad++
		}
	}
	fmt.Fprintf(stdout, "\n✓ %d files written, %d of them damaged on purpose\n", len(files), bad)
	fmt.Fprintf(stdout, "  Open with: dicomview %s\n", fs.Arg(0))
	return nil
}
