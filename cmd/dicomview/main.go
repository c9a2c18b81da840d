package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mrsinham/dicomview/cmd/dicomview/tui"
	"github.com/mrsinham/dicomview/internal/config"
	"github.com/mrsinham/dicomview/internal/render"
	"github.com/mrsinham/dicomview/internal/viewer"

	dcmio "github.com/mrsinham/dicomview/internal/dicom"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches to the subcommand named by the first argument. Without
// one, the interactive viewer starts.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "info":
			return runInfo(ctx, args[1:], stdout, stderr)
		case "export":
			return runExport(ctx, args[1:], stdout, stderr)
		case "sample":
			return runSample(args[1:], stdout, stderr)
		}
	}
	return runView(ctx, args, stdout, stderr)
}

func runView(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("dicomview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Load configuration from YAML file")
	saveConfig := fs.String("save-config", "", "Save the effective configuration to YAML file")
	exportDir := fs.String("out", ".", "Directory receiving exported images")
	verbose := fs.Bool("verbose", false, "Print ingestion progress to stderr")
	showVersion := fs.Bool("version", false, "Show version")
	fs.Usage = func() { printHelp(stderr) }

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "dicomview %s\n", version)
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}

	if *saveConfig != "" {
		if err := config.Save(cfg, *saveConfig); err != nil {
			return fmt.Errorf("could not save config: %w", err)
		}
		fmt.Fprintf(stdout, "Configuration saved to %s\n", *saveConfig)
		if fs.NArg() == 0 {
			return nil
		}
	}

	if fs.NArg() != 1 {
		printUsage(stderr)
		return fmt.Errorf("expected one directory, got %d arguments", fs.NArg())
	}

	var log io.Writer
	if *verbose {
		log = stderr
	}
	coll, err := ingest(ctx, fs.Arg(0), log)
	if err != nil {
		return err
	}

	session, err := newSession(cfg, coll, nil)
	if err != nil {
		return err
	}
	defer session.Close()

	configPath := *configFile
	if configPath == "" {
		configPath = *saveConfig
	}
	return tui.Run(ctx, session, tui.Options{
		Config:     cfg,
		ConfigPath: configPath,
		ExportDir:  *exportDir,
	})
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// ingest reads dir and fails when it holds no readable file.
func ingest(ctx context.Context, dir string, log io.Writer) (*dcmio.Collection, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	coll, err := dcmio.IngestDir(ctx, dir, log)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	if len(coll.Studies) == 0 {
		return nil, fmt.Errorf("no DICOM files found in %s", dir)
	}
	if log != nil {
		fmt.Fprintf(log, "%d files in %d studies, %d skipped\n", coll.Files, len(coll.Studies), len(coll.Skipped))
	}
	return coll, nil
}

func newSession(cfg *config.Config, coll *dcmio.Collection, log io.Writer) (*viewer.Session, error) {
	engine := render.NewEngine(cfg.Display.CanvasWidth, cfg.Display.CanvasHeight)
	opts := cfg.SessionOptions(engine, dcmio.Parser{})
	opts.Log = log
	return viewer.NewSession(coll.Studies, opts)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  dicomview [options] <dir>")
	fmt.Fprintln(w, "  dicomview info|export|sample [options] <dir>")
	fmt.Fprintln(w, "\nRun 'dicomview --help' for details.")
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "dicomview")
	fmt.Fprintln(w, "=========")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browse, measure and export DICOM images from the terminal.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  dicomview [options] <dir>          Interactive viewer")
	fmt.Fprintln(w, "  dicomview info [options] <dir>     List studies and series")
	fmt.Fprintln(w, "  dicomview export [options] <dir>   Export one image")
	fmt.Fprintln(w, "  dicomview sample [options] <dir>   Write a synthetic collection")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Viewer options:")
	fmt.Fprintln(w, "  --config <FILE>       Load configuration from YAML file")
	fmt.Fprintln(w, "  --save-config <FILE>  Save the effective configuration to YAML file")
	fmt.Fprintln(w, "  --out <DIR>           Directory receiving exported images (default: .)")
	fmt.Fprintln(w, "  --verbose             Print ingestion progress to stderr")
	fmt.Fprintln(w, "  --version             Show version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keys:")
	fmt.Fprintln(w, "  arrows                Previous / next instance")
	fmt.Fprintln(w, "  tab, shift+tab, enter Choose and open a series")
	fmt.Fprintln(w, "  w p z s l             Window/level, pan, zoom, stack scroll, ruler")
	fmt.Fprintln(w, "  r                     Reset the view and its measurements")
	fmt.Fprintln(w, "  c, d                  Clear measurements, delete the last one")
	fmt.Fprintln(w, "  e, ctrl+s             Export the image, save the configuration")
	fmt.Fprintln(w, "  pgup, pgdown          Scroll a document (the wheel steps through the stack)")
	fmt.Fprintln(w, "  ?                     Tool help")
	fmt.Fprintln(w, "  q                     Quit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  # Write a sample collection and open it")
	fmt.Fprintln(w, "  dicomview sample ./sample && dicomview ./sample")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Show series with their patient names")
	fmt.Fprintln(w, "  dicomview info --tags PatientName,Modality ./sample")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Export the third image of a series as PNG")
	fmt.Fprintln(w, "  dicomview export --series <UID> --instance 3 --format png ./sample")
}
