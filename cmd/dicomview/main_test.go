package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/mrsinham/dicomview/internal/config"
)

// writeSample runs the sample subcommand into a temporary directory.
func writeSample(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "sample")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"sample", "--images", "3", "--seed", "7", "--size", "32", "--quiet", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("sample failed: %v (%s)", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "damaged on purpose") {
		t.Errorf("unexpected sample output:\n%s", stdout.String())
	}
	return dir
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--version"}, &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := stdout.String(); got != "dicomview dev\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--help"}, &stdout, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("error = %v, want flag.ErrHelp", err)
	}
	if !strings.Contains(stderr.String(), "Interactive viewer") {
		t.Error("help text not printed")
	}
}

func TestRun_ViewerArgumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no directory", nil, "expected one directory"},
		{"missing directory", []string{"/does/not/exist"}, "no such file"},
		{"empty directory", []string{"EMPTY"}, "no DICOM files found"},
		{"bad config", []string{"--config", "BADCONFIG", "EMPTY"}, "loading config"},
	}

	empty := t.TempDir()
	badConfig := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badConfig, []byte("tools:\n  default: lasso\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]string, len(tt.args))
			for i, a := range tt.args {
				a = strings.ReplaceAll(a, "EMPTY", empty)
				args[i] = strings.ReplaceAll(a, "BADCONFIG", badConfig)
			}
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), args, &stdout, &stderr)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestRun_SaveConfigOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--save-config", path}, &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("saved config does not load: %v", err)
	}
	if *cfg != *config.Default() {
		t.Errorf("saved config differs from defaults: %+v", cfg)
	}
}

func TestRun_Info(t *testing.T) {
	dir := writeSample(t)
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"info", "--tags", "Modality,patientname", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("info failed: %v (%s)", err, stderr.String())
	}
	out := stdout.String()

	for _, want := range []string{
		"MR T1 AXIAL: 3 instance(s), first image #3",
		"undecodable: #1, #2",
		"CT CHEST CT: 3 instance(s), first image #1",
		"DX CHEST PA: 1 instance(s), first image #1",
		"CT DAMAGED: 2 instance(s), textual",
		"SR REPORT: 1 instance(s), textual",
		"Modality: SR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("info output does not contain %q:\n%s", want, out)
		}
	}
	if !regexp.MustCompile(`PatientName: [A-Z]+\^[A-Z][a-z]+`).MatchString(out) {
		t.Errorf("patient name missing from output:\n%s", out)
	}
}

func TestRun_InfoUnknownTag(t *testing.T) {
	dir := writeSample(t)
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"info", "--tags", "PatientNam", dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), `did you mean "PatientName"`) {
		t.Errorf("error = %v, want a suggestion", err)
	}
}

var seriesUID = regexp.MustCompile(`(?m)^  (\S+) (.+?): .*\n    UID (\S+)$`)

// seriesIDs maps "<modality> <description>" to the series UID from info.
func seriesIDs(t *testing.T, dir string) map[string]string {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"info", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("info failed: %v", err)
	}
	ids := make(map[string]string)
	for _, m := range seriesUID.FindAllStringSubmatch(stdout.String(), -1) {
		ids[m[1]+" "+m[2]] = m[3]
	}
	return ids
}

func TestRun_Export(t *testing.T) {
	dir := writeSample(t)
	ids := seriesIDs(t, dir)
	ct, ok := ids["CT CHEST CT"]
	if !ok {
		t.Fatalf("CT series not listed: %v", ids)
	}

	out := t.TempDir()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"export", "--series", ct, "--instance", "2", "--out", out,
		"--format", "png", "--width", "64", "--height", "64", "--filename", "chest", dir,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("export failed: %v (%s)", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Exported instance 2") {
		t.Errorf("output = %q", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(out, "chest.png")); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestRun_ExportErrors(t *testing.T) {
	dir := writeSample(t)
	ids := seriesIDs(t, dir)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing series flag", []string{"export", dir}, "--series is required"},
		{"unknown series", []string{"export", "--series", "1.2.3", dir}, "unknown series"},
		{"damaged instance", []string{"export", "--series", ids["MR T1 AXIAL"], "--instance", "1", dir}, "cannot be displayed"},
		{"out of range", []string{"export", "--series", ids["MR T1 AXIAL"], "--instance", "9", dir}, "out of range"},
		{"report", []string{"export", "--series", ids["SR REPORT"], dir}, "no image to export"},
		{"bad format", []string{"export", "--series", ids["CT CHEST CT"], "--format", "gif", dir}, "unknown export format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args[:len(tt.args)-1:len(tt.args)-1], "--out", t.TempDir(), dir)
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), args, &stdout, &stderr)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestRun_SampleErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"sample"}, &stdout, &stderr); err == nil {
		t.Error("sample without a directory succeeded")
	}
	if err := run(context.Background(), []string{"sample", "--images", "0", t.TempDir()}, &stdout, &stderr); err == nil {
		t.Error("sample with zero images succeeded")
	}
}
