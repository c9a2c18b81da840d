package screens

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/dicomview/cmd/dicomview/tui/components"
	"github.com/mrsinham/dicomview/internal/export"
)

// ExportScreen asks for the export settings of the current image.
type ExportScreen struct {
	form      *huh.Form
	opts      export.Options
	done      bool
	cancelled bool

	// String versions for form binding (huh binds to strings)
	widthStr  string
	heightStr string
	formatStr string
}

// NewExportScreen creates the export form prefilled with opts.
func NewExportScreen(opts export.Options) *ExportScreen {
	if opts.Format == "" {
		opts.Format = export.FormatJPEG
	}
	s := &ExportScreen{
		opts:      opts,
		widthStr:  strconv.Itoa(opts.Width),
		heightStr: strconv.Itoa(opts.Height),
		formatStr: string(opts.Format),
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("filename").
				Title("File name").
				Description("Without extension").
				Value(&s.opts.Filename).
				Validate(validateFilename),

			huh.NewSelect[string]().
				Key("format").
				Title("Format").
				Options(
					huh.NewOption("JPEG", string(export.FormatJPEG)),
					huh.NewOption("PNG", string(export.FormatPNG)),
				).
				Value(&s.formatStr),

			huh.NewInput().
				Key("width").
				Title("Width").
				Value(&s.widthStr).
				Validate(validatePositiveInt),

			huh.NewInput().
				Key("height").
				Title("Height").
				Value(&s.heightStr).
				Validate(validatePositiveInt),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("annotations").
				Title("Show annotations").
				Value(&s.opts.Annotations),

			huh.NewConfirm().
				Key("warning").
				Title("Show warning").
				Description(opts.WarningText).
				Value(&s.opts.Warning),
		),
	).WithShowHelp(false).WithShowErrors(true)

	return s
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func validateFilename(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("file name is required")
	}
	if strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("file name cannot contain a path separator")
	}
	return nil
}

// Init implements tea.Model
func (s *ExportScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *ExportScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			s.cancelled = true
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.done = true
		s.syncOptionsFromForm()
	case huh.StateAborted:
		s.cancelled = true
	}

	return s, cmd
}

// syncOptionsFromForm parses form values back to the options
func (s *ExportScreen) syncOptionsFromForm() {
	if n, err := strconv.Atoi(strings.TrimSpace(s.widthStr)); err == nil {
		s.opts.Width = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s.heightStr)); err == nil {
		s.opts.Height = n
	}
	if f, err := export.ParseFormat(s.formatStr); err == nil {
		s.opts.Format = f
	}
	s.opts.Filename = strings.TrimSpace(s.opts.Filename)
}

// View implements tea.Model
func (s *ExportScreen) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		components.TitleStyle.Render("Export image"),
		s.form.View(),
		"",
		components.HintStyle.Render("Tab: Next field | Enter: Export | Esc: Back"),
	)
}

// Done returns true if the form was completed
func (s *ExportScreen) Done() bool {
	return s.done
}

// Cancelled returns true if the user went back
func (s *ExportScreen) Cancelled() bool {
	return s.cancelled
}

// Options returns the chosen export settings.
func (s *ExportScreen) Options() export.Options {
	return s.opts
}
