package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/dicomview/cmd/dicomview/tui/components"
)

// DefaultConfigPath is proposed when no configuration file was given.
const DefaultConfigPath = "dicomview.yaml"

// SaveConfigScreen asks where to write the current configuration.
type SaveConfigScreen struct {
	form      *huh.Form
	path      string
	done      bool
	cancelled bool
}

// NewSaveConfigScreen creates the dialog prefilled with path.
func NewSaveConfigScreen(path string) *SaveConfigScreen {
	if path == "" {
		path = DefaultConfigPath
	}
	s := &SaveConfigScreen{path: path}
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("config_path").
				Title("Config file path").
				Placeholder(DefaultConfigPath).
				Value(&s.path).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("path is required")
					}
					return nil
				}),
		),
	).WithShowHelp(false).WithShowErrors(true)
	return s
}

// Init implements tea.Model
func (s *SaveConfigScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *SaveConfigScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
	case huh.StateAborted:
		s.cancelled = true
	}
	return s, cmd
}

// View implements tea.Model
func (s *SaveConfigScreen) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		components.TitleStyle.Render("Save Configuration"),
		s.form.View(),
		"",
		components.HintStyle.Render("Enter: Save | Esc: Back"),
	)
}

// Done returns true if the form was completed
func (s *SaveConfigScreen) Done() bool {
	return s.done
}

// Cancelled returns true if the user went back
func (s *SaveConfigScreen) Cancelled() bool {
	return s.cancelled
}

// Path returns the chosen file path.
func (s *SaveConfigScreen) Path() string {
	return strings.TrimSpace(s.path)
}
