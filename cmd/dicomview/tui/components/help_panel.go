package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/dicomview/cmd/dicomview/tui/help"
)

var (
	helpPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	helpDetailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// HelpPanel describes the active tool.
type HelpPanel struct {
	tool  string
	width int
}

// NewHelpPanel creates a help panel of the given outer width.
func NewHelpPanel(width int) *HelpPanel {
	return &HelpPanel{width: width}
}

// SetTool updates which tool's help to display.
func (h *HelpPanel) SetTool(name string) {
	h.tool = name
}

// SetWidth updates the outer width.
func (h *HelpPanel) SetWidth(width int) {
	h.width = width
}

// View renders the help panel.
func (h *HelpPanel) View() string {
	style := helpPanelStyle
	if h.width > 4 {
		style = style.Width(h.width - 2)
	}

	text, ok := help.Texts[h.tool]
	if !ok {
		return style.Render("Select a tool to see help")
	}

	var sb strings.Builder
	sb.WriteString(helpTitleStyle.Render(text.Title))
	sb.WriteString("\n")
	sb.WriteString(helpDescStyle.Render(text.Description))
	sb.WriteString("\n")
	sb.WriteString(helpDetailStyle.Render(text.Details))

	return style.Render(sb.String())
}
