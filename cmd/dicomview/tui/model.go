// Package tui is the interactive terminal viewer: a series list, a
// half-block rendering of the current image with its measurements, and
// forms for export and configuration.
package tui

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/dicomview/cmd/dicomview/tui/components"
	"github.com/mrsinham/dicomview/cmd/dicomview/tui/screens"
	"github.com/mrsinham/dicomview/internal/config"
	"github.com/mrsinham/dicomview/internal/export"
	"github.com/mrsinham/dicomview/internal/render"
	"github.com/mrsinham/dicomview/internal/viewer"
)

// Phase represents the current screen of the viewer.
type Phase int

const (
	PhaseBrowse Phase = iota
	PhaseExport
	PhaseSaveConfig
	PhaseError
)

const (
	listWidth  = 30
	headerRows = 1
	statusRows = 1
)

// toolKeys maps keys to drag tools.
var toolKeys = map[string]viewer.Tool{
	"w": viewer.ToolWindowLevel,
	"p": viewer.ToolPan,
	"z": viewer.ToolZoom,
	"s": viewer.ToolStackScroll,
	"l": viewer.ToolRuler,
	"r": viewer.ToolReset,
}

// listRow is one line of the series list. Study headers have no series.
type listRow struct {
	study  int
	series *viewer.Series
	label  string
}

type seriesOpenedMsg struct{ err error }

type exportedMsg struct {
	path string
	err  error
}

// Options configures the viewer model.
type Options struct {
	Config *config.Config
	// ConfigPath is proposed by the save-config dialog.
	ConfigPath string
	// ExportDir receives exported images.
	ExportDir string
}

// Model is the bubbletea model of the viewer.
type Model struct {
	ctx     context.Context
	session *viewer.Session
	cfg     *config.Config

	configPath string
	exportDir  string

	phase  Phase
	rows   []listRow
	cursor int
	open   *viewer.Series

	width, height int
	mapping       mapping
	painter       *painter
	doc           viewport.Model
	docKey        string
	help          *components.HelpPanel
	showHelp      bool
	dragging      bool
	status        string

	exportScreen *screens.ExportScreen
	saveScreen   *screens.SaveConfigScreen
	errorScreen  *screens.ErrorScreen
}

// New creates the viewer over session.
func New(ctx context.Context, session *viewer.Session, opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	m := &Model{
		ctx:        ctx,
		session:    session,
		cfg:        cfg,
		configPath: opts.ConfigPath,
		exportDir:  opts.ExportDir,
		painter:    newPainter(),
		doc:        viewport.New(0, 0),
		help:       components.NewHelpPanel(listWidth),
		cursor:     -1,
	}
	for i, study := range session.Studies() {
		m.rows = append(m.rows, listRow{study: i, label: study.Description})
		for _, s := range study.Series {
			if m.cursor < 0 {
				m.cursor = len(m.rows)
			}
			m.rows = append(m.rows, listRow{study: i, series: s, label: seriesLabel(s)})
		}
	}
	m.help.SetTool(session.ActiveTool().String())
	return m
}

func seriesLabel(s *viewer.Series) string {
	desc := s.Description
	if desc == "" {
		desc = s.ID
	}
	return fmt.Sprintf("%s %s (%d)", s.Modality, desc, s.Len())
}

// Init implements tea.Model. The first series opens right away.
func (m *Model) Init() tea.Cmd {
	return m.openCursor()
}

// openCursor opens the series under the cursor off the update loop.
func (m *Model) openCursor() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.rows) || m.rows[m.cursor].series == nil {
		return nil
	}
	row := m.rows[m.cursor]
	m.open = row.series
	m.status = "Opening " + row.label
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return seriesOpenedMsg{err: session.SelectSeries(ctx, row.study, row.series.ID)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(wsm.Width, wsm.Height)
	}

	switch msg := msg.(type) {
	case seriesOpenedMsg:
		if msg.err != nil {
			return m.showError("Could not open series", msg.err)
		}
		m.status = ""
		m.refresh()
		return m, nil
	case exportedMsg:
		if msg.err != nil {
			return m.showError("Export failed", msg.err)
		}
		m.status = "Exported to " + msg.path
		return m, nil
	}

	switch m.phase {
	case PhaseExport:
		return m.updateExport(msg)
	case PhaseSaveConfig:
		return m.updateSaveConfig(msg)
	case PhaseError:
		return m.updateError(msg)
	}
	return m.updateBrowse(msg)
}

// resize lays out the panes for a terminal of width x height cells.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	cols, rows := m.paneSize()
	m.mapping = newMapping(m.cfg.Display.CanvasWidth, m.cfg.Display.CanvasHeight, cols, rows)
	m.doc.Width, m.doc.Height = cols, rows
	m.docKey = ""
	m.refresh()
}

// paneSize returns the main pane size in cells. One column separates it
// from the list and one holds the scrollbar.
func (m *Model) paneSize() (cols, rows int) {
	cols = m.width - listWidth - 2
	rows = m.height - headerRows - statusRows
	return max(cols, 0), max(rows, 0)
}

func (m *Model) paneX() int { return listWidth + 1 }

// refresh syncs the document pane and the help panel with the session.
func (m *Model) refresh() {
	m.help.SetTool(m.session.ActiveTool().String())
	if m.session.Mode() != viewer.ModeTextual {
		return
	}
	doc, ok := m.session.Document()
	if !ok {
		return
	}
	key := doc.Title + "\x00" + doc.Message()
	if key == m.docKey {
		return
	}
	m.docKey = key

	var sb strings.Builder
	sb.WriteString(components.DocumentTitleStyle.Render(doc.Title))
	sb.WriteString("\n")
	if doc.Source != "" {
		sb.WriteString(components.HintStyle.Render(doc.Source))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	body := doc.Message()
	if m.doc.Width > 0 {
		body = lipgloss.NewStyle().Width(m.doc.Width).Render(body)
	}
	sb.WriteString(body)
	m.doc.SetContent(sb.String())
	m.doc.GotoTop()
}

func (m *Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		m.refresh()
		return m, cmd
	}
	if m.session.Mode() == viewer.ModeTextual {
		var cmd tea.Cmd
		m.doc, cmd = m.doc.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if tool, ok := toolKeys[key]; ok {
		m.session.SetActiveTool(tool)
		m.status = ""
		m.refresh()
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "left":
		m.session.Navigate(m.ctx, -1)
	case "down", "right":
		m.session.Navigate(m.ctx, 1)
	case "tab":
		m.moveCursor(1)
	case "shift+tab":
		m.moveCursor(-1)
	case "enter":
		return m, m.openCursor()
	case "c":
		n := m.session.ClearMeasurements()
		m.status = fmt.Sprintf("Cleared %d measurement(s)", n)
	case "d":
		m.deleteLastMeasurement()
	case "?":
		m.showHelp = !m.showHelp
	case "e":
		return m.transitionToExport()
	case "ctrl+s":
		return m.transitionToSaveConfig()
	case "pgup", "pgdown":
		if m.session.Mode() == viewer.ModeTextual {
			var cmd tea.Cmd
			m.doc, cmd = m.doc.Update(msg)
			return m, cmd
		}
	}
	m.refresh()
	return m, nil
}

// moveCursor moves to the next series row in direction dir, wrapping.
func (m *Model) moveCursor(dir int) {
	n := len(m.rows)
	if n == 0 {
		return
	}
	i := m.cursor
	for range n {
		i = (i + dir + n) % n
		if m.rows[i].series != nil {
			m.cursor = i
			return
		}
	}
}

func (m *Model) deleteLastMeasurement() {
	ms := m.session.Measurements()
	if len(ms) == 0 {
		m.status = "No measurement to delete"
		return
	}
	m.session.RemoveMeasurement(ms[len(ms)-1].ID)
	m.status = "Measurement deleted"
}

// handleMouse turns mouse events into list selection, scrollbar seeks and
// pointer events on the image.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	cols, rows := m.paneSize()
	col, row := msg.X-m.paneX(), msg.Y-headerRows
	inPane := col >= 0 && col < cols && row >= 0 && row < rows
	press := msg.Action == tea.MouseActionPress

	if press && msg.Button == tea.MouseButtonLeft && msg.X < listWidth {
		if i := msg.Y - headerRows; i >= 0 && i < len(m.rows) && m.rows[i].series != nil {
			m.cursor = i
			return m.openCursor()
		}
		return nil
	}

	if m.session.Mode() == viewer.ModeTextual && !(isWheel(msg) && m.hasStack()) {
		var cmd tea.Cmd
		m.doc, cmd = m.doc.Update(msg)
		return cmd
	}

	notch := m.cfg.Navigation.WheelNotch
	switch {
	case press && msg.Button == tea.MouseButtonWheelUp:
		m.session.Wheel(-notch)
	case press && msg.Button == tea.MouseButtonWheelDown:
		m.session.Wheel(notch)
	case press && msg.Button == tea.MouseButtonLeft && col == cols && row >= 0 && row < rows:
		if m.session.NavStatus().ScrollbarVisible && rows > 1 {
			m.session.Seek(m.ctx, float64(row)/float64(rows-1))
		}
	case press && msg.Button == tea.MouseButtonLeft && inPane:
		m.session.PointerDown(m.mapping.cellToCanvas(col, row))
		m.dragging = true
	case msg.Action == tea.MouseActionMotion && m.dragging:
		if !inPane {
			m.session.PointerLeave()
			m.dragging = false
			return nil
		}
		m.session.PointerMove(m.mapping.cellToCanvas(col, row))
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.session.PointerUp()
		m.dragging = false
	}
	return nil
}

func isWheel(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress &&
		(msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown)
}

// hasStack reports whether the wheel has another instance to move to. A
// document without one keeps the wheel for scrolling its text.
func (m *Model) hasStack() bool {
	nav := m.session.NavStatus()
	return m.session.Total() > 1 && (nav.PrevEnabled || nav.NextEnabled)
}

func (m *Model) transitionToExport() (tea.Model, tea.Cmd) {
	if _, err := export.FromSession(m.session); err != nil {
		m.status = "Nothing to export: " + err.Error()
		return m, nil
	}
	m.phase = PhaseExport
	m.exportScreen = screens.NewExportScreen(m.cfg.ExportOptions())
	return m, m.exportScreen.Init()
}

func (m *Model) updateExport(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.exportScreen.Update(msg)
	if s, ok := model.(*screens.ExportScreen); ok {
		m.exportScreen = s
	}

	switch {
	case m.exportScreen.Cancelled():
		m.phase = PhaseBrowse
		return m, nil
	case m.exportScreen.Done():
		m.phase = PhaseBrowse
		opts := m.exportScreen.Options()
		m.cfg.SetExportOptions(opts)
		req, err := export.FromSession(m.session)
		if err != nil {
			return m.showError("Export failed", err)
		}
		m.status = "Exporting " + opts.FileName()
		dir := m.exportDir
		return m, func() tea.Msg {
			path, err := export.WriteFile(dir, req, opts)
			return exportedMsg{path: path, err: err}
		}
	}
	return m, cmd
}

func (m *Model) transitionToSaveConfig() (tea.Model, tea.Cmd) {
	m.phase = PhaseSaveConfig
	m.saveScreen = screens.NewSaveConfigScreen(m.configPath)
	return m, m.saveScreen.Init()
}

func (m *Model) updateSaveConfig(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.saveScreen.Update(msg)
	if s, ok := model.(*screens.SaveConfigScreen); ok {
		m.saveScreen = s
	}

	switch {
	case m.saveScreen.Cancelled():
		m.phase = PhaseBrowse
		return m, nil
	case m.saveScreen.Done():
		m.phase = PhaseBrowse
		path := m.saveScreen.Path()
		if err := config.Save(m.cfg, path); err != nil {
			return m.showError("Could not save configuration", err)
		}
		m.configPath = path
		m.status = "Configuration saved to " + path
		return m, nil
	}
	return m, cmd
}

func (m *Model) showError(title string, err error) (tea.Model, tea.Cmd) {
	m.phase = PhaseError
	m.errorScreen = screens.NewErrorScreen(title, err)
	return m, nil
}

func (m *Model) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return m, tea.Quit
	}
	model, cmd := m.errorScreen.Update(msg)
	if s, ok := model.(*screens.ErrorScreen); ok {
		m.errorScreen = s
	}
	if m.errorScreen.Done() {
		m.phase = PhaseBrowse
		m.status = ""
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.phase {
	case PhaseExport:
		return m.exportScreen.View()
	case PhaseSaveConfig:
		return m.saveScreen.View()
	case PhaseError:
		return m.errorScreen.View()
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	cols, rows := m.paneSize()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth).Height(rows).MaxHeight(rows).Render(m.viewList()),
		strings.TrimSuffix(strings.Repeat("│\n", rows), "\n"),
		lipgloss.NewStyle().Width(cols).Height(rows).MaxHeight(rows).Render(m.viewPane()),
		m.viewScrollbar(rows),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), body, m.viewStatus())
}

func (m *Model) viewHeader() string {
	title := "dicomview"
	if study, series := m.session.Selection(); study != nil && series != nil {
		title = fmt.Sprintf("dicomview  %s / %s", study.Description, seriesLabel(series))
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).MaxWidth(m.width).Render(title)
}

func (m *Model) viewList() string {
	var sb strings.Builder
	for i, r := range m.rows {
		switch {
		case r.series == nil:
			sb.WriteString(components.StudyStyle.Render(truncate(r.label, listWidth)))
		case i == m.cursor:
			sb.WriteString(components.CursorStyle.Render(truncate("> "+r.label, listWidth)))
		case r.series == m.open:
			sb.WriteString(components.OpenStyle.Render(truncate("* "+r.label, listWidth)))
		default:
			sb.WriteString(components.SeriesStyle.Render(truncate("  "+r.label, listWidth)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if m.showHelp {
		sb.WriteString(m.help.View())
		return sb.String()
	}
	for _, f := range m.session.Metadata().Fields {
		sb.WriteString(components.SeriesStyle.Render(truncate(f.Label+": "+f.Value, listWidth)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) viewPane() string {
	switch m.session.Mode() {
	case viewer.ModeTextual:
		return m.doc.View()
	case viewer.ModePixel:
		return m.painter.render(m.canvas(), m.mapping, m.session.Overlay())
	}
	return components.HintStyle.Render("Select a series with tab and enter")
}

// canvas returns the rendered surface, nil when it is not a reference
// engine surface.
func (m *Model) canvas() *image.Gray {
	rs, ok := m.session.Surface().(*render.Surface)
	if !ok || rs == nil {
		return nil
	}
	return rs.Canvas()
}

func (m *Model) viewScrollbar(rows int) string {
	st := m.session.NavStatus()
	lines := make([]string, rows)
	start, size := -1, 0
	if st.ScrollbarVisible && rows > 0 {
		size = max(1, int(st.ThumbSize/100*float64(rows)+0.5))
		start = int(st.ThumbOffset / 100 * float64(rows))
	}
	for i := range lines {
		lines[i] = " "
		if start >= 0 {
			lines[i] = components.SeriesStyle.Render("│")
			if i >= start && i < start+size {
				lines[i] = components.CursorStyle.Render("█")
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewStatus() string {
	st := m.session.NavStatus()
	parts := []string{st.Position, m.session.ActiveTool().String()}
	if vp, err := m.session.Viewport(); err == nil {
		parts = append(parts, fmt.Sprintf("WC %.0f WW %.0f", vp.WindowCenter, vp.WindowWidth))
		if vp.Invert {
			parts = append(parts, "inverted")
		}
	}
	line := " " + strings.Join(parts, " | ")
	if m.session.Mode() == viewer.ModePixel && m.session.IsEstimatedSpacing() {
		line += " | " + components.EstimatedStyle.Render("~ estimated spacing")
	}
	if m.status != "" {
		line += " | " + m.status
	}
	line += " | ?: help  e: export  q: quit"
	return components.StatusStyle.Width(m.width).MaxWidth(m.width).Render(line)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
