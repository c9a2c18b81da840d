package tui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/dicomview/cmd/dicomview/tui/components"
	"github.com/mrsinham/dicomview/internal/viewer"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r2"
)

const halfBlock = "▀"

var lineColor = color.RGBA{0x00, 0xff, 0x00, 0xff}

// mapping places the surface canvas inside the main pane. A pane pixel is
// half a cell: one column wide and half a row high.
type mapping struct {
	cols, rows int
	scale      float64 // pane pixels per canvas pixel
	offset     r2.Vec  // pane pixel of the canvas origin
}

func newMapping(canvasW, canvasH, cols, rows int) mapping {
	m := mapping{cols: cols, rows: rows}
	if canvasW <= 0 || canvasH <= 0 || cols <= 0 || rows <= 0 {
		return m
	}
	pw, ph := float64(cols), float64(rows*2)
	m.scale = math.Min(pw/float64(canvasW), ph/float64(canvasH))
	m.offset = r2.Vec{
		X: (pw - float64(canvasW)*m.scale) / 2,
		Y: (ph - float64(canvasH)*m.scale) / 2,
	}
	return m
}

func (m mapping) valid() bool { return m.scale > 0 }

// toPane maps a canvas point to pane pixels.
func (m mapping) toPane(p r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(m.scale, p), m.offset)
}

// cellToCanvas maps the centre of a cell to canvas coordinates.
func (m mapping) cellToCanvas(col, row int) r2.Vec {
	if !m.valid() {
		return r2.Vec{}
	}
	p := r2.Vec{X: float64(col) + 0.5, Y: float64(row*2) + 1}
	return r2.Scale(1/m.scale, r2.Sub(p, m.offset))
}

// painter turns a grayscale canvas into rows of half-block cells. Styled
// cells are cached by colour pair.
type painter struct {
	cache map[[2]color.RGBA]string
}

func newPainter() *painter {
	return &painter{cache: make(map[[2]color.RGBA]string)}
}

// render draws canvas and the measurement overlay into m.rows lines of
// m.cols cells.
func (p *painter) render(canvas *image.Gray, m mapping, overlay viewer.Overlay) string {
	if m.cols <= 0 || m.rows <= 0 {
		return ""
	}
	pane := image.NewRGBA(image.Rect(0, 0, m.cols, m.rows*2))
	draw.Draw(pane, pane.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	if canvas != nil && m.valid() {
		b := canvas.Bounds()
		dst := image.Rect(
			int(math.Round(m.offset.X)), int(math.Round(m.offset.Y)),
			int(math.Round(m.offset.X+float64(b.Dx())*m.scale)), int(math.Round(m.offset.Y+float64(b.Dy())*m.scale)),
		)
		draw.ApproxBiLinear.Scale(pane, dst, canvas, b, draw.Src, nil)
	}
	for _, item := range overlay.Items {
		a, b := m.toPane(item.Start), m.toPane(item.End)
		plotLine(pane, a, b, lineColor)
	}

	cells := make([][]string, m.rows)
	for row := range cells {
		cells[row] = make([]string, m.cols)
		for col := range cells[row] {
			top := pane.RGBAAt(col, row*2)
			bottom := pane.RGBAAt(col, row*2+1)
			cells[row][col] = p.block(top, bottom)
		}
	}

	for _, item := range overlay.Items {
		at := m.toPane(item.LabelAt)
		row := int(at.Y / 2)
		label := []rune(item.Label)
		start := int(at.X) - len(label)/2
		for i, r := range label {
			putCell(cells, start+i, row, components.AnnotationStyle.Render(string(r)))
		}
		if item.Deletable {
			del := m.toPane(item.DeleteAt)
			putCell(cells, int(del.X), int(del.Y/2), components.DeleteStyle.Render("x"))
		}
	}

	lines := make([]string, m.rows)
	for row, r := range cells {
		lines[row] = strings.Join(r, "")
	}
	return strings.Join(lines, "\n")
}

func (p *painter) block(top, bottom color.RGBA) string {
	key := [2]color.RGBA{top, bottom}
	if s, ok := p.cache[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor(top))).
		Background(lipgloss.Color(hexColor(bottom))).
		Render(halfBlock)
	p.cache[key] = s
	return s
}

func putCell(cells [][]string, col, row int, s string) {
	if row < 0 || row >= len(cells) || col < 0 || col >= len(cells[row]) {
		return
	}
	cells[row][col] = s
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// plotLine draws a one pixel wide segment.
func plotLine(dst *image.RGBA, a, b r2.Vec, c color.RGBA) {
	d := r2.Sub(b, a)
	steps := int(math.Ceil(math.Max(math.Abs(d.X), math.Abs(d.Y))))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		q := r2.Add(a, r2.Scale(t, d))
		x, y := int(math.Floor(q.X)), int(math.Floor(q.Y))
		if image.Pt(x, y).In(dst.Rect) {
			dst.SetRGBA(x, y, c)
		}
	}
}
