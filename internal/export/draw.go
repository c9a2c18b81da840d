package export

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	lineHalfWidth  = 1
	endpointRadius = 3
	labelPadding   = 8
	labelHeight    = 24
	warningScale   = 2
	warningPadding = 30
	warningHeight  = 34
	warningBottom  = 40
)

// drawMeasurement draws the segment, its endpoints and its label.
func drawMeasurement(dst *image.RGBA, a, b r2.Vec, label string) {
	d := r2.Sub(b, a)
	steps := int(math.Ceil(math.Max(math.Abs(d.X), math.Abs(d.Y))))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		p := r2.Add(a, r2.Scale(t, d))
		fillDisc(dst, p, lineHalfWidth, annotationGreen)
	}
	fillDisc(dst, a, endpointRadius, annotationGreen)
	fillDisc(dst, b, endpointRadius, annotationGreen)

	mid := r2.Scale(0.5, r2.Add(a, b))
	width := font.MeasureString(basicfont.Face7x13, label).Ceil() + labelPadding
	box := image.Rect(
		int(mid.X)-width/2, int(mid.Y)-labelHeight/2,
		int(mid.X)+width-width/2, int(mid.Y)+labelHeight/2,
	)
	draw.Draw(dst, box, image.NewUniform(labelBackground), image.Point{}, draw.Over)
	drawText(dst, label, mid, 1, annotationGreen)
}

// drawWarning draws the banner at the bottom centre of dst.
func drawWarning(dst *image.RGBA, text string) {
	b := dst.Bounds()
	width := font.MeasureString(basicfont.Face7x13, text).Ceil()*warningScale + warningPadding
	box := image.Rect(
		b.Dx()/2-width/2, b.Dy()-warningBottom,
		b.Dx()/2+width-width/2, b.Dy()-warningBottom+warningHeight,
	)
	draw.Draw(dst, box, image.NewUniform(warningBack), image.Point{}, draw.Over)
	center := r2.Vec{X: float64(b.Dx()) / 2, Y: float64(box.Min.Y+box.Max.Y) / 2}
	drawText(dst, text, center, warningScale, warningRed)
}

// drawText renders text centred on c, magnified by scale.
func drawText(dst *image.RGBA, text string, c r2.Vec, scale int, col color.Color) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Height
	if w == 0 {
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	drawer := &font.Drawer{Dst: mask, Src: image.Opaque, Face: face, Dot: fixed.P(0, face.Ascent)}
	drawer.DrawString(text)

	r := image.Rect(0, 0, w*scale, h*scale).Add(image.Pt(int(c.X)-w*scale/2, int(c.Y)-h*scale/2))
	if scale != 1 {
		big := image.NewAlpha(image.Rect(0, 0, w*scale, h*scale))
		draw.NearestNeighbor.Scale(big, big.Bounds(), mask, mask.Bounds(), draw.Src, nil)
		mask = big
	}
	draw.DrawMask(dst, r, image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}

func fillDisc(dst *image.RGBA, c r2.Vec, radius int, col color.RGBA) {
	cx, cy := int(math.Round(c.X)), int(math.Round(c.Y))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			if p := image.Pt(cx+dx, cy+dy); p.In(dst.Rect) {
				dst.SetRGBA(p.X, p.Y, col)
			}
		}
	}
}
