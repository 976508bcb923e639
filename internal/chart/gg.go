package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

const (
	categoryWidthIn  = 6.0
	categoryHeightIn = 4.0
	averagesWidthIn  = 8.0
	averagesHeightIn = 4.0
)

// GGRenderer draws charts with gg. Parsed fonts are shared; every call
// builds its own canvas and font faces, so one renderer can serve
// concurrent requests.
type GGRenderer struct {
	theme   Theme
	regular *truetype.Font
	bold    *truetype.Font
}

func NewGGRenderer(theme Theme) (*GGRenderer, error) {
	if theme.DPI <= 0 {
		theme.DPI = DefaultTheme().DPI
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &GGRenderer{theme: theme, regular: regular, bold: bold}, nil
}

func (r *GGRenderer) face(f *truetype.Font, points float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    points,
		DPI:     r.theme.DPI,
		Hinting: font.HintingNone,
	})
}

func (r *GGRenderer) px(inches float64) int { return int(math.Round(inches * r.theme.DPI)) }

// scale converts a layout distance given at 100 DPI to the theme's DPI.
func (r *GGRenderer) scale(v float64) float64 { return v * r.theme.DPI / 100 }

func (r *GGRenderer) canvas(wIn, hIn float64) *gg.Context {
	dc := gg.NewContext(r.px(wIn), r.px(hIn))
	dc.SetColor(r.theme.Background)
	dc.Clear()
	return dc
}

func (r *GGRenderer) encode(dc *gg.Context, stage string) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, &domain.RenderError{Stage: stage, Err: err}
	}
	return buf.Bytes(), nil
}

// CategoryChart draws a pie of the type distribution starting at twelve
// o'clock and running counter-clockwise in category order.
func (r *GGRenderer) CategoryChart(dist domain.Distribution) ([]byte, error) {
	dc := r.canvas(categoryWidthIn, categoryHeightIn)
	w, h := float64(dc.Width()), float64(dc.Height())

	title := r.face(r.bold, 12)
	defer title.Close()
	dc.SetFontFace(title)
	dc.SetColor(r.theme.Title)
	dc.DrawStringAnchored("Equipment Type Distribution", w/2, r.scale(22), 0.5, 0.5)

	labels := r.face(r.regular, 10)
	defer labels.Close()
	dc.SetFontFace(labels)

	counts := dist.Sorted()
	total := dist.Total()
	if total == 0 {
		dc.SetColor(r.theme.Text)
		dc.DrawStringAnchored("No Data", w/2, h/2, 0.5, 0.5)
		return r.encode(dc, "category chart")
	}

	cx, cy := w/2, h/2+r.scale(15)
	radius := math.Min(w, h-r.scale(40)) * 0.36
	angle := -math.Pi / 2

	for i, c := range counts {
		if c.Count == 0 {
			continue
		}
		sweep := 2 * math.Pi * float64(c.Count) / float64(total)
		end := angle - sweep
		fill := r.theme.paletteAt(i)

		dc.MoveTo(cx, cy)
		dc.DrawArc(cx, cy, radius, angle, end)
		dc.ClosePath()
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetColor(r.theme.Background)
		dc.SetLineWidth(r.scale(1))
		dc.Stroke()

		mid := angle - sweep/2
		cos, sin := math.Cos(mid), math.Sin(mid)

		ax := 0.5
		switch {
		case cos > 0.15:
			ax = 0
		case cos < -0.15:
			ax = 1
		}
		dc.SetColor(r.theme.Text)
		dc.DrawStringAnchored(c.Category, cx+radius*1.12*cos, cy+radius*1.12*sin, ax, 0.5)

		if isDark(fill) {
			dc.SetColor(r.theme.Background)
		} else {
			dc.SetColor(r.theme.Text)
		}
		share := 100 * float64(c.Count) / float64(total)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f%%", share), cx+radius*0.6*cos, cy+radius*0.6*sin, 0.5, 0.5)

		angle = end
	}
	return r.encode(dc, "category chart")
}

// AveragesChart draws two bar panels: flowrate and temperature on a shared
// axis, pressure on its own axis at half the width.
func (r *GGRenderer) AveragesChart(flow, pressure, temperature float64) ([]byte, error) {
	dc := r.canvas(averagesWidthIn, averagesHeightIn)
	w, h := float64(dc.Width()), float64(dc.Height())

	margin := r.scale(10)
	gap := r.scale(30)
	usable := w - 2*margin - gap
	left := rect{X: margin, Y: margin, W: usable * 2 / 3, H: h - 2*margin}
	right := rect{X: margin + left.W + gap, Y: margin, W: usable / 3, H: h - 2*margin}

	r.drawBarPanel(dc, left, barPanel{
		Title:  "Flow & Temp Averages",
		Labels: []string{"Flowrate\n(L/min)", "Temperature\n(°C)"},
		Values: []float64{flow, temperature},
		Fill:   withAlpha(r.theme.paletteAt(0), 230),
	})
	r.drawBarPanel(dc, right, barPanel{
		Title:  "Avg Pressure",
		Labels: []string{"Pressure\n(Bar)"},
		Values: []float64{pressure},
		Fill:   withAlpha(r.theme.paletteAt(1), 230),
	})
	return r.encode(dc, "averages chart")
}

type rect struct {
	X, Y, W, H float64
}

type barPanel struct {
	Title  string
	Labels []string
	Values []float64
	Fill   color.Color
}

func (r *GGRenderer) drawBarPanel(dc *gg.Context, area rect, p barPanel) {
	titleFace := r.face(r.bold, 10)
	defer titleFace.Close()
	tickFace := r.face(r.regular, 8)
	defer tickFace.Close()
	valueFace := r.face(r.bold, 8)
	defer valueFace.Close()

	dc.SetFontFace(titleFace)
	dc.SetColor(r.theme.Title)
	dc.DrawStringAnchored(p.Title, area.X+area.W/2, area.Y+r.scale(12), 0.5, 0.5)

	plot := rect{
		X: area.X + r.scale(45),
		Y: area.Y + r.scale(32),
		W: area.W - r.scale(50),
		H: area.H - r.scale(32) - r.scale(42),
	}
	sc := niceScale(p.Values...)
	yOf := func(v float64) float64 {
		return plot.Y + plot.H - (sc.clamp(v)-sc.Min)/(sc.Max-sc.Min)*plot.H
	}

	dc.SetFontFace(tickFace)
	dc.SetLineWidth(r.scale(1))
	for _, t := range sc.ticks() {
		y := yOf(t)
		dc.SetColor(withAlpha(r.theme.Axis, 77))
		dc.SetDash(r.scale(4), r.scale(3))
		dc.DrawLine(plot.X, y, plot.X+plot.W, y)
		dc.Stroke()
		dc.SetDash()

		dc.SetColor(r.theme.Axis)
		dc.DrawStringAnchored(sc.label(t), plot.X-r.scale(6), y, 1, 0.5)
	}

	slot := plot.W / float64(len(p.Values))
	zero := yOf(0)
	for i, v := range p.Values {
		bw := slot * 0.6
		bx := plot.X + slot*float64(i) + (slot-bw)/2
		top := yOf(v)
		dc.SetColor(p.Fill)
		dc.DrawRectangle(bx, math.Min(top, zero), bw, math.Abs(zero-top))
		dc.Fill()

		dc.SetFontFace(valueFace)
		dc.SetColor(r.theme.Text)
		if v >= 0 {
			dc.DrawStringAnchored(valueLabel(v), bx+bw/2, top-r.scale(3), 0.5, 0)
		} else {
			dc.DrawStringAnchored(valueLabel(v), bx+bw/2, top+r.scale(3), 0.5, 1)
		}

		dc.SetFontFace(tickFace)
		dc.SetColor(r.theme.Axis)
		for j, line := range strings.Split(p.Labels[i], "\n") {
			dc.DrawStringAnchored(line, bx+bw/2, plot.Y+plot.H+r.scale(12)+float64(j)*r.scale(13), 0.5, 0.5)
		}
	}

	dc.SetColor(r.theme.Spine)
	dc.SetLineWidth(r.scale(1))
	dc.DrawRectangle(plot.X, plot.Y, plot.W, plot.H)
	dc.Stroke()
}
