package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

// Renderer turns summary figures into PNG images.
type Renderer interface {
	CategoryChart(dist domain.Distribution) ([]byte, error)
	AveragesChart(flow, pressure, temperature float64) ([]byte, error)
}

// Theme controls colours and resolution. Figure sizes are expressed in
// inches and scaled by DPI.
type Theme struct {
	DPI        float64
	Background color.Color
	Title      color.Color
	Text       color.Color
	Axis       color.Color
	Spine      color.Color
	Palette    []color.Color
}

func DefaultTheme() Theme {
	return Theme{
		DPI:        100,
		Background: MustHex("#FFFDEE"),
		Title:      MustHex("#076653"),
		Text:       MustHex("#06231D"),
		Axis:       MustHex("#0C342C"),
		Spine:      MustHex("#E2FBCE"),
		Palette: []color.Color{
			MustHex("#076653"),
			MustHex("#E3EF26"),
			MustHex("#0C342C"),
			MustHex("#E2FBCE"),
			MustHex("#2E8B57"),
			MustHex("#9ACD32"),
		},
	}
}

func (t Theme) paletteAt(i int) color.Color {
	if len(t.Palette) == 0 {
		return t.Title
	}
	return t.Palette[i%len(t.Palette)]
}

// ParseHex reads a #RRGGBB colour.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func MustHex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func withAlpha(c color.Color, a uint8) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = a
	return n
}

// isDark uses relative luminance to pick a readable label colour.
func isDark(c color.Color) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	lum := 0.2126*float64(n.R) + 0.7152*float64(n.G) + 0.0722*float64(n.B)
	return lum < 128
}
