package report

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

// Charts carries the PNG images embedded in the report.
type Charts struct {
	Category []byte
	Averages []byte
}

// Composer lays out a summary and its charts as a document.
type Composer interface {
	Compose(s domain.Summary, charts Charts, generatedAt time.Time) ([]byte, error)
}

const (
	DefaultDetailRows = 50
	nameMaxRunes      = 25

	detailFontSize    = 9.0
	minDetailFontSize = 6.0
)

type Options struct {
	Compress   bool
	DetailRows int
}

func DefaultOptions() Options {
	return Options{Compress: true, DetailRows: DefaultDetailRows}
}

type detailRow struct {
	Name        string
	Type        string
	Flowrate    string
	Pressure    string
	Temperature string
}

func detailRows(records []domain.Equipment, limit int) []detailRow {
	if limit > len(records) {
		limit = len(records)
	}
	out := make([]detailRow, 0, limit)
	for _, r := range records[:limit] {
		out = append(out, detailRow{
			Name:        truncateRunes(r.Name, nameMaxRunes),
			Type:        r.Type,
			Flowrate:    fmt.Sprintf("%.1f", r.Flowrate),
			Pressure:    fmt.Sprintf("%.1f", r.Pressure),
			Temperature: fmt.Sprintf("%.1f", r.Temperature),
		})
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// fitSize steps the font size down from hi in half points until s fits
// width, stopping at lo.
func fitSize(measure func(s string, size float64) float64, s string, width, hi, lo float64) float64 {
	size := hi
	for size > lo && measure(s, size) > width {
		size -= 0.5
	}
	if size < lo {
		size = lo
	}
	return size
}

// fitText shortens s with an ellipsis until measure reports it fits width.
// It works on runes of the UTF-8 input; measure sees each candidate as is.
func fitText(measure func(string) float64, s string, width float64) string {
	if measure(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if c := string(r) + "..."; measure(c) <= width {
			return c
		}
	}
	return ""
}

func stamp(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") }
