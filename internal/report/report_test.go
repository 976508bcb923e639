package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

var generated = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.NRGBA{R: 7, G: 102, B: 83, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleSummary(n int) domain.Summary {
	s := domain.Summary{
		DatasetID:        1,
		Filename:         "plant.csv",
		UploadedAt:       time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC),
		AvgFlowrate:      35.0 / 3,
		AvgPressure:      2,
		AvgTemperature:   25,
		TypeDistribution: domain.Distribution{"Pump": n},
	}
	for i := 0; i < n; i++ {
		s.Records = append(s.Records, domain.Equipment{
			Name: fmt.Sprintf("Rec-%03d", i), Type: "Pump", Flowrate: 10, Pressure: 2, Temperature: 25,
		})
	}
	return s
}

func compose(t *testing.T, s domain.Summary) []byte {
	t.Helper()
	img := tinyPNG(t)
	c := NewPDFComposer(Options{Compress: false})
	out, err := c.Compose(s, Charts{Category: img, Averages: img}, generated)
	require.NoError(t, err)
	return out
}

func TestComposeSections(t *testing.T) {
	out := compose(t, sampleSummary(3))

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	for _, want := range []string{
		"Chemical Equipment Visualizer",
		"Analysis Report: plant.csv",
		"Generated on: 2024-05-01 10:30",
		"Dataset uploaded: 2024-04-30 08:00",
		"Visual Analysis",
		"Key Metrics",
		"(Total Equipment Count) Tj",
		"(3) Tj",
		"(11.67) Tj",
		"(2.00) Tj",
		"(25.00) Tj",
		"Detailed Equipment Data \\(Top 50\\)",
		"(Rec-002) Tj",
		"(10.0) Tj",
		"Page 1 of ",
	} {
		assert.Contains(t, string(out), want)
	}
	assert.GreaterOrEqual(t, bytes.Count(out, []byte("/Subtype /Image")), 2)
}

func TestComposeCapsDetailRows(t *testing.T) {
	out := compose(t, sampleSummary(120))

	assert.Contains(t, string(out), "(Rec-049) Tj")
	assert.NotContains(t, string(out), "(Rec-050) Tj")
	// the detail header repeats on every page the table spans
	assert.GreaterOrEqual(t, bytes.Count(out, []byte("(Name) Tj")), 2)
	assert.Contains(t, string(out), "(120) Tj")
}

func TestComposeCustomDetailRows(t *testing.T) {
	img := tinyPNG(t)
	c := NewPDFComposer(Options{DetailRows: 5})

	out, err := c.Compose(sampleSummary(10), Charts{Category: img, Averages: img}, generated)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestComposeTruncatesLongNames(t *testing.T) {
	s := sampleSummary(1)
	s.Records[0].Name = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123"

	out := compose(t, s)

	assert.Contains(t, string(out), "(ABCDEFGHIJKLMNOPQRSTUVWXY...) Tj")
	assert.NotContains(t, string(out), "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
}

func TestComposeKeepsWideNamesWhole(t *testing.T) {
	s := sampleSummary(2)
	s.Records[0].Name = strings.Repeat("W", 26)
	s.Records[1].Name = strings.Repeat("Æ", 26)

	out := compose(t, s)

	assert.Contains(t, string(out), "("+strings.Repeat("W", 25)+"...) Tj")
	assert.Contains(t, string(out), "("+strings.Repeat("\xc6", 25)+"...) Tj")
}

func TestComposeShortensNonASCIIType(t *testing.T) {
	s := sampleSummary(1)
	s.Records[0].Type = "Échangeur thermique"

	out := compose(t, s)

	assert.Contains(t, string(out), "(\xc9changeur")
	assert.Contains(t, string(out), "...) Tj")
	assert.NotContains(t, string(out), "\ufffd")
	assert.NotContains(t, string(out), "Échangeur")
}

func TestComposeEmptyDataset(t *testing.T) {
	s := domain.Summary{DatasetID: 4, Filename: "empty.csv", TypeDistribution: domain.Distribution{}}

	out := compose(t, s)

	assert.Contains(t, string(out), "(0) Tj")
	assert.Contains(t, string(out), "(0.00) Tj")
	assert.Equal(t, 1, bytes.Count(out, []byte("(Name) Tj")))
}

func TestComposeDeterministic(t *testing.T) {
	img := tinyPNG(t)
	c := NewPDFComposer(DefaultOptions())
	s := sampleSummary(60)

	a, err := c.Compose(s, Charts{Category: img, Averages: img}, generated)
	require.NoError(t, err)
	b, err := c.Compose(s, Charts{Category: img, Averages: img}, generated)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(a, b))
}

func TestComposeRejectsBadImage(t *testing.T) {
	c := NewPDFComposer(DefaultOptions())

	_, err := c.Compose(sampleSummary(1), Charts{Category: []byte("not a png"), Averages: tinyPNG(t)}, generated)

	var re *domain.RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "report", re.Stage)
}

func TestDetailRows(t *testing.T) {
	records := []domain.Equipment{
		{Name: "Short", Type: "Pump", Flowrate: 1.25, Pressure: 2, Temperature: -3.04},
		{Name: "ÄÖÜäöüßÄÖÜäöüßÄÖÜäöüßÄÖÜäöüß", Type: "Valve"},
		{Name: "third"},
	}

	rows := detailRows(records, 2)

	require.Len(t, rows, 2)
	assert.Equal(t, detailRow{Name: "Short", Type: "Pump", Flowrate: "1.2", Pressure: "2.0", Temperature: "-3.0"}, rows[0])
	assert.Equal(t, "ÄÖÜäöüßÄÖÜäöüßÄÖÜäöüßÄÖÜä...", rows[1].Name)

	assert.Len(t, detailRows(records, 50), 3)
	assert.Empty(t, detailRows(nil, 50))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 25))
	exact := "abcdefghijklmnopqrstuvwxy"
	assert.Equal(t, exact, truncateRunes(exact, 25))
	assert.Equal(t, exact+"...", truncateRunes(exact+"z", 25))
}

func TestFitSize(t *testing.T) {
	measure := func(s string, size float64) float64 { return float64(len(s)) * size }

	assert.Equal(t, 9.0, fitSize(measure, "abcd", 40, 9, 6))
	assert.Equal(t, 7.5, fitSize(measure, "abcd", 30, 9, 6))
	assert.Equal(t, 6.0, fitSize(measure, "abcdefghij", 10, 9, 6))
}

func TestFitText(t *testing.T) {
	measure := func(s string) float64 { return float64(len(s)) }

	assert.Equal(t, "Heat", fitText(measure, "Heat", 10))
	assert.Equal(t, "Heat Ex...", fitText(measure, "Heat Exchanger", 10))
	assert.Equal(t, "", fitText(measure, "Heat Exchanger", 2))
}
