package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

type rgb struct{ R, G, B int }

var (
	primaryGreen   = rgb{0x07, 0x66, 0x53}
	secondaryGreen = rgb{0x0C, 0x34, 0x2C}
	cream          = rgb{0xFF, 0xFD, 0xEE}
	pale           = rgb{0xE2, 0xFB, 0xCE}
	white          = rgb{0xFF, 0xFF, 0xFF}
)

const (
	inch         = 72.0
	marginSide   = 72.0
	marginTop    = 72.0
	marginBottom = 36.0
	footerHeight = 18.0
)

var detailWidths = []float64{2.5 * inch, 1.2 * inch, 0.9 * inch, 0.9 * inch, 1.0 * inch}

// PDFComposer renders US Letter reports with fpdf. Page breaks are placed
// explicitly so rows never split, and document dates come from the
// generation time so equal inputs produce equal bytes.
type PDFComposer struct {
	opts Options
}

func NewPDFComposer(opts Options) *PDFComposer {
	if opts.DetailRows <= 0 {
		opts.DetailRows = DefaultDetailRows
	}
	return &PDFComposer{opts: opts}
}

type doc struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	bottom float64
	width  float64
}

func (d *doc) fill(c rgb) { d.pdf.SetFillColor(c.R, c.G, c.B) }
func (d *doc) text(c rgb) { d.pdf.SetTextColor(c.R, c.G, c.B) }
func (d *doc) draw(c rgb) { d.pdf.SetDrawColor(c.R, c.G, c.B) }
func (d *doc) font(style string, size float64) {
	d.pdf.SetFont("Helvetica", style, size)
}

// ensure starts a new page when h points do not fit above the footer.
func (d *doc) ensure(h float64) bool {
	if d.pdf.GetY()+h <= d.bottom {
		return false
	}
	d.pdf.AddPage()
	return true
}

func (c *PDFComposer) Compose(s domain.Summary, charts Charts, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(c.opts.Compress)
	pdf.SetCreationDate(generatedAt.UTC())
	pdf.SetModificationDate(generatedAt.UTC())
	pdf.SetCatalogSort(true)
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Analysis Report: "+s.Filename), false)
	pdf.SetCreator("Chemical Equipment Visualizer", false)

	pageW, pageH := pdf.GetPageSize()
	d := &doc{
		pdf:    pdf,
		tr:     tr,
		bottom: pageH - marginBottom - footerHeight - 6,
		width:  pageW - 2*marginSide,
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-(marginBottom + footerHeight))
		d.font("I", 8)
		d.text(secondaryGreen)
		pdf.CellFormat(0, footerHeight, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	c.header(d, s, generatedAt)
	c.visuals(d, charts)
	c.metrics(d, s)
	c.details(d, s.Records)

	if err := pdf.Error(); err != nil {
		return nil, &domain.RenderError{Stage: "report", Err: err}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &domain.RenderError{Stage: "report", Err: err}
	}
	return buf.Bytes(), nil
}

func (c *PDFComposer) header(d *doc, s domain.Summary, generatedAt time.Time) {
	pdf := d.pdf

	d.font("", 12)
	d.text(secondaryGreen)
	pdf.CellFormat(0, 16, "Chemical Equipment Visualizer", "", 1, "L", false, 0, "")
	pdf.Ln(6)

	d.font("B", 24)
	d.text(primaryGreen)
	pdf.MultiCell(0, 28, d.tr("Analysis Report: "+s.Filename), "", "L", false)
	pdf.Ln(6)

	d.font("", 12)
	d.text(secondaryGreen)
	pdf.CellFormat(0, 16, "Generated on: "+stamp(generatedAt), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 16, "Dataset uploaded: "+stamp(s.UploadedAt), "", 1, "L", false, 0, "")
	pdf.Ln(18)
}

func (c *PDFComposer) section(d *doc, title string, next float64) {
	const h = 24.0
	d.ensure(h + 12 + next)
	pdf := d.pdf

	d.font("B", 16)
	d.text(secondaryGreen)
	pdf.CellFormat(0, h, title, "", 1, "L", false, 0, "")
	y := pdf.GetY()
	d.draw(primaryGreen)
	pdf.SetLineWidth(1)
	pdf.Line(marginSide, y, marginSide+d.width, y)
	pdf.Ln(12)
}

func (c *PDFComposer) visuals(d *doc, charts Charts) {
	images := []struct {
		name string
		data []byte
		w, h float64
	}{
		{"category.png", charts.Category, 4 * inch, 2.6 * inch},
		{"averages.png", charts.Averages, 5.5 * inch, 2.75 * inch},
	}

	c.section(d, "Visual Analysis", images[0].h)
	pdf := d.pdf
	for _, img := range images {
		if len(img.data) == 0 {
			continue
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(img.name, opts, bytes.NewReader(img.data))
		d.ensure(img.h)
		x := marginSide + (d.width-img.w)/2
		y := pdf.GetY()
		pdf.ImageOptions(img.name, x, y, img.w, img.h, false, opts, 0, "")
		pdf.SetY(y + img.h + 12)
	}
}

func (c *PDFComposer) metrics(d *doc, s domain.Summary) {
	const (
		headH = 32.0
		rowH  = 20.0
	)
	widths := []float64{3 * inch, 2 * inch}
	rows := [][]string{
		{"Total Equipment Count", fmt.Sprintf("%d", s.RecordCount())},
		{"Avg Flowrate", fmt.Sprintf("%.2f", s.AvgFlowrate)},
		{"Avg Pressure", fmt.Sprintf("%.2f", s.AvgPressure)},
		{"Avg Temperature", fmt.Sprintf("%.2f", s.AvgTemperature)},
	}

	c.section(d, "Key Metrics", headH+float64(len(rows))*rowH)
	pdf := d.pdf
	pdf.SetLineWidth(1)
	d.draw(white)

	d.font("B", 12)
	d.text(white)
	d.fill(primaryGreen)
	for i, h := range []string{"Metric", "Value"} {
		pdf.CellFormat(widths[i], headH, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	d.font("", 10)
	d.text(secondaryGreen)
	for i, row := range rows {
		d.fill(stripe(i))
		for j, v := range row {
			pdf.CellFormat(widths[j], rowH, v, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(24)
}

func (c *PDFComposer) details(d *doc, records []domain.Equipment) {
	const (
		headH = 26.0
		rowH  = 16.0
	)
	c.section(d, fmt.Sprintf("Detailed Equipment Data (Top %d)", c.opts.DetailRows), headH+rowH)
	pdf := d.pdf

	head := func() {
		d.draw(pale)
		pdf.SetLineWidth(0.5)
		d.font("B", 10)
		d.text(white)
		d.fill(primaryGreen)
		for i, h := range []string{"Name", "Type", "Flowrate", "Pressure", "Temperature"} {
			pdf.CellFormat(detailWidths[i], headH, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		d.font("", detailFontSize)
		d.text(secondaryGreen)
	}
	head()

	const pad = 4.0
	for i, row := range detailRows(records, c.opts.DetailRows) {
		if d.ensure(rowH) {
			head()
		}
		d.fill(stripe(i))

		// names are already capped in runes; shrink the font instead of
		// cutting them a second time
		name := d.tr(row.Name)
		d.font("", fitSize(func(s string, size float64) float64 {
			d.font("", size)
			return pdf.GetStringWidth(s)
		}, name, detailWidths[0]-pad, detailFontSize, minDetailFontSize))
		pdf.CellFormat(detailWidths[0], rowH, name, "1", 0, "L", true, 0, "")
		d.font("", detailFontSize)

		typ := fitText(func(s string) float64 { return pdf.GetStringWidth(d.tr(s)) }, row.Type, detailWidths[1]-pad)
		pdf.CellFormat(detailWidths[1], rowH, d.tr(typ), "1", 0, "L", true, 0, "")

		for j, v := range []string{row.Flowrate, row.Pressure, row.Temperature} {
			pdf.CellFormat(detailWidths[j+2], rowH, v, "1", 0, "R", true, 0, "")
		}
		pdf.Ln(-1)
	}
}

func stripe(i int) rgb {
	if i%2 == 0 {
		return cream
	}
	return pale
}
