package document

import (
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pointsPerInch = 72.0
	bodyFont      = "Helvetica"
	symbolFont    = "ZapfDingbats"
	bodySize      = 10.0
	bodyLeading   = 12.0
	markWidth     = 14.0
)

type blockStyle struct {
	fontStyle   string
	size        float64
	leading     float64
	align       string
	spaceBefore float64
	spaceAfter  float64
}

var blockStyles = map[Style]blockStyle{
	StyleTitle:      {fontStyle: "B", size: 16, leading: 19, align: "C", spaceAfter: 30},
	StyleHeading:    {fontStyle: "B", size: 12, leading: 14, align: "L", spaceBefore: 12, spaceAfter: 12},
	StyleSubheading: {fontStyle: "B", size: 11, leading: 13, align: "L", spaceBefore: 6, spaceAfter: 4},
	StyleBody:       {size: bodySize, leading: bodyLeading, align: "L"},
	StyleItem:       {size: bodySize, leading: bodyLeading, align: "L"},
}

// FPDF renders documents in-process with go-pdf/fpdf using the core
// Helvetica and ZapfDingbats fonts.
type FPDF struct {
	Page Page
}

// NewFPDF returns a renderer for the given page geometry.
func NewFPDF(page Page) *FPDF {
	return &FPDF{Page: page}
}

func (r *FPDF) Render(ctx context.Context, doc *Document, w io.Writer) error {
	page := r.Page
	if page.Width <= 0 || page.Height <= 0 {
		page = A4
	}
	margin := page.Margin * pointsPerInch

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: page.Width * pointsPerInch, Ht: page.Height * pointsPerInch},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCatalogSort(true)
	if !doc.Created.IsZero() {
		pdf.SetCreationDate(doc.Created)
		pdf.SetModificationDate(doc.Created)
	}
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("tenancypack", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, b := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if b.Style == StyleSpacer {
			pdf.Ln(b.Space)
			continue
		}
		st, ok := blockStyles[b.Style]
		if !ok {
			st = blockStyles[StyleBody]
		}
		if st.spaceBefore > 0 {
			pdf.Ln(st.spaceBefore)
		}
		if b.Style == StyleItem && b.Mark != MarkNone {
			drawMark(pdf, tr, b.Mark, st.leading)
		}
		pdf.SetFont(bodyFont, st.fontStyle, st.size)
		pdf.MultiCell(0, st.leading, tr(b.Text), "", st.align, false)
		if st.spaceAfter > 0 {
			pdf.Ln(st.spaceAfter)
		}
	}

	if pdf.Err() {
		return fmt.Errorf("layout %q: %w", doc.Title, pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write %q: %w", doc.Title, err)
	}
	return nil
}

// drawMark prints the item glyph in a fixed-width cell left of the text.
func drawMark(pdf *fpdf.Fpdf, tr func(string) string, m Mark, leading float64) {
	switch m {
	case MarkTick:
		pdf.SetFont(symbolFont, "", bodySize)
		pdf.CellFormat(markWidth, leading, "3", "", 0, "L", false, 0, "")
	case MarkCross:
		pdf.SetFont(symbolFont, "", bodySize)
		pdf.CellFormat(markWidth, leading, "7", "", 0, "L", false, 0, "")
	case MarkBullet:
		pdf.SetFont(bodyFont, "", bodySize)
		pdf.CellFormat(markWidth, leading, tr("•"), "", 0, "L", false, 0, "")
	}
}
