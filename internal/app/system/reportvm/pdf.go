package reportvm

import (
	"io"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageMargin   = 15.0
	footerOffset = 10.0
	rowHeight    = 8.0
	bottomLimit  = 277.0
)

type rgb struct{ r, g, b int }

var (
	black      = rgb{0, 0, 0}
	darkGray   = rgb{50, 50, 50}
	mediumGray = rgb{100, 100, 100}
	lightGray  = rgb{150, 150, 150}
	mutedGray  = rgb{107, 114, 128}
	stripeFill = rgb{245, 245, 245}
)

const pageAlias = "{nb}"

// RenderPDF writes doc as an A4 PDF to w.
func RenderPDF(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AliasNbPages(pageAlias)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator(doc.FooterBrand, true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	pdf.SetFooterFunc(func() {
		y := pageH - footerOffset
		pdf.SetFont("Helvetica", "I", 8)
		setText(pdf, mutedGray)
		pdf.SetXY(pageMargin, y-3)
		pdf.CellFormat(contentW/2, 6, tr(doc.FooterNote()), "", 0, "L", false, 0, "")
		pdf.SetXY(pageMargin+contentW/2, y-3)
		pdf.CellFormat(contentW/2, 6, tr(PageLabel(pdf.PageNo(), pageAlias)), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	setText(pdf, black)
	pdf.CellFormat(contentW, 10, tr(doc.Title), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	for _, s := range doc.Subtitles {
		pdf.CellFormat(contentW, 7, tr(s), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	y := pdf.GetY()
	pdf.SetDrawColor(lightGray.r, lightGray.g, lightGray.b)
	pdf.SetLineWidth(0.5)
	pdf.Line(pageMargin, y, pageW-pageMargin, y)
	pdf.Ln(8)

	for _, sec := range doc.Sections {
		if sec.BreakIfBelow > 0 && pdf.GetY() > sec.BreakIfBelow {
			pdf.AddPage()
		}
		pdf.SetFont("Helvetica", "B", 16)
		setText(pdf, darkGray)
		pdf.CellFormat(contentW, 9, tr(sec.Heading), "", 1, "L", false, 0, "")
		pdf.Ln(1)
		drawTable(pdf, tr, sec.Table, contentW)
		pdf.Ln(10)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func drawTable(pdf *fpdf.Fpdf, tr func(string) string, t Table, contentW float64) {
	widths := columnWidths(t, contentW)
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(lightGray.r, lightGray.g, lightGray.b)

	head := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(mediumGray.r, mediumGray.g, mediumGray.b)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range t.Head {
			pdf.CellFormat(widths[i], rowHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	head()

	bold := indexSet(t.BoldColumns)
	muted := indexSet(t.MutedColumns)
	border := "1"
	if t.Style == Striped {
		border = ""
	}

	for r, row := range t.Rows {
		if pdf.GetY()+rowHeight > bottomLimit {
			pdf.AddPage()
			head()
		}
		fill := t.Style == Striped && r%2 == 1
		if fill {
			pdf.SetFillColor(stripeFill.r, stripeFill.g, stripeFill.b)
		}
		for i := range t.Head {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			style := ""
			if bold[i] {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, 10)
			if muted[i] {
				setText(pdf, mutedGray)
			} else {
				setText(pdf, black)
			}
			pdf.CellFormat(widths[i], rowHeight, tr(cell), border, 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

func columnWidths(t Table, contentW float64) []float64 {
	n := len(t.Head)
	widths := make([]float64, n)
	fixed, free := 0.0, 0
	for i := 0; i < n; i++ {
		if i < len(t.Widths) && t.Widths[i] > 0 {
			widths[i] = t.Widths[i]
			fixed += t.Widths[i]
		} else {
			free++
		}
	}
	if free > 0 {
		share := (contentW - fixed) / float64(free)
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

func indexSet(idx []int) map[int]bool {
	m := make(map[int]bool, len(idx))
	for _, i := range idx {
		m[i] = true
	}
	return m
}

func setText(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c.r, c.g, c.b)
}
