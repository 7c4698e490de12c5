package report

import (
	"errors"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	titleHeight = 12.0
	rowHeight   = 7.0
	fontSize    = 9.0
)

// Table is a simple tabular report.
type Table struct {
	Title     string
	Columns   []Column
	Rows      [][]string
	Generated time.Time
}

// Column describes one table column. Width is relative to the other columns.
type Column struct {
	Header string
	Width  float64
}

// RenderTable writes t as a PDF. Headers repeat on every page.
func RenderTable(w io.Writer, t Table, opts Options) error {
	if len(t.Columns) == 0 {
		return ErrEmptyContent
	}
	opts = opts.withDefaults()
	if opts.Title == "" {
		opts.Title = t.Title
	}

	pdf := newDocument(opts)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*opts.Margin
	widths := columnWidths(t.Columns, contentW)

	// First page carries the title block; all pages carry the header row.
	bodyH := pageH - 2*opts.Margin - titleHeight - rowHeight
	rowsPerPage := int(bodyH / rowHeight)
	if rowsPerPage < 1 {
		return errors.Join(ErrRender, errors.New("page too small for a single row"))
	}

	slices := Paginate(float64(len(t.Rows)), float64(rowsPerPage))
	if len(slices) == 0 {
		slices = []Slice{{}}
	}

	for _, s := range slices {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, titleHeight*0.6, tr(t.Title), "", 1, "L", false, 0, "")
		if !t.Generated.IsZero() {
			pdf.SetFont("Helvetica", "", 8)
			pdf.CellFormat(contentW, titleHeight*0.4, "Generated "+t.Generated.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
		} else {
			pdf.Ln(titleHeight * 0.4)
		}

		pdf.SetFont("Helvetica", "B", fontSize)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range t.Columns {
			pdf.CellFormat(widths[i], rowHeight, tr(c.Header), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", fontSize)
		start, end := int(s.Offset), int(s.Offset+s.Height)
		for _, row := range t.Rows[start:end] {
			for i := range t.Columns {
				var cell string
				if i < len(row) {
					cell = row[i]
				}
				pdf.CellFormat(widths[i], rowHeight, fit(pdf, tr(cell), widths[i]), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return errors.Join(ErrRender, err)
	}
	return nil
}

func columnWidths(cols []Column, total float64) []float64 {
	var sum float64
	for _, c := range cols {
		sum += max(c.Width, 1)
	}
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = total * max(c.Width, 1) / sum
	}
	return out
}

// fit truncates s so it fits within width at the current font. s is already
// in the single-byte font encoding.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}
