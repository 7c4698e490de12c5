package report

import "image"

func StripBounds(b image.Rectangle, slices []Slice) []image.Rectangle {
	return stripBounds(b, slices)
}

// FitCell runs s through the same encoding and truncation as table cells.
func FitCell(s string, width float64) string {
	pdf := newDocument(DefaultOptions())
	pdf.SetFont("Helvetica", "", fontSize)
	return fit(pdf, pdf.UnicodeTranslatorFromDescriptor("")(s), width)
}
