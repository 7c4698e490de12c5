package report

import "math"

// Slice is one page's share of a tall piece of content.
type Slice struct {
	Page   int
	Offset float64
	Height float64
}

// Paginate splits contentHeight into pages of pageHeight. The last slice
// holds the remainder. Exact multiples produce no trailing empty page.
// Non-positive inputs yield nil.
func Paginate(contentHeight, pageHeight float64) []Slice {
	if contentHeight <= 0 || pageHeight <= 0 {
		return nil
	}

	n := int(math.Ceil(contentHeight / pageHeight))
	out := make([]Slice, 0, n)
	for i := 0; i < n; i++ {
		offset := float64(i) * pageHeight
		out = append(out, Slice{
			Page:   i,
			Offset: offset,
			Height: math.Min(pageHeight, contentHeight-offset),
		})
	}
	return out
}
