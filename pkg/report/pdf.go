package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"
)

func newDocument(opts Options) *gofpdf.Fpdf {
	pdf := gofpdf.New(opts.Orientation, "mm", opts.PageSize, "")
	pdf.SetMargins(opts.Margin, opts.Margin, opts.Margin)
	pdf.SetAutoPageBreak(false, opts.Margin)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	return pdf
}

// RenderPDF scales img to the page content width and writes it across as
// many pages as its height needs.
func RenderPDF(w io.Writer, img image.Image, opts Options) error {
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyContent
	}
	opts = opts.withDefaults()

	pdf := newDocument(opts)
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*opts.Margin
	contentH := pageH - 2*opts.Margin

	bounds := img.Bounds()
	// millimetres per source pixel
	scale := contentW / float64(bounds.Dx())
	pagePixels := contentH / scale

	for i, r := range stripBounds(bounds, Paginate(float64(bounds.Dy()), pagePixels)) {
		strip, err := encodeStrip(img, r)
		if err != nil {
			return errors.Join(ErrRender, err)
		}

		name := fmt.Sprintf("page-%d", i)
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(strip))
		pdf.ImageOptions(name, opts.Margin, opts.Margin, contentW, float64(r.Dy())*scale, false,
			gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return errors.Join(ErrRender, err)
	}
	return nil
}

// stripBounds maps page slices onto pixel rows of b. Each strip starts where
// the previous one ended, so no row lands on two pages.
func stripBounds(b image.Rectangle, slices []Slice) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(slices))
	top := b.Min.Y
	for _, s := range slices {
		bottom := min(b.Min.Y+int(math.Round(s.Offset+s.Height)), b.Max.Y)
		if bottom <= top {
			continue
		}
		out = append(out, image.Rect(b.Min.X, top, b.Max.X, bottom))
		top = bottom
	}
	return out
}

func encodeStrip(img image.Image, r image.Rectangle) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
