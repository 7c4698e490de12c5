package report_test

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/medstock/pkg/report"
)

func TestPaginate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content float64
		page    float64
		want    []report.Slice
	}{
		{
			name:    "fits on one page",
			content: 200,
			page:    277,
			want:    []report.Slice{{Page: 0, Offset: 0, Height: 200}},
		},
		{
			name:    "exact multiple has no trailing page",
			content: 554,
			page:    277,
			want: []report.Slice{
				{Page: 0, Offset: 0, Height: 277},
				{Page: 1, Offset: 277, Height: 277},
			},
		},
		{
			name:    "remainder goes to last page",
			content: 600,
			page:    277,
			want: []report.Slice{
				{Page: 0, Offset: 0, Height: 277},
				{Page: 1, Offset: 277, Height: 277},
				{Page: 2, Offset: 554, Height: 46},
			},
		},
		{name: "empty content", content: 0, page: 277, want: nil},
		{name: "invalid page height", content: 100, page: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, report.Paginate(tt.content, tt.page))
		})
	}
}

func pageCount(pdf []byte) int {
	return len(regexp.MustCompile(`/Type /Page\b[^s]`).FindAll(pdf, -1))
}

func tallImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(y % 256), G: 80, B: 160, A: 255})
		}
	}
	return img
}

func TestRenderPDF(t *testing.T) {
	t.Parallel()

	t.Run("splits tall content across pages", func(t *testing.T) {
		t.Parallel()
		// A4 portrait with 10mm margins: 190x277mm content. At 190px width
		// one pixel is one millimetre, so 600px needs three pages.
		var buf bytes.Buffer
		require.NoError(t, report.RenderPDF(&buf, tallImage(190, 600), report.DefaultOptions()))

		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		assert.Equal(t, 3, pageCount(buf.Bytes()))
	})

	t.Run("short content is one page", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, report.RenderPDF(&buf, tallImage(380, 100), report.Options{Title: "Stock"}))
		assert.Equal(t, 1, pageCount(buf.Bytes()))
	})

	t.Run("empty image", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		err := report.RenderPDF(&buf, image.NewRGBA(image.Rect(0, 0, 0, 0)), report.DefaultOptions())
		assert.ErrorIs(t, err, report.ErrEmptyContent)
		assert.ErrorIs(t, report.RenderPDF(&buf, nil, report.DefaultOptions()), report.ErrEmptyContent)
	})
}

func TestStripBounds(t *testing.T) {
	t.Parallel()

	bounds := image.Rect(0, 0, 190, 1000)
	strips := report.StripBounds(bounds, report.Paginate(1000, 333.5))
	require.Len(t, strips, 3)

	assert.Equal(t, bounds.Min.Y, strips[0].Min.Y)
	for i := 1; i < len(strips); i++ {
		assert.Equal(t, strips[i-1].Max.Y, strips[i].Min.Y, "strip %d", i)
	}
	assert.Equal(t, bounds.Max.Y, strips[len(strips)-1].Max.Y)

	total := 0
	for _, r := range strips {
		total += r.Dy()
	}
	assert.Equal(t, bounds.Dy(), total)
}

func TestFitCell(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Zuhura \xd6zt\xfcrk", report.FitCell("Zuhura Öztürk", 200))

	cut := report.FitCell(strings.Repeat("Ö", 60), 20)
	assert.True(t, strings.HasSuffix(cut, "..."))
	assert.True(t, strings.HasPrefix(cut, "\xd6"))
	assert.NotContains(t, cut, "\uFFFD")
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	columns := []report.Column{
		{Header: "Name", Width: 3},
		{Header: "Role", Width: 2},
		{Header: "Status", Width: 1},
	}

	t.Run("many rows span pages", func(t *testing.T) {
		t.Parallel()
		rows := make([][]string, 100)
		for i := range rows {
			rows[i] = []string{fmt.Sprintf("User %03d", i), "facility_manager", "active"}
		}

		var buf bytes.Buffer
		err := report.RenderTable(&buf, report.Table{
			Title:     "Users",
			Columns:   columns,
			Rows:      rows,
			Generated: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		}, report.DefaultOptions())
		require.NoError(t, err)
		assert.Greater(t, pageCount(buf.Bytes()), 1)
	})

	t.Run("no rows still renders header page", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, report.RenderTable(&buf, report.Table{Title: "Users", Columns: columns}, report.Options{}))
		assert.Equal(t, 1, pageCount(buf.Bytes()))
	})

	t.Run("no columns", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		assert.ErrorIs(t, report.RenderTable(&buf, report.Table{}, report.Options{}), report.ErrEmptyContent)
	})
}
