package report

// Options controls page geometry. Sizes are in millimetres.
type Options struct {
	Title       string
	Orientation string // "P" or "L"
	PageSize    string // gofpdf size name, e.g. "A4"
	Margin      float64
}

// DefaultOptions returns portrait A4 with 10mm margins.
func DefaultOptions() Options {
	return Options{
		Orientation: "P",
		PageSize:    "A4",
		Margin:      10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Orientation == "" {
		o.Orientation = d.Orientation
	}
	if o.PageSize == "" {
		o.PageSize = d.PageSize
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	return o
}
