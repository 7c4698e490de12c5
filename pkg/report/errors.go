package report

import "errors"

var (
	ErrEmptyContent = errors.New("report: empty content")
	ErrRender       = errors.New("report: render failed")
)
