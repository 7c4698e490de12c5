package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
)

// TemplComponent matches templ.Component.
type TemplComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

// TemplOption is an alias for datastar's PatchElementOption.
type TemplOption = datastar.PatchElementOption

// WithTarget sets the selector the component is patched into.
func WithTarget(selector string) TemplOption {
	return datastar.WithSelector(selector)
}

// WithPatchMode sets how the component is merged into the DOM.
func WithPatchMode(mode datastar.ElementPatchMode) TemplOption {
	return datastar.WithMode(mode)
}

type templResponse struct {
	status  int
	partial TemplComponent
	full    TemplComponent
	options []datastar.PatchElementOption
}

// Render patches the partial over SSE for DataStar and writes the full page otherwise.
func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		return NewSSE(w, r).PatchElementTempl(t.partial, t.options...)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if t.status != 0 {
		w.WriteHeader(t.status)
	}
	return t.full.Render(r.Context(), w)
}

// Templ renders component as HTML, or as an element patch for DataStar.
func Templ(component TemplComponent, opts ...TemplOption) Response {
	return templResponse{partial: component, full: component, options: opts}
}

// TemplPartial renders partial for DataStar requests and full otherwise.
func TemplPartial(partial, full TemplComponent, opts ...TemplOption) Response {
	return templResponse{partial: partial, full: full, options: opts}
}

// TemplWithStatus renders component as a full page with a non-200 status.
func TemplWithStatus(status int, component TemplComponent) Response {
	return templResponse{status: status, partial: component, full: component}
}
