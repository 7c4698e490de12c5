package handler

import (
	"encoding/json"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
)

// StreamContext extends Context with SSE streaming.
type StreamContext interface {
	Context

	// SendComponent patches a templ component into the page.
	SendComponent(component TemplComponent, opts ...TemplOption) error

	// SendSignals merges values into the client's signals.
	SendSignals(signals map[string]any) error
}

// SSEHandler runs for the lifetime of one SSE connection.
type SSEHandler func(ctx StreamContext) error

type sseResponse struct {
	handler SSEHandler
}

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return NewHTTPError(http.StatusBadRequest, "sse_requires_datastar")
	}
	base := NewContext(w, r)
	if base.SSE() == nil {
		return ErrSSENotInitialized
	}
	return s.handler(&streamContext{Context: base, sse: base.SSE()})
}

// SSE creates a streaming response. The connection closes when h returns or
// the client goes away.
func SSE(h SSEHandler) Response {
	return sseResponse{handler: h}
}

type streamContext struct {
	Context
	sse *datastar.ServerSentEventGenerator
}

func (c *streamContext) SendComponent(component TemplComponent, opts ...TemplOption) error {
	return c.sse.PatchElementTempl(component, opts...)
}

func (c *streamContext) SendSignals(signals map[string]any) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return c.sse.PatchSignals(data)
}
