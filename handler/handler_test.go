package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/medstock/binder"
	"github.com/dmitrymomot/medstock/handler"
	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/validator"
)

type nameRequest struct {
	Name string `json:"name" form:"name"`
}

type textComponent string

func (c textComponent) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(c))
	return err
}

var errUnavailable = errors.New("store unavailable")

func newErrorHandler() handler.ErrorHandler[handler.Context] {
	return handler.NewErrorHandler(logger.Noop(), handler.ErrorHandlerConfig{
		Statuses: []handler.ErrorStatus{
			{Err: errUnavailable, Code: http.StatusServiceUnavailable, Key: "data_access_failed"},
		},
	})
}

func TestWrap(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(
		func(ctx handler.Context, req nameRequest) handler.Response {
			if req.Name == "" {
				return handler.Error(validator.Apply(validator.Required("name", req.Name)))
			}
			if req.Name == "down" {
				return handler.Error(errUnavailable)
			}
			return handler.JSON(map[string]string{"hello": req.Name})
		},
		handler.WithBinders[handler.Context, nameRequest](binder.JSON(), binder.Form()),
		handler.WithErrorHandler[handler.Context, nameRequest](newErrorHandler()),
	)

	t.Run("binds form and renders json", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=amina"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":{"hello":"amina"}}`, rec.Body.String())
	})

	t.Run("validation failure is 422 with details", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body handler.JSONResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotNil(t, body.Error)
		assert.Equal(t, "validation_error", body.Error.Code)
		assert.Contains(t, body.Error.Details, "name")
	})

	t.Run("mapped sentinel status", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"down"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "data_access_failed")
	})

	t.Run("bad json is 400", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("html error falls back to plain text", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=down"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "data_access_failed")
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		nilHandler := handler.Wrap(func(handler.Context, struct{}) handler.Response { return nil })
		rec := httptest.NewRecorder()
		nilHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	t.Run("regular request gets 303", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		require.NoError(t, handler.Redirect("/dashboard").Render(rec, req))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("datastar request gets sse redirect", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set(handler.DataStarRequestHeader, "true")
		require.NoError(t, handler.Redirect("/dashboard").Render(rec, req))

		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "/dashboard")
	})
}

func TestSafeRedirectPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target string
		want   string
	}{
		{"/users?page=2", "/users?page=2"},
		{"", "/dashboard"},
		{"https://evil.example", "/dashboard"},
		{"//evil.example", "/dashboard"},
		{"/\\evil.example", "/dashboard"},
		{"users", "/dashboard"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, handler.SafeRedirectPath(tt.target, "/dashboard"), tt.target)
	}
}

func TestTempl(t *testing.T) {
	t.Parallel()

	t.Run("full page for browsers", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, handler.TemplPartial(textComponent("<li>row</li>"), textComponent("<html>page</html>")).Render(rec, req))

		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "<html>page</html>", rec.Body.String())
	})

	t.Run("partial patch for datastar", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "text/event-stream")
		require.NoError(t, handler.TemplPartial(textComponent("<li>row</li>"), textComponent("<html>page</html>")).Render(rec, req))

		body := rec.Body.String()
		assert.Contains(t, body, "<li>row</li>")
		assert.NotContains(t, body, "page")
	})

	t.Run("status page", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, handler.TemplWithStatus(http.StatusUnauthorized, textComponent("denied")).Render(rec, req))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSSE(t *testing.T) {
	t.Parallel()

	t.Run("requires datastar", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		err := handler.SSE(func(handler.StreamContext) error { return nil }).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		var httpErr handler.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("streams signals and components", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(handler.DataStarRequestHeader, "true")

		err := handler.SSE(func(stream handler.StreamContext) error {
			if err := stream.SendSignals(map[string]any{"count": 2}); err != nil {
				return err
			}
			return stream.SendComponent(textComponent("<tbody id=\"users\"></tbody>"), handler.WithTarget("#users"))
		}).Render(rec, req)
		require.NoError(t, err)

		body := rec.Body.String()
		assert.Contains(t, body, `"count":2`)
		assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("#users")))
	})
}
