package handler

import (
	"net/http"
	"net/url"
	"strings"
)

type redirectResponse struct {
	url  string
	code int
}

// Render sends an SSE redirect to DataStar clients and a regular redirect otherwise.
func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	if IsDataStar(req) {
		return NewSSE(w, req).Redirect(r.url)
	}
	http.Redirect(w, req, r.url, r.code)
	return nil
}

// Redirect creates a 303 See Other redirect.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

// SafeRedirectPath returns target if it is a local absolute path, otherwise fallback.
// Protocol-relative and absolute URLs are rejected.
func SafeRedirectPath(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return target
}
