package binder

import (
	"fmt"
	"net/http"
	"strings"
)

// Form binds application/x-www-form-urlencoded and multipart bodies using
// `form:"name"` tags. Other content types yield ErrBinderNotApplicable.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		mt := mediaType(r)
		switch {
		case mt == "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
		case strings.HasPrefix(mt, "multipart/"):
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
		default:
			return ErrBinderNotApplicable
		}
		return bindValues(v, "form", r.PostForm, ErrInvalidForm)
	}
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = ct[:idx]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
