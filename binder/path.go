package binder

import (
	"net/http"
	"net/url"
	"reflect"
)

// Path binds path parameters using `path:"name"` tags and the router's
// extractor, e.g. binder.Path(chi.URLParam).
func Path(extractor func(r *http.Request, key string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv, err := target(v)
		if err != nil {
			return err
		}

		values := url.Values{}
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			name, skip := fieldName(rt.Field(i), "path")
			if skip {
				continue
			}
			if value := extractor(r, name); value != "" {
				values.Set(name, value)
			}
		}
		return bindValues(v, "path", values, ErrInvalidPath)
	}
}

func target(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, ErrInvalidTarget
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrInvalidTarget
	}
	return rv, nil
}
