package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// JSON binds an application/json body. Unknown fields are rejected.
// Requests with another content type yield ErrBinderNotApplicable so a form
// binder can take over.
//
//	r.Post("/users", handler.Wrap(createUser,
//		handler.WithBinders[handler.Context, CreateUserRequest](binder.JSON(), binder.Form()),
//	))
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if mediaType(r) != "application/json" {
			return ErrBinderNotApplicable
		}

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrInvalidJSON)
			}
			return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}

		var extra json.RawMessage
		if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
		}

		return nil
	}
}
