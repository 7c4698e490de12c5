// Package handler provides typed HTTP handlers for the console screens.
//
// A HandlerFunc receives a Context and a request value populated by binders,
// and returns a Response. Responses adapt to the caller: DataStar requests
// get SSE patches and redirects, JSON clients get an envelope, and browsers
// get HTML.
//
//	r.Post("/users", handler.Wrap(createUser,
//		handler.WithBinders[handler.Context, CreateUserRequest](binder.JSON(), binder.Form()),
//		handler.WithErrorHandler[handler.Context, CreateUserRequest](errorHandler),
//	))
//
// NewErrorHandler classifies errors: validation failures become 422 with
// per-field details, configured sentinels map to their status, HTTPError
// carries its own status, and everything else is a 500.
package handler
