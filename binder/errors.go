package binder

import "errors"

// Common binding errors
var (
	ErrBinderNotApplicable = errors.New("binder not applicable to request")
	ErrInvalidJSON         = errors.New("invalid JSON")
	ErrInvalidForm         = errors.New("invalid form data")
	ErrInvalidQuery        = errors.New("invalid query parameter")
	ErrInvalidPath         = errors.New("invalid path parameter")
	ErrInvalidTarget       = errors.New("bind target must be a non-nil pointer to struct")
)
