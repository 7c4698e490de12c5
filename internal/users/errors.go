package users

import "errors"

var (
	ErrUserNotFound = errors.New("users.not_found")
	ErrEmailTaken   = errors.New("users.email_taken")
	ErrInvalidInput = errors.New("users.invalid_input")

	// ErrDataAccess wraps any storage failure. It is never retried.
	ErrDataAccess = errors.New("users.data_access_failed")

	// ErrAccountCreation wraps identity provider failures during Create.
	ErrAccountCreation = errors.New("users.account_creation_failed")
)
