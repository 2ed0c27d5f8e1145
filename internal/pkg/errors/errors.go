package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotConfigured means a required credential is missing. Fatal to the
	// caller, never retried.
	ErrNotConfigured = errors.New("not configured")
	// ErrAssistantUnavailable covers model transport/auth failures and empty
	// replies. Surfaced to the client as a single unavailable outcome.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	// ErrPayloadTooLarge is returned by the image size guard before any model
	// call is attempted.
	ErrPayloadTooLarge = errors.New("payload too large")
)
