// Package pkg holds small helpers shared by every layer: the domain error
// values and the JSON response envelope.
package pkg

import "errors"

// Domain errors. Services wrap them with %w; handlers map them to HTTP
// status codes through Error.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
	ErrInternal        = errors.New("internal error")
)
