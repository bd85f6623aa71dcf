// Package errors holds the sentinels repos and services wrap; the HTTP layer
// maps them through apierr.
package errors

import "errors"

var (
	// ErrNotFound: the requested profile, feedback or plan row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized: the bearer token is missing, expired or not ours.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument: caller input failed validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict: a write collided with an existing row.
	ErrConflict = errors.New("conflict")
)
