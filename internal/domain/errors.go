package domain

import "errors"

// Error taxonomy shared by every layer. Callers match with errors.Is.
var (
	// ErrNotFound means the requested client, account, card or record does not exist,
	// or the account does not belong to the requesting client.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable means the core-banking system or the advisory service failed.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidInput means a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists means a unique record is already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized means credentials or tokens were rejected.
	ErrUnauthorized = errors.New("unauthorized")
)
