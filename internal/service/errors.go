package service

import "errors"

// Common service errors. Handlers map these onto HTTP statuses and response
// error codes.
var (
	// ErrInvalidArgument rejects malformed input (mode outside 1..5,
	// non-positive limit, negative offset) before any data access.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound signals that a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSessionNotFound signals an unknown or expired feed session.
	ErrSessionNotFound = errors.New("feed session not found")

	// ErrFeedExhausted signals that a swipe was attempted with no candidate
	// left in the session stack.
	ErrFeedExhausted = errors.New("no candidates remaining")
)
