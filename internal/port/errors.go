package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrMissingInput         = errors.New("required input missing")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthenticated      = errors.New("not authenticated with Google")
	ErrInvalidGrant         = errors.New("invalid grant")
	ErrChannelNotFound      = errors.New("watch channel not found")
	ErrChannelTokenMismatch = errors.New("watch channel token mismatch")
)
