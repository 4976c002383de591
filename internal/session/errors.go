package session

import "errors"

var (
	ErrInvalidSource   = errors.New("invalid source uri")
	ErrSessionNotFound = errors.New("session not found")
)
