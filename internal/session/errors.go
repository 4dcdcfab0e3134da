package session

import "errors"

var (
	// ErrEmptySessionID is returned when a caller passes an empty session id.
	ErrEmptySessionID = errors.New("session: empty session id")

	// ErrEmptyContent is returned when a caller appends a message with no content.
	ErrEmptyContent = errors.New("session: empty message content")
)
