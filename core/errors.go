package core

import "errors"

var (
	// ErrSessionNotFound is returned when a call id has no active session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoChoices is returned when a completion response carries no choices.
	ErrNoChoices = errors.New("no choices returned")

	// ErrEmptyReply is returned when a completion yields no speakable text.
	ErrEmptyReply = errors.New("empty reply")
)
