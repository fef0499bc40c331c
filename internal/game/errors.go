package game

import "errors"

var (
	// ErrSessionNotFound is returned when no live session exists for an ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCompleted is returned for mutations on a finished session.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrInvalidLetter is returned when typed input is not a single letter.
	ErrInvalidLetter = errors.New("input must be a single letter")
	// ErrUnknownWildcard is returned for an unrecognized wildcard kind.
	ErrUnknownWildcard = errors.New("unknown wildcard kind")
)
