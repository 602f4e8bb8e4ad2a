package chat

import "errors"

var (
	// ErrNotFound is returned when a connection id has no registry entry,
	// typically because an event raced with its disconnect.
	ErrNotFound = errors.New("chat: connection not found")

	// ErrUnknownEvent is returned by Dispatch for an event kind it cannot route.
	ErrUnknownEvent = errors.New("chat: unknown event kind")
)
