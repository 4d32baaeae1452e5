package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrSessionClosed is returned when editing a closed session.
	ErrSessionClosed = errors.New("tui: session is closed")
)
