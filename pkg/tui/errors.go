package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrCancelled is returned when the user declines to retry a failed
	// creation.
	ErrCancelled = errors.New("tui: creation cancelled")
	// ErrNoOptions is returned when there is nothing to pick and creation is
	// unavailable.
	ErrNoOptions = errors.New("tui: no options to choose from")
)
