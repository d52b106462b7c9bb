package widget

import (
	"errors"
	"fmt"
	"net/http"
)

// Configuration errors abort augmentation of a single control.
var (
	ErrControlNotFound  = errors.New("widget: target control not found")
	ErrAddDisabled      = errors.New("widget: inline creation disabled")
	ErrMissingModel     = errors.New("widget: model tag is required")
	ErrMissingSelectID  = errors.New("widget: target select id is required")
	ErrAlreadyAugmented = errors.New("widget: control already augmented")
)

// Runtime errors returned by Dialog.Submit.
var (
	ErrSubmitInFlight = errors.New("widget: submission already in flight")
	ErrDialogClosed   = errors.New("widget: dialog is closed")
	ErrStaleResult    = errors.New("widget: result discarded for closed dialog")
)

// ValidationError is a local validation failure; no request was issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("widget: invalid %s: %s", e.Field, e.Message)
}

// TransportError reports a request that could not be sent or a response that
// could not be parsed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "widget: transport failure"
	}
	return "widget: transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError reports a creation endpoint that answered with a failure.
// Message carries the server supplied text and may be empty.
type ApplicationError struct {
	Status  int
	Message string
}

func (e *ApplicationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if msg == "" {
		msg = "creation rejected"
	}
	return fmt.Sprintf("widget: creation failed (status %d): %s", e.Status, msg)
}
