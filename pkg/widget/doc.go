// Package widget implements the headless core of the inline create select: a
// choice control augmented with an "add new" affordance that opens a creation
// dialog, posts the new entity to a creation endpoint, and appends the created
// option to the control.
//
// The package is split along the same seams as the browser widget it models:
//
//   - Client issues the creation request (JSON body, anti-forgery header,
//     async marker) and classifies the response.
//   - Dialog is the Open/Submitting/Closed state machine for one creation.
//   - Controller owns at most one live Dialog and tears down the previous one
//     whenever a new dialog opens.
//   - Augmenter binds a control to its configuration and guards against
//     augmenting the same control twice.
//   - BulkInitializer reads declarative markers from a Document and augments
//     every enabled control.
//
// Controls, documents and notifiers are interfaces so the same core drives the
// server-side HTML adapter (pkg/htmldoc) and the terminal session (pkg/tui).
package widget
