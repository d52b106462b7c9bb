// Package notify provides widget.Notifier implementations: an in-memory
// recorder, a toast queue that dismisses notices on a timer, a lipgloss
// terminal writer, a slog adapter and a fan-out.
package notify
