package widget

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DialogState is the lifecycle state of a creation dialog.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogSubmitting
)

func (s DialogState) String() string {
	switch s {
	case DialogOpen:
		return "open"
	case DialogSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Fields reported by ValidationError.
const (
	FieldName   = "name"
	FieldParent = "parent"
)

const (
	closeCancel   = "cancel"
	closeBackdrop = "backdrop"
	closeReplaced = "replaced"
)

// DialogView is a point-in-time snapshot of a dialog used by renderers.
type DialogView struct {
	SelectID       string
	Model          string
	Title          string
	Hint           string
	Label          string
	Placeholder    string
	Name           string
	Error          string
	Focus          string
	State          DialogState
	SubmitDisabled bool
	RequiresParent bool
}

// Dialog collects one name and attempts one creation at a time. Dialogs are
// created by Controller.Open.
type Dialog struct {
	owner      *Controller
	generation uint64
	config     AugmentConfig
	target     Control
	parent     Control
	onSuccess  func(CreationResult)

	mu      sync.Mutex
	state   DialogState
	name    string
	message string
	focus   string
}

// SetName replaces the name input value.
func (d *Dialog) SetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
}

// State reports the current lifecycle state.
func (d *Dialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// InlineError returns the message shown inside the dialog, if any.
func (d *Dialog) InlineError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.message
}

// Config returns the configuration the dialog was opened with.
func (d *Dialog) Config() AugmentConfig {
	return d.config
}

// Target returns the control the created option is appended to.
func (d *Dialog) Target() Control {
	return d.target
}

// View snapshots the dialog for rendering.
func (d *Dialog) View() DialogView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DialogView{
		SelectID:       d.config.SelectID,
		Model:          d.config.Model,
		Title:          d.config.Title,
		Hint:           d.config.Hint,
		Label:          d.config.Label,
		Placeholder:    d.config.Placeholder,
		Name:           d.name,
		Error:          d.message,
		Focus:          d.focus,
		State:          d.state,
		SubmitDisabled: d.state != DialogOpen,
		RequiresParent: d.config.RequiresParent,
	}
}

// Cancel closes the dialog from its cancel button.
func (d *Dialog) Cancel() {
	d.close(closeCancel)
}

// DismissBackdrop closes the dialog from a click outside the modal.
func (d *Dialog) DismissBackdrop() {
	d.close(closeBackdrop)
}

// Submit validates the name and parent, issues the creation request and
// applies its outcome. Failures leave the dialog open with an inline error.
// Closing the dialog while the request is in flight discards the response and
// Submit returns ErrStaleResult.
func (d *Dialog) Submit(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := d.owner.logger

	d.mu.Lock()
	switch d.state {
	case DialogClosed:
		d.mu.Unlock()
		return ErrDialogClosed
	case DialogSubmitting:
		d.mu.Unlock()
		return ErrSubmitInFlight
	}

	name := strings.TrimSpace(d.name)
	if name == "" {
		d.message = MessageNameRequired
		d.focus = FieldName
		d.mu.Unlock()
		d.owner.metrics.outcome(ctx, d.config.Model, OutcomeValidation)
		return &ValidationError{Field: FieldName, Message: MessageNameRequired}
	}

	var parentID string
	if d.parent != nil {
		parentID = strings.TrimSpace(d.parent.Value())
	}
	if d.config.RequiresParent && parentID == "" {
		d.message = d.config.ParentRequiredMessage
		d.mu.Unlock()
		d.owner.metrics.outcome(ctx, d.config.Model, OutcomeValidation)
		return &ValidationError{Field: FieldParent, Message: d.config.ParentRequiredMessage}
	}

	d.state = DialogSubmitting
	d.message = ""
	req := CreationRequest{Model: d.config.Model, Name: name, ParentID: parentID}
	d.mu.Unlock()

	started := time.Now()
	result, err := d.owner.creator.Create(ctx, d.config.Endpoint, req)
	d.owner.metrics.requestDuration(ctx, d.config.Model, time.Since(started))

	d.mu.Lock()
	if d.state != DialogSubmitting || !d.owner.isActive(d.generation) {
		d.mu.Unlock()
		d.owner.metrics.outcome(ctx, d.config.Model, OutcomeStale)
		logger.WarnContext(ctx, "discarding creation result for closed dialog",
			slog.String("select", d.config.SelectID),
			slog.String("model", d.config.Model),
			slog.String("id", result.ID),
			slog.Any("error", err),
		)
		return ErrStaleResult
	}

	if err != nil {
		message, outcome := failureMessage(err)
		if outcome == OutcomeTransport {
			var transportErr *TransportError
			if !errors.As(err, &transportErr) {
				err = &TransportError{Err: err}
			}
		}
		d.state = DialogOpen
		d.message = message
		d.mu.Unlock()

		d.owner.metrics.outcome(ctx, d.config.Model, outcome)
		logger.InfoContext(ctx, "inline creation failed",
			slog.String("select", d.config.SelectID),
			slog.String("model", d.config.Model),
			slog.String("outcome", outcome),
			slog.Any("error", err),
		)
		d.owner.notifier.Notify(ctx, message, SeverityError)
		return err
	}

	label := result.DisplayLabel(name)
	d.target.AppendOption(Option{Value: result.ID, Label: label})
	d.target.Select(result.ID)
	d.state = DialogClosed
	d.message = ""
	d.mu.Unlock()

	d.owner.metrics.outcome(ctx, d.config.Model, OutcomeSuccess)
	logger.InfoContext(ctx, "inline creation succeeded",
		slog.String("select", d.config.SelectID),
		slog.String("model", d.config.Model),
		slog.String("id", result.ID),
	)
	d.owner.notifier.Notify(ctx, d.config.SuccessMessage, SeveritySuccess)
	d.owner.release(d.generation)
	if d.onSuccess != nil {
		d.onSuccess(result)
	}
	return nil
}

func (d *Dialog) close(reason string) {
	d.mu.Lock()
	if d.state == DialogClosed {
		d.mu.Unlock()
		return
	}
	inFlight := d.state == DialogSubmitting
	d.state = DialogClosed
	d.mu.Unlock()

	d.owner.release(d.generation)
	d.owner.logger.Debug("inline create dialog closed",
		slog.String("select", d.config.SelectID),
		slog.String("reason", reason),
		slog.Bool("in_flight", inFlight),
	)
}

func failureMessage(err error) (string, string) {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		if msg := strings.TrimSpace(appErr.Message); msg != "" {
			return msg, OutcomeApplication
		}
		return MessageCreateFailed, OutcomeApplication
	}
	return MessageNetworkError, OutcomeTransport
}
