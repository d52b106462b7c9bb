// Package tui drives an augmented control from a terminal: the user picks an
// existing option or creates one through the binding's dialog.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// DefaultMaxAttempts bounds the name prompts of one creation.
const DefaultMaxAttempts = 5

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// Session runs pick flows against bindings.
type Session struct {
	driver      PromptDriver
	logger      *slog.Logger
	maxAttempts int
}

// New constructs a Session using survey prompts by default.
func New(options ...Option) *Session {
	s := &Session{
		logger:      slog.New(slog.DiscardHandler),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s
}

// Pick lets the user choose an option of the binding's control, or create a
// new one, and returns the selected value.
func (s *Session) Pick(ctx context.Context, binding *widget.Binding) (string, error) {
	if binding == nil {
		return "", fmt.Errorf("tui: %w", widget.ErrControlNotFound)
	}
	cfg := binding.Config()
	control := binding.Control()
	options := control.Options()

	labels := make([]string, 0, len(options)+1)
	current := control.Value()
	defaultIndex := 0
	for i, opt := range options {
		label := strings.TrimSpace(opt.Label)
		if label == "" {
			label = opt.Value
		}
		labels = append(labels, label)
		if opt.Value == current {
			defaultIndex = i
		}
	}
	labels = append(labels, "+ "+cfg.Title)

	index, err := s.driver.Select(ctx, SelectConfig{
		Message:      cfg.Label,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         cfg.Hint,
	})
	if err != nil {
		return "", err
	}
	if index < 0 || index > len(options) {
		return "", ErrNoOptions
	}
	if index < len(options) {
		value := options[index].Value
		control.Select(value)
		return value, nil
	}
	return s.create(ctx, binding)
}

func (s *Session) create(ctx context.Context, binding *widget.Binding) (string, error) {
	dialog := binding.Activate()
	cfg := dialog.Config()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		view := dialog.View()
		name, err := s.driver.Input(ctx, InputConfig{
			Message: view.Title + " - " + view.Label,
			Default: view.Name,
			Help:    view.Hint,
		})
		if err != nil {
			dialog.Cancel()
			return "", err
		}
		dialog.SetName(name)

		err = dialog.Submit(ctx)
		if err == nil {
			value := dialog.Target().Value()
			s.logger.InfoContext(ctx, "option created", slog.String("select", cfg.SelectID), slog.String("value", value))
			return value, nil
		}
		if errors.Is(err, widget.ErrStaleResult) || errors.Is(err, widget.ErrDialogClosed) {
			return "", err
		}

		_ = s.driver.Info(ctx, "✗ "+dialog.InlineError())

		var validation *widget.ValidationError
		if errors.As(err, &validation) && validation.Field == widget.FieldParent {
			dialog.Cancel()
			return "", err
		}

		again, cerr := s.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
		if cerr != nil || !again {
			dialog.Cancel()
			if cerr != nil {
				return "", cerr
			}
			return "", ErrCancelled
		}
	}

	dialog.Cancel()
	return "", ErrCancelled
}
