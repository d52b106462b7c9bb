package widget

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"
)

// Severity classifies a notice.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier renders transient notices. Implementations live in pkg/notify.
type Notifier interface {
	Notify(ctx context.Context, message string, severity Severity)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string, severity Severity)

func (fn NotifierFunc) Notify(ctx context.Context, message string, severity Severity) {
	if fn != nil {
		fn(ctx, message, severity)
	}
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, Severity) {}

// Controller owns the single live creation dialog. Opening a dialog tears
// down the previous one; a torn down dialog can no longer mutate its target.
type Controller struct {
	creator  Creator
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics

	provider metric.MeterProvider

	mu      sync.Mutex
	current *Dialog

	sequence atomic.Uint64
	active   atomic.Uint64
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithNotifier sets the notice sink for success and failure messages.
func WithNotifier(notifier Notifier) ControllerOption {
	return func(c *Controller) {
		if notifier != nil {
			c.notifier = notifier
		}
	}
}

// WithLogger sets the controller logger, shared by its dialogs.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMeterProvider records submission metrics on provider instead of the
// global one.
func WithMeterProvider(provider metric.MeterProvider) ControllerOption {
	return func(c *Controller) {
		c.provider = provider
	}
}

// NewController constructs a controller. A nil creator falls back to an HTTP
// Client with default settings.
func NewController(creator Creator, options ...ControllerOption) *Controller {
	if creator == nil {
		creator = NewClient()
	}
	c := &Controller{
		creator:  creator,
		notifier: noopNotifier{},
		logger:   discardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.metrics = newMetrics(c.provider)
	return c
}

// Open shows a new dialog for target, closing any dialog that is already
// open. parent may be nil. onSuccess runs after a successful creation.
func (c *Controller) Open(target, parent Control, cfg AugmentConfig, onSuccess func(CreationResult)) *Dialog {
	cfg = cfg.WithDefaults()
	generation := c.sequence.Add(1)
	d := &Dialog{
		owner:      c,
		generation: generation,
		config:     cfg,
		target:     target,
		parent:     parent,
		onSuccess:  onSuccess,
		state:      DialogOpen,
		focus:      FieldName,
	}

	c.mu.Lock()
	previous := c.current
	c.current = d
	c.active.Store(generation)
	c.mu.Unlock()

	if previous != nil {
		previous.close(closeReplaced)
	}
	c.logger.Debug("inline create dialog opened",
		slog.String("select", cfg.SelectID),
		slog.String("model", cfg.Model),
	)
	return d
}

// Current returns the live dialog, or nil.
func (c *Controller) Current() *Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close closes the live dialog, if any.
func (c *Controller) Close() {
	if d := c.Current(); d != nil {
		d.Cancel()
	}
}

func (c *Controller) isActive(generation uint64) bool {
	return c.active.Load() == generation
}

func (c *Controller) release(generation uint64) {
	c.active.CompareAndSwap(generation, 0)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.generation == generation {
		c.current = nil
	}
}
