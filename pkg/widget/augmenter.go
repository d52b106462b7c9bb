package widget

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// CreatedHook observes successful creations across all bindings.
type CreatedHook func(binding *Binding, result CreationResult)

// Augmenter attaches the add affordance to controls of one document. Each
// control id is augmented at most once.
type Augmenter struct {
	doc        Document
	controller *Controller
	logger     *slog.Logger
	onCreated  CreatedHook

	mu       sync.Mutex
	bindings map[string]*Binding
	order    []string
}

// AugmenterOption configures an Augmenter.
type AugmenterOption func(*Augmenter)

// WithAugmenterLogger sets the augmenter logger.
func WithAugmenterLogger(logger *slog.Logger) AugmenterOption {
	return func(a *Augmenter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithCreatedHook registers fn to run after every successful creation.
func WithCreatedHook(fn CreatedHook) AugmenterOption {
	return func(a *Augmenter) {
		a.onCreated = fn
	}
}

// NewAugmenter constructs an augmenter for doc whose dialogs are owned by
// controller.
func NewAugmenter(doc Document, controller *Controller, options ...AugmenterOption) *Augmenter {
	if controller == nil {
		controller = NewController(nil)
	}
	a := &Augmenter{
		doc:        doc,
		controller: controller,
		logger:     discardLogger(),
		bindings:   make(map[string]*Binding),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Controller returns the dialog owner shared by all bindings.
func (a *Augmenter) Controller() *Controller {
	return a.controller
}

// Init augments the control named by cfg.SelectID. It fails with
// ErrControlNotFound, ErrAddDisabled, ErrMissingModel or ErrAlreadyAugmented
// before touching the document.
func (a *Augmenter) Init(cfg AugmentConfig) (*Binding, error) {
	if a.doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrControlNotFound)
	}
	cfg = cfg.WithDefaults()

	control, ok := a.doc.Control(cfg.SelectID)
	if !ok || control == nil {
		return nil, fmt.Errorf("%w: %q", ErrControlNotFound, cfg.SelectID)
	}
	if !cfg.CanAdd {
		return nil, fmt.Errorf("%w: %q", ErrAddDisabled, cfg.SelectID)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingModel, cfg.SelectID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.bindings[cfg.SelectID]; exists {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyAugmented, cfg.SelectID)
	}
	if err := a.doc.Attach(control, cfg); err != nil {
		return nil, fmt.Errorf("widget: attach %q: %w", cfg.SelectID, err)
	}

	binding := &Binding{augmenter: a, config: cfg, control: control}
	a.bindings[cfg.SelectID] = binding
	a.order = append(a.order, cfg.SelectID)

	a.logger.Debug("control augmented",
		slog.String("select", cfg.SelectID),
		slog.String("model", cfg.Model),
		slog.String("endpoint", cfg.Endpoint),
	)
	return binding, nil
}

// Binding returns the binding for a control id.
func (a *Augmenter) Binding(selectID string) (*Binding, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	binding, ok := a.bindings[strings.TrimSpace(selectID)]
	return binding, ok
}

// Bindings returns all bindings in augmentation order.
func (a *Augmenter) Bindings() []*Binding {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Binding, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.bindings[id])
	}
	return out
}

// Binding ties an augmented control to its configuration.
type Binding struct {
	augmenter *Augmenter
	config    AugmentConfig
	control   Control
}

// ID returns the augmented control id.
func (b *Binding) ID() string {
	return b.config.SelectID
}

// Config returns the binding configuration.
func (b *Binding) Config() AugmentConfig {
	return b.config
}

// Control returns the augmented control.
func (b *Binding) Control() Control {
	return b.control
}

// Parent resolves the parent control, or nil when none is configured or the
// document no longer holds it.
func (b *Binding) Parent() Control {
	if b.config.ParentSelectID == "" {
		return nil
	}
	parent, ok := b.augmenter.doc.Control(b.config.ParentSelectID)
	if !ok {
		return nil
	}
	return parent
}

// Activate is the add button handler: it opens a creation dialog for the
// control.
func (b *Binding) Activate() *Dialog {
	hook := b.augmenter.onCreated
	return b.augmenter.controller.Open(b.control, b.Parent(), b.config, func(result CreationResult) {
		if hook != nil {
			hook(b, result)
		}
	})
}
