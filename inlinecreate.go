// Package inlinecreate augments HTML select controls with an inline "add new"
// dialog and exposes the embedded widget templates and stylesheet.
package inlinecreate

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/goliatone/go-inlinecreate/pkg/htmldoc"
	"github.com/goliatone/go-inlinecreate/pkg/markup"
	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// AugmentConfig aliases widget.AugmentConfig for callers that only import the
// root package.
type AugmentConfig = widget.AugmentConfig

// CreationResult aliases widget.CreationResult.
type CreationResult = widget.CreationResult

// Report aliases the bulk scan summary.
type Report = widget.Report

// Runtime is an augmented page together with the controller that owns its
// dialogs.
type Runtime struct {
	Document   *htmldoc.Document
	Controller *widget.Controller
	Augmenter  *widget.Augmenter
	Report     Report
}

// Option customises Bootstrap.
type Option func(*bootstrapConfig)

type bootstrapConfig struct {
	creator   widget.Creator
	notifier  widget.Notifier
	logger    *slog.Logger
	fragments *markup.Fragments
	provider  metric.MeterProvider
	configs   []widget.AugmentConfig
}

// WithCreator sets the creation client used by every dialog.
func WithCreator(creator widget.Creator) Option {
	return func(c *bootstrapConfig) {
		if creator != nil {
			c.creator = creator
		}
	}
}

// WithClientOptions builds the default HTTP client with the given options.
func WithClientOptions(options ...widget.ClientOption) Option {
	return func(c *bootstrapConfig) {
		c.creator = widget.NewClient(options...)
	}
}

// WithNotifier sets where success and failure notices go.
func WithNotifier(notifier widget.Notifier) Option {
	return func(c *bootstrapConfig) {
		if notifier != nil {
			c.notifier = notifier
		}
	}
}

// WithLogger sets the logger shared by the document, controller and scan.
func WithLogger(logger *slog.Logger) Option {
	return func(c *bootstrapConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFragments overrides the markup used for wrappers and buttons.
func WithFragments(fragments *markup.Fragments) Option {
	return func(c *bootstrapConfig) {
		if fragments != nil {
			c.fragments = fragments
		}
	}
}

// WithMeterProvider records submission metrics on provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(c *bootstrapConfig) {
		if provider != nil {
			c.provider = provider
		}
	}
}

// WithConfigs augments the listed controls in addition to the page markers.
// Controls already augmented by a marker are reported as skipped.
func WithConfigs(configs ...widget.AugmentConfig) Option {
	return func(c *bootstrapConfig) {
		c.configs = append(c.configs, configs...)
	}
}

// Bootstrap parses an HTML page, augments every enabled marker and every
// explicit config, and returns the live runtime. Only parse and fragment
// errors are returned; per-control problems land in Runtime.Report.
func Bootstrap(ctx context.Context, r io.Reader, options ...Option) (*Runtime, error) {
	cfg := bootstrapConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	docOptions := []htmldoc.Option{htmldoc.WithLogger(cfg.logger)}
	if cfg.fragments != nil {
		docOptions = append(docOptions, htmldoc.WithFragments(cfg.fragments))
	}
	doc, err := htmldoc.Parse(r, docOptions...)
	if err != nil {
		return nil, fmt.Errorf("inlinecreate: %w", err)
	}

	controllerOptions := []widget.ControllerOption{widget.WithLogger(cfg.logger)}
	if cfg.notifier != nil {
		controllerOptions = append(controllerOptions, widget.WithNotifier(cfg.notifier))
	}
	if cfg.provider != nil {
		controllerOptions = append(controllerOptions, widget.WithMeterProvider(cfg.provider))
	}
	controller := widget.NewController(cfg.creator, controllerOptions...)
	augmenter := widget.NewAugmenter(doc, controller, widget.WithAugmenterLogger(cfg.logger))

	report := widget.NewBulkInitializer(doc, augmenter, cfg.logger).Scan(ctx)
	for _, c := range cfg.configs {
		if _, err := augmenter.Init(c); err != nil {
			report.Skipped = append(report.Skipped, widget.Skipped{SelectID: c.SelectID, Err: err})
			cfg.logger.DebugContext(ctx, "inline create config skipped",
				slog.String("select", c.SelectID),
				slog.Any("error", err),
			)
			continue
		}
		report.Augmented = append(report.Augmented, c.SelectID)
	}

	return &Runtime{
		Document:   doc,
		Controller: controller,
		Augmenter:  augmenter,
		Report:     report,
	}, nil
}

// Render writes the augmented page.
func (rt *Runtime) Render(w io.Writer) error {
	return rt.Document.Render(w)
}
