package widget

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Marker attributes read by the bulk initializer.
const (
	AttrEnabled               = "data-inline-create"
	AttrSelectID              = "data-inline-create-select"
	AttrModel                 = "data-inline-create-model"
	AttrParentSelect          = "data-inline-create-parent"
	AttrParentRequired        = "data-inline-create-requires-parent"
	AttrTitle                 = "data-inline-create-title"
	AttrHint                  = "data-inline-create-hint"
	AttrLabel                 = "data-inline-create-label"
	AttrPlaceholder           = "data-inline-create-placeholder"
	AttrEndpoint              = "data-inline-create-endpoint"
	AttrSuccessMessage        = "data-inline-create-success-message"
	AttrParentRequiredMessage = "data-inline-create-parent-message"
	AttrButtonPosition        = "data-inline-create-button-position"
)

// MarkerConfig is the typed read of one declarative marker.
type MarkerConfig struct {
	Enabled               bool
	SelectID              string
	Model                 string
	ParentSelectID        string
	ParentRequired        bool
	Title                 string
	Hint                  string
	Label                 string
	Placeholder           string
	Endpoint              string
	SuccessMessage        string
	ParentRequiredMessage string
	ButtonPosition        ButtonPosition
}

// ReadMarker reads every recognised attribute of m.
func ReadMarker(m Marker) MarkerConfig {
	get := func(name string) string {
		value, _ := m.Attr(name)
		return strings.TrimSpace(value)
	}
	enabled, _ := m.Attr(AttrEnabled)
	required, _ := m.Attr(AttrParentRequired)
	return MarkerConfig{
		Enabled:               affirmative(enabled),
		SelectID:              get(AttrSelectID),
		Model:                 get(AttrModel),
		ParentSelectID:        get(AttrParentSelect),
		ParentRequired:        affirmative(required),
		Title:                 get(AttrTitle),
		Hint:                  get(AttrHint),
		Label:                 get(AttrLabel),
		Placeholder:           get(AttrPlaceholder),
		Endpoint:              get(AttrEndpoint),
		SuccessMessage:        get(AttrSuccessMessage),
		ParentRequiredMessage: get(AttrParentRequiredMessage),
		ButtonPosition:        ButtonPosition(get(AttrButtonPosition)),
	}
}

// Validate reports markers that cannot name a control or a model.
func (m MarkerConfig) Validate() error {
	if m.SelectID == "" {
		return ErrMissingSelectID
	}
	if m.Model == "" {
		return ErrMissingModel
	}
	return nil
}

// AugmentConfig converts the marker into an augmentation config.
func (m MarkerConfig) AugmentConfig() AugmentConfig {
	return AugmentConfig{
		SelectID:              m.SelectID,
		Endpoint:              m.Endpoint,
		Model:                 m.Model,
		ParentSelectID:        m.ParentSelectID,
		RequiresParent:        m.ParentRequired,
		CanAdd:                m.Enabled,
		Title:                 m.Title,
		Hint:                  m.Hint,
		Label:                 m.Label,
		Placeholder:           m.Placeholder,
		SuccessMessage:        m.SuccessMessage,
		ParentRequiredMessage: m.ParentRequiredMessage,
		ButtonPosition:        m.ButtonPosition,
	}
}

// ParseMarker reads and validates m.
func ParseMarker(m Marker) (AugmentConfig, error) {
	cfg := ReadMarker(m)
	if err := cfg.Validate(); err != nil {
		return AugmentConfig{}, err
	}
	return cfg.AugmentConfig(), nil
}

func affirmative(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "true", "1":
		return true
	default:
		return false
	}
}

// Skipped records a marker the bulk initializer did not augment.
type Skipped struct {
	SelectID string
	Err      error
}

// Report summarises a bulk scan.
type Report struct {
	Augmented []string
	Skipped   []Skipped
}

// BulkInitializer augments every enabled marker of a document.
type BulkInitializer struct {
	doc       Document
	augmenter *Augmenter
	logger    *slog.Logger
}

// NewBulkInitializer constructs an initializer feeding augmenter from the
// markers of doc.
func NewBulkInitializer(doc Document, augmenter *Augmenter, logger *slog.Logger) *BulkInitializer {
	if logger == nil {
		logger = discardLogger()
	}
	return &BulkInitializer{doc: doc, augmenter: augmenter, logger: logger}
}

// Scan reads the markers once and augments each enabled one. Markers that
// are disabled, incomplete or refer to missing controls are skipped without
// surfacing an error.
func (b *BulkInitializer) Scan(ctx context.Context) Report {
	var report Report
	if b.doc == nil || b.augmenter == nil {
		return report
	}
	for _, marker := range b.doc.Markers() {
		cfg, err := ParseMarker(marker)
		if err == nil {
			_, err = b.augmenter.Init(cfg)
		}
		if err != nil {
			id, _ := marker.Attr(AttrSelectID)
			report.Skipped = append(report.Skipped, Skipped{SelectID: strings.TrimSpace(id), Err: err})
			level := slog.LevelDebug
			if errors.Is(err, ErrAlreadyAugmented) {
				level = slog.LevelWarn
			}
			b.logger.Log(ctx, level, "inline create marker skipped",
				slog.String("select", id),
				slog.Any("error", err),
			)
			continue
		}
		report.Augmented = append(report.Augmented, cfg.SelectID)
	}
	return report
}
