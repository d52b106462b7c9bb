package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// WidgetSpec is one manifest entry: an augmentation config plus the options
// its select starts with.
type WidgetSpec struct {
	widget.AugmentConfig `yaml:",inline"`
	Options              []widget.Option `yaml:"options,omitempty"`
}

// Manifest lists the widgets a page or terminal session works with.
type Manifest struct {
	Widgets []WidgetSpec `yaml:"widgets"`
}

// Configs returns the augmentation configs in manifest order.
func (m Manifest) Configs() []widget.AugmentConfig {
	out := make([]widget.AugmentConfig, 0, len(m.Widgets))
	for _, spec := range m.Widgets {
		out = append(out, spec.AugmentConfig)
	}
	return out
}

// Find returns the entry bound to selectID.
func (m Manifest) Find(selectID string) (WidgetSpec, bool) {
	for _, spec := range m.Widgets {
		if spec.SelectID == selectID {
			return spec, true
		}
	}
	return WidgetSpec{}, false
}

// LoadWidgets reads a YAML manifest from path.
func LoadWidgets(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("open widgets manifest: %w", err)
	}
	defer f.Close()
	return ParseWidgets(f)
}

// ParseWidgets decodes and validates a YAML manifest. Entries default
// can_add to true; select ids must be unique.
func ParseWidgets(r io.Reader) (Manifest, error) {
	var raw struct {
		Widgets []yaml.Node `yaml:"widgets"`
	}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Manifest{}, nil
		}
		return Manifest{}, fmt.Errorf("decode widgets manifest: %w", err)
	}

	var m Manifest
	seen := make(map[string]struct{}, len(raw.Widgets))
	for i, node := range raw.Widgets {
		spec := WidgetSpec{AugmentConfig: widget.AugmentConfig{CanAdd: true}}
		if err := node.Decode(&spec); err != nil {
			return Manifest{}, fmt.Errorf("widgets[%d]: %w", i, err)
		}
		spec.SelectID = strings.TrimSpace(spec.SelectID)
		spec.Model = strings.TrimSpace(spec.Model)
		if spec.SelectID == "" {
			return Manifest{}, fmt.Errorf("widgets[%d]: %w", i, widget.ErrMissingSelectID)
		}
		if spec.Model == "" {
			return Manifest{}, fmt.Errorf("widgets[%d] %q: %w", i, spec.SelectID, widget.ErrMissingModel)
		}
		if _, dup := seen[spec.SelectID]; dup {
			return Manifest{}, fmt.Errorf("widgets[%d]: duplicate select_id %q", i, spec.SelectID)
		}
		seen[spec.SelectID] = struct{}{}
		m.Widgets = append(m.Widgets, spec)
	}
	return m, nil
}
