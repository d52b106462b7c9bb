package widget

import (
	"sort"
	"strings"
	"sync"
)

// Option is a (value, label) pair held by a choice control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Control is a single-value choice control.
type Control interface {
	ID() string
	// Value reports the selected value, or "" when nothing is selected.
	Value() string
	Options() []Option
	AppendOption(opt Option)
	// Select marks value as the selected option. It reports false when no
	// option carries that value.
	Select(value string) bool
}

// Marker is the attribute set of an element flagged for inline creation.
type Marker struct {
	Attrs map[string]string
}

// Attr returns a marker attribute.
func (m Marker) Attr(name string) (string, bool) {
	if m.Attrs == nil {
		return "", false
	}
	value, ok := m.Attrs[name]
	return value, ok
}

// Document locates controls and markers and applies the add affordance.
type Document interface {
	Control(id string) (Control, bool)
	Markers() []Marker
	// Attach wraps control in its layout container and inserts the add
	// affordance described by cfg.
	Attach(control Control, cfg AugmentConfig) error
}

// Select is an in-memory Control.
type Select struct {
	id string

	mu       sync.RWMutex
	options  []Option
	selected string
}

// NewSelect constructs a control seeded with options and no selection.
func NewSelect(id string, options ...Option) *Select {
	return &Select{
		id:      strings.TrimSpace(id),
		options: append([]Option(nil), options...),
	}
}

func (s *Select) ID() string {
	return s.id
}

func (s *Select) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *Select) Options() []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Option(nil), s.options...)
}

func (s *Select) AppendOption(opt Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = append(s.options, opt)
}

func (s *Select) Select(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opt := range s.options {
		if opt.Value == value {
			s.selected = value
			return true
		}
	}
	return false
}

// MemoryDocument is an in-memory Document. Attach records the augmented
// control ids in order.
type MemoryDocument struct {
	mu       sync.RWMutex
	controls map[string]Control
	markers  []Marker
	attached []AugmentConfig
}

// NewMemoryDocument constructs a document holding the provided controls.
func NewMemoryDocument(controls ...Control) *MemoryDocument {
	doc := &MemoryDocument{controls: make(map[string]Control, len(controls))}
	for _, control := range controls {
		doc.AddControl(control)
	}
	return doc
}

// AddControl registers control under its id, replacing any previous entry.
func (d *MemoryDocument) AddControl(control Control) {
	if control == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.controls[control.ID()] = control
}

// AddMarker appends a declarative marker.
func (d *MemoryDocument) AddMarker(attrs map[string]string) {
	clone := make(map[string]string, len(attrs))
	for k, v := range attrs {
		clone[k] = v
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markers = append(d.markers, Marker{Attrs: clone})
}

func (d *MemoryDocument) Control(id string) (Control, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	control, ok := d.controls[strings.TrimSpace(id)]
	return control, ok
}

func (d *MemoryDocument) Markers() []Marker {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Marker(nil), d.markers...)
}

func (d *MemoryDocument) Attach(control Control, cfg AugmentConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attached = append(d.attached, cfg)
	return nil
}

// Attached returns the ids passed to Attach, in call order.
func (d *MemoryDocument) Attached() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.attached))
	for _, cfg := range d.attached {
		out = append(out, cfg.SelectID)
	}
	return out
}

// ControlIDs returns the registered control ids sorted.
func (d *MemoryDocument) ControlIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.controls))
	for id := range d.controls {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
