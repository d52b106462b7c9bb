package markup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTheme is returned by ManifestSelector for names it does not hold.
var ErrUnknownTheme = errors.New("markup: unknown theme")

// ManifestSelector is a theme.ThemeSelector over manifests held in memory.
type ManifestSelector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests; the first one answers empty names.
func NewManifestSelector(manifests ...*theme.Manifest) *ManifestSelector {
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest)}
	for _, m := range manifests {
		s.Register(m)
	}
	return s
}

// Register adds or replaces a manifest.
func (s *ManifestSelector) Register(m *theme.Manifest) {
	if m == nil || strings.TrimSpace(m.Name) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[m.Name] = m
	if s.fallback == "" {
		s.fallback = m.Name
	}
}

// Select resolves name, or the first registered manifest when name is empty.
// Unknown variants fall back to the base tokens.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.fallback
	}
	m, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return &theme.Selection{Theme: name, Variant: strings.TrimSpace(variant), Manifest: m}, nil
}

type manifestFile struct {
	Name     string                       `yaml:"name"`
	Version  string                       `yaml:"version"`
	Tokens   map[string]string            `yaml:"tokens"`
	Variants map[string]map[string]string `yaml:"variants"`
}

// ParseThemeManifest reads a token manifest:
//
//	name: acme
//	tokens:
//	  inline-create.button: btn btn-sm
//	variants:
//	  dark:
//	    inline-create.dialog: modal modal-dark
func ParseThemeManifest(r io.Reader) (*theme.Manifest, error) {
	var file manifestFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("markup: decode theme manifest: %w", err)
	}
	if strings.TrimSpace(file.Name) == "" {
		return nil, errors.New("markup: theme manifest requires a name")
	}
	m := &theme.Manifest{
		Name:    strings.TrimSpace(file.Name),
		Version: file.Version,
		Tokens:  file.Tokens,
	}
	if len(file.Variants) > 0 {
		m.Variants = make(map[string]theme.Variant, len(file.Variants))
		for name, tokens := range file.Variants {
			m.Variants[name] = theme.Variant{Tokens: tokens}
		}
	}
	return m, nil
}

// LoadThemeManifest reads a token manifest from path.
func LoadThemeManifest(path string) (*theme.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("markup: open theme manifest: %w", err)
	}
	defer f.Close()
	return ParseThemeManifest(f)
}
