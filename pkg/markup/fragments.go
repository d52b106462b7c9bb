package markup

import (
	"fmt"
	"io/fs"
	"maps"
	"strings"

	gotemplatepkg "github.com/goliatone/go-template"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-inlinecreate/pkg/markup/gotemplate"
	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// Class slots. Theme tokens named "inline-create.<slot>" override them.
const (
	ClassWrapper  = "wrapper"
	ClassButton   = "button"
	ClassBackdrop = "backdrop"
	ClassDialog   = "dialog"
	ClassTitle    = "title"
	ClassHint     = "hint"
	ClassError    = "error"
	ClassActions  = "actions"
)

// TokenPrefix marks theme tokens that override class slots.
const TokenPrefix = "inline-create."

// DefaultClasses returns the built-in class names matching the embedded
// stylesheet.
func DefaultClasses() map[string]string {
	return map[string]string{
		ClassWrapper:  "inline-create",
		ClassButton:   "inline-create__add",
		ClassBackdrop: "inline-create__backdrop",
		ClassDialog:   "inline-create__dialog",
		ClassTitle:    "inline-create__title",
		ClassHint:     "inline-create__hint",
		ClassError:    "inline-create__error",
		ClassActions:  "inline-create__actions",
	}
}

// Option configures Fragments.
type Option func(*config)

type config struct {
	templateFS fs.FS
	renderer   TemplateRenderer
	selector   theme.ThemeSelector
	themeName  string
	variant    string
	classes    map[string]string
	postHooks  []gotemplatepkg.PostHook
}

// WithTemplatesFS replaces the embedded templates. The bundle must provide
// button.tpl and dialog.tpl under templates/.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplateRenderer injects a custom renderer; WithTemplatesFS is then
// ignored.
func WithTemplateRenderer(renderer TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.renderer = renderer
		}
	}
}

// WithPostHooks post-processes every fragment rendered by the embedded
// engine. Ignored when WithTemplateRenderer is set.
func WithPostHooks(hooks ...gotemplatepkg.PostHook) Option {
	return func(cfg *config) {
		cfg.postHooks = append(cfg.postHooks, hooks...)
	}
}

// WithThemeSelector resolves class tokens from a go-theme selection.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.selector = selector
		cfg.themeName = strings.TrimSpace(name)
		cfg.variant = strings.TrimSpace(variant)
	}
}

// WithClasses overrides individual class slots after theme tokens apply.
func WithClasses(classes map[string]string) Option {
	return func(cfg *config) {
		if len(classes) == 0 {
			return
		}
		if cfg.classes == nil {
			cfg.classes = make(map[string]string, len(classes))
		}
		maps.Copy(cfg.classes, classes)
	}
}

// Fragments renders widget markup.
type Fragments struct {
	templates TemplateRenderer
	classes   map[string]string
	tokens    map[string]string
}

// New builds Fragments backed by the embedded templates unless a renderer or
// template bundle is supplied.
func New(options ...Option) (*Fragments, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.renderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithPostHooks(cfg.postHooks...),
		)
		if err != nil {
			return nil, fmt.Errorf("markup: configure template renderer: %w", err)
		}
		renderer = engine
	}

	tokens, err := resolveTokens(cfg.selector, cfg.themeName, cfg.variant)
	if err != nil {
		return nil, err
	}

	classes := DefaultClasses()
	for key, value := range tokens {
		slot, ok := strings.CutPrefix(key, TokenPrefix)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		classes[slot] = value
	}
	maps.Copy(classes, cfg.classes)

	return &Fragments{templates: renderer, classes: classes, tokens: tokens}, nil
}

func resolveTokens(selector theme.ThemeSelector, name, variant string) (map[string]string, error) {
	if selector == nil {
		return map[string]string{}, nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("markup: select theme %q: %w", name, err)
	}
	tokens := map[string]string{}
	if selection == nil || selection.Manifest == nil {
		return tokens, nil
	}
	maps.Copy(tokens, selection.Manifest.Tokens)
	if v, ok := selection.Manifest.Variants[selection.Variant]; ok {
		maps.Copy(tokens, v.Tokens)
	}
	return tokens, nil
}

// Class returns the class name for slot.
func (f *Fragments) Class(slot string) string {
	return f.classes[slot]
}

// Classes returns a copy of every class slot.
func (f *Fragments) Classes() map[string]string {
	return maps.Clone(f.classes)
}

// Tokens returns a copy of the resolved theme tokens.
func (f *Fragments) Tokens() map[string]string {
	return maps.Clone(f.tokens)
}

// Button renders the add button for cfg.
func (f *Fragments) Button(cfg widget.AugmentConfig) (string, error) {
	cfg = cfg.WithDefaults()
	label := SanitizeLabel(cfg.ButtonLabel)
	if label == "" {
		label = widget.DefaultButtonLabel
	}
	out, err := f.templates.RenderTemplate("templates/button", map[string]any{
		"classes":    f.classes,
		"select_id":  cfg.SelectID,
		"model":      cfg.Model,
		"title":      cfg.Title,
		"label_html": label,
	})
	if err != nil {
		return "", fmt.Errorf("markup: render button: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Dialog renders the creation modal for a dialog snapshot.
func (f *Fragments) Dialog(view widget.DialogView) (string, error) {
	out, err := f.templates.RenderTemplate("templates/dialog", map[string]any{
		"classes":         f.classes,
		"dialog_id":       "inline-create-" + view.SelectID,
		"select_id":       view.SelectID,
		"model":           view.Model,
		"state":           view.State.String(),
		"title":           view.Title,
		"hint_html":       SanitizeText(view.Hint),
		"label":           view.Label,
		"placeholder":     view.Placeholder,
		"name":            view.Name,
		"error":           view.Error,
		"focus":           view.Focus,
		"submit_disabled": view.SubmitDisabled,
	})
	if err != nil {
		return "", fmt.Errorf("markup: render dialog: %w", err)
	}
	return strings.TrimSpace(out), nil
}
