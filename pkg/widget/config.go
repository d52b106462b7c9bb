package widget

import "strings"

// DefaultEndpoint is the creation endpoint used when a configuration does not
// provide one.
const DefaultEndpoint = "/api/reference/create/"

// Display defaults applied by AugmentConfig.WithDefaults.
const (
	DefaultTitle                 = "Add new"
	DefaultLabel                 = "Name"
	DefaultPlaceholder           = "Enter a name"
	DefaultButtonLabel           = "+"
	DefaultSuccessMessage        = "Created successfully"
	DefaultParentRequiredMessage = "Please select a parent first"
)

// Messages surfaced inline by the dialog.
const (
	MessageNameRequired = "Name is required"
	MessageNetworkError = "Network error, please try again"
	MessageCreateFailed = "Could not create the item"
)

// ButtonPosition places the add affordance relative to the control.
type ButtonPosition string

const (
	ButtonAfter  ButtonPosition = "after"
	ButtonBefore ButtonPosition = "before"
)

// AugmentConfig describes one augmented control. It is built once during
// initialization and passed around by value.
type AugmentConfig struct {
	SelectID       string `json:"select_id" yaml:"select_id"`
	Endpoint       string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Model          string `json:"model" yaml:"model"`
	ParentSelectID string `json:"parent_select_id,omitempty" yaml:"parent_select_id,omitempty"`
	RequiresParent bool   `json:"requires_parent,omitempty" yaml:"requires_parent,omitempty"`
	CanAdd         bool   `json:"can_add" yaml:"can_add"`

	Title                 string         `json:"title,omitempty" yaml:"title,omitempty"`
	Hint                  string         `json:"hint,omitempty" yaml:"hint,omitempty"`
	Label                 string         `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder           string         `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	SuccessMessage        string         `json:"success_message,omitempty" yaml:"success_message,omitempty"`
	ParentRequiredMessage string         `json:"parent_required_message,omitempty" yaml:"parent_required_message,omitempty"`
	ButtonLabel           string         `json:"button_label,omitempty" yaml:"button_label,omitempty"`
	ButtonPosition        ButtonPosition `json:"button_position,omitempty" yaml:"button_position,omitempty"`
}

// WithDefaults returns a copy with identifiers trimmed and every empty display
// string replaced by its default.
func (c AugmentConfig) WithDefaults() AugmentConfig {
	c.SelectID = strings.TrimSpace(c.SelectID)
	c.Model = strings.TrimSpace(c.Model)
	c.ParentSelectID = strings.TrimSpace(c.ParentSelectID)
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	c.Title = orDefault(c.Title, DefaultTitle)
	c.Label = orDefault(c.Label, DefaultLabel)
	c.Placeholder = orDefault(c.Placeholder, DefaultPlaceholder)
	c.SuccessMessage = orDefault(c.SuccessMessage, DefaultSuccessMessage)
	c.ParentRequiredMessage = orDefault(c.ParentRequiredMessage, DefaultParentRequiredMessage)
	c.ButtonLabel = orDefault(c.ButtonLabel, DefaultButtonLabel)
	switch ButtonPosition(strings.ToLower(strings.TrimSpace(string(c.ButtonPosition)))) {
	case ButtonBefore:
		c.ButtonPosition = ButtonBefore
	default:
		c.ButtonPosition = ButtonAfter
	}
	return c
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
