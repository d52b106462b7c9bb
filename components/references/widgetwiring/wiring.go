// Package widgetwiring connects widget configurations to the references
// component: endpoint URLs, client CSRF settings and the model allow-list.
package widgetwiring

import (
	"github.com/goliatone/go-inlinecreate/components/references"
	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// AugmentConfig returns a widget configuration for selectID posting to the
// component mounted under basePath.
func AugmentConfig(selectID, model, basePath string, fns ...references.OptionFn) widget.AugmentConfig {
	return widget.AugmentConfig{
		SelectID: selectID,
		Model:    model,
		CanAdd:   true,
		Endpoint: references.MountPath(basePath, fns...),
	}.WithDefaults()
}

// ClientOptions returns widget client options matching the component's
// anti-forgery settings.
func ClientOptions(fns ...references.OptionFn) []widget.ClientOption {
	opts := references.NewOptions(fns...)
	var out []widget.ClientOption
	if opts.CSRFCookie != "" {
		out = append(out, widget.WithCSRFCookie(opts.CSRFCookie), widget.WithCSRFHeader(opts.CSRFHeader))
	}
	return out
}

// Models derives the component allow-list from widget configurations. A
// configuration's parent model is the model of the configuration bound to its
// parent select.
func Models(configs ...widget.AugmentConfig) []references.Model {
	bySelect := make(map[string]string, len(configs))
	for _, cfg := range configs {
		cfg = cfg.WithDefaults()
		bySelect[cfg.SelectID] = cfg.Model
	}

	seen := make(map[string]int, len(configs))
	var models []references.Model
	for _, cfg := range configs {
		cfg = cfg.WithDefaults()
		if cfg.Model == "" {
			continue
		}
		model := references.Model{
			Name:           cfg.Model,
			ParentRequired: cfg.RequiresParent,
			ParentModel:    bySelect[cfg.ParentSelectID],
		}
		if i, ok := seen[cfg.Model]; ok {
			models[i].ParentRequired = models[i].ParentRequired || model.ParentRequired
			if models[i].ParentModel == "" {
				models[i].ParentModel = model.ParentModel
			}
			continue
		}
		seen[cfg.Model] = len(models)
		models = append(models, model)
	}
	return models
}
