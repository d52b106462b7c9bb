package references

import (
	"errors"
	"net/http"
	"strings"
)

// Mux is anything that can mount a handler on a pattern, such as
// *http.ServeMux or chi.Router.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Component holds one resolved Options value so the handler, the mounted
// pattern and the store all agree.
type Component struct {
	opts Options
}

func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return NewOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

func (c *Component) Store() Store {
	return c.Options().Store
}

func (c *Component) Handler() http.Handler {
	return HandlerWithOptions(c.Options())
}

// RegisterRoutes mounts the creation handler on mux under basePath and
// returns the pattern used.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, c.Options())
}

func (c *Component) MountPath(basePath string) string {
	return joinRoute(basePath, c.Options().RoutePath)
}

// MountPath reports where RegisterRoutes would mount the handler.
func MountPath(basePath string, fns ...OptionFn) string {
	return New(fns...).MountPath(basePath)
}

func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	return New(fns...).RegisterRoutes(mux, basePath)
}

// RegisterRoutesWithOptions mounts a handler built from opts.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (string, error) {
	if mux == nil {
		return "", errors.New("references: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := joinRoute(basePath, opts.RoutePath)
	mux.Handle(pattern, HandlerWithOptions(opts))
	return pattern, nil
}

// joinRoute prefixes route with base. The result always starts with a slash
// and keeps route's trailing slash.
func joinRoute(base, route string) string {
	route = "/" + strings.TrimLeft(strings.TrimSpace(route), "/")
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return route
	}
	return "/" + base + route
}
