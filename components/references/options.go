package references

import (
	"log/slog"
	"net/http"
	"strings"
)

// DefaultRoutePath is the path widgets post to by default.
const DefaultRoutePath = "/api/reference/create/"

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes int64 = 64 << 10

type GuardFunc func(r *http.Request) error

// Model is an allow-listed reference model.
type Model struct {
	Name string
	// ParentRequired rejects requests without parent_id.
	ParentRequired bool
	// ParentModel names the model parent ids refer to. When set, labels read
	// "name (parent name)".
	ParentModel string
}

// scoped reports whether names of the model are unique per parent. Parent ids
// sent for unscoped models are ignored.
func (m Model) scoped() bool {
	return m.ParentModel != "" || m.ParentRequired
}

type Options struct {
	RoutePath    string
	Store        Store
	Guard        GuardFunc
	Models       []Model
	CSRFCookie   string
	CSRFHeader   string
	RequireAJAX  bool
	MaxBodyBytes int64
	Contract     *Contract
	Logger       *slog.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    DefaultRoutePath,
		CSRFHeader:   "X-CSRFToken",
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if strings.TrimSpace(opts.RoutePath) == "" {
		opts.RoutePath = DefaultRoutePath
	}
	if strings.TrimSpace(opts.CSRFHeader) == "" {
		opts.CSRFHeader = "X-CSRFToken"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Models != nil {
		models := make([]Model, 0, len(opts.Models))
		for _, m := range opts.Models {
			m.Name = normaliseModel(m.Name)
			m.ParentModel = normaliseModel(m.ParentModel)
			if m.Name != "" {
				models = append(models, m)
			}
		}
		opts.Models = models
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithStore(store Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = store
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithModels restricts the endpoint to the listed models. Without it any
// model name is accepted.
func WithModels(models ...Model) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Models = append([]Model{}, models...)
	}
}

// WithCSRF enables the double-submit check: the header value must equal the
// cookie value.
func WithCSRF(cookie, header string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.CSRFCookie = strings.TrimSpace(cookie)
		if strings.TrimSpace(header) != "" {
			o.CSRFHeader = strings.TrimSpace(header)
		}
	}
}

func WithRequireAJAX(require bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RequireAJAX = require
	}
}

func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = n
	}
}

func WithContract(contract *Contract) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Contract = contract
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// lookupModel reports the allow-list entry for name. With no allow-list every
// model is accepted without parent rules.
func lookupModel(opts Options, name string) (Model, bool) {
	if opts.Models == nil {
		return Model{Name: name}, name != ""
	}
	for _, m := range opts.Models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

func normaliseModel(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
