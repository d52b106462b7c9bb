package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	inlinecreate "github.com/goliatone/go-inlinecreate"
	"github.com/goliatone/go-inlinecreate/components/references"
	"github.com/goliatone/go-inlinecreate/components/references/widgetwiring"
	"github.com/goliatone/go-inlinecreate/internal/config"
	"github.com/goliatone/go-inlinecreate/pkg/markup"
	"github.com/goliatone/go-inlinecreate/pkg/markup/gotemplate"
	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

//go:embed templates/*.tpl
var demoTemplates embed.FS

const (
	demoPath   = "/demo"
	assetsPath = "/assets/"
)

type serveFlags struct {
	addr    string
	widgets string
}

func newServeCmd(a *app) *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the creation endpoint and an augmented demo page",
		Long: `Serve mounts the reference creation endpoint under the configured base
path, an augmented demo page at /demo and the widget stylesheet at /assets/.

Examples:
  inlinecreate serve --widgets widgets.yaml
  INLINECREATE_STORE_DRIVER=sqlite INLINECREATE_STORE_DSN=refs.db inlinecreate serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a, flags)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVarP(&flags.widgets, "widgets", "w", "", "Widgets manifest (overrides widgets)")
	return cmd
}

func runServe(ctx context.Context, a *app, flags serveFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	manifest, err := a.manifest(flags.widgets)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx, a.cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	handler, err := newServeHandler(a, store, manifest)
	if err != nil {
		return err
	}

	addr := a.cfg.Server.Addr
	if strings.TrimSpace(flags.addr) != "" {
		addr = flags.addr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting server", slog.String("addr", addr), slog.Int("widgets", len(manifest.Widgets)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// openStore returns the configured reference store and its release func.
func openStore(ctx context.Context, cfg config.StoreConfig) (references.Store, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.StoreSQLite:
		store, err := references.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return references.NewMemoryStore(), func() error { return nil }, nil
	}
}

func referenceOptions(a *app, store references.Store, manifest config.Manifest) []references.OptionFn {
	fns := []references.OptionFn{
		references.WithRoutePath(a.cfg.Endpoint.RoutePath),
		references.WithStore(store),
		references.WithCSRF(a.cfg.Endpoint.CSRFCookie, a.cfg.Endpoint.CSRFHeader),
		references.WithRequireAJAX(a.cfg.Endpoint.RequireAJAX),
		references.WithLogger(a.logger),
	}
	if models := widgetwiring.Models(manifest.Configs()...); len(models) > 0 {
		fns = append(fns, references.WithModels(models...))
	}
	return fns
}

// demo renders the demo page and dialog fragments.
type demo struct {
	app       *app
	store     references.Store
	manifest  config.Manifest
	endpoint  string
	pages     *gotemplate.Engine
	fragments *markup.Fragments
}

func newServeHandler(a *app, store references.Store, manifest config.Manifest) (http.Handler, error) {
	component := references.New(referenceOptions(a, store, manifest)...)

	pages, err := gotemplate.New(gotemplate.WithFS(demoTemplates))
	if err != nil {
		return nil, fmt.Errorf("demo templates: %w", err)
	}
	fragments, err := a.fragments()
	if err != nil {
		return nil, err
	}
	d := &demo{
		app:       a,
		store:     store,
		manifest:  manifest,
		endpoint:  component.MountPath(a.cfg.Server.BasePath),
		pages:     pages,
		fragments: fragments,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	pattern, err := component.RegisterRoutes(r, a.cfg.Server.BasePath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("creation endpoint mounted", slog.String("path", pattern))

	r.Get(demoPath, d.page)
	r.Get(demoPath+"/dialog/{selectID}", d.dialog)
	r.Handle(assetsPath+"*", http.StripPrefix(assetsPath, http.FileServerFS(inlinecreate.AssetsFS())))
	return r, nil
}

// widgetConfig returns the widget config for a manifest entry with the mounted endpoint filled in.
func (d *demo) widgetConfig(spec config.WidgetSpec) widget.AugmentConfig {
	cfg := spec.AugmentConfig
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = d.endpoint
	}
	return cfg.WithDefaults()
}

func (d *demo) page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := d.app.logger.With(slog.String("request_id", middleware.GetReqID(ctx)))

	widgets := make([]map[string]any, 0, len(d.manifest.Widgets))
	for _, spec := range d.manifest.Widgets {
		cfg := d.widgetConfig(spec)
		options, err := d.options(ctx, spec)
		if err != nil {
			logger.Error("list references failed", slog.String("model", cfg.Model), slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		widgets = append(widgets, map[string]any{
			"select_id":       cfg.SelectID,
			"model":           cfg.Model,
			"endpoint":        cfg.Endpoint,
			"can_add":         cfg.CanAdd,
			"title":           cfg.Title,
			"hint":            cfg.Hint,
			"label":           cfg.Model,
			"parent_select":   cfg.ParentSelectID,
			"parent_required": cfg.RequiresParent,
			"button_position": string(cfg.ButtonPosition),
			"options":         options,
		})
	}

	html, err := d.pages.RenderTemplate("templates/demo", map[string]any{
		"title":      "Inline create demo",
		"stylesheet": assetsPath + markup.StylesheetName,
		"widgets":    widgets,
	})
	if err != nil {
		logger.Error("render demo page failed", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	rt, err := inlinecreate.Bootstrap(ctx, strings.NewReader(html),
		inlinecreate.WithFragments(d.fragments),
		inlinecreate.WithLogger(logger),
		inlinecreate.WithMeterProvider(d.app.meters),
	)
	if err != nil {
		logger.Error("augment demo page failed", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	for _, skipped := range rt.Report.Skipped {
		logger.Debug("demo widget not augmented", slog.String("select", skipped.SelectID), slog.Any("error", skipped.Err))
	}

	d.ensureCSRFCookie(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rt.Render(w); err != nil {
		logger.Warn("write demo page failed", slog.Any("error", err))
	}
}

func (d *demo) options(ctx context.Context, spec config.WidgetSpec) ([]map[string]string, error) {
	out := make([]map[string]string, 0, len(spec.Options))
	for _, opt := range spec.Options {
		out = append(out, map[string]string{"value": opt.Value, "label": opt.Label})
	}
	refs, err := d.store.List(ctx, strings.ToLower(spec.Model), "")
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		out = append(out, map[string]string{"value": ref.ID, "label": ref.Name})
	}
	return out, nil
}

// ensureCSRFCookie issues the double-submit token the endpoint checks.
func (d *demo) ensureCSRFCookie(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(d.app.cfg.Endpoint.CSRFCookie)
	if name == "" {
		return
	}
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    uuid.NewString(),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

func (d *demo) dialog(w http.ResponseWriter, r *http.Request) {
	selectID := chi.URLParam(r, "selectID")
	spec, ok := d.manifest.Find(selectID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	cfg := d.widgetConfig(spec)
	view := widget.NewController(nil).Open(widget.NewSelect(cfg.SelectID), nil, cfg, nil).View()

	out, err := d.fragments.Dialog(view)
	if err != nil {
		d.app.logger.Error("render dialog failed", slog.String("select", selectID), slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, out)
}
