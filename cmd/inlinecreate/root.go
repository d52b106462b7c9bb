package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/goliatone/go-inlinecreate/internal/config"
	"github.com/goliatone/go-inlinecreate/internal/logging"
	"github.com/goliatone/go-inlinecreate/internal/telemetry"
	"github.com/goliatone/go-inlinecreate/pkg/markup"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	logFormat  string

	cfg      config.Config
	logger   *slog.Logger
	meters   metric.MeterProvider
	shutdown telemetry.ShutdownFunc
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut, logger: logging.Discard()}

	root := &cobra.Command{
		Use:   "inlinecreate",
		Short: "Inline \"add new\" creation for select controls",
		Long: `inlinecreate augments select controls with an "add new" dialog that
creates the missing reference entry and selects it.

Examples:
  inlinecreate serve --widgets widgets.yaml        # Demo page and creation endpoint
  inlinecreate augment page.html -o out.html       # Augment marked selects in a page
  inlinecreate pick --widgets widgets.yaml --select company`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newAugmentCmd(a))
	root.AddCommand(newPickCmd(a))
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(a.logLevel) != "" {
		cfg.Log.Level = a.logLevel
	}
	if strings.TrimSpace(a.logFormat) != "" {
		cfg.Log.Format = a.logFormat
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, a.errOut)
	if err != nil {
		return err
	}
	meters, shutdown, err := telemetry.New(cfg.Telemetry.Enabled, cfg.Telemetry.Interval, a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.meters = meters
	a.shutdown = shutdown
	return nil
}

// close flushes telemetry.
func (a *app) close() error {
	if a.shutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.shutdown(ctx)
}

// manifest loads the widgets manifest named by flag, falling back to the
// configured path. No path yields an empty manifest.
func (a *app) manifest(flag string) (config.Manifest, error) {
	path := strings.TrimSpace(flag)
	if path == "" {
		path = strings.TrimSpace(a.cfg.Widgets)
	}
	if path == "" {
		return config.Manifest{}, nil
	}
	return config.LoadWidgets(path)
}

// fragments builds the widget markup, applying the configured theme file.
func (a *app) fragments() (*markup.Fragments, error) {
	if strings.TrimSpace(a.cfg.Theme.File) == "" {
		return markup.New()
	}
	manifest, err := markup.LoadThemeManifest(a.cfg.Theme.File)
	if err != nil {
		return nil, err
	}
	selector := markup.NewManifestSelector(manifest)
	return markup.New(markup.WithThemeSelector(selector, a.cfg.Theme.Name, a.cfg.Theme.Variant))
}
