package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-inlinecreate/components/references"
	"github.com/goliatone/go-inlinecreate/components/references/widgetwiring"
	"github.com/goliatone/go-inlinecreate/internal/config"
	"github.com/goliatone/go-inlinecreate/pkg/notify"
	"github.com/goliatone/go-inlinecreate/pkg/tui"
	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

type pickFlags struct {
	widgets  string
	selectID string
	parent   string
	baseURL  string
}

// promptDriver is swapped in tests.
var promptDriver = func(a *app) tui.PromptDriver {
	return tui.NewSurveyDriver(a.errOut)
}

func newPickCmd(a *app) *cobra.Command {
	var flags pickFlags
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose or create a value for one select in the terminal",
		Long: `Pick loads the widgets manifest, offers the options of one select plus an
"add new" entry and, when chosen, creates the entry through the creation
endpoint. The selected value is printed to stdout.

Examples:
  inlinecreate pick --widgets widgets.yaml --select company
  inlinecreate pick -w widgets.yaml -s department --parent 42 --base-url http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPick(cmd, a, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.widgets, "widgets", "w", "", "Widgets manifest (overrides widgets)")
	cmd.Flags().StringVarP(&flags.selectID, "select", "s", "", "Select id to pick a value for")
	cmd.Flags().StringVar(&flags.parent, "parent", "", "Value of the parent select, for parent-scoped models")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Endpoint base URL (overrides endpoint.base_url)")
	_ = cmd.MarkFlagRequired("select")
	return cmd
}

func runPick(cmd *cobra.Command, a *app, flags pickFlags) error {
	ctx := cmd.Context()
	manifest, err := a.manifest(flags.widgets)
	if err != nil {
		return err
	}
	spec, ok := manifest.Find(strings.TrimSpace(flags.selectID))
	if !ok {
		return fmt.Errorf("select %q is not in the widgets manifest", flags.selectID)
	}

	baseURL := strings.TrimSpace(flags.baseURL)
	if baseURL == "" {
		baseURL = endpointBaseURL(a.cfg)
	}
	client, err := newPickClient(a, baseURL)
	if err != nil {
		return err
	}

	doc := widget.NewMemoryDocument()
	for _, s := range manifest.Widgets {
		doc.AddControl(widget.NewSelect(s.SelectID, s.Options...))
	}
	if spec.ParentSelectID != "" && strings.TrimSpace(flags.parent) != "" {
		parent, ok := doc.Control(spec.ParentSelectID)
		if ok {
			parent.AppendOption(widget.Option{Value: flags.parent, Label: flags.parent})
			parent.Select(flags.parent)
		}
	}

	controller := widget.NewController(client,
		widget.WithLogger(a.logger),
		widget.WithMeterProvider(a.meters),
		widget.WithNotifier(notify.Multi{notify.NewTerminal(a.errOut), notify.NewLogger(a.logger)}),
	)
	augmenter := widget.NewAugmenter(doc, controller, widget.WithAugmenterLogger(a.logger))

	cfg := spec.AugmentConfig
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = references.MountPath(a.cfg.Server.BasePath, references.WithRoutePath(a.cfg.Endpoint.RoutePath))
	}
	binding, err := augmenter.Init(cfg)
	if err != nil {
		return err
	}

	session := tui.New(tui.WithPromptDriver(promptDriver(a)), tui.WithLogger(a.logger))
	value, err := session.Pick(ctx, binding)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) || errors.Is(err, tui.ErrCancelled) {
			return nil
		}
		return err
	}
	_, err = fmt.Fprintln(a.out, value)
	return err
}

// endpointBaseURL returns endpoint.base_url, or the local server address.
func endpointBaseURL(cfg config.Config) string {
	if base := strings.TrimSpace(cfg.Endpoint.BaseURL); base != "" {
		return base
	}
	addr := strings.TrimSpace(cfg.Server.Addr)
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

// newPickClient builds the creation client. With a CSRF cookie configured the
// jar is seeded with a fresh token so the double-submit check passes.
func newPickClient(a *app, baseURL string) (*widget.Client, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(a.cfg.Endpoint.CSRFCookie); name != "" {
		jar.SetCookies(target, []*http.Cookie{{Name: name, Value: uuid.NewString(), Path: "/"}})
	}

	options := []widget.ClientOption{
		widget.WithBaseURL(baseURL),
		widget.WithHTTPClient(&http.Client{Timeout: a.cfg.Endpoint.Timeout, Jar: jar}),
		widget.WithClientLogger(a.logger),
	}
	options = append(options, widgetwiring.ClientOptions(references.WithCSRF(a.cfg.Endpoint.CSRFCookie, a.cfg.Endpoint.CSRFHeader))...)
	return widget.NewClient(options...), nil
}
