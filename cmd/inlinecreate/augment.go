package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	inlinecreate "github.com/goliatone/go-inlinecreate"
)

type augmentFlags struct {
	output  string
	widgets string
}

func newAugmentCmd(a *app) *cobra.Command {
	var flags augmentFlags
	cmd := &cobra.Command{
		Use:   "augment <file|->",
		Short: "Augment the marked selects of an HTML page",
		Long: `Augment parses an HTML page, adds the "add new" affordance to every
select flagged with data-inline-create (plus any select listed in the widgets
manifest) and writes the resulting page.

Examples:
  inlinecreate augment page.html -o page.out.html
  cat page.html | inlinecreate augment - --widgets widgets.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAugment(cmd, a, args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVarP(&flags.widgets, "widgets", "w", "", "Widgets manifest with extra controls to augment")
	return cmd
}

func runAugment(cmd *cobra.Command, a *app, source string, flags augmentFlags) error {
	in, closeIn, err := openInput(a.in, source)
	if err != nil {
		return err
	}
	defer closeIn()

	manifest, err := a.manifest(flags.widgets)
	if err != nil {
		return err
	}
	fragments, err := a.fragments()
	if err != nil {
		return err
	}

	rt, err := inlinecreate.Bootstrap(cmd.Context(), in,
		inlinecreate.WithFragments(fragments),
		inlinecreate.WithLogger(a.logger),
		inlinecreate.WithConfigs(manifest.Configs()...),
	)
	if err != nil {
		return err
	}
	for _, skipped := range rt.Report.Skipped {
		a.logger.Info("select not augmented", slog.String("select", skipped.SelectID), slog.Any("error", skipped.Err))
	}
	a.logger.Info("page augmented", slog.Int("augmented", len(rt.Report.Augmented)), slog.Int("skipped", len(rt.Report.Skipped)))

	var out io.Writer = a.out
	if path := strings.TrimSpace(flags.output); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return rt.Render(out)
}

func openInput(stdin io.Reader, source string) (io.Reader, func(), error) {
	if source == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
