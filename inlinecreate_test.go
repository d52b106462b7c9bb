package inlinecreate

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-inlinecreate/pkg/notify"
	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

const bootstrapPage = `<!doctype html>
<html><body>
  <select id="company" data-inline-create="true" data-inline-create-model="company">
    <option value="">Choose…</option>
  </select>
  <select id="tag"></select>
  <select id="country" data-inline-create="false" data-inline-create-model="country"></select>
</body></html>`

type stubCreator struct {
	requests []widget.CreationRequest
	result   widget.CreationResult
	err      error
}

func (s *stubCreator) Create(_ context.Context, _ string, req widget.CreationRequest) (widget.CreationResult, error) {
	s.requests = append(s.requests, req)
	return s.result, s.err
}

func TestBootstrap_AugmentsMarkersAndConfigs(t *testing.T) {
	rt, err := Bootstrap(context.Background(), strings.NewReader(bootstrapPage),
		WithConfigs(AugmentConfig{SelectID: "tag", Model: "tag", CanAdd: true}),
	)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if diff := cmp.Diff([]string{"company", "tag"}, rt.Report.Augmented); diff != "" {
		t.Fatalf("augmented mismatch (-want +got):\n%s", diff)
	}
	if len(rt.Report.Skipped) != 1 || rt.Report.Skipped[0].SelectID != "country" {
		t.Fatalf("expected country to be skipped, got %+v", rt.Report.Skipped)
	}
	if !errors.Is(rt.Report.Skipped[0].Err, widget.ErrAddDisabled) {
		t.Fatalf("expected ErrAddDisabled, got %v", rt.Report.Skipped[0].Err)
	}

	var buf bytes.Buffer
	if err := rt.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.Count(buf.String(), "data-inline-create-trigger"); got != 2 {
		t.Fatalf("expected 2 add buttons, got %d in %s", got, buf.String())
	}
}

func TestBootstrap_DuplicateConfigIsSkipped(t *testing.T) {
	rt, err := Bootstrap(context.Background(), strings.NewReader(bootstrapPage),
		WithConfigs(AugmentConfig{SelectID: "company", Model: "company", CanAdd: true}),
	)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	var found bool
	for _, skipped := range rt.Report.Skipped {
		if skipped.SelectID == "company" && errors.Is(skipped.Err, widget.ErrAlreadyAugmented) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected company config to be reported as already augmented, got %+v", rt.Report.Skipped)
	}
}

func TestBootstrap_CreationFlow(t *testing.T) {
	creator := &stubCreator{result: widget.CreationResult{Success: true, ID: "9", Label: "Initech"}}
	recorder := &notify.Recorder{}

	rt, err := Bootstrap(context.Background(), strings.NewReader(bootstrapPage),
		WithCreator(creator),
		WithNotifier(recorder),
	)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	binding, ok := rt.Augmenter.Binding("company")
	if !ok {
		t.Fatalf("expected company binding")
	}

	dialog := binding.Activate()
	dialog.SetName("  Initech ")
	if err := dialog.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if diff := cmp.Diff([]widget.CreationRequest{{Model: "company", Name: "Initech"}}, creator.requests); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
	if got := binding.Control().Value(); got != "9" {
		t.Fatalf("expected selected value 9, got %q", got)
	}
	want := []notify.Notice{{Message: widget.DefaultSuccessMessage, Severity: widget.SeveritySuccess}}
	if diff := cmp.Diff(want, recorder.Notices()); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(rt.Document.String(), `<option value="9" selected="">Initech</option>`) {
		t.Fatalf("expected created option in page, got %s", rt.Document.String())
	}
}

func TestAssetsFS_ServesStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), "inlinecreate.css")
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected stylesheet content")
	}
	if _, err := fs.Stat(TemplatesFS(), "templates/dialog.tpl"); err != nil {
		t.Fatalf("expected dialog template: %v", err)
	}
}
