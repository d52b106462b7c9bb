package htmldoc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

const page = `<!doctype html>
<html><body>
<form>
  <select id="company" data-inline-create="true" data-inline-create-model="company" data-inline-create-title="Add company">
    <option value="">Choose…</option>
    <option value="1">Acme</option>
  </select>
  <select id="department">
    <option value="">Choose…</option>
  </select>
  <div data-inline-create="1" data-inline-create-select="department" data-inline-create-model="department"
       data-inline-create-parent="company" data-inline-create-requires-parent="true" data-inline-create-button-position="before"></div>
  <select id="country" data-inline-create="false" data-inline-create-model="country"></select>
</form>
</body></html>`

func parsePage(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestDocument_MarkersFallBackToSelectID(t *testing.T) {
	doc := parsePage(t)

	var ids []string
	for _, marker := range doc.Markers() {
		id, _ := marker.Attr(widget.AttrSelectID)
		ids = append(ids, id)
	}
	if diff := cmp.Diff([]string{"company", "department", "country"}, ids); diff != "" {
		t.Fatalf("marker ids mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_SelectOperations(t *testing.T) {
	doc := parsePage(t)
	control, ok := doc.Control("company")
	if !ok {
		t.Fatalf("expected company control")
	}
	if got := control.Value(); got != "" {
		t.Fatalf("expected first option value, got %q", got)
	}

	control.AppendOption(widget.Option{Value: "7", Label: "Globex"})
	if !control.Select("7") {
		t.Fatalf("expected select to succeed")
	}
	if control.Select("missing") {
		t.Fatalf("expected select of unknown value to fail")
	}

	want := []widget.Option{{Value: "", Label: "Choose…"}, {Value: "1", Label: "Acme"}, {Value: "7", Label: "Globex"}}
	if diff := cmp.Diff(want, control.Options()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if got := control.Value(); got != "7" {
		t.Fatalf("expected value 7, got %q", got)
	}
	if !strings.Contains(doc.String(), `<option value="7" selected="">Globex</option>`) {
		t.Fatalf("expected rendered option, got %s", doc.String())
	}

	if _, ok := doc.Control("missing"); ok {
		t.Fatalf("expected no control for unknown id")
	}
}

func TestDocument_BulkScanAugmentsEnabledMarkers(t *testing.T) {
	doc := parsePage(t)
	augmenter := widget.NewAugmenter(doc, widget.NewController(nil))

	report := widget.NewBulkInitializer(doc, augmenter, nil).Scan(context.Background())

	if diff := cmp.Diff([]string{"company", "department"}, report.Augmented); diff != "" {
		t.Fatalf("augmented mismatch (-want +got):\n%s", diff)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].SelectID != "country" {
		t.Fatalf("expected country skipped, got %#v", report.Skipped)
	}

	out := doc.String()
	if got := strings.Count(out, AttrWrapper+"="); got != 2 {
		t.Fatalf("expected 2 wrappers, got %d in %s", got, out)
	}
	if got := strings.Count(out, "data-inline-create-trigger="); got != 2 {
		t.Fatalf("expected 2 buttons, got %d", got)
	}

	before := strings.Index(out, `data-inline-create-trigger="department"`)
	after := strings.Index(out, `<select id="department"`)
	if before < 0 || after < 0 || before > after {
		t.Fatalf("expected department button before its select")
	}
	companySelect := strings.Index(out, `<select id="company"`)
	companyButton := strings.Index(out, `data-inline-create-trigger="company"`)
	if companySelect > companyButton {
		t.Fatalf("expected company button after its select")
	}
}

func TestDocument_BulkScanReadsNamespacedMarkup(t *testing.T) {
	const markup = `<form>
  <select id="id_department"><option value="">-</option></select>
  <select id="id_tag"><option value="">-</option></select>
  <div data-inline-create="true" data-inline-create-select="id_tag" data-inline-create-model="tag"
       data-inline-create-parent="id_department" data-inline-create-requires-parent="true"
       data-inline-create-title="New tag" data-inline-create-hint="Short label"></div>
</form>`
	doc, err := Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	markers := doc.Markers()
	if len(markers) != 1 {
		t.Fatalf("expected one marker, got %d", len(markers))
	}
	want := widget.MarkerConfig{
		Enabled:        true,
		SelectID:       "id_tag",
		Model:          "tag",
		ParentSelectID: "id_department",
		ParentRequired: true,
		Title:          "New tag",
		Hint:           "Short label",
	}
	if diff := cmp.Diff(want, widget.ReadMarker(markers[0])); diff != "" {
		t.Fatalf("marker mismatch (-want +got):\n%s", diff)
	}

	augmenter := widget.NewAugmenter(doc, widget.NewController(nil))
	report := widget.NewBulkInitializer(doc, augmenter, nil).Scan(context.Background())
	if diff := cmp.Diff([]string{"id_tag"}, report.Augmented); diff != "" {
		t.Fatalf("augmented mismatch (-want +got):\n%s", diff)
	}
	if len(report.Skipped) != 0 {
		t.Fatalf("expected nothing skipped, got %#v", report.Skipped)
	}
}

func TestDocument_AttachRejectsForeignControl(t *testing.T) {
	doc := parsePage(t)
	err := doc.Attach(widget.NewSelect("company"), widget.AugmentConfig{SelectID: "company", Model: "company"})
	if err != ErrForeignControl {
		t.Fatalf("expected ErrForeignControl, got %v", err)
	}
}

func TestDocument_CreationAppendsToRenderedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req widget.CreationRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "id": 42, "label": req.Name})
	}))
	t.Cleanup(server.Close)

	doc := parsePage(t)
	controller := widget.NewController(widget.NewClient(widget.WithBaseURL(server.URL)))
	augmenter := widget.NewAugmenter(doc, controller)
	widget.NewBulkInitializer(doc, augmenter, nil).Scan(context.Background())

	binding, ok := augmenter.Binding("company")
	if !ok {
		t.Fatalf("expected company binding")
	}
	dialog := binding.Activate()
	dialog.SetName("  Initech ")
	if err := dialog.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !strings.Contains(doc.String(), `<option value="42" selected="">Initech</option>`) {
		t.Fatalf("expected created option in page, got %s", doc.String())
	}
}
