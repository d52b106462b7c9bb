package references

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/admin"); got != "/admin/api/reference/create/" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("admin"); got != "/admin/api/reference/create/" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("/admin/", WithRoutePath("api/refs")); got != "/admin/api/refs" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestMountPath_RootBase(t *testing.T) {
	for _, base := range []string{"", "/", "  "} {
		if got := MountPath(base); got != DefaultRoutePath {
			t.Fatalf("base %q: unexpected mount path %q", base, got)
		}
	}
	if got := New(WithRoutePath("//refs/")).MountPath("/admin//"); got != "/admin/refs/" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_RegistersHandler(t *testing.T) {
	mux := http.NewServeMux()
	component := New()
	pattern, err := component.RegisterRoutes(mux, "/admin")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pattern != "/admin/api/reference/create/" {
		t.Fatalf("unexpected registered pattern: %q", pattern)
	}

	req := httptest.NewRequest(http.MethodPost, pattern, strings.NewReader(`{"model":"tag","name":"Go"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if refs, _ := component.Store().List(req.Context(), "tag", ""); len(refs) != 1 {
		t.Fatalf("expected the component store to hold the entry, got %d", len(refs))
	}
}

func TestRegisterRoutes_MissingMux(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}
