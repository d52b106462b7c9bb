package widget

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClient_SendsCSRFTokenFromCookieJar(t *testing.T) {
	stub := newEndpointStub(http.StatusCreated, `{"success":true,"id":12,"label":"Acme"}`)
	server := httptest.NewServer(stub)
	defer server.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	base, _ := url.Parse(server.URL)
	jar.SetCookies(base, []*http.Cookie{{Name: DefaultCSRFCookie, Value: "tok-123", Path: "/"}})

	client := NewClient(
		WithBaseURL(server.URL),
		WithHTTPClient(&http.Client{Jar: jar}),
	)
	result, err := client.Create(context.Background(), "/api/reference/create/", CreationRequest{Model: "company", Name: "Acme", ParentID: "3"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	want := CreationResult{Success: true, ID: "12", Label: "Acme", Status: http.StatusCreated}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	req, headers := stub.last()
	if headers.Get(DefaultCSRFHeader) != "tok-123" {
		t.Fatalf("expected csrf header, got %q", headers.Get(DefaultCSRFHeader))
	}
	if req.ParentID != "3" {
		t.Fatalf("expected parent_id forwarded, got %q", req.ParentID)
	}
}

func TestClient_CustomTokenSourceAndHeader(t *testing.T) {
	stub := newEndpointStub(http.StatusOK, `{"success":true,"id":"a"}`)
	server := httptest.NewServer(stub)
	defer server.Close()

	client := NewClient(
		WithCSRFHeader("X-Token"),
		WithTokenSource(func(context.Context, *url.URL) string { return "from-source" }),
	)
	if _, err := client.Create(context.Background(), server.URL+"/create", CreationRequest{Model: "m", Name: "n"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, headers := stub.last()
	if headers.Get("X-Token") != "from-source" {
		t.Fatalf("expected token from source, got %q", headers.Get("X-Token"))
	}
}

func TestClient_NonSuccessStatusWithSuccessBodyFails(t *testing.T) {
	stub := newEndpointStub(http.StatusInternalServerError, `{"success":true,"id":"1"}`)
	server := httptest.NewServer(stub)
	defer server.Close()

	_, err := NewClient().Create(context.Background(), server.URL, CreationRequest{Model: "m", Name: "n"})
	var appErr *ApplicationError
	if !errors.As(err, &appErr) || appErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected application error, got %v", err)
	}
}

func TestClient_MissingIDIsApplicationFailure(t *testing.T) {
	stub := newEndpointStub(http.StatusOK, `{"success":true}`)
	server := httptest.NewServer(stub)
	defer server.Close()

	_, err := NewClient().Create(context.Background(), server.URL, CreationRequest{Model: "m", Name: "n"})
	var appErr *ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected application error, got %v", err)
	}
}

func TestClient_NonObjectBodyIsTransportFailure(t *testing.T) {
	for _, body := range []string{"null", " [] ", `"ok"`, ""} {
		stub := newEndpointStub(http.StatusOK, body)
		server := httptest.NewServer(stub)

		_, err := NewClient().Create(context.Background(), server.URL, CreationRequest{Model: "m", Name: "n"})
		server.Close()

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("body %q: expected transport error, got %v", body, err)
		}
	}
}

func TestClient_RelativeEndpointWithoutBaseURL(t *testing.T) {
	_, err := NewClient().Create(context.Background(), "", CreationRequest{Model: "m", Name: "n"})
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestCreationResult_DisplayLabel(t *testing.T) {
	cases := []struct {
		result CreationResult
		want   string
	}{
		{CreationResult{Label: "L", Name: "N"}, "L"},
		{CreationResult{Name: "N"}, "N"},
		{CreationResult{Label: "  "}, "typed"},
	}
	for _, tc := range cases {
		if got := tc.result.DisplayLabel("typed"); got != tc.want {
			t.Fatalf("DisplayLabel(%#v) = %q, want %q", tc.result, got, tc.want)
		}
	}
}
