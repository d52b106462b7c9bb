package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type notice struct {
	Message  string
	Severity Severity
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recordingNotifier) Notify(_ context.Context, message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{Message: message, Severity: severity})
}

func (r *recordingNotifier) all() []notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notice(nil), r.notices...)
}

type endpointStub struct {
	mu       sync.Mutex
	requests []CreationRequest
	headers  []http.Header
	status   int
	body     string
	hold     chan struct{}
	started  chan struct{}
}

func newEndpointStub(status int, body string) *endpointStub {
	return &endpointStub{status: status, body: body}
}

func (e *endpointStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreationRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.headers = append(e.headers, r.Header.Clone())
	hold, started := e.hold, e.started
	e.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if hold != nil {
		<-hold
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.status)
	_, _ = w.Write([]byte(e.body))
}

func (e *endpointStub) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

func (e *endpointStub) last() (CreationRequest, http.Header) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.requests) == 0 {
		return CreationRequest{}, nil
	}
	return e.requests[len(e.requests)-1], e.headers[len(e.headers)-1]
}

type fixture struct {
	server     *httptest.Server
	endpoint   *endpointStub
	notifier   *recordingNotifier
	controller *Controller
	target     *Select
	parent     *Select
}

func newFixture(t *testing.T, status int, body string) *fixture {
	t.Helper()
	stub := newEndpointStub(status, body)
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	notifier := &recordingNotifier{}
	client := NewClient(WithBaseURL(server.URL))
	return &fixture{
		server:     server,
		endpoint:   stub,
		notifier:   notifier,
		controller: NewController(client, WithNotifier(notifier)),
		target:     NewSelect("company", Option{Value: "1", Label: "Existing"}),
		parent:     NewSelect("country", Option{Value: "nz", Label: "New Zealand"}),
	}
}

func (f *fixture) open(cfg AugmentConfig, onSuccess func(CreationResult)) *Dialog {
	if cfg.SelectID == "" {
		cfg.SelectID = f.target.ID()
	}
	if cfg.Model == "" {
		cfg.Model = "company"
	}
	cfg.CanAdd = true
	return f.controller.Open(f.target, f.parent, cfg, onSuccess)
}
