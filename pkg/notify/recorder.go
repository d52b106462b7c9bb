package notify

import (
	"context"
	"sync"

	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// Notice is one delivered message.
type Notice struct {
	Message  string
	Severity widget.Severity
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

var _ widget.Notifier = (*Recorder)(nil)

func (r *Recorder) Notify(_ context.Context, message string, severity widget.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Message: message, Severity: severity})
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Reset drops recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
