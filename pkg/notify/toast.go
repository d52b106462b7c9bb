package notify

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// Toast timings.
const (
	DefaultToastLifetime = 4500 * time.Millisecond
	DefaultToastFade     = 350 * time.Millisecond
)

// ToastPhase is the visible phase of a toast.
type ToastPhase string

const (
	ToastVisible ToastPhase = "visible"
	ToastFading  ToastPhase = "fading"
)

// Toast is a notice currently on screen.
type Toast struct {
	ID       uint64
	Message  string
	Severity widget.Severity
	Phase    ToastPhase
}

// Timer schedules fn after d. It matches time.AfterFunc so tests can swap in
// a manual clock.
type Timer func(d time.Duration, fn func()) (stop func() bool)

func realTimer(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Toaster holds transient notices. Each toast fades after Lifetime and is
// removed once the fade completes; Dismiss starts the fade early.
type Toaster struct {
	lifetime time.Duration
	fade     time.Duration
	timer    Timer
	onChange func([]Toast)

	mu     sync.Mutex
	nextID uint64
	toasts []*Toast
	stops  map[uint64]func() bool
}

// ToasterOption configures a Toaster.
type ToasterOption func(*Toaster)

// WithLifetime overrides the visible time before fading.
func WithLifetime(d time.Duration) ToasterOption {
	return func(t *Toaster) {
		if d > 0 {
			t.lifetime = d
		}
	}
}

// WithFade overrides the fade duration.
func WithFade(d time.Duration) ToasterOption {
	return func(t *Toaster) {
		if d >= 0 {
			t.fade = d
		}
	}
}

// WithTimer replaces time.AfterFunc.
func WithTimer(timer Timer) ToasterOption {
	return func(t *Toaster) {
		if timer != nil {
			t.timer = timer
		}
	}
}

// WithOnChange registers a callback receiving the visible toasts after every
// change.
func WithOnChange(fn func([]Toast)) ToasterOption {
	return func(t *Toaster) {
		t.onChange = fn
	}
}

// NewToaster constructs a toast queue with the default timings.
func NewToaster(options ...ToasterOption) *Toaster {
	t := &Toaster{
		lifetime: DefaultToastLifetime,
		fade:     DefaultToastFade,
		timer:    realTimer,
		stops:    make(map[uint64]func() bool),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

var _ widget.Notifier = (*Toaster)(nil)

func (t *Toaster) Notify(_ context.Context, message string, severity widget.Severity) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.toasts = append(t.toasts, &Toast{ID: id, Message: message, Severity: severity, Phase: ToastVisible})
	t.stops[id] = t.timer(t.lifetime, func() { t.Dismiss(id) })
	snapshot := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snapshot)
}

// Dismiss starts the fade of toast id.
func (t *Toaster) Dismiss(id uint64) {
	t.mu.Lock()
	toast := t.findLocked(id)
	if toast == nil || toast.Phase == ToastFading {
		t.mu.Unlock()
		return
	}
	if stop := t.stops[id]; stop != nil {
		stop()
	}
	toast.Phase = ToastFading
	t.stops[id] = t.timer(t.fade, func() { t.remove(id) })
	snapshot := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snapshot)
}

// Visible returns the toasts on screen, oldest first.
func (t *Toaster) Visible() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Toaster) remove(id uint64) {
	t.mu.Lock()
	for i, toast := range t.toasts {
		if toast.ID == id {
			t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
			break
		}
	}
	delete(t.stops, id)
	snapshot := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snapshot)
}

func (t *Toaster) findLocked(id uint64) *Toast {
	for _, toast := range t.toasts {
		if toast.ID == id {
			return toast
		}
	}
	return nil
}

func (t *Toaster) snapshotLocked() []Toast {
	out := make([]Toast, 0, len(t.toasts))
	for _, toast := range t.toasts {
		out = append(out, *toast)
	}
	return out
}

func (t *Toaster) changed(snapshot []Toast) {
	if t.onChange != nil {
		t.onChange(snapshot)
	}
}
