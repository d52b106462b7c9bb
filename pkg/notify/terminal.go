package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// Terminal prints notices as styled lines.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	success lipgloss.Style
	failure lipgloss.Style
}

// NewTerminal writes to out, or stderr when out is nil.
func NewTerminal(out io.Writer) *Terminal {
	if out == nil {
		out = os.Stderr
	}
	return &Terminal{
		out:     out,
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

var _ widget.Notifier = (*Terminal)(nil)

func (t *Terminal) Notify(_ context.Context, message string, severity widget.Severity) {
	prefix := t.success.Render("✓")
	if severity == widget.SeverityError {
		prefix = t.failure.Render("✗")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.out, "%s %s\n", prefix, message)
}
