package htmldoc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-inlinecreate/pkg/markup"
	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// AttrWrapper marks the element wrapping an augmented select.
const AttrWrapper = "data-inline-create-wrapper"

// ErrForeignControl is returned when Attach receives a control that does not
// belong to the document.
var ErrForeignControl = errors.New("htmldoc: control does not belong to this document")

// Option configures a Document.
type Option func(*Document)

// WithFragments supplies the markup used for wrappers and buttons.
func WithFragments(fragments *markup.Fragments) Option {
	return func(d *Document) {
		if fragments != nil {
			d.fragments = fragments
		}
	}
}

// WithLogger sets the document logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Document is a mutable HTML page. All reads and writes, including those made
// through its controls, are serialised on one mutex.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	fragments *markup.Fragments
	logger    *slog.Logger
	controls  map[*html.Node]*Select
}

var _ widget.Document = (*Document)(nil)

// Parse reads a full HTML page from r.
func Parse(r io.Reader, options ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}
	doc := &Document{
		root:     root,
		logger:   slog.New(slog.DiscardHandler),
		controls: make(map[*html.Node]*Select),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(doc)
	}
	if doc.fragments == nil {
		fragments, err := markup.New()
		if err != nil {
			return nil, fmt.Errorf("htmldoc: default fragments: %w", err)
		}
		doc.fragments = fragments
	}
	return doc, nil
}

// Control returns the <select> whose id is id.
func (d *Document) Control(id string) (widget.Control, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	node := findElement(d.root, func(n *html.Node) bool {
		return n.DataAtom == atom.Select && attr(n, "id") == id
	})
	if node == nil {
		return nil, false
	}
	return d.controlFor(node), true
}

// Markers returns every data-inline-create element in document order.
func (d *Document) Markers() []widget.Marker {
	d.mu.Lock()
	defer d.mu.Unlock()

	var markers []widget.Marker
	walk(d.root, func(n *html.Node) {
		if n.Type != html.ElementNode || !hasAttr(n, widget.AttrEnabled) {
			return
		}
		attrs := make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
		if n.DataAtom == atom.Select && strings.TrimSpace(attrs[widget.AttrSelectID]) == "" {
			attrs[widget.AttrSelectID] = attr(n, "id")
		}
		markers = append(markers, widget.Marker{Attrs: attrs})
	})
	return markers
}

// Attach wraps the control's select and inserts the add button before or
// after it.
func (d *Document) Attach(control widget.Control, cfg widget.AugmentConfig) error {
	sel, ok := control.(*Select)
	if !ok || sel.doc != d {
		return ErrForeignControl
	}
	button, err := d.fragments.Button(cfg)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	node := sel.node
	if node.Parent == nil {
		return fmt.Errorf("htmldoc: select %q is detached", cfg.SelectID)
	}
	if hasAttr(node.Parent, AttrWrapper) {
		return fmt.Errorf("htmldoc: select %q: %w", cfg.SelectID, widget.ErrAlreadyAugmented)
	}

	wrapper := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: d.fragments.Class(markup.ClassWrapper)},
			{Key: AttrWrapper, Val: cfg.SelectID},
		},
	}
	nodes, err := html.ParseFragment(strings.NewReader(button), wrapper)
	if err != nil {
		return fmt.Errorf("htmldoc: parse button markup: %w", err)
	}

	node.Parent.InsertBefore(wrapper, node)
	node.Parent.RemoveChild(node)
	if cfg.ButtonPosition != widget.ButtonBefore {
		wrapper.AppendChild(node)
	}
	for _, n := range nodes {
		wrapper.AppendChild(n)
	}
	if cfg.ButtonPosition == widget.ButtonBefore {
		wrapper.AppendChild(node)
	}

	d.logger.Debug("control attached", slog.String("select_id", cfg.SelectID), slog.String("position", string(cfg.ButtonPosition)))
	return nil
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the document, returning "" on failure.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

func (d *Document) controlFor(node *html.Node) *Select {
	if sel, ok := d.controls[node]; ok {
		return sel
	}
	sel := &Select{doc: d, node: node}
	d.controls[node] = sel
	return sel
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
