package htmldoc

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// Select is a <select> element inside a Document.
type Select struct {
	doc  *Document
	node *html.Node
}

var _ widget.Control = (*Select)(nil)

func (s *Select) ID() string {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return attr(s.node, "id")
}

// Value follows browser semantics: the last selected option, else the first
// option, else "".
func (s *Select) Value() string {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	options := s.optionNodes()
	if len(options) == 0 {
		return ""
	}
	chosen := options[0]
	for _, n := range options {
		if hasAttr(n, "selected") {
			chosen = n
		}
	}
	return optionValue(chosen)
}

func (s *Select) Options() []widget.Option {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	nodes := s.optionNodes()
	out := make([]widget.Option, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, widget.Option{Value: optionValue(n), Label: textContent(n)})
	}
	return out
}

func (s *Select) AppendOption(opt widget.Option) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	option := &html.Node{
		Type:     html.ElementNode,
		Data:     "option",
		DataAtom: atom.Option,
		Attr:     []html.Attribute{{Key: "value", Val: opt.Value}},
	}
	option.AppendChild(&html.Node{Type: html.TextNode, Data: opt.Label})
	s.node.AppendChild(option)
}

func (s *Select) Select(value string) bool {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	var target *html.Node
	options := s.optionNodes()
	for _, n := range options {
		if optionValue(n) == value {
			target = n
			break
		}
	}
	if target == nil {
		return false
	}
	for _, n := range options {
		removeAttr(n, "selected")
	}
	setAttr(target, "selected", "")
	return true
}

func (s *Select) optionNodes() []*html.Node {
	var out []*html.Node
	for c := s.node.FirstChild; c != nil; c = c.NextSibling {
		switch c.DataAtom {
		case atom.Option:
			out = append(out, c)
		case atom.Optgroup:
			for o := c.FirstChild; o != nil; o = o.NextSibling {
				if o.DataAtom == atom.Option {
					out = append(out, o)
				}
			}
		}
	}
	return out
}

func optionValue(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "value" {
			return a.Val
		}
	}
	return textContent(n)
}
