package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrFragmentParse indicates the fetched fragment could not be parsed or rendered.
var ErrFragmentParse = errors.New("fragment parse failed")

// Fragment is the displayable part of a project document.
type Fragment struct {
	HTML  string // Concatenated top-level body elements, nav removed
	Title string // Text of the first <h1>, empty if none
}

// ExtractContent parses a project document and returns its body content
// ready for injection into a modal.
//
// The first <nav> in the body is dropped. Every remaining top-level body
// element is deep-copied, the img[src] and a[href] paths inside it are
// rewritten with prefix, and the copies are rendered in document order. Only
// descendants are rewritten: an <img> or <a> that is itself a top-level body
// element keeps its path. Text nodes directly under <body> are not part of
// the result.
func ExtractContent(document, prefix string) (*Fragment, error) {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFragmentParse, err)
	}

	body := findFirst(doc, atom.Body)
	if body == nil {
		return &Fragment{}, nil
	}

	if nav := findFirst(body, atom.Nav); nav != nil {
		nav.Parent.RemoveChild(nav)
	}

	var buf strings.Builder
	var title string
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		clone := cloneNode(c)
		rewriteDescendants(clone, prefix)
		if title == "" {
			if h1 := findFirst(clone, atom.H1); h1 != nil {
				title = strings.TrimSpace(textContent(h1))
			}
		}
		if err := html.Render(&buf, clone); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFragmentParse, err)
		}
	}

	return &Fragment{HTML: buf.String(), Title: title}, nil
}

// findFirst returns the first element below n (n included) with the given
// atom, in document order.
func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// cloneNode returns a detached deep copy of n.
func cloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
