// Package dom is the small document capability the modal controller needs:
// parse a page, query elements by CSS selector, replace markup, toggle
// classes and inline styles, and serialize the result.
//
// It wraps goquery so controller logic can be exercised against static HTML
// without a browser.
package dom

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Sentinel errors for document operations.
var (
	ErrParse           = errors.New("failed to parse document")
	ErrInvalidSelector = errors.New("invalid selector")
	ErrRender          = errors.New("failed to render document")
)

// Document is a parsed, mutable HTML document.
// Documents are not safe for concurrent use.
type Document struct {
	doc *goquery.Document
}

// Element is a single element of a Document.
type Element struct {
	sel *goquery.Selection
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML document held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Find returns the first element matching selector, or nil when none does.
func (d *Document) Find(selector string) (*Element, error) {
	return first(d.doc.Selection, selector)
}

// Body returns the <body> element. Parsed documents always have one.
func (d *Document) Body() *Element {
	return &Element{sel: d.doc.Find("body").First()}
}

// Head returns the <head> element. Parsed documents always have one.
func (d *Document) Head() *Element {
	return &Element{sel: d.doc.Find("head").First()}
}

// Render serializes the whole document.
func (d *Document) Render() (string, error) {
	out, err := goquery.OuterHtml(d.doc.Selection)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return out, nil
}

// Find returns the first descendant matching selector, or nil when none does.
func (e *Element) Find(selector string) (*Element, error) {
	return first(e.sel, selector)
}

func first(sel *goquery.Selection, selector string) (*Element, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, selector, err)
	}
	found := sel.FindMatcher(m).First()
	if found.Length() == 0 {
		return nil, nil
	}
	return &Element{sel: found}, nil
}

// InnerHTML returns the markup of the element's children.
func (e *Element) InnerHTML() (string, error) {
	out, err := e.sel.Html()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return out, nil
}

// SetInnerHTML replaces the element's children with the parsed markup.
func (e *Element) SetInnerHTML(markup string) {
	e.sel.SetHtml(markup)
}

// PrependHTML inserts the parsed markup before the element's first child.
func (e *Element) PrependHTML(markup string) {
	e.sel.PrependHtml(markup)
}

// Text returns the combined text of the element and its descendants.
func (e *Element) Text() string {
	return e.sel.Text()
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// HasClass reports whether the element carries class.
func (e *Element) HasClass(class string) bool {
	return e.sel.HasClass(class)
}

// AddClass adds class if it is not already present.
func (e *Element) AddClass(class string) {
	e.sel.AddClass(class)
	e.tidyClass()
}

// RemoveClass removes class if present.
func (e *Element) RemoveClass(class string) {
	e.sel.RemoveClass(class)
	e.tidyClass()
}

// tidyClass collapses the class attribute to single-space separators.
// goquery leaves a doubled space behind when it appends or removes a name.
func (e *Element) tidyClass() {
	class, ok := e.sel.Attr("class")
	if !ok {
		return
	}
	e.sel.SetAttr("class", strings.Join(strings.Fields(class), " "))
}

// Style returns the value of an inline style property, or "".
func (e *Element) Style(property string) string {
	style, _ := e.sel.Attr("style")
	return parseStyle(style)[strings.ToLower(property)]
}

// SetStyle sets an inline style property. An empty value removes it, and the
// style attribute itself is dropped once no property remains.
func (e *Element) SetStyle(property, value string) {
	style, _ := e.sel.Attr("style")
	props := parseStyle(style)
	property = strings.ToLower(strings.TrimSpace(property))
	if value == "" {
		delete(props, property)
	} else {
		props[property] = strings.TrimSpace(value)
	}

	if len(props) == 0 {
		e.sel.RemoveAttr("style")
		return
	}
	e.sel.SetAttr("style", formatStyle(props))
}

// parseStyle splits an inline style declaration into lower-cased properties.
func parseStyle(style string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		props[name] = strings.TrimSpace(value)
	}
	return props
}

// formatStyle renders properties in a stable, sorted order.
func formatStyle(props map[string]string) string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+props[name])
	}
	return strings.Join(parts, "; ") + ";"
}
