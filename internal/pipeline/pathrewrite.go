package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteImageSrc rewrites an <img> source for display from a page at a
// different depth of the site tree.
//
// A single leading "/" is stripped so site-absolute paths become
// root-relative. The prefix is then prepended unless the path is an
// external URL. Protocol-relative URLs ("//cdn...") are left untouched.
func RewriteImageSrc(src, prefix string) string {
	return rewritePath(src, prefix, false)
}

// RewriteLinkHref applies the image rule to an <a> target, except that
// in-page anchors ("#section") never receive the prefix.
func RewriteLinkHref(href, prefix string) string {
	return rewritePath(href, prefix, true)
}

func rewritePath(p, prefix string, keepAnchors bool) string {
	if strings.HasPrefix(p, "//") {
		return p
	}
	p = strings.TrimPrefix(p, "/")
	if p == "" || prefix == "" || isExternalURL(p) {
		return p
	}
	if keepAnchors && strings.HasPrefix(p, "#") {
		return p
	}
	return prefix + p
}

// isExternalURL returns true if the path already addresses a full resource
// and must not be made relative to the including page.
func isExternalURL(p string) bool {
	lower := strings.ToLower(p)
	for _, scheme := range []string{"http://", "https://", "data:", "mailto:", "tel:", "//"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// rewriteNode walks n and rewrites every img[src] and a[href] below it.
func rewriteNode(n *html.Node, prefix string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", prefix, RewriteImageSrc)
		case atom.A:
			rewriteAttr(n, "href", prefix, RewriteLinkHref)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, prefix)
	}
}

// rewriteDescendants rewrites the paths below n but leaves n itself alone,
// so a bare <img> or <a> directly under <body> keeps its original path.
func rewriteDescendants(n *html.Node, prefix string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, prefix)
	}
}

// rewriteAttr rewrites a single attribute. Elements without it are skipped.
func rewriteAttr(n *html.Node, key, prefix string, rule func(string, string) string) {
	for i, attr := range n.Attr {
		if attr.Namespace != "" || attr.Key != key {
			continue
		}
		n.Attr[i].Val = rule(attr.Val, prefix)
		return
	}
}
