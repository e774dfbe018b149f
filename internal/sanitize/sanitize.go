// Package sanitize implements the allowlist HTML cleaner applied to all
// user-submitted note text before it is persisted. Stored titles and
// contents are therefore already safe to render as markup; nothing is
// sanitized at render time.
package sanitize

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// allowedTags is the fixed set of structural and formatting tags that
// survive sanitization. Everything else is dropped together with its
// entire subtree: <script>alert(1)</script> becomes the empty string, not
// the inner text.
var allowedTags = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "b": true, "blockquote": true,
	"code": true, "em": true, "i": true, "li": true, "ol": true, "p": true,
	"pre": true, "strong": true, "ul": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "br": true, "span": true,
}

// allowedAttrs maps a tag to the attributes it may keep. A disallowed
// attribute is stripped while the tag itself survives.
var allowedAttrs = map[string]map[string]bool{
	"a":       {"href": true, "title": true},
	"abbr":    {"title": true},
	"acronym": {"title": true},
}

// safeURLSchemes are the schemes an href may use. Scheme-relative and
// path-relative URLs are treated as safe.
var safeURLSchemes = map[string]bool{
	"http": true, "https": true, "mailto": true, "ftp": true,
}

// Sanitize cleans arbitrary text, hostile markup included, down to the
// allowlisted tags and attributes. It is idempotent:
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), body)
	if err != nil {
		// The tokenizer recovers from almost anything; if parsing still
		// fails, refuse the input outright rather than pass it through.
		return ""
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if clean := sanitizeNode(n); clean != nil {
			_ = html.Render(&buf, clean)
		}
	}
	return buf.String()
}

// sanitizeNode returns a cleaned copy of n, or nil when the node and its
// subtree must be discarded.
func sanitizeNode(n *html.Node) *html.Node {
	switch n.Type {
	case html.TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if !allowedTags[tag] {
			return nil
		}
		clean := &html.Node{
			Type:     html.ElementNode,
			Data:     tag,
			DataAtom: n.DataAtom,
			Attr:     sanitizeAttrs(tag, n.Attr),
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := sanitizeNode(c); child != nil {
				clean.AppendChild(child)
			}
		}
		return clean
	default:
		// Comments, doctypes and anything exotic are discarded.
		return nil
	}
}

func sanitizeAttrs(tag string, attrs []html.Attribute) []html.Attribute {
	allowed := allowedAttrs[tag]
	if len(allowed) == 0 {
		return nil
	}
	var out []html.Attribute
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if a.Namespace != "" || !allowed[key] {
			continue
		}
		if key == "href" && !safeURL(a.Val) {
			continue
		}
		out = append(out, html.Attribute{Key: key, Val: a.Val})
	}
	return out
}

// safeURL rejects href values whose scheme could execute script
// (javascript:, data:, vbscript: and friends).
func safeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		return true
	}
	return safeURLSchemes[strings.ToLower(u.Scheme)]
}
