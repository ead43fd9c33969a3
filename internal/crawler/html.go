package crawler

import (
	"strings"

	"golang.org/x/net/html"
)

// scriptTags returns every <script> element in document order.
func scriptTags(doc *html.Node) []*html.Node {
	var scripts []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			scripts = append(scripts, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return scripts
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
	}
	return sb.String()
}

// isJavaScriptType reports whether a script type attribute denotes code.
// Data blocks (JSON, templates) are not parsed.
func isJavaScriptType(typ string) bool {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = strings.TrimSpace(typ[:i])
	}
	switch typ {
	case "", "module",
		"text/javascript", "application/javascript",
		"text/ecmascript", "application/ecmascript",
		"application/x-javascript", "text/x-javascript":
		return true
	default:
		return false
	}
}
