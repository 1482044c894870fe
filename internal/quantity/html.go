package quantity

import (
	"strings"

	"golang.org/x/net/html"
)

// TextContent flattens an HTML document to its visible text.
// Script and style bodies are dropped. Input that is not HTML comes
// back with whitespace runs collapsed.
func TextContent(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return doc
	}
	var b strings.Builder
	collectText(root, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

// RegionText returns the text of the first element whose class list
// contains class, and false when no element matches.
func RegionText(doc, class string) (string, bool) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", false
	}
	n := findByClass(root, class)
	if n == nil {
		return "", false
	}
	var b strings.Builder
	collectText(n, &b)
	return strings.Join(strings.Fields(b.String()), " "), true
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key != "class" {
				continue
			}
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}
