package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// droppedElements never reach the exported page.
var droppedElements = map[string]bool{
	"script":        true,
	"foreignobject": true,
	"iframe":        true,
	"object":        true,
	"embed":         true,
	"style":         true,
}

// sanitizeSVG parses diagram markup as an HTML fragment and strips
// scripts, event handlers and javascript: links. Markup without an svg
// element is rejected.
func sanitizeSVG(markup string) (template.HTML, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return "", fmt.Errorf("parse diagram: %w", err)
	}

	var buf bytes.Buffer
	found := false
	for _, n := range nodes {
		if n.Type != html.ElementNode || strings.ToLower(n.Data) != "svg" {
			continue
		}
		clean(n)
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render diagram: %w", err)
		}
		found = true
	}
	if !found {
		return "", fmt.Errorf("diagram has no svg element")
	}
	return template.HTML(buf.String()), nil
}

func clean(n *html.Node) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		val := strings.ToLower(strings.TrimSpace(a.Val))
		if strings.HasPrefix(key, "on") {
			continue
		}
		if (key == "href" || key == "src") && strings.HasPrefix(val, "javascript:") {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && droppedElements[strings.ToLower(c.Data)] {
			n.RemoveChild(c)
		} else {
			clean(c)
		}
		c = next
	}
}
