package rag

import (
	"strings"

	"golang.org/x/net/html"
)

// stripTags flattens an HTML fragment (e.g. a Wikipedia search
// snippet) to plain text
func stripTags(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(visibleText(doc)), " ")
}

// visibleText extracts text nodes from an HTML tree, skipping
// scripts and styles
func visibleText(n *html.Node) string {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}

	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(visibleText(child))
		b.WriteString(" ")
	}
	return b.String()
}
