// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// ErrContent is returned when answer markup cannot be parsed or re-serialized.
var ErrContent = errors.New("markup: malformed content")

// Extraction is answer markup split into prose and titled tables.
type Extraction struct {
	Prose  string
	Tables []model.TableBlock
}

// =============================================================================
// TITLE RULES
// =============================================================================

// titleRule returns a title for a table node, or "" to defer to the next rule.
type titleRule func(n *html.Node) string

// titleRules are tried in order; the first non-empty result wins.
var titleRules = []titleRule{
	attrTitle("data-title"),
	attrTitle("title"),
	captionTitle,
}

func attrTitle(name string) titleRule {
	return func(n *html.Node) string {
		for _, a := range n.Attr {
			if a.Namespace == "" && strings.EqualFold(a.Key, name) {
				return collapseSpace(a.Val)
			}
		}
		return ""
	}
}

func captionTitle(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Caption {
			return collapseSpace(textContent(c))
		}
	}
	return ""
}

// FallbackTitle is the title used for the index-th (zero-based) table
// when no rule yields one.
func FallbackTitle(index int) string {
	return fmt.Sprintf("Table %d", index+1)
}

func tableTitle(n *html.Node, index int) string {
	for _, rule := range titleRules {
		if title := rule(n); title != "" {
			return title
		}
	}
	return FallbackTitle(index)
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extract removes every table from fragment and returns them, in document
// order, alongside the remaining prose. Nested tables travel with their
// outer table. Markup without tables is returned trimmed but otherwise as
// written, so extracting the prose again finds nothing.
func Extract(fragment string) (Extraction, error) {
	if !strings.Contains(strings.ToLower(fragment), "<table") {
		return Extraction{Prose: strings.TrimSpace(fragment)}, nil
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrContent, err)
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	found := collectTables(root)
	if len(found) == 0 {
		return Extraction{Prose: strings.TrimSpace(fragment)}, nil
	}

	ext := Extraction{Tables: make([]model.TableBlock, 0, len(found))}
	for i, t := range found {
		var buf bytes.Buffer
		if err := html.Render(&buf, t); err != nil {
			return Extraction{}, fmt.Errorf("%w: %v", ErrContent, err)
		}
		ext.Tables = append(ext.Tables, model.TableBlock{
			Title:  tableTitle(t, i),
			Markup: buf.String(),
		})

		t.Parent.RemoveChild(t)
	}
	pruneEmpty(root)

	var prose bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&prose, c); err != nil {
			return Extraction{}, fmt.Errorf("%w: %v", ErrContent, err)
		}
	}
	ext.Prose = strings.TrimSpace(prose.String())
	return ext, nil
}

// collectTables returns outermost table elements in document order.
func collectTables(n *html.Node) []*html.Node {
	var tables []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Table {
				tables = append(tables, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return tables
}

// emptyAfterExtraction lists containers that are dropped from prose once
// extraction leaves them with nothing but whitespace. The parser also
// closes a paragraph at a table and opens an empty one at the stray </p>.
var emptyAfterExtraction = []func(*html.Node) bool{
	func(n *html.Node) bool { return n.DataAtom == atom.Div && hasClass(n, "table-responsive") },
	func(n *html.Node) bool { return n.DataAtom == atom.P },
}

// pruneEmpty removes, bottom-up, every descendant of n matched by
// emptyAfterExtraction that holds only whitespace text.
func pruneEmpty(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			pruneEmpty(c)
			if isBlank(c) && prunable(c) {
				n.RemoveChild(c)
			}
		}
		c = next
	}
}

func prunable(n *html.Node) bool {
	for _, rule := range emptyAfterExtraction {
		if rule(n) {
			return true
		}
	}
	return false
}

func isBlank(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode || strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
