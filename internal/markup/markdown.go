// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// =============================================================================
// MARKDOWN CONVERSION
// =============================================================================

// Converter turns sanitized markup into Markdown for text surfaces.
type Converter struct {
	// CodeLanguage guesses the fence language of a code block whose markup
	// names none. It may be nil.
	CodeLanguage func(code string) string
}

// ToMarkdown converts fragment with the default converter.
func ToMarkdown(fragment string) string {
	return Converter{}.Markdown(fragment)
}

// Markdown converts fragment to Markdown. Unknown elements contribute
// their text only.
func (c Converter) Markdown(fragment string) string {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return PlainText(fragment)
	}
	w := &mdWriter{conv: c}
	for _, n := range nodes {
		w.node(n)
	}
	out := extraNewlines.ReplaceAllString(w.b.String(), "\n\n")
	return strings.TrimSpace(out)
}

var (
	extraNewlines = regexp.MustCompile(`\n{3,}`)
	spaceRun      = regexp.MustCompile(`\s+`)
	mdEscaper     = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`)
	langClass     = regexp.MustCompile(`(?:^|\s)(?:language|lang)-([A-Za-z0-9_+#-]+)`)
)

type mdWriter struct {
	conv  Converter
	b     strings.Builder
	lists []listState
}

type listState struct {
	ordered bool
	next    int
}

func (w *mdWriter) block() {
	s := w.b.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	if strings.HasSuffix(s, "\n") {
		w.b.WriteString("\n")
		return
	}
	w.b.WriteString("\n\n")
}

func (w *mdWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *mdWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		w.children(n)
		return
	}

	switch n.DataAtom {
	case atom.Br:
		w.b.WriteString("  \n")
	case atom.P, atom.Div:
		if len(w.lists) > 0 {
			w.children(n)
			return
		}
		w.block()
		w.children(n)
		w.block()
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.block()
		w.b.WriteString(strings.Repeat("#", int(n.Data[1]-'0')) + " ")
		w.b.WriteString(collapseSpace(textContent(n)))
		w.block()
	case atom.B, atom.Strong:
		w.wrap(n, "**")
	case atom.I, atom.Em:
		w.wrap(n, "_")
	case atom.Code:
		w.b.WriteString("`" + strings.ReplaceAll(textContent(n), "`", "'") + "`")
	case atom.Pre:
		w.pre(n)
	case atom.Ul, atom.Ol:
		w.list(n)
	case atom.Li:
		w.item(n)
	case atom.Blockquote:
		w.quote(n)
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			w.children(n)
			return
		}
		w.b.WriteString("[")
		w.children(n)
		w.b.WriteString("](" + href + ")")
	case atom.Img:
		w.b.WriteString("![" + mdEscaper.Replace(attr(n, "alt")) + "](" + attr(n, "src") + ")")
	case atom.Hr:
		w.block()
		w.b.WriteString("---")
		w.block()
	case atom.Table:
		w.table(n)
	default:
		w.children(n)
	}
}

func (w *mdWriter) text(s string) {
	s = spaceRun.ReplaceAllString(s, " ")
	if s == "" {
		return
	}
	cur := w.b.String()
	if cur == "" || strings.HasSuffix(cur, " ") || strings.HasSuffix(cur, "\n") {
		s = strings.TrimLeft(s, " ")
	}
	w.b.WriteString(mdEscaper.Replace(s))
}

func (w *mdWriter) wrap(n *html.Node, marker string) {
	if inner := collapseSpace(textContent(n)); inner != "" {
		w.b.WriteString(marker + mdEscaper.Replace(inner) + marker)
	}
}

func (w *mdWriter) pre(n *html.Node) {
	code := textContent(n)
	lang := ""
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			if m := langClass.FindStringSubmatch(attr(c, "class")); m != nil {
				lang = m[1]
			}
		}
	}
	if lang == "" && w.conv.CodeLanguage != nil {
		lang = w.conv.CodeLanguage(code)
	}
	w.block()
	w.b.WriteString("```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```")
	w.block()
}

func (w *mdWriter) list(n *html.Node) {
	w.lists = append(w.lists, listState{ordered: n.DataAtom == atom.Ol, next: 1})
	if len(w.lists) == 1 {
		w.block()
	}
	w.children(n)
	w.lists = w.lists[:len(w.lists)-1]
	if len(w.lists) == 0 {
		w.block()
	}
}

func (w *mdWriter) item(n *html.Node) {
	if len(w.lists) == 0 {
		w.children(n)
		return
	}
	cur := w.b.String()
	if cur != "" && !strings.HasSuffix(cur, "\n") {
		w.b.WriteString("\n")
	}
	depth := len(w.lists) - 1
	st := &w.lists[depth]
	w.b.WriteString(strings.Repeat("  ", depth))
	if st.ordered {
		w.b.WriteString(strconv.Itoa(st.next) + ". ")
		st.next++
	} else {
		w.b.WriteString("- ")
	}
	w.children(n)
}

func (w *mdWriter) quote(n *html.Node) {
	inner := &mdWriter{conv: w.conv}
	inner.children(n)
	text := strings.TrimSpace(extraNewlines.ReplaceAllString(inner.b.String(), "\n\n"))
	if text == "" {
		return
	}
	w.block()
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			w.b.WriteString("\n")
		}
		w.b.WriteString("> " + line)
	}
	w.block()
}

func (w *mdWriter) table(n *html.Node) {
	header, rows := tableRows(n)
	if len(header) == 0 && len(rows) == 0 {
		return
	}
	if len(header) == 0 {
		header, rows = rows[0], rows[1:]
	}
	cols := len(header)
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}

	w.block()
	writeRow := func(cells []string) {
		w.b.WriteString("|")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(mdEscaper.Replace(cells[i]), "|", `\|`)
			}
			w.b.WriteString(" " + cell + " |")
		}
		w.b.WriteString("\n")
	}
	writeRow(header)
	w.b.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
	for _, r := range rows {
		writeRow(r)
	}
	w.block()
}

// =============================================================================
// TABLE ROWS AND TEXT
// =============================================================================

// TableRows returns the cell text of the first table in fragment. The
// header is the first row when it sits in <thead> or holds only <th>.
func TableRows(fragment string) (header []string, rows [][]string) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return nil, nil
	}
	for _, n := range nodes {
		if t := findTable(n); t != nil {
			return tableRows(t)
		}
	}
	return nil, nil
}

func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c); t != nil {
			return t
		}
	}
	return nil
}

func tableRows(t *html.Node) (header []string, rows [][]string) {
	var walk func(n *html.Node, inHead bool)
	walk = func(n *html.Node, inHead bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				// nested tables are flattened into their cell's text
			case atom.Thead:
				walk(c, true)
			case atom.Tbody, atom.Tfoot:
				walk(c, false)
			case atom.Tr:
				cells, allTH := rowCells(c)
				if header == nil && len(rows) == 0 && (inHead || (allTH && len(cells) > 0)) {
					header = cells
				} else {
					rows = append(rows, cells)
				}
			}
		}
	}
	walk(t, false)
	return header, rows
}

func rowCells(tr *html.Node) ([]string, bool) {
	var cells []string
	allTH := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if c.DataAtom == atom.Td {
			allTH = false
		}
		cells = append(cells, collapseSpace(textContent(c)))
	}
	return cells, allTH
}

// PlainText returns the visible text of fragment with line breaks kept.
func PlainText(fragment string) string {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return fragment
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteString("\n")
		case n.Type == html.ElementNode && (n.DataAtom == atom.P || n.DataAtom == atom.Div || n.DataAtom == atom.Li || n.DataAtom == atom.Tr):
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func parseFragment(fragment string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(fragment), body)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

