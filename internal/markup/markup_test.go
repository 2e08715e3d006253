// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// =============================================================================
// SANITIZER TESTS
// =============================================================================

var hostileInputs = []string{
	`<script>alert(1)</script><p onclick="steal()">hi</p>`,
	`<img src="javascript:alert(1)" onerror="alert(2)"><img src="/ok.png" alt="ok">`,
	`<a href="https://example.com" data-x="1" style="color:red" target="_blank">link</a>`,
	`<iframe src="https://evil"></iframe><svg><circle r="1"/></svg><b>bold</b>`,
	`<table onmouseover="x"><tr><td colspan="2" style="width:1px">c</td></tr></table>`,
	`<div class="answer-image"><img src="/static/a.png" alt="a.png"></div>`,
	`<a href="vbscript:msgbox(1)">v</a><form action="/x"><input name="q"></form>`,
	`<<p>unbalanced <b>tags</p>`,
}

// assertWithinAllowList tokenizes out and checks every tag and attribute.
func assertWithinAllowList(t *testing.T, allow AllowList, out string) {
	t.Helper()
	z := html.NewTokenizer(strings.NewReader(out))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			require.ErrorIs(t, z.Err(), io.EOF)
			return
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken && tt != html.EndTagToken {
			continue
		}
		tok := z.Token()
		assert.True(t, allow.Allows(tok.Data, ""), "tag <%s> escaped the allow-list in %q", tok.Data, out)
		for _, a := range tok.Attr {
			assert.True(t, allow.Allows(tok.Data, a.Key), "attribute %s on <%s> escaped the allow-list in %q", a.Key, tok.Data, out)
		}
	}
}

func TestSanitizeOutputWithinAllowList(t *testing.T) {
	s, err := NewSanitizer(DefaultAllowList)
	require.NoError(t, err)

	for _, in := range hostileInputs {
		out, err := s.Sanitize(in)
		require.NoError(t, err)
		assertWithinAllowList(t, DefaultAllowList, out)
		assert.NotContains(t, out, "alert(")
		assert.NotContains(t, out, "javascript:")
		assert.NotContains(t, out, "vbscript:")
	}
}

func TestSanitizeKeepsAllowedStructure(t *testing.T) {
	s := MustSanitizer(DefaultAllowList)

	out, err := s.Sanitize(`<p>Rate is <b>5%</b></p><a href="https://example.com/doc">doc</a>`)
	require.NoError(t, err)

	assert.Contains(t, out, "<p>Rate is <b>5%</b></p>")
	assert.Contains(t, out, `href="https://example.com/doc"`)
}

func TestSanitizeNarrowAllowList(t *testing.T) {
	allow := AllowList{"p": nil}

	out, err := Sanitize(`<p>one</p><b>two</b><img src="/x.png">`, allow)
	require.NoError(t, err)

	assertWithinAllowList(t, allow, out)
	assert.Contains(t, out, "<p>one</p>")
	assert.Contains(t, out, "two")
}

func TestSanitizerFailsClosed(t *testing.T) {
	var nilSanitizer *Sanitizer
	_, err := nilSanitizer.Sanitize("<p>x</p>")
	assert.True(t, errors.Is(err, ErrSanitizerUnavailable))

	_, err = (&Sanitizer{}).Sanitize("<p>x</p>")
	assert.True(t, errors.Is(err, ErrSanitizerUnavailable))
}

func TestAllowListValidate(t *testing.T) {
	require.NoError(t, DefaultAllowList.Validate())

	bad := []AllowList{
		{},
		{"script": nil},
		{"p": {"onclick"}},
		{"div": {"data-id"}},
		{"span": {"style"}},
	}
	for _, a := range bad {
		assert.Error(t, a.Validate(), "allow-list %v should be rejected", a)
		_, err := NewSanitizer(a)
		assert.Error(t, err)
	}
}

// =============================================================================
// TABLE EXTRACTION TESTS
// =============================================================================

func TestExtractSingleTable(t *testing.T) {
	ext, err := Extract(`Result: <table data-title="X"><tr><td>1</td></tr></table>`)
	require.NoError(t, err)

	assert.Equal(t, "Result:", ext.Prose)
	require.Len(t, ext.Tables, 1)
	assert.Equal(t, "X", ext.Tables[0].Title)
	assert.Contains(t, ext.Tables[0].Markup, "<td>1</td>")
	assert.NotContains(t, ext.Prose, "<table")
}

func TestExtractTitleOrder(t *testing.T) {
	in := `<table data-title="A" title="B"><caption>C</caption><tr><td>1</td></tr></table>` +
		`<table title="B"><caption>C</caption><tr><td>2</td></tr></table>` +
		`<table><caption>  Quarterly
		   totals </caption><tr><td>3</td></tr></table>` +
		`<table><tr><td>4</td></tr></table>`

	ext, err := Extract(in)
	require.NoError(t, err)
	require.Len(t, ext.Tables, 4)

	titles := []string{ext.Tables[0].Title, ext.Tables[1].Title, ext.Tables[2].Title, ext.Tables[3].Title}
	assert.Equal(t, []string{"A", "B", "Quarterly totals", "Table 4"}, titles)
	assert.Empty(t, ext.Prose)
}

func TestExtractIsIdempotentOnProse(t *testing.T) {
	ext, err := Extract(`<p>before</p><table><tr><td>x</td></tr></table><p>after</p>`)
	require.NoError(t, err)
	require.Len(t, ext.Tables, 1)

	again, err := Extract(ext.Prose)
	require.NoError(t, err)
	assert.Empty(t, again.Tables)
	assert.Equal(t, ext.Prose, again.Prose)
}

func TestExtractNoTablesLeavesProse(t *testing.T) {
	ext, err := Extract("  plain <b>answer</b>\n")
	require.NoError(t, err)

	assert.Equal(t, "plain <b>answer</b>", ext.Prose)
	assert.Empty(t, ext.Tables)
}

func TestExtractNestedTableStaysWithOuter(t *testing.T) {
	ext, err := Extract(`<table title="outer"><tr><td><table><tr><td>in</td></tr></table></td></tr></table>`)
	require.NoError(t, err)

	require.Len(t, ext.Tables, 1)
	assert.Equal(t, "outer", ext.Tables[0].Title)
	assert.Contains(t, ext.Tables[0].Markup, "<td>in</td>")
}

func TestExtractRemovesResponsiveWrapper(t *testing.T) {
	in := `Summary<br><div class='table-responsive'><table><tr><td>1</td></tr></table></div><br>`

	ext, err := Extract(in)
	require.NoError(t, err)

	require.Len(t, ext.Tables, 1)
	assert.NotContains(t, ext.Prose, "table-responsive")
	assert.True(t, strings.HasPrefix(ext.Prose, "Summary"))
}

func TestExtractDropsParagraphLeftEmpty(t *testing.T) {
	in := `<p>x<table><tr><td>1</td></tr></table><table><tr><td>2</td></tr></table></p>`

	ext, err := Extract(in)
	require.NoError(t, err)

	require.Len(t, ext.Tables, 2)
	assert.Equal(t, "<p>x</p>", ext.Prose)
}

// =============================================================================
// DIRECTIVE TESTS
// =============================================================================

func TestExpandTwoImages(t *testing.T) {
	e := NewDirectiveExpander("/static")

	out := e.Expand("see [SHOW_IMAGE:a.png] and [SHOW_IMAGE: b.png ]")

	assert.Equal(t, 2, strings.Count(out, `<div class="answer-image">`))
	assert.Contains(t, out, `src="/static/a.png"`)
	assert.Contains(t, out, `src="/static/b.png"`)
	assert.Contains(t, out, `alt="b.png"`)
	assert.NotContains(t, out, "SHOW_IMAGE")
}

func TestExpandLeavesEmptyDirective(t *testing.T) {
	e := NewDirectiveExpander("/static")

	in := "nothing here [SHOW_IMAGE:] or [SHOW_IMAGE:   ]"
	assert.Equal(t, in, e.Expand(in))
}

func TestExpandEscapesPath(t *testing.T) {
	e := NewDirectiveExpander("")

	out := e.Expand(`[SHOW_IMAGE:x".png]`)
	assert.Contains(t, out, `src="/x%22.png"`)
	assert.Contains(t, out, `alt="x&#34;.png"`)
}

func TestExpandLeavesUnbalancedOpener(t *testing.T) {
	e := NewDirectiveExpander("")

	out := e.Expand("[SHOW_IMAGE: a [SHOW_IMAGE: b.png]")
	assert.True(t, strings.HasPrefix(out, "[SHOW_IMAGE: a "), out)
	assert.Equal(t, 1, strings.Count(out, "<img"))
	assert.Contains(t, out, `src="/b.png"`)
}

func TestResolveImage(t *testing.T) {
	tests := []struct {
		root, path, want string
	}{
		{"", "a.png", "/a.png"},
		{"/static", "a.png", "/static/a.png"},
		{"/static/", "/a.png", "/static/a.png"},
		{"http://host/ingested", "doc/p1.png", "http://host/ingested/doc/p1.png"},
		{"/static", "doc_1/images/page 3.png", "/static/doc_1/images/page%203.png"},
		{"", "x%y.png", "/x%25y.png"},
	}
	for _, tt := range tests {
		if got := NewDirectiveExpander(tt.root).ResolveImage(tt.path); got != tt.want {
			t.Errorf("ResolveImage(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
		}
	}
}

func TestExpandedImageSurvivesSanitizer(t *testing.T) {
	out, err := MustSanitizer(DefaultAllowList).Sanitize(NewDirectiveExpander("/static").Expand("[SHOW_IMAGE:a.png]"))
	require.NoError(t, err)

	assert.Contains(t, out, `class="answer-image"`)
	assert.Contains(t, out, `src="/static/a.png"`)
}

func TestExpandedImageWithAwkwardPathKeepsSource(t *testing.T) {
	s := MustSanitizer(DefaultAllowList)
	e := NewDirectiveExpander("/static")

	tests := map[string]string{
		"[SHOW_IMAGE: doc_1/images/page 3.png]": `src="/static/doc_1/images/page%203.png"`,
		"[SHOW_IMAGE: a b.png]":                 `src="/static/a%20b.png"`,
		"[SHOW_IMAGE: x%y.png]":                 `src="/static/x%25y.png"`,
	}
	for in, want := range tests {
		out, err := s.Sanitize(e.Expand(in))
		require.NoError(t, err)
		assert.Contains(t, out, want, in)
	}
}

// =============================================================================
// ENTITY TESTS
// =============================================================================

func TestDecodeBasicEntities(t *testing.T) {
	assert.Equal(t, `<b class="x">hi</b>`, DecodeBasicEntities(`&lt;b class=&quot;x&quot;&gt;hi&lt;/b&gt;`))
	assert.Equal(t, "a &gt; b &quot;q&quot;", DecodeBasicEntities("a &gt; b &quot;q&quot;"))
	assert.Equal(t, "&amp;lt;", DecodeBasicEntities("&amp;lt;"))
}
