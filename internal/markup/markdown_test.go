// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inline", "Rate is <b>5%</b>.", "Rate is **5%**."},
		{"paragraphs", "<p>one</p><p>two</p>", "one\n\ntwo"},
		{"heading", "<h2>Summary</h2>text", "## Summary\n\ntext"},
		{"list", "<ul><li>a</li><li>b</li></ul>", "- a\n- b"},
		{"ordered", "<ol><li>a</li><li>b</li></ol>", "1. a\n2. b"},
		{"link", `<a href="https://x.test">doc</a>`, "[doc](https://x.test)"},
		{"image", `<img src="/i/a.png" alt="a">`, "![a](/i/a.png)"},
		{"escapes", "snake_case *star*", `snake\_case \*star\*`},
		{"quote", "<blockquote>said</blockquote>", "> said"},
		{"code", `<pre><code class="language-go">x := 1</code></pre>`, "```go\nx := 1\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMarkdown(tt.in))
		})
	}
}

func TestMarkdownGuessesCodeLanguage(t *testing.T) {
	c := Converter{CodeLanguage: func(string) string { return "sql" }}
	assert.Equal(t, "```sql\nSELECT 1\n```", c.Markdown("<pre>SELECT 1</pre>"))
}

func TestMarkdownPipeTable(t *testing.T) {
	got := ToMarkdown(`<table><tr><th>k</th><th>v</th></tr><tr><td>a</td><td>1</td></tr></table>`)
	assert.Equal(t, "| k | v |\n| --- | --- |\n| a | 1 |", got)
}

func TestTableRows(t *testing.T) {
	header, rows := TableRows(`<table><thead><tr><td>Name</td><td>Rate</td></tr></thead>` +
		`<tbody><tr><td>Gold</td><td> 5 %</td></tr><tr><td>Silver</td><td>3%</td></tr></tbody></table>`)

	assert.Equal(t, []string{"Name", "Rate"}, header)
	assert.Equal(t, [][]string{{"Gold", "5 %"}, {"Silver", "3%"}}, rows)

	header, rows = TableRows(`<table><tr><td>1</td></tr></table>`)
	assert.Nil(t, header)
	assert.Equal(t, [][]string{{"1"}}, rows)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "one\ntwo\nthree", PlainText("<p>one</p><p>two<br>three</p>"))
}
