// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/markup"
	"github.com/jeranaias/docchat-tui/internal/model"
)

func newTestComposer(t *testing.T) (*Composer, *Recorder) {
	t.Helper()
	rec := NewRecorder()
	return NewComposer(markup.MustSanitizer(markup.DefaultAllowList), markup.NewDirectiveExpander("/static"), rec), rec
}

// =============================================================================
// COMPOSITION TESTS
// =============================================================================

func TestComposeAnswerWithTable(t *testing.T) {
	c, rec := newTestComposer(t)

	msg := model.NewAssistantMessage(`Result: <table data-title="X"><tr><td>1</td></tr></table>`, "", "")
	e := c.Append(msg)

	assert.Equal(t, "Result:", e.Text)
	require.Len(t, e.Tables, 1)
	assert.Equal(t, "X", e.Tables[0].Title)
	assert.True(t, e.Tables[0].Expanded)
	assert.Contains(t, e.Tables[0].Markup, "<td>1</td>")
	assert.Nil(t, e.Meta)

	assert.Equal(t, []string{"append", "settle", "scroll"}, rec.OpNames())
}

func TestComposeOnlyFirstTableExpanded(t *testing.T) {
	c, _ := newTestComposer(t)

	msg := model.NewAssistantMessage(`<table><tr><td>a</td></tr></table><table><tr><td>b</td></tr></table>`, "", "")
	msg.Tables = []model.TableBlock{{Title: "", Markup: "<table><tr><td>c</td></tr></table>"}}
	e := c.Compose(msg)

	require.Len(t, e.Tables, 3)
	assert.True(t, e.Tables[0].Expanded)
	assert.False(t, e.Tables[1].Expanded)
	assert.False(t, e.Tables[2].Expanded)
	assert.Equal(t, "Table 3", e.Tables[2].Title)
}

func TestComposeMetadataRegion(t *testing.T) {
	c, _ := newTestComposer(t)

	noMeta := c.Compose(model.NewAssistantMessage("plain", "", "text"))
	assert.Nil(t, noMeta.Meta)

	msg := model.NewAssistantMessage("answer", "lookup", "text")
	msg.Sources = []model.Citation{{DocID: "doc_a", Page: "3", SourceKind: "table"}, {}}
	e := c.Compose(msg)

	require.NotNil(t, e.Meta)
	assert.Equal(t, "lookup", e.Meta.Intent)
	assert.False(t, e.Meta.CitationsVisible)
	require.Len(t, e.Meta.Citations, 2)
	assert.Equal(t, model.Citation{DocID: "unknown", Page: "?", SourceKind: "text"}, e.Meta.Citations[1])

	sourcesOnly := model.NewAssistantMessage("answer", "", "")
	sourcesOnly.Sources = []model.Citation{{DocID: "d"}}
	assert.NotNil(t, c.Compose(sourcesOnly).Meta)
}

func TestComposeSanitizesAndExpands(t *testing.T) {
	c, _ := newTestComposer(t)

	e := c.Compose(model.NewAssistantMessage(`<p onclick="x()">see</p><script>alert(1)</script>[SHOW_IMAGE:chart.png]`, "", ""))

	assert.NotContains(t, e.Text, "onclick")
	assert.NotContains(t, e.Text, "alert")
	assert.Contains(t, e.Text, `src="/static/chart.png"`)
	assert.False(t, e.Degraded)
}

func TestComposeDecodesEscapedAnswer(t *testing.T) {
	c, _ := newTestComposer(t)

	e := c.Compose(model.NewAssistantMessage(`&lt;b&gt;bold&lt;/b&gt;`, "", ""))
	assert.Equal(t, "<b>bold</b>", e.Text)
}

func TestComposeUserTextIsEscaped(t *testing.T) {
	c, _ := newTestComposer(t)

	e := c.Compose(model.NewUserMessage("is <b>x</b> > y?\nsecond line"))
	assert.Equal(t, "is &lt;b&gt;x&lt;/b&gt; &gt; y?<br>second line", e.Text)
	assert.Equal(t, model.RoleUser.Avatar(), e.Avatar)
}

func TestComposeFailsClosedWithoutSanitizer(t *testing.T) {
	c := NewComposer(nil, nil, nil)

	e := c.Compose(model.NewAssistantMessage(`<img src=x onerror="alert(1)">`, "", ""))

	assert.True(t, e.Degraded)
	assert.NotContains(t, e.Text, "<img")
	assert.True(t, strings.HasPrefix(e.Text, "&lt;img"))
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestAnchorStaysLast(t *testing.T) {
	c, rec := newTestComposer(t)

	user := c.Append(model.NewUserMessage("q"))
	ph := c.Append(model.NewPlaceholder("Searching..."))
	require.NoError(t, c.Remove(ph.ID))
	answer := c.Append(model.NewAssistantMessage("a", "", ""))

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, user.ID, entries[0].ID)
	assert.Equal(t, answer.ID, entries[1].ID)

	ops := rec.OpNames()
	assert.Equal(t, "scroll", ops[len(ops)-1])
	last, ok := c.Transcript().Last(nil)
	require.True(t, ok)
	assert.Equal(t, answer.ID, last.ID)
}

func TestOnlyPlaceholdersRemovable(t *testing.T) {
	c, _ := newTestComposer(t)

	e := c.Append(model.NewUserMessage("q"))
	err := c.Remove(e.ID)
	assert.True(t, errors.Is(err, ErrNotRemovable))
	assert.Equal(t, 1, c.Transcript().Len())

	assert.True(t, errors.Is(c.Remove("missing"), ErrNotFound))
}

func TestToggleRegions(t *testing.T) {
	c, rec := newTestComposer(t)

	msg := model.NewAssistantMessage(`<table title="T"><tr><td>1</td></tr></table>`, "lookup", "")
	msg.Sources = []model.Citation{{DocID: "d", Page: "1"}}
	e := c.Append(msg)

	open, err := c.ToggleCitations(e.ID)
	require.NoError(t, err)
	assert.True(t, open)

	expanded, err := c.ToggleTable(e.ID, 0)
	require.NoError(t, err)
	assert.False(t, expanded)

	got := rec.Entries()[0]
	assert.True(t, got.Meta.CitationsVisible)
	assert.False(t, got.Tables[0].Expanded)

	_, err = c.ToggleTable(e.ID, 5)
	assert.True(t, errors.Is(err, ErrNoRegion))

	plain := c.Append(model.NewAssistantMessage("no meta", "", ""))
	_, err = c.ToggleCitations(plain.ID)
	assert.True(t, errors.Is(err, ErrNoRegion))
}

func TestEntriesAreCopies(t *testing.T) {
	c, _ := newTestComposer(t)

	msg := model.NewAssistantMessage("a", "i", "")
	msg.Sources = []model.Citation{{DocID: "d"}}
	e := c.Append(msg)
	e.Meta.Intent = "changed"

	stored, ok := c.Transcript().Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, "i", stored.Meta.Intent)
}

func TestTeeSettlesOnce(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	sink := Tee(a, b)

	calls := 0
	sink.Settle(func() { calls++ })
	assert.Equal(t, 1, calls)

	c := NewComposer(markup.MustSanitizer(markup.DefaultAllowList), nil, sink)
	c.Append(model.NewUserMessage("q"))
	assert.Len(t, a.Entries(), 1)
	assert.Len(t, b.Entries(), 1)
}

func TestSetSinkReplaysEntries(t *testing.T) {
	c, _ := newTestComposer(t)
	c.Append(model.NewUserMessage("one"))
	c.Append(model.NewUserMessage("two"))

	rec := NewRecorder()
	c.SetSink(rec)

	assert.Len(t, rec.Entries(), 2)
}
