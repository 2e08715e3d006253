// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/commands"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/service/servicetest"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// =============================================================================
// HELPERS
// =============================================================================

// isolate gives the test its own home directory and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{"DOCCHAT_URL", "DOCCHAT_MODE", "DOCCHAT_TOP_K", "DOCCHAT_THEME", "DOCCHAT_DEBUG", "DOCCHAT_LOG_FILE"} {
		t.Setenv(name, "")
	}
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)
	return filepath.Join(home, ".docchat")
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the command tree with args.
func run(t *testing.T, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func answerWith(resp service.AskResponse) func(service.AskRequest) servicetest.Reply {
	return func(service.AskRequest) servicetest.Reply {
		return servicetest.Reply{Status: http.StatusOK, Body: resp}
	}
}

func decodeResponse(t *testing.T, raw string) (JSONResponse, map[string]any) {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), raw)
	data, _ := resp.Data.(map[string]any)
	return resp, data
}

// =============================================================================
// ASK
// =============================================================================

func TestAskPrintsAnswer(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.OnAsk(answerWith(service.AskResponse{
		Answer:  "<p>The rate is <b>4%</b>.</p>",
		Intent:  "lookup",
		Sources: []model.Citation{{DocID: "rates_2024", Page: "3", SourceKind: "text"}},
	}))

	res := run(t, "--url", srv.URL, "ask", "what", "rate?")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "The rate is")
	assert.Contains(t, res.stdout, "intent: lookup")
	assert.Contains(t, res.stdout, "Sources (1)")
	assert.NotContains(t, res.stdout, "Searching documents")
	assert.NotContains(t, res.stdout, "what rate?", "the question is not echoed")
	assert.NotContains(t, res.stdout, "p. 3", "citations start collapsed")

	asks := srv.Asks()
	require.Len(t, asks, 1)
	assert.Equal(t, "what rate?", asks[0].Query)
	assert.Equal(t, service.ModeAuto, asks[0].Mode)
	assert.Equal(t, 5, asks[0].TopK)
	assert.Nil(t, asks[0].DocIDs)
}

func TestAskSourcesAndTablesFlags(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.OnAsk(answerWith(service.AskResponse{
		Answer: "<p>Rates follow.</p>" +
			"<table><tr><th>Year</th><th>Rate</th></tr><tr><td>2024</td><td>4%</td></tr></table>",
		Sources: []model.Citation{{DocID: "rates_2024", Page: "3", SourceKind: "table"}},
	}))

	res := run(t, "--url", srv.URL, "ask", "--sources", "--tables", "rates?")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "p. 3")
	assert.Contains(t, res.stdout, "2024")
	assert.Contains(t, res.stdout, "4%")
}

func TestAskModeAndTopKFromConfig(t *testing.T) {
	dir := isolate(t)
	srv := servicetest.New(t)
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[query]\nmode = \"table\"\ntop_k = 8\n"), 0600))

	res := run(t, "--url", srv.URL, "ask", "rates?")
	require.NoError(t, res.err)
	asks := srv.Asks()
	require.Len(t, asks, 1)
	assert.Equal(t, service.ModeTable, asks[0].Mode)
	assert.Equal(t, 8, asks[0].TopK)

	res = run(t, "--url", srv.URL, "ask", "--mode", "both", "rates?")
	require.NoError(t, res.err)
	assert.Equal(t, service.ModeBoth, srv.Asks()[1].Mode)
}

func TestAskDocumentFilter(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.SetDocuments(service.Document{ID: "rates_2024", Name: "Rates 2024"})

	res := run(t, "--url", srv.URL, "ask", "--doc", "Rates 2024", "rates?")
	require.NoError(t, res.err)
	require.Len(t, srv.Asks(), 1)
	assert.Equal(t, []string{"rates_2024"}, srv.Asks()[0].DocIDs)

	res = run(t, "--url", srv.URL, "ask", "--doc", "missing", "rates?")
	var nf *NotFoundError
	require.ErrorAs(t, res.err, &nf)
	assert.Equal(t, ExitNotFoundError, GetExitCode(res.err))
	assert.Len(t, srv.Asks(), 1, "nothing is asked for an unknown document")
}

func TestAskUsageErrors(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)

	res := run(t, "--url", srv.URL, "ask")
	var verr *ValidationError
	require.ErrorAs(t, res.err, &verr)
	assert.Equal(t, "question", verr.Field)
	assert.Equal(t, ExitUsageError, GetExitCode(res.err))

	res = run(t, "--url", srv.URL, "ask", "--mode", "fancy", "rates?")
	require.ErrorAs(t, res.err, &verr)
	assert.Equal(t, "mode", verr.Field)
	assert.Empty(t, srv.Asks())
}

func TestAskAttachUploadsFirst(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	path := filepath.Join(t.TempDir(), "Q3 Report.txt")
	require.NoError(t, os.WriteFile(path, []byte("quarterly numbers"), 0600))

	res := run(t, "--url", srv.URL, "ask", "--attach", path, "summarize it")
	require.NoError(t, res.err)

	ups := srv.Uploads()
	require.Len(t, ups, 1)
	assert.Equal(t, "q3_report", ups[0].DocID)
	assert.Equal(t, service.DefaultDocType, ups[0].DocType)
	assert.True(t, ups[0].UseOCR)
	assert.Equal(t, []byte("quarterly numbers"), ups[0].Data)
	assert.Contains(t, res.stdout, "Uploading Q3 Report.txt")
	assert.Len(t, srv.Asks(), 1)
}

func TestAskUploadOnly(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# notes"), 0600))

	res := run(t, "--url", srv.URL, "ask", "--attach", path)
	require.NoError(t, res.err)
	assert.Len(t, srv.Uploads(), 1)
	assert.Empty(t, srv.Asks())
}

func TestAskJSON(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.OnAsk(answerWith(service.AskResponse{Answer: "<p>Four percent.</p>", Intent: "lookup", Mode: "text"}))

	res := run(t, "--url", srv.URL, "ask", "--json", "rate?")
	require.NoError(t, res.err)

	resp, data := decodeResponse(t, res.stdout)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "ask", resp.Command)
	assert.Equal(t, "rate?", data["query"])
	assert.Equal(t, "<p>Four percent.</p>", data["answer"])
	assert.Equal(t, "lookup", data["intent"])
	assert.Equal(t, "text", data["mode"])
}

func TestAskJSONFailure(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.OnAsk(func(service.AskRequest) servicetest.Reply {
		return servicetest.Reply{Status: http.StatusInternalServerError, Body: map[string]string{"detail": "index offline"}}
	})

	res := run(t, "--url", srv.URL, "ask", "--json", "rate?")
	require.Error(t, res.err)
	var shown *displayedError
	require.ErrorAs(t, res.err, &shown)
	assert.Equal(t, ExitServiceError, GetExitCode(res.err))

	resp, _ := decodeResponse(t, res.stdout)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Contains(t, *resp.Error, "index offline")
}

func TestAskFailureShownInTranscript(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.OnAsk(func(service.AskRequest) servicetest.Reply {
		return servicetest.Reply{Status: http.StatusInternalServerError, Body: map[string]string{"detail": "index offline"}}
	})

	res := run(t, "--url", srv.URL, "ask", "rate?")
	require.Error(t, res.err)
	assert.Contains(t, res.stdout, "index offline")
	var cmdErr *CommandError
	require.ErrorAs(t, res.err, &cmdErr)
	assert.Equal(t, "query", cmdErr.Action)
}

func TestAskUnreachable(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := run(t, "--url", url, "ask", "rate?")
	require.Error(t, res.err)
	assert.Equal(t, ExitNetworkError, GetExitCode(res.err))
}

func TestAskWritesHTML(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.OnAsk(answerWith(service.AskResponse{Answer: "<p>Four percent.</p>", Intent: "lookup"}))
	out := filepath.Join(t.TempDir(), "chat.html")

	res := run(t, "--url", srv.URL, "ask", "--html", out, "what rate?")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Transcript written to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "what rate?")
	assert.Contains(t, page, "Four percent.")
	assert.Contains(t, page, "Intent: lookup")
	assert.NotContains(t, page, "Searching documents")
}

// =============================================================================
// DOCS AND HISTORY
// =============================================================================

func TestDocsListing(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.SetDocuments(
		service.Document{ID: "rates_2024", Name: "Rates 2024"},
		service.Document{ID: "fees", Name: "Fee schedule"},
	)

	res := run(t, "--url", srv.URL, "docs")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "rates_2024")
	assert.Contains(t, res.stdout, "Fee schedule")
	assert.Contains(t, res.stdout, "2 document(s)")
}

func TestDocsEmpty(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)

	res := run(t, "--url", srv.URL, "docs")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No documents ingested yet")
}

func TestDocsCheckJSON(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.SetDocuments(service.Document{ID: "fees", Name: "Fee schedule"})

	res := run(t, "--url", srv.URL, "docs", "--check", "--json")
	require.NoError(t, res.err)

	resp, data := decodeResponse(t, res.stdout)
	assert.True(t, resp.Success)
	health, _ := data["health"].(map[string]any)
	assert.Equal(t, "docchat-fake", health["service"])
	docs, _ := data["documents"].([]any)
	assert.Len(t, docs, 1)
}

func TestHistoryNewestFirst(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.SetHistory(
		service.HistoryItem{Timestamp: "2024-05-01T10:00:00Z", Query: "older question", Mode: "text"},
		service.HistoryItem{Timestamp: "2024-05-02T10:00:00Z", Query: "newer question", Mode: "table", Intent: "lookup"},
	)

	res := run(t, "--url", srv.URL, "history")
	require.NoError(t, res.err)
	newer := strings.Index(res.stdout, "newer question")
	older := strings.Index(res.stdout, "older question")
	require.True(t, newer >= 0 && older >= 0, res.stdout)
	assert.Less(t, newer, older)
	assert.Contains(t, res.stdout, "intent: lookup")

	res = run(t, "--url", srv.URL, "history", "--limit", "1", "--json")
	require.NoError(t, res.err)
	_, data := decodeResponse(t, res.stdout)
	items, _ := data["items"].([]any)
	require.Len(t, items, 1)
	first, _ := items[0].(map[string]any)
	assert.Equal(t, "newer question", first["query"])
}

func TestHistoryEmpty(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)

	res := run(t, "--url", srv.URL, "history")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No history yet.")
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigInitSetGet(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")

	res := run(t, "config", "init")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	res = run(t, "config", "init")
	require.Error(t, res.err, "init refuses to overwrite")
	require.NoError(t, run(t, "config", "init", "--force").err)

	res = run(t, "config", "set", "query.top_k", "9")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "query.top_k = 9")

	res = run(t, "config", "get", "query.top_k")
	require.NoError(t, res.err)
	assert.Equal(t, "9\n", res.stdout)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Query.TopK)
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	isolate(t)

	res := run(t, "config", "set", "query.nope", "1")
	var verr *ValidationError
	require.ErrorAs(t, res.err, &verr)
	assert.Equal(t, "key", verr.Field)

	res = run(t, "config", "set", "query.mode", "fancy")
	require.Error(t, res.err)
	assert.Equal(t, ExitConfigError, GetExitCode(res.err))

	res = run(t, "config", "set", "query.top_k", "many")
	require.ErrorAs(t, res.err, &verr)
	assert.Equal(t, "query.top_k", verr.Field)
}

func TestConfigSetIgnoresEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DOCCHAT_MODE", "table")

	require.NoError(t, run(t, "config", "set", "query.top_k", "7").err)
	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `mode = "table"`)
}

func TestConfigPathAndShow(t *testing.T) {
	dir := isolate(t)

	res := run(t, "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, filepath.Join(dir, "config.toml")+"\n", res.stdout)

	res = run(t, "--url", "http://docs.internal:9000/", "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `base_url = "http://docs.internal:9000"`)

	res = run(t, "config", "--json")
	require.NoError(t, res.err)
	resp, _ := decodeResponse(t, res.stdout)
	assert.True(t, resp.Success)
	assert.Equal(t, "config", resp.Command)
}

func TestInvalidConfigStopsCommands(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[query]\nmode = \"fancy\"\n"), 0600))

	res := run(t, "docs")
	require.Error(t, res.err)
	assert.Equal(t, ExitConfigError, GetExitCode(res.err))

	// path and set still work so the file can be repaired.
	require.NoError(t, run(t, "config", "path").err)
	require.NoError(t, run(t, "config", "set", "query.mode", "auto").err)
	require.NoError(t, run(t, "--url", servicetest.New(t).URL, "docs").err)
}

func TestBadURLFlag(t *testing.T) {
	isolate(t)
	res := run(t, "--url", "ftp://docs", "docs")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid --url")
}

func TestVersion(t *testing.T) {
	isolate(t)
	res := run(t, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "docchat "+Version)

	res = run(t, "version", "--json")
	require.NoError(t, res.err)
	_, data := decodeResponse(t, res.stdout)
	assert.Equal(t, Version, data["version"])
}

// =============================================================================
// REPL
// =============================================================================

func newTestRepl(t *testing.T, srv *servicetest.Server) (*repl, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Service.BaseURL = srv.URL
	var out, errOut bytes.Buffer
	r, err := newRepl(cfg, &out, &errOut, printOptions{})
	require.NoError(t, err)
	return r, &out, &errOut
}

func TestReplQuestionsAndCommands(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.OnAsk(answerWith(service.AskResponse{
		Answer:  "<p>Four percent.</p>",
		Sources: []model.Citation{{DocID: "rates_2024", Page: "3", SourceKind: "text"}},
	}))
	r, out, errOut := newTestRepl(t, srv)
	ctx := context.Background()

	assert.False(t, r.handle(ctx, "   "))
	assert.Empty(t, srv.Asks())

	assert.False(t, r.handle(ctx, "what rate?"))
	assert.Contains(t, out.String(), "Four percent.")
	assert.NotContains(t, out.String(), "p. 3")

	out.Reset()
	assert.False(t, r.handle(ctx, "/sources"))
	assert.Contains(t, out.String(), "p. 3", "toggling prints the answer again")

	out.Reset()
	assert.False(t, r.handle(ctx, "/mode table"))
	assert.Contains(t, out.String(), "Mode: table")
	r.handle(ctx, "again?")
	assert.Equal(t, service.ModeTable, srv.Asks()[1].Mode)

	assert.False(t, r.handle(ctx, "/bogus"))
	assert.Contains(t, errOut.String(), "unknown command")

	assert.True(t, r.handle(ctx, "/quit"))
	assert.True(t, r.handle(ctx, "exit"))
}

func TestReplHistoryAndReplay(t *testing.T) {
	isolate(t)
	srv := servicetest.New(t)
	srv.SetHistory(
		service.HistoryItem{Timestamp: "2024-05-01T10:00:00Z", Query: "older question", Answer: "<p>old answer</p>"},
		service.HistoryItem{Timestamp: "2024-05-02T10:00:00Z", Query: "newer question", Answer: "<p>new answer</p>"},
	)
	r, out, _ := newTestRepl(t, srv)
	ctx := context.Background()

	r.handle(ctx, "/history")
	assert.Contains(t, out.String(), "newer question")
	assert.Contains(t, out.String(), "/replay")

	out.Reset()
	r.handle(ctx, "/replay 2")
	assert.Contains(t, out.String(), "older question", "replayed queries are printed")
	assert.Contains(t, out.String(), "old answer")
}

// =============================================================================
// PRINTER
// =============================================================================

func TestPrinterSkipsPlaceholdersAndEcho(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, config.Default(), printOptions{})

	p.Append(&transcript.Entry{ID: "p1", Role: model.RoleAssistant, Kind: model.KindPlaceholder, Text: "Searching documents..."})
	p.expectEcho()
	p.Append(&transcript.Entry{ID: "u1", Role: model.RoleUser, Kind: model.KindAnswer, Text: "first"})
	p.Append(&transcript.Entry{ID: "u2", Role: model.RoleUser, Kind: model.KindAnswer, Text: "second"})
	p.Remove("p1")

	assert.NotContains(t, buf.String(), "Searching")
	assert.NotContains(t, buf.String(), "first")
	assert.Contains(t, buf.String(), "second")
}

func TestPrinterReprintsOnToggle(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, config.Default(), printOptions{})
	e := &transcript.Entry{
		ID: "a1", Role: model.RoleAssistant, Kind: model.KindAnswer, Text: "<p>answer</p>",
		Tables: []transcript.TableRegion{{Title: "Rates", Markup: "<table><tr><td>4%</td></tr></table>"}},
		Meta:   &transcript.MetaRegion{Citations: []model.Citation{{DocID: "fees", Page: "2", SourceKind: "text"}}},
	}
	p.Append(e)
	assert.Equal(t, 1, strings.Count(buf.String(), "answer"))

	p.SetVisible("a1", transcript.RegionCitations, 0, false)
	assert.Equal(t, 1, strings.Count(buf.String(), "answer"), "no change, no reprint")

	p.SetVisible("a1", transcript.RegionCitations, 0, true)
	assert.Equal(t, 2, strings.Count(buf.String(), "answer"))
	assert.Contains(t, buf.String(), "p. 2")

	p.SetVisible("a1", transcript.RegionTable, 0, true)
	assert.Equal(t, 3, strings.Count(buf.String(), "answer"))
	assert.Contains(t, buf.String(), "4%")

	p.SetVisible("a1", transcript.RegionTable, 5, true)
	p.SetVisible("missing", transcript.RegionTable, 0, true)
	assert.Equal(t, 3, strings.Count(buf.String(), "answer"))

	ran := false
	p.Settle(func() { ran = true })
	assert.True(t, ran)
}

// =============================================================================
// ERRORS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", ErrMissingArgument("question", "docchat ask ..."), ExitUsageError},
		{"unknown slash command", fmt.Errorf("%w: /x", commands.ErrUnknownCommand), ExitUsageError},
		{"not found", NewNotFoundError("document", "x"), ExitNotFoundError},
		{"config", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "query.mode", Message: "bad"}}), ExitConfigError},
		{"timeout", &service.ClientError{Type: service.ErrTypeTimeout, Message: "request timed out"}, ExitTimeoutError},
		{"connection", WrapError(&service.ClientError{Type: service.ErrTypeConnection, Message: "down"}, "ask"), ExitNetworkError},
		{"status", NewCommandError("ask", "query", "rejected", &service.ClientError{Type: service.ErrTypeStatus, StatusCode: 500, Message: "boom"}), ExitServiceError},
		{"busy", submit.ErrBusy, ExitGeneralError},
		{"displayed", &displayedError{err: NewNotFoundError("document", "x")}, ExitNotFoundError},
		{"other", errors.New("something else"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, NewValidationError("mode", "fancy", "unknown answer mode", "auto, text, table, both"), true)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "validation_error", out["error_type"])
	assert.Equal(t, "mode", out["field"])
	assert.Equal(t, float64(ExitUsageError), out["exit_code"])

	buf.Reset()
	DisplayError(&buf, errors.New("plain"), false)
	assert.Contains(t, buf.String(), "[ERROR]")
	assert.Contains(t, buf.String(), "plain")
}
