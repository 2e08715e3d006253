// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/catalog"
	"github.com/jeranaias/docchat-tui/internal/export"
	"github.com/jeranaias/docchat-tui/internal/history"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// ErrUnavailable is returned when a command's collaborator is not wired.
var ErrUnavailable = errors.New("not available here")

func text(format string, args ...any) (Result, error) {
	return Result{Output: fmt.Sprintf(format, args...)}, nil
}

// =============================================================================
// GENERAL
// =============================================================================

func handleHelp(env *Env, args []string) (Result, error) {
	r := env.Registry
	if r == nil {
		return Result{}, fmt.Errorf("/help: %w", ErrUnavailable)
	}
	if len(args) > 0 {
		name := args[0]
		if !strings.HasPrefix(name, "/") {
			name = "/" + name
		}
		cmd := r.Get(strings.ToLower(name))
		if cmd == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		}
		return text("%s", describe(cmd))
	}
	return text("%s", GenerateHelpText(r))
}

func describe(cmd *Command) string {
	var sb strings.Builder
	sb.WriteString(cmd.Name + " - " + cmd.Description)
	if len(cmd.Aliases) > 0 {
		sb.WriteString("\nAliases: " + strings.Join(cmd.Aliases, ", "))
	}
	if cmd.Usage != "" {
		sb.WriteString("\nUsage: " + cmd.Usage)
	}
	return sb.String()
}

// GenerateHelpText lists every command by category.
func GenerateHelpText(r *Registry) string {
	var sb strings.Builder
	categories := r.ByCategory()
	order := []string{"General", "Documents", "Query", "Transcript"}
	for name := range categories {
		if !contains(order, name) {
			order = append(order, name)
		}
	}

	for _, category := range order {
		cmds := categories[category]
		if len(cmds) == 0 {
			continue
		}
		sb.WriteString(category + "\n")
		for _, cmd := range cmds {
			line := "  " + cmd.Name
			if cmd.Usage != "" {
				line = "  " + cmd.Usage
			}
			for len(line) < 32 {
				line += " "
			}
			sb.WriteString(line + cmd.Description + "\n")
		}
	}
	sb.WriteString("Anything else is sent as a question.")
	return sb.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func handleQuit(env *Env, args []string) (Result, error) {
	return Result{Output: "Goodbye.", Action: ActionQuit}, nil
}

func handleHealth(env *Env, args []string) (Result, error) {
	if env.Health == nil {
		return Result{}, fmt.Errorf("/health: %w", ErrUnavailable)
	}
	h, err := env.Health.Health(env.context())
	if err != nil {
		return Result{}, fmt.Errorf("service unavailable: %w", err)
	}
	out := "Service " + h.Status
	if h.Service != "" {
		out += " (" + h.Service
		if h.Version != "" {
			out += " " + h.Version
		}
		out += ")"
	}
	return text("%s", out)
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func handleAttach(env *Env, args []string) (Result, error) {
	if env.Session == nil {
		return Result{}, fmt.Errorf("/attach: %w", ErrUnavailable)
	}
	a, err := model.LoadAttachment(strings.Join(args, " "))
	if err != nil {
		return Result{}, err
	}
	env.Session.Attach(a)
	return text("Attached %s (%s). It uploads with your next message.", a.DisplayName, formatFileSize(int64(a.Size())))
}

func handleDetach(env *Env, args []string) (Result, error) {
	if env.Session == nil {
		return Result{}, fmt.Errorf("/detach: %w", ErrUnavailable)
	}
	a := env.Session.Attachment()
	if a == nil {
		return text("Nothing attached.")
	}
	env.Session.Detach()
	return text("Removed %s.", a.DisplayName)
}

func handleDoc(env *Env, args []string) (Result, error) {
	if env.Session == nil {
		return Result{}, fmt.Errorf("/doc: %w", ErrUnavailable)
	}
	if len(args) == 0 {
		return text("Searching: %s", docLabel(env, env.Session.Document()))
	}
	key := strings.Join(args, " ")
	if strings.EqualFold(key, "all") {
		env.Session.SetDocument("")
		return text("Searching: %s", catalog.AllDocumentsLabel)
	}
	if env.Catalog == nil {
		env.Session.SetDocument(key)
		return text("Searching: %s", key)
	}
	doc, ok := env.Catalog.Lookup(key)
	if !ok {
		return Result{}, fmt.Errorf("unknown document %q (see /docs)", key)
	}
	env.Session.SetDocument(doc.ID)
	return text("Searching: %s", env.Catalog.Label(doc.ID))
}

func docLabel(env *Env, id string) string {
	if env.Catalog == nil {
		if id == "" {
			return catalog.AllDocumentsLabel
		}
		return id
	}
	return env.Catalog.Label(id)
}

func handleDocs(env *Env, args []string) (Result, error) {
	if env.Catalog == nil {
		return Result{}, fmt.Errorf("/docs: %w", ErrUnavailable)
	}
	if err := env.Catalog.Refresh(env.context()); err != nil {
		return Result{}, fmt.Errorf("could not list documents: %w", err)
	}
	docs := env.Catalog.Documents()
	if len(docs) == 0 {
		return text("No documents uploaded yet.")
	}
	current := ""
	if env.Session != nil {
		current = env.Session.Document()
	}
	width := 0
	for _, d := range docs {
		if len(d.ID) > width {
			width = len(d.ID)
		}
	}
	lines := make([]string, 0, len(docs))
	for _, d := range docs {
		marker := " "
		if d.ID == current {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %-*s  %s", marker, width, d.ID, d.Name))
	}
	return text("%s", strings.Join(lines, "\n"))
}

// =============================================================================
// QUERY
// =============================================================================

func handleMode(env *Env, args []string) (Result, error) {
	if env.Session == nil {
		return Result{}, fmt.Errorf("/mode: %w", ErrUnavailable)
	}
	if len(args) == 0 {
		return text("Mode: %s (%s)", env.Session.Mode(), strings.Join(service.Modes, ", "))
	}
	if err := env.Session.SetMode(args[0]); err != nil {
		return Result{}, err
	}
	return text("Mode: %s", env.Session.Mode())
}

func latest(env *Env, keep func(*transcript.Entry) bool) (*transcript.Entry, error) {
	if env.Composer == nil {
		return nil, ErrUnavailable
	}
	e, ok := env.Composer.Transcript().Last(keep)
	if !ok {
		return nil, errors.New("no answer to change yet")
	}
	return e, nil
}

func handleSources(env *Env, args []string) (Result, error) {
	e, err := latest(env, func(e *transcript.Entry) bool {
		return e.Meta != nil && len(e.Meta.Citations) > 0
	})
	if err != nil {
		return Result{}, fmt.Errorf("/sources: %w", err)
	}
	visible, err := env.Composer.ToggleCitations(e.ID)
	if err != nil {
		return Result{}, err
	}
	if visible {
		return text("Showing %d sources.", len(e.Meta.Citations))
	}
	return text("Sources hidden.")
}

func handleTable(env *Env, args []string) (Result, error) {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return Result{}, fmt.Errorf("/table: %q is not a table number", args[0])
		}
		n = v
	}
	e, err := latest(env, func(e *transcript.Entry) bool { return len(e.Tables) > 0 })
	if err != nil {
		return Result{}, fmt.Errorf("/table: %w", err)
	}
	if n > len(e.Tables) {
		return Result{}, fmt.Errorf("/table: the latest answer has %d table(s)", len(e.Tables))
	}
	expanded, err := env.Composer.ToggleTable(e.ID, n-1)
	if err != nil {
		return Result{}, err
	}
	state := "collapsed"
	if expanded {
		state = "expanded"
	}
	return text("%s %s.", e.Tables[n-1].Title, state)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func handleHistory(env *Env, args []string) (Result, error) {
	if env.History == nil {
		return Result{}, fmt.Errorf("/history: %w", ErrUnavailable)
	}
	count := 0
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return Result{}, fmt.Errorf("/history: %q is not a count", args[0])
		}
		count = v
	}
	if err := env.History.Refresh(env.context()); err != nil {
		return Result{}, fmt.Errorf("could not load history: %w", err)
	}
	items := env.History.Items()
	if count > 0 && count < len(items) {
		items = items[:count]
	}
	if len(items) == 0 {
		return Result{Output: "No history yet.", Action: ActionShowHistory}, nil
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, history.Summary(item)))
	}
	return Result{Output: strings.Join(lines, "\n"), Action: ActionShowHistory}, nil
}

func handleReplay(env *Env, args []string) (Result, error) {
	if env.History == nil || env.Composer == nil {
		return Result{}, fmt.Errorf("/replay: %w", ErrUnavailable)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return Result{}, fmt.Errorf("/replay: %q is not an item number", args[0])
	}
	if len(env.History.Items()) == 0 {
		if err := env.History.Refresh(env.context()); err != nil {
			return Result{}, fmt.Errorf("could not load history: %w", err)
		}
	}
	item, ok := env.History.Item(n - 1)
	if !ok {
		return Result{}, fmt.Errorf("/replay: no history item %d", n)
	}
	history.Replay(env.Composer, item)
	return Result{}, nil
}

func handleExport(env *Env, args []string) (Result, error) {
	if env.Composer == nil {
		return Result{}, fmt.Errorf("/export: %w", ErrUnavailable)
	}
	entries := env.Composer.Transcript().Entries()
	if len(entries) == 0 {
		return Result{}, errors.New("/export: the transcript is empty")
	}
	opts := env.ExportOpts
	if opts == nil {
		opts = export.DefaultOptions()
	}

	var (
		path string
		err  error
	)
	if len(args) == 0 {
		path, err = export.ExportToFile(entries, export.NewHTMLExporter(opts), opts)
	} else {
		target := strings.Join(args, " ")
		path, err = export.WriteFile(target, entries, export.ForPath(target, opts), opts)
	}
	if err != nil {
		return Result{}, fmt.Errorf("/export: %w", err)
	}
	return text("Exported %d entries to %s", len(entries), path)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatFileSize formats a file size in human-readable form.
func formatFileSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case size >= GB:
		return strconv.FormatFloat(float64(size)/GB, 'f', 1, 64) + " GB"
	case size >= MB:
		return strconv.FormatFloat(float64(size)/MB, 'f', 1, 64) + " MB"
	case size >= KB:
		return strconv.FormatFloat(float64(size)/KB, 'f', 1, 64) + " KB"
	default:
		return strconv.FormatInt(size, 10) + " B"
	}
}

// DocumentIDs lists catalog ids for completion.
func DocumentIDs(c *catalog.Catalog) []string {
	if c == nil {
		return nil
	}
	docs := c.Documents()
	ids := make([]string, 0, len(docs)+1)
	ids = append(ids, "all")
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	sort.Strings(ids[1:])
	return ids
}
