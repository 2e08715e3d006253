// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// DocumentsFn returns selectable document ids.
	DocumentsFn func() []string

	// FilesFn overrides file path completion.
	FilesFn func(prefix string) []string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for the token being typed at the end of input.
func (c *Completer) Complete(input string) []Completion {
	if !strings.HasPrefix(strings.TrimLeft(input, " "), "/") {
		return nil
	}
	input = strings.TrimLeft(input, " ")
	trailing := strings.HasSuffix(input, " ")

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return c.completeCommands("")
	}
	if len(parts) == 1 && !trailing {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(strings.ToLower(parts[0]))
	if cmd == nil {
		return nil
	}
	argIndex := len(parts) - 2
	partial := parts[len(parts)-1]
	if trailing {
		argIndex++
		partial = ""
	}
	return c.completeArg(cmd, argIndex, partial)
}

// Lines completes input into whole candidate lines, for line editors that
// replace the entire buffer.
func (c *Completer) Lines(input string) []string {
	completions := c.Complete(input)
	if len(completions) == 0 {
		return nil
	}
	prefix := input
	if !strings.HasSuffix(input, " ") {
		if i := strings.LastIndex(input, " "); i >= 0 {
			prefix = input[:i+1]
		} else {
			prefix = ""
		}
	}
	lines := make([]string, 0, len(completions))
	for _, comp := range completions {
		value := comp.Value
		if strings.ContainsAny(value, " \t") {
			value = strconv.Quote(value)
		}
		lines = append(lines, prefix+value)
	}
	return lines
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

// Ranking tiers. Candidates sort by tier, then by value.
const (
	rankAlias  = 0
	rankPrefix = 1
	rankDir    = 2
	rankExact  = 3
)

func (c *Completer) completeCommands(partial string) []Completion {
	partial = strings.ToLower(partial)
	var out []Completion
	for _, cmd := range c.registry.All() {
		if strings.HasPrefix(cmd.Name, partial) {
			out = append(out, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       rank(cmd.Name, partial),
			})
		}
		if partial == "" {
			continue
		}
		for _, alias := range cmd.Aliases {
			if alias != partial && strings.HasPrefix(alias, partial) {
				out = append(out, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       rankAlias,
				})
			}
		}
	}
	sortCompletions(out)
	return out
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}
	arg := cmd.Args[argIndex]
	switch arg.Type {
	case ArgTypeFile:
		if c.FilesFn != nil {
			return completeFromList(c.FilesFn(partial), partial)
		}
		return completeFiles(partial)
	case ArgTypeEnum:
		return completeFromList(arg.Values, partial)
	case ArgTypeDocument:
		if c.DocumentsFn != nil {
			return completeFromList(c.DocumentsFn(), partial)
		}
	}
	return nil
}

func completeFromList(values []string, partial string) []Completion {
	lower := strings.ToLower(partial)
	var out []Completion
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), lower) {
			out = append(out, Completion{Value: v, Display: v, Score: rank(v, partial)})
		}
	}
	sortCompletions(out)
	return out
}

// maxFileCompletions bounds directory listings.
const maxFileCompletions = 20

// completeFiles lists entries of the directory named by partial whose names
// start with its last element. Dotfiles show only when asked for.
func completeFiles(partial string) []Completion {
	dir, base := filepath.Split(partial)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	base = strings.ToLower(base)
	var out []Completion
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(strings.ToLower(name), base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}

		comp := Completion{Value: filepath.Join(dir, name), Display: name, Score: rank(name, base)}
		if entry.IsDir() {
			comp.Value += string(os.PathSeparator)
			comp.Description = "directory"
			comp.Score = rankDir
		} else if info, err := entry.Info(); err == nil {
			comp.Description = formatFileSize(info.Size())
		}
		out = append(out, comp)
	}

	sortCompletions(out)
	if len(out) > maxFileCompletions {
		out = out[:maxFileCompletions]
	}
	return out
}

func rank(value, partial string) int {
	if strings.EqualFold(value, partial) {
		return rankExact
	}
	return rankPrefix
}

func sortCompletions(completions []Completion) {
	sort.SliceStable(completions, func(i, j int) bool {
		a, b := completions[i], completions[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Value < b.Value
	})
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState tracks a visible candidate list and the selection within
// it. OriginalInput is what the user typed before cycling started.
type CompletionState struct {
	OriginalInput string
	Completions   []Completion
	Selected      int
	Visible       bool
}

// NewCompletionState returns an empty, hidden state.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update replaces the candidates and selects the first one.
func (cs *CompletionState) Update(input string, completions []Completion) {
	*cs = CompletionState{
		OriginalInput: input,
		Completions:   completions,
		Visible:       len(completions) > 0,
	}
}

// Next selects the following candidate, wrapping around.
func (cs *CompletionState) Next() { cs.step(1) }

// Prev selects the preceding candidate, wrapping around.
func (cs *CompletionState) Prev() { cs.step(-1) }

func (cs *CompletionState) step(delta int) {
	n := len(cs.Completions)
	if n == 0 {
		return
	}
	cs.Selected = ((cs.Selected+delta)%n + n) % n
}

// Accept returns the selected value, falling back to the first candidate.
func (cs *CompletionState) Accept() string {
	if sel := cs.GetSelected(); sel != nil {
		return sel.Value
	}
	if len(cs.Completions) > 0 {
		return cs.Completions[0].Value
	}
	return ""
}

// Clear hides the list and drops the candidates.
func (cs *CompletionState) Clear() {
	*cs = CompletionState{Selected: -1}
}

// GetSelected returns the selected candidate, or nil.
func (cs *CompletionState) GetSelected() *Completion {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return nil
	}
	return &cs.Completions[cs.Selected]
}
