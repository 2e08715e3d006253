// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jeranaias/docchat-tui/internal/catalog"
	"github.com/jeranaias/docchat-tui/internal/export"
	"github.com/jeranaias/docchat-tui/internal/history"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// ErrUnknownCommand is returned for a slash command nobody registered.
var ErrUnknownCommand = errors.New("unknown command")

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Handler runs a command. The returned Result is shown by the caller.
type Handler func(env *Env, args []string) (Result, error)

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/doc <id|all>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	Handler Handler

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString   ArgType = iota // Free-form string
	ArgTypeFile                    // File path
	ArgTypeEnum                    // One of predefined values
	ArgTypeDocument                // Document id from the catalog
)

// =============================================================================
// EXECUTION ENVIRONMENT
// =============================================================================

// HealthChecker probes the answering service.
type HealthChecker interface {
	Health(ctx context.Context) (*service.Health, error)
}

// Env is what handlers operate on. Nil collaborators make the commands
// that need them report that they are unavailable.
type Env struct {
	Ctx        context.Context
	Session    *submit.Session
	Catalog    *catalog.Catalog
	History    *history.Panel
	Composer   *transcript.Composer
	Health     HealthChecker
	ExportOpts *export.Options
	Registry   *Registry
}

func (e *Env) context() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

// Action asks the surface to do something beyond printing output.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionShowHistory
)

// Result is what a command hands back to the surface.
type Result struct {
	Output string
	Action Action
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Execute parses input and runs the command it names.
func (r *Registry) Execute(env *Env, input string) (Result, error) {
	parsed := r.Parse(input)
	if !parsed.IsCommand {
		return Result{}, fmt.Errorf("%q is not a command", input)
	}
	if parsed.Command == nil {
		return Result{}, fmt.Errorf("%w: %s (try /help)", ErrUnknownCommand, parsed.CommandName)
	}
	if err := ValidateArgs(parsed.Command, parsed.Args); err != nil {
		return Result{}, err
	}
	if env == nil {
		env = &Env{}
	}
	if env.Registry == nil {
		env.Registry = r
	}
	return parsed.Command.Handler(env, parsed.Args)
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Usage:       "/help [command]",
		Args:        []ArgDef{{Name: "command", Type: ArgTypeString, Description: "Command to describe"}},
		Category:    "General",
		Handler:     handleHelp,
	})
	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit docchat",
		Category:    "General",
		Handler:     handleQuit,
	})
	r.Register(&Command{
		Name:        "/health",
		Description: "Check the answering service",
		Category:    "General",
		Handler:     handleHealth,
	})

	r.Register(&Command{
		Name:        "/attach",
		Aliases:     []string{"/a"},
		Description: "Upload a file with the next message",
		Usage:       "/attach <path>",
		Args:        []ArgDef{{Name: "path", Required: true, Type: ArgTypeFile, Description: "File to upload"}},
		Category:    "Documents",
		Handler:     handleAttach,
	})
	r.Register(&Command{
		Name:        "/detach",
		Description: "Drop the staged attachment",
		Category:    "Documents",
		Handler:     handleDetach,
	})
	r.Register(&Command{
		Name:        "/doc",
		Description: "Search one document, or all",
		Usage:       "/doc [<id>|all]",
		Args:        []ArgDef{{Name: "document", Type: ArgTypeDocument, Description: "Document id, name, or all"}},
		Category:    "Documents",
		Handler:     handleDoc,
	})
	r.Register(&Command{
		Name:        "/docs",
		Description: "List uploaded documents",
		Category:    "Documents",
		Handler:     handleDocs,
	})

	r.Register(&Command{
		Name:        "/mode",
		Aliases:     []string{"/m"},
		Description: "Show or set the query mode",
		Usage:       "/mode [auto|text|table|both]",
		Args: []ArgDef{{
			Name:        "mode",
			Type:        ArgTypeEnum,
			Values:      service.Modes,
			Description: "Query mode",
		}},
		Category: "Query",
		Handler:  handleMode,
	})
	r.Register(&Command{
		Name:        "/sources",
		Aliases:     []string{"/citations"},
		Description: "Show or hide sources of the latest answer",
		Category:    "Query",
		Handler:     handleSources,
	})
	r.Register(&Command{
		Name:        "/table",
		Description: "Expand or collapse a table of the latest answer",
		Usage:       "/table [n]",
		Args:        []ArgDef{{Name: "n", Type: ArgTypeString, Description: "Table number, default 1"}},
		Category:    "Query",
		Handler:     handleTable,
	})

	r.Register(&Command{
		Name:        "/history",
		Description: "List earlier questions, newest first",
		Usage:       "/history [count]",
		Args:        []ArgDef{{Name: "count", Type: ArgTypeString, Description: "How many to show"}},
		Category:    "Transcript",
		Handler:     handleHistory,
	})
	r.Register(&Command{
		Name:        "/replay",
		Description: "Replay a history item into the transcript",
		Usage:       "/replay <n>",
		Args:        []ArgDef{{Name: "n", Required: true, Type: ArgTypeString, Description: "Item number from /history"}},
		Category:    "Transcript",
		Handler:     handleReplay,
	})
	r.Register(&Command{
		Name:        "/export",
		Description: "Write the transcript to a file (.html, .md, .json)",
		Usage:       "/export [path]",
		Args:        []ArgDef{{Name: "path", Type: ArgTypeFile, Description: "Output file"}},
		Category:    "Transcript",
		Handler:     handleExport,
	})
}

// =============================================================================
// COMPLETION TYPES
// =============================================================================

// Completion represents a single completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Display text (may include formatting)
	Display string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int
}
