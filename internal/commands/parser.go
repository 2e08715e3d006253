// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strconv"
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult is one line of input split into a command and its arguments.
// Command is nil when the name is not registered.
type ParseResult struct {
	IsCommand   bool
	Command     *Command
	CommandName string   // lowercased, with the slash
	Args        []string // unquoted tokens
	RawArgs     string   // everything after the name, trimmed
}

// Parse resolves input against r. Input without a leading slash is not a
// command.
func (r *Registry) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	name := ExtractCommandName(input)
	if name == "" {
		return ParseResult{}
	}
	raw := strings.TrimSpace(input[len(name):])
	lower := strings.ToLower(name)
	return ParseResult{
		IsCommand:   true,
		Command:     r.Get(lower),
		CommandName: lower,
		Args:        splitCommandLine(raw),
		RawArgs:     raw,
	}
}

// ParseArgs splits a raw argument string, honoring quotes.
func ParseArgs(input string) []string {
	return splitCommandLine(input)
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// splitCommandLine splits a command line into tokens. Single and double
// quotes group words; a backslash escapes a quote inside quotes.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingle, inDouble, quoted bool

	flush := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		quoted = false
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			quoted = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
			quoted = true
		case ch == '\\' && i+1 < len(runes) && (inDouble || inSingle):
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(ch)
			}
		case unicode.IsSpace(ch) && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()
	return tokens
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsCommand returns true if the input appears to be a command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName extracts just the command name from input.
// e.g., "/doc report_2024" -> "/doc"
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	end := strings.IndexFunc(input, unicode.IsSpace)
	if end == -1 {
		return input
	}
	return input[:end]
}

// ValidateArgs checks that required arguments are present and that enum
// arguments hold one of their values (case-insensitive).
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}
	for i, def := range cmd.Args {
		if i >= len(args) {
			if def.Required {
				return &ValidationError{Command: cmd.Name, Arg: def.Name, Message: "missing argument", Expected: def.Description}
			}
			continue
		}
		if def.Type == ArgTypeEnum && len(def.Values) > 0 && !containsFold(def.Values, args[i]) {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      def.Name,
				Message:  "invalid value",
				Got:      args[i],
				Expected: strings.Join(def.Values, ", "),
			}
		}
	}
	return nil
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

// ValidationError reports a bad or missing slash command argument.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Command + ": " + e.Message)
	if e.Arg != "" {
		sb.WriteString(" <" + e.Arg + ">")
	}
	if e.Got != "" {
		sb.WriteString(" " + strconv.Quote(e.Got))
	}
	if e.Expected != "" {
		sb.WriteString(" (expected " + e.Expected + ")")
	}
	return sb.String()
}
