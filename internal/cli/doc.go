// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the docchat command line with cobra.
//
// The root command opens the chat TUI. Every surface shares one wiring
// (app.go): a service client, a transcript composer behind a render sink,
// the document catalog, the history panel and the submission machine.
//
// # Commands
//
//   - tui: full-screen chat (default)
//   - ask: one question, printed to stdout or written as JSON/HTML
//   - repl: line-mode chat with history and tab completion
//   - docs: document listing and health check
//   - history: recent questions
//   - config: show, init, path, get, set
//   - version: build information
//
// # Output
//
// Commands that take --json write a single JSONResponse envelope to stdout.
// Errors map to exit codes in errors.go.
//
// # Usage
//
//	func main() {
//	    cli.Execute()
//	}
package cli
