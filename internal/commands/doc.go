// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash commands shared by the chat TUI and
// the line-mode REPL.
//
// Handlers are plain functions over an Env and return text for the caller
// to show, so the same registry drives both surfaces.
//
// # Built-in Commands
//
//   - /attach, /detach: stage a file for upload with the next message
//   - /doc, /docs: restrict the search to one document, list documents
//   - /mode: choose auto, text, table or both
//   - /history, /replay: browse earlier questions and replay one
//   - /sources, /table: toggle regions of the latest answer
//   - /export: write the transcript to HTML, Markdown or JSON
//   - /health, /help, /quit
//
// # Usage
//
//	registry := commands.NewRegistry()
//	res, err := registry.Execute(env, "/mode table")
package commands
