// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render draws transcript entries for a terminal.
//
// Entry text arrives as sanitized markup. Prose is converted to Markdown and
// rendered through glamour; table regions are rebuilt as lipgloss tables from
// the markup's cells. Collapsed regions render as a single indicator line.
package render
