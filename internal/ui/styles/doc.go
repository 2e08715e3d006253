// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the docchat terminal UI.

Colors are Lip Gloss AdaptiveColor values so the same palette works on light
and dark terminals. Theme bundles the styles the renderer and the chat model
use and records which glamour style matches the terminal background.

# Usage

	theme := styles.NewTheme("auto")
	theme.SetSize(width, height)
	header := theme.AssistantLabel.Render("Assistant")

Theme names are "auto" (ask termenv about the background), "dark" and
"light".
*/
package styles
