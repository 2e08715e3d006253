// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat surface for docchat.

# Key Components

## Model (model.go)

The Model mirrors the transcript for display. It never calls the composer
from Update: every composer, machine or service call runs inside a tea.Cmd,
and the composer reports back through a ProgramSink.

## ProgramSink (sink.go)

ProgramSink implements transcript.RenderSink by turning each call into a
tea.Msg sent to the running program. Settle is honored in two phases: the
model renders everything queued before the settle message, then runs the
settled function, whose ScrollToAnchor arrives as a later message.

## Update Loop (update.go)

Keyboard handling, slash commands, submissions, the history panel and
periodic health checks.

## View Rendering (view.go)

Header, transcript viewport, completion line, input and status bar.

# Usage

	sink := chat.NewProgramSink()
	m := chat.New(chat.Deps{Composer: composer, Machine: machine, Sink: sink, ...})
	p := tea.NewProgram(m, tea.WithAltScreen())
	sink.Attach(p)
	_, err := p.Run()
*/
package chat
