// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript owns the ordered, append-only list of rendered
// messages and the composer that builds them.
//
// The Composer turns a model.Message into an Entry: prose sanitized,
// tables extracted into collapsible regions, citations folded into a
// metadata region. Every change is mirrored to a RenderSink, which is the
// only way the transcript touches a display surface. After each change the
// composer asks the sink to settle and then scroll to the anchor, the
// element that always sits after the newest entry.
package transcript
