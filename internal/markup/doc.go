// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup turns raw answer markup from the document service into
// safe, structured fragments.
//
// The pipeline applied to every assistant answer is:
//
//	decoded := markup.DecodeBasicEntities(raw)
//	ext, err := markup.Extract(decoded)        // prose + titled tables
//	expanded := expander.Expand(ext.Prose)     // [SHOW_IMAGE: ...] directives
//	safe, err := sanitizer.Sanitize(expanded)  // allow-list filtering
//
// Sanitization is the only trust boundary. Its allow-list is declarative
// (see AllowList) and never includes event handlers or data-* attributes.
// A Sanitizer that has not been configured fails closed with
// ErrSanitizerUnavailable so callers can fall back to escaping.
package markup
