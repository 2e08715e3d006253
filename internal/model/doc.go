// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcript messages.
//
// This package defines the core domain types shared by the service client,
// the transcript composer and the renderers.
//
// # Key Types
//
//   - Message: one user or assistant turn, notice, error or placeholder
//   - Citation: a source reference (document, page, source kind)
//   - TableBlock: a titled table carried alongside an answer
//   - Attachment: a file staged for upload with the next submission
//   - Role: sender enumeration (user, assistant)
//   - Kind: message kind (answer, notice, error, placeholder)
//
// # Usage
//
//	msg := model.NewAssistantMessage(resp.Answer, resp.Intent, resp.Mode)
//	msg.Sources = resp.Sources
//	if msg.HasMetadata() {
//	    // render the collapsible citation region
//	}
package model
