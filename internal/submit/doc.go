// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package submit runs one user submission through its states:
//
//	Idle -> Composing -> [UploadPending -> UploadSucceeded | UploadFailed]
//	     -> [QueryPending -> QuerySucceeded | QueryFailed] -> Idle
//
// An attached file is uploaded before the query and the document catalog
// is refreshed after a successful upload. The user's query is echoed into
// the transcript before the request is sent, followed by a placeholder that
// is removed when the answer or error arrives. Only one submission runs at
// a time; a second one returns ErrBusy.
package submit
