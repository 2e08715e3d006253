// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"github.com/jeranaias/docchat-tui/internal/model"
)

// Answer modes accepted by /ask.
const (
	ModeAuto  = "auto"
	ModeText  = "text"
	ModeTable = "table"
	ModeBoth  = "both"
)

// Modes lists the answer modes in display order.
var Modes = []string{ModeAuto, ModeText, ModeTable, ModeBoth}

// ValidMode reports whether mode is accepted by /ask.
func ValidMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Default document type sent with uploads.
const DefaultDocType = "generic_doc"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AskRequest is the request body for /ask. A nil DocIDs searches all documents.
type AskRequest struct {
	Query  string   `json:"query"`
	DocIDs []string `json:"doc_ids"`
	TopK   int      `json:"top_k"`
	Mode   string   `json:"mode"`
}

// UploadRequest describes a document to ingest.
type UploadRequest struct {
	FileName string
	Data     []byte
	DocID    string
	DocType  string
	UseOCR   bool
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// AskResponse is the response from /ask.
type AskResponse struct {
	Answer  string             `json:"answer"`
	Intent  string             `json:"intent"`
	Mode    string             `json:"mode"`
	Sources []model.Citation   `json:"sources"`
	Tables  []model.TableBlock `json:"tables"`
}

// UploadResult is the response from /upload.
type UploadResult struct {
	OK            bool   `json:"ok"`
	DocID         string `json:"doc_id"`
	OriginalDocID string `json:"original_doc_id"`
	DocType       string `json:"doc_type"`
	PageCount     int    `json:"page_count"`
	UseOCR        bool   `json:"use_ocr"`
}

// Document is one entry of the /documents listing.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DocumentsResponse is the response from /documents.
type DocumentsResponse struct {
	Documents []Document `json:"documents"`
}

// HistoryItem is one past query from /history.
type HistoryItem struct {
	Timestamp string   `json:"ts"`
	Query     string   `json:"query"`
	Answer    string   `json:"answer"`
	DocIDs    []string `json:"doc_ids"`
	Intent    string   `json:"intent"`
	Mode      string   `json:"mode"`
}

// Health is the response from /health.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// errorBody is the error envelope the service uses for rejected requests.
type errorBody struct {
	Detail any    `json:"detail"`
	Error  string `json:"error"`
}
