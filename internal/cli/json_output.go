// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for --json.
//
// Every command that supports --json writes one JSONResponse envelope to
// stdout; human-readable text goes to stderr in that mode.

package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
)

// JSONResponse is the envelope for all --json output.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response. Data may carry
// partial results.
func NewJSONErrorResponse(command string, data interface{}, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      data,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w with indentation.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// AskData is the data returned by ask --json.
type AskData struct {
	Query   string                `json:"query"`
	Mode    string                `json:"mode"`
	DocIDs  []string              `json:"doc_ids"`
	Answer  string                `json:"answer,omitempty"`
	Intent  string                `json:"intent,omitempty"`
	Sources []model.Citation      `json:"sources,omitempty"`
	Tables  []model.TableBlock    `json:"tables,omitempty"`
	Upload  *service.UploadResult `json:"upload,omitempty"`
	Export  string                `json:"export,omitempty"`
}

// DocsData is the data returned by docs --json.
type DocsData struct {
	Documents []service.Document `json:"documents"`
	Health    *service.Health    `json:"health,omitempty"`
}

// HistoryData is the data returned by history --json, newest first.
type HistoryData struct {
	Items []service.HistoryItem `json:"items"`
}

// VersionData is the data returned by version --json.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}
