// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package submit

// State is a step of the submission lifecycle.
type State int

const (
	Idle State = iota
	Composing
	UploadPending
	UploadSucceeded
	UploadFailed
	QueryPending
	QuerySucceeded
	QueryFailed
)

var stateNames = map[State]string{
	Idle:            "idle",
	Composing:       "composing",
	UploadPending:   "upload_pending",
	UploadSucceeded: "upload_succeeded",
	UploadFailed:    "upload_failed",
	QueryPending:    "query_pending",
	QuerySucceeded:  "query_succeeded",
	QueryFailed:     "query_failed",
}

// String returns the snake_case state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Pending reports whether a request is outstanding in this state.
func (s State) Pending() bool {
	return s == UploadPending || s == QueryPending
}
