// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcript messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Avatar returns the glyph shown next to messages from this role.
func (r Role) Avatar() string {
	switch r {
	case RoleUser:
		return "🧑"
	case RoleAssistant:
		return "🤖"
	default:
		return "•"
	}
}

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind distinguishes answers from transient or informational messages.
type Kind int

const (
	// KindAnswer is a regular query or answer turn.
	KindAnswer Kind = iota
	// KindNotice is a status line such as an upload confirmation.
	KindNotice
	// KindError reports a failed request.
	KindError
	// KindPlaceholder is the transient "searching" indicator.
	KindPlaceholder
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAnswer:
		return "answer"
	case KindNotice:
		return "notice"
	case KindError:
		return "error"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Plain reports whether the message body is plain text rather than markup.
// Only assistant answers carry markup from the service.
func (k Kind) Plain(role Role) bool {
	return role == RoleUser || k != KindAnswer
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message before it is composed into the transcript.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// Content is plain text for user messages and notices, and raw answer
	// markup for assistant answers.
	Content string `json:"content"`

	// Answer metadata (assistant answers only)
	Intent  string       `json:"intent,omitempty"`
	Mode    string       `json:"mode,omitempty"`
	Sources []Citation   `json:"sources,omitempty"`
	Tables  []TableBlock `json:"tables,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, kind Kind, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates the optimistic echo of a submitted query.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, KindAnswer, content)
}

// NewAssistantMessage creates an assistant answer from raw service markup.
func NewAssistantMessage(answer, intent, mode string) *Message {
	msg := NewMessage(RoleAssistant, KindAnswer, answer)
	msg.Intent = intent
	msg.Mode = mode
	return msg
}

// NewNotice creates an informational message attributed to role.
func NewNotice(role Role, content string) *Message {
	return NewMessage(role, KindNotice, content)
}

// NewErrorMessage creates an assistant-side error message.
func NewErrorMessage(content string) *Message {
	return NewMessage(RoleAssistant, KindError, content)
}

// NewPlaceholder creates the transient indicator shown while a query runs.
func NewPlaceholder(content string) *Message {
	return NewMessage(RoleAssistant, KindPlaceholder, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// HasMetadata reports whether the message gets an answer metadata region.
// The region exists for assistant answers with an intent or at least one source.
func (m *Message) HasMetadata() bool {
	if m.Role != RoleAssistant || m.Kind != KindAnswer {
		return false
	}
	return m.Intent != "" || len(m.Sources) > 0
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	clone := *m
	if m.Sources != nil {
		clone.Sources = append([]Citation(nil), m.Sources...)
	}
	if m.Tables != nil {
		clone.Tables = append([]TableBlock(nil), m.Tables...)
	}
	return &clone
}
