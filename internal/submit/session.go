// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package submit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
)

// AllDocuments is the document filter value that searches everything.
const AllDocuments = ""

// Session holds the per-user choices that shape the next submission.
type Session struct {
	mu         sync.Mutex
	attachment *model.Attachment
	mode       string
	document   string
}

// NewSession creates a session with the given answer mode.
func NewSession(mode string) *Session {
	if !service.ValidMode(mode) {
		mode = service.ModeAuto
	}
	return &Session{mode: mode}
}

// Attach stages a file for the next submission, replacing any previous one.
func (s *Session) Attach(a *model.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachment = a
}

// Detach clears the staged file.
func (s *Session) Detach() {
	s.Attach(nil)
}

// Attachment returns the staged file, or nil.
func (s *Session) Attachment() *model.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachment
}

// take removes and returns the staged file.
func (s *Session) take() *model.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.attachment
	s.attachment = nil
	return a
}

// restore puts a back unless another file was staged meanwhile.
func (s *Session) restore(a *model.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attachment == nil {
		s.attachment = a
	}
}

// SetMode selects the answer mode.
func (s *Session) SetMode(mode string) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if !service.ValidMode(mode) {
		return fmt.Errorf("unknown mode %q (want one of %s)", mode, strings.Join(service.Modes, ", "))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	return nil
}

// Mode returns the selected answer mode.
func (s *Session) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetDocument restricts queries to one document. "all" and "" clear it.
func (s *Session) SetDocument(id string) {
	id = strings.TrimSpace(id)
	if strings.EqualFold(id, "all") {
		id = AllDocuments
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = id
}

// Document returns the selected document id, or AllDocuments.
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// DocFilter returns the doc_ids sent with a query: nil for all documents.
func (s *Session) DocFilter() []string {
	doc := s.Document()
	if doc == AllDocuments {
		return nil
	}
	return []string{doc}
}
