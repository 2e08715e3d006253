// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package submit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/docchat-tui/internal/catalog"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// ErrBusy is returned when a submission is started while another runs.
var ErrBusy = errors.New("submit: a submission is already in progress")

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Uploader ingests documents.
type Uploader interface {
	Upload(ctx context.Context, req service.UploadRequest) (*service.UploadResult, error)
}

// Asker answers queries.
type Asker interface {
	Ask(ctx context.Context, req service.AskRequest) (*service.AskResponse, error)
}

// Refresher reloads the document catalog.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Config holds the request settings applied to every submission.
type Config struct {
	// TopK is the number of passages retrieved per query (default: 5)
	TopK int

	// DocType is sent with uploads (default: generic_doc)
	DocType string

	// UseOCR asks the service to OCR uploaded documents
	UseOCR bool

	// SearchingText is the placeholder shown while a query runs
	SearchingText string
}

// DefaultConfig returns the default submission settings.
func DefaultConfig() Config {
	return Config{
		TopK:          5,
		DocType:       service.DefaultDocType,
		UseOCR:        true,
		SearchingText: "Searching documents...",
	}
}

// =============================================================================
// MACHINE
// =============================================================================

// Result describes how a submission ended.
type Result struct {
	ID string

	// Skipped is set for an empty submission, which does nothing.
	Skipped bool

	Upload    *service.UploadResult
	UploadErr error
	Answer    *service.AskResponse
	QueryErr  error

	// Final is the last state before the machine returned to Idle.
	Final State
}

// Machine drives submissions. It is safe for concurrent use; concurrent
// submissions beyond the first are rejected with ErrBusy.
type Machine struct {
	composer *transcript.Composer
	uploader Uploader
	asker    Asker
	catalog  Refresher
	config   Config

	mu       sync.Mutex
	state    State
	observer func(id string, s State)
}

// NewMachine creates a machine. catalog may be nil.
func NewMachine(composer *transcript.Composer, uploader Uploader, asker Asker, catalog Refresher, config Config) *Machine {
	return &Machine{
		composer: composer,
		uploader: uploader,
		asker:    asker,
		catalog:  catalog,
		config:   withDefaults(config),
	}
}

func withDefaults(config Config) Config {
	defaults := DefaultConfig()
	if config.TopK <= 0 {
		config.TopK = defaults.TopK
	}
	if config.DocType == "" {
		config.DocType = defaults.DocType
	}
	if config.SearchingText == "" {
		config.SearchingText = defaults.SearchingText
	}
	return config
}

// SetConfig replaces the request settings. A submission already running
// keeps the settings it started with.
func (m *Machine) SetConfig(config Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = withDefaults(config)
}

// Config returns the current request settings.
func (m *Machine) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// OnTransition registers fn to observe every state change.
func (m *Machine) OnTransition(fn func(id string, s State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = fn
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Busy reports whether a submission is in progress.
func (m *Machine) Busy() bool {
	return m.State() != Idle
}

// Submit runs one submission of text plus the session's staged attachment.
// Failures of the upload or the query are reported in the transcript and
// the Result; the returned error is only ErrBusy. A nil sess behaves like
// a fresh session in auto mode.
func (m *Machine) Submit(ctx context.Context, sess *Session, text string) (*Result, error) {
	if sess == nil {
		sess = NewSession(service.ModeAuto)
	}
	text = strings.TrimSpace(text)
	if text == "" && sess.Attachment() == nil {
		return &Result{Skipped: true, Final: Idle}, nil
	}

	id := uuid.NewString()
	if !m.begin(id) {
		return nil, ErrBusy
	}
	res := &Result{ID: id}
	cfg := m.Config()
	defer func() { m.transition(id, Idle) }()

	if att := sess.take(); att != nil {
		if !m.upload(ctx, cfg, id, sess, att, res) && text == "" {
			return res, nil
		}
	}
	if text == "" {
		return res, nil
	}

	m.query(ctx, cfg, id, sess, text, res)
	return res, nil
}

func (m *Machine) upload(ctx context.Context, cfg Config, id string, sess *Session, att *model.Attachment, res *Result) bool {
	m.transition(id, UploadPending)
	m.composer.Append(model.NewNotice(model.RoleUser, fmt.Sprintf("Uploading %s...", att.DisplayName)))

	up, err := m.uploader.Upload(ctx, service.UploadRequest{
		FileName: att.DisplayName,
		Data:     att.Data,
		DocID:    catalog.NormalizeID(att.Stem()),
		DocType:  cfg.DocType,
		UseOCR:   cfg.UseOCR,
	})
	if err != nil {
		res.UploadErr = err
		res.Final = UploadFailed
		m.transition(id, UploadFailed)
		sess.restore(att)
		m.composer.Append(model.NewErrorMessage(fmt.Sprintf("Upload of %s failed: %v", att.DisplayName, err)))
		return false
	}

	res.Upload = up
	res.Final = UploadSucceeded
	m.transition(id, UploadSucceeded)
	m.composer.Append(model.NewNotice(model.RoleAssistant, uploadNotice(att.DisplayName, up)))

	if m.catalog != nil {
		if err := m.catalog.Refresh(ctx); err != nil {
			log.Printf("SUBMIT | id=%s catalog_refresh_failed=%v", id, err)
		}
	}
	return true
}

func (m *Machine) query(ctx context.Context, cfg Config, id string, sess *Session, text string, res *Result) {
	m.composer.Append(model.NewUserMessage(text))
	placeholder := m.composer.Append(model.NewPlaceholder(cfg.SearchingText))
	m.transition(id, QueryPending)

	resp, err := m.asker.Ask(ctx, service.AskRequest{
		Query:  text,
		DocIDs: sess.DocFilter(),
		TopK:   cfg.TopK,
		Mode:   sess.Mode(),
	})

	if rmErr := m.composer.Remove(placeholder.ID); rmErr != nil {
		log.Printf("SUBMIT | id=%s placeholder_remove_failed=%v", id, rmErr)
	}

	if err != nil {
		res.QueryErr = err
		res.Final = QueryFailed
		m.transition(id, QueryFailed)
		m.composer.Append(model.NewErrorMessage(fmt.Sprintf("Error: %v", err)))
		return
	}

	res.Answer = resp
	res.Final = QuerySucceeded
	m.transition(id, QuerySucceeded)

	msg := model.NewAssistantMessage(resp.Answer, resp.Intent, resp.Mode)
	msg.Sources = resp.Sources
	msg.Tables = resp.Tables
	m.composer.Append(msg)
}

func uploadNotice(name string, up *service.UploadResult) string {
	notice := fmt.Sprintf("Uploaded %s as %s", name, up.DocID)
	if up.PageCount > 0 {
		notice += fmt.Sprintf(" (%d pages)", up.PageCount)
	}
	return notice
}

// begin moves Idle to Composing atomically.
func (m *Machine) begin(id string) bool {
	m.mu.Lock()
	if m.state != Idle {
		m.mu.Unlock()
		return false
	}
	m.state = Composing
	observer := m.observer
	m.mu.Unlock()

	log.Printf("SUBMIT | id=%s state=%s", id, Composing)
	if observer != nil {
		observer(id, Composing)
	}
	return true
}

func (m *Machine) transition(id string, s State) {
	m.mu.Lock()
	m.state = s
	observer := m.observer
	m.mu.Unlock()

	log.Printf("SUBMIT | id=%s state=%s", id, s)
	if observer != nil {
		observer(id, s)
	}
}
