// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package servicetest provides an in-process fake of the document service
// for tests.
package servicetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jeranaias/docchat-tui/internal/service"
)

// Upload records one multipart upload received by the fake.
type Upload struct {
	FileName string
	Data     []byte
	DocID    string
	DocType  string
	UseOCR   bool
}

// Reply is a scripted response: a status code and a JSON-encodable body.
// A string body is written verbatim.
type Reply struct {
	Status int
	Body   any
}

// Server is a scriptable fake document service.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	documents []service.Document
	history   []service.HistoryItem
	health    service.Health
	askFn     func(service.AskRequest) Reply
	uploadFn  func(Upload) Reply
	asks      []service.AskRequest
	uploads   []Upload
	askGate   chan struct{}
	askArrive chan struct{}
}

// New starts a fake service. It is closed when the test ends.
func New(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		health: service.Health{Status: "ok", Service: "docchat-fake", Version: "test"},
		askFn: func(req service.AskRequest) Reply {
			return Reply{Status: http.StatusOK, Body: service.AskResponse{Answer: "ok", Mode: req.Mode}}
		},
		uploadFn: func(up Upload) Reply {
			return Reply{Status: http.StatusOK, Body: service.UploadResult{
				OK: true, DocID: up.DocID, OriginalDocID: up.DocID, DocType: up.DocType, PageCount: 1, UseOCR: up.UseOCR,
			}}
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/ask", s.handleAsk)
	r.Post("/upload", s.handleUpload)
	r.Get("/documents", s.handleDocuments)
	r.Get("/history", s.handleHistory)
	r.Get("/health", s.handleHealth)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Client returns a service client pointed at the fake.
func (s *Server) Client() *service.Client {
	return service.NewClientWithConfig(&service.ClientConfig{BaseURL: s.URL, RequestsPerSecond: 1000, Burst: 1000})
}

// =============================================================================
// SCRIPTING
// =============================================================================

// OnAsk replaces the /ask handler.
func (s *Server) OnAsk(fn func(service.AskRequest) Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.askFn = fn
}

// OnUpload replaces the /upload handler.
func (s *Server) OnUpload(fn func(Upload) Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadFn = fn
}

// SetDocuments sets the /documents listing.
func (s *Server) SetDocuments(docs ...service.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = docs
}

// SetHistory sets the /history listing, oldest first.
func (s *Server) SetHistory(items ...service.HistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = items
}

// HoldAsks makes /ask block until Release is called. The returned channel
// receives once per /ask request that reaches the handler.
func (s *Server) HoldAsks() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.askGate = make(chan struct{})
	s.askArrive = make(chan struct{}, 16)
	return s.askArrive
}

// Release unblocks held /ask requests.
func (s *Server) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.askGate != nil {
		close(s.askGate)
		s.askGate = nil
	}
}

// Asks returns the /ask requests received so far.
func (s *Server) Asks() []service.AskRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]service.AskRequest(nil), s.asks...)
}

// Uploads returns the uploads received so far.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req service.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReply(w, Reply{Status: http.StatusUnprocessableEntity, Body: map[string]string{"detail": err.Error()}})
		return
	}

	s.mu.Lock()
	s.asks = append(s.asks, req)
	gate, arrive, fn := s.askGate, s.askArrive, s.askFn
	s.mu.Unlock()

	if gate != nil {
		arrive <- struct{}{}
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	writeReply(w, fn(req))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeReply(w, Reply{Status: http.StatusBadRequest, Body: map[string]string{"detail": err.Error()}})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeReply(w, Reply{Status: http.StatusBadRequest, Body: map[string]string{"detail": "missing file"}})
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	useOCR, _ := strconv.ParseBool(r.FormValue("use_ocr"))
	up := Upload{
		FileName: header.Filename,
		Data:     data,
		DocID:    r.FormValue("doc_id"),
		DocType:  r.FormValue("doc_type"),
		UseOCR:   useOCR,
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, up)
	fn := s.uploadFn
	s.mu.Unlock()

	writeReply(w, fn(up))
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	docs := append([]service.Document{}, s.documents...)
	s.mu.Unlock()
	writeReply(w, Reply{Status: http.StatusOK, Body: service.DocumentsResponse{Documents: docs}})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]service.HistoryItem{}, s.history...)
	s.mu.Unlock()

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit >= 0 && limit < len(items) {
		items = items[len(items)-limit:]
	}
	writeReply(w, Reply{Status: http.StatusOK, Body: items})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	h := s.health
	s.mu.Unlock()
	writeReply(w, Reply{Status: http.StatusOK, Body: h})
}

func writeReply(w http.ResponseWriter, reply Reply) {
	if reply.Status == 0 {
		reply.Status = http.StatusOK
	}
	if text, ok := reply.Body.(string); ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(reply.Status)
		io.WriteString(w, text)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	json.NewEncoder(w).Encode(reply.Body)
}
