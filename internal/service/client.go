// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the service client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeDecode
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeConnection, Message: "document service is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsType reports whether err is a ClientError of type t.
func IsType(err error, t ErrorType) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == t
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the service client.
type ClientConfig struct {
	// BaseURL is the service base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout for queries and listings (default: 60s)
	Timeout time.Duration

	// UploadTimeout for document ingestion, which includes OCR (default: 10m)
	UploadTimeout time.Duration

	// RequestsPerSecond limits outgoing requests (default: 5)
	RequestsPerSecond float64

	// Burst is the limiter burst size (default: 5)
	Burst int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8000",
		Timeout:           60 * time.Second,
		UploadTimeout:     10 * time.Minute,
		RequestsPerSecond: 5,
		Burst:             5,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the document service.
//
// The Client is thread-safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	defaults := DefaultConfig()

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.UploadTimeout == 0 {
		config.UploadTimeout = defaults.UploadTimeout
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.Burst == 0 {
		config.Burst = defaults.Burst
	}

	return &Client{
		config: config,
		// Deadlines are set per request so uploads can run longer than queries.
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// AssetURL returns the absolute URL of a path served by the service.
func (c *Client) AssetURL(path string) string {
	return c.config.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// =============================================================================
// QUERY OPERATIONS
// =============================================================================

// Ask sends a query and returns the composed answer.
func (c *Client) Ask(ctx context.Context, query AskRequest) (*AskResponse, error) {
	if query.Mode == "" {
		query.Mode = ModeAuto
	}
	if query.TopK <= 0 {
		query.TopK = 5
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeDecode, Message: "failed to marshal request", Cause: err}
	}

	var result AskResponse
	if err := c.doJSON(ctx, c.config.Timeout, http.MethodPost, "/ask", bytes.NewReader(body), "application/json", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// DOCUMENT OPERATIONS
// =============================================================================

// Upload ingests a document through the multipart /upload endpoint.
func (c *Client) Upload(ctx context.Context, doc UploadRequest) (*UploadResult, error) {
	if doc.DocType == "" {
		doc.DocType = DefaultDocType
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", doc.FileName)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload form", Cause: err}
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload form", Cause: err}
	}
	fields := []struct{ name, value string }{
		{"doc_id", doc.DocID},
		{"doc_type", doc.DocType},
		{"use_ocr", strconv.FormatBool(doc.UseOCR)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload form", Cause: err}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload form", Cause: err}
	}

	// Any 2xx reply is a success; OK is informational.
	var result UploadResult
	if err := c.doJSON(ctx, c.config.UploadTimeout, http.MethodPost, "/upload", &buf, mw.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Documents lists the ingested documents.
func (c *Client) Documents(ctx context.Context) ([]Document, error) {
	var result DocumentsResponse
	if err := c.doJSON(ctx, c.config.Timeout, http.MethodGet, "/documents", nil, "", &result); err != nil {
		return nil, err
	}
	return result.Documents, nil
}

// History returns up to limit recent queries, oldest first.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryItem, error) {
	path := "/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var result []HistoryItem
	if err := c.doJSON(ctx, c.config.Timeout, http.MethodGet, path, nil, "", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health reports the service status.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var result Health
	if err := c.doJSON(ctx, 5*time.Second, http.MethodGet, "/health", nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// doJSON performs one request and decodes a JSON body into out.
func (c *Client) doJSON(ctx context.Context, timeout time.Duration, method, path string, body io.Reader, contentType string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "request cancelled while rate limited", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("SERVICE | method=%s path=%s error=%v", method, path, err)
		return transportError(err)
	}
	defer resp.Body.Close()
	log.Printf("SERVICE | method=%s path=%s status=%d duration=%s", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeDecode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request cancelled", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: ErrUnreachable.Message, Cause: err}
}

// maxErrorBody bounds how much of a rejected response becomes the message.
const maxErrorBody = 4096

// statusError turns a non-2xx response into a ClientError whose message is
// the service's own explanation when one is present.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(raw))

	var envelope errorBody
	if json.Unmarshal(raw, &envelope) == nil {
		switch d := envelope.Detail.(type) {
		case string:
			msg = d
		case nil:
			if envelope.Error != "" {
				msg = envelope.Error
			}
		default:
			if b, err := json.Marshal(d); err == nil {
				msg = string(b)
			}
		}
	}
	if msg == "" {
		msg = resp.Status
	}

	return &ClientError{
		Type:       ErrTypeStatus,
		Message:    fmt.Sprintf("%d: %s", resp.StatusCode, msg),
		StatusCode: resp.StatusCode,
	}
}
