// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package service provides the HTTP client for the document question
// answering service.
//
// # Endpoints
//
//   - POST /ask: answer a query, optionally restricted to documents
//   - POST /upload: ingest a document (multipart form)
//   - GET /documents: list ingested documents
//   - GET /history: recent queries, oldest first
//   - GET /health: service status
//
// # Usage
//
//	client := service.NewClientWithConfig(&service.ClientConfig{
//	    BaseURL: "http://127.0.0.1:8000",
//	})
//	resp, err := client.Ask(ctx, service.AskRequest{Query: "What is the rate?", TopK: 5})
//	if err != nil {
//	    var ce *service.ClientError
//	    if errors.As(err, &ce) && ce.Type == service.ErrTypeStatus {
//	        // the service rejected the request
//	    }
//	}
package service
