// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog keeps the list of ingested documents used to scope queries.
package catalog

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/docchat-tui/internal/service"
)

// AllDocumentsLabel is the label of the option that clears the filter.
const AllDocumentsLabel = "All documents"

// Lister fetches the current document listing.
type Lister interface {
	Documents(ctx context.Context) ([]service.Document, error)
}

// Option is one selectable document filter.
type Option struct {
	Value string
	Label string
}

// Catalog caches the document listing. It is safe for concurrent use.
type Catalog struct {
	lister Lister

	mu       sync.RWMutex
	docs     []service.Document
	onChange []func([]service.Document)
}

// New creates an empty catalog backed by lister.
func New(lister Lister) *Catalog {
	return &Catalog{lister: lister}
}

// Refresh reloads the listing. On error the previous listing is kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	docs, err := c.lister.Documents(ctx)
	if err != nil {
		log.Printf("CATALOG | refresh_failed=%v", err)
		return fmt.Errorf("refresh documents: %w", err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return strings.ToLower(docs[i].Name) < strings.ToLower(docs[j].Name)
	})

	c.mu.Lock()
	c.docs = docs
	listeners := append([]func([]service.Document){}, c.onChange...)
	c.mu.Unlock()

	log.Printf("CATALOG | documents=%d", len(docs))
	for _, fn := range listeners {
		fn(append([]service.Document(nil), docs...))
	}
	return nil
}

// OnChange registers fn to receive the listing after each refresh.
func (c *Catalog) OnChange(fn func([]service.Document)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Documents returns the cached listing.
func (c *Catalog) Documents() []service.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]service.Document(nil), c.docs...)
}

// Options returns the selectable filters, "All documents" first.
func (c *Catalog) Options() []Option {
	c.mu.RLock()
	defer c.mu.RUnlock()
	opts := make([]Option, 0, len(c.docs)+1)
	opts = append(opts, Option{Value: "", Label: AllDocumentsLabel})
	for _, d := range c.docs {
		label := d.Name
		if label == "" {
			label = d.ID
		}
		opts = append(opts, Option{Value: d.ID, Label: label})
	}
	return opts
}

// Lookup resolves a document by id, or by name when no id matches.
func (c *Catalog) Lookup(key string) (service.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.docs {
		if d.ID == key {
			return d, true
		}
	}
	for _, d := range c.docs {
		if strings.EqualFold(d.Name, key) {
			return d, true
		}
	}
	return service.Document{}, false
}

// Label returns the display label for a filter value.
func (c *Catalog) Label(id string) string {
	if id == "" {
		return AllDocumentsLabel
	}
	if d, ok := c.Lookup(id); ok && d.Name != "" {
		return d.Name
	}
	return id
}

// =============================================================================
// DOCUMENT IDS
// =============================================================================

// UnknownDocID replaces names that normalize to nothing.
const UnknownDocID = "unknown_doc"

var (
	idSpace   = regexp.MustCompile(`\s+`)
	idInvalid = regexp.MustCompile(`[^a-z0-9_\-\x{0E00}-\x{0E7F}]`)
)

// NormalizeID derives a document id from a display name: NFKC, lowercase,
// whitespace runs to "_", and only ASCII letters, digits, "_", "-" and
// Thai script kept.
func NormalizeID(name string) string {
	id := norm.NFKC.String(name)
	id = cases.Lower(language.Und).String(strings.TrimSpace(id))
	id = idSpace.ReplaceAllString(id, "_")
	id = idInvalid.ReplaceAllString(id, "")
	if id == "" {
		return UnknownDocID
	}
	return id
}
