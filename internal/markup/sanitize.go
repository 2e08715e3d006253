// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
)

// ErrSanitizerUnavailable is returned by a Sanitizer that was never configured.
var ErrSanitizerUnavailable = errors.New("markup: sanitizer unavailable")

// Sanitizer filters markup against an allow-list. The zero value and a nil
// pointer are both unavailable.
type Sanitizer struct {
	policy *bluemonday.Policy
	allow  AllowList
}

// NewSanitizer builds a sanitizer enforcing allow.
func NewSanitizer(allow AllowList) (*Sanitizer, error) {
	if err := allow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid allow-list: %w", err)
	}

	p := bluemonday.NewPolicy()
	// URLs in href/src must parse and be relative or plain web links.
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")

	for _, tag := range allow.Tags() {
		p.AllowElements(tag)
		if attrs := allow[tag]; len(attrs) > 0 {
			p.AllowAttrs(attrs...).OnElements(tag)
		}
	}

	return &Sanitizer{policy: p, allow: allow}, nil
}

// MustSanitizer is NewSanitizer for allow-lists known to be valid.
func MustSanitizer(allow AllowList) *Sanitizer {
	s, err := NewSanitizer(allow)
	if err != nil {
		panic(err)
	}
	return s
}

// AllowList returns the allow-list the sanitizer enforces.
func (s *Sanitizer) AllowList() AllowList {
	if s == nil {
		return nil
	}
	return s.allow
}

// Sanitize strips every element and attribute outside the allow-list.
// Disallowed elements are dropped with their attributes; the text of
// script and style elements is dropped as well.
func (s *Sanitizer) Sanitize(markup string) (string, error) {
	if s == nil || s.policy == nil {
		return "", ErrSanitizerUnavailable
	}
	return s.policy.Sanitize(markup), nil
}

// Sanitize filters markup against allow with a one-off sanitizer.
func Sanitize(markup string, allow AllowList) (string, error) {
	s, err := NewSanitizer(allow)
	if err != nil {
		return "", err
	}
	return s.Sanitize(markup)
}
