// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// ALLOW-LIST
// =============================================================================

// AllowList maps a permitted tag to the attributes permitted on it.
type AllowList map[string][]string

// DefaultAllowList is the fixed set of structural and formatting elements
// rendered from service answers.
var DefaultAllowList = AllowList{
	// Text structure
	"p":          nil,
	"br":         nil,
	"hr":         nil,
	"blockquote": nil,
	"h1":         nil,
	"h2":         nil,
	"h3":         nil,
	"h4":         nil,
	"h5":         nil,
	"h6":         nil,
	"ul":         nil,
	"ol":         nil,
	"li":         nil,
	"pre":        nil,
	"code":       {"class"},
	"div":        {"class"},
	"span":       {"class"},

	// Inline formatting
	"b":      nil,
	"strong": nil,
	"i":      nil,
	"em":     nil,
	"u":      nil,
	"sup":    nil,
	"sub":    nil,

	// Links and images
	"a":   {"href", "title"},
	"img": {"src", "alt", "title"},

	// Tables
	"table":   {"class"},
	"caption": nil,
	"thead":   nil,
	"tbody":   nil,
	"tfoot":   nil,
	"tr":      nil,
	"th":      {"colspan", "rowspan", "scope"},
	"td":      {"colspan", "rowspan"},
}

// Validate rejects allow-lists that would let scripting through.
func (a AllowList) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("allow-list is empty")
	}
	for tag, attrs := range a {
		switch strings.ToLower(tag) {
		case "":
			return fmt.Errorf("allow-list contains an empty tag")
		case "script", "style", "iframe", "object", "embed":
			return fmt.Errorf("allow-list must not permit <%s>", tag)
		}
		for _, attr := range attrs {
			lower := strings.ToLower(attr)
			if strings.HasPrefix(lower, "on") {
				return fmt.Errorf("allow-list must not permit event handler %q on <%s>", attr, tag)
			}
			if strings.HasPrefix(lower, "data-") {
				return fmt.Errorf("allow-list must not permit data attribute %q on <%s>", attr, tag)
			}
			if lower == "style" {
				return fmt.Errorf("allow-list must not permit inline style on <%s>", tag)
			}
		}
	}
	return nil
}

// Tags returns the permitted tag names in sorted order.
func (a AllowList) Tags() []string {
	tags := make([]string, 0, len(a))
	for tag := range a {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Allows reports whether attr is permitted on tag. An empty attr asks
// whether the tag itself is permitted.
func (a AllowList) Allows(tag, attr string) bool {
	attrs, ok := a[strings.ToLower(tag)]
	if !ok {
		return false
	}
	if attr == "" {
		return true
	}
	for _, allowed := range attrs {
		if strings.EqualFold(allowed, attr) {
			return true
		}
	}
	return false
}
