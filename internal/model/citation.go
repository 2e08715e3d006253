// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Placeholders substituted for citation fields the service leaves out.
const (
	UnknownDocID  = "unknown"
	UnknownPage   = "?"
	DefaultSource = "text"
)

// Citation is a reference to the document location backing an answer.
// Page is kept as text because the service sends numbers, strings or null.
type Citation struct {
	DocID      string `json:"doc_id"`
	Page       string `json:"page"`
	SourceKind string `json:"source"`
}

// WithDefaults returns a copy with missing fields replaced by placeholders.
func (c Citation) WithDefaults() Citation {
	if strings.TrimSpace(c.DocID) == "" {
		c.DocID = UnknownDocID
	}
	if strings.TrimSpace(c.Page) == "" {
		c.Page = UnknownPage
	}
	if strings.TrimSpace(c.SourceKind) == "" {
		c.SourceKind = DefaultSource
	}
	return c
}

// rawCitation mirrors the wire shape with loosely typed values.
type rawCitation struct {
	DocID  json.RawMessage `json:"doc_id"`
	Page   json.RawMessage `json:"page"`
	Source json.RawMessage `json:"source"`
}

// UnmarshalJSON accepts strings, numbers or null for every field.
func (c *Citation) UnmarshalJSON(data []byte) error {
	var raw rawCitation
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.DocID = looseString(raw.DocID)
	c.Page = looseString(raw.Page)
	c.SourceKind = looseString(raw.Source)
	return nil
}

// looseString renders a JSON scalar as text. Null, objects and arrays yield "".
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '{', '[':
		return ""
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			if i, err := n.Int64(); err == nil {
				return strconv.FormatInt(i, 10)
			}
			return n.String()
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return strconv.FormatBool(b)
		}
	}
	return ""
}
