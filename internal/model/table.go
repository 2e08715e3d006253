// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "encoding/json"

// TableBlock is a titled table fragment kept apart from the answer prose.
type TableBlock struct {
	Title  string `json:"title"`
	Markup string `json:"markup"`
}

// UnmarshalJSON accepts the markup under "markup", "html" or "html_content".
func (t *TableBlock) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       string `json:"title"`
		Markup      string `json:"markup"`
		HTML        string `json:"html"`
		HTMLContent string `json:"html_content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Title = raw.Title
	switch {
	case raw.Markup != "":
		t.Markup = raw.Markup
	case raw.HTML != "":
		t.Markup = raw.HTML
	default:
		t.Markup = raw.HTMLContent
	}
	return nil
}
