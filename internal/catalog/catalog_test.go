// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/service/servicetest"
)

type failingLister struct{}

func (failingLister) Documents(context.Context) ([]service.Document, error) {
	return nil, errors.New("boom")
}

func TestRefreshAndOptions(t *testing.T) {
	fake := servicetest.New(t)
	fake.SetDocuments(service.Document{ID: "b_doc", Name: "Beta"}, service.Document{ID: "a_doc", Name: "alpha"})

	c := New(fake.Client())
	var notified []service.Document
	c.OnChange(func(docs []service.Document) { notified = docs })

	require.NoError(t, c.Refresh(context.Background()))

	opts := c.Options()
	require.Len(t, opts, 3)
	assert.Equal(t, Option{Value: "", Label: AllDocumentsLabel}, opts[0])
	assert.Equal(t, "a_doc", opts[1].Value)
	assert.Equal(t, "b_doc", opts[2].Value)
	assert.Len(t, notified, 2)

	d, ok := c.Lookup("Beta")
	require.True(t, ok)
	assert.Equal(t, "b_doc", d.ID)
	assert.Equal(t, "alpha", c.Label("a_doc"))
	assert.Equal(t, AllDocumentsLabel, c.Label(""))
}

func TestRefreshFailureKeepsListing(t *testing.T) {
	c := New(failingLister{})
	c.docs = []service.Document{{ID: "kept"}}

	assert.Error(t, c.Refresh(context.Background()))
	assert.Len(t, c.Documents(), 1)
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Annual Report 2024", "annual_report_2024"},
		{"  Q3   results  ", "q3_results"},
		{"budget(final).v2", "budgetfinalv2"},
		{"ＡＢＣ", "abc"},
		{"รายงาน ปี", "รายงาน_ปี"},
		{"***", UnknownDocID},
		{"", UnknownDocID},
		{"already_ok-id", "already_ok-id"},
	}
	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
