// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxAttachmentSize bounds files staged for upload.
const MaxAttachmentSize = 64 << 20

// Attachment is a file staged to be uploaded with the next submission.
type Attachment struct {
	DisplayName string
	Data        []byte
}

// LoadAttachment reads path into an attachment named after its base name.
func LoadAttachment(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot attach %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot attach %s: is a directory", path)
	}
	if info.Size() > MaxAttachmentSize {
		return nil, fmt.Errorf("cannot attach %s: file is larger than %d MB", path, MaxAttachmentSize>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot attach %s: %w", path, err)
	}
	return &Attachment{DisplayName: filepath.Base(path), Data: data}, nil
}

// Stem returns the display name without its extension.
func (a *Attachment) Stem() string {
	return strings.TrimSuffix(a.DisplayName, filepath.Ext(a.DisplayName))
}

// Size returns the attachment size in bytes.
func (a *Attachment) Size() int {
	return len(a.Data)
}
