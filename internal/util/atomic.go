// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile replaces path with data so readers see either the old
// contents or the new ones, never a partial file. Missing parent
// directories are created 0755.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWriteFileWithDir(path, data, perm, 0755)
}

// AtomicWriteFileWithDir is AtomicWriteFile with the permission used for
// parent directories it creates. Config files use 0700 here.
func AtomicWriteFileWithDir(path string, data []byte, filePerm, dirPerm os.FileMode) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("atomic write %s: create directory: %w", path, err)
	}

	// The temp file lives next to the target so the rename never crosses
	// filesystems.
	tmp, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	if err := writeSynced(tmp, data, filePerm); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	return nil
}

// writeSynced writes, fsyncs and closes f, then applies perm. f is closed
// on every path; Windows cannot rename an open file.
func writeSynced(f *os.File, data []byte, perm os.FileMode) error {
	_, werr := f.Write(data)
	if werr == nil {
		werr = f.Sync()
	}
	cerr := f.Close()
	switch {
	case werr != nil:
		return werr
	case cerr != nil:
		return cerr
	}
	return os.Chmod(f.Name(), perm)
}
