// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/docchat-tui/internal/transcript"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export converts entries to the target format and returns the content.
	Export(entries []*transcript.Entry) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md", ".html").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// Title heads the exported document.
	// Default: "Document chat"
	Title string

	// OutputDir is the directory where generated file names are placed.
	// Default: current working directory
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeTimestamps includes per-entry timestamps.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	// Default: "dark"
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		Title:             "Document chat",
		OutputDir:         ".",
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

func fillOptions(opts *Options) *Options {
	defaults := DefaultOptions()
	if opts == nil {
		return defaults
	}
	o := *opts
	if o.Title == "" {
		o.Title = defaults.Title
	}
	if o.OutputDir == "" {
		o.OutputDir = defaults.OutputDir
	}
	if o.Theme != "light" && o.Theme != "dark" {
		o.Theme = defaults.Theme
	}
	return &o
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ForPath picks an exporter from a file extension. Unknown extensions export HTML.
func ForPath(path string, opts *Options) Exporter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return NewMarkdownExporter(opts)
	case ".json":
		return NewJSONExporter(opts)
	default:
		return NewHTMLExporter(opts)
	}
}

// ExportToFile exports entries to a generated file name under opts.OutputDir.
// Returns the output file path.
func ExportToFile(entries []*transcript.Entry, exporter Exporter, opts *Options) (string, error) {
	opts = fillOptions(opts)
	filename := fmt.Sprintf("%s_%s%s",
		sanitizeFilename(opts.Title),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	return WriteFile(filepath.Join(opts.OutputDir, filename), entries, exporter, opts)
}

// WriteFile exports entries to path, replacing it atomically.
func WriteFile(path string, entries []*transcript.Entry, exporter Exporter, opts *Options) (string, error) {
	opts = fillOptions(opts)

	content, err := exporter.Export(entries)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(path); err != nil {
			log.Printf("EXPORT | path=%s open_failed=%v", path, err)
		}
	}

	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > 50 {
		runes = runes[:50]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "transcript"
	}
	return string(result)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// roleLabel names the author of an entry.
func roleLabel(e *transcript.Entry) string {
	return e.Role.DisplayName()
}
