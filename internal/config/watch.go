// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// DefaultDebounce collapses the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc receives the reloaded configuration, or the error that kept
// it from loading. The previous configuration stays in effect on error.
type ReloadFunc func(cfg *Config, err error)

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange ReloadFunc

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	done    chan struct{}
}

// Watch starts watching path. The parent directory is watched so that
// editors which replace the file through a rename are still seen.
func Watch(path string, debounce time.Duration, onChange ReloadFunc) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching. Pending reloads are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("CONFIG | watch_error=%v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	if _, err := os.Stat(w.path); err != nil {
		// Renamed away; the replacement arrives as a Create.
		return
	}

	cfg, err := LoadFromPath(w.path)
	if err != nil {
		log.Printf("CONFIG | path=%s reload_failed=%v", w.path, err)
	} else {
		log.Printf("CONFIG | path=%s reloaded mode=%s top_k=%d", w.path, cfg.Query.Mode, cfg.Query.TopK)
		SetGlobal(cfg)
	}
	if w.onChange != nil {
		w.onChange(cfg, err)
	}
}
