// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package watch reports changes to a single config file.
package watch // import "github.com/toeirei/keychain/internal/watch"

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/toeirei/keychain/internal/logging"
)

// DefaultDebounce is used when File is called with a non-positive debounce.
const DefaultDebounce = 250 * time.Millisecond

// File calls onChange after path was written, created, renamed or removed and
// no further event arrived for debounce. The parent directory is watched so
// editors that replace the file atomically are still seen. File blocks until
// ctx is done and then returns nil.
func File(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logging.Debugf("watch: watching %s (debounce %s)", abs, debounce)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case <-timerC:
			timerC = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warnf("watch: watcher error: %v", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldTrigger(evt, abs) {
				resetTimer()
			}
		}
	}
}

func shouldTrigger(evt fsnotify.Event, target string) bool {
	if filepath.Clean(evt.Name) != target {
		return false
	}
	return evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
