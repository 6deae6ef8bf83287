// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package server

import (
	"sync"
	"time"

	"github.com/toeirei/keychain/internal/keystore"
)

// Source holds the latest resolved keychains. It is safe for concurrent use;
// the watcher swaps the set while handlers read it.
type Source struct {
	mu       sync.RWMutex
	path     string
	kcs      keystore.Keychains
	loadedAt time.Time
}

// NewSource returns a Source serving kcs, read from path.
func NewSource(path string, kcs keystore.Keychains) *Source {
	return &Source{path: path, kcs: kcs, loadedAt: time.Now().UTC()}
}

// Set replaces the served set.
func (s *Source) Set(kcs keystore.Keychains) {
	s.mu.Lock()
	s.kcs = kcs
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()
}

// Keychains returns the served set. Callers must not mutate it.
func (s *Source) Keychains() keystore.Keychains {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kcs
}

// Path returns the file the set was read from.
func (s *Source) Path() string {
	return s.path
}

// LoadedAt returns when the set was last replaced.
func (s *Source) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
