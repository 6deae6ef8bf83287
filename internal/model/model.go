// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the serializable shapes of resolved keychains shared
// by rendering, persistence, backups and the HTTP API.
package model // import "github.com/toeirei/keychain/internal/model"

import (
	"maps"
	"slices"
	"time"

	"github.com/toeirei/keychain/internal/keystore"
)

// HostRecord is the wire form of one keychain. Name holds the Host entry set
// by name resolution and is empty for unnamed keychains; Entries never
// contains the Host directive.
type HostRecord struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Patterns []string          `json:"patterns" yaml:"patterns"`
	Entries  map[string]string `json:"entries" yaml:"entries"`
}

// Key identifies the record for lookups and drift comparison: the name when
// set, else the first pattern.
func (h HostRecord) Key() string {
	if h.Name != "" {
		return h.Name
	}
	if len(h.Patterns) > 0 {
		return h.Patterns[0]
	}
	return ""
}

// Snapshot is a stored, resolved set of hosts.
type Snapshot struct {
	ID        int64        `json:"id" yaml:"id"`
	Source    string       `json:"source" yaml:"source"`
	HostCount int          `json:"host_count" yaml:"host_count"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Hosts     []HostRecord `json:"hosts,omitempty" yaml:"hosts,omitempty"`
}

// BackupData is the payload of a compressed export.
type BackupData struct {
	Version   int          `json:"version"`
	Source    string       `json:"source"`
	CreatedAt time.Time    `json:"created_at"`
	Hosts     []HostRecord `json:"hosts"`
}

// BackupVersion is written into every BackupData.
const BackupVersion = 1

// FromKeychain converts kc to its wire form.
func FromKeychain(kc *keystore.Keychain) HostRecord {
	rec := HostRecord{
		Patterns: slices.Clone(kc.Patterns()),
		Entries:  make(map[string]string, kc.Len()),
	}
	for _, e := range kc.Entries() {
		if e.Directive == keystore.DirectiveHost {
			rec.Name = e.Value
			continue
		}
		rec.Entries[e.Directive.String()] = e.Value
	}
	return rec
}

// FromKeychains converts every keychain, keeping order.
func FromKeychains(kcs keystore.Keychains) []HostRecord {
	out := make([]HostRecord, 0, len(kcs))
	for _, kc := range kcs {
		out = append(out, FromKeychain(kc))
	}
	return out
}

// ToKeychain rebuilds a keychain. Entry names go through
// keystore.DirectiveFromKey, so unknown directives stay unknown.
func (h HostRecord) ToKeychain() *keystore.Keychain {
	kc := keystore.NewKeychain(h.Patterns...)
	for _, name := range slices.Sorted(maps.Keys(h.Entries)) {
		kc.Set(keystore.DirectiveFromKey(name), h.Entries[name])
	}
	if h.Name != "" {
		kc.Set(keystore.DirectiveHost, h.Name)
	}
	return kc
}

// ToKeychains rebuilds every record, keeping order.
func ToKeychains(hosts []HostRecord) keystore.Keychains {
	out := make(keystore.Keychains, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, h.ToKeychain())
	}
	return out
}
