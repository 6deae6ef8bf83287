// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DriftClassification represents the severity level of detected configuration drift.
type DriftClassification string

const (
	// DriftCritical: hosts disappeared from the configuration.
	DriftCritical DriftClassification = "critical"

	// DriftWarning: settings of existing hosts changed.
	DriftWarning DriftClassification = "warning"

	// DriftInfo: only new hosts were added.
	DriftInfo DriftClassification = "info"
)

// HostChange describes the differences of one host present on both sides.
type HostChange struct {
	Key      string
	Added    map[string]string // directives only in the current set
	Removed  map[string]string // directives only in the baseline
	Modified map[string][2]string
	Patterns [2][]string // baseline and current patterns when they differ
}

// DriftAnalysis compares a baseline set of hosts with the current one.
type DriftAnalysis struct {
	Classification DriftClassification
	HasDrift       bool
	AddedHosts     []string
	RemovedHosts   []string
	ChangedHosts   []HostChange
}

// CompareHosts reports how current differs from baseline. Hosts are matched
// by HostRecord.Key; result slices are sorted by key.
func CompareHosts(baseline, current []HostRecord) DriftAnalysis {
	before := indexHosts(baseline)
	after := indexHosts(current)

	var d DriftAnalysis
	for _, key := range slices.Sorted(maps.Keys(after)) {
		old, ok := before[key]
		if !ok {
			d.AddedHosts = append(d.AddedHosts, key)
			continue
		}
		if c, changed := compareHost(key, old, after[key]); changed {
			d.ChangedHosts = append(d.ChangedHosts, c)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(before)) {
		if _, ok := after[key]; !ok {
			d.RemovedHosts = append(d.RemovedHosts, key)
		}
	}

	switch {
	case len(d.RemovedHosts) > 0:
		d.Classification = DriftCritical
	case len(d.ChangedHosts) > 0:
		d.Classification = DriftWarning
	case len(d.AddedHosts) > 0:
		d.Classification = DriftInfo
	}
	d.HasDrift = d.Classification != ""
	return d
}

func indexHosts(hosts []HostRecord) map[string]HostRecord {
	m := make(map[string]HostRecord, len(hosts))
	for _, h := range hosts {
		if _, dup := m[h.Key()]; !dup {
			m[h.Key()] = h
		}
	}
	return m
}

func compareHost(key string, old, cur HostRecord) (HostChange, bool) {
	c := HostChange{
		Key:      key,
		Added:    map[string]string{},
		Removed:  map[string]string{},
		Modified: map[string][2]string{},
	}
	for name, v := range cur.Entries {
		ov, ok := old.Entries[name]
		switch {
		case !ok:
			c.Added[name] = v
		case ov != v:
			c.Modified[name] = [2]string{ov, v}
		}
	}
	for name, v := range old.Entries {
		if _, ok := cur.Entries[name]; !ok {
			c.Removed[name] = v
		}
	}
	patternsChanged := !slices.Equal(old.Patterns, cur.Patterns)
	if patternsChanged {
		c.Patterns = [2][]string{old.Patterns, cur.Patterns}
	}
	changed := patternsChanged || len(c.Added) > 0 || len(c.Removed) > 0 || len(c.Modified) > 0
	return c, changed
}

// IsCritical returns true if the drift is classified as critical.
func (d *DriftAnalysis) IsCritical() bool {
	return d.Classification == DriftCritical
}

// IsWarning returns true if the drift is classified as a warning.
func (d *DriftAnalysis) IsWarning() bool {
	return d.Classification == DriftWarning
}

// Summary returns a human-readable summary of the drift analysis.
func (d *DriftAnalysis) Summary() string {
	if !d.HasDrift {
		return "No drift detected"
	}

	var parts []string
	if n := len(d.RemovedHosts); n > 0 {
		parts = append(parts, fmt.Sprintf("Removed hosts: %d.", n))
	}
	if n := len(d.ChangedHosts); n > 0 {
		parts = append(parts, fmt.Sprintf("Changed hosts: %d.", n))
	}
	if n := len(d.AddedHosts); n > 0 {
		parts = append(parts, fmt.Sprintf("Added hosts: %d.", n))
	}
	return string(d.Classification) + " drift: " + strings.Join(parts, " ")
}
