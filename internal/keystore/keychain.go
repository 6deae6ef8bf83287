// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package keystore

import (
	"maps"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// Entry is one parsed directive line.
type Entry struct {
	Directive Directive
	Value     string
}

// Keychain is the configuration of one host block: the patterns from its
// Host line and the directives set inside the block. A Host entry is never
// stored by the parser; the identity lives in the patterns.
type Keychain struct {
	patterns []string
	entries  map[Directive]string
}

// NewKeychain returns an empty keychain for the given patterns.
func NewKeychain(patterns ...string) *Keychain {
	return &Keychain{
		patterns: slices.Clone(patterns),
		entries:  make(map[Directive]string),
	}
}

// Update sets the entry, replacing any previous value of the same directive.
func (k *Keychain) Update(e Entry) {
	k.entries[e.Directive] = e.Value
}

// Set is shorthand for Update(Entry{d, value}).
func (k *Keychain) Set(d Directive, value string) {
	k.entries[d] = value
}

// Patterns returns the host patterns. The slice must not be modified.
func (k *Keychain) Patterns() []string {
	return k.patterns
}

// Get returns the value for d.
func (k *Keychain) Get(d Directive) (string, bool) {
	v, ok := k.entries[d]
	return v, ok
}

// IsEmpty reports whether no directive is set.
func (k *Keychain) IsEmpty() bool {
	return len(k.entries) == 0
}

// Len returns the number of directives set.
func (k *Keychain) Len() int {
	return len(k.entries)
}

// Entries returns the directives sorted by display name.
func (k *Keychain) Entries() []Entry {
	out := make([]Entry, 0, len(k.entries))
	for d, v := range k.entries {
		out = append(out, Entry{Directive: d, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Directive.String() < out[j].Directive.String()
	})
	return out
}

// Clone returns a deep copy.
func (k *Keychain) Clone() *Keychain {
	return &Keychain{
		patterns: slices.Clone(k.patterns),
		entries:  maps.Clone(k.entries),
	}
}

// ExtendIfNotContained copies every entry of other whose directive is not
// already set on k. Explicit values are never overwritten.
func (k *Keychain) ExtendIfNotContained(other *Keychain) {
	for d, v := range other.entries {
		if _, ok := k.entries[d]; !ok {
			k.entries[d] = v
		}
	}
}

func (k *Keychain) extendPatterns(other *Keychain) {
	k.patterns = append(k.patterns, other.patterns...)
}

func (k *Keychain) extendEntries(other *Keychain) {
	maps.Copy(k.entries, other.entries)
}

func (k *Keychain) sameEntries(other *Keychain) bool {
	return maps.Equal(k.entries, other.entries)
}

func (k *Keychain) expandsHostname() bool {
	for _, v := range k.entries {
		if strings.Contains(v, "%h") {
			return true
		}
	}
	return false
}

// PatternRule is the compiled form of a wildcard or negated host pattern.
type PatternRule struct {
	Source  string
	Regexp  *regexp.Regexp
	Negated bool
}

// Applies reports whether the rule selects host: a plain rule on a match,
// a negated rule on a non-match.
func (r PatternRule) Applies(host string) bool {
	return r.Regexp.MatchString(host) != r.Negated
}

// MatchingPatternRules compiles every pattern containing '*', '?' or '!'.
// Patterns without any of them contribute no rule.
func (k *Keychain) MatchingPatternRules() []PatternRule {
	var rules []PatternRule
	for _, p := range k.patterns {
		if !isRulePattern(p) {
			continue
		}
		rules = append(rules, compilePattern(p))
	}
	return rules
}

func compilePattern(pattern string) PatternRule {
	body, negated := strings.CutPrefix(pattern, "!")

	var b strings.Builder
	b.WriteByte('^')
	for _, r := range body {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')

	return PatternRule{
		Source:  pattern,
		Regexp:  regexp.MustCompile(b.String()),
		Negated: negated,
	}
}
