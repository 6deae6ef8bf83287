// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package keystore

import (
	"slices"
	"strings"
)

// Keychains is an ordered collection of host blocks. The transformations
// below never modify their receiver; each returns freshly cloned keychains.
type Keychains []*Keychain

// Clone returns a deep copy of every keychain.
func (kcs Keychains) Clone() Keychains {
	out := make(Keychains, len(kcs))
	for i, kc := range kcs {
		out[i] = kc.Clone()
	}
	return out
}

// Spread emits one keychain per pattern, preserving block order and pattern
// order within a block. Keychains without patterns are passed through.
func (kcs Keychains) Spread() Keychains {
	out := make(Keychains, 0, len(kcs))
	for _, kc := range kcs {
		if len(kc.patterns) == 0 {
			out = append(out, kc.Clone())
			continue
		}
		for _, p := range kc.patterns {
			c := kc.Clone()
			c.patterns = []string{p}
			out = append(out, c)
		}
	}
	return out
}

// ApplyPatterns spreads the concrete patterns, copies the entries of every
// wildcard or negated host block into each concrete host it applies to
// (without overwriting explicit values) and drops the wildcard patterns.
//
// A block applies to a host when none of its negated patterns match and,
// if it has plain wildcard patterns, at least one of those matches. Earlier
// blocks take precedence over later ones.
//
// Calling MergeSameKeychains afterwards folds hosts that ended up identical.
func (kcs Keychains) ApplyPatterns() Keychains {
	type patternBlock struct {
		source *Keychain
		rules  []PatternRule
	}

	var blocks []patternBlock
	out := make(Keychains, 0, len(kcs))
	for _, kc := range kcs {
		if len(kc.patterns) == 0 {
			out = append(out, kc.Clone())
			continue
		}
		if rules := kc.MatchingPatternRules(); len(rules) > 0 {
			blocks = append(blocks, patternBlock{source: kc, rules: rules})
		}
		for _, p := range kc.patterns {
			if isRulePattern(p) {
				continue
			}
			c := kc.Clone()
			c.patterns = []string{p}
			out = append(out, c)
		}
	}

	for _, b := range blocks {
		for _, target := range out {
			if len(target.patterns) == 0 {
				continue
			}
			if rulesApply(b.rules, target.patterns[0]) {
				target.ExtendIfNotContained(b.source)
			}
		}
	}
	return out
}

func isRulePattern(p string) bool {
	return strings.ContainsAny(p, "*?!")
}

// rulesApply evaluates one block's rules against host. A matching negated
// rule vetoes the block.
func rulesApply(rules []PatternRule, host string) bool {
	positive, matched := false, false
	for _, r := range rules {
		if r.Negated {
			if !r.Applies(host) {
				return false
			}
			continue
		}
		positive = true
		if r.Applies(host) {
			matched = true
		}
	}
	return matched || !positive
}

// MergeSameKeychains folds keychains with identical entries into the
// earliest such keychain, concatenating patterns. Keychains using the %h
// hostname token are never merged since each host expands it differently.
func (kcs Keychains) MergeSameKeychains() Keychains {
	out := kcs.Clone()

	for i := len(out) - 1; i >= 0; i-- {
		current := out[i]
		for j := i - 1; j >= 0; j-- {
			target := out[j]
			if !current.sameEntries(target) {
				continue
			}
			if current.expandsHostname() {
				continue
			}
			target.extendPatterns(current)
			target.extendEntries(current)
			out = slices.Delete(out, i, i+1)
			break
		}
	}
	return out
}

// ApplyNameToEmptyHost gives every keychain without a Host entry one named
// after its first pattern.
func (kcs Keychains) ApplyNameToEmptyHost() Keychains {
	out := kcs.Clone()
	for _, kc := range out {
		if _, ok := kc.Get(DirectiveHost); ok || len(kc.patterns) == 0 {
			continue
		}
		kc.Set(DirectiveHost, kc.patterns[0])
	}
	return out
}

// Find returns the first keychain listing host among its patterns.
func (kcs Keychains) Find(host string) (*Keychain, bool) {
	for _, kc := range kcs {
		if slices.Contains(kc.patterns, host) {
			return kc, true
		}
	}
	return nil, false
}

// ResolveOptions selects the transformations run by Resolve.
type ResolveOptions struct {
	Spread        bool `mapstructure:"spread" yaml:"spread"`
	ApplyPatterns bool `mapstructure:"apply_patterns" yaml:"apply_patterns"`
	MergeSame     bool `mapstructure:"merge" yaml:"merge"`
	ApplyNames    bool `mapstructure:"names" yaml:"names"`
}

// DefaultResolveOptions enables the full pipeline.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{Spread: true, ApplyPatterns: true, MergeSame: true, ApplyNames: true}
}

// Resolve runs the selected transformations in the order spread, apply
// patterns, merge, name. ApplyPatterns spreads on its own and needs the
// original blocks to evaluate negations, so Spread only runs by itself when
// patterns are not applied.
func Resolve(kcs Keychains, opts ResolveOptions) Keychains {
	out := kcs.Clone()
	switch {
	case opts.ApplyPatterns:
		out = out.ApplyPatterns()
	case opts.Spread:
		out = out.Spread()
	}
	if opts.MergeSame {
		out = out.MergeSameKeychains()
	}
	if opts.ApplyNames {
		out = out.ApplyNameToEmptyHost()
	}
	return out
}
