// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package keystore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/toeirei/keychain/internal/logging"
)

// Parser turns ssh_config style text into keychains.
type Parser struct {
	// IgnoreUnknownEntries drops unknown directives instead of failing.
	IgnoreUnknownEntries bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithStrict makes unknown directives a parse error.
func WithStrict() ParserOption {
	return func(p *Parser) { p.IgnoreUnknownEntries = false }
}

// NewParser returns a parser that tolerates unknown directives unless
// configured otherwise.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{IgnoreUnknownEntries: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile opens path and parses it.
func (p *Parser) ParseFile(path string) (Keychains, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ssh config: %w", err)
	}
	defer func() { _ = f.Close() }()
	return p.Parse(f)
}

// Parse reads r line by line and returns one keychain per host block in
// source order. Directives appearing before the first Host line are applied
// to every block that does not set them itself.
func (p *Parser) Parse(r io.Reader) (Keychains, error) {
	global, keychains, err := p.parseRaw(r)
	if err != nil {
		return nil, err
	}

	if !global.IsEmpty() {
		for _, kc := range keychains {
			kc.ExtendIfNotContained(global)
		}
	}
	return keychains, nil
}

func (p *Parser) parseRaw(r io.Reader) (*Keychain, Keychains, error) {
	global := NewKeychain()
	var keychains Keychains
	current := -1

	br := bufio.NewReader(r)
	for {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, nil, fmt.Errorf("read ssh config: %w", readErr)
		}
		if raw == "" && readErr != nil {
			break
		}

		line := stripComment(raw)
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			if readErr != nil {
				break
			}
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, nil, err
		}

		switch {
		case entry.Directive.IsUnknown():
			if !p.IgnoreUnknownEntries {
				return nil, nil, &UnknownEntryError{Line: strings.TrimSpace(line), Entry: entry.Directive.String()}
			}
			logging.Debugf("keystore: ignoring unknown directive %q", entry.Directive)
		case entry.Directive == DirectiveHost:
			keychains = append(keychains, NewKeychain(parsePatterns(entry.Value)...))
			current = len(keychains) - 1
		default:
			if current >= 0 {
				keychains[current].Update(entry)
			} else {
				global.Update(entry)
			}
		}

		if readErr != nil {
			break
		}
	}

	return global, keychains, nil
}

// stripComment drops everything from the first '#' unless the trimmed line
// starts with the "#!" escape, in which case every "#!" is removed instead.
func stripComment(line string) string {
	if strings.Contains(line, "#") && !strings.HasPrefix(strings.TrimSpace(line), "#!") {
		line, _, _ = strings.Cut(line, "#")
		return line
	}
	return strings.TrimSpace(strings.ReplaceAll(line, "#!", ""))
}

// parseLine splits a directive line at the first space, tab or '='. All of
// "Key Value", "Key=Value", "Key = Value", "Key= Value" and "Key =Value" give
// the same entry.
func parseLine(line string) (Entry, error) {
	trimmed := strings.TrimSpace(line)
	i := strings.IndexAny(trimmed, " \t=")
	if i < 0 {
		return Entry{}, &LineError{Line: trimmed}
	}

	key := strings.TrimRightFunc(trimmed[:i], unicode.IsSpace)
	value := strings.TrimLeftFunc(trimmed[i+1:], unicode.IsSpace)

	if strings.HasSuffix(key, "=") {
		key = strings.TrimRightFunc(strings.TrimRight(key, "="), unicode.IsSpace)
	}
	if strings.HasPrefix(value, "=") {
		value = strings.TrimLeftFunc(strings.TrimLeft(value, "="), unicode.IsSpace)
	}

	return Entry{Directive: DirectiveFromKey(key), Value: value}, nil
}

// parsePatterns splits a Host value into patterns. Double quotes group words
// into a single pattern; unquoted whitespace separates patterns.
func parsePatterns(value string) []string {
	var patterns []string
	var pattern strings.Builder
	quoted := false

	flush := func() {
		patterns = append(patterns, strings.TrimSpace(pattern.String()))
		pattern.Reset()
	}

	for _, c := range value {
		switch {
		case c == '"':
			if quoted {
				flush()
			}
			quoted = !quoted
		case unicode.IsSpace(c):
			if quoted {
				pattern.WriteRune(c)
			} else if pattern.Len() > 0 {
				flush()
			}
		default:
			pattern.WriteRune(c)
		}
	}

	if pattern.Len() > 0 {
		flush()
	}
	return patterns
}
