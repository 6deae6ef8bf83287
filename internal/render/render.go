// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package render writes keychains as ssh_config text, JSON or YAML.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/toeirei/keychain/internal/keystore"
	"github.com/toeirei/keychain/internal/model"
)

// Format selects an output encoding.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ErrUnknownFormat is returned for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// ErrUnrepresentable is returned by Text for a pattern or value that
// ssh_config syntax cannot carry.
var ErrUnrepresentable = errors.New("not representable in ssh_config syntax")

// ParseFormat validates s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Render writes kcs to w in the given format.
func Render(w io.Writer, kcs keystore.Keychains, format Format) error {
	switch format {
	case FormatText:
		return Text(w, kcs)
	case FormatJSON, FormatYAML:
		return Encode(w, model.FromKeychains(kcs), format)
	case FormatTable:
		_, err := io.WriteString(w, Table(kcs)+"\n")
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Text writes kcs back in ssh_config syntax, blocks separated by blank lines.
// The output parses back to the same keychains; a keychain that cannot be
// written that way fails with ErrUnrepresentable before anything is written
// for it.
func Text(w io.Writer, kcs keystore.Keychains) error {
	for i, kc := range kcs {
		if err := checkRepresentable(kc); err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, Block(kc)); err != nil {
			return err
		}
	}
	return nil
}

// Block renders one keychain. The Host entry set by name resolution is
// written as a comment since the Host line already carries the patterns.
// Lines holding a '#' get the "#!" prefix so it is not read as a comment.
// Block never fails; patterns Text would reject are shown Go-quoted.
func Block(kc *keystore.Keychain) string {
	var b strings.Builder
	host := "Host"
	for _, p := range kc.Patterns() {
		host += " " + quotePattern(p)
	}
	b.WriteString(escapeComment(host))
	b.WriteByte('\n')
	if name, ok := kc.Get(keystore.DirectiveHost); ok {
		fmt.Fprintf(&b, "  # name: %s\n", name)
	}
	for _, e := range kc.Entries() {
		if e.Directive == keystore.DirectiveHost {
			continue
		}
		fmt.Fprintf(&b, "  %s\n", escapeComment(e.Directive.String()+" "+e.Value))
	}
	return b.String()
}

func quotePattern(p string) string {
	switch {
	case strings.Contains(p, `"`):
		return strconv.Quote(p)
	case p == "" || strings.ContainsAny(p, " \t"):
		return `"` + p + `"`
	}
	return p
}

func escapeComment(line string) string {
	if strings.Contains(line, "#") {
		return "#!" + line
	}
	return line
}

// checkRepresentable rejects text the parser would split or strip: quotes
// inside a pattern and the "#!" marker anywhere on a line.
func checkRepresentable(kc *keystore.Keychain) error {
	for _, p := range kc.Patterns() {
		if strings.Contains(p, `"`) || strings.Contains(p, "#!") {
			return fmt.Errorf("%w: pattern %q", ErrUnrepresentable, p)
		}
	}
	for _, e := range kc.Entries() {
		if e.Directive == keystore.DirectiveHost {
			continue
		}
		if strings.Contains(e.Value, "#!") {
			return fmt.Errorf("%w: %s value %q", ErrUnrepresentable, e.Directive, e.Value)
		}
	}
	return nil
}

// Encode writes v as indented JSON or as YAML.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
