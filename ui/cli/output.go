// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/toeirei/keychain/internal/i18n"
	"github.com/toeirei/keychain/internal/keystore"
	"github.com/toeirei/keychain/internal/logging"
	"github.com/toeirei/keychain/internal/render"
	"golang.org/x/term"
)

// isTerminal is swapped out by tests.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// outputFormat returns the configured format. The table format falls back to
// text when w is not a terminal.
func outputFormat(w io.Writer) (render.Format, error) {
	f, err := render.ParseFormat(appConfig.Output.Format)
	if err != nil {
		return "", errors.New(i18n.T("cli.error_unknown_format", appConfig.Output.Format))
	}
	if f == render.FormatTable && !isTerminal(w) {
		logging.Debugf("stdout is not a terminal, rendering text instead of table")
		return render.FormatText, nil
	}
	return f, nil
}

func writeKeychains(w io.Writer, kcs keystore.Keychains) error {
	f, err := outputFormat(w)
	if err != nil {
		return err
	}
	return render.Render(w, kcs, f)
}

func newParser() *keystore.Parser {
	if appConfig.Parser.Strict {
		return keystore.NewParser(keystore.WithStrict())
	}
	return keystore.NewParser()
}

// parseFile parses path without resolving it.
func parseFile(path string) (keystore.Keychains, error) {
	kcs, err := newParser().ParseFile(path)
	if err != nil {
		return nil, errors.New(i18n.T("cli.error_parse", path, err))
	}
	return kcs, nil
}

// loadResolved parses path and runs the configured resolution steps.
func loadResolved(path string) (keystore.Keychains, error) {
	kcs, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	resolved := keystore.Resolve(kcs, appConfig.Resolve)
	logging.Debugf("resolved %s: %d records parsed, %d after resolution", path, len(kcs), len(resolved))
	return resolved, nil
}

// sourceName is the identifier stored with snapshots of path.
func sourceName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func findHost(kcs keystore.Keychains, host, path string) (*keystore.Keychain, error) {
	kc, ok := kcs.Find(host)
	if !ok {
		return nil, fmt.Errorf("%s", i18n.T("cli.host_not_found", host, path))
	}
	return kc, nil
}
