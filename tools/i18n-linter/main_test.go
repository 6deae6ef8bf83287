// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestFlattenYAMLAndLoadKeys(t *testing.T) {
	m := map[string]any{
		"top": map[string]any{
			"sub": "value",
			"arr": []any{"one", "two"},
		},
		"cli.short": "v",
	}
	keys := make(map[string]struct{})
	flattenYAML("", m, keys)
	for _, want := range []string{"top.sub", "top.arr[0]", "cli.short"} {
		if _, ok := keys[want]; !ok {
			t.Fatalf("expected %s in keys", want)
		}
	}

	dir := t.TempDir()
	p := filepath.Join(dir, "test.yaml")
	data, _ := yaml.Marshal(m)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	got, err := loadKeysFromLocale(p)
	if err != nil {
		t.Fatalf("loadKeysFromLocale failed: %v", err)
	}
	if _, ok := got["top.sub"]; !ok {
		t.Fatalf("expected loaded key top.sub")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLint(t *testing.T) {
	root := t.TempDir()
	locales := filepath.Join(root, "locales")
	writeFile(t, filepath.Join(root, "cmd", "a.go"), `package cmd
func f() {
	_ = i18n.T("cli.used")
	_ = i18n.T("cli.undefined")
}`)
	writeFile(t, filepath.Join(root, "tools", "skip.go"), `package tools
func g() { _ = i18n.T("tools.ignored") }`)
	writeFile(t, filepath.Join(locales, "en.yaml"), "cli.used: a\ncli.orphan: b\n")
	writeFile(t, filepath.Join(locales, "de.yaml"), "cli.used: a\n")

	r, err := lint(root, locales)
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if !r.failed() {
		t.Fatalf("expected lint to fail")
	}
	if got := r.Undefined["cli.undefined"]; len(got) != 1 || got[0] != "en.yaml" {
		t.Fatalf("expected cli.undefined missing from en.yaml, got %v", got)
	}
	if got := r.Undefined["cli.orphan"]; len(got) != 1 || got[0] != "de.yaml" {
		t.Fatalf("expected cli.orphan missing from de.yaml, got %v", got)
	}
	if _, ok := r.Undefined["tools.ignored"]; ok {
		t.Fatalf("tools directory must be skipped")
	}
	if len(r.Orphaned) != 1 || r.Orphaned[0] != "cli.orphan" {
		t.Fatalf("unexpected orphans: %v", r.Orphaned)
	}
}
