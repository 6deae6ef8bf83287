// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks that every i18n.T() key used in the Go sources exists in
// the primary locale and that every other locale defines the same keys.
package main

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	projectRoot   = "."
)

// report is the outcome of one lint run.
type report struct {
	Undefined map[string][]string // key -> locale files lacking it (or used in code but absent from primary)
	Orphaned  []string            // primary keys never used in code
}

func (r report) failed() bool {
	return len(r.Undefined) > 0
}

func main() {
	r, err := lint(projectRoot, localesDir)
	if err != nil {
		fmt.Printf("i18n-linter: %v\n", err)
		os.Exit(1)
	}

	for _, key := range slices.Sorted(maps.Keys(r.Undefined)) {
		fmt.Printf("missing: %s (%s)\n", key, strings.Join(r.Undefined[key], ", "))
	}
	for _, key := range r.Orphaned {
		fmt.Printf("orphaned: %s\n", key)
	}
	if r.failed() {
		os.Exit(1)
	}
	fmt.Println("all translation files are consistent")
}

func lint(root, locales string) (report, error) {
	r := report{Undefined: map[string][]string{}}

	used, err := findUsedKeys(root)
	if err != nil {
		return r, fmt.Errorf("scan sources: %w", err)
	}
	primary, err := loadKeysFromLocale(filepath.Join(locales, primaryLocale))
	if err != nil {
		return r, fmt.Errorf("load primary locale: %w", err)
	}

	for key := range used {
		if _, ok := primary[key]; !ok {
			r.Undefined[key] = append(r.Undefined[key], primaryLocale)
		}
	}
	for key := range primary {
		if _, ok := used[key]; !ok {
			r.Orphaned = append(r.Orphaned, key)
		}
	}
	slices.Sort(r.Orphaned)

	files, err := filepath.Glob(filepath.Join(locales, "*.yaml"))
	if err != nil {
		return r, err
	}
	for _, file := range files {
		name := filepath.Base(file)
		if name == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			return r, fmt.Errorf("load %s: %w", name, err)
		}
		for key := range primary {
			if _, ok := keys[key]; !ok {
				r.Undefined[key] = append(r.Undefined[key], name)
			}
		}
	}
	return r, nil
}

var usedKeyRe = regexp.MustCompile(`i18n\.T\("([^"]+)"`)

// findUsedKeys scans non-test .go files under root for i18n.T("key") calls.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (d.Name() == "tools" || strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range usedKeyRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML converts a nested map into a flat map with dot-separated keys.
func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	case []any:
		for i, val := range v {
			flattenYAML(fmt.Sprintf("%s[%d]", prefix, i), val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
