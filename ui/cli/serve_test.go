// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"testing"

	"github.com/toeirei/keychain/internal/config"
	"github.com/toeirei/keychain/internal/keystore"
	"github.com/toeirei/keychain/internal/server"
)

func TestReloadKeepsPreviousSetOnError(t *testing.T) {
	dir := isolate(t)
	prev := appConfig
	appConfig = config.Config{Parser: config.Parser{Strict: true}, Resolve: keystore.DefaultResolveOptions()}
	defer func() { appConfig = prev }()

	path := writeFixture(t, dir, fixtureConfig)
	src := server.NewSource(path, nil)

	reload(src, path)
	if got := len(src.Keychains()); got != 3 {
		t.Fatalf("expected 3 hosts after reload, got %d", got)
	}

	writeFixture(t, dir, "Host a\n  Frobnicate yes\n")
	reload(src, path)
	if got := len(src.Keychains()); got != 3 {
		t.Fatalf("failed reload replaced the served set: %d hosts", got)
	}

	writeFixture(t, dir, "Host a\n  Port 22\n")
	reload(src, path)
	if _, ok := src.Keychains().Find("a"); !ok {
		t.Fatalf("successful reload not applied")
	}
}

func TestServeCmd_WatchSettingsReachConfig(t *testing.T) {
	isolate(t)
	prev := appConfig
	defer func() { appConfig = prev }()

	tests := []struct {
		name   string
		env    string
		args   []string
		wantMs int
	}{
		{name: "flag", args: []string{"--debounce", "900", "--reload"}, wantMs: 900},
		{name: "env", env: "1200", wantMs: 1200},
		{name: "default", wantMs: 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("KEYCHAIN_WATCH_DEBOUNCE_MS", tt.env)
			}
			serve, _, err := NewRootCmd().Find([]string{"serve"})
			if err != nil {
				t.Fatalf("find serve: %v", err)
			}
			if err := serve.ParseFlags(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}
			if err := setupDefaultServices(serve, nil); err != nil {
				t.Fatalf("setup: %v", err)
			}
			if appConfig.Watch.DebounceMs != tt.wantMs {
				t.Fatalf("debounce_ms = %d, want %d", appConfig.Watch.DebounceMs, tt.wantMs)
			}
			if wantReload := len(tt.args) > 0; appConfig.Server.Reload != wantReload {
				t.Fatalf("server.reload = %v, want %v", appConfig.Server.Reload, wantReload)
			}
		})
	}
}
