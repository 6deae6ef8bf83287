package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	cfg "github.com/toeirei/keychain/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return tmp
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("missing config file must not be an error: %v", err)
	}
	if got.Database.Type != "sqlite" || got.Output.Format != "text" {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if !got.Resolve.ApplyPatterns || !got.Resolve.MergeSame {
		t.Fatalf("resolve defaults not applied: %+v", got.Resolve)
	}
	if got.Watch.DebounceMs != 250 {
		t.Fatalf("expected debounce 250, got %d", got.Watch.DebounceMs)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := isolate(t)
	yaml := "database:\n  type: postgres\n  dsn: postgresql://user@/db\nlanguage: de\nparser:\n  strict: true\nresolve:\n  merge: false\n"
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Database.Type != "postgres" {
		t.Fatalf("expected postgres, got %q", got.Database.Type)
	}
	if got.Language != "de" {
		t.Fatalf("expected de, got %q", got.Language)
	}
	if !got.Parser.Strict {
		t.Fatalf("expected strict parser")
	}
	if got.Resolve.MergeSame {
		t.Fatalf("expected merge disabled from file")
	}
	if !got.Resolve.Spread {
		t.Fatalf("unset keys must keep their defaults")
	}
}

func TestLoadConfig_MissingExplicitFileFails(t *testing.T) {
	tmp := isolate(t)
	file := filepath.Join(tmp, "missing.yaml")
	if _, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	isolate(t)
	t.Setenv("KEYCHAIN_OUTPUT_FORMAT", "json")
	t.Setenv("KEYCHAIN_LANGUAGE", "fr")

	cmd := &cobra.Command{}
	cmd.Flags().String("lang", "en", "language")
	cmd.Flags().Bool("strict", false, "strict")
	if err := cmd.Flags().Set("lang", "de"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := cmd.Flags().Set("strict", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Output.Format != "json" {
		t.Fatalf("expected json from env, got %q", got.Output.Format)
	}
	if got.Language != "de" {
		t.Fatalf("flag must override env, got %q", got.Language)
	}
	if !got.Parser.Strict {
		t.Fatalf("expected strict from flag")
	}
}

func TestLoadConfig_LocalDotFileMerged(t *testing.T) {
	tmp := isolate(t)
	if err := os.WriteFile(filepath.Join(tmp, ".keychain.yaml"), []byte("output:\n  format: yaml\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Output.Format != "yaml" {
		t.Fatalf("expected yaml from .keychain.yaml, got %q", got.Output.Format)
	}
}

func TestWriteConfigFile_CreatesFile(t *testing.T) {
	isolate(t)

	c := cfg.Config{}
	c.Database.Type = "sqlite"
	c.Database.Dsn = "./keychain.db"
	c.Language = "en"

	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected config file at %s, read error: %v", path, err)
	}
	if len(data) == 0 {
		t.Fatalf("config file is empty")
	}
}

func TestLoadConfig_UnmappedFlagDoesNotShadowSection(t *testing.T) {
	isolate(t)
	t.Setenv("KEYCHAIN_WATCH_DEBOUNCE_MS", "700")

	cmd := &cobra.Command{}
	cmd.Flags().Bool("watch", true, "unrelated switch")
	cmd.Flags().Bool("reload", false, "reload")
	if err := cmd.Flags().Set("watch", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := cmd.Flags().Set("reload", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Watch.DebounceMs != 700 {
		t.Fatalf("watch section lost: debounce_ms = %d", got.Watch.DebounceMs)
	}
	if !got.Server.Reload {
		t.Fatalf("expected --reload bound to server.reload")
	}
}
