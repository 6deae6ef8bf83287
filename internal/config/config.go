// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads keychain settings from defaults, config files,
// KEYCHAIN_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/keychain/internal/keystore"
)

// Config is the application configuration.
type Config struct {
	Database Database                `mapstructure:"database" yaml:"database"`
	Language string                  `mapstructure:"language" yaml:"language"`
	Debug    bool                    `mapstructure:"debug" yaml:"debug"`
	Parser   Parser                  `mapstructure:"parser" yaml:"parser"`
	Resolve  keystore.ResolveOptions `mapstructure:"resolve" yaml:"resolve"`
	Output   Output                  `mapstructure:"output" yaml:"output"`
	Server   Server                  `mapstructure:"server" yaml:"server"`
	Watch    Watch                   `mapstructure:"watch" yaml:"watch"`
}

type Database struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

type Parser struct {
	// Strict rejects unknown directives instead of dropping them.
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

type Output struct {
	Format string `mapstructure:"format" yaml:"format"`
}

type Server struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// Reload re-resolves the served file when it changes.
	Reload bool `mapstructure:"reload" yaml:"reload"`
}

type Watch struct {
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// Defaults returns the built-in defaults keyed by viper path.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":          "sqlite",
		"database.dsn":           "./keychain.db",
		"language":               "en",
		"debug":                  false,
		"parser.strict":          false,
		"resolve.spread":         true,
		"resolve.apply_patterns": true,
		"resolve.merge":          true,
		"resolve.names":          true,
		"output.format":          "text",
		"server.addr":            "127.0.0.1:8022",
		"server.reload":          false,
		"watch.debounce_ms":      250,
	}
}

// FlagKeys maps command-line flag names to the config keys they override.
// Flags not listed here are never bound.
var FlagKeys = map[string]string{
	"debug":          "debug",
	"db-type":        "database.type",
	"db-dsn":         "database.dsn",
	"lang":           "language",
	"strict":         "parser.strict",
	"spread":         "resolve.spread",
	"apply-patterns": "resolve.apply_patterns",
	"merge":          "resolve.merge",
	"names":          "resolve.names",
	"format":         "output.format",
	"addr":           "server.addr",
	"reload":         "server.reload",
	"debounce":       "watch.debounce_ms",
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Keychain")
		default: // Linux, macOS, etc.
			configDir = "/etc/keychain"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "keychain")
	}

	return filepath.Join(configDir, "keychain.yaml"), nil
}

// LoadConfig builds a T from defaults, the first keychain.yaml found (or the
// explicit file when configFile is set), the environment and cmd's flags.
// A missing config file is not an error.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keychain")
	v.SetConfigType("yaml")

	// An explicit --config file has the highest precedence for file-based configuration.
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	mergeLocalConfig(v)

	v.SetEnvPrefix("keychain")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if cmd != nil {
		if err := bindFlags(v, cmd); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	flags := cmd.Flags()
	for name, key := range FlagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeLocalConfig merges a `.keychain.yaml` in the current directory over
// whatever was read before. A malformed file is ignored so startup does not break.
func mergeLocalConfig(v *viper.Viper) {
	const localConfigFile = ".keychain.yaml"
	if _, err := os.Stat(localConfigFile); err == nil {
		v.SetConfigFile(localConfigFile)
		_ = v.MergeInConfig()
		v.SetConfigFile("")
	}
}

// WriteConfigFile writes c as YAML to the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file may hold a database DSN with credentials.
	return os.WriteFile(path, data, 0o600)
}
