// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/toeirei/keychain/buildvars"
	"github.com/toeirei/keychain/internal/config"
	"github.com/toeirei/keychain/internal/i18n"
	"github.com/toeirei/keychain/internal/logging"
)

// appConfig is filled by setupDefaultServices before any command runs.
var appConfig config.Config

func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), configPath)
	if err != nil {
		return errors.New(i18n.T("cli.error_load_config", err))
	}

	// Empty values in a config file fall back to the defaults.
	defaults := config.Defaults()
	if cfg.Database.Type == "" {
		cfg.Database.Type = defaults["database.type"].(string)
	}
	if cfg.Database.Dsn == "" {
		cfg.Database.Dsn = defaults["database.dsn"].(string)
	}
	if cfg.Language == "" {
		cfg.Language = defaults["language"].(string)
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = defaults["output.format"].(string)
	}

	appConfig = cfg
	i18n.Init(cfg.Language)
	logging.SetDebug(cfg.Debug)
	logging.Debugf("config loaded: db=%s format=%s resolve=%+v", cfg.Database.Type, cfg.Output.Format, cfg.Resolve)
	return nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command with every subcommand attached. Each
// call builds fresh command instances so tests can run them in isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keychain",
		Short: i18n.T("cli.short"),
		Long: `Keychain reads OpenSSH client configuration files and resolves them into
one flat record per concrete host: wildcard blocks are applied to the hosts
they match, identical records are merged and every record gets a name.

Resolved sets can be printed, browsed, served over HTTP, stored as database
snapshots and exported as compressed backups.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupDefaultServices,
		Version:           compositeVersion(resolveBuildVersion(nil)),
	}

	defaults := config.Defaults()
	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default is keychain.yaml in the user config dir)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("lang", defaults["language"].(string), `Message language ("en", "de")`)
	pf.String("db-type", defaults["database.type"].(string), "Database type (sqlite, postgres, mysql)")
	pf.String("db-dsn", defaults["database.dsn"].(string), "Database connection string (DSN)")
	pf.StringP("format", "o", defaults["output.format"].(string), "Output format (text, json, yaml, table)")
	pf.Bool("strict", false, "Reject unknown directives instead of dropping them")

	cmd.AddCommand(
		newParseCmd(),
		newResolveCmd(),
		newShowCmd(),
		newBrowseCmd(),
		newWatchCmd(),
		newServeCmd(),
		newImportCmd(),
		newSnapshotsCmd(),
		newExportCmd(),
		newRestoreCmd(),
		newDriftCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// addResolveFlags registers the switches for the individual resolution steps.
func addResolveFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("spread", true, "Split multi-pattern blocks into one record per pattern")
	f.Bool("apply-patterns", true, "Apply wildcard and negated blocks to matching hosts")
	f.Bool("merge", true, "Merge records with identical settings")
	f.Bool("names", true, "Name unnamed records after their first pattern")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

func compositeVersion(v, c, d string) string {
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

// resolveBuildVersion prefers linker-injected values and falls back to the
// module and VCS information embedded by the Go toolchain.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	versionOut = buildvars.VersionOrDefault("dev")
	commitOut = buildvars.GitCommit
	if commitOut == "" {
		commitOut = "dev"
	}
	dateOut = buildvars.BuildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}
	if info == nil {
		return versionOut, commitOut, dateOut
	}

	if versionOut == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		versionOut = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if s.Value != "" && commitOut == "dev" {
				commitOut = s.Value
			}
		case "vcs.time":
			if s.Value != "" && dateOut == "" {
				dateOut = s.Value
			}
		}
	}
	return versionOut, commitOut, dateOut
}
