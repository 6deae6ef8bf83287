// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/keychain/internal/i18n"
	"github.com/toeirei/keychain/internal/keystore"
	"github.com/toeirei/keychain/internal/logging"
	"github.com/toeirei/keychain/internal/tui"
	"github.com/toeirei/keychain/internal/watch"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <ssh_config>",
		Short: "Print the parsed records without resolving them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcs, err := parseFile(args[0])
			if err != nil {
				return err
			}
			return writeKeychains(cmd.OutOrStdout(), kcs)
		},
	}
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <ssh_config>",
		Short: "Resolve a config into one record per concrete host",
		Long: `Parses the file and runs the resolution steps in order: spread, apply
patterns, merge identical records and name unnamed records. Each step can be
switched off with its flag, e.g. --merge=false.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcs, err := loadResolved(args[0])
			if err != nil {
				return err
			}
			return writeKeychains(cmd.OutOrStdout(), kcs)
		},
	}
	addResolveFlags(cmd)
	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <ssh_config> <host>",
		Short: "Print the resolved record of one host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcs, err := loadResolved(args[0])
			if err != nil {
				return err
			}
			kc, err := findHost(kcs, args[1], args[0])
			if err != nil {
				return err
			}
			return writeKeychains(cmd.OutOrStdout(), keystore.Keychains{kc})
		},
	}
	addResolveFlags(cmd)
	return cmd
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse <ssh_config>",
		Short: "Browse the resolved hosts interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcs, err := loadResolved(args[0])
			if err != nil {
				return err
			}
			return tui.Browse(args[0], kcs)
		},
	}
	addResolveFlags(cmd)
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <ssh_config>",
		Short: "Print the resolved config again whenever the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			emit := func() {
				kcs, err := loadResolved(path)
				if err != nil {
					logging.Errorf("%s", i18n.T("cli.reload_failed", path, err))
					return
				}
				if err := writeKeychains(out, kcs); err != nil {
					logging.Errorf("%v", err)
				}
			}

			emit()
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.watching", path))

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
			defer stop()
			return watch.File(ctx, path, debounce(), func() {
				fmt.Fprintln(out)
				emit()
			})
		},
	}
	addResolveFlags(cmd)
	addWatchFlags(cmd)
	return cmd
}

func addWatchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("debounce", 250, "Milliseconds to wait for further changes before reloading")
}

func debounce() time.Duration {
	return time.Duration(appConfig.Watch.DebounceMs) * time.Millisecond
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
