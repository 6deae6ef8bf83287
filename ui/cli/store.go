// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/keychain/internal/backup"
	"github.com/toeirei/keychain/internal/db"
	"github.com/toeirei/keychain/internal/i18n"
	"github.com/toeirei/keychain/internal/model"
	"github.com/toeirei/keychain/internal/render"
)

// openStore is swapped out by tests.
var openStore = func() (db.Store, error) {
	s, err := db.NewStoreFromDSN(appConfig.Database.Type, appConfig.Database.Dsn)
	if err != nil {
		return nil, errors.New(i18n.T("cli.error_init_db", err))
	}
	return s, nil
}

func withStore(fn func(db.Store) error) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <ssh_config>",
		Short: "Store the resolved hosts as a database snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcs, err := loadResolved(args[0])
			if err != nil {
				return err
			}
			source := sourceName(args[0])
			return withStore(func(s db.Store) error {
				id, err := s.SaveSnapshot(cmd.Context(), source, kcs)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.import_done", id, len(kcs), source))
				return nil
			})
		},
	}
	addResolveFlags(cmd)
	return cmd
}

func newSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s db.Store) error {
				snaps, err := s.ListSnapshots(cmd.Context())
				if err != nil {
					return err
				}
				return writeSnapshots(cmd.OutOrStdout(), snaps)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print the hosts of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(s db.Store) error {
				snap, err := s.LoadSnapshot(cmd.Context(), id)
				if err != nil {
					return err
				}
				return writeKeychains(cmd.OutOrStdout(), model.ToKeychains(snap.Hosts))
			})
		},
	}, &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(s db.Store) error {
				if err := s.DeleteSnapshot(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.snapshot_deleted", id))
				return nil
			})
		},
	})
	return cmd
}

func writeSnapshots(w io.Writer, snaps []model.Snapshot) error {
	f, err := outputFormat(w)
	if err != nil {
		return err
	}
	if f == render.FormatJSON || f == render.FormatYAML {
		return render.Encode(w, snaps, f)
	}
	if len(snaps) == 0 {
		_, err := fmt.Fprintln(w, i18n.T("cli.no_snapshots"))
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHOSTS\tCREATED\tSOURCE")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", s.ID, s.HostCount, s.CreatedAt.Local().Format(time.DateTime), s.Source)
	}
	return tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snapshot id %q", s)
	}
	return id, nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [ssh_config]",
		Short: "Write a zstd-compressed backup of resolved hosts",
		Long: `Exports either the resolved hosts of a config file or, with --snapshot, a
stored snapshot. The backup is zstd-compressed JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			snapID, _ := cmd.Flags().GetInt64("snapshot")

			var data *model.BackupData
			switch {
			case snapID > 0:
				err := withStore(func(s db.Store) error {
					snap, err := s.LoadSnapshot(cmd.Context(), snapID)
					if err != nil {
						return err
					}
					data = backup.New(snap.Source, model.ToKeychains(snap.Hosts))
					return nil
				})
				if err != nil {
					return err
				}
			case len(args) == 1:
				kcs, err := loadResolved(args[0])
				if err != nil {
					return err
				}
				data = backup.New(sourceName(args[0]), kcs)
			default:
				return errors.New("either a config file or --snapshot is required")
			}

			f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := backup.Write(f, data); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.export_done", len(data.Hosts), out))
			return nil
		},
	}
	addResolveFlags(cmd)
	cmd.Flags().String("out", "keychain-backup.json.zst", "Backup file to write")
	cmd.Flags().Int64("snapshot", 0, "Export a stored snapshot instead of a config file")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup.zst>",
		Short: "Store the hosts of a backup as a new snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			data, err := backup.Read(f)
			if err != nil {
				return err
			}
			return withStore(func(s db.Store) error {
				id, err := s.SaveSnapshot(cmd.Context(), data.Source, model.ToKeychains(data.Hosts))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.restore_done", id, len(data.Hosts)))
				return nil
			})
		},
	}
}

func newDriftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drift <ssh_config>",
		Short: "Compare a config with its latest stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcs, err := loadResolved(args[0])
			if err != nil {
				return err
			}
			source := sourceName(args[0])
			return withStore(func(s db.Store) error {
				snap, err := s.LatestSnapshot(cmd.Context(), source)
				if err != nil {
					return err
				}
				d := model.CompareHosts(snap.Hosts, model.FromKeychains(kcs))
				writeDrift(cmd.OutOrStdout(), snap.ID, d)
				failOn, _ := cmd.Flags().GetBool("fail")
				if failOn && d.HasDrift {
					return errors.New(d.Summary())
				}
				return nil
			})
		},
	}
	addResolveFlags(cmd)
	cmd.Flags().Bool("fail", false, "Exit non-zero when drift is found")
	return cmd
}

func writeDrift(w io.Writer, snapshotID int64, d model.DriftAnalysis) {
	fmt.Fprintf(w, "snapshot %d: %s\n", snapshotID, d.Summary())
	for _, h := range d.RemovedHosts {
		fmt.Fprintf(w, "- %s\n", h)
	}
	for _, h := range d.AddedHosts {
		fmt.Fprintf(w, "+ %s\n", h)
	}
	for _, c := range d.ChangedHosts {
		fmt.Fprintf(w, "~ %s\n", c.Key)
		if c.Patterns[0] != nil || c.Patterns[1] != nil {
			fmt.Fprintf(w, "    patterns %s -> %s\n", strings.Join(c.Patterns[0], " "), strings.Join(c.Patterns[1], " "))
		}
		for _, k := range slices.Sorted(maps.Keys(c.Removed)) {
			fmt.Fprintf(w, "    - %s %s\n", k, c.Removed[k])
		}
		for _, k := range slices.Sorted(maps.Keys(c.Added)) {
			fmt.Fprintf(w, "    + %s %s\n", k, c.Added[k])
		}
		for _, k := range slices.Sorted(maps.Keys(c.Modified)) {
			fmt.Fprintf(w, "    ~ %s %s -> %s\n", k, c.Modified[k][0], c.Modified[k][1])
		}
	}
}
