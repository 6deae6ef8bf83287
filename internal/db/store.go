// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/toeirei/keychain/internal/keystore"
	"github.com/toeirei/keychain/internal/model"
	"github.com/uptrace/bun"
)

// Store persists resolved host snapshots.
type Store interface {
	SaveSnapshot(ctx context.Context, source string, kcs keystore.Keychains) (int64, error)
	ListSnapshots(ctx context.Context) ([]model.Snapshot, error)
	LoadSnapshot(ctx context.Context, id int64) (*model.Snapshot, error)
	LatestSnapshot(ctx context.Context, source string) (*model.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id int64) error
	Close() error
}

type snapshotRow struct {
	bun.BaseModel `bun:"table:snapshots,alias:s"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Source    string    `bun:"source,notnull"`
	HostCount int       `bun:"host_count,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type snapshotHostRow struct {
	bun.BaseModel `bun:"table:snapshot_hosts,alias:sh"`

	ID         int64  `bun:"id,pk,autoincrement"`
	SnapshotID int64  `bun:"snapshot_id,notnull"`
	Position   int    `bun:"position,notnull"`
	Name       string `bun:"name"`
	Patterns   string `bun:"patterns,type:text,notnull"`
	Entries    string `bun:"entries,type:text,notnull"`
}

// BunStore implements Store on top of bun.
type BunStore struct {
	bun    *bun.DB
	dbType string
}

// SaveSnapshot stores kcs in one transaction and returns the snapshot ID.
func (s *BunStore) SaveSnapshot(ctx context.Context, source string, kcs keystore.Keychains) (int64, error) {
	hosts := model.FromKeychains(kcs)
	snap := &snapshotRow{Source: source, HostCount: len(hosts), CreatedAt: time.Now().UTC()}

	err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(snap).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		if len(hosts) == 0 {
			return nil
		}
		rows := make([]snapshotHostRow, 0, len(hosts))
		for i, h := range hosts {
			row, err := toHostRow(snap.ID, i, h)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	dbLogf("db: saved snapshot %d (%d hosts from %s)", snap.ID, len(hosts), source)
	return snap.ID, nil
}

// ListSnapshots returns snapshot headers, newest first.
func (s *BunStore) ListSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	var rows []snapshotRow
	if err := s.bun.NewSelect().Model(&rows).Order("id DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out := make([]model.Snapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// LoadSnapshot returns the snapshot with its hosts in stored order.
func (s *BunStore) LoadSnapshot(ctx context.Context, id int64) (*model.Snapshot, error) {
	var row snapshotRow
	err := s.bun.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %d: %w", id, err)
	}
	return s.withHosts(ctx, row)
}

// LatestSnapshot returns the newest snapshot stored for source.
func (s *BunStore) LatestSnapshot(ctx context.Context, source string) (*model.Snapshot, error) {
	var row snapshotRow
	err := s.bun.NewSelect().Model(&row).Where("source = ?", source).Order("id DESC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: source %s", ErrNotFound, source)
	}
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}
	return s.withHosts(ctx, row)
}

// DeleteSnapshot removes a snapshot and its hosts.
func (s *BunStore) DeleteSnapshot(ctx context.Context, id int64) error {
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*snapshotHostRow)(nil)).Where("snapshot_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*snapshotRow)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil
	})
}

// Close releases the underlying connection pool.
func (s *BunStore) Close() error {
	return s.bun.Close()
}

func (s *BunStore) withHosts(ctx context.Context, row snapshotRow) (*model.Snapshot, error) {
	var rows []snapshotHostRow
	if err := s.bun.NewSelect().Model(&rows).Where("snapshot_id = ?", row.ID).Order("position ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load hosts of snapshot %d: %w", row.ID, err)
	}
	snap := row.toModel()
	snap.Hosts = make([]model.HostRecord, 0, len(rows))
	for _, r := range rows {
		h, err := r.toModel()
		if err != nil {
			return nil, fmt.Errorf("decode host %d of snapshot %d: %w", r.Position, row.ID, err)
		}
		snap.Hosts = append(snap.Hosts, h)
	}
	return &snap, nil
}

func (r snapshotRow) toModel() model.Snapshot {
	return model.Snapshot{ID: r.ID, Source: r.Source, HostCount: r.HostCount, CreatedAt: r.CreatedAt}
}

func toHostRow(snapshotID int64, position int, h model.HostRecord) (snapshotHostRow, error) {
	patterns, err := json.Marshal(h.Patterns)
	if err != nil {
		return snapshotHostRow{}, err
	}
	entries, err := json.Marshal(h.Entries)
	if err != nil {
		return snapshotHostRow{}, err
	}
	return snapshotHostRow{
		SnapshotID: snapshotID,
		Position:   position,
		Name:       h.Name,
		Patterns:   string(patterns),
		Entries:    string(entries),
	}, nil
}

func (r snapshotHostRow) toModel() (model.HostRecord, error) {
	h := model.HostRecord{Name: r.Name}
	if err := json.Unmarshal([]byte(r.Patterns), &h.Patterns); err != nil {
		return h, err
	}
	if err := json.Unmarshal([]byte(r.Entries), &h.Entries); err != nil {
		return h, err
	}
	return h, nil
}
