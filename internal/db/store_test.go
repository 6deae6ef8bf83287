// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/toeirei/keychain/internal/keystore"
)

// withTestStore opens an in-memory sqlite Store for the duration of the test.
func withTestStore(t *testing.T) Store {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	s, err := NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleKeychains() keystore.Keychains {
	a := keystore.NewKeychain("app", "app.lan")
	a.Set(keystore.DirectiveUser, "deploy")
	a.Set(keystore.DirectiveHost, "app")
	b := keystore.NewKeychain("db")
	b.Set(keystore.DirectivePort, "2222")
	return keystore.Keychains{a, b}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	s := withTestStore(t)
	ctx := context.Background()

	id, err := s.SaveSnapshot(ctx, "/etc/ssh/ssh_config", sampleKeychains())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected non-zero snapshot id")
	}

	snap, err := s.LoadSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.HostCount != 2 || len(snap.Hosts) != 2 {
		t.Fatalf("unexpected host count: %+v", snap)
	}
	if snap.Hosts[0].Name != "app" || snap.Hosts[0].Patterns[1] != "app.lan" {
		t.Fatalf("unexpected first host: %+v", snap.Hosts[0])
	}
	if snap.Hosts[1].Entries["Port"] != "2222" {
		t.Fatalf("unexpected second host: %+v", snap.Hosts[1])
	}
}

func TestListAndLatestSnapshot(t *testing.T) {
	s := withTestStore(t)
	ctx := context.Background()

	first, err := s.SaveSnapshot(ctx, "a", sampleKeychains())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := s.SaveSnapshot(ctx, "a", sampleKeychains()[:1])
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.SaveSnapshot(ctx, "b", nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}

	list, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 3 || list[2].ID != first {
		t.Fatalf("expected newest first, got %+v", list)
	}

	latest, err := s.LatestSnapshot(ctx, "a")
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest.ID != second || len(latest.Hosts) != 1 {
		t.Fatalf("unexpected latest snapshot: %+v", latest)
	}
}

func TestSnapshotNotFound(t *testing.T) {
	s := withTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadSnapshot(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.LatestSnapshot(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteSnapshot(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestDeleteSnapshot(t *testing.T) {
	s := withTestStore(t)
	ctx := context.Background()

	id, err := s.SaveSnapshot(ctx, "a", sampleKeychains())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteSnapshot(ctx, id); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if _, err := s.LoadSnapshot(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("snapshot still present: %v", err)
	}
}

func TestNewStoreFromDSN_UnsupportedType(t *testing.T) {
	if _, err := NewStoreFromDSN("oracle", "x"); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestMapDBError(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	for _, msg := range []string{"UNIQUE constraint failed", "Error 1062: Duplicate entry", "SQLSTATE 23505"} {
		if !errors.Is(MapDBError(errors.New(msg)), ErrDuplicate) {
			t.Fatalf("%q not mapped to ErrDuplicate", msg)
		}
	}
	other := errors.New("boom")
	if MapDBError(other) != other {
		t.Fatalf("unrelated errors must pass through")
	}
}

func TestNewStoreFromDSN_OpenError(t *testing.T) {
	prev := sqlOpenFunc
	sqlOpenFunc = func(string, string) (*sql.DB, error) { return nil, errors.New("open failed") }
	defer func() { sqlOpenFunc = prev }()

	if _, err := NewStoreFromDSN("sqlite", ":memory:"); err == nil || !strings.Contains(err.Error(), "open failed") {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
}

func TestNewStoreFromDSN_PostgresUsesPgxDriver(t *testing.T) {
	prev := sqlOpenFunc
	var gotDriver string
	sqlOpenFunc = func(driver, dsn string) (*sql.DB, error) {
		gotDriver = driver
		return nil, errors.New("stop")
	}
	defer func() { sqlOpenFunc = prev }()

	_, _ = NewStoreFromDSN("postgres", "postgres://localhost/x")
	if gotDriver != "pgx" {
		t.Fatalf("expected pgx driver, got %q", gotDriver)
	}
}
