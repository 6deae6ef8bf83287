// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db stores resolved host snapshots in SQLite, PostgreSQL or MySQL
// through a long-lived *bun.DB.
//
// Testing notes
//   - Prefer `db.NewStoreFromDSN("sqlite", "file:<name>?mode=memory&cache=shared")` in
//     tests that need real DB semantics.
package db
