// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup reads and writes zstd-compressed JSON exports of resolved
// hosts.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/keychain/internal/keystore"
	"github.com/toeirei/keychain/internal/model"
)

// ErrUnsupportedVersion is returned when a backup was written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported backup version")

// New builds the backup payload for kcs.
func New(source string, kcs keystore.Keychains) *model.BackupData {
	return &model.BackupData{
		Version:   model.BackupVersion,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Hosts:     model.FromKeychains(kcs),
	}
}

// Write writes compressed JSON backup data to w.
func Write(w io.Writer, data *model.BackupData) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush zstd writer: %w", err)
	}
	return nil
}

// Read decodes a backup written by Write.
func Read(r io.Reader) (*model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if data.Version > model.BackupVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data.Version)
	}
	return &data, nil
}
