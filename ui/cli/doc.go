// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the keychain command-line interface using Cobra.
// It loads configuration, parses and resolves ssh_config files and hands the
// result to the render, db, backup, server and tui packages.
package cli
