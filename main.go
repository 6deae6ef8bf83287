// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Keychain.
//
// Usage:
//
//	go run . resolve ~/.ssh/config
//	./keychain [command] [flags]
//
// See --help for all commands.
package main

import (
	"os"

	"github.com/toeirei/keychain/internal/logging"
	"github.com/toeirei/keychain/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
