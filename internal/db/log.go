// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "github.com/toeirei/keychain/internal/logging"

func dbLogf(format string, v ...any) {
	logging.Debugf(format, v...)
}
