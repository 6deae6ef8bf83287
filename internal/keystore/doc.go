// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package keystore parses ssh_config style files into keychains (one per
// Host block) and resolves Host pattern inheritance into per-host
// configurations.
//
// A typical pipeline:
//
//	kcs, err := keystore.NewParser().ParseFile(path)
//	if err != nil {
//		return err
//	}
//	hosts := kcs.ApplyPatterns().MergeSameKeychains().ApplyNameToEmptyHost()
//
// Comment handling follows one unusual rule: a line whose trimmed text starts
// with "#!" is not a comment; every "#!" is removed and the remainder is
// parsed as a directive.
package keystore
