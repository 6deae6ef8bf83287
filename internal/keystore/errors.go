// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package keystore

import (
	"errors"
	"fmt"
)

// Sentinel errors for parse failures. The typed errors below unwrap to these
// so callers can use errors.Is without caring about the payload.
var (
	// ErrUnparseableLine indicates a directive line without a key/value separator.
	ErrUnparseableLine = errors.New("unparseable line")
	// ErrUnknownEntry indicates an unknown directive while running in strict mode.
	ErrUnknownEntry = errors.New("unknown entry")
	// ErrInvalidInclude is reserved for Include expansion.
	ErrInvalidInclude = errors.New("invalid include")
)

// LineError carries the line that could not be split into key and value.
type LineError struct {
	Line string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnparseableLine, e.Line)
}

func (e *LineError) Unwrap() error { return ErrUnparseableLine }

// UnknownEntryError is returned by a strict parser for unrecognized directives.
type UnknownEntryError struct {
	Line  string
	Entry string
}

func (e *UnknownEntryError) Error() string {
	return fmt.Sprintf("%s %q in line %q", ErrUnknownEntry, e.Entry, e.Line)
}

func (e *UnknownEntryError) Unwrap() error { return ErrUnknownEntry }

// IncludeErrorKind classifies an InvalidIncludeError.
type IncludeErrorKind int

const (
	IncludePattern IncludeErrorKind = iota
	IncludeGlob
	IncludeIO
	// IncludeHostsInsideHostBlock: an included file declared Host blocks
	// where only host-scoped directives are allowed.
	IncludeHostsInsideHostBlock
)

func (k IncludeErrorKind) String() string {
	switch k {
	case IncludePattern:
		return "pattern"
	case IncludeGlob:
		return "glob"
	case IncludeIO:
		return "io"
	case IncludeHostsInsideHostBlock:
		return "hosts inside host block"
	default:
		return fmt.Sprintf("IncludeErrorKind(%d)", int(k))
	}
}

// InvalidIncludeError describes a failed Include directive. The parser does
// not expand Include yet, so nothing in this package returns it.
type InvalidIncludeError struct {
	Line string
	Kind IncludeErrorKind
	Err  error
}

func (e *InvalidIncludeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s) in line %q: %v", ErrInvalidInclude, e.Kind, e.Line, e.Err)
	}
	return fmt.Sprintf("%s (%s) in line %q", ErrInvalidInclude, e.Kind, e.Line)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *InvalidIncludeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidInclude}
	}
	return []error{ErrInvalidInclude, e.Err}
}
