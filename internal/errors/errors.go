// Package errors provides error handling for the resolution frontend.
//
// It re-exports github.com/cockroachdb/errors and adds the two fatal
// outcomes a synthesis query can produce:
//
//   - Unimplemented: the routine is needed but the compiler cannot build it
//     yet (for example an initializer for a generic record).
//   - assertion failures: a compiler defect, such as a query that depends on
//     its own in-progress result.
//
// Neither is a user-facing diagnostic. Callers abort the compilation and
// report them.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// Hints and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf   = crdb.AssertionFailedf
	IsAssertionFailure = crdb.IsAssertionFailure
)

// Unimplemented reports a known compiler limitation. The feature string names
// the missing capability, e.g. "initializers on inheriting classes".
func Unimplemented(feature string) error {
	return crdb.UnimplementedError(crdb.IssueLink{Detail: feature}, "not yet implemented: "+feature)
}

// IsUnimplemented checks if err is or wraps an Unimplemented error.
func IsUnimplemented(err error) bool {
	return err != nil && crdb.HasUnimplementedError(err)
}

// IsFatal reports whether err must abort the compilation: either a known
// unimplemented feature or an internal assertion failure.
func IsFatal(err error) bool {
	return IsUnimplemented(err) || IsAssertionFailure(err)
}
