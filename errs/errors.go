// Package errs defines the sentinel errors returned by caplog packages.
//
// Call sites wrap these values with additional context (entry name, description, path),
// so callers should test for them with errors.Is:
//
//	if errors.Is(err, errs.ErrDuplicateName) {
//	    // handle duplicate
//	}
package errs

import "errors"

// Schema declaration errors.
var (
	// ErrInvalidName is returned when an entry or log name is empty, does not start with a
	// letter, or contains characters other than letters, digits and underscore.
	ErrInvalidName = errors.New("invalid name")
	// ErrDuplicateName is returned when two sibling entries, or two logs registered with the
	// same manager, share a name.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrLayoutMismatch is returned when the declared fields of a record do not add up to the
	// byte size of the host record, usually because of padding or an outdated declaration.
	ErrLayoutMismatch = errors.New("record layout mismatch")
	// ErrInvalidSpan is returned when an entry would reference no memory (nil pointer, empty
	// slice or zero-sized element type).
	ErrInvalidSpan = errors.New("invalid memory span")
	// ErrNilEntry is returned when a nil entry is passed as a child or log root.
	ErrNilEntry = errors.New("nil entry")
)

// Configuration errors.
var (
	ErrInvalidRowEncoding = errors.New("invalid row encoding")
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrInvalidDuration    = errors.New("invalid log duration")
	ErrInvalidBufferSize  = errors.New("invalid buffer size")
	ErrNilLog             = errors.New("nil log")
)

// Runtime and file errors.
var (
	// ErrIO wraps directory and file creation, open, write and close failures.
	ErrIO = errors.New("i/o failure")
	// ErrEmptyDirectory is returned when a log is started without a target directory.
	ErrEmptyDirectory = errors.New("empty directory")
	// ErrInvalidHeader is returned when a capture file header cannot be parsed.
	ErrInvalidHeader = errors.New("invalid capture header")
	// ErrTruncatedRow is returned when a capture file ends in the middle of a row.
	ErrTruncatedRow = errors.New("truncated row")
	// ErrCorruptedRow is returned when an encoded row cannot describe a row of the declared
	// size, such as a DIFF1 mask with bits set past the end of the row.
	ErrCorruptedRow = errors.New("corrupted row")
)
