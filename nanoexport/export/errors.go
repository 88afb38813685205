package export

import (
	"errors"
	"fmt"
)

// Success is the marker returned by a completed export
const Success = "success"

// Kind identifies the class of an export failure
type Kind int

const (
	// KindFileSystem covers a missing or non-directory destination and archive creation failures
	KindFileSystem Kind = iota + 1
	// KindUnsupportedExportType is returned for an export type outside the registry
	KindUnsupportedExportType
	// KindMissingRequiredOption is returned when a required request field is absent
	KindMissingRequiredOption
	// KindInvalidEntryName is returned when a name violates the name policy
	KindInvalidEntryName
	// KindArchiveWrite is returned when an archive member cannot be opened
	KindArchiveWrite
	// KindArchiveEntry is returned when member content cannot be written
	KindArchiveEntry
	// KindArchiveFinalize is returned when the archive cannot be closed
	KindArchiveFinalize
	// KindIO is a plain-file write failure carrying the underlying message
	KindIO
)

var kindNames = map[Kind]string{
	KindFileSystem:            "FileSystemError",
	KindUnsupportedExportType: "UnsupportedExportType",
	KindMissingRequiredOption: "MissingRequiredOption",
	KindInvalidEntryName:      "InvalidEntryName",
	KindArchiveWrite:          "ArchiveWriteError",
	KindArchiveEntry:          "ArchiveEntryError",
	KindArchiveFinalize:       "ArchiveFinalizeError",
	KindIO:                    "IOError",
}

// wire codes, KindIO has none: its code is the underlying message
var kindCodes = map[Kind]string{
	KindFileSystem:            "file-system-error",
	KindUnsupportedExportType: "unknown",
	KindMissingRequiredOption: "missing-required-option",
	KindInvalidEntryName:      "invalid-entry-name",
	KindArchiveWrite:          "error-writing-zip",
	KindArchiveEntry:          "error-creating-zip",
	KindArchiveFinalize:       "failed-to-generate-zip",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single error type returned by the export engine
type Error struct {
	Kind Kind   // The failure class
	Name string // The path, entry or option the failure refers to, if any
	Err  error  // The underlying cause, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Name != "" {
		msg += fmt.Sprintf(" (%s)", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain compatibility
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the wire-level string for this error
func (e *Error) Code() string {
	if code, ok := kindCodes[e.Kind]; ok {
		return code
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func newError(kind Kind, name string, err error) *Error {
	return &Error{Kind: kind, Name: name, Err: err}
}

// IsKind reports whether err, or any error it wraps, is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var exportErr *Error
	if errors.As(err, &exportErr) {
		return exportErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or 0 if err is not an export error
func KindOf(err error) Kind {
	var exportErr *Error
	if errors.As(err, &exportErr) {
		return exportErr.Kind
	}
	return 0
}

// CodeOf translates an error into its wire code.
// Errors that did not come from the engine are reported by message.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var exportErr *Error
	if errors.As(err, &exportErr) {
		return exportErr.Code()
	}
	return err.Error()
}
