package main

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/nanoexport/formats"
	"github.com/arthur-debert/nanoexport/nanoexport"
	"github.com/arthur-debert/nanoexport/nanoexport/export"
)

// CLIError represents a user-friendly CLI error with context and suggestions
type CLIError struct {
	Operation   string   // The operation that failed (e.g., "save", "documents")
	Cause       string   // The underlying cause
	Details     string   // Additional technical details
	Suggestions []string // Helpful suggestions for the user
	Underlying  error    // Original error for debugging
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}

	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}

	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return msg.String()
}

// Unwrap returns the underlying error for error chain compatibility
func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewConfigError creates an error for configuration issues
func NewConfigError(operation, issue string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("configuration error: %s", issue),
		Suggestions: suggestions,
	}
}

// NewInputError creates an error for unreadable request, data or document files
func NewInputError(operation string, underlying error, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       "could not read input",
		Details:     underlying.Error(),
		Suggestions: suggestions,
		Underlying:  underlying,
	}
}

// NewExportError describes a failed export response
func NewExportError(operation string, resp nanoexport.Response) *CLIError {
	cliErr := &CLIError{
		Operation:  operation,
		Cause:      fmt.Sprintf("export returned %q", resp.Error),
		Underlying: resp.Err,
	}
	if resp.Err != nil {
		cliErr.Details = resp.Err.Error()
	}

	switch export.KindOf(resp.Err) {
	case export.KindFileSystem:
		cliErr.Suggestions = []string{
			"Check that the destination directory exists and is a directory",
			CommonSuggestions.CheckPerms,
		}
	case export.KindUnsupportedExportType:
		cliErr.Suggestions = []string{
			fmt.Sprintf("Available export types: %s", strings.Join(formats.List(), ", ")),
		}
	case export.KindMissingRequiredOption:
		cliErr.Suggestions = []string{"Set is_zip to true or false in the request"}
	case export.KindInvalidEntryName:
		cliErr.Suggestions = []string{
			"Entry and archive names must be plain file names without path separators",
			"Set name-policy to \"allow\" to write names as given",
		}
	case export.KindArchiveWrite, export.KindArchiveEntry, export.KindArchiveFinalize:
		cliErr.Suggestions = []string{
			"Check free disk space in the destination",
			"Discard the partially written archive before retrying",
		}
	case export.KindIO:
		cliErr.Suggestions = []string{
			CommonSuggestions.CheckPerms,
			"Files written before the failure were left in place",
		}
	}

	return cliErr
}

// Common error messages and suggestions
var (
	CommonSuggestions = struct {
		CheckConfig string
		CheckFlags  string
		RunHelp     string
		CheckPerms  string
	}{
		CheckConfig: "Check your configuration file or NANOEXPORT_* environment variables",
		CheckFlags:  "Check command line flags and their values",
		RunHelp:     "Run command with --help for usage information",
		CheckPerms:  "Check file permissions and directory access",
	}
)
