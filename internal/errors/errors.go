package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// RootUnreadable indicates the analysis root does not exist or cannot be read
	RootUnreadable ErrorCode = "ROOT_UNREADABLE"
	// OutputUnwritable indicates the digest destination cannot be written
	OutputUnwritable ErrorCode = "OUTPUT_UNWRITABLE"
	// MemoryCorrupt indicates the memory store file is not valid JSON
	MemoryCorrupt ErrorCode = "MEMORY_CORRUPT"
	// MemoryUnwritable indicates the memory store could not be persisted
	MemoryUnwritable ErrorCode = "MEMORY_UNWRITABLE"
	// ParseFailed indicates a source file could not be parsed
	ParseFailed ErrorCode = "PARSE_FAILED"
	// ExtractorUnavailable indicates the tree-sitter extractor was built without cgo
	ExtractorUnavailable ErrorCode = "EXTRACTOR_UNAVAILABLE"
	// ConfigInvalid indicates a configuration value is out of range or malformed
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ManifestInvalid indicates repomind.toml could not be parsed
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// CacheFailed indicates the extraction cache could not be opened or queried
	CacheFailed ErrorCode = "CACHE_FAILED"
	// ExportFailed indicates a bundle could not be assembled or written
	ExportFailed ErrorCode = "EXPORT_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// RepomindError represents a repomind error with code, message, and suggestions
type RepomindError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new RepomindError
func New(code ErrorCode, message string, cause error) *RepomindError {
	return &RepomindError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *RepomindError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *RepomindError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *RepomindError) WithDetails(details interface{}) *RepomindError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	MemoryCorrupt: {
		{
			Type:        RunCommand,
			Command:     "repomind history --repair",
			Safe:        true,
			Description: "Inspect the memory store and archive the corrupt file",
		},
	},
	ExtractorUnavailable: {
		{
			Type:        RunCommand,
			Command:     "CGO_ENABLED=1 go install repomind/cmd/repomind",
			Safe:        true,
			Description: "Rebuild with cgo so the tree-sitter grammars are compiled in",
		},
	},
	RootUnreadable: {
		{
			Type:        RunCommand,
			Command:     "ls -ld ${root}",
			Safe:        true,
			Description: "Check that the root exists and is a readable directory",
		},
	},
	CacheFailed: {
		{
			Type:        RunCommand,
			Command:     "repomind analyze --no-cache",
			Safe:        true,
			Description: "Bypass the extraction cache for this run",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// CodeOf returns the error code carried by err, or InternalError when err
// is not a RepomindError.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var re *RepomindError
	if As(err, &re) {
		return re.Code
	}
	return InternalError
}
