package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound     ErrorCode = "PLAN-001"
	ErrCodePlanInvalid      ErrorCode = "PLAN-002"
	ErrCodePlanCyclicDep    ErrorCode = "PLAN-003"
	ErrCodePlanUnknownDep   ErrorCode = "PLAN-004"
	ErrCodePlanDuplicateID  ErrorCode = "PLAN-005"
	ErrCodePlanNoReadySteps ErrorCode = "PLAN-006"

	// Snapshot errors (SNAP-001 to SNAP-099)
	ErrCodeSnapshotIndexLoad  ErrorCode = "SNAP-001"
	ErrCodeSnapshotIndexSave  ErrorCode = "SNAP-002"
	ErrCodeSnapshotDisabled   ErrorCode = "SNAP-003"
	ErrCodeSnapshotBatchFail  ErrorCode = "SNAP-004"
	ErrCodeSnapshotSweepFail  ErrorCode = "SNAP-005"

	// Patch errors (PATCH-001 to PATCH-099)
	ErrCodePatchMalformed ErrorCode = "PATCH-001"
	ErrCodePatchConflict  ErrorCode = "PATCH-002"

	// Update errors (UPDATE-001 to UPDATE-099)
	ErrCodeUpdateUnsafePath  ErrorCode = "UPDATE-001"
	ErrCodeUpdateNoBaseline  ErrorCode = "UPDATE-002"
	ErrCodeUpdateWriteFailed ErrorCode = "UPDATE-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"
)

// SuperagentError represents an enhanced error with code, suggestions, and documentation
type SuperagentError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *SuperagentError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *SuperagentError) Unwrap() error {
	return e.Cause
}

// New creates a new SuperagentError
func New(code ErrorCode, message string) *SuperagentError {
	return &SuperagentError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new SuperagentError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *SuperagentError {
	return &SuperagentError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *SuperagentError) WithSuggestion(suggestion string) *SuperagentError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *SuperagentError) WithSuggestions(suggestions ...string) *SuperagentError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *SuperagentError) WithDocs(url string) *SuperagentError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewPlanNotFoundError creates a plan file not found error
func NewPlanNotFoundError(path string) *SuperagentError {
	return New(ErrCodePlanNotFound, fmt.Sprintf("plan file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Run 'superagent plan validate --in <file>' against an existing plan")
}

// NewPlanUnknownDepError creates an error for a dependency on a step that does not exist
func NewPlanUnknownDepError(stepID, depID string) *SuperagentError {
	return New(ErrCodePlanUnknownDep, fmt.Sprintf("step %s depends on unknown step %s", stepID, depID)).
		WithSuggestion("Check the depends_on declarations in the plan file").
		WithSuggestion("Every dependency must reference a declared step id")
}

// NewUnsafePathError creates an error for a write target outside the project root
func NewUnsafePathError(path string) *SuperagentError {
	return New(ErrCodeUpdateUnsafePath, fmt.Sprintf("refusing to write outside project root: %s", path)).
		WithSuggestion("Update targets must be relative paths inside the project").
		WithSuggestion("Remove any '..' components from the path")
}

// NewPatchMalformedError creates an error for a patch with no recognizable hunks
func NewPatchMalformedError(detail string) *SuperagentError {
	return New(ErrCodePatchMalformed, fmt.Sprintf("malformed patch: %s", detail)).
		WithSuggestion("Patches must be in unified diff format with @@ hunk headers")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *SuperagentError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *SuperagentError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(detail string) *SuperagentError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", detail)).
		WithSuggestion("Review .superagent/config.yaml against the documented options")
}
