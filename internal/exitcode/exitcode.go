package exitcode

import (
	stderrors "errors"
	"os"

	"github.com/superagent-dev/superagent/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// CycleDetected indicates the plan contains a circular dependency
	CycleDetected = 3

	// UnsafePath indicates an update targeted a path outside the project root
	UnsafePath = 4

	// PatchConflict indicates a patch did not apply cleanly
	PatchConflict = 5

	// Interrupted indicates the operation was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var saErr *errors.SuperagentError
	if stderrors.As(err, &saErr) {
		switch saErr.Code {
		case errors.ErrCodePlanCyclicDep, errors.ErrCodePlanNoReadySteps:
			return CycleDetected
		case errors.ErrCodeUpdateUnsafePath:
			return UnsafePath
		case errors.ErrCodePatchConflict, errors.ErrCodePatchMalformed:
			return PatchConflict
		}
	}

	return GeneralError
}
