package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodePlanInvalid, "something went wrong")
	msg := err.Error()

	if !strings.Contains(msg, "[PLAN-002]") {
		t.Errorf("message missing code: %s", msg)
	}
	if !strings.Contains(msg, "something went wrong") {
		t.Errorf("message missing text: %s", msg)
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(ErrCodeFileReadFailed, "read failed", cause)

	if !strings.Contains(err.Error(), "underlying failure") {
		t.Errorf("message missing cause: %s", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestErrorWithSuggestions(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bad value").
		WithSuggestion("first hint").
		WithSuggestion("second hint")

	msg := err.Error()
	if !strings.Contains(msg, "Suggestions:") {
		t.Errorf("message missing suggestions block: %s", msg)
	}
	if !strings.Contains(msg, "first hint") || !strings.Contains(msg, "second hint") {
		t.Errorf("message missing suggestion text: %s", msg)
	}
}

func TestErrorWithDocs(t *testing.T) {
	err := New(ErrCodePlanCyclicDep, "cycle").WithDocs("https://example.com/docs/cycles")
	if !strings.Contains(err.Error(), "https://example.com/docs/cycles") {
		t.Errorf("message missing docs url: %s", err.Error())
	}
}

func TestErrorsAsExtractsCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewUnsafePathError("../etc/passwd"))

	var saErr *SuperagentError
	if !stderrors.As(wrapped, &saErr) {
		t.Fatal("SuperagentError not reachable via errors.As")
	}
	if saErr.Code != ErrCodeUpdateUnsafePath {
		t.Errorf("Code = %s, want %s", saErr.Code, ErrCodeUpdateUnsafePath)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *SuperagentError
		wantCode ErrorCode
		wantText string
	}{
		{"plan not found", NewPlanNotFoundError("plan.yaml"), ErrCodePlanNotFound, "plan.yaml"},
		{"unknown dep", NewPlanUnknownDepError("api", "ghost"), ErrCodePlanUnknownDep, "ghost"},
		{"unsafe path", NewUnsafePathError("../x"), ErrCodeUpdateUnsafePath, "../x"},
		{"malformed patch", NewPatchMalformedError("no hunks"), ErrCodePatchMalformed, "no hunks"},
		{"config invalid", NewConfigInvalidError("bad threshold"), ErrCodeConfigInvalid, "bad threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if !strings.Contains(tt.err.Error(), tt.wantText) {
				t.Errorf("message %q missing %q", tt.err.Error(), tt.wantText)
			}
			if len(tt.err.Suggestions) == 0 {
				t.Error("constructor should attach suggestions")
			}
		})
	}
}
