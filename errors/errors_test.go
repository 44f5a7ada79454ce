package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeMappingNotFound, "no mapping")
	if err.Code != ErrCodeMappingNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeMappingNotFound, err.Code)
	}
	if err.Message != "no mapping" {
		t.Errorf("expected message 'no mapping', got %q", err.Message)
	}
	if err.Error() != "MAPPING_NOT_FOUND: no mapping" {
		t.Errorf("unexpected Error(): %q", err.Error())
	}
}

func TestAppError_Newf(t *testing.T) {
	err := Newf(ErrCodeTypeMappingUnset, "id %q has no target", "foo")
	if !strings.Contains(err.Message, `"foo"`) {
		t.Errorf("expected formatted message, got %q", err.Message)
	}
}

func TestAppError_WithCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New(ErrCodeInternal, "failed").WithCause(cause)
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return cause")
	}
	if !strings.Contains(err.Error(), "cause: boom") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(ErrCodeMappingNotFound, "x").
		WithDetail("type", "Foo").
		WithDetails(map[string]any{"id": "one", "registry": "r1"})
	if err.Details["type"] != "Foo" || err.Details["id"] != "one" || err.Details["registry"] != "r1" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := New(ErrCodeScopeViolation, "sentinel")
	err := New(ErrCodeScopeViolation, "GetEntity outside entity scope")
	if !stderrors.Is(err, sentinel) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(err, New(ErrCodeDisposed, "other")) {
		t.Error("expected errors.Is not to match a different code")
	}

	wrapped := fmt.Errorf("resolving Foo: %w", err)
	if !stderrors.Is(wrapped, sentinel) {
		t.Error("expected errors.Is to match through fmt wrapping")
	}
}

func TestHasCode(t *testing.T) {
	inner := New(ErrCodeCyclicConstruction, "inner")
	outer := New(ErrCodeMappingNotFound, "outer").WithCause(fmt.Errorf("ctx: %w", inner))

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"direct", inner, ErrCodeCyclicConstruction, true},
		{"outer code", outer, ErrCodeMappingNotFound, true},
		{"cause code", outer, ErrCodeCyclicConstruction, true},
		{"missing code", outer, ErrCodeDisposed, false},
		{"plain error", fmt.Errorf("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasCode(tc.err, tc.code); got != tc.want {
				t.Errorf("HasCode() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", InvalidConfig("bad level"))
	appErr, ok := AsAppError(err)
	if !ok {
		t.Fatal("expected AsAppError to find AppError")
	}
	if appErr.Code != ErrCodeInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %s", appErr.Code)
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("expected plain error not to be an AppError")
	}
}

func TestToResponse(t *testing.T) {
	err := New(ErrCodeDisposed, "registry disposed").WithDetail("registry", "abc")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeDisposed {
		t.Errorf("expected DISPOSED, got %s", resp.Error.Code)
	}
	if resp.Error.Details["registry"] != "abc" {
		t.Errorf("expected details to be carried, got %v", resp.Error.Details)
	}
}

func TestInternal(t *testing.T) {
	cause := fmt.Errorf("db connection lost")
	err := Internal(cause)
	if err.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", err.Code)
	}
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeMappingNotFound, 404},
		{ErrCodeTypeMappingNotFound, 404},
		{ErrCodeInvalidConfig, 400},
		{ErrCodeDisposed, 410},
		{ErrCodeCyclicDependency, 409},
		{ErrCodeScopeViolation, 500},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
