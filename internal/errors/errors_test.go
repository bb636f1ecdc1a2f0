// Package errors tests for error code definitions and error handling.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func allCodes() []ErrorCode {
	return []ErrorCode{
		ErrInternal, ErrInvalid, ErrNotFound, ErrDuplicate, ErrValidation,
		ErrConfiguration,
		ErrConnection, ErrDatabase, ErrMigration,
		ErrExportFailed, ErrImportFailed,
	}
}

// TestErrorCodes_areUniqueAndUppercase verifies code naming.
func TestErrorCodes_areUniqueAndUppercase(t *testing.T) {
	seen := make(map[ErrorCode]bool)
	for _, code := range allCodes() {
		if code == "" {
			t.Fatal("ErrorCode should not be empty")
		}
		if seen[code] {
			t.Errorf("ErrorCode %q is duplicated", code)
		}
		seen[code] = true

		if str := string(code); str != strings.ToUpper(str) {
			t.Errorf("ErrorCode %q should be uppercase", str)
		}
	}
}

// TestAppError_Error verifies error message formatting.
func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{
			name:     "error without underlying error",
			appError: &AppError{Code: ErrInternal, Message: "something failed"},
			want:     "[INTERNAL_ERROR] something failed",
		},
		{
			name:     "error with underlying error",
			appError: &AppError{Code: ErrDatabase, Message: "failed to add contact", Err: errors.New("disk I/O error")},
			want:     "[DATABASE_ERROR] failed to add contact: disk I/O error",
		},
		{
			name:     "configuration error",
			appError: &AppError{Code: ErrConfiguration, Message: "DB_PASSWORD is required"},
			want:     "[CONFIGURATION_ERROR] DB_PASSWORD is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appError.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestAppError_Unwrap verifies unwrapping of underlying error.
func TestAppError_Unwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")

	wrapped := Wrap(ErrConnection, "failed to open database", underlyingErr)
	if wrapped.Unwrap() != underlyingErr {
		t.Errorf("Unwrap() = %v, want %v", wrapped.Unwrap(), underlyingErr)
	}
	if !errors.Is(wrapped, underlyingErr) {
		t.Error("errors.Is should see the underlying error")
	}

	plain := New(ErrInternal, "failed")
	if plain.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", plain.Unwrap())
	}
}

// TestWrap verifies error wrapping.
func TestWrap(t *testing.T) {
	underlyingErr := errors.New("underlying")

	err := Wrap(ErrDatabase, "query failed", underlyingErr)
	if err.Code != ErrDatabase {
		t.Errorf("Wrap() code = %q, want %q", err.Code, ErrDatabase)
	}
	if err.Message != "query failed" {
		t.Errorf("Wrap() message = %q, want 'query failed'", err.Message)
	}
	if err.Err != underlyingErr {
		t.Errorf("Wrap() underlying error = %v, want %v", err.Err, underlyingErr)
	}
}

// TestIs verifies error code checking.
func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{
			name: "matching AppError",
			err:  &AppError{Code: ErrNotFound, Message: "not found"},
			code: ErrNotFound,
			want: true,
		},
		{
			name: "non-matching AppError",
			err:  &AppError{Code: ErrNotFound, Message: "not found"},
			code: ErrInternal,
			want: false,
		},
		{
			name: "AppError wrapped by fmt.Errorf",
			err:  fmt.Errorf("add contact: %w", New(ErrDuplicate, "contact already exists")),
			code: ErrDuplicate,
			want: true,
		},
		{
			name: "non-AppError",
			err:  errors.New("standard error"),
			code: ErrInternal,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			code: ErrInternal,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Is(tt.err, tt.code)
			if got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestCodeOf verifies code extraction.
func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrValidation, "bad")); got != ErrValidation {
		t.Errorf("CodeOf() = %q, want %q", got, ErrValidation)
	}
	if got := CodeOf(fmt.Errorf("outer: %w", New(ErrConnection, "down"))); got != ErrConnection {
		t.Errorf("CodeOf() = %q, want %q", got, ErrConnection)
	}
	if got := CodeOf(errors.New("plain")); got != ErrInternal {
		t.Errorf("CodeOf() = %q, want %q", got, ErrInternal)
	}
}
