package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "wrapped missing fields",
			err:         fmt.Errorf("%w: name", ErrMissingFields),
			wantCode:    "CERT001",
			wantMessage: "Missing data",
		},
		{
			name:        "malformed batch",
			err:         ErrMalformedBatch,
			wantCode:    "CERT002",
			wantMessage: "Missing certificate list",
		},
		{
			name:        "wrapped duplicate code",
			err:         fmt.Errorf("add %q: %w", "X", ErrDuplicateCode),
			wantCode:    "CERT003",
			wantMessage: "Certificate code already exists",
		},
		{
			name:        "not found",
			err:         fmt.Errorf("get: %w", ErrNotFound),
			wantCode:    "CERT004",
			wantMessage: "Certificate not found",
		},
		{
			name:        "batch too large",
			err:         fmt.Errorf("3 items, limit 2: %w", ErrBatchTooLarge),
			wantCode:    "CERT005",
			wantMessage: "Too many certificates in one request",
		},
		{
			name:        "oversized body",
			err:         fmt.Errorf("body above 64 bytes: %w", ErrPayloadTooLarge),
			wantCode:    "REQ002",
			wantMessage: "Request body too large",
		},
		{
			name:        "too many imports",
			err:         ErrTooManyImports,
			wantCode:    "IMP001",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "untranslated postgres unique violation",
			err:         errors.New(`ERROR: duplicate key value violates unique constraint "certificates_code_key"`),
			wantCode:    "CERT003",
			wantMessage: "Certificate code already exists",
		},
		{
			name:        "untranslated sqlite unique violation",
			err:         errors.New("UNIQUE constraint failed: certificates.code"),
			wantCode:    "CERT003",
			wantMessage: "Certificate code already exists",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("import: %w", errors.New("context deadline exceeded")),
			wantCode:    "DB006",
			wantMessage: "Operation timed out",
		},
		{
			name:        "sqlite busy",
			err:         errors.New("database is locked (5) (SQLITE_BUSY)"),
			wantCode:    "DB007",
			wantMessage: "Database was busy with conflicting operations",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrNotFound)

	expected := "Certificate not found (Code: CERT004). Check the certificate code"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"sentinel is user facing", ErrDuplicateCode, true},
		{"known pattern is user facing", errors.New("connection reset by peer"), true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
