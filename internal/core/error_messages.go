package core

// error_messages.go maps errors to user-facing messages with support codes.
//
// Codes by category:
//
//	CERT001 - Missing data: name, code or image_data absent
//	CERT002 - Missing certificate list: bulk body without "certificates"
//	CERT003 - Duplicate code: code already stored (pre-check or constraint)
//	CERT004 - Not found: no certificate with the requested code
//	CERT005 - Batch too large: bulk request above IMPORT_MAX_ITEMS
//	IMP001  - System busy: all bulk import slots taken
//	REQ002  - Request body above SERVER_MAX_BODY_BYTES
//	DB004   - Connection refused
//	DB005   - Connection reset
//	DB006   - Timeout
//	DB007   - Database busy (locked or deadlock)
//	REQ001  - Request cancelled
//	RATE001 - Rate limited
//	ERR000  - Anything else; check the server log for the technical error
//
// Domain sentinels are matched with errors.Is first. Technical errors coming
// from drivers are matched by case-insensitive substring; the first matching
// pattern wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrMissingFields, UserMessage{
		Message: "Missing data",
		Action:  "Provide name, code and image_data",
		Code:    "CERT001",
	}},
	{ErrMalformedBatch, UserMessage{
		Message: "Missing certificate list",
		Action:  `Send {"certificates": [...]}`,
		Code:    "CERT002",
	}},
	{ErrDuplicateCode, duplicateMessage},
	{ErrNotFound, UserMessage{
		Message: "Certificate not found",
		Action:  "Check the certificate code",
		Code:    "CERT004",
	}},
	{ErrBatchTooLarge, UserMessage{
		Message: "Too many certificates in one request",
		Action:  "Split the list into smaller batches",
		Code:    "CERT005",
	}},
	{ErrPayloadTooLarge, UserMessage{
		Message: "Request body too large",
		Action:  "Send fewer or smaller images per request",
		Code:    "REQ002",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var duplicateMessage = UserMessage{
	Message: "Certificate code already exists",
	Action:  "Choose a different code",
	Code:    "CERT003",
}

// errorPatterns maps technical error text (lowercase) to user messages.
var errorPatterns = []errorPattern{
	// Constraint violations that escaped driver translation.
	{"duplicate key", duplicateMessage},
	{"unique constraint", duplicateMessage},

	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller batch or try again later",
		Code:    "DB006",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller batch or try again later",
		Code:    "DB006",
	}},
	{"database is locked", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("add: %w", ErrDuplicateCode))
//	// msg.Code == "CERT003"
//	// msg.Message == "Certificate code already exists"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
