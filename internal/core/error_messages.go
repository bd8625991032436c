package core

// # Error Codes Reference
//
// Technical errors are mapped to user-facing messages carrying a short code
// that users can quote to support.
//
// # Database (DB001-DB099)
//
//	DB001 - Duplicate barcode: a product with this barcode already exists
//	        Patterns: "duplicate barcode", "duplicate key"
//	DB002 - Unique constraint: a value that must be unique already exists
//	        Patterns: "unique constraint", "violates unique"
//	DB004 - Connection refused: database unreachable
//	DB005 - Connection reset: database connection interrupted
//	DB006 - Timeout: the database did not answer in time
//	DB007 - Deadlock: conflicting concurrent writes
//
// # Products (PRD001-PRD099)
//
//	PRD001 - Product not found
//	PRD002 - Negative stock: change would drop stock below zero
//	PRD003 - Invalid product: barcode, description or quantity rejected
//	PRD004 - Quantity out of range: change would overflow the stored quantity
//
// # Imports (IMP001-IMP099)
//
//	IMP001 - Missing input: nothing was pasted or uploaded
//	IMP002 - Input too large
//	IMP003 - Encoding error: the sheet could not be decoded
//	IMP004 - System busy: too many imports in progress
//	IMP005 - Request cancelled
//	IMP006 - Request timed out
//
// # Authentication (AUTH001-AUTH099)
//
//	AUTH001 - Invalid credentials
//	AUTH002 - Session expired or invalid
//	AUTH003 - User already exists
//
// # Rate limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default (ERR000)
//
// Anything unmatched maps to ERR000; check the logs for the original error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database
	{"duplicate barcode", UserMessage{"A product with this barcode already exists", "Use the scan page to adjust the existing product", "DB001"}},
	{"duplicate key", UserMessage{"A product with this barcode already exists", "Use the scan page to adjust the existing product", "DB001"}},
	{"unique constraint", UserMessage{"This value must be unique but already exists", "Check for duplicate entries", "DB002"}},
	{"violates unique", UserMessage{"A duplicate value was found", "Check for duplicate entries", "DB002"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"timeout", UserMessage{"Operation timed out", "Try a smaller batch or try again later", "DB006"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	// Products
	{"product not found", UserMessage{"Product not found", "Check the barcode and try again", "PRD001"}},
	{"negative stock", UserMessage{"Stock cannot drop below zero", "Check the quantity you entered", "PRD002"}},
	{"invalid product", UserMessage{"The product data is invalid", "Fill in barcode, description and a whole-number quantity", "PRD003"}},
	{"quantity out of range", UserMessage{"The resulting quantity is too large", "Check the quantity you entered", "PRD004"}},

	// Imports
	{"missing input", UserMessage{"No import data was provided", "Paste lines as barcode;description;quantity or choose a file", "IMP001"}},
	{"input too large", UserMessage{"The import is too large", "Split the sheet into smaller batches", "IMP002"}},
	{"encoding error", UserMessage{"The file contains unreadable characters", "Save the sheet as UTF-8 text", "IMP003"}},
	{"too many imports", UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "IMP004"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "IMP005"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller batch or check your connection", "IMP006"}},

	// Authentication
	{"invalid credentials", UserMessage{"Email or password is incorrect", "Check your credentials and try again", "AUTH001"}},
	{"invalid session", UserMessage{"Your session has expired", "Please sign in again", "AUTH002"}},
	{"user already exists", UserMessage{"A user with this email already exists", "Choose another email", "AUTH003"}},

	// Rate limiting
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action" for display.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
