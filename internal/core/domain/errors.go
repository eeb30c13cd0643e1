// Package domain defines the core domain model for token naming.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "AR-NAME-4008")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRuleViolation reports whether err was produced by the local id or
// name checks, as opposed to the store.
func IsRuleViolation(err error) bool {
	code := GetErrorCode(err)
	return strings.HasPrefix(code, "AR-NAME-") || strings.HasPrefix(code, "AR-ID-")
}

// ============================================================================
// Id Errors (ID)
// ============================================================================

var (
	// ErrIDOutOfRange indicates the id cannot decode to an admissible name.
	ErrIDOutOfRange = NewDomainError("AR-ID-4000", "token id out of range")
)

// ============================================================================
// Name Errors (NAME)
// ============================================================================

var (
	// ErrNameTooShort indicates the name or its root segment is too short.
	ErrNameTooShort = NewDomainError("AR-NAME-4001", "token name too short")

	// ErrNameTooLong indicates the name exceeds the maximum length.
	ErrNameTooLong = NewDomainError("AR-NAME-4002", "token name too long")

	// ErrSubtokenTooShort indicates a subtoken name is below its minimum length.
	ErrSubtokenTooShort = NewDomainError("AR-NAME-4003", "subtoken name too short")

	// ErrTooManySubtokenLevels indicates more than one separator.
	ErrTooManySubtokenLevels = NewDomainError("AR-NAME-4004", "too many subtoken levels")

	// ErrLeadingSeparator indicates the name starts with the separator.
	ErrLeadingSeparator = NewDomainError("AR-NAME-4005", "name cannot start with separator")

	// ErrTrailingSeparator indicates the name ends with the separator.
	ErrTrailingSeparator = NewDomainError("AR-NAME-4006", "name cannot end with separator")

	// ErrIllegalHyphenUsage indicates a hyphen outside an internationalized name.
	ErrIllegalHyphenUsage = NewDomainError("AR-NAME-4007", "hyphens are only allowed in internationalized names")

	// ErrReservedName indicates a reserved name or one of its subtokens.
	ErrReservedName = NewDomainError("AR-NAME-4008", "reserved token name")

	// ErrInvalidLetterCase indicates a character that is not uppercase or a digit.
	ErrInvalidLetterCase = NewDomainError("AR-NAME-4009", "name must be uppercase")

	// ErrInvalidCharacterClass indicates a character that is not ASCII alphanumeric.
	ErrInvalidCharacterClass = NewDomainError("AR-NAME-4010", "name must be ascii alphanumeric")

	// ErrUnknownSymbol indicates a character outside the alphabet.
	ErrUnknownSymbol = NewDomainError("AR-NAME-4011", "name contains unknown symbol")

	// ErrInvalidIDNEncoding indicates an internationalized label that is not valid punycode.
	ErrInvalidIDNEncoding = NewDomainError("AR-NAME-4012", "invalid internationalized name encoding")
)

// ============================================================================
// Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenNotFound indicates the token name was never registered.
	ErrTokenNotFound = NewDomainError("AR-TOKN-4040", "token not found")

	// ErrTokenExists indicates an insert of a name that is already stored.
	ErrTokenExists = NewDomainError("AR-TOKN-4090", "token already exists")

	// ErrInvalidFlags indicates an unparseable flags value.
	ErrInvalidFlags = NewDomainError("AR-TOKN-4001", "invalid token flags")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrStoreFailure indicates the token store failed. The store error is
	// the cause.
	ErrStoreFailure = NewDomainError("AR-SYS-5001", "token store failure")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("AR-ARG-1001", "invalid argument")
)
