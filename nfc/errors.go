package nfc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of NFC error for programmatic handling.
type ErrorCode int

const (
	// Tag operation errors (100-199)
	ErrCodeNotSupported ErrorCode = iota + 100
	ErrCodeTagRemoved
	ErrCodeReadFailed
	ErrCodeTagNotConnected
	ErrCodeNoTag
)

const (
	// NDEF decoding errors (200-299)
	ErrCodeMalformedNDEF ErrorCode = iota + 200
	ErrCodeInvalidEncoding
	ErrCodeNoText
)

const (
	// Scan dispatch errors (300-399)
	ErrCodeUnsupportedAction ErrorCode = iota + 300
)

// NFCError provides structured error information for programmatic handling.
type NFCError struct {
	Code    ErrorCode
	Op      string // Operation that failed (e.g., "ParseNDEF", "ReadNDEF")
	TagUID  string // Optional: UID of tag involved
	Message string
	Cause   error
}

// Sentinels for errors.Is; matching is by Code only.
var (
	ErrMalformedNDEF     = &NFCError{Code: ErrCodeMalformedNDEF, Message: "malformed NDEF message"}
	ErrInvalidEncoding   = &NFCError{Code: ErrCodeInvalidEncoding, Message: "invalid text encoding"}
	ErrNoText            = &NFCError{Code: ErrCodeNoText, Message: "text record has no text"}
	ErrNoTag             = &NFCError{Code: ErrCodeNoTag, Message: "no tag in scan event"}
	ErrUnsupportedAction = &NFCError{Code: ErrCodeUnsupportedAction, Message: "unsupported discovery action"}
)

func (e *NFCError) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.TagUID != "" {
		sb.WriteString(" (tag ")
		sb.WriteString(e.TagUID)
		sb.WriteString(")")
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *NFCError) Unwrap() error {
	return e.Cause
}

func (e *NFCError) Is(target error) bool {
	if t, ok := target.(*NFCError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewNotSupportedError creates an error for unsupported operations.
func NewNotSupportedError(op string) *NFCError {
	return &NFCError{
		Code:    ErrCodeNotSupported,
		Op:      op,
		Message: "operation not supported",
	}
}

// NewTagRemovedError creates an error for when a tag is removed mid-operation.
func NewTagRemovedError(op string, cause error) *NFCError {
	return &NFCError{
		Code:    ErrCodeTagRemoved,
		Op:      op,
		Message: "tag removed during operation",
		Cause:   cause,
	}
}

// NewReadError creates an error for read failures.
func NewReadError(op, tagUID string, cause error) *NFCError {
	return &NFCError{
		Code:    ErrCodeReadFailed,
		Op:      op,
		TagUID:  tagUID,
		Message: "read failed",
		Cause:   cause,
	}
}

// IsNotSupportedError checks if an error indicates an unsupported operation.
func IsNotSupportedError(err error) bool {
	return GetErrorCode(err) == ErrCodeNotSupported
}

// IsTagRemovedError checks if an error indicates the tag was removed.
func IsTagRemovedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, &NFCError{Code: ErrCodeTagRemoved}) {
		return true
	}
	// libnfc reports removal only through its message text
	errStr := err.Error()
	return strings.Contains(errStr, "tag removed") ||
		strings.Contains(errStr, "tag lost") ||
		strings.Contains(errStr, "Target was removed")
}

// IsMalformedNDEFError checks if an error came from parsing truncated or invalid NDEF bytes.
func IsMalformedNDEFError(err error) bool {
	return GetErrorCode(err) == ErrCodeMalformedNDEF
}

// GetErrorCode extracts the ErrorCode from an error if it's an NFCError.
// Returns 0 if the error is not an NFCError.
func GetErrorCode(err error) ErrorCode {
	var nfcErr *NFCError
	if errors.As(err, &nfcErr) {
		return nfcErr.Code
	}
	return 0
}

// WrapError wraps an existing error with NFC context.
func WrapError(code ErrorCode, op, message string, cause error) *NFCError {
	return &NFCError{
		Code:    code,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// Errorf creates an NFCError with a formatted message.
func Errorf(code ErrorCode, op, format string, args ...interface{}) *NFCError {
	return &NFCError{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}
