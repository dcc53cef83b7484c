package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Remote server errors
	ErrCodeConnection   ErrorCode = "CONNECTION_FAILED"
	ErrCodeEmptyListing ErrorCode = "EMPTY_LISTING"

	// Election resolution errors
	ErrCodeNoElection        ErrorCode = "NO_ELECTION_FOUND"
	ErrCodeAmbiguousElection ErrorCode = "AMBIGUOUS_ELECTION"
	ErrCodeOverrideNotFound  ErrorCode = "OVERRIDE_NOT_FOUND"

	// File selection and transfer errors
	ErrCodeNoMatch  ErrorCode = "NO_MATCH"
	ErrCodeDownload ErrorCode = "DOWNLOAD_FAILED"

	// Archive errors
	ErrCodeMemberNotFound ErrorCode = "ARCHIVE_MEMBER_NOT_FOUND"
	ErrCodeArchiveCorrupt ErrorCode = "ARCHIVE_CORRUPT"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// AusecError represents a structured error with context
type AusecError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *AusecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AusecError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *AusecError) WithDetail(key string, value interface{}) *AusecError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *AusecError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new AusecError
func New(code ErrorCode, message string) *AusecError {
	return &AusecError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AusecError
func Wrap(err error, code ErrorCode, message string) *AusecError {
	return &AusecError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the outermost AusecError in err's chain.
func As(err error) (*AusecError, bool) {
	var ae *AusecError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether any AusecError in err's chain carries code.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		ae, ok := As(err)
		if !ok {
			return false
		}
		if ae.Code == code {
			return true
		}
		err = ae.Cause
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if ae, ok := As(err); ok {
		return ae.Code
	}
	return ""
}
