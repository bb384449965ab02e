package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ConfigurationError means the firm's billing setup is incomplete (e.g. a
// missing default rate). Surfaced to an administrator, never defaulted to zero.
type ConfigurationError struct {
	msg string
}

func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string { return e.msg }

func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// ValidationError rejects bad input before any write.
type ValidationError struct {
	msg string
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.msg }

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// PermissionError rejects an operation the acting user's role does not allow.
type PermissionError struct {
	msg string
}

func NewPermissionError(format string, args ...interface{}) error {
	return &PermissionError{msg: fmt.Sprintf(format, args...)}
}

func (e *PermissionError) Error() string { return e.msg }

func IsPermissionError(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

// CaseNotApprovedError rejects billable time logged against a case that has
// not passed partner approval.
type CaseNotApprovedError struct {
	CaseId int
}

func NewCaseNotApprovedError(caseId int) error {
	return &CaseNotApprovedError{CaseId: caseId}
}

func (e *CaseNotApprovedError) Error() string {
	return fmt.Sprintf("case %d is not approved for billable time", e.CaseId)
}

func IsCaseNotApprovedError(err error) bool {
	var target *CaseNotApprovedError
	return errors.As(err, &target)
}

// RetryableError marks transaction failures (deadlock, lock wait timeout)
// the API layer may retry idempotently. Validation errors are never wrapped.
type RetryableError struct {
	Err error
}

func NewRetryableError(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return "retryable: " + e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

func IsRetryable(err error) bool {
	var target *RetryableError
	return errors.As(err, &target)
}
