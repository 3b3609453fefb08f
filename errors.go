// Package permit holds the error taxonomy shared by the EIP-712 codec, the
// signature codec and the permit flows built on top of them.
package permit

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeSchema            = "schema_error"
	ErrCodeTypeMismatch      = "type_mismatch"
	ErrCodeRange             = "range_error"
	ErrCodeSignatureLength   = "invalid_signature_length"
	ErrCodeInvalidRecoveryID = "invalid_recovery_id"
	ErrCodeInvalidSignature  = "invalid_signature"
	ErrCodeSigningRejected   = "signing_rejected"
	ErrCodeContractState     = "contract_state_error"
)

// SchemaError reports a malformed or incomplete type schema. It is a
// configuration bug and never worth retrying.
type SchemaError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

func (e *SchemaError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: %s", ErrCodeSchema, e.Message)
	}
	return fmt.Sprintf("%s: type %s: %s", ErrCodeSchema, e.Type, e.Message)
}

// NewSchemaError creates a new schema error
func NewSchemaError(typeName, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Type: typeName, Message: fmt.Sprintf(format, args...)}
}

// TypeMismatchError reports a message value whose Go shape does not match the
// declared EIP-712 field type.
type TypeMismatchError struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Message  string `json:"message,omitempty"`
}

func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("%s: field %q: expected %s, got %s", ErrCodeTypeMismatch, e.Field, e.Expected, e.Actual)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// NewTypeMismatchError creates a new type mismatch error. actual is reported
// by its Go type.
func NewTypeMismatchError(field, expected string, actual interface{}, message string) *TypeMismatchError {
	return &TypeMismatchError{
		Field:    field,
		Expected: expected,
		Actual:   fmt.Sprintf("%T", actual),
		Message:  message,
	}
}

// RangeError reports an integer outside the range of its declared type.
type RangeError struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: field %q: value %s out of range for %s", ErrCodeRange, e.Field, e.Value, e.Type)
}

// LengthError reports a signature blob of the wrong size.
type LengthError struct {
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: expected %d bytes, got %d", ErrCodeSignatureLength, e.Expected, e.Actual)
}

// InvalidRecoveryIDError reports a v value outside {0, 1, 27, 28}.
type InvalidRecoveryIDError struct {
	V int `json:"v"`
}

func (e *InvalidRecoveryIDError) Error() string {
	return fmt.Sprintf("%s: %d", ErrCodeInvalidRecoveryID, e.V)
}

// InvalidSignatureError reports a well-formed signature that cannot be
// recovered, or recovers to the wrong signer.
type InvalidSignatureError struct {
	Message string `json:"message"`
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeInvalidSignature, e.Message)
}

// SigningRejectedError is returned when the signing provider declines, fails
// or the caller's context ends before a signature arrives. The request may be
// re-prompted.
type SigningRejectedError struct {
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (e *SigningRejectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrCodeSigningRejected, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrCodeSigningRejected, e.Reason)
}

func (e *SigningRejectedError) Unwrap() error {
	return e.Err
}

// ContractStateError reports a verifying contract that is missing or not in
// the expected state. It points at misconfiguration and is not retried.
type ContractStateError struct {
	Address string `json:"address"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *ContractStateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrCodeContractState, e.Address, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrCodeContractState, e.Address, e.Message)
}

func (e *ContractStateError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of the first taxonomy error found in err's
// chain, or "" if there is none.
func ErrorCode(err error) string {
	var (
		schemaErr   *SchemaError
		mismatchErr *TypeMismatchError
		rangeErr    *RangeError
		lengthErr   *LengthError
		recoveryErr *InvalidRecoveryIDError
		sigErr      *InvalidSignatureError
		rejectedErr *SigningRejectedError
		contractErr *ContractStateError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &schemaErr):
		return ErrCodeSchema
	case errors.As(err, &mismatchErr):
		return ErrCodeTypeMismatch
	case errors.As(err, &rangeErr):
		return ErrCodeRange
	case errors.As(err, &lengthErr):
		return ErrCodeSignatureLength
	case errors.As(err, &recoveryErr):
		return ErrCodeInvalidRecoveryID
	case errors.As(err, &sigErr):
		return ErrCodeInvalidSignature
	case errors.As(err, &rejectedErr):
		return ErrCodeSigningRejected
	case errors.As(err, &contractErr):
		return ErrCodeContractState
	}
	return ""
}

// IsRetryable reports whether err is worth re-prompting for. Only signing
// rejections qualify; everything else is deterministic.
func IsRetryable(err error) bool {
	var rejected *SigningRejectedError
	return errors.As(err, &rejected)
}
