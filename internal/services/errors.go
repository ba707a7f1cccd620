package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised by the resume and question pipelines.
type ErrorKind string

const (
	KindEmptyInput           ErrorKind = "empty_input"
	KindPayloadTooLarge      ErrorKind = "payload_too_large"
	KindUnsupportedFileType  ErrorKind = "unsupported_file_type"
	KindMalformedModelOutput ErrorKind = "malformed_model_output"
	KindSchemaViolation      ErrorKind = "schema_violation"
	KindGatewayFailure       ErrorKind = "gateway_failure"
	KindInternal             ErrorKind = "internal_error"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
