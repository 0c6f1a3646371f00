package registry

import (
	"errors"
	"fmt"
	"strings"
)

const (
	unexpectedStatusMessageConstant      = "unexpected response status"
	responseDecodingMessageConstant      = "response decoding failed"
	operationErrorTemplateConstant       = "%s from %s: %v"
	statusErrorTemplateConstant          = "%s %d"
	statusErrorWithBodyTemplateConstant  = "%s %d: %s"
	decodingErrorTemplateConstant        = "%w: %v"
	missingFieldErrorTemplateConstant    = "%w: field %q is missing"
	invalidVersionErrorTemplateConstant  = "%w: field %q holds invalid version %q: %v"
	responseBodyExcerptLimitConstant     = 512
	loadCrateInformationOperationValue   = "Failed to load crate information"
	loadVersionInformationOperationValue = "Failed to load version information"
)

// OperationName names a registry read step.
type OperationName string

// Registry read steps.
const (
	OperationLoadCrateInformation   OperationName = OperationName(loadCrateInformationOperationValue)
	OperationLoadVersionInformation OperationName = OperationName(loadVersionInformationOperationValue)
)

var (
	// ErrUnexpectedStatus indicates a non-success HTTP status code.
	ErrUnexpectedStatus = errors.New(unexpectedStatusMessageConstant)
	// ErrResponseDecoding indicates a body that does not match the expected JSON shape.
	ErrResponseDecoding = errors.New(responseDecodingMessageConstant)
)

// OperationError wraps any failure of a registry read step.
type OperationError struct {
	Operation OperationName
	Host      string
	Cause     error
}

// Error describes the failed step and its cause.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Host, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// StatusError reports a non-success HTTP status code.
type StatusError struct {
	StatusCode  int
	BodyExcerpt string
}

// Error describes the status code and a short excerpt of the response body.
func (statusError StatusError) Error() string {
	trimmedExcerpt := strings.TrimSpace(statusError.BodyExcerpt)
	if len(trimmedExcerpt) == 0 {
		return fmt.Sprintf(statusErrorTemplateConstant, unexpectedStatusMessageConstant, statusError.StatusCode)
	}
	return fmt.Sprintf(statusErrorWithBodyTemplateConstant, unexpectedStatusMessageConstant, statusError.StatusCode, trimmedExcerpt)
}

// Is matches ErrUnexpectedStatus.
func (statusError StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
