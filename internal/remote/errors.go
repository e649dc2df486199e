package remote

import (
	"errors"
	"fmt"
)

const (
	invalidArgumentMessageConstant      = "invalid argument"
	unsupportedTransportMessageConstant = "unsupported transport"
	notImplementedMessageConstant       = "not implemented"
	engineErrorMessageConstant          = "engine error"
	operationErrorTemplateConstant      = "%s: %s"
)

// Error kinds reported by remote handles. Match them with errors.Is.
var (
	ErrInvalidArgument      = errors.New(invalidArgumentMessageConstant)
	ErrUnsupportedTransport = errors.New(unsupportedTransportMessageConstant)
	ErrNotImplemented       = errors.New(notImplementedMessageConstant)
	ErrEngine               = errors.New(engineErrorMessageConstant)
)

// OperationError describes a failed handle operation.
//
// Kind is one of the Err* sentinels. For ErrEngine the Message is the engine's
// diagnostic text, unmodified, and Error returns it verbatim.
type OperationError struct {
	Kind      error
	Operation string
	Message   string
	Cause     error
}

// Error describes the failure.
func (operationError OperationError) Error() string {
	if operationError.Kind == ErrEngine {
		return operationError.Message
	}
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Message)
}

// Unwrap exposes the error kind and the underlying cause.
func (operationError OperationError) Unwrap() []error {
	unwrapped := []error{operationError.Kind}
	if operationError.Cause != nil {
		unwrapped = append(unwrapped, operationError.Cause)
	}
	return unwrapped
}

func newOperationError(kind error, operation string, message string, cause error) OperationError {
	return OperationError{Kind: kind, Operation: operation, Message: message, Cause: cause}
}

func newEngineError(operation string, engineError error) OperationError {
	return OperationError{Kind: ErrEngine, Operation: operation, Message: engineError.Error(), Cause: engineError}
}
