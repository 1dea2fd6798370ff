package errs

import "fmt"

// ValidationError signals malformed or out-of-range client input.
// It maps to HTTP 400 at the response boundary.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NotFoundError signals that a resource or route does not exist.
// It maps to HTTP 404 at the response boundary.
type NotFoundError struct {
	Resource string
	Detail   string
}

func (e *NotFoundError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Detail)
}

// NewNotFoundError creates a NotFoundError for the given resource.
func NewNotFoundError(resource, detail string) *NotFoundError {
	return &NotFoundError{Resource: resource, Detail: detail}
}

// DependencyError signals a failure in an upstream collaborator
// (network data source, timeout, empty response). It maps to HTTP 502.
type DependencyError struct {
	Message string
	Cause   error
}

func (e *DependencyError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *DependencyError) Unwrap() error { return e.Cause }

// NewDependencyError creates a DependencyError wrapping the given cause.
func NewDependencyError(message string, cause error) *DependencyError {
	return &DependencyError{Message: message, Cause: cause}
}
